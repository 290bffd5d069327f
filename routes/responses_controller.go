package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/mbolis/keeper-responses/access"
	"github.com/mbolis/keeper-responses/app"
	"github.com/mbolis/keeper-responses/database"
	"github.com/mbolis/keeper-responses/httpx"
	"github.com/mbolis/keeper-responses/log"
	"github.com/mbolis/keeper-responses/model"
	"github.com/mbolis/keeper-responses/routes/middlewares"
	"github.com/pkg/errors"
)

// SubmitResponse saves a draft or submits the response of an employee to
// a survey. Manager evaluations may only be filled about a superior.
func SubmitResponse(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := middlewares.Actor(r.Context())
		if !ok {
			httpx.LogStatus(w, http.StatusUnauthorized, log.DebugLevel, "submit_response.actor")
			return
		}

		data := model.SubmitResponseData{}
		err := render.DecodeJSON(r.Body, &data)
		if err != nil {
			httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body", "%s", err)
			return
		}
		if err = data.Validate(); err != nil {
			httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, "request.validate", "%s", err)
			return
		}

		survey, err := app.GetSurvey(r.Context(), data.Survey)
		if errors.Is(err, database.ErrNotFound) {
			httpx.LogNotFound(w, "submit_response.survey", data.Survey)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "db.get_survey", err)
			return
		}

		if access.IsManagerSurvey(survey.Title) {
			target, err := app.GetEmployee(r.Context(), data.Employee)
			if errors.Is(err, database.ErrNotFound) {
				httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, "submit_response.target", "target employee not found")
				return
			}
			if err != nil {
				httpx.LogInternalError(w, "db.get_employee", err)
				return
			}
			if !access.CanSubmitManagerSurveyFor(actor, target) {
				httpx.LogStatusMsg(w, http.StatusForbidden, log.InfoLevel, "submit_response.hierarchy",
					"you can only evaluate your superiors in the hierarchy")
				return
			}
		}

		response, err := app.SubmitResponse(r.Context(), data, app.Now())
		if err != nil {
			httpx.LogStoreError(w, "submit_response", err)
			return
		}

		log.Debugf("submit_response: %s by %s is %s", response.ID, actor.ID, response.Status)
		render.JSON(w, r, response)
	}
}

func ListResponses(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses, err := app.ListResponses(r.Context(), database.ResponseFilter{})
		if err != nil {
			httpx.LogInternalError(w, "db.list_responses", err)
			return
		}
		render.JSON(w, r, responses)
	}
}

// GetResponse returns the response of one employee to one survey. Answers
// to manager evaluations are only shown to admins.
func GetResponse(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := middlewares.Actor(r.Context())
		if !ok {
			httpx.LogStatus(w, http.StatusUnauthorized, log.DebugLevel, "get_response.actor")
			return
		}

		surveyId := chi.URLParam(r, "surveyId")
		employeeId := chi.URLParam(r, "employeeId")

		response, err := app.GetResponse(r.Context(), surveyId, employeeId)
		if errors.Is(err, database.ErrNotFound) {
			httpx.LogNotFound(w, "get_response", surveyId+"/"+employeeId)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "db.get_response", err)
			return
		}

		survey, _ := response.Survey.Expanded()
		if access.IsManagerSurvey(survey.Title) && actor.Role != model.RoleAdmin {
			httpx.LogStatusMsg(w, http.StatusForbidden, log.InfoLevel, "get_response.manager_survey",
				"only admins can view results of manager surveys")
			return
		}

		render.JSON(w, r, response)
	}
}
