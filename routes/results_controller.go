package routes

import (
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/mbolis/keeper-responses/access"
	"github.com/mbolis/keeper-responses/app"
	"github.com/mbolis/keeper-responses/database"
	"github.com/mbolis/keeper-responses/httpx"
	"github.com/mbolis/keeper-responses/log"
	"github.com/mbolis/keeper-responses/model"
	"github.com/mbolis/keeper-responses/routes/middlewares"
	"github.com/mbolis/keeper-responses/scoring"
)

type Result struct {
	ID            string    `json:"id"`
	EmployeeID    string    `json:"employeeId"`
	EmployeeName  string    `json:"employeeName"`
	Department    string    `json:"department"`
	SurveyID      string    `json:"surveyId,omitempty"`
	SurveyTitle   string    `json:"surveyTitle,omitempty"`
	Date          time.Time `json:"date"`
	ResponseCount int       `json:"responseCount"`
	scoring.Scores
}

// GetResults computes keeper scores from submitted responses, one result
// per employee and survey, or per employee with ?group=employee. Actors
// only see the employees access.CanViewResult lets them see.
func GetResults(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := middlewares.Actor(r.Context())
		if !ok {
			httpx.LogStatus(w, http.StatusUnauthorized, log.DebugLevel, "get_results.actor")
			return
		}
		byEmployee := r.URL.Query().Get("group") == "employee"

		responses, err := app.ListResponses(r.Context(), database.ResponseFilter{SubmittedOnly: true})
		if err != nil {
			httpx.LogInternalError(w, "db.list_responses", err)
			return
		}

		employees := map[string]model.Employee{}
		surveys := map[string]model.Survey{}
		results := map[string]*Result{}
		scores := map[string][]scoring.Scores{}
		var keys []string

		for _, response := range responses {
			employeeId := response.Employee.ID()
			employee, ok := employees[employeeId]
			if !ok {
				employee, err = app.GetEmployee(r.Context(), employeeId)
				if err != nil {
					httpx.LogInternalError(w, "db.get_employee", err)
					return
				}
				employees[employeeId] = employee
			}
			if !access.CanViewResult(actor, employee) {
				continue
			}

			surveyId := response.Survey.ID()
			survey, ok := surveys[surveyId]
			if !ok {
				survey, err = app.GetSurvey(r.Context(), surveyId)
				if err != nil {
					httpx.LogInternalError(w, "db.get_survey", err)
					return
				}
				surveys[surveyId] = survey
			}

			key := employeeId
			if !byEmployee {
				key += "_" + surveyId
			}
			result, ok := results[key]
			if !ok {
				result = &Result{
					ID:           key,
					EmployeeID:   employeeId,
					EmployeeName: employee.Name,
					Department:   employee.Department,
				}
				if !byEmployee {
					result.SurveyID = surveyId
					result.SurveyTitle = survey.Title
				}
				results[key] = result
				keys = append(keys, key)
			}

			result.ResponseCount++
			if response.SubmittedAt != nil && response.SubmittedAt.After(result.Date) {
				result.Date = *response.SubmittedAt
			}
			scores[key] = append(scores[key], scoring.Calculate(response.Answers, survey.Questions, employee.KPI))
		}

		list := make([]Result, 0, len(keys))
		for _, key := range keys {
			result := results[key]
			result.Scores = scoring.Aggregate(scores[key])
			list = append(list, *result)
		}
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].KeeperScore > list[j].KeeperScore
		})

		render.JSON(w, r, list)
	}
}

// EmployeeResult sums up every submitted response about one employee.
// Form averages take all numeric answers to manager and teammate
// evaluations, regardless of the question.
type EmployeeResult struct {
	ID                  string     `json:"id"`
	EmployeeName        string     `json:"employeeName"`
	Department          string     `json:"department"`
	Role                model.Role `json:"role"`
	Date                time.Time  `json:"date"`
	ResponseCount       int        `json:"responseCount"`
	ManagerFormAverage  float64    `json:"managerFormAverage"`
	TeammateFormAverage float64    `json:"teammateFormAverage"`
	scoring.Scores
}

func GetEmployeeResult(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := middlewares.Actor(r.Context())
		if !ok {
			httpx.LogStatus(w, http.StatusUnauthorized, log.DebugLevel, "get_employee_result.actor")
			return
		}
		employeeId := chi.URLParam(r, "employeeId")

		employee, err := app.GetEmployee(r.Context(), employeeId)
		if err != nil {
			httpx.LogStoreError(w, "get_employee", err)
			return
		}
		if !access.CanViewResult(actor, employee) {
			httpx.LogStatusMsg(w, http.StatusForbidden, log.InfoLevel, "get_employee_result.access",
				"you can only view results for employees in your department or your own results")
			return
		}

		responses, err := app.ListResponses(r.Context(), database.ResponseFilter{SubmittedOnly: true, EmployeeID: employeeId})
		if err != nil {
			httpx.LogInternalError(w, "db.list_responses", err)
			return
		}
		if len(responses) == 0 {
			httpx.LogNotFound(w, "get_employee_result.responses", employeeId)
			return
		}

		surveys := map[string]model.Survey{}
		scores := make([]scoring.Scores, 0, len(responses))
		var managerForms, teammateForms scoring.Mean

		for _, response := range responses {
			surveyId := response.Survey.ID()
			survey, ok := surveys[surveyId]
			if !ok {
				survey, err = app.GetSurvey(r.Context(), surveyId)
				if err != nil {
					httpx.LogInternalError(w, "db.get_survey", err)
					return
				}
				surveys[surveyId] = survey
			}

			scores = append(scores, scoring.Calculate(response.Answers, survey.Questions, employee.KPI))
			if access.IsManagerSurvey(survey.Title) {
				managerForms.Add(response.Answers)
			}
			if access.IsTeammateSurvey(survey.Title) {
				teammateForms.Add(response.Answers)
			}
		}

		result := EmployeeResult{
			ID:                  employee.ID,
			EmployeeName:        employee.Name,
			Department:          employee.Department,
			Role:                employee.Role,
			ResponseCount:       len(responses),
			ManagerFormAverage:  managerForms.Value(),
			TeammateFormAverage: teammateForms.Value(),
			Scores:              scoring.Aggregate(scores),
		}
		// newest submission first
		if responses[0].SubmittedAt != nil {
			result.Date = *responses[0].SubmittedAt
		}

		render.JSON(w, r, result)
	}
}
