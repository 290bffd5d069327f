package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"github.com/mbolis/keeper-responses/app"
	"github.com/mbolis/keeper-responses/database"
	"github.com/mbolis/keeper-responses/httpx"
	"github.com/mbolis/keeper-responses/log"
	"github.com/mbolis/keeper-responses/model"
	"github.com/mbolis/keeper-responses/routes/middlewares"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

var validate = validator.New()

func CreateSurvey(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, _ := middlewares.Actor(r.Context())

		survey := model.Survey{}
		err := render.DecodeJSON(r.Body, &survey)
		if err != nil {
			httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body", "%s", err)
			return
		}
		if err = survey.Validate(); err != nil {
			httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, "request.validate", "%s", err)
			return
		}
		survey.CreatedBy = actor.ID

		err = app.CreateSurvey(r.Context(), &survey, app.Now())
		if err != nil {
			httpx.LogInternalError(w, "db.insert_survey", err)
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, survey)
	}
}

type newEmployee struct {
	model.Employee
	Password string `json:"password" validate:"required,min=8"`
}

func CreateEmployee(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload := newEmployee{}
		err := render.DecodeJSON(r.Body, &payload)
		if err != nil {
			httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body", "%s", err)
			return
		}
		if err = validate.Struct(payload); err != nil {
			httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, "request.validate", "%s", err)
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(payload.Password), bcrypt.DefaultCost)
		if err != nil {
			httpx.LogInternalError(w, "bcrypt.hash", err)
			return
		}

		employee := payload.Employee
		err = app.CreateEmployee(r.Context(), &employee, hash, app.Now())
		if errors.Is(err, database.ErrDuplicate) {
			httpx.LogStatusMsg(w, http.StatusConflict, log.DebugLevel, "create_employee.email", "email already registered")
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "db.insert_employee", err)
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, employee)
	}
}

func SetEmployeeKPI(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		employeeId := chi.URLParam(r, "id")

		var payload struct {
			KPI *float64 `json:"kpi" validate:"required,gte=0"`
		}
		err := render.DecodeJSON(r.Body, &payload)
		if err != nil {
			httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body", "%s", err)
			return
		}
		if err = validate.Struct(payload); err != nil {
			httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, "request.validate", "%s", err)
			return
		}

		err = app.SetEmployeeKPI(r.Context(), employeeId, *payload.KPI, app.Now())
		if err != nil {
			httpx.LogStoreError(w, "update_employee_kpi", err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// UpdateSurvey replaces a survey definition. Responses already given are kept.
func UpdateSurvey(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		survey := model.Survey{}
		err := render.DecodeJSON(r.Body, &survey)
		if err != nil {
			httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body", "%s", err)
			return
		}
		if err = survey.Validate(); err != nil {
			httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, "request.validate", "%s", err)
			return
		}
		survey.ID = chi.URLParam(r, "id")

		err = app.UpdateSurvey(r.Context(), &survey, app.Now())
		if err != nil {
			httpx.LogStoreError(w, "update_survey", err)
			return
		}

		render.JSON(w, r, survey)
	}
}

func DeleteSurvey(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := app.DeleteSurvey(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			httpx.LogStoreError(w, "delete_survey", err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// employeePatch holds the profile fields an update may change; absent
// fields keep their stored value.
type employeePatch struct {
	Name        *string     `json:"name"`
	Email       *string     `json:"email"`
	Role        *model.Role `json:"role"`
	Department  *string     `json:"department"`
	Departments *[]string   `json:"departments"`
	KPI         *float64    `json:"kpi"`
}

func (p employeePatch) apply(e *model.Employee) {
	if p.Name != nil {
		e.Name = *p.Name
	}
	if p.Email != nil {
		e.Email = *p.Email
	}
	if p.Role != nil {
		e.Role = *p.Role
	}
	if p.Department != nil {
		e.Department = *p.Department
	}
	if p.Departments != nil {
		e.Departments = *p.Departments
	}
	if p.KPI != nil {
		e.KPI = *p.KPI
	}
}

func UpdateEmployee(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		patch := employeePatch{}
		err := render.DecodeJSON(r.Body, &patch)
		if err != nil {
			httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body", "%s", err)
			return
		}

		employee, err := app.GetEmployee(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			httpx.LogStoreError(w, "get_employee", err)
			return
		}
		patch.apply(&employee)
		if err = employee.Validate(); err != nil {
			httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, "request.validate", "%s", err)
			return
		}

		err = app.UpdateEmployee(r.Context(), &employee, app.Now())
		if err != nil {
			httpx.LogStoreError(w, "update_employee", err)
			return
		}

		render.JSON(w, r, employee)
	}
}

func DeleteEmployee(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, _ := middlewares.Actor(r.Context())
		employeeId := chi.URLParam(r, "id")
		if employeeId == actor.ID {
			httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, "delete_employee.self", "you cannot delete yourself")
			return
		}

		err := app.DeleteEmployee(r.Context(), employeeId)
		if err != nil {
			httpx.LogStoreError(w, "delete_employee", err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
