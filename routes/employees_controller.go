package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/mbolis/keeper-responses/access"
	"github.com/mbolis/keeper-responses/app"
	"github.com/mbolis/keeper-responses/httpx"
	"github.com/mbolis/keeper-responses/log"
	"github.com/mbolis/keeper-responses/model"
	"github.com/mbolis/keeper-responses/routes/middlewares"
)

// ListEmployees lists the employees the actor may see. With
// ?forEvaluation=true it lists the ones the actor may evaluate instead.
func ListEmployees(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := middlewares.Actor(r.Context())
		if !ok {
			httpx.LogStatus(w, http.StatusUnauthorized, log.DebugLevel, "list_employees.actor")
			return
		}

		keep, ok := access.EmployeeFilter(actor, r.URL.Query().Get("forEvaluation") == "true")
		if !ok {
			httpx.LogStatus(w, http.StatusForbidden, log.DebugLevel, "list_employees.access")
			return
		}

		employees, err := app.ListEmployees(r.Context())
		if err != nil {
			httpx.LogInternalError(w, "db.list_employees", err)
			return
		}

		visible := make([]model.Employee, 0, len(employees))
		for _, e := range employees {
			if keep(e) {
				visible = append(visible, e)
			}
		}
		render.JSON(w, r, visible)
	}
}

func GetEmployee(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := middlewares.Actor(r.Context())
		if !ok {
			httpx.LogStatus(w, http.StatusUnauthorized, log.DebugLevel, "get_employee.actor")
			return
		}

		employee, err := app.GetEmployee(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			httpx.LogStoreError(w, "get_employee", err)
			return
		}
		if !access.CanViewEmployee(actor, employee) {
			httpx.LogStatus(w, http.StatusForbidden, log.DebugLevel, "get_employee.access")
			return
		}
		render.JSON(w, r, employee)
	}
}
