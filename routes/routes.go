package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mbolis/keeper-responses/app"
	"github.com/mbolis/keeper-responses/routes/middlewares"
)

func Wire(app app.App) http.Handler {
	root := chi.NewRouter()
	root.Use(middleware.Logger, middleware.Recoverer)

	root.Mount("/api", apiRouter(app))

	if app.StaticDir != "" {
		root.Mount("/", serveStaticExport(app.StaticDir))
	}

	return root
}

func apiRouter(app app.App) http.Handler {
	api := chi.NewRouter()

	api.Post("/login", Login(app))
	api.Post("/refresh", Refresh(app))

	api.Group(func(r chi.Router) {
		r.Use(middlewares.Authenticated(app.TokenSecret, app.Storage))

		r.Post("/responses/submit", SubmitResponse(app))
		r.Get("/responses", ListResponses(app))
		r.Get("/responses/{surveyId}/{employeeId}", GetResponse(app))

		r.Get("/results", GetResults(app))
		r.Get("/results/{employeeId}", GetEmployeeResult(app))

		r.Get("/surveys", ListSurveys(app))
		r.Get("/surveys/{id}", GetSurveyById(app))

		r.Get("/employees", ListEmployees(app))
		r.Get("/employees/{id}", GetEmployee(app))

		r.Route("/admin", func(r chi.Router) {
			r.Use(middlewares.Admin)

			// CRUD survey
			r.Post("/surveys", CreateSurvey(app))
			r.Put("/surveys/{id}", UpdateSurvey(app))
			r.Delete("/surveys/{id}", DeleteSurvey(app))

			// CRUD employee
			r.Post("/employees", CreateEmployee(app))
			r.Put("/employees/{id}", UpdateEmployee(app))
			r.Delete("/employees/{id}", DeleteEmployee(app))
			r.Put("/employees/{id}/kpi", SetEmployeeKPI(app))
		})
	})

	return api
}
