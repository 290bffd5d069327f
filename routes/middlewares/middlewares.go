package middlewares

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/oauth"
	"github.com/mbolis/keeper-responses/database"
	"github.com/mbolis/keeper-responses/httpx"
	"github.com/mbolis/keeper-responses/log"
	"github.com/mbolis/keeper-responses/model"
	"github.com/pkg/errors"
)

type actorKey struct{}

// WithActor returns a context carrying the employee performing the request.
func WithActor(ctx context.Context, employee model.Employee) context.Context {
	return context.WithValue(ctx, actorKey{}, employee)
}

func Actor(ctx context.Context) (model.Employee, bool) {
	employee, ok := ctx.Value(actorKey{}).(model.Employee)
	return employee, ok
}

type EmployeeGetter interface {
	GetEmployee(ctx context.Context, id string) (model.Employee, error)
}

// Authenticated checks the bearer token, then loads the employee it was
// issued to as the request actor.
func Authenticated(secret string, employees EmployeeGetter) func(http.Handler) http.Handler {
	return chi.Chain(oauth.Authorize(secret, nil), LoadActor(employees)).Handler
}

func LoadActor(employees EmployeeGetter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, _ := r.Context().Value(oauth.ClaimsContext).(map[string]string)
			id := claims[httpx.ClaimID]
			if id == "" {
				httpx.LogStatus(w, http.StatusUnauthorized, log.DebugLevel, "auth.claims.id")
				return
			}

			employee, err := employees.GetEmployee(r.Context(), id)
			if errors.Is(err, database.ErrNotFound) {
				httpx.LogStatus(w, http.StatusUnauthorized, log.DebugLevel, "auth.employee.not_found")
				return
			}
			if err != nil {
				httpx.LogInternalError(w, "db.get_employee", err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), employee)))
		})
	}
}

// Admin lets through only actors with the admin role.
func Admin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok := Actor(r.Context())
		if !ok || actor.Role != model.RoleAdmin {
			httpx.LogStatus(w, http.StatusForbidden, log.DebugLevel, "auth.admin")
			return
		}
		next.ServeHTTP(w, r)
	})
}
