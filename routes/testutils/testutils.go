package testutils

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/mbolis/keeper-responses/model"
	"github.com/mbolis/keeper-responses/routes/middlewares"
)

// WithChiURLParams puts path parameters in the chi route context of req.
func WithChiURLParams(req *http.Request, params map[string]string) *http.Request {
	chiCtx := chi.NewRouteContext()
	for k, v := range params {
		chiCtx.URLParams.Add(k, v)
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, chiCtx))
}

// AsActor makes employee the authenticated actor of req.
func AsActor(req *http.Request, employee model.Employee) *http.Request {
	return req.WithContext(middlewares.WithActor(req.Context(), employee))
}
