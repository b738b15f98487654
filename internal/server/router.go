package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"go-chi-calculator/internal/calculator"
	"go-chi-calculator/internal/handlers"
	"go-chi-calculator/internal/observability"
	"go-chi-calculator/internal/session"
)

// Dependencies are the domain components the router mounts.
type Dependencies struct {
	Calculator  *calculator.Handler
	Identity    *session.Identity
	AntiForgery func(http.Handler) http.Handler
}

func NewRouter(deps Dependencies) http.Handler {

	r := chi.NewRouter()

	r.Use(observability.RequestIDMiddleware)
	r.Use(observability.TracingMiddleware)
	r.Use(observability.LoggingMiddleware)

	r.Get("/health", handlers.Health)

	r.Handle("/metrics", observability.PrometheusHandler())

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/calculator/", http.StatusFound)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequestSize(calculator.MaxRequestBytes))
		r.Use(deps.Identity.Middleware)
		r.Use(deps.AntiForgery)
		calculator.RegisterRoutes(r, deps.Calculator)
	})

	return r
}
