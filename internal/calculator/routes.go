package calculator

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// RegisterRoutes mounts all calculator endpoints onto the given router
// under the /calculator prefix.
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Route("/calculator", func(r chi.Router) {
		r.Use(middleware.RequestSize(MaxRequestBytes))

		r.Get("/", h.Show)
		r.Post("/press", h.Press)
		r.Post("/sequence", h.Sequence)
		r.Post("/evaluate", h.Evaluate)
	})
}
