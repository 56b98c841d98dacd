package webhooks

import (
	"github.com/go-chi/chi/v5"

	"fake-webhook-api/internal/middleware"
)

// Mount registers the liveness route and the /fake-api routes on r.
func (h *Handler) Mount(r chi.Router) {
	r.Get("/", h.HandleRoot)
	r.Route("/fake-api", func(r chi.Router) {
		r.Use(middleware.CaptureBody(h.Logger))
		r.Post("/", h.HandleFakeAPI)
		r.Post("/{type}", h.HandleTypedFakeAPI)
	})
}
