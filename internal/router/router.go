package router

import (
	"net/http"

	"greenkart/internal/handler"
	"greenkart/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// New creates the HTTP router with all routes and middleware configured.
//
// The webhook and health endpoints sit outside the API key and identity
// middleware: the gateway signs its own requests and a load balancer probe
// carries no credentials.
func New(
	checkoutHandler *handler.CheckoutHandler,
	orderHandler *handler.OrderHandler,
	webhookHandler *handler.WebhookHandler,
	apiKey string,
	logger zerolog.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logging(logger))
	r.Use(middleware.CORS)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})

	r.Post("/webhook/payment", webhookHandler.HandleNotification)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.APIKeyAuth(apiKey, logger))
		r.Use(middleware.Identity(logger))

		r.Post("/checkout", checkoutHandler.Checkout)
		r.Get("/orders", orderHandler.List)
		r.Get("/orders/{id}", orderHandler.GetByID)
		r.Get("/orders/{id}/check-status", orderHandler.CheckStatus)

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireAdmin(logger))

			r.Get("/orders", orderHandler.ListAll)
			r.Patch("/orders/{id}/status", orderHandler.OverrideStatus)
			r.Delete("/orders/{id}", orderHandler.Delete)
		})
	})

	return r
}
