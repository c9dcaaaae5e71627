/**
 * @description
 * This file sets up the HTTP router for the crowdfunding backend using the
 * go-chi/chi router. It defines the API routes, applies middleware for logging,
 * CORS, and authentication, and mounts the payment order gateway under its own
 * subtree (the gateway handles its own CORS and routing on the trailing path
 * segment).
 *
 * @dependencies
 * - net/http, time: Standard Go libraries.
 * - github.com/go-chi/chi/v5: A lightweight and idiomatic router for Go.
 * - github.com/go-chi/cors: CORS middleware for the browser clients.
 */

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates the service router: public campaign reads, authenticated
// campaign/dashboard writes, optionally-authenticated donation recording, and
// the payment gateway subtree.
func NewRouter(h *CampaignHandlers, payments *PaymentHandlers, jwksURL string) *chi.Mux {
	r := chi.NewRouter()

	// Add standard middleware for logging, panic recovery, and timeouts.
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("healthy"))
	})

	// The payment gateway performs its own CORS and trailing-segment routing,
	// so it is mounted outside the cors.Handler group.
	r.Mount("/payments", payments)

	r.Group(func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"https://*", "http://*"},
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
			ExposedHeaders:   []string{"Link"},
			AllowCredentials: true,
			MaxAge:           300, // Maximum value not ignored by any major browsers
		}))

		// Public browse endpoints.
		r.Get("/campaigns", h.ListCampaignsHandler)
		r.Get("/campaigns/{id}", h.GetCampaignHandler)
		r.Get("/campaigns/{id}/donations", h.ListCampaignDonationsHandler)

		// Donation recording accepts anonymous donors.
		r.Group(func(r chi.Router) {
			r.Use(OptionalAuthMiddleware(jwksURL))
			r.Post("/donations", h.RecordDonationHandler)
		})

		// Routes that require authentication.
		r.Group(func(r chi.Router) {
			r.Use(AuthMiddleware(jwksURL))

			r.Post("/campaigns", h.CreateCampaignHandler)
			r.Get("/dashboard", h.DashboardHandler)
		})
	})

	return r
}
