// Package httpapi exposes the cart core over HTTP.
package httpapi

import (
	"net/http"
	"time"

	"marketcart-be/internal/auth"
	"marketcart-be/internal/cart"
	"marketcart-be/internal/checkout"
	"marketcart-be/internal/logger"
	"marketcart-be/internal/metrics"
	"marketcart-be/internal/middleware"
	"marketcart-be/internal/user"

	"github.com/go-chi/chi/v5"
)

type Deps struct {
	Carts          cart.Service
	Checkout       checkout.Service
	Users          user.Service
	Guard          RoleGuard
	Limiter        *middleware.RateLimiter
	JWTSecret      string
	RequestTimeout time.Duration
}

func NewRouter(d Deps) http.Handler {
	cartHandler := NewCartHandler(d.Carts)
	checkoutHandler := NewCheckoutHandler(d.Checkout)
	accountHandler := NewAccountHandler(d.Users)

	r := chi.NewRouter()

	// Global middleware
	r.Use(logger.RequestIDMiddleware)
	r.Use(logger.LoggingMiddleware)
	r.Use(middleware.Recoverer)
	if d.RequestTimeout > 0 {
		r.Use(middleware.Timeout(d.RequestTimeout))
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthMiddleware(d.JWTSecret))
		if d.Limiter != nil {
			r.Use(d.Limiter.Middleware)
		}
		r.Use(requireRole(d.Guard, auth.RoleUser))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartHandler.GetCart)
			r.Delete("/", cartHandler.ClearCart)
			r.Post("/items", cartHandler.AddItem)
			r.Patch("/items/{productID}", cartHandler.UpdateQuantity)
			r.Delete("/items/{productID}", cartHandler.RemoveItem)
		})

		r.Post("/checkout", checkoutHandler.Checkout)
		r.Delete("/account", accountHandler.DeleteOwnAccount)

		r.Route("/admin", func(r chi.Router) {
			r.Use(requireRole(d.Guard, auth.RoleAdmin))
			r.Delete("/users/{userID}", accountHandler.DeleteUser)
			r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
				respondJSON(w, r, http.StatusOK, metrics.Snapshot())
			})
		})
	})

	return r
}
