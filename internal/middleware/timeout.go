package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"marketcart-be/internal/apperror"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// Timeout bounds each request with d. A handler that runs out the deadline
// without writing a response gets SYSTEM_UNAVAILABLE.
func Timeout(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()

			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			if ww.Status() == 0 && errors.Is(ctx.Err(), context.DeadlineExceeded) {
				apperror.WriteHTTP(w, apperror.FromError(ctx.Err()))
			}
		})
	}
}
