package middleware

import (
	"fmt"
	"net/http"

	"marketcart-be/internal/apperror"
	"marketcart-be/internal/logger"

	"go.uber.org/zap"
)

// Recoverer turns a handler panic into a SYSTEM_INTERNAL response.
func Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}

			logger.FromCtx(r.Context()).Error("panic recovered",
				zap.Any("panic", rec),
				zap.Stack("stack"),
			)
			apperror.WriteHTTP(w, apperror.Internal(fmt.Errorf("panic: %v", rec)))
		}()

		next.ServeHTTP(w, r)
	})
}
