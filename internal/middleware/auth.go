package middleware

import (
	"net/http"

	"marketcart-be/internal/apperror"
	"marketcart-be/internal/auth"
	"marketcart-be/internal/logger"

	"go.uber.org/zap"
)

// AuthMiddleware validates the bearer token and stores the caller identity in
// the request context. Requests without a token pass through anonymously; a
// token that is present but invalid is rejected.
func AuthMiddleware(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := auth.ExtractAccessToken(r)
			if tokenStr == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := auth.ParseToken(secret, tokenStr)
			if err != nil {
				logger.FromCtx(r.Context()).Info("rejected access token", zap.Error(err))
				apperror.WriteHTTP(w, apperror.New(apperror.KindUnauthenticated, "invalid or expired token"))
				return
			}

			ctx := auth.WithIdentity(r.Context(), claims.UserID, auth.Role(claims.Role))
			ctx = logger.WithUserID(ctx, claims.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
