package logger

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

type ctxKey string

const (
	requestIDKey   ctxKey = "request_id"
	userIDKey      ctxKey = "user_id"
	requestInfoKey ctxKey = "request_info"
)

// requestInfo carries identity learned further down the handler chain back up
// to LoggingMiddleware.
type requestInfo struct {
	mu      sync.Mutex
	userID  uint
	hasUser bool
}

func (i *requestInfo) setUser(userID uint) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.userID, i.hasUser = userID, true
}

func (i *requestInfo) user() (uint, bool) {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.userID, i.hasUser
}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

func RequestIDFrom(ctx context.Context) string {
	if v, ok := ctx.Value(requestIDKey).(string); ok {
		return v
	}
	return ""
}

// WithUserID tags every log line of the request with the caller's user id.
func WithUserID(ctx context.Context, userID uint) context.Context {
	if info, ok := ctx.Value(requestInfoKey).(*requestInfo); ok {
		info.setUser(userID)
	}
	return context.WithValue(ctx, userIDKey, userID)
}

// FromCtx returns logger with request_id and user_id added when present
func FromCtx(ctx context.Context) *zap.Logger {
	l := L()
	if reqID := RequestIDFrom(ctx); reqID != "" {
		l = l.With(zap.String("request_id", reqID))
	}
	if uid, ok := ctx.Value(userIDKey).(uint); ok {
		l = l.With(zap.Uint("user_id", uid))
	}
	return l
}
