package middlewares

import "context"

// contextKey is unexported so keys from other packages cannot collide.
type contextKey string

const (
	ctxKeyUserID         contextKey = "user_id"
	ctxKeyIdempotencyKey contextKey = "idempotency_key"
)

// UserID returns the authenticated caller's id, if any.
func UserID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(ctxKeyUserID).(string)
	return id, ok && id != ""
}

// IdempotencyKey returns the request's Idempotency-Key header value, or "".
func IdempotencyKey(ctx context.Context) string {
	key, _ := ctx.Value(ctxKeyIdempotencyKey).(string)
	return key
}
