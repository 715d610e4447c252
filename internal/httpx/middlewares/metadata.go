package middlewares

import (
	"context"
	"net/http"
	"strings"
)

// IdempotencyHeader carries the caller's placement replay key.
const IdempotencyHeader = "Idempotency-Key"

// AttachRequestMetadata copies the idempotency key from the request headers
// into the context so handlers do not touch headers directly.
func AttachRequestMetadata(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := strings.TrimSpace(r.Header.Get(IdempotencyHeader))
		ctx := context.WithValue(r.Context(), ctxKeyIdempotencyKey, key)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
