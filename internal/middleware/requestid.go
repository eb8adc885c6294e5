// internal/middleware/requestid.go
//
// Per-request id for log correlation.
//
// A uuid is minted (or taken from an upstream X-Request-Id), echoed on
// the response, and stashed in the request context so deeper layers can
// tag their log lines.
package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

type ridKey struct{}

// RequestID assigns or propagates the X-Request-Id header.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-Id")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", id)

		ctx := context.WithValue(r.Context(), ridKey{}, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// FromContext returns the request id, or "" outside a request.
func FromContext(ctx context.Context) string {
	id, _ := ctx.Value(ridKey{}).(string)
	return id
}
