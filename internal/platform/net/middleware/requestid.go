// Package middleware holds in house http middlewares
package middleware

import (
	"net/http"

	"starwatch/internal/platform/logger"

	"github.com/google/uuid"
)

// RequestID assigns every request an id, honoring an inbound X-Request-ID,
// stores it on the context, and mirrors it in the response header
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(logger.WithRequest(r.Context(), id)))
	})
}
