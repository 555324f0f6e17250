package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"canvasgw/internal/httputil"
)

// RequestID attaches a trace ID to every request. The caller may supply one
// via the X-Request-ID header; otherwise a fresh UUID is minted. The ID is
// echoed back in the response for client-side correlation.
func RequestID() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get("X-Request-ID")
			if requestID == "" {
				requestID = uuid.NewString()
			}

			w.Header().Set("X-Request-ID", requestID)
			next.ServeHTTP(w, httputil.WithRequestID(r, requestID))
		})
	}
}
