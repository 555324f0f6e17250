package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"canvasgw/internal/httputil"
)

// Recovery converts a handler panic into a clean 500 problem response so
// one bad request cannot take the gateway down. The panic is logged with
// the request id minted by the RequestID middleware; nothing from the
// request body or headers reaches the log.
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if v := recover(); v != nil {
					logger.Error("panic recovered",
						"panic", v,
						"method", r.Method,
						"path", r.URL.Path,
						"request_id", httputil.GetRequestID(r),
						"stack", string(debug.Stack()),
					)

					httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
