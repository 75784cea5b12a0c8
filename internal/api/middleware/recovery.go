package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"
)

// Recovery is the catch-all request boundary: any panic becomes a
// generic internal-error response instead of a dropped connection, and
// the full detail stays in the server log.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				slog.Error("panic recovered",
					"panic", rec,
					"path", r.URL.Path,
					"stack", string(debug.Stack()),
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				w.Write([]byte(`{"error":"internal server error","kind":"internal_error"}`))
			}
		}()

		next.ServeHTTP(w, r)
	})
}
