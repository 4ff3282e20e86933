package middleware

import (
	"crypto/subtle"
	"net/http"
	"os"

	"github.com/avandermeer/Fund-Accounting-Backend/internal/api/response"
)

// APIKeyMiddleware guards administrative endpoints. Requests must carry the
// shared key from the ADMIN_API_KEY environment variable in the X-API-Key
// header. If no key is configured the middleware rejects everything, so an
// unset variable can never leave admin routes open.
func APIKeyMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		expected := os.Getenv("ADMIN_API_KEY")
		if expected == "" {
			response.RespondError(w, http.StatusUnauthorized, "Unauthorized", "API key not configured")
			return
		}

		provided := r.Header.Get("X-API-Key")
		if provided == "" {
			response.RespondError(w, http.StatusUnauthorized, "Unauthorized", "Missing API key")
			return
		}

		if subtle.ConstantTimeCompare([]byte(provided), []byte(expected)) != 1 {
			response.RespondError(w, http.StatusUnauthorized, "Unauthorized", "Invalid API key")
			return
		}

		next.ServeHTTP(w, r)
	})
}
