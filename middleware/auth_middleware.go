package middleware

import (
	"net/http"
	"strings"

	"github.com/SaiNageswarS/go-api-boot/logger"
	"go.uber.org/zap"
)

// APIKeyAuth validates an API key from the Authorization header (Bearer
// token) or the X-API-Key header. With no key configured the guard is a
// pass-through, which is how local development runs.
type APIKeyAuth struct {
	key string
}

func ProvideAPIKeyAuth(key string) *APIKeyAuth {
	return &APIKeyAuth{key: key}
}

// Wrap guards a handler with the key check.
func (a *APIKeyAuth) Wrap(next http.HandlerFunc) http.HandlerFunc {
	if a.key == "" {
		return next
	}
	return func(w http.ResponseWriter, r *http.Request) {
		provided := extractKey(r)
		if provided == "" {
			logger.Error("API key missing from request", zap.String("path", r.URL.Path))
			http.Error(w, "API key required. Provide it in Authorization header (Bearer <key>) or X-API-Key header", http.StatusUnauthorized)
			return
		}
		if provided != a.key {
			logger.Error("Invalid API key provided", zap.String("path", r.URL.Path))
			http.Error(w, "Invalid API key", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

func extractKey(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); auth != "" {
		parts := strings.Split(auth, " ")
		if len(parts) == 2 && strings.ToLower(parts[0]) == "bearer" {
			return parts[1]
		}
		if len(parts) == 1 {
			return parts[0]
		}
		return ""
	}
	return r.Header.Get("X-API-Key")
}
