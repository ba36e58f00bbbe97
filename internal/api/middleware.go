// Package api implements the Mailcraft REST API using chi.
package api

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/starford/mailcraft/internal/access"
	"github.com/starford/mailcraft/internal/models"
)

// UserHeader names the request header carrying the acting user's id.
const UserHeader = "X-User-ID"

// AuthMiddleware returns middleware that validates a Bearer token.
// If enabled is false, all requests pass through (disabled mode).
// If enabled is true, requests must carry a valid "Authorization: Bearer <token>" header.
func AuthMiddleware(enabled bool, token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !enabled {
				next.ServeHTTP(w, r)
				return
			}
			auth := r.Header.Get("Authorization")
			given := strings.TrimPrefix(auth, "Bearer ")
			if !strings.HasPrefix(auth, "Bearer ") || subtle.ConstantTimeCompare([]byte(given), []byte(token)) != 1 {
				writeJSON(w, http.StatusUnauthorized, errorBody("unauthorized"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireArea returns middleware that refuses requests whose user, taken
// from UserHeader, may not use area. A nil store lets every request through.
func RequireArea(store *access.Store, area models.Area) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if store == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !store.HasPermission(r.Header.Get(UserHeader), area) {
				writeJSON(w, http.StatusForbidden, errorBody("access denied: "+string(area)))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
