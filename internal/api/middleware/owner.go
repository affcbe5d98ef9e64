package middleware

import (
	"net/http"

	"github.com/ev-1233/Blackjac-chip-counter/internal/api/apierr"
	"github.com/ev-1233/Blackjac-chip-counter/internal/middleware"
	"github.com/ev-1233/Blackjac-chip-counter/internal/services/identity"
)

// OwnerTokenHeader carries the owner token on API requests
const OwnerTokenHeader = "X-Owner-Token"

// OwnerCookieName is the cookie shared with the web UI
const OwnerCookieName = "owner"

// Owner requires a valid owner token and puts the owner id in the request context
func Owner(identityService *identity.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r)
			if token == "" {
				apierr.WriteError(w, apierr.NewUnauthorizedError())
				return
			}

			owner, err := identityService.Verify(token)
			if err != nil {
				apierr.WriteError(w, err)
				return
			}

			next.ServeHTTP(w, middleware.WithOwner(r, owner))
		})
	}
}

// extractToken reads the owner token from the header, falling back to the cookie
func extractToken(r *http.Request) string {
	if token := r.Header.Get(OwnerTokenHeader); token != "" {
		return token
	}

	cookie, err := r.Cookie(OwnerCookieName)
	if err == nil {
		return cookie.Value
	}

	return ""
}
