package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/ev-1233/Blackjac-chip-counter/internal/middleware"
	"github.com/ev-1233/Blackjac-chip-counter/internal/model"
	"github.com/ev-1233/Blackjac-chip-counter/internal/services/identity"
)

type contextKey string

// OwnerCookieName holds the signed owner token. The JSON API accepts the same cookie.
const OwnerCookieName = "owner"

// Owner returns middleware that resolves the visitor's owner id from the signed
// cookie, issuing a fresh owner when the cookie is missing or fails verification.
// Every request re-sends the cookie, so it expires maxAge after the last visit,
// the same moment the owner's data becomes eligible for sweeping.
func Owner(identityService *identity.Service, maxAge time.Duration, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			owner, token, ok := ownerFromCookie(r, identityService)
			if !ok {
				owner, token = identityService.Issue()
				logger.Debug("issued owner", slog.String("owner_id", string(owner)))
			}
			setOwnerCookie(w, token, maxAge)

			next.ServeHTTP(w, middleware.WithOwner(r, owner))
		})
	}
}

func ownerFromCookie(r *http.Request, identityService *identity.Service) (model.OwnerID, string, bool) {
	cookie, err := r.Cookie(OwnerCookieName)
	if err != nil || cookie.Value == "" {
		return "", "", false
	}

	owner, err := identityService.Verify(cookie.Value)
	if err != nil {
		return "", "", false
	}
	return owner, cookie.Value, true
}

func setOwnerCookie(w http.ResponseWriter, token string, maxAge time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     OwnerCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
