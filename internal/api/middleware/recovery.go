package middleware

import (
	"log/slog"
	"net/http"

	"github.com/ev-1233/Blackjac-chip-counter/internal/api/apierr"
	"github.com/ev-1233/Blackjac-chip-counter/internal/middleware"
)

// Recovery turns a panic in an API handler into a JSON INTERNAL_ERROR whose
// message names the incident id logged with the stack trace
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Recovery(logger, func(w http.ResponseWriter, _ *http.Request, incident string) {
		apierr.WriteError(w, apierr.NewIncidentError(incident))
	})
}
