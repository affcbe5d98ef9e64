package middleware

import (
	"log/slog"
	"net/http"

	"github.com/ev-1233/Blackjac-chip-counter/internal/middleware"
	"github.com/ev-1233/Blackjac-chip-counter/internal/web/templates/pages"
)

// Recovery creates panic recovery middleware for the web interface.
// Renders an HTML error page with the incident reference and a link back to the scoreboard.
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Recovery(logger, webPanicHandler)
}

func webPanicHandler(w http.ResponseWriter, r *http.Request, incident string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusInternalServerError)
	_ = pages.ErrorPage(incident).Render(r.Context(), w)
}
