package web

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/ev-1233/Blackjac-chip-counter/internal/middleware"
	"github.com/ev-1233/Blackjac-chip-counter/internal/services/game"
	"github.com/ev-1233/Blackjac-chip-counter/internal/services/identity"
	"github.com/ev-1233/Blackjac-chip-counter/internal/web/handler"
	webmiddleware "github.com/ev-1233/Blackjac-chip-counter/internal/web/middleware"
)

// RouterConfig holds configuration for the web router
type RouterConfig struct {
	Logger         *slog.Logger
	Identity       *identity.Service
	GameController *game.Controller
	// CookieMaxAge is how long the owner cookie lives, normally the inactivity TTL
	CookieMaxAge time.Duration
	StaticDir    string // Path to static files directory
}

// NewRouter creates a new web router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create middleware
	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := webmiddleware.Recovery(cfg.Logger)
	flashMiddleware := webmiddleware.Flash()
	ownerMiddleware := webmiddleware.Owner(cfg.Identity, cfg.CookieMaxAge, cfg.Logger)

	// Apply global middleware to all routes
	r.Use(recoveryMiddleware)
	r.Use(loggingMiddleware)

	scoreboardHandler := handler.NewScoreboardHandler(cfg.GameController, cfg.Logger)

	// Static files
	if cfg.StaticDir != "" {
		staticHandler := http.StripPrefix("/static/", http.FileServer(http.Dir(cfg.StaticDir)))
		r.PathPrefix("/static/").Handler(staticHandler)
	}

	// Every page belongs to an owner; first-time visitors get one issued
	pages := r.NewRoute().Subrouter()
	pages.Use(flashMiddleware)
	pages.Use(ownerMiddleware)

	pages.HandleFunc("/", scoreboardHandler.Home).Methods(http.MethodGet)
	pages.HandleFunc("/players", scoreboardHandler.AddPlayer).Methods(http.MethodPost)
	pages.HandleFunc("/players/{id}/update", scoreboardHandler.UpdateScore).Methods(http.MethodPost)
	pages.HandleFunc("/players/{id}/delete", scoreboardHandler.DeletePlayer).Methods(http.MethodPost)
	pages.HandleFunc("/reset", scoreboardHandler.Reset).Methods(http.MethodPost)

	pages.HandleFunc("/game/start", scoreboardHandler.StartGame).Methods(http.MethodPost)
	pages.HandleFunc("/game/turn", scoreboardHandler.TakeTurn).Methods(http.MethodPost)
	pages.HandleFunc("/game/end", scoreboardHandler.EndGame).Methods(http.MethodPost)

	return r
}
