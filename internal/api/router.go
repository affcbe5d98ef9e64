package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/ev-1233/Blackjac-chip-counter/internal/api/handler"
	apimiddleware "github.com/ev-1233/Blackjac-chip-counter/internal/api/middleware"
	"github.com/ev-1233/Blackjac-chip-counter/internal/middleware"
	"github.com/ev-1233/Blackjac-chip-counter/internal/services/game"
	"github.com/ev-1233/Blackjac-chip-counter/internal/services/identity"
	"github.com/ev-1233/Blackjac-chip-counter/internal/storage"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger         *slog.Logger
	Storage        storage.Storage
	Identity       *identity.Service
	GameController *game.Controller
	RateLimit      apimiddleware.RateLimitConfig
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	sessionHandler := handler.NewSessionHandler(cfg.Identity, cfg.Storage)
	playerHandler := handler.NewPlayerHandler(cfg.GameController)
	gameHandler := handler.NewGameHandler(cfg.GameController)

	// Create middleware
	ownerMiddleware := apimiddleware.Owner(cfg.Identity)
	rateLimiter := apimiddleware.NewRateLimiter(cfg.RateLimit)
	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := apimiddleware.Recovery(cfg.Logger)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)

	// Unauthenticated routes
	api.HandleFunc("/health", sessionHandler.Health).Methods(http.MethodGet)
	api.HandleFunc("/session", sessionHandler.Create).Methods(http.MethodPost)

	// Owner-scoped routes
	owned := api.NewRoute().Subrouter()
	owned.Use(ownerMiddleware)
	owned.Use(rateLimiter.Middleware)

	owned.HandleFunc("/session", sessionHandler.Get).Methods(http.MethodGet)

	owned.HandleFunc("/players", playerHandler.List).Methods(http.MethodGet)
	owned.HandleFunc("/players", playerHandler.Add).Methods(http.MethodPost)
	owned.HandleFunc("/players/{id:[0-9]+}", playerHandler.Remove).Methods(http.MethodDelete)
	owned.HandleFunc("/players/{id:[0-9]+}/score", playerHandler.AdjustScore).Methods(http.MethodPost)
	owned.HandleFunc("/scores/by-name", playerHandler.AdjustByName).Methods(http.MethodPost)
	owned.HandleFunc("/scores/reset", playerHandler.Reset).Methods(http.MethodPost)

	owned.HandleFunc("/game", gameHandler.Get).Methods(http.MethodGet)
	owned.HandleFunc("/game/start", gameHandler.Start).Methods(http.MethodPost)
	owned.HandleFunc("/game/end", gameHandler.End).Methods(http.MethodPost)
	owned.HandleFunc("/game/turn", gameHandler.Turn).Methods(http.MethodPost)

	return r
}
