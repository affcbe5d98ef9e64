package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/ev-1233/Blackjac-chip-counter/internal/middleware"
	"github.com/ev-1233/Blackjac-chip-counter/internal/model"
	"github.com/ev-1233/Blackjac-chip-counter/internal/services/game"
	"github.com/ev-1233/Blackjac-chip-counter/internal/services/ledger"
	webmiddleware "github.com/ev-1233/Blackjac-chip-counter/internal/web/middleware"
	"github.com/ev-1233/Blackjac-chip-counter/internal/web/templates/layout"
	"github.com/ev-1233/Blackjac-chip-counter/internal/web/templates/pages"
)

// ScoreboardHandler handles the scoreboard page and player actions
type ScoreboardHandler struct {
	gameController *game.Controller
	logger         *slog.Logger
}

// NewScoreboardHandler creates a new ScoreboardHandler
func NewScoreboardHandler(gameController *game.Controller, logger *slog.Logger) *ScoreboardHandler {
	return &ScoreboardHandler{
		gameController: gameController,
		logger:         logger,
	}
}

// Home renders the scoreboard for the current owner
func (h *ScoreboardHandler) Home(w http.ResponseWriter, r *http.Request) {
	owner := middleware.MustGetOwner(r.Context())

	board, err := h.gameController.Scoreboard(r.Context(), owner)
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	data := pages.ScoreboardData{
		PageData: layout.PageData{
			Title: "Players",
			Flash: webmiddleware.GetFlash(r.Context()),
		},
		Board: board,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pages.Scoreboard(data).Render(r.Context(), w); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// AddPlayer handles POST /players
func (h *ScoreboardHandler) AddPlayer(w http.ResponseWriter, r *http.Request) {
	owner := middleware.MustGetOwner(r.Context())

	player, err := h.gameController.AddPlayer(r.Context(), owner, r.FormValue("name"), r.FormValue("score"))
	if err != nil {
		h.flashError(w, r, err)
		return
	}

	webmiddleware.SetFlash(w, "success", "Added player: "+player.Name)
	redirectHome(w, r)
}

// UpdateScore handles POST /players/{id}/update
func (h *ScoreboardHandler) UpdateScore(w http.ResponseWriter, r *http.Request) {
	owner := middleware.MustGetOwner(r.Context())

	id, ok := playerIDFromPath(r)
	if !ok {
		h.flashError(w, r, model.ErrPlayerNotFound)
		return
	}

	// A missing field means no change, matching the form's default
	rawDelta := r.FormValue("delta")
	if _, present := r.Form["delta"]; !present {
		rawDelta = "0"
	}
	delta, err := ledger.ParseDelta(rawDelta)
	if err != nil {
		h.flashError(w, r, err)
		return
	}

	player, err := h.gameController.AdjustScore(r.Context(), owner, id, rawDelta)
	if err != nil {
		h.flashError(w, r, err)
		return
	}

	webmiddleware.SetFlash(w, "success", fmt.Sprintf("Updated %s by %+d points.", player.Name, delta))
	redirectHome(w, r)
}

// DeletePlayer handles POST /players/{id}/delete
func (h *ScoreboardHandler) DeletePlayer(w http.ResponseWriter, r *http.Request) {
	owner := middleware.MustGetOwner(r.Context())

	id, ok := playerIDFromPath(r)
	if !ok {
		h.flashError(w, r, model.ErrPlayerNotFound)
		return
	}

	player, err := h.gameController.RemovePlayer(r.Context(), owner, id)
	if err != nil {
		h.flashError(w, r, err)
		return
	}

	webmiddleware.SetFlash(w, "success", "Removed "+player.Name+".")
	redirectHome(w, r)
}

// Reset handles POST /reset
func (h *ScoreboardHandler) Reset(w http.ResponseWriter, r *http.Request) {
	owner := middleware.MustGetOwner(r.Context())

	if _, err := h.gameController.ResetScores(r.Context(), owner); err != nil {
		h.flashError(w, r, err)
		return
	}

	webmiddleware.SetFlash(w, "success", "All scores reset to 0.")
	redirectHome(w, r)
}

// flashError turns a domain error into a flash message and redirects home.
// Anything that is not a domain error is a server failure.
func (h *ScoreboardHandler) flashError(w http.ResponseWriter, r *http.Request, err error) {
	message, ok := flashMessage(err)
	if !ok {
		h.serverError(w, r, err)
		return
	}
	webmiddleware.SetFlash(w, "error", message)
	redirectHome(w, r)
}

func (h *ScoreboardHandler) serverError(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.Error("request failed",
		slog.String("path", r.URL.Path),
		slog.String("error", err.Error()),
	)
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}

func flashMessage(err error) (string, bool) {
	var verr *model.ValidationError
	switch {
	case errors.As(err, &verr):
		switch verr.Field {
		case "name":
			return "Player name cannot be empty.", true
		case "score":
			return "Starting score must be a whole number.", true
		default:
			return "Score change must be a whole number.", true
		}
	case errors.Is(err, model.ErrPlayerExists):
		return "That player already exists.", true
	case errors.Is(err, model.ErrPlayerNotFound):
		return "Player not found.", true
	case errors.Is(err, model.ErrGameInProgress):
		return "Players can't be added or removed while a game is in progress.", true
	case errors.Is(err, model.ErrGameNotStarted):
		return "Start a game first.", true
	case errors.Is(err, model.ErrNotPlayerTurn):
		return "It's not that player's turn.", true
	case errors.Is(err, model.ErrNoPlayers):
		return "Add a player first.", true
	}
	return "", false
}

func playerIDFromPath(r *http.Request) (model.PlayerID, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		return 0, false
	}
	return model.PlayerID(id), true
}

// redirectHome sends the browser back to the scoreboard.
// HTMX requests get an HX-Redirect instead of a 303.
func redirectHome(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", "/")
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
