package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/ev-1233/Blackjac-chip-counter/internal/middleware"
	"github.com/ev-1233/Blackjac-chip-counter/internal/model"
	webmiddleware "github.com/ev-1233/Blackjac-chip-counter/internal/web/middleware"
)

// StartGame handles POST /game/start
func (h *ScoreboardHandler) StartGame(w http.ResponseWriter, r *http.Request) {
	owner := middleware.MustGetOwner(r.Context())

	board, err := h.gameController.StartGame(r.Context(), owner)
	if err != nil {
		h.flashError(w, r, err)
		return
	}

	message := "Game started."
	if board.CurrentPlayer != nil {
		message += " " + board.CurrentPlayer.Name + " is up."
	}
	webmiddleware.SetFlash(w, "success", message)
	redirectHome(w, r)
}

// TakeTurn handles POST /game/turn.
// With a player_id field the turn must belong to that player, otherwise the current player scores.
func (h *ScoreboardHandler) TakeTurn(w http.ResponseWriter, r *http.Request) {
	owner := middleware.MustGetOwner(r.Context())
	rawDelta := r.FormValue("delta")

	var (
		result *model.TurnResult
		err    error
	)
	if rawID := strings.TrimSpace(r.FormValue("player_id")); rawID != "" {
		id, parseErr := strconv.ParseInt(rawID, 10, 64)
		if parseErr != nil {
			h.flashError(w, r, model.ErrPlayerNotFound)
			return
		}
		result, err = h.gameController.TakeTurn(r.Context(), owner, model.PlayerID(id), rawDelta)
	} else {
		result, err = h.gameController.TakeCurrentTurn(r.Context(), owner, rawDelta)
	}
	if err != nil {
		h.flashError(w, r, err)
		return
	}

	message := fmt.Sprintf("%s scored %+d.", result.Acting.Name, result.Delta)
	if result.Next != nil {
		message += " " + result.Next.Name + " is up."
	}
	webmiddleware.SetFlash(w, "success", message)
	redirectHome(w, r)
}

// EndGame handles POST /game/end
func (h *ScoreboardHandler) EndGame(w http.ResponseWriter, r *http.Request) {
	owner := middleware.MustGetOwner(r.Context())

	if _, err := h.gameController.EndGame(r.Context(), owner); err != nil {
		h.flashError(w, r, err)
		return
	}

	webmiddleware.SetFlash(w, "info", "Game ended.")
	redirectHome(w, r)
}
