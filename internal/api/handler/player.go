package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/ev-1233/Blackjac-chip-counter/internal/api/request"
	"github.com/ev-1233/Blackjac-chip-counter/internal/api/response"
	"github.com/ev-1233/Blackjac-chip-counter/internal/middleware"
	"github.com/ev-1233/Blackjac-chip-counter/internal/model"
	"github.com/ev-1233/Blackjac-chip-counter/internal/services/game"
)

// PlayerHandler handles player and score endpoints
type PlayerHandler struct {
	gameController *game.Controller
}

// NewPlayerHandler creates a new player handler
func NewPlayerHandler(gameController *game.Controller) *PlayerHandler {
	return &PlayerHandler{
		gameController: gameController,
	}
}

// List handles GET /api/v1/players
func (h *PlayerHandler) List(w http.ResponseWriter, r *http.Request) {
	owner := middleware.MustGetOwner(r.Context())

	turnOrder, leaderboard, err := h.gameController.ListPlayers(r.Context(), owner)
	if err != nil {
		WriteError(w, err)
		return
	}

	board := response.ScoreboardFromModel(&model.Scoreboard{TurnOrder: turnOrder, Leaderboard: leaderboard})
	response.JSON(w, http.StatusOK, response.PlayerList{
		TurnOrder:   board.TurnOrder,
		Leaderboard: board.Leaderboard,
	})
}

// Add handles POST /api/v1/players
func (h *PlayerHandler) Add(w http.ResponseWriter, r *http.Request) {
	owner := middleware.MustGetOwner(r.Context())

	var req request.AddPlayerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	player, err := h.gameController.AddPlayer(r.Context(), owner, req.Name, string(req.Score))
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.PlayerFromModel(player))
}

// Remove handles DELETE /api/v1/players/{id}
func (h *PlayerHandler) Remove(w http.ResponseWriter, r *http.Request) {
	owner := middleware.MustGetOwner(r.Context())

	id, err := playerIDFromPath(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	player, err := h.gameController.RemovePlayer(r.Context(), owner, id)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.PlayerFromModel(player))
}

// AdjustScore handles POST /api/v1/players/{id}/score
func (h *PlayerHandler) AdjustScore(w http.ResponseWriter, r *http.Request) {
	owner := middleware.MustGetOwner(r.Context())

	id, err := playerIDFromPath(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	var req request.AdjustScoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	player, err := h.gameController.AdjustScore(r.Context(), owner, id, string(req.Delta))
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.PlayerFromModel(player))
}

// AdjustByName handles POST /api/v1/scores/by-name
func (h *PlayerHandler) AdjustByName(w http.ResponseWriter, r *http.Request) {
	owner := middleware.MustGetOwner(r.Context())

	var req request.AdjustByNameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	player, err := h.gameController.AdjustScoreByName(r.Context(), owner, req.Name, string(req.Delta))
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.PlayerFromModel(player))
}

// Reset handles POST /api/v1/scores/reset
func (h *PlayerHandler) Reset(w http.ResponseWriter, r *http.Request) {
	owner := middleware.MustGetOwner(r.Context())

	board, err := h.gameController.ResetScores(r.Context(), owner)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.ScoreboardFromModel(board))
}

func playerIDFromPath(r *http.Request) (model.PlayerID, error) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		return 0, NewInvalidRequestError("invalid player id")
	}
	return model.PlayerID(id), nil
}
