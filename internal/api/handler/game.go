package handler

import (
	"encoding/json"
	"net/http"

	"github.com/ev-1233/Blackjac-chip-counter/internal/api/request"
	"github.com/ev-1233/Blackjac-chip-counter/internal/api/response"
	"github.com/ev-1233/Blackjac-chip-counter/internal/middleware"
	"github.com/ev-1233/Blackjac-chip-counter/internal/model"
	"github.com/ev-1233/Blackjac-chip-counter/internal/services/game"
)

// GameHandler handles game lifecycle endpoints
type GameHandler struct {
	gameController *game.Controller
}

// NewGameHandler creates a new game handler
func NewGameHandler(gameController *game.Controller) *GameHandler {
	return &GameHandler{
		gameController: gameController,
	}
}

// Get handles GET /api/v1/game
func (h *GameHandler) Get(w http.ResponseWriter, r *http.Request) {
	owner := middleware.MustGetOwner(r.Context())

	board, err := h.gameController.Scoreboard(r.Context(), owner)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.ScoreboardFromModel(board))
}

// Start handles POST /api/v1/game/start
func (h *GameHandler) Start(w http.ResponseWriter, r *http.Request) {
	owner := middleware.MustGetOwner(r.Context())

	board, err := h.gameController.StartGame(r.Context(), owner)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.ScoreboardFromModel(board))
}

// End handles POST /api/v1/game/end
func (h *GameHandler) End(w http.ResponseWriter, r *http.Request) {
	owner := middleware.MustGetOwner(r.Context())

	board, err := h.gameController.EndGame(r.Context(), owner)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.ScoreboardFromModel(board))
}

// Turn handles POST /api/v1/game/turn
func (h *GameHandler) Turn(w http.ResponseWriter, r *http.Request) {
	owner := middleware.MustGetOwner(r.Context())

	var req request.TakeTurnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	var (
		result *model.TurnResult
		err    error
	)
	if req.PlayerID != nil {
		result, err = h.gameController.TakeTurn(r.Context(), owner, model.PlayerID(*req.PlayerID), string(req.Delta))
	} else {
		result, err = h.gameController.TakeCurrentTurn(r.Context(), owner, string(req.Delta))
	}
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.TurnResultFromModel(result))
}
