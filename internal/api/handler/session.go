package handler

import (
	"net/http"

	"github.com/ev-1233/Blackjac-chip-counter/internal/api/response"
	"github.com/ev-1233/Blackjac-chip-counter/internal/middleware"
	"github.com/ev-1233/Blackjac-chip-counter/internal/services/identity"
	"github.com/ev-1233/Blackjac-chip-counter/internal/storage"
)

// SessionHandler issues owner tokens and reports service health
type SessionHandler struct {
	identity *identity.Service
	storage  storage.Storage
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(identity *identity.Service, storage storage.Storage) *SessionHandler {
	return &SessionHandler{
		identity: identity,
		storage:  storage,
	}
}

// Create handles POST /api/v1/session
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	owner, token := h.identity.Issue()
	response.JSON(w, http.StatusCreated, response.Session{
		OwnerID: string(owner),
		Token:   token,
	})
}

// Get handles GET /api/v1/session
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	owner := middleware.MustGetOwner(r.Context())
	response.JSON(w, http.StatusOK, response.Session{OwnerID: string(owner)})
}

// Health handles GET /api/v1/health
func (h *SessionHandler) Health(w http.ResponseWriter, r *http.Request) {
	stats, err := h.storage.Stats(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.Health{
		Status:  "ok",
		Owners:  stats.Owners,
		Players: stats.Players,
	})
}
