package ids

import (
	"strings"

	"github.com/google/uuid"

	"github.com/ev-1233/Blackjac-chip-counter/internal/model"
)

// Generator creates new owner identifiers and can be mocked for testing
type Generator interface {
	NewOwnerID() model.OwnerID
}

// UUIDGenerator issues random (v4) UUIDs in 32-char hex form
type UUIDGenerator struct{}

// New creates a new UUIDGenerator
func New() *UUIDGenerator {
	return &UUIDGenerator{}
}

// NewOwnerID returns a fresh owner id
func (g *UUIDGenerator) NewOwnerID() model.OwnerID {
	return model.OwnerID(strings.ReplaceAll(uuid.NewString(), "-", ""))
}
