package storage

import (
	"context"
	"time"

	"github.com/ev-1233/Blackjac-chip-counter/internal/model"
)

// Storage defines the interface for data persistence.
//
// All reads and writes of an owner's rows go through WithOwner, which runs the
// callback as one atomic unit. Units for the same owner are linearized; units for
// different owners may run concurrently. If the callback returns an error nothing
// it wrote becomes visible. Optimistic backends may invoke the callback more than
// once, so it must not have side effects outside tx.
type Storage interface {
	WithOwner(ctx context.Context, owner model.OwnerID, fn func(tx OwnerTx) error) error

	// SweepExpired deletes players and sessions of owners whose last activity
	// is strictly before cutoff. Returns the number of owners removed.
	SweepExpired(ctx context.Context, cutoff time.Time) (int, error)

	// Stats reports aggregate counts across all owners
	Stats(ctx context.Context) (Stats, error)

	Close() error
}

// OwnerTx is the view of a single owner's data inside an atomic unit.
// It cannot address any other owner.
type OwnerTx interface {
	// Registry operations
	GetSession(ctx context.Context) (*model.OwnerSession, error)
	TouchSession(ctx context.Context, now time.Time) error
	SetGameState(ctx context.Context, started bool, current *model.PlayerID) error

	// Ledger operations
	ListPlayers(ctx context.Context) ([]model.Player, error) // ascending id
	GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error)
	GetPlayerByName(ctx context.Context, name string) (*model.Player, error)
	InsertPlayer(ctx context.Context, name string, score int64) (*model.Player, error)
	DeletePlayer(ctx context.Context, id model.PlayerID) error
	AdjustScore(ctx context.Context, id model.PlayerID, delta int64) (*model.Player, error)
	ResetScores(ctx context.Context) error

	// Purge removes every player and the session of this owner
	Purge(ctx context.Context) error
}

// Stats holds aggregate storage counts
type Stats struct {
	Owners  int `json:"owners"`
	Players int `json:"players"`
}
