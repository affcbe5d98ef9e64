// Package session tracks owner activity and expires owners that go quiet.
package session

import (
	"context"
	"errors"

	"github.com/ev-1233/Blackjac-chip-counter/internal/dependencies/clock"
	"github.com/ev-1233/Blackjac-chip-counter/internal/model"
	"github.com/ev-1233/Blackjac-chip-counter/internal/storage"
)

// Registry manages the per-owner session row inside an owner unit
type Registry struct {
	clock  clock.Clock
	policy clock.TTLPolicy
}

// NewRegistry creates a new Registry
func NewRegistry(clock clock.Clock, policy clock.TTLPolicy) *Registry {
	return &Registry{
		clock:  clock,
		policy: policy,
	}
}

// GetOrCreate returns the owner's session, creating a default one if none exists
func (r *Registry) GetOrCreate(ctx context.Context, tx storage.OwnerTx) (*model.OwnerSession, error) {
	sess, err := tx.GetSession(ctx)
	if !errors.Is(err, model.ErrSessionNotFound) {
		return sess, err
	}

	if err := tx.TouchSession(ctx, r.clock.Now()); err != nil {
		return nil, err
	}
	return tx.GetSession(ctx)
}

// Touch marks the owner active and returns the updated session.
//
// If the stored session has already expired the owner's data is purged first,
// so a request that races the sweeper still starts from an empty owner.
// purged reports whether that happened.
func (r *Registry) Touch(ctx context.Context, tx storage.OwnerTx) (sess *model.OwnerSession, purged bool, err error) {
	now := r.clock.Now()

	existing, err := tx.GetSession(ctx)
	switch {
	case errors.Is(err, model.ErrSessionNotFound):
	case err != nil:
		return nil, false, err
	case r.policy.IsExpired(existing.LastSeenAt, now):
		if err := tx.Purge(ctx); err != nil {
			return nil, false, err
		}
		purged = true
	}

	if err := tx.TouchSession(ctx, now); err != nil {
		return nil, false, err
	}
	sess, err = tx.GetSession(ctx)
	return sess, purged, err
}

// SetGameState writes both game fields together. A stopped game never keeps
// a current player.
func (r *Registry) SetGameState(ctx context.Context, tx storage.OwnerTx, started bool, current *model.PlayerID) (*model.OwnerSession, error) {
	if _, err := r.GetOrCreate(ctx, tx); err != nil {
		return nil, err
	}
	if !started {
		current = nil
	}
	if err := tx.SetGameState(ctx, started, current); err != nil {
		return nil, err
	}
	return tx.GetSession(ctx)
}
