// Package ledger implements player bookkeeping for a single owner.
package ledger

import (
	"context"
	"errors"
	"math"

	"github.com/ev-1233/Blackjac-chip-counter/internal/model"
	"github.com/ev-1233/Blackjac-chip-counter/internal/storage"
)

// Ledger performs player operations inside an owner unit.
// Structural edits consult the session so they can be refused mid-game.
type Ledger struct{}

// New creates a new Ledger
func New() *Ledger {
	return &Ledger{}
}

// Add inserts a player with the given starting score
func (l *Ledger) Add(ctx context.Context, tx storage.OwnerTx, sess *model.OwnerSession, name string, score int64) (*model.Player, error) {
	if sess.GameStarted {
		return nil, model.ErrGameInProgress
	}

	_, err := tx.GetPlayerByName(ctx, name)
	if err == nil {
		return nil, model.ErrPlayerExists
	}
	if !errors.Is(err, model.ErrPlayerNotFound) {
		return nil, err
	}

	return tx.InsertPlayer(ctx, name, score)
}

// Remove deletes a player and returns the removed record
func (l *Ledger) Remove(ctx context.Context, tx storage.OwnerTx, sess *model.OwnerSession, id model.PlayerID) (*model.Player, error) {
	player, err := tx.GetPlayer(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess.GameStarted {
		return nil, model.ErrGameInProgress
	}

	if err := tx.DeletePlayer(ctx, id); err != nil {
		return nil, err
	}
	return player, nil
}

// Adjust adds delta to a player's score and returns the updated record.
// A sum outside the int64 range is refused and the score is left unchanged.
func (l *Ledger) Adjust(ctx context.Context, tx storage.OwnerTx, id model.PlayerID, delta int64) (*model.Player, error) {
	player, err := tx.GetPlayer(ctx, id)
	if err != nil {
		return nil, err
	}
	return l.adjust(ctx, tx, player, delta)
}

// AdjustByName adds delta to the score of the player with the exact given name
func (l *Ledger) AdjustByName(ctx context.Context, tx storage.OwnerTx, name string, delta int64) (*model.Player, error) {
	player, err := tx.GetPlayerByName(ctx, name)
	if err != nil {
		return nil, err
	}
	return l.adjust(ctx, tx, player, delta)
}

func (l *Ledger) adjust(ctx context.Context, tx storage.OwnerTx, player *model.Player, delta int64) (*model.Player, error) {
	if overflows(player.Score, delta) {
		return nil, model.NewValidationError("delta", "score out of range")
	}
	return tx.AdjustScore(ctx, player.ID, delta)
}

func overflows(score, delta int64) bool {
	if delta > 0 {
		return score > math.MaxInt64-delta
	}
	return score < math.MinInt64-delta
}

// List returns the owner's players in turn order (ascending id)
func (l *Ledger) List(ctx context.Context, tx storage.OwnerTx) ([]model.Player, error) {
	players, err := tx.ListPlayers(ctx)
	if err != nil {
		return nil, err
	}
	return model.SortByTurn(players), nil
}

// Reset sets every score to zero. Game fields are left alone.
func (l *Ledger) Reset(ctx context.Context, tx storage.OwnerTx) error {
	return tx.ResetScores(ctx)
}
