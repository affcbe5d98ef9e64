// Package game is the owner-scoped scoreboard engine. Every operation sweeps
// expired owners, then runs as one atomic unit for the calling owner:
// touch the session, read, validate, mutate, persist.
package game

import (
	"context"
	"log/slog"

	"github.com/ev-1233/Blackjac-chip-counter/internal/dependencies/clock"
	"github.com/ev-1233/Blackjac-chip-counter/internal/model"
	"github.com/ev-1233/Blackjac-chip-counter/internal/services/ledger"
	"github.com/ev-1233/Blackjac-chip-counter/internal/services/session"
	"github.com/ev-1233/Blackjac-chip-counter/internal/storage"
)

// Controller manages players, scores and the turn-based game for each owner
type Controller struct {
	storage  storage.Storage
	registry *session.Registry
	sweeper  *session.Sweeper
	ledger   *ledger.Ledger
	logger   *slog.Logger
}

// NewController creates a new game Controller
func NewController(
	storage storage.Storage,
	clock clock.Clock,
	policy clock.TTLPolicy,
	logger *slog.Logger,
) *Controller {
	return &Controller{
		storage:  storage,
		registry: session.NewRegistry(clock, policy),
		sweeper:  session.NewSweeper(storage, clock, policy, logger),
		ledger:   ledger.New(),
		logger:   logger,
	}
}

// Sweeper exposes the expiry sweeper for background and admin use
func (c *Controller) Sweeper() *session.Sweeper {
	return c.sweeper
}

// unit runs fn for owner after sweeping and touching the owner's session
func (c *Controller) unit(ctx context.Context, owner model.OwnerID, fn func(tx storage.OwnerTx, sess *model.OwnerSession) error) error {
	if owner == "" {
		return model.NewValidationError("owner", "must not be empty")
	}

	if _, err := c.sweeper.Sweep(ctx); err != nil {
		return err
	}

	var purged bool
	err := c.storage.WithOwner(ctx, owner, func(tx storage.OwnerTx) error {
		sess, wasPurged, err := c.registry.Touch(ctx, tx)
		if err != nil {
			return err
		}
		purged = wasPurged
		return fn(tx, sess)
	})
	if err == nil && purged {
		c.logger.Info("expired owner reset", slog.String("owner_id", string(owner)))
	}
	return err
}

// Scoreboard returns the owner's players in both orderings along with the game state
func (c *Controller) Scoreboard(ctx context.Context, owner model.OwnerID) (*model.Scoreboard, error) {
	var board *model.Scoreboard
	err := c.unit(ctx, owner, func(tx storage.OwnerTx, sess *model.OwnerSession) error {
		var err error
		board, err = c.scoreboard(ctx, tx, sess)
		return err
	})
	return board, err
}

// ListPlayers returns the owner's players in turn order and in leaderboard order
func (c *Controller) ListPlayers(ctx context.Context, owner model.OwnerID) (turnOrder, leaderboard []model.Player, err error) {
	board, err := c.Scoreboard(ctx, owner)
	if err != nil {
		return nil, nil, err
	}
	return board.TurnOrder, board.Leaderboard, nil
}

// AddPlayer validates the raw name and starting score and adds the player
func (c *Controller) AddPlayer(ctx context.Context, owner model.OwnerID, rawName, rawScore string) (*model.Player, error) {
	name, err := ledger.ParseName(rawName)
	if err != nil {
		return nil, err
	}
	score, err := ledger.ParseScore(rawScore)
	if err != nil {
		return nil, err
	}

	var player *model.Player
	err = c.unit(ctx, owner, func(tx storage.OwnerTx, sess *model.OwnerSession) error {
		player, err = c.ledger.Add(ctx, tx, sess, name, score)
		return err
	})
	if err != nil {
		return nil, err
	}

	c.logger.Info("player added",
		slog.String("owner_id", string(owner)),
		slog.Int64("player_id", int64(player.ID)),
		slog.String("name", player.Name),
		slog.Int64("score", player.Score),
	)
	return player, nil
}

// RemovePlayer deletes a player and returns the removed record
func (c *Controller) RemovePlayer(ctx context.Context, owner model.OwnerID, id model.PlayerID) (*model.Player, error) {
	var player *model.Player
	err := c.unit(ctx, owner, func(tx storage.OwnerTx, sess *model.OwnerSession) error {
		var err error
		player, err = c.ledger.Remove(ctx, tx, sess, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	c.logger.Info("player removed",
		slog.String("owner_id", string(owner)),
		slog.Int64("player_id", int64(id)),
		slog.String("name", player.Name),
	)
	return player, nil
}

// AdjustScore adds a raw delta to the score of the player with the given id
func (c *Controller) AdjustScore(ctx context.Context, owner model.OwnerID, id model.PlayerID, rawDelta string) (*model.Player, error) {
	delta, err := ledger.ParseDelta(rawDelta)
	if err != nil {
		return nil, err
	}

	var player *model.Player
	err = c.unit(ctx, owner, func(tx storage.OwnerTx, sess *model.OwnerSession) error {
		player, err = c.ledger.Adjust(ctx, tx, id, delta)
		return err
	})
	if err != nil {
		return nil, err
	}

	c.logScoreChange(owner, player, delta)
	return player, nil
}

// AdjustScoreByName adds a raw delta to the score of the player with the exact given name.
// A nil error means a player matched and was updated.
func (c *Controller) AdjustScoreByName(ctx context.Context, owner model.OwnerID, name, rawDelta string) (*model.Player, error) {
	delta, err := ledger.ParseDelta(rawDelta)
	if err != nil {
		return nil, err
	}

	var player *model.Player
	err = c.unit(ctx, owner, func(tx storage.OwnerTx, sess *model.OwnerSession) error {
		player, err = c.ledger.AdjustByName(ctx, tx, name, delta)
		return err
	})
	if err != nil {
		return nil, err
	}

	c.logScoreChange(owner, player, delta)
	return player, nil
}

// ResetScores zeroes every score for the owner in any game state
func (c *Controller) ResetScores(ctx context.Context, owner model.OwnerID) (*model.Scoreboard, error) {
	var board *model.Scoreboard
	err := c.unit(ctx, owner, func(tx storage.OwnerTx, sess *model.OwnerSession) error {
		if err := c.ledger.Reset(ctx, tx); err != nil {
			return err
		}
		var err error
		board, err = c.scoreboard(ctx, tx, sess)
		return err
	})
	if err != nil {
		return nil, err
	}

	c.logger.Info("scores reset", slog.String("owner_id", string(owner)))
	return board, nil
}

func (c *Controller) logScoreChange(owner model.OwnerID, player *model.Player, delta int64) {
	c.logger.Info("score adjusted",
		slog.String("owner_id", string(owner)),
		slog.Int64("player_id", int64(player.ID)),
		slog.Int64("delta", delta),
		slog.Int64("score", player.Score),
	)
}

// scoreboard builds the owner's view, repairing a current-player reference
// that no longer resolves to one of the owner's players
func (c *Controller) scoreboard(ctx context.Context, tx storage.OwnerTx, sess *model.OwnerSession) (*model.Scoreboard, error) {
	players, err := c.ledger.List(ctx, tx)
	if err != nil {
		return nil, err
	}

	if sess.GameStarted && len(players) > 0 {
		if sess.CurrentPlayer == nil || model.FindPlayer(players, *sess.CurrentPlayer) < 0 {
			sess, err = c.registry.SetGameState(ctx, tx, true, &players[0].ID)
			if err != nil {
				return nil, err
			}
		}
	}

	return model.NewScoreboard(sess, players), nil
}
