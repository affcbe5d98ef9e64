package game

import (
	"context"
	"log/slog"

	"github.com/ev-1233/Blackjac-chip-counter/internal/model"
	"github.com/ev-1233/Blackjac-chip-counter/internal/services/ledger"
	"github.com/ev-1233/Blackjac-chip-counter/internal/storage"
)

// StartGame begins a game with players in insertion order; the earliest
// player goes first. Starting a game that is already running changes nothing.
func (c *Controller) StartGame(ctx context.Context, owner model.OwnerID) (*model.Scoreboard, error) {
	var board *model.Scoreboard
	alreadyStarted := false

	err := c.unit(ctx, owner, func(tx storage.OwnerTx, sess *model.OwnerSession) error {
		alreadyStarted = sess.GameStarted
		if !alreadyStarted {
			players, err := c.ledger.List(ctx, tx)
			if err != nil {
				return err
			}
			if len(players) == 0 {
				return model.ErrNoPlayers
			}
			if sess, err = c.registry.SetGameState(ctx, tx, true, &players[0].ID); err != nil {
				return err
			}
		}

		var err error
		board, err = c.scoreboard(ctx, tx, sess)
		return err
	})
	if err != nil {
		return nil, err
	}

	if !alreadyStarted {
		c.logger.Info("game started",
			slog.String("owner_id", string(owner)),
			slog.Int("player_count", len(board.TurnOrder)),
		)
	}
	return board, nil
}

// EndGame returns the owner to the not-started state unconditionally
func (c *Controller) EndGame(ctx context.Context, owner model.OwnerID) (*model.Scoreboard, error) {
	var board *model.Scoreboard
	err := c.unit(ctx, owner, func(tx storage.OwnerTx, sess *model.OwnerSession) error {
		sess, err := c.registry.SetGameState(ctx, tx, false, nil)
		if err != nil {
			return err
		}
		board, err = c.scoreboard(ctx, tx, sess)
		return err
	})
	if err != nil {
		return nil, err
	}

	c.logger.Info("game ended", slog.String("owner_id", string(owner)))
	return board, nil
}

// TakeTurn applies delta for the named player, who must hold the current turn
func (c *Controller) TakeTurn(ctx context.Context, owner model.OwnerID, playerID model.PlayerID, rawDelta string) (*model.TurnResult, error) {
	delta, err := ledger.ParseDelta(rawDelta)
	if err != nil {
		return nil, err
	}

	var result *model.TurnResult
	err = c.unit(ctx, owner, func(tx storage.OwnerTx, sess *model.OwnerSession) error {
		if !sess.GameStarted {
			return model.ErrGameNotStarted
		}
		if sess.CurrentPlayer == nil || *sess.CurrentPlayer != playerID {
			return model.ErrNotPlayerTurn
		}
		if _, err := tx.GetPlayer(ctx, playerID); err != nil {
			return err
		}

		result, err = c.applyTurn(ctx, tx, playerID, delta)
		return err
	})
	if err != nil {
		return nil, err
	}

	c.logTurn(owner, result)
	return result, nil
}

// TakeCurrentTurn applies delta for whoever holds the current turn. A missing
// or stale reference falls back to the earliest player.
func (c *Controller) TakeCurrentTurn(ctx context.Context, owner model.OwnerID, rawDelta string) (*model.TurnResult, error) {
	delta, err := ledger.ParseDelta(rawDelta)
	if err != nil {
		return nil, err
	}

	var result *model.TurnResult
	err = c.unit(ctx, owner, func(tx storage.OwnerTx, sess *model.OwnerSession) error {
		if !sess.GameStarted {
			return model.ErrGameNotStarted
		}
		players, err := c.ledger.List(ctx, tx)
		if err != nil {
			return err
		}
		if len(players) == 0 {
			return model.ErrNoPlayers
		}

		acting := players[0].ID
		if sess.CurrentPlayer != nil && model.FindPlayer(players, *sess.CurrentPlayer) >= 0 {
			acting = *sess.CurrentPlayer
		}

		result, err = c.applyTurn(ctx, tx, acting, delta)
		return err
	})
	if err != nil {
		return nil, err
	}

	c.logTurn(owner, result)
	return result, nil
}

// applyTurn scores the acting player and passes the turn to the next player
// in insertion order, wrapping around after the last.
func (c *Controller) applyTurn(ctx context.Context, tx storage.OwnerTx, acting model.PlayerID, delta int64) (*model.TurnResult, error) {
	player, err := c.ledger.Adjust(ctx, tx, acting, delta)
	if err != nil {
		return nil, err
	}

	players, err := c.ledger.List(ctx, tx)
	if err != nil {
		return nil, err
	}

	next := nextPlayer(players, acting)
	var nextID *model.PlayerID
	if next != nil {
		nextID = &next.ID
	}
	if _, err := c.registry.SetGameState(ctx, tx, true, nextID); err != nil {
		return nil, err
	}

	return &model.TurnResult{
		Acting: *player,
		Next:   next,
		Delta:  delta,
	}, nil
}

// nextPlayer returns the player after acting in turn order. If acting is gone
// rotation restarts at the first player. Nil when there are no players.
func nextPlayer(players []model.Player, acting model.PlayerID) *model.Player {
	if len(players) == 0 {
		return nil
	}
	idx := model.FindPlayer(players, acting)
	next := players[(idx+1)%len(players)]
	return &next
}

func (c *Controller) logTurn(owner model.OwnerID, result *model.TurnResult) {
	attrs := []any{
		slog.String("owner_id", string(owner)),
		slog.Int64("player_id", int64(result.Acting.ID)),
		slog.Int64("delta", result.Delta),
		slog.Int64("score", result.Acting.Score),
	}
	if result.Next != nil {
		attrs = append(attrs, slog.Int64("next_player_id", int64(result.Next.ID)))
	}
	c.logger.Info("turn taken", attrs...)
}
