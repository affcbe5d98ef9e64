package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/ev-1233/Blackjac-chip-counter/internal/model"
	"github.com/ev-1233/Blackjac-chip-counter/internal/storage"
	"github.com/ev-1233/Blackjac-chip-counter/internal/storage/memory"
)

type LedgerSuite struct {
	suite.Suite
	storage *memory.Storage
	ledger  *Ledger
	ctx     context.Context
}

func TestLedgerSuite(t *testing.T) {
	suite.Run(t, new(LedgerSuite))
}

func (s *LedgerSuite) SetupTest() {
	s.storage = memory.New()
	s.ledger = New()
	s.ctx = context.Background()
}

// unit runs fn against the owner's touched session
func (s *LedgerSuite) unit(owner model.OwnerID, fn func(tx storage.OwnerTx, sess *model.OwnerSession) error) error {
	return s.storage.WithOwner(s.ctx, owner, func(tx storage.OwnerTx) error {
		if err := tx.TouchSession(s.ctx, time.Now()); err != nil {
			return err
		}
		sess, err := tx.GetSession(s.ctx)
		if err != nil {
			return err
		}
		return fn(tx, sess)
	})
}

func (s *LedgerSuite) add(owner model.OwnerID, name string, score int64) *model.Player {
	var player *model.Player
	err := s.unit(owner, func(tx storage.OwnerTx, sess *model.OwnerSession) error {
		var err error
		player, err = s.ledger.Add(s.ctx, tx, sess, name, score)
		return err
	})
	s.Require().NoError(err)
	return player
}

func (s *LedgerSuite) startGame(owner model.OwnerID, current model.PlayerID) {
	err := s.unit(owner, func(tx storage.OwnerTx, sess *model.OwnerSession) error {
		return tx.SetGameState(s.ctx, true, &current)
	})
	s.Require().NoError(err)
}

func (s *LedgerSuite) TestAdd() {
	p := s.add("alice", "Ann", 5)
	s.Equal("Ann", p.Name)
	s.Equal(int64(5), p.Score)
	s.Equal(model.OwnerID("alice"), p.OwnerID)
}

func (s *LedgerSuite) TestAddDuplicateConflicts() {
	s.add("alice", "Ann", 0)

	err := s.unit("alice", func(tx storage.OwnerTx, sess *model.OwnerSession) error {
		_, err := s.ledger.Add(s.ctx, tx, sess, "Ann", 0)
		return err
	})
	s.ErrorIs(err, model.ErrPlayerExists)

	// Same name is fine for another owner
	s.add("bob", "Ann", 0)
}

func (s *LedgerSuite) TestAddRejectedMidGame() {
	p := s.add("alice", "Ann", 0)
	s.startGame("alice", p.ID)

	err := s.unit("alice", func(tx storage.OwnerTx, sess *model.OwnerSession) error {
		_, err := s.ledger.Add(s.ctx, tx, sess, "Ben", 0)
		return err
	})
	s.ErrorIs(err, model.ErrGameInProgress)
}

func (s *LedgerSuite) TestRemove() {
	p := s.add("alice", "Ann", 0)

	var removed *model.Player
	err := s.unit("alice", func(tx storage.OwnerTx, sess *model.OwnerSession) error {
		var err error
		removed, err = s.ledger.Remove(s.ctx, tx, sess, p.ID)
		return err
	})
	s.Require().NoError(err)
	s.Equal("Ann", removed.Name)
}

func (s *LedgerSuite) TestRemoveUnknownIsNotFound() {
	err := s.unit("alice", func(tx storage.OwnerTx, sess *model.OwnerSession) error {
		_, err := s.ledger.Remove(s.ctx, tx, sess, 999)
		return err
	})
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *LedgerSuite) TestRemoveOtherOwnersPlayerIsNotFound() {
	p := s.add("bob", "Bea", 0)

	err := s.unit("alice", func(tx storage.OwnerTx, sess *model.OwnerSession) error {
		_, err := s.ledger.Remove(s.ctx, tx, sess, p.ID)
		return err
	})
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *LedgerSuite) TestRemoveRejectedMidGame() {
	p := s.add("alice", "Ann", 0)
	s.startGame("alice", p.ID)

	err := s.unit("alice", func(tx storage.OwnerTx, sess *model.OwnerSession) error {
		_, err := s.ledger.Remove(s.ctx, tx, sess, p.ID)
		return err
	})
	s.ErrorIs(err, model.ErrGameInProgress)
}

func (s *LedgerSuite) TestAdjustByIDAndName() {
	p := s.add("alice", "Ann", 10)

	err := s.unit("alice", func(tx storage.OwnerTx, sess *model.OwnerSession) error {
		updated, err := s.ledger.Adjust(s.ctx, tx, p.ID, -4)
		s.Require().NoError(err)
		s.Equal(int64(6), updated.Score)

		updated, err = s.ledger.AdjustByName(s.ctx, tx, "Ann", 25)
		s.Require().NoError(err)
		s.Equal(int64(31), updated.Score)
		return nil
	})
	s.Require().NoError(err)
}

func (s *LedgerSuite) TestAdjustUnknownName() {
	s.add("alice", "Ann", 0)

	err := s.unit("alice", func(tx storage.OwnerTx, sess *model.OwnerSession) error {
		_, err := s.ledger.AdjustByName(s.ctx, tx, "ann", 1)
		return err
	})
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *LedgerSuite) TestResetAllowedMidGame() {
	p := s.add("alice", "Ann", 10)
	s.add("alice", "Ben", -3)
	s.startGame("alice", p.ID)

	err := s.unit("alice", func(tx storage.OwnerTx, sess *model.OwnerSession) error {
		if err := s.ledger.Reset(s.ctx, tx); err != nil {
			return err
		}
		players, err := s.ledger.List(s.ctx, tx)
		s.Require().NoError(err)
		for _, player := range players {
			s.Zero(player.Score)
		}

		after, err := tx.GetSession(s.ctx)
		s.Require().NoError(err)
		s.True(after.GameStarted)
		s.Equal(p.ID, *after.CurrentPlayer)
		return nil
	})
	s.Require().NoError(err)
}
