// Package storagetest holds a conformance suite that every storage backend runs.
package storagetest

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/ev-1233/Blackjac-chip-counter/internal/model"
	"github.com/ev-1233/Blackjac-chip-counter/internal/storage"
)

// Suite exercises the storage.Storage contract.
// Backends embed it and assign Storage in SetupTest.
type Suite struct {
	suite.Suite
	Storage storage.Storage
	Ctx     context.Context
}

var (
	baseTime   = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	errAborted = errors.New("aborted")
)

func (s *Suite) with(owner model.OwnerID, fn func(tx storage.OwnerTx) error) {
	s.Require().NoError(s.Storage.WithOwner(s.Ctx, owner, fn))
}

func (s *Suite) addPlayers(owner model.OwnerID, names ...string) []model.Player {
	var players []model.Player
	s.with(owner, func(tx storage.OwnerTx) error {
		if err := tx.TouchSession(s.Ctx, baseTime); err != nil {
			return err
		}
		for _, name := range names {
			p, err := tx.InsertPlayer(s.Ctx, name, 0)
			if err != nil {
				return err
			}
			players = append(players, *p)
		}
		return nil
	})
	return players
}

func (s *Suite) listPlayers(owner model.OwnerID) []model.Player {
	var players []model.Player
	s.with(owner, func(tx storage.OwnerTx) error {
		var err error
		players, err = tx.ListPlayers(s.Ctx)
		return err
	})
	return players
}

func (s *Suite) session(owner model.OwnerID) (*model.OwnerSession, error) {
	var sess *model.OwnerSession
	err := s.Storage.WithOwner(s.Ctx, owner, func(tx storage.OwnerTx) error {
		var err error
		sess, err = tx.GetSession(s.Ctx)
		return err
	})
	return sess, err
}

// Session tests

func (s *Suite) TestGetSessionMissing() {
	_, err := s.session("nobody")
	s.ErrorIs(err, model.ErrSessionNotFound)
}

func (s *Suite) TestTouchCreatesDefaultSession() {
	s.with("alice", func(tx storage.OwnerTx) error {
		return tx.TouchSession(s.Ctx, baseTime)
	})

	sess, err := s.session("alice")
	s.Require().NoError(err)
	s.Equal(model.OwnerID("alice"), sess.OwnerID)
	s.Equal(baseTime.Unix(), sess.LastSeenAt.Unix())
	s.False(sess.GameStarted)
	s.Nil(sess.CurrentPlayer)
}

func (s *Suite) TestTouchKeepsGameState() {
	players := s.addPlayers("alice", "Ann")
	s.with("alice", func(tx storage.OwnerTx) error {
		return tx.SetGameState(s.Ctx, true, &players[0].ID)
	})
	s.with("alice", func(tx storage.OwnerTx) error {
		return tx.TouchSession(s.Ctx, baseTime.Add(time.Hour))
	})

	sess, err := s.session("alice")
	s.Require().NoError(err)
	s.Equal(baseTime.Add(time.Hour).Unix(), sess.LastSeenAt.Unix())
	s.True(sess.GameStarted)
	s.Require().NotNil(sess.CurrentPlayer)
	s.Equal(players[0].ID, *sess.CurrentPlayer)
}

func (s *Suite) TestSetGameStateClearsCurrent() {
	players := s.addPlayers("alice", "Ann")
	s.with("alice", func(tx storage.OwnerTx) error {
		return tx.SetGameState(s.Ctx, true, &players[0].ID)
	})
	s.with("alice", func(tx storage.OwnerTx) error {
		return tx.SetGameState(s.Ctx, false, nil)
	})

	sess, err := s.session("alice")
	s.Require().NoError(err)
	s.False(sess.GameStarted)
	s.Nil(sess.CurrentPlayer)
}

func (s *Suite) TestSetGameStateWithoutSession() {
	err := s.Storage.WithOwner(s.Ctx, "ghost", func(tx storage.OwnerTx) error {
		return tx.SetGameState(s.Ctx, true, nil)
	})
	s.ErrorIs(err, model.ErrSessionNotFound)
}

// Player tests

func (s *Suite) TestInsertAndListInIDOrder() {
	inserted := s.addPlayers("alice", "Zed", "Amy", "Bob")

	listed := s.listPlayers("alice")
	s.Require().Len(listed, 3)
	for i := range inserted {
		s.Equal(inserted[i].ID, listed[i].ID)
		s.Equal(inserted[i].Name, listed[i].Name)
		s.Equal(model.OwnerID("alice"), listed[i].OwnerID)
	}
	s.Less(int64(listed[0].ID), int64(listed[1].ID))
	s.Less(int64(listed[1].ID), int64(listed[2].ID))
}

func (s *Suite) TestInsertWithStartingScore() {
	var p *model.Player
	s.with("alice", func(tx storage.OwnerTx) error {
		var err error
		p, err = tx.InsertPlayer(s.Ctx, "Ann", -15)
		return err
	})
	s.Equal(int64(-15), p.Score)
	s.Equal(int64(-15), s.listPlayers("alice")[0].Score)
}

func (s *Suite) TestInsertDuplicateName() {
	s.addPlayers("alice", "Ann")
	err := s.Storage.WithOwner(s.Ctx, "alice", func(tx storage.OwnerTx) error {
		_, err := tx.InsertPlayer(s.Ctx, "Ann", 0)
		return err
	})
	s.ErrorIs(err, model.ErrPlayerExists)
}

func (s *Suite) TestNamesAreCaseSensitive() {
	s.addPlayers("alice", "Ann", "ann")
	s.Len(s.listPlayers("alice"), 2)
}

func (s *Suite) TestSameNameDifferentOwners() {
	a := s.addPlayers("alice", "Ann")
	b := s.addPlayers("bob", "Ann")
	s.NotEqual(a[0].ID, b[0].ID)
	s.Len(s.listPlayers("alice"), 1)
	s.Len(s.listPlayers("bob"), 1)
}

func (s *Suite) TestOwnerCannotSeeOtherOwnersPlayers() {
	b := s.addPlayers("bob", "Bea")

	err := s.Storage.WithOwner(s.Ctx, "alice", func(tx storage.OwnerTx) error {
		_, err := tx.GetPlayer(s.Ctx, b[0].ID)
		return err
	})
	s.ErrorIs(err, model.ErrPlayerNotFound)

	err = s.Storage.WithOwner(s.Ctx, "alice", func(tx storage.OwnerTx) error {
		_, err := tx.AdjustScore(s.Ctx, b[0].ID, 10)
		return err
	})
	s.ErrorIs(err, model.ErrPlayerNotFound)

	err = s.Storage.WithOwner(s.Ctx, "alice", func(tx storage.OwnerTx) error {
		return tx.DeletePlayer(s.Ctx, b[0].ID)
	})
	s.ErrorIs(err, model.ErrPlayerNotFound)

	s.Equal(int64(0), s.listPlayers("bob")[0].Score)
}

func (s *Suite) TestGetPlayerByName() {
	s.addPlayers("alice", "Ann", "Ben")
	s.with("alice", func(tx storage.OwnerTx) error {
		p, err := tx.GetPlayerByName(s.Ctx, "Ben")
		s.Require().NoError(err)
		s.Equal("Ben", p.Name)

		_, err = tx.GetPlayerByName(s.Ctx, "ben")
		s.ErrorIs(err, model.ErrPlayerNotFound)
		return nil
	})
}

func (s *Suite) TestAdjustScore() {
	players := s.addPlayers("alice", "Ann")
	s.with("alice", func(tx storage.OwnerTx) error {
		p, err := tx.AdjustScore(s.Ctx, players[0].ID, 25)
		s.Require().NoError(err)
		s.Equal(int64(25), p.Score)

		p, err = tx.AdjustScore(s.Ctx, players[0].ID, -40)
		s.Require().NoError(err)
		s.Equal(int64(-15), p.Score)
		return nil
	})
	s.Equal(int64(-15), s.listPlayers("alice")[0].Score)
}

func (s *Suite) TestDeletePlayer() {
	players := s.addPlayers("alice", "Ann", "Ben")
	s.with("alice", func(tx storage.OwnerTx) error {
		return tx.DeletePlayer(s.Ctx, players[0].ID)
	})

	listed := s.listPlayers("alice")
	s.Require().Len(listed, 1)
	s.Equal("Ben", listed[0].Name)

	err := s.Storage.WithOwner(s.Ctx, "alice", func(tx storage.OwnerTx) error {
		return tx.DeletePlayer(s.Ctx, players[0].ID)
	})
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *Suite) TestDeletedIDsAreNotReused() {
	first := s.addPlayers("alice", "Ann")
	s.with("alice", func(tx storage.OwnerTx) error {
		return tx.DeletePlayer(s.Ctx, first[0].ID)
	})
	second := s.addPlayers("alice", "Ann")
	s.Greater(int64(second[0].ID), int64(first[0].ID))
}

func (s *Suite) TestResetScoresOnlyAffectsOwner() {
	a := s.addPlayers("alice", "Ann", "Ben")
	b := s.addPlayers("bob", "Bea")
	s.with("alice", func(tx storage.OwnerTx) error {
		for _, p := range a {
			if _, err := tx.AdjustScore(s.Ctx, p.ID, 7); err != nil {
				return err
			}
		}
		return nil
	})
	s.with("bob", func(tx storage.OwnerTx) error {
		_, err := tx.AdjustScore(s.Ctx, b[0].ID, 9)
		return err
	})

	s.with("alice", func(tx storage.OwnerTx) error {
		return tx.ResetScores(s.Ctx)
	})

	for _, p := range s.listPlayers("alice") {
		s.Equal(int64(0), p.Score)
	}
	s.Equal(int64(9), s.listPlayers("bob")[0].Score)
}

func (s *Suite) TestPurge() {
	s.addPlayers("alice", "Ann")
	s.addPlayers("bob", "Bea")
	s.with("alice", func(tx storage.OwnerTx) error {
		return tx.Purge(s.Ctx)
	})

	s.Empty(s.listPlayers("alice"))
	_, err := s.session("alice")
	s.ErrorIs(err, model.ErrSessionNotFound)
	s.Len(s.listPlayers("bob"), 1)
}

// Atomicity tests

func (s *Suite) TestFailedUnitLeavesNoTrace() {
	s.addPlayers("alice", "Ann")

	err := s.Storage.WithOwner(s.Ctx, "alice", func(tx storage.OwnerTx) error {
		if err := tx.TouchSession(s.Ctx, baseTime.Add(time.Hour)); err != nil {
			return err
		}
		if _, err := tx.InsertPlayer(s.Ctx, "Ben", 0); err != nil {
			return err
		}
		if err := tx.ResetScores(s.Ctx); err != nil {
			return err
		}
		return errAborted
	})
	s.ErrorIs(err, errAborted)

	s.Len(s.listPlayers("alice"), 1)
	sess, err := s.session("alice")
	s.Require().NoError(err)
	s.Equal(baseTime.Unix(), sess.LastSeenAt.Unix())
}

func (s *Suite) TestReadsSeeOwnWrites() {
	s.with("alice", func(tx storage.OwnerTx) error {
		s.Require().NoError(tx.TouchSession(s.Ctx, baseTime))
		p, err := tx.InsertPlayer(s.Ctx, "Ann", 0)
		s.Require().NoError(err)
		_, err = tx.AdjustScore(s.Ctx, p.ID, 3)
		s.Require().NoError(err)

		listed, err := tx.ListPlayers(s.Ctx)
		s.Require().NoError(err)
		s.Require().Len(listed, 1)
		s.Equal(int64(3), listed[0].Score)
		return nil
	})
}

func (s *Suite) TestUnitsForSameOwnerAreLinearized() {
	players := s.addPlayers("alice", "Ann")
	const workers = 20

	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- s.Storage.WithOwner(s.Ctx, "alice", func(tx storage.OwnerTx) error {
				// read-modify-write through the session: a lost update would
				// leave the score below the number of workers
				p, err := tx.GetPlayer(s.Ctx, players[0].ID)
				if err != nil {
					return err
				}
				if err := tx.ResetScores(s.Ctx); err != nil {
					return err
				}
				_, err = tx.AdjustScore(s.Ctx, p.ID, p.Score+1)
				return err
			})
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		s.Require().NoError(err)
	}

	s.Equal(int64(workers), s.listPlayers("alice")[0].Score)
}

func (s *Suite) TestConcurrentOwnersAllComplete() {
	owners := []model.OwnerID{"o1", "o2", "o3", "o4", "o5"}
	const unitsPerOwner = 10

	var wg sync.WaitGroup
	errs := make(chan error, len(owners)*unitsPerOwner)
	for _, owner := range owners {
		for i := 0; i < unitsPerOwner; i++ {
			owner, i := owner, i
			wg.Add(1)
			go func() {
				defer wg.Done()
				errs <- s.Storage.WithOwner(s.Ctx, owner, func(tx storage.OwnerTx) error {
					if err := tx.TouchSession(s.Ctx, baseTime); err != nil {
						return err
					}
					_, err := tx.InsertPlayer(s.Ctx, string(owner)+"-"+string(rune('a'+i)), 0)
					return err
				})
			}()
		}
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		s.Require().NoError(err)
	}

	for _, owner := range owners {
		players := s.listPlayers(owner)
		s.Len(players, unitsPerOwner)
		for _, p := range players {
			s.Equal(owner, p.OwnerID)
		}
	}
}

// Sweep tests

func (s *Suite) TestSweepRemovesOnlyExpiredOwners() {
	s.addPlayers("stale", "Ann", "Ben")
	s.addPlayers("fresh", "Cat")
	s.with("fresh", func(tx storage.OwnerTx) error {
		return tx.TouchSession(s.Ctx, baseTime.Add(2*time.Hour))
	})

	removed, err := s.Storage.SweepExpired(s.Ctx, baseTime.Add(time.Hour))
	s.Require().NoError(err)
	s.Equal(1, removed)

	s.Empty(s.listPlayers("stale"))
	_, err = s.session("stale")
	s.ErrorIs(err, model.ErrSessionNotFound)
	s.Len(s.listPlayers("fresh"), 1)
}

func (s *Suite) TestSweepCutoffIsExclusive() {
	s.addPlayers("edge", "Ann")

	removed, err := s.Storage.SweepExpired(s.Ctx, baseTime)
	s.Require().NoError(err)
	s.Equal(0, removed)
	s.Len(s.listPlayers("edge"), 1)
}

func (s *Suite) TestSweepIsIdempotent() {
	s.addPlayers("stale", "Ann")
	cutoff := baseTime.Add(time.Hour)

	_, err := s.Storage.SweepExpired(s.Ctx, cutoff)
	s.Require().NoError(err)
	removed, err := s.Storage.SweepExpired(s.Ctx, cutoff)
	s.Require().NoError(err)
	s.Equal(0, removed)
}

func (s *Suite) TestStats() {
	s.addPlayers("alice", "Ann", "Ben")
	s.addPlayers("bob", "Bea")

	stats, err := s.Storage.Stats(s.Ctx)
	s.Require().NoError(err)
	s.Equal(2, stats.Owners)
	s.Equal(3, stats.Players)
}
