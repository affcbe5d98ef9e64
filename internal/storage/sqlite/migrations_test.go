package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/ev-1233/Blackjac-chip-counter/internal/model"
	"github.com/ev-1233/Blackjac-chip-counter/internal/storage"
	"github.com/ev-1233/Blackjac-chip-counter/internal/storage/sqlite/migrations"
	"github.com/ev-1233/Blackjac-chip-counter/internal/testutil"
)

type MigrationsSuite struct {
	suite.Suite
	ctx context.Context
	cfg Config
}

func TestMigrationsSuite(t *testing.T) {
	suite.Run(t, new(MigrationsSuite))
}

func (s *MigrationsSuite) SetupTest() {
	s.ctx = context.Background()
	s.cfg = DefaultConfig()
	s.cfg.Path = filepath.Join(s.T().TempDir(), "scores.db")
}

// seed creates a database with the given raw schema before migrations run
func (s *MigrationsSuite) seed(stmts ...string) {
	db, err := Open(s.cfg)
	s.Require().NoError(err)
	defer db.Close()

	for _, stmt := range stmts {
		_, err := db.ExecContext(s.ctx, stmt)
		s.Require().NoError(err)
	}
}

func (s *MigrationsSuite) open() *Storage {
	store, err := New(s.ctx, s.cfg, testutil.NopLogger())
	s.Require().NoError(err)
	s.T().Cleanup(func() { _ = store.Close() })
	return store
}

func (s *MigrationsSuite) players(store *Storage, owner model.OwnerID) []model.Player {
	var players []model.Player
	err := store.WithOwner(s.ctx, owner, func(tx storage.OwnerTx) error {
		var err error
		players, err = tx.ListPlayers(s.ctx)
		return err
	})
	s.Require().NoError(err)
	return players
}

func (s *MigrationsSuite) TestFreshDatabaseReachesLatestVersion() {
	store := s.open()

	version, err := migrations.Version(s.ctx, store.db.DB)
	s.Require().NoError(err)
	s.Equal(int64(3), version)

	stats, err := store.Stats(s.ctx)
	s.Require().NoError(err)
	s.Equal(storage.Stats{}, stats)
}

func (s *MigrationsSuite) TestMigrateIsIdempotent() {
	store := s.open()
	s.Require().NoError(migrations.Up(s.ctx, store.db.DB, testutil.NopLogger()))
	s.Require().NoError(migrations.Up(s.ctx, store.db.DB, testutil.NopLogger()))
}

func (s *MigrationsSuite) TestUpgradesUnscopedPlayersToLegacyOwner() {
	s.seed(
		`CREATE TABLE players (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL UNIQUE,
			score INTEGER NOT NULL DEFAULT 0
		)`,
		`INSERT INTO players (name, score) VALUES ('Ann', 12), ('Ben', -3)`,
	)

	store := s.open()

	players := s.players(store, migrations.LegacyOwner)
	s.Require().Len(players, 2)
	s.Equal("Ann", players[0].Name)
	s.Equal(int64(12), players[0].Score)
	s.Equal("Ben", players[1].Name)
	s.Equal(model.OwnerID(migrations.LegacyOwner), players[1].OwnerID)

	// Legacy rows got a session so the sweeper can eventually expire them
	err := store.WithOwner(s.ctx, migrations.LegacyOwner, func(tx storage.OwnerTx) error {
		sess, err := tx.GetSession(s.ctx)
		if err != nil {
			return err
		}
		s.False(sess.GameStarted)
		s.Nil(sess.CurrentPlayer)
		return nil
	})
	s.Require().NoError(err)
}

func (s *MigrationsSuite) TestUpgradesScopedSchemaWithoutGameColumns() {
	s.seed(
		`CREATE TABLE players (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			owner_id TEXT NOT NULL,
			name TEXT NOT NULL,
			score INTEGER NOT NULL DEFAULT 0,
			UNIQUE (owner_id, name)
		)`,
		`CREATE TABLE owner_sessions (
			owner_id TEXT PRIMARY KEY,
			last_seen_at INTEGER NOT NULL
		)`,
		`INSERT INTO players (owner_id, name, score) VALUES ('abc', 'Cy', 7)`,
		`INSERT INTO owner_sessions (owner_id, last_seen_at) VALUES ('abc', 1700000000)`,
	)

	store := s.open()

	players := s.players(store, "abc")
	s.Require().Len(players, 1)
	s.Equal("Cy", players[0].Name)

	err := store.WithOwner(s.ctx, "abc", func(tx storage.OwnerTx) error {
		sess, err := tx.GetSession(s.ctx)
		if err != nil {
			return err
		}
		// Existing activity time is preserved by the upgrade
		s.Equal(int64(1700000000), sess.LastSeenAt.Unix())
		s.False(sess.GameStarted)

		id := players[0].ID
		return tx.SetGameState(s.ctx, true, &id)
	})
	s.Require().NoError(err)
}

func (s *MigrationsSuite) TestPlayerIDsContinueAfterUpgrade() {
	s.seed(
		`CREATE TABLE players (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL UNIQUE,
			score INTEGER NOT NULL DEFAULT 0
		)`,
		`INSERT INTO players (name) VALUES ('Ann'), ('Ben')`,
	)

	store := s.open()

	var added *model.Player
	err := store.WithOwner(s.ctx, "fresh", func(tx storage.OwnerTx) error {
		var err error
		added, err = tx.InsertPlayer(s.ctx, "Ann", 0)
		return err
	})
	s.Require().NoError(err)
	s.Greater(int64(added.ID), int64(2))
}
