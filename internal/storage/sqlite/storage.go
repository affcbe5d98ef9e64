package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"
	sqlitedriver "modernc.org/sqlite"
	sqlitelib "modernc.org/sqlite/lib"

	"github.com/ev-1233/Blackjac-chip-counter/internal/model"
	"github.com/ev-1233/Blackjac-chip-counter/internal/storage"
	"github.com/ev-1233/Blackjac-chip-counter/internal/storage/sqlite/migrations"
)

// Storage is a SQLite-backed implementation of the storage interface
type Storage struct {
	db *sqlx.DB
}

// New opens the database, applies pending migrations and returns the storage
func New(ctx context.Context, cfg Config, logger *slog.Logger) (*Storage, error) {
	db, err := Open(cfg)
	if err != nil {
		return nil, err
	}

	if err := migrations.Up(ctx, db.DB, logger); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Storage{db: db}, nil
}

// Open opens the database without running migrations
func Open(cfg Config) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", cfg.dsn())
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections.
	// Units for different owners therefore queue behind each other, reads included.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	return db, nil
}

// Close closes the database connection
func (s *Storage) Close() error {
	return s.db.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func (s *Storage) WithOwner(ctx context.Context, owner model.OwnerID, fn func(tx storage.OwnerTx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(&ownerTx{tx: tx, owner: owner}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func (s *Storage) SweepExpired(ctx context.Context, cutoff time.Time) (int, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("starting transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM players
		WHERE owner_id IN (SELECT owner_id FROM owner_sessions WHERE last_seen_at < ?)
	`, cutoff.Unix()); err != nil {
		return 0, fmt.Errorf("deleting expired players: %w", err)
	}

	result, err := tx.ExecContext(ctx, "DELETE FROM owner_sessions WHERE last_seen_at < ?", cutoff.Unix())
	if err != nil {
		return 0, fmt.Errorf("deleting expired sessions: %w", err)
	}
	removed, _ := result.RowsAffected()

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing sweep: %w", err)
	}
	return int(removed), nil
}

func (s *Storage) Stats(ctx context.Context) (storage.Stats, error) {
	var stats storage.Stats
	err := s.db.QueryRowxContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM owner_sessions),
			(SELECT COUNT(*) FROM players)
	`).Scan(&stats.Owners, &stats.Players)
	return stats, err
}

// sessionRow mirrors the owner_sessions table
type sessionRow struct {
	OwnerID         string        `db:"owner_id"`
	LastSeenAt      int64         `db:"last_seen_at"`
	GameStarted     bool          `db:"game_started"`
	CurrentPlayerID sql.NullInt64 `db:"current_player_id"`
}

func (r sessionRow) toModel() *model.OwnerSession {
	sess := &model.OwnerSession{
		OwnerID:     model.OwnerID(r.OwnerID),
		LastSeenAt:  time.Unix(r.LastSeenAt, 0).UTC(),
		GameStarted: r.GameStarted,
	}
	if r.CurrentPlayerID.Valid {
		id := model.PlayerID(r.CurrentPlayerID.Int64)
		sess.CurrentPlayer = &id
	}
	return sess
}

// ownerTx runs owner-scoped statements inside one database transaction.
// Every statement filters on owner_id.
type ownerTx struct {
	tx    *sqlx.Tx
	owner model.OwnerID
}

func (t *ownerTx) GetSession(ctx context.Context) (*model.OwnerSession, error) {
	var row sessionRow
	err := t.tx.GetContext(ctx, &row, `
		SELECT owner_id, last_seen_at, game_started, current_player_id
		FROM owner_sessions WHERE owner_id = ?
	`, t.owner)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrSessionNotFound
		}
		return nil, err
	}
	return row.toModel(), nil
}

func (t *ownerTx) TouchSession(ctx context.Context, now time.Time) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO owner_sessions (owner_id, last_seen_at)
		VALUES (?, ?)
		ON CONFLICT(owner_id) DO UPDATE SET last_seen_at = excluded.last_seen_at
	`, t.owner, now.Unix())
	return err
}

func (t *ownerTx) SetGameState(ctx context.Context, started bool, current *model.PlayerID) error {
	var currentID sql.NullInt64
	if current != nil {
		currentID = sql.NullInt64{Int64: int64(*current), Valid: true}
	}
	result, err := t.tx.ExecContext(ctx, `
		UPDATE owner_sessions SET game_started = ?, current_player_id = ?
		WHERE owner_id = ?
	`, started, currentID, t.owner)
	if err != nil {
		return err
	}
	return requireAffected(result, model.ErrSessionNotFound)
}

func (t *ownerTx) ListPlayers(ctx context.Context) ([]model.Player, error) {
	players := []model.Player{}
	err := t.tx.SelectContext(ctx, &players, `
		SELECT id, owner_id, name, score FROM players
		WHERE owner_id = ? ORDER BY id ASC
	`, t.owner)
	return players, err
}

func (t *ownerTx) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	return t.getPlayer(ctx, "id = ?", int64(id))
}

func (t *ownerTx) GetPlayerByName(ctx context.Context, name string) (*model.Player, error) {
	return t.getPlayer(ctx, "name = ?", name)
}

func (t *ownerTx) getPlayer(ctx context.Context, where string, arg any) (*model.Player, error) {
	var p model.Player
	err := t.tx.GetContext(ctx, &p,
		"SELECT id, owner_id, name, score FROM players WHERE owner_id = ? AND "+where,
		t.owner, arg)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrPlayerNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (t *ownerTx) InsertPlayer(ctx context.Context, name string, score int64) (*model.Player, error) {
	result, err := t.tx.ExecContext(ctx,
		"INSERT INTO players (owner_id, name, score) VALUES (?, ?, ?)",
		t.owner, name, score)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, model.ErrPlayerExists
		}
		return nil, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &model.Player{ID: model.PlayerID(id), OwnerID: t.owner, Name: name, Score: score}, nil
}

func (t *ownerTx) DeletePlayer(ctx context.Context, id model.PlayerID) error {
	result, err := t.tx.ExecContext(ctx,
		"DELETE FROM players WHERE id = ? AND owner_id = ?", int64(id), t.owner)
	if err != nil {
		return err
	}
	return requireAffected(result, model.ErrPlayerNotFound)
}

func (t *ownerTx) AdjustScore(ctx context.Context, id model.PlayerID, delta int64) (*model.Player, error) {
	result, err := t.tx.ExecContext(ctx,
		"UPDATE players SET score = score + ? WHERE id = ? AND owner_id = ?",
		delta, int64(id), t.owner)
	if err != nil {
		return nil, err
	}
	if err := requireAffected(result, model.ErrPlayerNotFound); err != nil {
		return nil, err
	}
	return t.GetPlayer(ctx, id)
}

func (t *ownerTx) ResetScores(ctx context.Context) error {
	_, err := t.tx.ExecContext(ctx, "UPDATE players SET score = 0 WHERE owner_id = ?", t.owner)
	return err
}

func (t *ownerTx) Purge(ctx context.Context) error {
	if _, err := t.tx.ExecContext(ctx, "DELETE FROM players WHERE owner_id = ?", t.owner); err != nil {
		return err
	}
	_, err := t.tx.ExecContext(ctx, "DELETE FROM owner_sessions WHERE owner_id = ?", t.owner)
	return err
}

func requireAffected(result sql.Result, notFound error) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr *sqlitedriver.Error
	return errors.As(err, &sqliteErr) && sqliteErr.Code() == sqlitelib.SQLITE_CONSTRAINT_UNIQUE
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}
