// Package migrations holds the SQLite schema history.
//
// Versions 1 and 3 are Go migrations because they must inspect the existing
// schema: databases created before owner scoping have a players table without
// owner_id, and databases created before the game feature lack its columns.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/pressly/goose/v3"
)

// LegacyOwner owns rows that predate per-session scoping
const LegacyOwner = "legacy"

//go:embed sql/*.sql
var embedded embed.FS

// NewProvider returns a goose provider over the embedded SQL files and the
// schema-aware Go migrations.
func NewProvider(db *sql.DB) (*goose.Provider, error) {
	fsys, err := fs.Sub(embedded, "sql")
	if err != nil {
		return nil, err
	}

	return goose.NewProvider(goose.DialectSQLite3, db, fsys,
		goose.WithDisableGlobalRegistry(true),
		goose.WithGoMigrations(
			goose.NewGoMigration(1,
				&goose.GoFunc{RunTx: upOwnerScopedPlayers},
				&goose.GoFunc{RunTx: downOwnerScopedPlayers},
			),
			goose.NewGoMigration(3,
				&goose.GoFunc{RunTx: upGameState},
				&goose.GoFunc{RunTx: downGameState},
			),
		),
	)
}

// Up applies every pending migration. It is safe to call on every start.
func Up(ctx context.Context, db *sql.DB, logger *slog.Logger) error {
	provider, err := NewProvider(db)
	if err != nil {
		return fmt.Errorf("creating migration provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("applying migrations: %w", err)
	}

	for _, r := range results {
		logger.Info("migration applied",
			slog.Int64("version", r.Source.Version),
			slog.String("path", r.Source.Path),
			slog.Duration("duration", r.Duration),
		)
	}
	return nil
}

// Version reports the current schema version
func Version(ctx context.Context, db *sql.DB) (int64, error) {
	provider, err := NewProvider(db)
	if err != nil {
		return 0, err
	}
	return provider.GetDBVersion(ctx)
}

func upOwnerScopedPlayers(ctx context.Context, tx *sql.Tx) error {
	exists, err := tableExists(ctx, tx, "players")
	if err != nil {
		return err
	}
	if !exists {
		_, err := tx.ExecContext(ctx, `
			CREATE TABLE players (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				owner_id TEXT NOT NULL,
				name TEXT NOT NULL,
				score INTEGER NOT NULL DEFAULT 0,
				UNIQUE (owner_id, name)
			)
		`)
		return err
	}

	cols, err := columns(ctx, tx, "players")
	if err != nil {
		return err
	}
	if cols["owner_id"] {
		return nil
	}

	// Rebuild the pre-scoping table, keeping ids so references stay stable
	stmts := []string{
		`CREATE TABLE players_scoped (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			owner_id TEXT NOT NULL,
			name TEXT NOT NULL,
			score INTEGER NOT NULL DEFAULT 0,
			UNIQUE (owner_id, name)
		)`,
		`INSERT INTO players_scoped (id, owner_id, name, score)
		 SELECT id, '` + LegacyOwner + `', name, score FROM players`,
		`DROP TABLE players`,
		`ALTER TABLE players_scoped RENAME TO players`,
	}
	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("upgrading legacy players table: %w", err)
		}
	}
	return nil
}

func downOwnerScopedPlayers(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS players")
	return err
}

func upGameState(ctx context.Context, tx *sql.Tx) error {
	cols, err := columns(ctx, tx, "owner_sessions")
	if err != nil {
		return err
	}

	if !cols["game_started"] {
		if _, err := tx.ExecContext(ctx,
			"ALTER TABLE owner_sessions ADD COLUMN game_started INTEGER NOT NULL DEFAULT 0"); err != nil {
			return err
		}
	}
	if !cols["current_player_id"] {
		if _, err := tx.ExecContext(ctx,
			"ALTER TABLE owner_sessions ADD COLUMN current_player_id INTEGER"); err != nil {
			return err
		}
	}
	return nil
}

func downGameState(ctx context.Context, tx *sql.Tx) error {
	for _, col := range []string{"current_player_id", "game_started"} {
		if _, err := tx.ExecContext(ctx, "ALTER TABLE owner_sessions DROP COLUMN "+col); err != nil {
			return err
		}
	}
	return nil
}

func tableExists(ctx context.Context, tx *sql.Tx, name string) (bool, error) {
	var n int
	err := tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?", name).Scan(&n)
	return n > 0, err
}

func columns(ctx context.Context, tx *sql.Tx, table string) (map[string]bool, error) {
	rows, err := tx.QueryContext(ctx, "SELECT name FROM pragma_table_info(?)", table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		cols[name] = true
	}
	return cols, rows.Err()
}
