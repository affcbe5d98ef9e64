package factory

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/ev-1233/Blackjac-chip-counter/internal/dependencies/clock"
	"github.com/ev-1233/Blackjac-chip-counter/internal/dependencies/ids"
	"github.com/ev-1233/Blackjac-chip-counter/internal/services/game"
	"github.com/ev-1233/Blackjac-chip-counter/internal/services/identity"
	"github.com/ev-1233/Blackjac-chip-counter/internal/storage"
	"github.com/ev-1233/Blackjac-chip-counter/internal/storage/memory"
	redisstorage "github.com/ev-1233/Blackjac-chip-counter/internal/storage/redis"
	sqlitestorage "github.com/ev-1233/Blackjac-chip-counter/internal/storage/sqlite"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeSQLite = "sqlite"
	StorageTypeRedis  = "redis"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	IDs    ids.Generator
	Policy clock.TTLPolicy

	// Services
	GameController *game.Controller
	Identity       *identity.Service
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory", "sqlite" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// SQLiteConfig holds database settings (required if StorageType is "sqlite")
	SQLiteConfig *sqlitestorage.Config
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// TTL is how long an inactive owner is kept. Zero means clock.DefaultTTL.
	TTL time.Duration
	// SigningKey authenticates owner tokens (1-64 bytes)
	// If empty, a random key is generated and tokens do not survive restarts
	SigningKey []byte
}

// New creates a new application with all dependencies wired
func New(ctx context.Context, cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	store, err := NewStorage(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	key := cfg.SigningKey
	if len(key) == 0 {
		logger.Warn("no signing key configured, owner tokens will not survive a restart")
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("generating signing key: %w", err)
		}
	}

	app, err := newWithDependencies(store, clock.New(), ids.New(), clock.NewTTLPolicy(cfg.TTL), key, logger)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	return app, nil
}

// NewStorage opens the storage backend selected by cfg
func NewStorage(ctx context.Context, cfg Config, logger *slog.Logger) (storage.Storage, error) {
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		return memory.New(), nil
	case StorageTypeSQLite:
		if cfg.SQLiteConfig == nil {
			return nil, errors.New("SQLiteConfig required when StorageType is sqlite")
		}
		return sqlitestorage.New(ctx, *cfg.SQLiteConfig, logger)
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		return redisstorage.New(*cfg.RedisConfig)
	default:
		return nil, fmt.Errorf("invalid StorageType %q: must be 'memory', 'sqlite' or 'redis'", storageType)
	}
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	store storage.Storage,
	clk clock.Clock,
	gen ids.Generator,
	policy clock.TTLPolicy,
	key []byte,
	logger *slog.Logger,
) (*App, error) {
	identityService, err := identity.New(key, gen)
	if err != nil {
		return nil, err
	}

	return &App{
		Storage:        store,
		Clock:          clk,
		IDs:            gen,
		Policy:         policy,
		GameController: game.NewController(store, clk, policy, logger),
		Identity:       identityService,
	}, nil
}

// Close releases the storage backend
func (a *App) Close() error {
	return a.Storage.Close()
}
