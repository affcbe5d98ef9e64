package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/ev-1233/Blackjac-chip-counter/internal/api"
	apimiddleware "github.com/ev-1233/Blackjac-chip-counter/internal/api/middleware"
	"github.com/ev-1233/Blackjac-chip-counter/internal/factory"
	redisstorage "github.com/ev-1233/Blackjac-chip-counter/internal/storage/redis"
	sqlitestorage "github.com/ev-1233/Blackjac-chip-counter/internal/storage/sqlite"
)

// Config holds every server setting. Flags win over environment variables.
type Config struct {
	storage      string
	databasePath string
	redisURL     string
	ttlDays      int
	signingKey   string
	logLevel     string

	host          string
	port          int
	sweepInterval time.Duration
	rateLimit     float64
	rateBurst     int

	readHeaderTimeout time.Duration
	readTimeout       time.Duration
	writeTimeout      time.Duration
	idleTimeout       time.Duration
	shutdownTimeout   time.Duration
}

// legacyEnv maps flags to the environment variables older deployments used
var legacyEnv = map[string]string{
	"database-path": "DATABASE_PATH",
	"ttl-days":      "GAME_TTL_DAYS",
}

func (c *Config) validate() error {
	switch c.storage {
	case factory.StorageTypeMemory, factory.StorageTypeSQLite, factory.StorageTypeRedis:
	default:
		return fmt.Errorf("invalid --storage %q: must be memory, sqlite or redis", c.storage)
	}
	if c.storage == factory.StorageTypeRedis && c.redisURL == "" {
		return errors.New("--redis-url is required when --storage=redis")
	}
	if c.ttlDays < 1 {
		return fmt.Errorf("invalid --ttl-days (must be at least 1): %d", c.ttlDays)
	}
	if len(c.signingKey) > 64 {
		return errors.New("--signing-key must be at most 64 bytes")
	}
	return nil
}

func (c *Config) validateServe() error {
	if c.port < 1 || c.port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.port)
	}
	if c.sweepInterval <= 0 {
		return fmt.Errorf("invalid --sweep-interval: %s", c.sweepInterval)
	}
	return c.serverConfig().Validate()
}

func (c *Config) serverConfig() api.ServerConfig {
	return api.ServerConfig{
		Host:              c.host,
		Port:              c.port,
		ReadHeaderTimeout: c.readHeaderTimeout,
		ReadTimeout:       c.readTimeout,
		WriteTimeout:      c.writeTimeout,
		IdleTimeout:       c.idleTimeout,
		ShutdownTimeout:   c.shutdownTimeout,
	}
}

func (c *Config) ttl() time.Duration {
	return time.Duration(c.ttlDays) * 24 * time.Hour
}

func (c *Config) sqliteConfig() sqlitestorage.Config {
	cfg := sqlitestorage.DefaultConfig()
	cfg.Path = c.databasePath
	return cfg
}

func (c *Config) factoryConfig(logger *slog.Logger) factory.Config {
	cfg := factory.Config{
		Logger:      logger,
		StorageType: c.storage,
		TTL:         c.ttl(),
		SigningKey:  []byte(c.signingKey),
	}

	switch c.storage {
	case factory.StorageTypeSQLite:
		sqliteCfg := c.sqliteConfig()
		cfg.SQLiteConfig = &sqliteCfg
	case factory.StorageTypeRedis:
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = c.redisURL
		// Keys must outlive the inactivity window so the sweeper sees them
		redisCfg.OwnerTTL = c.ttl() + 24*time.Hour
		cfg.RedisConfig = &redisCfg
	}

	return cfg
}

func (c *Config) rateLimitConfig() apimiddleware.RateLimitConfig {
	cfg := apimiddleware.DefaultRateLimitConfig()
	cfg.RequestsPerSecond = c.rateLimit
	cfg.Burst = c.rateBurst
	return cfg
}

func (c *Config) logger() *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.logLevel)); err != nil {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
}

// bindFlags lets SCOREBOARD_* environment variables fill in flags that were not set
func bindFlags(v *viper.Viper, fs *pflag.FlagSet) {
	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		envNames := []string{f.Name, envName(f.Name)}
		if legacy, ok := legacyEnv[f.Name]; ok {
			envNames = append(envNames, legacy)
		}
		_ = v.BindEnv(envNames...)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})
}

func envName(flag string) string {
	return "SCOREBOARD_" + strings.ToUpper(strings.ReplaceAll(flag, "-", "_"))
}
