package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ev-1233/Blackjac-chip-counter/internal/api"
	"github.com/ev-1233/Blackjac-chip-counter/internal/factory"
	sqlitestorage "github.com/ev-1233/Blackjac-chip-counter/internal/storage/sqlite"
	"github.com/ev-1233/Blackjac-chip-counter/internal/storage/sqlite/migrations"
	"github.com/ev-1233/Blackjac-chip-counter/internal/web"
)

func main() {
	cfg := &Config{}
	if err := newRootCmd(cfg).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd(cfg *Config) *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "scoreboard",
		Short: "Per-visitor multiplayer scoreboard server",
		Args:  cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return cfg.validate()
		},
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	fs := cmd.PersistentFlags()
	fs.StringVar(&cfg.storage, "storage", factory.StorageTypeSQLite, "storage backend: memory, sqlite or redis (env: SCOREBOARD_STORAGE)")
	fs.StringVar(&cfg.databasePath, "database-path", sqlitestorage.DefaultConfig().Path, "SQLite database file (env: SCOREBOARD_DATABASE_PATH, DATABASE_PATH)")
	fs.StringVar(&cfg.redisURL, "redis-url", "", "Redis URL for --storage=redis (env: SCOREBOARD_REDIS_URL)")
	fs.IntVar(&cfg.ttlDays, "ttl-days", 30, "days of inactivity before an owner's scoreboard is deleted (env: SCOREBOARD_TTL_DAYS, GAME_TTL_DAYS)")
	fs.StringVar(&cfg.signingKey, "signing-key", "", "secret used to sign owner tokens, random if empty (env: SCOREBOARD_SIGNING_KEY)")
	fs.StringVar(&cfg.logLevel, "log-level", "info", "debug, info, warn or error (env: SCOREBOARD_LOG_LEVEL)")
	bindFlags(v, fs)

	cmd.AddCommand(newServeCmd(cfg, v))
	cmd.AddCommand(newMigrateCmd(cfg))
	cmd.AddCommand(newSweepCmd(cfg))

	cmd.CompletionOptions.HiddenDefaultCmd = true

	return cmd
}

func newServeCmd(cfg *Config, v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the web UI and JSON API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validateServe(); err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}

	fs := cmd.Flags()
	fs.StringVar(&cfg.host, "host", "", "address to bind to (env: SCOREBOARD_HOST)")
	fs.IntVarP(&cfg.port, "port", "p", 8080, "port to listen on (env: SCOREBOARD_PORT)")
	fs.DurationVar(&cfg.sweepInterval, "sweep-interval", time.Hour, "how often expired owners are deleted in the background (env: SCOREBOARD_SWEEP_INTERVAL)")
	fs.Float64Var(&cfg.rateLimit, "rate-limit", 10, "API requests per second per owner, 0 disables (env: SCOREBOARD_RATE_LIMIT)")
	fs.IntVar(&cfg.rateBurst, "rate-burst", 20, "API request burst per owner (env: SCOREBOARD_RATE_BURST)")

	defaults := api.DefaultServerConfig()
	fs.DurationVar(&cfg.readHeaderTimeout, "read-header-timeout", defaults.ReadHeaderTimeout, "time allowed to read request headers (env: SCOREBOARD_READ_HEADER_TIMEOUT)")
	fs.DurationVar(&cfg.readTimeout, "read-timeout", defaults.ReadTimeout, "time allowed to read a whole request (env: SCOREBOARD_READ_TIMEOUT)")
	fs.DurationVar(&cfg.writeTimeout, "write-timeout", defaults.WriteTimeout, "time allowed to write a response (env: SCOREBOARD_WRITE_TIMEOUT)")
	fs.DurationVar(&cfg.idleTimeout, "idle-timeout", defaults.IdleTimeout, "how long idle keep-alive connections stay open (env: SCOREBOARD_IDLE_TIMEOUT)")
	fs.DurationVar(&cfg.shutdownTimeout, "shutdown-timeout", defaults.ShutdownTimeout, "how long in-flight requests may finish after a stop signal (env: SCOREBOARD_SHUTDOWN_TIMEOUT)")
	bindFlags(v, fs)

	return cmd
}

func newMigrateCmd(cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the SQLite schema",
		Long: `Create or upgrade the SQLite schema. Safe to run repeatedly.

Databases from before owner scoping are upgraded in place: existing players
are kept under the owner "legacy".`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.storage != factory.StorageTypeSQLite {
				fmt.Fprintf(cmd.OutOrStdout(), "nothing to migrate for %s storage\n", cfg.storage)
				return nil
			}

			logger := cfg.logger()
			db, err := sqlitestorage.Open(cfg.sqliteConfig())
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			if err := migrations.Up(cmd.Context(), db.DB, logger); err != nil {
				return err
			}
			version, err := migrations.Version(cmd.Context(), db.DB)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "schema at version %d\n", version)
			return nil
		},
	}
}

func newSweepCmd(cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Delete expired owners once and report what is left",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := factory.New(cmd.Context(), cfg.factoryConfig(cfg.logger()))
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()

			removed, err := app.GameController.Sweeper().Sweep(cmd.Context())
			if err != nil {
				return err
			}
			stats, err := app.Storage.Stats(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "removed %d expired owners; %d owners and %d players remain\n",
				removed, stats.Owners, stats.Players)
			return nil
		},
	}
}

func serve(ctx context.Context, cfg *Config) error {
	logger := cfg.logger()
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := factory.New(ctx, cfg.factoryConfig(logger))
	if err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}
	defer func() { _ = app.Close() }()

	go app.GameController.Sweeper().Run(ctx, cfg.sweepInterval)

	// Create API router
	apiRouter := api.NewRouter(api.RouterConfig{
		Logger:         logger,
		Storage:        app.Storage,
		Identity:       app.Identity,
		GameController: app.GameController,
		RateLimit:      cfg.rateLimitConfig(),
	})

	// Create web router
	webRouter := web.NewRouter(web.RouterConfig{
		Logger:         logger,
		Identity:       app.Identity,
		GameController: app.GameController,
		CookieMaxAge:   cfg.ttl(),
		StaticDir:      findStaticDir(),
	})

	// Combine routers
	mux := http.NewServeMux()
	mux.Handle("/api/", apiRouter)
	mux.Handle("/", webRouter)

	server := api.NewServer(mux, cfg.serverConfig(), logger)
	if err := server.Listen(); err != nil {
		return err
	}

	logger.Info("server started",
		slog.String("addr", server.Addr()),
		slog.String("storage", cfg.storage),
		slog.Int("ttl_days", cfg.ttlDays),
	)

	// Run returns once the signal context ends and in-flight requests drain
	return server.Run(ctx)
}

// findStaticDir looks for an optional static files directory
func findStaticDir() string {
	candidates := []string{
		"internal/web/static",
		filepath.Join(os.Getenv("PWD"), "internal/web/static"),
	}

	for _, dir := range candidates {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return dir
		}
	}

	return ""
}
