package cli

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfg    *Config
	client *Client
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cfg = DefaultConfig()

	rootCmd := &cobra.Command{
		Use:   "scorectl",
		Short: "CLI tool for the scoreboard API",
		Long: `scorectl is a CLI tool for interacting with the scoreboard JSON API.

It keeps an owner token in a local file so repeated commands work on the same
scoreboard. A token is requested from the server the first time one is needed.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load token from file if not provided via flag/env
			if err := cfg.LoadToken(); err != nil {
				return err
			}

			// Create HTTP client
			client = NewClient(cfg.ServerURL, cfg.Token, cfg.MaxRetries)
			return nil
		},
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	// Global flags
	fs := rootCmd.PersistentFlags()
	fs.StringVar(&cfg.ServerURL, "server", cfg.ServerURL, "Server URL (env: SCORECTL_SERVER)")
	fs.StringVar(&cfg.Token, "token", cfg.Token, "Owner token (env: SCORECTL_TOKEN)")
	fs.StringVar(&cfg.TokenFile, "token-file", cfg.TokenFile, "Token file path (env: SCORECTL_TOKEN_FILE)")
	fs.StringVarP(&cfg.Output, "output", "o", cfg.Output, "Output format: text, json (env: SCORECTL_OUTPUT)")
	fs.IntVar(&cfg.MaxRetries, "retries", cfg.MaxRetries, "Times to retry a rate-limited request (env: SCORECTL_RETRIES)")
	bindEnv(viper.New(), fs)

	// Add subcommands
	rootCmd.AddCommand(newSessionCmd())
	rootCmd.AddCommand(newWhoamiCmd())
	rootCmd.AddCommand(newPlayersCmd())
	rootCmd.AddCommand(newResetCmd())
	rootCmd.AddCommand(newGameCmd())
	rootCmd.AddCommand(newHealthCmd())

	return rootCmd
}

// Execute runs the root command and exits with a status derived from the API error code
func Execute() {
	cmd := NewRootCmd()
	if err := cmd.Execute(); err != nil {
		reportError(cmd.ErrOrStderr(), err)
		os.Exit(ExitCode(err))
	}
}
