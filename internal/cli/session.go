package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newSessionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Owner token commands",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "new",
		Short: "Start a fresh scoreboard with a new owner token",
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := newSession(cmd.Context())
			if err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	})

	return cmd
}

func newWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the owner id for the saved token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := ensureSession(cmd.Context()); err != nil {
				return err
			}

			var result Session
			if err := client.Get(cmd.Context(), "/api/v1/session", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}
}

// newSession requests a new owner token and saves it
func newSession(ctx context.Context) (Session, error) {
	var result Session
	if err := client.Post(ctx, "/api/v1/session", nil, &result); err != nil {
		return result, err
	}

	if err := cfg.SaveToken(result.Token); err != nil {
		return result, fmt.Errorf("failed to save token: %w", err)
	}
	client.SetToken(result.Token)
	return result, nil
}

// ensureSession makes sure an owner token is available, requesting one on first use
func ensureSession(ctx context.Context) error {
	if client.HasToken() {
		return nil
	}
	_, err := newSession(ctx)
	return err
}
