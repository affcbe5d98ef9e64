package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

const healthPollInterval = 250 * time.Millisecond

func newHealthCmd() *cobra.Command {
	var wait time.Duration

	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check server health and how many scoreboards it holds",
		Long: `Check server health and how many scoreboards it holds.

With --wait the check is repeated until the server answers or the wait runs
out, which is useful in scripts that start the server in the background.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := checkHealth(cmd.Context(), wait)
			if err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().DurationVar(&wait, "wait", 0, "Keep retrying for up to this long while the server is unreachable")

	return cmd
}

func checkHealth(ctx context.Context, wait time.Duration) (HealthResult, error) {
	deadline := time.Now().Add(wait)

	for {
		var result HealthResult
		err := client.Get(ctx, "/api/v1/health", &result)
		if err == nil {
			return result, nil
		}
		if time.Now().Add(healthPollInterval).After(deadline) {
			if wait > 0 {
				return result, fmt.Errorf("server not healthy after %s: %w", wait, err)
			}
			return result, err
		}
		if werr := sleep(ctx, healthPollInterval); werr != nil {
			return result, err
		}
	}
}
