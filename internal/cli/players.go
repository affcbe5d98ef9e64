package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newPlayersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "players",
		Aliases: []string{"player"},
		Short:   "Player management commands",
	}

	cmd.AddCommand(newPlayersListCmd())
	cmd.AddCommand(newPlayersAddCmd())
	cmd.AddCommand(newPlayersRemoveCmd())
	cmd.AddCommand(newPlayersAdjustCmd())

	return cmd
}

func newPlayersListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List players by score",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := ensureSession(cmd.Context()); err != nil {
				return err
			}

			var result PlayerList
			if err := client.Get(cmd.Context(), "/api/v1/players", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}
}

func newPlayersAddCmd() *cobra.Command {
	var score string

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a player",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := ensureSession(cmd.Context()); err != nil {
				return err
			}

			req := map[string]string{"name": args[0], "score": score}
			var result Player

			if err := client.Post(cmd.Context(), "/api/v1/players", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&score, "score", "", "Starting score (default 0)")

	return cmd
}

func newPlayersRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove a player",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parsePlayerID(args[0])
			if err != nil {
				return err
			}
			if err := ensureSession(cmd.Context()); err != nil {
				return err
			}

			var result Player
			if err := client.Delete(cmd.Context(), fmt.Sprintf("/api/v1/players/%d", id), &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.PrintMessage(fmt.Sprintf("Removed %s.", result.Name))
			return nil
		},
	}
}

func newPlayersAdjustCmd() *cobra.Command {
	var (
		delta string
		name  string
	)

	cmd := &cobra.Command{
		Use:   "adjust [id] --delta <n>",
		Short: "Add points to a player's score, by id or --name",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if (len(args) == 1) == (name != "") {
				return fmt.Errorf("give either a player id or --name")
			}
			if err := ensureSession(cmd.Context()); err != nil {
				return err
			}

			var result Player
			if name != "" {
				req := map[string]string{"name": name, "delta": delta}
				if err := client.Post(cmd.Context(), "/api/v1/scores/by-name", req, &result); err != nil {
					return err
				}
			} else {
				id, err := parsePlayerID(args[0])
				if err != nil {
					return err
				}
				req := map[string]string{"delta": delta}
				if err := client.Post(cmd.Context(), fmt.Sprintf("/api/v1/players/%d/score", id), req, &result); err != nil {
					return err
				}
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVarP(&delta, "delta", "d", "", "Points to add, negative to subtract (required)")
	cmd.Flags().StringVar(&name, "name", "", "Select the player by name instead of id")
	_ = cmd.MarkFlagRequired("delta")

	return cmd
}

func newResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Reset every score to 0",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := ensureSession(cmd.Context()); err != nil {
				return err
			}

			var result Scoreboard
			if err := client.Post(cmd.Context(), "/api/v1/scores/reset", nil, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}
}

func parsePlayerID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid player id %q", s)
	}
	return id, nil
}
