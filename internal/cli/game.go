package cli

import (
	"github.com/spf13/cobra"
)

func newGameCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "game",
		Short: "Turn-based game commands",
	}

	cmd.AddCommand(newGameScoreboardCmd("status", "Show the scoreboard and whose turn it is", "GET", "/api/v1/game"))
	cmd.AddCommand(newGameScoreboardCmd("start", "Start a game; the earliest player goes first", "POST", "/api/v1/game/start"))
	cmd.AddCommand(newGameScoreboardCmd("end", "End the current game", "POST", "/api/v1/game/end"))
	cmd.AddCommand(newGameTurnCmd())

	return cmd
}

func newGameScoreboardCmd(use, short, method, path string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := ensureSession(cmd.Context()); err != nil {
				return err
			}

			var result Scoreboard
			if err := client.Do(cmd.Context(), method, path, nil, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}
}

func newGameTurnCmd() *cobra.Command {
	var (
		delta    string
		playerID int64
	)

	cmd := &cobra.Command{
		Use:   "turn --delta <n>",
		Short: "Score a turn and pass play to the next player",
		Long: `Score a turn for the player who is up. With --player the turn is
rejected unless that player is the one whose turn it is.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := ensureSession(cmd.Context()); err != nil {
				return err
			}

			req := map[string]any{"delta": delta}
			if cmd.Flags().Changed("player") {
				req["player_id"] = playerID
			}

			var result TurnResult
			if err := client.Post(cmd.Context(), "/api/v1/game/turn", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVarP(&delta, "delta", "d", "", "Points scored this turn (required)")
	cmd.Flags().Int64Var(&playerID, "player", 0, "Player expected to be taking the turn")
	_ = cmd.MarkFlagRequired("delta")

	return cmd
}
