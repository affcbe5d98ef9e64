package pages

import (
	"strconv"

	"github.com/a-h/templ"

	"github.com/ev-1233/Blackjac-chip-counter/internal/model"
	"github.com/ev-1233/Blackjac-chip-counter/internal/web/templates/layout"
)

// ScoreboardData contains data for the scoreboard page
type ScoreboardData struct {
	layout.PageData
	Board *model.Scoreboard
}

func inProgress(board *model.Scoreboard) bool {
	return board.Status == model.GameStatusInProgress
}

func isCurrent(board *model.Scoreboard, p model.Player) bool {
	return board.CurrentPlayer != nil && board.CurrentPlayer.ID == p.ID
}

func playerID(p model.Player) string {
	return strconv.FormatInt(int64(p.ID), 10)
}

func playerAction(p model.Player, action string) templ.SafeURL {
	return templ.URL("/players/" + playerID(p) + "/" + action)
}
