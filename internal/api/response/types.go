package response

import (
	"github.com/ev-1233/Blackjac-chip-counter/internal/model"
)

// Player represents a player in API responses
type Player struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Score int64  `json:"score"`
}

// PlayerFromModel converts a model.Player to a response Player
func PlayerFromModel(p *model.Player) Player {
	return Player{
		ID:    int64(p.ID),
		Name:  p.Name,
		Score: p.Score,
	}
}

func playersFromModel(players []model.Player) []Player {
	out := make([]Player, len(players))
	for i := range players {
		out[i] = PlayerFromModel(&players[i])
	}
	return out
}

// Scoreboard represents an owner's players and game state
type Scoreboard struct {
	Status        string   `json:"status"`
	TurnOrder     []Player `json:"turn_order"`
	Leaderboard   []Player `json:"leaderboard"`
	CurrentPlayer *Player  `json:"current_player"`
}

// ScoreboardFromModel converts model.Scoreboard
func ScoreboardFromModel(b *model.Scoreboard) Scoreboard {
	var current *Player
	if b.CurrentPlayer != nil {
		p := PlayerFromModel(b.CurrentPlayer)
		current = &p
	}
	return Scoreboard{
		Status:        string(b.Status),
		TurnOrder:     playersFromModel(b.TurnOrder),
		Leaderboard:   playersFromModel(b.Leaderboard),
		CurrentPlayer: current,
	}
}

// PlayerList holds both player orderings
type PlayerList struct {
	TurnOrder   []Player `json:"turn_order"`
	Leaderboard []Player `json:"leaderboard"`
}

// TurnResult represents the outcome of a turn
type TurnResult struct {
	Acting Player  `json:"acting"`
	Next   *Player `json:"next"`
	Delta  int64   `json:"delta"`
}

// TurnResultFromModel converts model.TurnResult
func TurnResultFromModel(r *model.TurnResult) TurnResult {
	var next *Player
	if r.Next != nil {
		p := PlayerFromModel(r.Next)
		next = &p
	}
	return TurnResult{
		Acting: PlayerFromModel(&r.Acting),
		Next:   next,
		Delta:  r.Delta,
	}
}

// Session is returned when an owner token is issued or inspected
type Session struct {
	OwnerID string `json:"owner_id"`
	Token   string `json:"token,omitempty"`
}

// Health reports service status and storage counts
type Health struct {
	Status  string `json:"status"`
	Owners  int    `json:"owners"`
	Players int    `json:"players"`
}
