package model

// GameStatus represents the state of an owner's game
type GameStatus string

const (
	GameStatusNotStarted GameStatus = "not_started"
	GameStatusInProgress GameStatus = "in_progress"
)

// Scoreboard is everything the presentation layer needs to render one owner's view
type Scoreboard struct {
	OwnerID OwnerID    `json:"owner_id"`
	Status  GameStatus `json:"status"`

	// TurnOrder lists players by insertion order (id ascending)
	TurnOrder []Player `json:"turn_order"`
	// Leaderboard lists players by score descending, name ascending
	Leaderboard []Player `json:"leaderboard"`

	// CurrentPlayer is nil unless a game is in progress with at least one player
	CurrentPlayer *Player `json:"current_player"`
}

// NewScoreboard builds a scoreboard view from a session and its players
func NewScoreboard(session *OwnerSession, players []Player) *Scoreboard {
	board := &Scoreboard{
		OwnerID:     session.OwnerID,
		Status:      session.Status(),
		TurnOrder:   SortByTurn(players),
		Leaderboard: SortForLeaderboard(players),
	}
	if session.GameStarted && session.CurrentPlayer != nil {
		if idx := FindPlayer(board.TurnOrder, *session.CurrentPlayer); idx >= 0 {
			current := board.TurnOrder[idx]
			board.CurrentPlayer = &current
		}
	}
	return board
}

// TurnResult is the outcome of a single turn
type TurnResult struct {
	Acting Player  `json:"acting"`
	Next   *Player `json:"next"` // nil when the owner has no players left
	Delta  int64   `json:"delta"`
}
