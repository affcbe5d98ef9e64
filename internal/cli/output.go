package cli

import (
	"encoding/json"
	"fmt"
	"io"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
}

// NewOutput creates a new Output formatter writing to w
func NewOutput(format string, w io.Writer) *Output {
	return &Output{format: format, w: w}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		o.printJSON(map[string]string{"message": msg})
	} else {
		fmt.Fprintln(o.w, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case Player:
		o.printPlayer(v)
	case PlayerList:
		o.printPlayerList(v)
	case Scoreboard:
		o.printScoreboard(v)
	case TurnResult:
		o.printTurnResult(v)
	case Session:
		o.printSession(v)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// Player response type (matches API)
type Player struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Score int64  `json:"score"`
}

// PlayerList response type
type PlayerList struct {
	TurnOrder   []Player `json:"turn_order"`
	Leaderboard []Player `json:"leaderboard"`
}

// Scoreboard response type
type Scoreboard struct {
	Status        string   `json:"status"`
	TurnOrder     []Player `json:"turn_order"`
	Leaderboard   []Player `json:"leaderboard"`
	CurrentPlayer *Player  `json:"current_player"`
}

// TurnResult response type
type TurnResult struct {
	Acting Player  `json:"acting"`
	Next   *Player `json:"next"`
	Delta  int64   `json:"delta"`
}

// Session response type
type Session struct {
	OwnerID string `json:"owner_id"`
	Token   string `json:"token,omitempty"`
}

// HealthResult response type
type HealthResult struct {
	Status  string `json:"status"`
	Owners  int    `json:"owners"`
	Players int    `json:"players"`
}

func (o *Output) printPlayer(p Player) {
	fmt.Fprintf(o.w, "%s (#%d): %d\n", p.Name, p.ID, p.Score)
}

func (o *Output) printPlayerList(l PlayerList) {
	if len(l.TurnOrder) == 0 {
		fmt.Fprintln(o.w, "No players yet.")
		return
	}
	o.printRanking(l.Leaderboard)
}

func (o *Output) printRanking(players []Player) {
	for i, p := range players {
		fmt.Fprintf(o.w, "%2d. %-20s %6d  (#%d)\n", i+1, p.Name, p.Score, p.ID)
	}
}

func (o *Output) printScoreboard(b Scoreboard) {
	if b.Status == "in_progress" {
		fmt.Fprint(o.w, "Game: in progress")
		if b.CurrentPlayer != nil {
			fmt.Fprintf(o.w, ", %s is up", b.CurrentPlayer.Name)
		}
		fmt.Fprintln(o.w)
	} else {
		fmt.Fprintln(o.w, "Game: not started")
	}

	if len(b.TurnOrder) == 0 {
		fmt.Fprintln(o.w, "No players yet.")
		return
	}

	fmt.Fprintln(o.w, "\nTurn order:")
	for _, p := range b.TurnOrder {
		marker := " "
		if b.CurrentPlayer != nil && b.CurrentPlayer.ID == p.ID {
			marker = ">"
		}
		fmt.Fprintf(o.w, " %s %-20s %6d  (#%d)\n", marker, p.Name, p.Score, p.ID)
	}

	fmt.Fprintln(o.w, "\nLeaderboard:")
	o.printRanking(b.Leaderboard)
}

func (o *Output) printTurnResult(r TurnResult) {
	fmt.Fprintf(o.w, "%s scored %+d (now %d)\n", r.Acting.Name, r.Delta, r.Acting.Score)
	if r.Next != nil {
		fmt.Fprintf(o.w, "Next up: %s\n", r.Next.Name)
	}
}

func (o *Output) printSession(s Session) {
	fmt.Fprintf(o.w, "Owner: %s\n", s.OwnerID)
}

func (o *Output) printHealthResult(h HealthResult) {
	fmt.Fprintf(o.w, "Status: %s\n", h.Status)
	fmt.Fprintf(o.w, "Owners: %d\n", h.Owners)
	fmt.Fprintf(o.w, "Players: %d\n", h.Players)
}
