package request

import (
	"bytes"
	"encoding/json"
)

// Whole carries a number exactly as the client sent it. JSON numbers and
// strings are both accepted; the engine does the whole-number validation.
type Whole string

// UnmarshalJSON accepts 25, "25" or null
func (w *Whole) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*w = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*w = Whole(s)
		return nil
	}
	*w = Whole(data)
	return nil
}

// AddPlayerRequest is the request body for adding a player
type AddPlayerRequest struct {
	Name  string `json:"name"`
	Score Whole  `json:"score,omitempty"`
}

// AdjustScoreRequest is the request body for changing a player's score
type AdjustScoreRequest struct {
	Delta Whole `json:"delta"`
}

// AdjustByNameRequest is the request body for changing a score by player name
type AdjustByNameRequest struct {
	Name  string `json:"name"`
	Delta Whole  `json:"delta"`
}

// TakeTurnRequest is the request body for taking a turn.
// Without a player id the current player acts.
type TakeTurnRequest struct {
	PlayerID *int64 `json:"player_id,omitempty"`
	Delta    Whole  `json:"delta"`
}
