package model

import (
	"cmp"
	"slices"
)

// OwnerID is the opaque session identifier that scopes all scoreboard data
type OwnerID string

// PlayerID uniquely identifies a player row across all owners
type PlayerID int64

// Player is a named score holder belonging to one owner
type Player struct {
	ID      PlayerID `json:"id" db:"id"`
	OwnerID OwnerID  `json:"owner_id" db:"owner_id"`
	Name    string   `json:"name" db:"name"`
	Score   int64    `json:"score" db:"score"`
}

// SortByTurn orders players by insertion order (ascending id).
// This is the only order used for turn rotation.
func SortByTurn(players []Player) []Player {
	sorted := slices.Clone(players)
	slices.SortFunc(sorted, func(a, b Player) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return sorted
}

// SortForLeaderboard orders players by score descending, then name ascending
func SortForLeaderboard(players []Player) []Player {
	sorted := slices.Clone(players)
	slices.SortStableFunc(sorted, func(a, b Player) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	return sorted
}

// FindPlayer returns the index of the player with the given id, or -1
func FindPlayer(players []Player, id PlayerID) int {
	return slices.IndexFunc(players, func(p Player) bool {
		return p.ID == id
	})
}
