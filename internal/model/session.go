package model

import "time"

// OwnerSession is the per-owner activity and game-state record
type OwnerSession struct {
	OwnerID       OwnerID   `json:"owner_id"`
	LastSeenAt    time.Time `json:"last_seen_at"`
	GameStarted   bool      `json:"game_started"`
	CurrentPlayer *PlayerID `json:"current_player,omitempty"` // nil unless GameStarted
}

// NewOwnerSession returns the default session for a newly observed owner
func NewOwnerSession(owner OwnerID, now time.Time) *OwnerSession {
	return &OwnerSession{
		OwnerID:    owner,
		LastSeenAt: now.Truncate(time.Second),
	}
}

// Status reports the game state machine state for this session
func (s *OwnerSession) Status() GameStatus {
	if s.GameStarted {
		return GameStatusInProgress
	}
	return GameStatusNotStarted
}

// OwnerState is a complete snapshot of one owner's data.
// Document-oriented backends persist it as a single unit.
type OwnerState struct {
	Session OwnerSession `json:"session"`
	Players []Player     `json:"players"`
}

// Clone returns a deep copy of the state
func (s *OwnerState) Clone() *OwnerState {
	clone := &OwnerState{
		Session: s.Session,
		Players: make([]Player, len(s.Players)),
	}
	copy(clone.Players, s.Players)
	if s.Session.CurrentPlayer != nil {
		id := *s.Session.CurrentPlayer
		clone.Session.CurrentPlayer = &id
	}
	return clone
}
