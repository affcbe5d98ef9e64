// Package doc implements storage.OwnerTx over an in-memory copy of one owner's
// state. Backends that persist an owner as a single document (memory, redis)
// load the document, run the unit against a Tx and write back Result on success.
package doc

import (
	"context"
	"time"

	"github.com/ev-1233/Blackjac-chip-counter/internal/model"
	"github.com/ev-1233/Blackjac-chip-counter/internal/storage"
)

// IDAllocator hands out globally unique player ids
type IDAllocator func(ctx context.Context) (model.PlayerID, error)

// Tx is a working copy of one owner's document
type Tx struct {
	owner   model.OwnerID
	session *model.OwnerSession
	players []model.Player
	nextID  IDAllocator
	dirty   bool
}

// Ensure Tx implements the interface
var _ storage.OwnerTx = (*Tx)(nil)

// NewTx creates a Tx over a copy of state. A nil state means the owner has no data.
func NewTx(owner model.OwnerID, state *model.OwnerState, nextID IDAllocator) *Tx {
	tx := &Tx{owner: owner, nextID: nextID}
	if state != nil {
		clone := state.Clone()
		tx.session = &clone.Session
		tx.players = clone.Players
	}
	return tx
}

// Dirty reports whether the unit changed anything
func (t *Tx) Dirty() bool {
	return t.dirty
}

// Result returns the document to persist, or nil if the owner should be deleted
func (t *Tx) Result() *model.OwnerState {
	if t.session == nil && len(t.players) == 0 {
		return nil
	}
	state := &model.OwnerState{Players: t.players}
	if t.session != nil {
		state.Session = *t.session
	} else {
		state.Session = model.OwnerSession{OwnerID: t.owner}
	}
	return state.Clone()
}

func (t *Tx) GetSession(ctx context.Context) (*model.OwnerSession, error) {
	if t.session == nil {
		return nil, model.ErrSessionNotFound
	}
	s := *t.session
	if s.CurrentPlayer != nil {
		id := *s.CurrentPlayer
		s.CurrentPlayer = &id
	}
	return &s, nil
}

func (t *Tx) TouchSession(ctx context.Context, now time.Time) error {
	if t.session == nil {
		t.session = model.NewOwnerSession(t.owner, now)
	} else {
		t.session.LastSeenAt = now.Truncate(time.Second)
	}
	t.dirty = true
	return nil
}

func (t *Tx) SetGameState(ctx context.Context, started bool, current *model.PlayerID) error {
	if t.session == nil {
		return model.ErrSessionNotFound
	}
	t.session.GameStarted = started
	t.session.CurrentPlayer = nil
	if current != nil {
		id := *current
		t.session.CurrentPlayer = &id
	}
	t.dirty = true
	return nil
}

func (t *Tx) ListPlayers(ctx context.Context) ([]model.Player, error) {
	return model.SortByTurn(t.players), nil
}

func (t *Tx) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	idx := model.FindPlayer(t.players, id)
	if idx < 0 {
		return nil, model.ErrPlayerNotFound
	}
	p := t.players[idx]
	return &p, nil
}

func (t *Tx) GetPlayerByName(ctx context.Context, name string) (*model.Player, error) {
	for _, p := range t.players {
		if p.Name == name {
			return &p, nil
		}
	}
	return nil, model.ErrPlayerNotFound
}

func (t *Tx) InsertPlayer(ctx context.Context, name string, score int64) (*model.Player, error) {
	if _, err := t.GetPlayerByName(ctx, name); err == nil {
		return nil, model.ErrPlayerExists
	}
	id, err := t.nextID(ctx)
	if err != nil {
		return nil, err
	}
	p := model.Player{ID: id, OwnerID: t.owner, Name: name, Score: score}
	t.players = append(t.players, p)
	t.dirty = true
	return &p, nil
}

func (t *Tx) DeletePlayer(ctx context.Context, id model.PlayerID) error {
	idx := model.FindPlayer(t.players, id)
	if idx < 0 {
		return model.ErrPlayerNotFound
	}
	t.players = append(t.players[:idx], t.players[idx+1:]...)
	t.dirty = true
	return nil
}

func (t *Tx) AdjustScore(ctx context.Context, id model.PlayerID, delta int64) (*model.Player, error) {
	idx := model.FindPlayer(t.players, id)
	if idx < 0 {
		return nil, model.ErrPlayerNotFound
	}
	t.players[idx].Score += delta
	t.dirty = true
	p := t.players[idx]
	return &p, nil
}

func (t *Tx) ResetScores(ctx context.Context) error {
	for i := range t.players {
		t.players[i].Score = 0
	}
	t.dirty = true
	return nil
}

func (t *Tx) Purge(ctx context.Context) error {
	t.session = nil
	t.players = nil
	t.dirty = true
	return nil
}
