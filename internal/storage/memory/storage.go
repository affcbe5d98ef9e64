package memory

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ev-1233/Blackjac-chip-counter/internal/model"
	"github.com/ev-1233/Blackjac-chip-counter/internal/storage"
	"github.com/ev-1233/Blackjac-chip-counter/internal/storage/doc"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu     sync.RWMutex
	owners map[model.OwnerID]*model.OwnerState

	locksMu sync.Mutex
	locks   map[model.OwnerID]*ownerLock

	lastID atomic.Int64
}

// ownerLock serializes units for one owner. refs counts holders and waiters
// so idle entries can be dropped from the table.
type ownerLock struct {
	mu   sync.Mutex
	refs int
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		owners: make(map[model.OwnerID]*model.OwnerState),
		locks:  make(map[model.OwnerID]*ownerLock),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func (s *Storage) WithOwner(ctx context.Context, owner model.OwnerID, fn func(tx storage.OwnerTx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	release := s.lock(owner)
	defer release()

	s.mu.RLock()
	current := s.owners[owner]
	s.mu.RUnlock()

	tx := doc.NewTx(owner, current, s.allocateID)
	if err := fn(tx); err != nil {
		return err
	}
	if !tx.Dirty() {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if result := tx.Result(); result != nil {
		s.owners[owner] = result
	} else {
		delete(s.owners, owner)
	}
	return nil
}

func (s *Storage) SweepExpired(ctx context.Context, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.locksMu.Lock()
	defer s.locksMu.Unlock()

	removed := 0
	for owner, state := range s.owners {
		if !state.Session.LastSeenAt.Before(cutoff) {
			continue
		}
		// An owner with a unit in flight is left alone; that unit checks its
		// own expiry before touching the session.
		if _, busy := s.locks[owner]; busy {
			continue
		}
		delete(s.owners, owner)
		removed++
	}
	return removed, nil
}

func (s *Storage) Stats(ctx context.Context) (storage.Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := storage.Stats{Owners: len(s.owners)}
	for _, state := range s.owners {
		stats.Players += len(state.Players)
	}
	return stats, nil
}

// Close is a no-op for in-memory storage
func (s *Storage) Close() error {
	return nil
}

func (s *Storage) allocateID(ctx context.Context) (model.PlayerID, error) {
	return model.PlayerID(s.lastID.Add(1)), nil
}

func (s *Storage) lock(owner model.OwnerID) func() {
	s.locksMu.Lock()
	l, ok := s.locks[owner]
	if !ok {
		l = &ownerLock{}
		s.locks[owner] = l
	}
	l.refs++
	s.locksMu.Unlock()

	l.mu.Lock()

	return func() {
		l.mu.Unlock()

		s.locksMu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, owner)
		}
		s.locksMu.Unlock()
	}
}
