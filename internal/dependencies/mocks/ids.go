package mocks

import (
	"fmt"
	"sync"

	"github.com/ev-1233/Blackjac-chip-counter/internal/dependencies/ids"
	"github.com/ev-1233/Blackjac-chip-counter/internal/model"
)

// MockIDs is a mock implementation of ids.Generator for testing
type MockIDs struct {
	mu sync.Mutex

	// OwnerIDs is a queue of results to return from NewOwnerID
	OwnerIDs []model.OwnerID
	next     int
}

// Ensure MockIDs implements Generator
var _ ids.Generator = (*MockIDs)(nil)

// NewMockIDs creates a new MockIDs
func NewMockIDs() *MockIDs {
	return &MockIDs{}
}

// NewOwnerID returns the next queued id, or a sequential fallback when the queue is drained
func (m *MockIDs) NewOwnerID() model.OwnerID {
	m.mu.Lock()
	defer m.mu.Unlock()
	idx := m.next
	m.next++
	if idx < len(m.OwnerIDs) {
		return m.OwnerIDs[idx]
	}
	return model.OwnerID(fmt.Sprintf("owner-%d", idx+1))
}

// QueueOwnerIDs adds values to the result queue
func (m *MockIDs) QueueOwnerIDs(values ...model.OwnerID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.OwnerIDs = append(m.OwnerIDs, values...)
}
