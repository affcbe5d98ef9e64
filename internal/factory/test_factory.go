package factory

import (
	"time"

	"github.com/ev-1233/Blackjac-chip-counter/internal/dependencies/clock"
	"github.com/ev-1233/Blackjac-chip-counter/internal/dependencies/mocks"
	"github.com/ev-1233/Blackjac-chip-counter/internal/storage/memory"
	"github.com/ev-1233/Blackjac-chip-counter/internal/testutil"
)

// TestSigningKey is the owner token key used by NewTestApp
var TestSigningKey = []byte("test-signing-key")

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock *mocks.MockClock
	MockIDs   *mocks.MockIDs
}

// NewTestApp creates an App configured for testing with mocked dependencies
func NewTestApp() *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockIDs := mocks.NewMockIDs()

	app, err := newWithDependencies(store, mockClock, mockIDs, clock.NewTTLPolicy(0), TestSigningKey, testutil.NopLogger())
	if err != nil {
		panic(err)
	}

	return &TestApp{
		App:       app,
		MockClock: mockClock,
		MockIDs:   mockIDs,
	}
}
