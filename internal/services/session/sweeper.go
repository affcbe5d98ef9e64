package session

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ev-1233/Blackjac-chip-counter/internal/dependencies/clock"
	"github.com/ev-1233/Blackjac-chip-counter/internal/storage"
)

// Sweeper deletes the data of owners inactive for longer than the TTL
type Sweeper struct {
	storage storage.Storage
	clock   clock.Clock
	policy  clock.TTLPolicy
	logger  *slog.Logger
}

// NewSweeper creates a new Sweeper
func NewSweeper(storage storage.Storage, clock clock.Clock, policy clock.TTLPolicy, logger *slog.Logger) *Sweeper {
	return &Sweeper{
		storage: storage,
		clock:   clock,
		policy:  policy,
		logger:  logger,
	}
}

// Sweep removes every owner whose last activity is before now - TTL.
// It commits on its own, so callers run it before opening their owner unit.
func (s *Sweeper) Sweep(ctx context.Context) (int, error) {
	cutoff := s.policy.Cutoff(s.clock.Now())

	removed, err := s.storage.SweepExpired(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("sweeping expired owners: %w", err)
	}

	if removed > 0 {
		s.logger.Info("expired owners swept",
			slog.Int("removed", removed),
			slog.Time("cutoff", cutoff),
		)
	}
	return removed, nil
}

// Run sweeps every interval until ctx is cancelled
func (s *Sweeper) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Sweep(ctx); err != nil && ctx.Err() == nil {
				s.logger.Error("background sweep failed", slog.String("error", err.Error()))
			}
		}
	}
}
