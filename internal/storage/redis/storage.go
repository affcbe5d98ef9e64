package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ev-1233/Blackjac-chip-counter/internal/model"
	"github.com/ev-1233/Blackjac-chip-counter/internal/storage"
	"github.com/ev-1233/Blackjac-chip-counter/internal/storage/doc"
)

// ErrTxConflict is returned when an owner unit keeps losing optimistic races
var ErrTxConflict = errors.New("redis: owner transaction retries exhausted")

// Storage is a Redis-backed implementation of the storage interface.
// Each owner is one JSON document; units run under WATCH on that key.
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func (s *Storage) WithOwner(ctx context.Context, owner model.OwnerID, fn func(tx storage.OwnerTx) error) error {
	key := ownerKey(owner)

	unit := func(rtx *redis.Tx) error {
		state, err := s.load(ctx, rtx, key)
		if err != nil {
			return err
		}

		tx := doc.NewTx(owner, state, s.allocateID)
		if err := fn(tx); err != nil {
			return err
		}
		if !tx.Dirty() {
			return nil
		}

		result := tx.Result()
		var data []byte
		if result != nil {
			if data, err = json.Marshal(result); err != nil {
				return err
			}
		}

		_, err = rtx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			if result == nil {
				pipe.Del(ctx, key)
				pipe.ZRem(ctx, lastSeenIndexKey(), string(owner))
				return nil
			}
			pipe.Set(ctx, key, data, s.cfg.OwnerTTL)
			pipe.ZAdd(ctx, lastSeenIndexKey(), redis.Z{
				Score:  float64(result.Session.LastSeenAt.Unix()),
				Member: string(owner),
			})
			return nil
		})
		return err
	}

	return s.retry(ctx, func() error {
		return s.client.Watch(ctx, unit, key)
	})
}

func (s *Storage) SweepExpired(ctx context.Context, cutoff time.Time) (int, error) {
	candidates, err := s.client.ZRangeByScore(ctx, lastSeenIndexKey(), &redis.ZRangeBy{
		Min: "-inf",
		Max: "(" + strconv.FormatInt(cutoff.Unix(), 10),
	}).Result()
	if err != nil {
		return 0, fmt.Errorf("listing expired owners: %w", err)
	}

	removed := 0
	for _, member := range candidates {
		owner := model.OwnerID(member)
		key := ownerKey(owner)

		expired := false
		err := s.client.Watch(ctx, func(rtx *redis.Tx) error {
			state, err := s.load(ctx, rtx, key)
			if err != nil {
				return err
			}
			// The owner may have been touched since the index was read
			if state != nil && !state.Session.LastSeenAt.Before(cutoff) {
				return nil
			}
			expired = state != nil

			_, err = rtx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Del(ctx, key)
				pipe.ZRem(ctx, lastSeenIndexKey(), member)
				return nil
			})
			return err
		}, key)
		if errors.Is(err, redis.TxFailedErr) {
			// A concurrent unit won; it runs its own expiry check
			continue
		}
		if err != nil {
			return removed, fmt.Errorf("sweeping owner %s: %w", owner, err)
		}
		if expired {
			removed++
		}
	}
	return removed, nil
}

func (s *Storage) Stats(ctx context.Context) (storage.Stats, error) {
	owners, err := s.client.ZRange(ctx, lastSeenIndexKey(), 0, -1).Result()
	if err != nil {
		return storage.Stats{}, err
	}

	stats := storage.Stats{}
	for _, member := range owners {
		state, err := s.load(ctx, s.client, ownerKey(model.OwnerID(member)))
		if err != nil {
			return storage.Stats{}, err
		}
		if state == nil {
			continue
		}
		stats.Owners++
		stats.Players += len(state.Players)
	}
	return stats, nil
}

func (s *Storage) load(ctx context.Context, c getter, key string) (*model.OwnerState, error) {
	data, err := c.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var state model.OwnerState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", key, err)
	}
	return &state, nil
}

func (s *Storage) allocateID(ctx context.Context) (model.PlayerID, error) {
	id, err := s.client.Incr(ctx, playerSeqKey()).Result()
	if err != nil {
		return 0, fmt.Errorf("allocating player id: %w", err)
	}
	return model.PlayerID(id), nil
}

// getter is satisfied by both the client and a watched transaction
type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

// retry reruns op while the watched key changes underneath it
func (s *Storage) retry(ctx context.Context, op func() error) error {
	attempts := max(s.cfg.MaxTxRetries, 1)
	for i := 0; i < attempts; i++ {
		err := op()
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}

		backoff := time.Duration(i+1) * time.Millisecond
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}
	return ErrTxConflict
}
