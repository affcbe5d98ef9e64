package redis

import "time"

// Config holds Redis connection and behavior settings
type Config struct {
	// URL is the Redis connection URL (e.g., redis://localhost:6379)
	URL string

	// Pool settings
	PoolSize     int
	MinIdleConns int

	// OwnerTTL is the native expiry set on owner documents. The sweeper is
	// authoritative; this only bounds how long abandoned keys can linger.
	// Zero disables key expiry.
	OwnerTTL time.Duration

	// MaxTxRetries bounds optimistic retries when a watched owner key changes
	MaxTxRetries int
}

// DefaultConfig returns sensible defaults for Redis configuration
func DefaultConfig() Config {
	return Config{
		URL:          "redis://localhost:6379",
		PoolSize:     10,
		MinIdleConns: 2,
		OwnerTTL:     31 * 24 * time.Hour,
		MaxTxRetries: 50,
	}
}
