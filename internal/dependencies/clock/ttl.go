package clock

import "time"

// DefaultTTL is how long an inactive owner's data is kept
const DefaultTTL = 30 * 24 * time.Hour

// TTLPolicy decides when an owner has been inactive long enough to expire
type TTLPolicy struct {
	TTL time.Duration
}

// NewTTLPolicy creates a policy, falling back to DefaultTTL for non-positive values
func NewTTLPolicy(ttl time.Duration) TTLPolicy {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return TTLPolicy{TTL: ttl}
}

// Cutoff returns the instant before which activity counts as expired.
// Timestamps are stored with second precision so the cutoff is too.
func (p TTLPolicy) Cutoff(now time.Time) time.Time {
	return time.Unix(now.Unix()-int64(p.TTL/time.Second), 0)
}

// IsExpired reports whether now - lastSeenAt >= TTL
func (p TTLPolicy) IsExpired(lastSeenAt, now time.Time) bool {
	return now.Unix()-lastSeenAt.Unix() >= int64(p.TTL/time.Second)
}
