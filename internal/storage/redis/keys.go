package redis

import (
	"fmt"

	"github.com/ev-1233/Blackjac-chip-counter/internal/model"
)

// Key prefix for all scoreboard data
const keyPrefix = "scoreboard"

// ownerKey returns the Redis key for an owner's JSON document
func ownerKey(owner model.OwnerID) string {
	return fmt.Sprintf("%s:owner:%s", keyPrefix, owner)
}

// lastSeenIndexKey returns the ZSET of owners scored by last activity (unix seconds)
func lastSeenIndexKey() string {
	return fmt.Sprintf("%s:idx:last_seen", keyPrefix)
}

// playerSeqKey returns the counter used to allocate player ids
func playerSeqKey() string {
	return fmt.Sprintf("%s:seq:player", keyPrefix)
}
