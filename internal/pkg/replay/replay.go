package replay

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Guard suppresses redelivered external events (payment webhooks, withdrawal
// completion callbacks) with a SETNX fast path. The database unique
// constraints remain the source of truth; the guard only saves a round trip
// on the common duplicate. With no Redis configured it reports every event
// as unseen.
type Guard struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewGuard(rdb *redis.Client, ttl time.Duration) *Guard {
	if ttl <= 0 {
		ttl = 48 * time.Hour
	}
	return &Guard{rdb: rdb, ttl: ttl}
}

// Seen marks the key and reports whether it had already been marked.
// Redis failures degrade to "unseen" so settlement never blocks on the cache.
func (g *Guard) Seen(ctx context.Context, key string) bool {
	if g == nil || g.rdb == nil {
		return false
	}
	ok, err := g.rdb.SetNX(ctx, "replay:"+key, 1, g.ttl).Result()
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("replay guard unavailable")
		return false
	}
	return !ok
}

// Forget clears a key so a failed settlement can be redelivered.
func (g *Guard) Forget(ctx context.Context, key string) {
	if g == nil || g.rdb == nil {
		return
	}
	if err := g.rdb.Del(ctx, "replay:"+key).Err(); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("replay guard delete failed")
	}
}
