package claim

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// releaseScript deletes the lock only when the stored token still belongs
// to the releasing holder, so a stale holder cannot free a lease that was
// taken over after its TTL lapsed.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// RedisLocker is the shared backend, useful when sidecar tooling (lounge
// UI, admin scripts) wants to observe held seats. SET NX PX gives the
// same lease-with-staleness semantics as MemoryLocker.
type RedisLocker struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

func NewRedisLocker(client *redis.Client, ttl time.Duration) *RedisLocker {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisLocker{client: client, ttl: ttl, prefix: "seatclaim:"}
}

func (l *RedisLocker) Acquire(ctx context.Context, key string) (func(), bool, error) {
	token := uuid.NewString()
	full := l.prefix + key
	ok, err := l.client.SetNX(ctx, full, token, l.ttl).Result()
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}
	release := func() {
		if _, err := releaseScript.Run(context.Background(), l.client, []string{full}, token).Result(); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("seat claim release failed")
		}
	}
	return release, true, nil
}
