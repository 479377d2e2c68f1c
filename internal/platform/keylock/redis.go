package keylock

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/sunft-backend/internal/platform/logger"
)

var releaseScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker holds a lease per key in Redis on top of a local keyed mutex.
type RedisLocker struct {
	log    *logger.Logger
	rdb    goredis.UniversalClient
	local  *Local
	prefix string
	ttl    time.Duration
	retry  time.Duration
}

func NewRedisLocker(log *logger.Logger, rdb goredis.UniversalClient, prefix string, ttl time.Duration) *RedisLocker {
	prefix = strings.TrimRight(strings.TrimSpace(prefix), ":")
	if prefix == "" {
		prefix = "sunft:lock"
	}
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	return &RedisLocker{
		log:    log.With("service", "RedisLocker"),
		rdb:    rdb,
		local:  NewLocal(),
		prefix: prefix,
		ttl:    ttl,
		retry:  25 * time.Millisecond,
	}
}

func (r *RedisLocker) redisKey(key string) string {
	return r.prefix + ":" + key
}

func (r *RedisLocker) Lock(ctx context.Context, key string) (func(), error) {
	if r == nil || r.rdb == nil {
		return nil, fmt.Errorf("redis locker not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	unlockLocal, err := r.local.Lock(ctx, key)
	if err != nil {
		return nil, err
	}

	redisKey := r.redisKey(key)
	token := uuid.NewString()
	for {
		ok, err := r.rdb.SetNX(ctx, redisKey, token, r.ttl).Result()
		if err != nil {
			unlockLocal()
			return nil, fmt.Errorf("redis lock %s: %w", key, err)
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			unlockLocal()
			return nil, ctx.Err()
		case <-time.After(r.retry):
		}
	}

	return func() {
		// release with a fresh context: the caller's may already be done
		relCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := releaseScript.Run(relCtx, r.rdb, []string{redisKey}, token).Err(); err != nil && err != goredis.Nil {
			r.log.Warn("redis lock release failed", "key", redisKey, "error", err)
		}
		unlockLocal()
	}, nil
}
