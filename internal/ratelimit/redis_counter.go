package ratelimit

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// incrScript bumps KEYS[1] and arms its expiry (ARGV[1] ms) whenever the key has none,
// so a counter can never outlive its window.
var incrScript = redis.NewScript(`
local n = redis.call('INCR', KEYS[1])
if redis.call('PTTL', KEYS[1]) < 0 then
	redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
return n
`)

// RedisClient is the subset of the go-redis client the counter uses.
type RedisClient interface {
	redis.Scripter
	Get(ctx context.Context, key string) *redis.StringCmd
	TTL(ctx context.Context, key string) *redis.DurationCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// RedisCounter implements Counter on Redis; increments and expiry run as one script.
type RedisCounter struct {
	client RedisClient
}

// NewRedisCounter wraps client.
func NewRedisCounter(client RedisClient) *RedisCounter {
	return &RedisCounter{client: client}
}

func (r *RedisCounter) Get(ctx context.Context, key string) (int64, error) {
	n, err := r.client.Get(ctx, key).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return n, err
}

// Incr bumps key, starting its window if it has no expiry yet.
func (r *RedisCounter) Incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	return incrScript.Run(ctx, r.client, []string{key}, window.Milliseconds()).Int64()
}

func (r *RedisCounter) TTL(ctx context.Context, key string) (time.Duration, error) {
	return r.client.TTL(ctx, key).Result()
}

func (r *RedisCounter) Expire(ctx context.Context, key string, window time.Duration) error {
	return r.client.Expire(ctx, key, window).Err()
}

func (r *RedisCounter) Del(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}
