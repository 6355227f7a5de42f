package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrNotAcquired is returned by Acquire when the key stays locked for the
// whole wait period.
var ErrNotAcquired = errors.New("lock not acquired")

type Locker interface {
	// Lock tries once. ok is false when someone else holds the key.
	Lock(ctx context.Context, key string, ttl time.Duration) (token string, ok bool, err error)
	// Unlock releases the key only if it is still held with token.
	Unlock(ctx context.Context, key, token string) error
}

type RedisLock struct {
	client *redis.Client
}

// releaseScript deletes the key only when it still carries our token, so an
// expired lock re-taken by another request is never released by us.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

func NewRedisLock(opts *redis.Options) (*RedisLock, error) {
	const op = "lock.NewRedisLock"

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &RedisLock{client: client}, nil
}

func (r *RedisLock) Lock(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	const op = "lock.RedisLock.Lock"

	token := uuid.NewString()
	ok, err := r.client.SetNX(ctx, lockKey(key), token, ttl).Result()
	if err != nil {
		return "", false, fmt.Errorf("%s: %w", op, err)
	}
	if !ok {
		return "", false, nil
	}

	return token, true, nil
}

func (r *RedisLock) Unlock(ctx context.Context, key, token string) error {
	const op = "lock.RedisLock.Unlock"

	if err := releaseScript.Run(ctx, r.client, []string{lockKey(key)}, token).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (r *RedisLock) Close() error {
	return r.client.Close()
}

func lockKey(key string) string {
	return fmt.Sprintf("lock:%s", key)
}

const retryInterval = 50 * time.Millisecond

// Acquire retries Lock until it succeeds, wait elapses or ctx is done.
func Acquire(ctx context.Context, l Locker, key string, ttl, wait time.Duration) (string, error) {
	deadline := time.Now().Add(wait)
	for {
		token, ok, err := l.Lock(ctx, key, ttl)
		if err != nil {
			return "", err
		}
		if ok {
			return token, nil
		}
		if time.Now().Add(retryInterval).After(deadline) {
			return "", fmt.Errorf("%s: %w", key, ErrNotAcquired)
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(retryInterval):
		}
	}
}
