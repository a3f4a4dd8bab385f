package redis

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	goRedis "github.com/redis/go-redis/v9"
)

// ErrLockTimeout is returned when a lock could not be acquired within the wait budget.
var ErrLockTimeout = errors.New("timed out waiting for lock")

// release deletes the key only when it still holds our token.
var release = goRedis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// renew pushes the expiry out only when the key still holds our token.
var renew = goRedis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0
`)

// lockClient is the subset of the Redis client the locker needs.
type lockClient interface {
	goRedis.Scripter
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *goRedis.BoolCmd
}

// Locker hands out exclusive locks keyed by name. A held lock is renewed every ttl/3
// until it is released, so ttl only bounds how long a crashed holder blocks others.
type Locker struct {
	client    lockClient
	prefix    string
	ttl       time.Duration
	maxWait   time.Duration
	retryWait time.Duration
}

// NewLocker creates a Locker.
func NewLocker(client goRedis.UniversalClient, prefix string, ttl, maxWait time.Duration) *Locker {
	return newLocker(client, prefix, ttl, maxWait)
}

func newLocker(client lockClient, prefix string, ttl, maxWait time.Duration) *Locker {
	return &Locker{
		client:    client,
		prefix:    prefix,
		ttl:       ttl,
		maxWait:   maxWait,
		retryWait: 50 * time.Millisecond,
	}
}

// Lock blocks until the key is acquired, the wait budget is spent or ctx is done.
// The returned func stops the renewal and releases the lock.
func (l *Locker) Lock(ctx context.Context, key string) (func(), error) {
	fullKey := l.prefix + key
	token := uuid.NewString()
	deadline := time.Now().Add(l.maxWait)

	for {
		ok, err := l.client.SetNX(ctx, fullKey, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to acquire lock %s: %w", fullKey, err)
		}
		if ok {
			return l.hold(fullKey, token), nil
		}

		if time.Now().After(deadline) {
			return nil, fmt.Errorf("%w: %s", ErrLockTimeout, fullKey)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(l.retryWait):
		}
	}
}

// hold keeps the lock alive in the background and returns its release func.
func (l *Locker) hold(fullKey, token string) func() {
	stop := make(chan struct{})
	done := make(chan struct{})
	interval := l.ttl / 3
	go func() {
		defer close(done)
		if interval <= 0 {
			<-stop
			return
		}
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				// the lock was lost or Redis is unreachable; the holder finishes without it
				n, err := renew.Run(context.Background(), l.client, []string{fullKey}, token, l.ttl.Milliseconds()).Int64()
				if err != nil || n == 0 {
					return
				}
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			close(stop)
			<-done
			// the holder's ctx may already be cancelled; release must still run
			_ = release.Run(context.Background(), l.client, []string{fullKey}, token).Err()
		})
	}
}
