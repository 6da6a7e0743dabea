package redis

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/oklog/ulid/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// ErrLockHeld is returned when a lock could not be acquired in time.
var ErrLockHeld = errors.New("lock held by another owner")

// releaseScript deletes the lock only if it still carries our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Locker implements usecase.Locker with a Redis SET NX lock, so rebuilds of
// one subject are serialized across server instances.
type Locker struct {
	client        *redis.Client
	prefix        string
	ttl           time.Duration
	retryInterval time.Duration
	maxWait       time.Duration
	logger        zerolog.Logger
}

// LockerConfig for Locker.
type LockerConfig struct {
	// TTL bounds how long a crashed owner can hold a lock.
	TTL time.Duration
	// MaxWait bounds how long Lock waits before returning ErrLockHeld.
	MaxWait       time.Duration
	RetryInterval time.Duration
	Logger        zerolog.Logger
}

// NewLocker creates a new Locker.
func NewLocker(client *redis.Client, cfg LockerConfig) *Locker {
	if cfg.TTL <= 0 {
		cfg.TTL = 30 * time.Second
	}
	if cfg.MaxWait <= 0 {
		cfg.MaxWait = cfg.TTL
	}
	if cfg.RetryInterval <= 0 {
		cfg.RetryInterval = 25 * time.Millisecond
	}

	return &Locker{
		client:        client,
		prefix:        "lock:",
		ttl:           cfg.TTL,
		retryInterval: cfg.RetryInterval,
		maxWait:       cfg.MaxWait,
		logger:        cfg.Logger,
	}
}

// Lock blocks until the key is held, ctx is done or MaxWait elapses.
func (l *Locker) Lock(ctx context.Context, key string) (func(), error) {
	fullKey := l.prefix + key
	token := ulid.Make().String()

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = l.retryInterval
	b.MaxInterval = 10 * l.retryInterval
	b.MaxElapsedTime = l.maxWait

	err := backoff.Retry(func() error {
		ok, err := l.client.SetNX(ctx, fullKey, token, l.ttl).Result()
		if err != nil {
			return backoff.Permanent(err)
		}
		if !ok {
			return ErrLockHeld
		}
		return nil
	}, backoff.WithContext(b, ctx))
	if err != nil {
		return nil, fmt.Errorf("acquire lock %s: %w", key, err)
	}

	var once sync.Once
	return func() {
		once.Do(func() { l.release(fullKey, token) })
	}, nil
}

func (l *Locker) release(fullKey, token string) {
	// The caller's context may already be cancelled.
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	deleted, err := releaseScript.Run(ctx, l.client, []string{fullKey}, token).Int()
	if err != nil {
		l.logger.Error().Err(err).Str("lock", fullKey).Msg("failed to release lock")
		return
	}
	if deleted == 0 {
		l.logger.Warn().Str("lock", fullKey).Msg("lock expired before release")
	}
}
