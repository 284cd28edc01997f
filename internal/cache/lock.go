package cache

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ErrLockTimeout is returned when a lock could not be taken before the wait
// deadline.
var ErrLockTimeout = errors.New("timed out waiting for lock")

const (
	lockPrefix      = "panel:lock:"
	lockRetryDelay  = 25 * time.Millisecond
	defaultLockWait = 5 * time.Second
	defaultLockTTL  = 30 * time.Second
	releaseTimeout  = 2 * time.Second
)

// uniqueSorted returns keys deduplicated and in a fixed order so that two
// callers locking overlapping sets cannot deadlock.
func uniqueSorted(keys []string) []string {
	seen := make(map[string]struct{}, len(keys))
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// RedisLocker takes per-key mutual exclusion in Redis with SET NX PX and a
// random token, so a lock can only be released by its holder.
type RedisLocker struct {
	redis *RedisClient
	ttl   time.Duration
	wait  time.Duration
}

// NewRedisLocker builds a RedisLocker. ttl bounds how long a crashed
// holder can block others.
func NewRedisLocker(client *RedisClient, ttl time.Duration) *RedisLocker {
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	return &RedisLocker{redis: client, ttl: ttl, wait: defaultLockWait}
}

// Lock acquires every key or none. The returned func releases them.
func (l *RedisLocker) Lock(ctx context.Context, keys ...string) (func(), error) {
	keys = uniqueSorted(keys)
	token := uuid.NewString()

	ctx, cancel := context.WithTimeout(ctx, l.wait)
	defer cancel()

	held := make([]string, 0, len(keys))
	release := func() {
		rctx, rcancel := context.WithTimeout(context.Background(), releaseTimeout)
		defer rcancel()
		for i := len(held) - 1; i >= 0; i-- {
			if _, err := l.redis.DeleteIfValue(rctx, lockPrefix+held[i], token); err != nil {
				log.Warn().Err(err).Str("key", held[i]).Msg("Failed to release lock")
			}
		}
	}

	for _, key := range keys {
		for {
			ok, err := l.redis.SetNX(ctx, lockPrefix+key, token, l.ttl)
			if err == nil && ok {
				held = append(held, key)
				break
			}
			if err != nil && !errors.Is(err, context.DeadlineExceeded) {
				release()
				return nil, err
			}
			select {
			case <-ctx.Done():
				release()
				return nil, ErrLockTimeout
			case <-time.After(lockRetryDelay):
			}
		}
	}
	return release, nil
}

// LocalLocker is an in-process keyed mutex used when Redis is disabled and
// in tests. It only serializes callers within one process.
type LocalLocker struct {
	mu    sync.Mutex
	locks map[string]*localEntry
}

type localEntry struct {
	ch   chan struct{}
	refs int
}

// NewLocalLocker builds an empty LocalLocker.
func NewLocalLocker() *LocalLocker {
	return &LocalLocker{locks: make(map[string]*localEntry)}
}

// Lock acquires every key or none. The returned func releases them.
func (l *LocalLocker) Lock(ctx context.Context, keys ...string) (func(), error) {
	keys = uniqueSorted(keys)
	held := make([]string, 0, len(keys))
	release := func() {
		for i := len(held) - 1; i >= 0; i-- {
			l.unlock(held[i])
		}
	}

	for _, key := range keys {
		if err := l.lock(ctx, key); err != nil {
			release()
			return nil, err
		}
		held = append(held, key)
	}
	return release, nil
}

func (l *LocalLocker) lock(ctx context.Context, key string) error {
	l.mu.Lock()
	e, ok := l.locks[key]
	if !ok {
		e = &localEntry{ch: make(chan struct{}, 1)}
		l.locks[key] = e
	}
	e.refs++
	l.mu.Unlock()

	select {
	case e.ch <- struct{}{}:
		return nil
	case <-ctx.Done():
		l.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(l.locks, key)
		}
		l.mu.Unlock()
		return ctx.Err()
	}
}

func (l *LocalLocker) unlock(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.locks[key]
	if !ok {
		return
	}
	<-e.ch
	e.refs--
	if e.refs == 0 {
		delete(l.locks, key)
	}
}
