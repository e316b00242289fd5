package services

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const sweepLockKey = "lock:sweep"

// SweepLock is a coarse run-lock around the overdue sweep so a slow pass
// and the next scheduled firing never run concurrently. The per-event
// claim in CompleteAndAdvance already prevents double-advancing; the lock
// just avoids redundant overlapping passes. With no Redis configured the
// lock is a no-op.
type SweepLock struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewSweepLock(client *redis.Client, ttl time.Duration) *SweepLock {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &SweepLock{redis: client, ttl: ttl}
}

// Acquire takes the lock, reporting false when another sweep holds it.
func (l *SweepLock) Acquire(ctx context.Context) (bool, error) {
	if l == nil || l.redis == nil {
		return true, nil
	}
	return l.redis.SetNX(ctx, sweepLockKey, "1", l.ttl).Result()
}

// Release frees the lock. The TTL bounds the hold time if a release is
// lost.
func (l *SweepLock) Release(ctx context.Context) {
	if l == nil || l.redis == nil {
		return
	}
	l.redis.Del(ctx, sweepLockKey)
}
