package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrRunInFlight is returned when another run holds the lock.
var ErrRunInFlight = errors.New("a pipeline run is already in flight")

const lockKey = "dsarflow:run-lock"

// RunLock is an advisory redis lock so overlapping cron invocations
// cannot both enter a run. The core still assumes a single scheduler;
// the lock only turns an accidental overlap into a clean no-op. A nil
// *RunLock disables locking.
type RunLock struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRunLock(client *redis.Client, ttl time.Duration) *RunLock {
	if client == nil {
		return nil
	}
	return &RunLock{client: client, ttl: ttl}
}

func (l *RunLock) Acquire(ctx context.Context, runID string) error {
	if l == nil {
		return nil
	}
	ok, err := l.client.SetNX(ctx, lockKey, runID, l.ttl).Result()
	if err != nil {
		return err
	}
	if !ok {
		return ErrRunInFlight
	}
	return nil
}

func (l *RunLock) Release(ctx context.Context, runID string) {
	if l == nil {
		return
	}
	// Only the holder may release; a stale TTL-expired lock belongs to
	// someone else by now.
	current, err := l.client.Get(ctx, lockKey).Result()
	if err != nil || current != runID {
		return
	}
	l.client.Del(ctx, lockKey)
}
