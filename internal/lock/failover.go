package lock

import (
	"context"
	"sync/atomic"
	"time"

	"ridesync/internal/domain"

	"github.com/rs/zerolog"
)

// FailoverLocker tries the primary locker and falls back when it
// errors, retrying the primary after a cool-down.
type FailoverLocker struct {
	primary   domain.Locker
	fallback  domain.Locker
	logger    *zerolog.Logger
	isDown    atomic.Bool
	lastCheck atomic.Int64
}

const recoveryInterval = time.Minute

func NewFailoverLocker(primary, fallback domain.Locker, logger *zerolog.Logger) *FailoverLocker {
	return &FailoverLocker{primary: primary, fallback: fallback, logger: logger}
}

func (l *FailoverLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if !l.isDown.Load() {
		ok, err := l.primary.Acquire(ctx, key, ttl)
		if err == nil {
			return ok, nil
		}
		l.logger.Error().Err(err).Msg("Primary locker failed, falling back to memory")
		l.markDown()
	} else if l.shouldRetryPrimary() {
		ok, err := l.primary.Acquire(ctx, key, ttl)
		if err == nil {
			l.isDown.Store(false)
			return ok, nil
		}
		l.lastCheck.Store(time.Now().UnixNano())
	}

	return l.fallback.Acquire(ctx, key, ttl)
}

func (l *FailoverLocker) Release(ctx context.Context, key string) error {
	// Release on both sides; the lock may live in either.
	var primaryErr error
	if !l.isDown.Load() {
		primaryErr = l.primary.Release(ctx, key)
		if primaryErr != nil {
			l.logger.Error().Err(primaryErr).Msg("Primary locker release failed")
			l.markDown()
		}
	}
	if err := l.fallback.Release(ctx, key); err != nil {
		return err
	}
	return primaryErr
}

func (l *FailoverLocker) markDown() {
	l.isDown.Store(true)
	l.lastCheck.Store(time.Now().UnixNano())
}

func (l *FailoverLocker) shouldRetryPrimary() bool {
	return time.Since(time.Unix(0, l.lastCheck.Load())) > recoveryInterval
}
