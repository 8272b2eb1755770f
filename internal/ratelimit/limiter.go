package ratelimit

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

const keyPrefix = "garage-auth:login-failures:"

// ErrTooManyAttempts is returned while a username is locked out.
var ErrTooManyAttempts = errors.New("too many failed sign-in attempts")

// Counter is a windowed counter keyed by string.
type Counter interface {
	Get(ctx context.Context, key string) (int64, error)
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)
	TTL(ctx context.Context, key string) (time.Duration, error)
	Expire(ctx context.Context, key string, window time.Duration) error
	Del(ctx context.Context, key string) error
}

// LoginLimiter locks a username after too many failed sign-ins within a window.
// Counter failures are logged and let the request through.
type LoginLimiter struct {
	counter     Counter
	maxFailures int64
	window      time.Duration
	logger      *zap.Logger
}

// NewLoginLimiter returns a limiter; a nil counter or zero limits disable it.
func NewLoginLimiter(counter Counter, maxFailures int, window time.Duration, logger *zap.Logger) *LoginLimiter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LoginLimiter{counter: counter, maxFailures: int64(maxFailures), window: window, logger: logger}
}

func (l *LoginLimiter) enabled() bool {
	return l != nil && l.counter != nil && l.maxFailures > 0 && l.window > 0
}

// Allow returns ErrTooManyAttempts and the remaining lockout when username is locked.
func (l *LoginLimiter) Allow(ctx context.Context, username string) (time.Duration, error) {
	if !l.enabled() {
		return 0, nil
	}

	key := failureKey(username)
	failures, err := l.counter.Get(ctx, key)
	if err != nil {
		l.logger.Warn("login throttle unavailable", zap.Error(err))
		return 0, nil
	}
	if failures < l.maxFailures {
		return 0, nil
	}

	retryAfter, err := l.counter.TTL(ctx, key)
	if err != nil {
		l.logger.Warn("read login lockout ttl", zap.Error(err))
		return l.window, ErrTooManyAttempts
	}
	if retryAfter <= 0 {
		// a counter without expiry would lock the username forever
		if err := l.counter.Expire(ctx, key, l.window); err != nil {
			l.logger.Warn("re-arm login lockout", zap.Error(err))
		}
		retryAfter = l.window
	}
	return retryAfter, ErrTooManyAttempts
}

// RecordFailure counts one failed sign-in for username.
func (l *LoginLimiter) RecordFailure(ctx context.Context, username string) {
	if !l.enabled() {
		return
	}
	if _, err := l.counter.Incr(ctx, failureKey(username), l.window); err != nil {
		l.logger.Warn("record login failure", zap.Error(err))
	}
}

// Reset clears the failure count after a successful sign-in.
func (l *LoginLimiter) Reset(ctx context.Context, username string) {
	if !l.enabled() {
		return
	}
	if err := l.counter.Del(ctx, failureKey(username)); err != nil {
		l.logger.Warn("reset login failures", zap.Error(err))
	}
}

// failureKey keys on the exact username, matching the case-sensitive user store.
func failureKey(username string) string {
	return keyPrefix + username
}
