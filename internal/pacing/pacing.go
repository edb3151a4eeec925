// Package pacing spaces out calls to rate-limited APIs.
package pacing

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"paperlens/internal/config"
	"paperlens/internal/port"
)

// FixedDelay sleeps for the same duration on every Wait.
type FixedDelay struct {
	delay time.Duration
}

// NewFixedDelay creates a FixedDelay pacer.
func NewFixedDelay(delay time.Duration) *FixedDelay {
	return &FixedDelay{delay: delay}
}

// Wait blocks for the configured delay or until ctx is done.
func (p *FixedDelay) Wait(ctx context.Context) error {
	if p.delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(p.delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Limiter allows one event per interval. Unlike FixedDelay, time already spent
// in the preceding call counts toward the interval.
type Limiter struct {
	limiter *rate.Limiter
}

// NewLimiter creates a Limiter with one token per interval and a burst of one.
// The bucket starts empty, so even the first Wait is spaced from construction.
func NewLimiter(interval time.Duration) *Limiter {
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	l := rate.NewLimiter(limit, 1)
	l.Allow()
	return &Limiter{limiter: l}
}

// Wait blocks until the next event is allowed or ctx is done.
func (p *Limiter) Wait(ctx context.Context) error {
	return p.limiter.Wait(ctx)
}

// New builds the pacer selected by cfg.
func New(cfg *config.PacingConfig) (port.Pacer, error) {
	switch cfg.Mode {
	case config.PacingModeSleep, "":
		return NewFixedDelay(cfg.Delay()), nil
	case config.PacingModeLimiter:
		return NewLimiter(cfg.Delay()), nil
	default:
		return nil, fmt.Errorf("unknown pacing mode: %q", cfg.Mode)
	}
}
