// Package ratelimit paces outbound AI review requests.
package ratelimit

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// DefaultPerMinute applies when no positive rate is configured.
const DefaultPerMinute = 30

// Clock abstracts time so callers can test pacing without real sleeps.
type Clock interface {
	Now() time.Time
	// Sleep blocks for d or until ctx is done, whichever comes first.
	Sleep(ctx context.Context, d time.Duration) error
}

// SystemClock is the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

func (SystemClock) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Limiter is a token bucket refilled at a fixed number of tokens per minute
// with a burst of one.
type Limiter struct {
	lim   *rate.Limiter
	clock Clock
	every time.Duration
}

// New returns a limiter allowing perMinute requests per minute. A nil clock
// means SystemClock.
func New(perMinute int, clock Clock) *Limiter {
	if perMinute <= 0 {
		perMinute = DefaultPerMinute
	}
	if clock == nil {
		clock = SystemClock{}
	}
	every := time.Minute / time.Duration(perMinute)
	return &Limiter{
		lim:   rate.NewLimiter(rate.Every(every), 1),
		clock: clock,
		every: every,
	}
}

// Interval is the minimum spacing between two requests.
func (l *Limiter) Interval() time.Duration { return l.every }

// Wait suspends until a token is available. It fails only when ctx is done,
// in which case the reserved token is returned to the bucket.
func (l *Limiter) Wait(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	now := l.clock.Now()
	r := l.lim.ReserveN(now, 1)
	delay := r.DelayFrom(now)
	if delay == 0 {
		return nil
	}
	if err := l.clock.Sleep(ctx, delay); err != nil {
		r.CancelAt(l.clock.Now())
		return err
	}
	return nil
}
