package poll

import (
	"context"
	"time"
)

// Default poll configuration.
const (
	DefaultInterval = 3 * time.Second
	DefaultTimeout  = 120 * time.Second
)

// Clock returns the current instant.
type Clock func() time.Time

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// AttemptFunc observes every finished attempt. n starts at 1.
type AttemptFunc func(n int, elapsed time.Duration, err error)

// Option applies a configuration option to a poller.
type Option func(*poller)

// WithInterval sets the fixed delay between attempts.
func WithInterval(d time.Duration) Option {
	return func(p *poller) {
		if d > 0 {
			p.interval = d
		}
	}
}

// WithTimeout sets the total wall-clock budget measured from the first attempt.
func WithTimeout(d time.Duration) Option {
	return func(p *poller) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// WithClock replaces time.Now.
func WithClock(c Clock) Option {
	return func(p *poller) {
		if c != nil {
			p.now = c
		}
	}
}

// WithSleeper replaces the context-aware timer wait.
func WithSleeper(s Sleeper) Option {
	return func(p *poller) {
		if s != nil {
			p.sleep = s
		}
	}
}

// WithOnAttempt registers a hook called after each attempt.
func WithOnAttempt(fn AttemptFunc) Option {
	return func(p *poller) {
		p.onAttempt = fn
	}
}
