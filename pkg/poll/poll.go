// Package poll repeats a fetch at a fixed interval until a condition holds
// or a wall-clock budget is spent.
package poll

import (
	"context"
	"time"
)

type poller struct {
	interval  time.Duration
	timeout   time.Duration
	now       Clock
	sleep     Sleeper
	onAttempt AttemptFunc
}

func newPoller(opts []Option) *poller {
	p := &poller{
		interval: DefaultInterval,
		timeout:  DefaultTimeout,
		now:      time.Now,
		sleep:    Sleep,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Until calls fetch until done accepts its result.
//
// The budget is checked before every attempt, never during one: a fetch that
// is in flight when the budget runs out is allowed to finish. A fetch error
// stops the loop immediately and is returned as is. When the budget is spent
// Until returns the zero value and ErrTimeout.
func Until[T any](ctx context.Context, fetch func(context.Context) (T, error), done func(T) bool, opts ...Option) (T, error) {
	p := newPoller(opts)
	var zero T

	start := p.now()
	for attempt := 1; p.now().Sub(start) < p.timeout; attempt++ {
		v, err := fetch(ctx)
		if p.onAttempt != nil {
			p.onAttempt(attempt, p.now().Sub(start), err)
		}
		if err != nil {
			return zero, err
		}
		if done(v) {
			return v, nil
		}
		if err := p.sleep(ctx, p.interval); err != nil {
			return zero, err
		}
	}
	return zero, ErrTimeout
}

// NonEmpty reports whether a slice has at least one element.
func NonEmpty[E any](s []E) bool { return len(s) > 0 }

// Sleep waits for d unless ctx is cancelled first.
func Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
