package probe

import (
	"io"

	"github.com/okian/hourlyprobe/pkg/logger"
	"github.com/okian/hourlyprobe/pkg/metrics"
	"github.com/okian/hourlyprobe/pkg/poll"
)

// Option applies a configuration option to the Probe.
type Option func(*Probe)

// WithLogger sets the logger used for progress lines.
func WithLogger(l logger.Logger) Option {
	return func(p *Probe) {
		if l != nil {
			p.log = l
		}
	}
}

// WithMetrics records run metrics on m.
func WithMetrics(m *metrics.Manager) Option {
	return func(p *Probe) {
		if m != nil {
			p.metrics = m
		}
	}
}

// WithClock replaces time.Now for window construction and the poll budget.
func WithClock(c poll.Clock) Option {
	return func(p *Probe) {
		if c != nil {
			p.now = c
		}
	}
}

// WithSleeper replaces the wait between poll attempts.
func WithSleeper(s poll.Sleeper) Option {
	return func(p *Probe) {
		if s != nil {
			p.sleep = s
		}
	}
}

// WithSampleWriter sets where the row sample is printed.
func WithSampleWriter(w io.Writer) Option {
	return func(p *Probe) {
		if w != nil {
			p.out = w
		}
	}
}
