package probe_test

import (
	"time"

	"github.com/okian/hourlyprobe/pkg/poll"
)

func pollOptions(c *fakeClock, interval, timeout time.Duration) []poll.Option {
	return []poll.Option{
		poll.WithClock(c.Now),
		poll.WithSleeper(c.Sleep),
		poll.WithInterval(interval),
		poll.WithTimeout(timeout),
	}
}
