package supabase

import "time"

// Option applies a configuration option to the Client.
type Option func(*Client)

// WithTimeout bounds every request made by the client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithRequestID tags every request with an X-Request-Id header.
func WithRequestID(id string) Option {
	return func(c *Client) {
		c.requestID = id
	}
}
