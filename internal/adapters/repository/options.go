package repository

// Option applies a configuration option to Open.
type Option func(*openOptions)

type openOptions struct {
	maxConns int32
}

// WithMaxConns caps the pool size. The probe reads one query at a time, so
// the default of 2 leaves room for a health ping.
func WithMaxConns(n int32) Option {
	return func(o *openOptions) {
		if n > 0 {
			o.maxConns = n
		}
	}
}
