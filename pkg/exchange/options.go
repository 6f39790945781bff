package exchange

import (
	"github.com/rs/zerolog"

	"ledger/pkg/core"
)

// Option configures a client at construction time.
type Option func(*Options)

type Options struct {
	Logger zerolog.Logger
	// Clock supplies signing timestamps.
	Clock core.Clock
	// Nonce overrides the nonce source of exchanges that need one.
	Nonce func() int64
}

func WithLogger(l zerolog.Logger) Option {
	return func(o *Options) {
		o.Logger = l
	}
}

func WithClock(clock core.Clock) Option {
	return func(o *Options) {
		o.Clock = clock
	}
}

func WithNonce(next func() int64) Option {
	return func(o *Options) {
		o.Nonce = next
	}
}

// ApplyOptions returns the options with defaults filled in.
func ApplyOptions(opts ...Option) *Options {
	o := &Options{
		Logger: zerolog.Nop(),
		Clock:  core.SystemClock,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}
