package service

import (
	"log/slog"

	"github.com/benbjohnson/clock"
)

type options struct {
	clock               clock.Clock
	logger              *slog.Logger
	locks               *IdentityLocks
	singleUseChallenges bool
}

// Option configures a service
type Option func(*options)

// WithClock sets the time source, clock.New() by default
func WithClock(clk clock.Clock) Option {
	return func(o *options) { o.clock = clk }
}

// WithLogger sets the logger, slog.Default() by default
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithLocks shares a lock set between services so that operations on the
// same identity are serialized across them
func WithLocks(locks *IdentityLocks) Option {
	return func(o *options) { o.locks = locks }
}

// WithSingleUseChallenges clears the current challenge after a correct
// answer, so each fetched challenge can be credited at most once
func WithSingleUseChallenges(enabled bool) Option {
	return func(o *options) { o.singleUseChallenges = enabled }
}

func newOptions(opts []Option) options {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.clock == nil {
		o.clock = clock.New()
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.locks == nil {
		o.locks = NewIdentityLocks()
	}
	return o
}
