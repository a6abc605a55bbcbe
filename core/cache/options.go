package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Options carries the optional knobs of a cache instance. Zero values are
// replaced by defaults in [New].
type Options struct {
	// Name labels log records and metrics emitted by this instance.
	// Defaults to a generated "lfu-<id>" name.
	Name string

	// Logger receives debug-level cache activity. Defaults to slog.Default().
	Logger *slog.Logger

	// Metrics receives instrumentation callbacks. Defaults to [NopMetrics].
	Metrics Metrics

	// Context, when it ends, stops the background reaper just like Close.
	// Defaults to context.Background().
	Context context.Context

	// Clock is the time source used for idle-time bookkeeping. Defaults to
	// time.Now. Override it in tests to control expiry deterministically.
	Clock func() time.Time
}

// Option mutates Options.
type Option func(*Options)

// WithName sets the instance name used in logs and metric labels.
func WithName(name string) Option {
	return func(o *Options) { o.Name = name }
}

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(o *Options) { o.Logger = log }
}

// WithMetrics sets the metrics implementation.
func WithMetrics(m Metrics) Option {
	return func(o *Options) { o.Metrics = m }
}

// WithContext binds the reaper lifetime to ctx.
func WithContext(ctx context.Context) Option {
	return func(o *Options) { o.Context = ctx }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(o *Options) { o.Clock = now }
}

func newOptions(opts ...Option) Options {
	var options Options
	for _, opt := range opts {
		opt(&options)
	}
	if options.Name == "" {
		options.Name = fmt.Sprintf("lfu-%s", gonanoid.Must(6))
	}
	if options.Logger == nil {
		options.Logger = slog.Default()
	}
	if options.Metrics == nil {
		options.Metrics = NopMetrics()
	}
	if options.Context == nil {
		options.Context = context.Background()
	}
	if options.Clock == nil {
		options.Clock = time.Now
	}
	return options
}
