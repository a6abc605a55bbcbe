package loader

import (
	"context"
	"fmt"
	"log/slog"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/101x4/LFUCache/core/cache"
	"github.com/101x4/LFUCache/core/sf"
)

// SourceFunc fetches the value for a key from the source of record. It is
// called on cache misses only.
type SourceFunc[V any] func(ctx context.Context, key string) (V, error)

// Loader reads through a cache: hits are served from it, misses are fetched
// via the source and stored. Concurrent misses for the same key collapse
// into a single source call.
type Loader[V any] struct {
	name    string
	cache   cache.Cache[string, V]
	source  SourceFunc[V]
	flight  *sf.Singleflight[V]
	log     *slog.Logger
	metrics Metrics
}

// Options carries the optional knobs of a loader. Zero values are replaced
// by defaults in [New].
type Options struct {
	// Name labels log records and metrics. Defaults to "loader-<id>".
	Name string
	// Logger receives debug-level load activity. Defaults to slog.Default().
	Logger *slog.Logger
	// Metrics receives instrumentation callbacks. Defaults to [NopMetrics].
	Metrics Metrics
}

// Option mutates Options.
type Option func(*Options)

// WithName sets the loader name used in logs and metric labels.
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

// New creates a loader that serves reads from c and falls back to source on
// misses.
func New[V any](c cache.Cache[string, V], source SourceFunc[V], opts ...Option) *Loader[V] {
	var options Options
	for _, opt := range opts {
		opt(&options)
	}
	if options.Name == "" {
		options.Name = fmt.Sprintf("loader-%s", gonanoid.Must(6))
	}
	if options.Logger == nil {
		options.Logger = slog.Default()
	}
	if options.Metrics == nil {
		options.Metrics = NopMetrics()
	}

	return &Loader[V]{
		name:    options.Name,
		cache:   c,
		source:  source,
		flight:  sf.New[V](),
		log:     options.Logger.With(slog.String("loader", options.Name)),
		metrics: options.Metrics,
	}
}

// Get returns the value for key, fetching and caching it on a miss. A fetch
// already in flight for the key is joined rather than repeated; every joined
// caller receives its result. Source errors are returned to all joined
// callers and nothing is cached, so a later Get retries the source.
//
// The context is passed to the source by the caller that starts the fetch;
// callers that join an in-flight fetch share its outcome.
func (l *Loader[V]) Get(ctx context.Context, key string) (V, error) {
	if v, ok := l.cache.Get(key); ok {
		return v, nil
	}

	timer := l.metrics.LoadDuration(l.name)
	v, shared, err := l.flight.Do(key, func() (V, error) {
		value, err := l.source(ctx, key)
		if err != nil {
			var zero V
			return zero, err
		}
		l.cache.Put(key, value)
		return value, nil
	})
	timer.ObserveDuration()

	if shared {
		l.metrics.LoadShared(l.name)
	}
	if err != nil {
		l.metrics.LoadError(l.name)
		l.log.Debug("load failed",
			slog.String("key", key),
			slog.Any("error", err),
		)
		var zero V
		return zero, fmt.Errorf("load %q: %w", key, err)
	}

	return v, nil
}
