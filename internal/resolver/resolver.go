// Package resolver resolves specialty names to URL slugs and back, backed by
// the tiered cache and a retry-governed remote fetch.
package resolver

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/vietddude/taxocache/internal/cache"
	"github.com/vietddude/taxocache/internal/core/domain"
	"github.com/vietddude/taxocache/internal/metrics"
	"github.com/vietddude/taxocache/internal/retry"
	"github.com/vietddude/taxocache/internal/slug"
)

// TaxonomyKey is the cache key for the specialty taxonomy mapping.
const TaxonomyKey = "specialty_taxonomy"

// State is the resolver's fetch lifecycle state for the taxonomy key.
type State string

const (
	StateIdle     State = "idle"
	StateFetching State = "fetching"
	StateReady    State = "ready"
	StateFailed   State = "failed"
)

// Fetcher retrieves the raw taxonomy from the remote source.
type Fetcher interface {
	FetchTaxonomy(ctx context.Context) (*domain.TaxonomySnapshot, error)
}

// Options configures a Resolver.
type Options struct {
	Retry  retry.Config // zero value selects retry.DefaultConfig
	Logger *slog.Logger
}

// Resolver composes the slug codec, the tiered cache, and the retry executor.
// Concurrent EnsureLoaded calls for the taxonomy key collapse into exactly
// one in-flight fetch; every waiter observes the shared result.
type Resolver struct {
	cache    *cache.TieredCache[*domain.TaxonomyMapping]
	fetcher  Fetcher
	retryCfg retry.Config
	log      *slog.Logger

	group singleflight.Group

	mu      sync.Mutex
	state   State
	lastErr error
}

// New creates a Resolver over an explicitly constructed cache instance.
func New(c *cache.TieredCache[*domain.TaxonomyMapping], fetcher Fetcher, opts Options) *Resolver {
	cfg := opts.Retry
	if cfg.MaxAttempts == 0 && cfg.BaseDelay == 0 {
		cfg = retry.DefaultConfig
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	return &Resolver{
		cache:    c,
		fetcher:  fetcher,
		retryCfg: cfg,
		log:      log,
		state:    StateIdle,
	}
}

// State returns the current fetch state and the last fetch error, if any.
// A Failed state never gates the next EnsureLoaded: failures are not cached.
func (r *Resolver) State() (State, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state, r.lastErr
}

// Stats returns the underlying cache counters.
func (r *Resolver) Stats() domain.CacheStats {
	return r.cache.Stats()
}

// ResolveSlug returns the canonical slug for a specialty name. When the
// taxonomy is not loaded it falls back to the codec and kicks off a
// background load, never blocking the caller on the remote fetch.
func (r *Resolver) ResolveSlug(ctx context.Context, name string) string {
	if m, ok := r.cache.Get(ctx, TaxonomyKey); ok {
		if s, found := m.Slug(name); found {
			return s
		}
	} else {
		r.refreshAsync()
	}

	metrics.ResolveFallbacks.WithLabelValues("slug").Inc()
	return slug.ToSlug(name)
}

// ResolveName is the inverse of ResolveSlug: slug to display name, with the
// same codec fallback and background load on a cold cache.
func (r *Resolver) ResolveName(ctx context.Context, s string) string {
	if m, ok := r.cache.Get(ctx, TaxonomyKey); ok {
		if name, found := m.Name(s); found {
			return name
		}
		if name, found := m.Name(slug.Normalize(s)); found {
			return name
		}
	} else {
		r.refreshAsync()
	}

	metrics.ResolveFallbacks.WithLabelValues("name").Inc()
	return slug.ToName(s)
}

// EnsureLoaded returns the taxonomy mapping, fetching and populating both
// cache tiers on a miss. A caller whose context ends while waiting abandons
// its wait without affecting the other waiters or the fetch itself, which
// runs to completion on its own retry budget.
func (r *Resolver) EnsureLoaded(ctx context.Context) (*domain.TaxonomyMapping, error) {
	if m, ok := r.cache.Get(ctx, TaxonomyKey); ok {
		return m, nil
	}

	ch := r.group.DoChan(TaxonomyKey, func() (interface{}, error) {
		return r.load()
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*domain.TaxonomyMapping), nil
	}
}

// Invalidate drops the taxonomy from both cache tiers. The next resolution
// fetches fresh.
func (r *Resolver) Invalidate(ctx context.Context) {
	r.cache.Invalidate(ctx, TaxonomyKey)
	r.setState(StateIdle, nil)
}

// refreshAsync starts a deduplicated background load. The singleflight
// result channel is buffered, so dropping it leaks nothing.
func (r *Resolver) refreshAsync() {
	r.group.DoChan(TaxonomyKey, func() (interface{}, error) {
		return r.load()
	})
}

// load performs one fetch-and-populate cycle. It runs detached from any
// single waiter's context so an abandoning caller cannot cancel the fetch
// for the others.
func (r *Resolver) load() (*domain.TaxonomyMapping, error) {
	ctx := context.Background()
	r.setState(StateFetching, nil)

	start := time.Now()
	snapshot, err := retry.Do(ctx, r.retryCfg, r.fetcher.FetchTaxonomy)
	metrics.FetchDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		ce := retry.Classified(err, "specialty taxonomy")
		metrics.FetchErrors.WithLabelValues(string(ce.Descriptor.Kind)).Inc()
		r.log.Warn("Taxonomy fetch failed", "kind", ce.Descriptor.Kind, "error", err)
		r.setState(StateFailed, ce)
		return nil, ce
	}

	mapping, err := BuildMapping(snapshot)
	if err != nil {
		d := retry.Describe(err)
		metrics.FetchErrors.WithLabelValues(string(d.Kind)).Inc()
		r.log.Warn("Taxonomy mapping build failed", "kind", d.Kind, "error", err)
		r.setState(StateFailed, err)
		return nil, err
	}

	r.cache.Set(ctx, TaxonomyKey, mapping, 0)
	r.setState(StateReady, nil)
	r.log.Info("Taxonomy loaded", "specialties", len(mapping.Names), "duration", time.Since(start))

	return mapping, nil
}

func (r *Resolver) setState(s State, err error) {
	r.mu.Lock()
	r.state = s
	r.lastErr = err
	r.mu.Unlock()
}
