// Package cache implements a two-tier TTL cache: an in-process map backed by
// an optional durable Store. The tiers expire independently on their own
// timestamps; the durable TTL is deliberately longer so a restarted process
// warms its in-process tier from durable storage instead of refetching.
package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vietddude/taxocache/internal/core/domain"
	"github.com/vietddude/taxocache/internal/metrics"
)

const (
	DefaultTTL        = 10 * time.Minute
	DefaultDurableTTL = 24 * time.Hour
)

// Envelope is the persisted durable form of a cache entry.
type Envelope struct {
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
}

// Options configures a TieredCache.
type Options struct {
	TTL        time.Duration // in-process tier, DefaultTTL when zero
	DurableTTL time.Duration // durable tier, DefaultDurableTTL when zero
	Store      Store         // nil disables the durable tier
	Logger     *slog.Logger
}

type entry[T any] struct {
	value     T
	createdAt time.Time
	ttl       time.Duration
}

// TieredCache is a generic key/value cache with lazy TTL expiration.
// Entries are evicted on the access that observes them expired; there is no
// background sweep. Safe for concurrent use.
type TieredCache[T any] struct {
	mu      sync.RWMutex
	entries map[string]entry[T]

	hits   atomic.Int64
	misses atomic.Int64

	ttl        time.Duration
	durableTTL time.Duration
	store      Store
	log        *slog.Logger

	now func() time.Time // overridable in tests
}

// New creates a TieredCache with the given options.
func New[T any](opts Options) *TieredCache[T] {
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.DurableTTL <= 0 {
		opts.DurableTTL = DefaultDurableTTL
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	return &TieredCache[T]{
		entries:    make(map[string]entry[T]),
		ttl:        opts.TTL,
		durableTTL: opts.DurableTTL,
		store:      opts.Store,
		log:        opts.Logger,
		now:        time.Now,
	}
}

// Get returns the live value for key. A live in-process entry counts a hit.
// Otherwise the stale entry (if any) is evicted, a miss is counted, and the
// durable tier is consulted: a durable value within its own TTL repopulates
// the in-process tier with the in-process TTL and counts a hit; anything
// else clears the durable key and reports absent.
func (c *TieredCache[T]) Get(ctx context.Context, key string) (T, bool) {
	var zero T

	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if ok && c.live(e) {
		c.hits.Add(1)
		metrics.CacheHits.WithLabelValues("memory").Inc()
		return e.value, true
	}

	if ok {
		c.evictStale(key)
	}

	c.misses.Add(1)
	metrics.CacheMisses.Inc()

	value, found := c.loadDurable(ctx, key)
	if !found {
		return zero, false
	}

	// Repopulation always resets the in-process timer to the in-process TTL;
	// the durable timestamp never leaks into this tier.
	c.mu.Lock()
	c.entries[key] = entry[T]{value: value, createdAt: c.now(), ttl: c.ttl}
	c.mu.Unlock()

	c.hits.Add(1)
	metrics.CacheHits.WithLabelValues("durable").Inc()
	return value, true
}

// Set writes the in-process entry and persists it to the durable tier with
// its own timestamp. ttl <= 0 selects the cache default. A durable write
// failure never fails the set.
func (c *TieredCache[T]) Set(ctx context.Context, key string, value T, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.ttl
	}

	c.mu.Lock()
	c.entries[key] = entry[T]{value: value, createdAt: c.now(), ttl: ttl}
	c.mu.Unlock()

	if c.store == nil {
		return
	}

	data, err := json.Marshal(value)
	if err != nil {
		c.log.Warn("Failed to encode cache value for durable tier", "key", key, "error", err)
		return
	}
	blob, err := json.Marshal(Envelope{Data: data, Timestamp: c.now()})
	if err != nil {
		c.log.Warn("Failed to encode cache envelope", "key", key, "error", err)
		return
	}
	if err := c.store.Save(ctx, key, blob); err != nil {
		c.log.Warn("Durable store save failed", "key", key, "error", err)
		metrics.DurableStoreErrors.WithLabelValues("save").Inc()
	}
}

// Invalidate removes key from both tiers. Always succeeds, even when the
// durable store is unavailable.
func (c *TieredCache[T]) Invalidate(ctx context.Context, key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()

	c.clearDurable(ctx, key)
}

// Clear removes every in-process entry and clears the same keys from the
// durable store.
func (c *TieredCache[T]) Clear(ctx context.Context) {
	c.mu.Lock()
	keys := make([]string, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	c.entries = make(map[string]entry[T])
	c.mu.Unlock()

	for _, k := range keys {
		c.clearDurable(ctx, k)
	}
}

// Stats returns a snapshot of the access counters.
func (c *TieredCache[T]) Stats() domain.CacheStats {
	return domain.CacheStats{
		Hits:   c.hits.Load(),
		Misses: c.misses.Load(),
	}
}

func (c *TieredCache[T]) live(e entry[T]) bool {
	return c.now().Sub(e.createdAt) < e.ttl
}

// evictStale removes key only if the entry there is still expired, so a
// concurrent Set between the read and this eviction is not lost.
func (c *TieredCache[T]) evictStale(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok && !c.live(e) {
		delete(c.entries, key)
	}
}

func (c *TieredCache[T]) loadDurable(ctx context.Context, key string) (T, bool) {
	var zero T
	if c.store == nil {
		return zero, false
	}

	blob, found, err := c.store.Load(ctx, key)
	if err != nil {
		c.log.Warn("Durable store load failed", "key", key, "error", err)
		metrics.DurableStoreErrors.WithLabelValues("load").Inc()
		return zero, false
	}
	if !found {
		return zero, false
	}

	var env Envelope
	if err := json.Unmarshal(blob, &env); err != nil {
		c.log.Warn("Corrupt durable cache envelope, clearing", "key", key, "error", err)
		c.clearDurable(ctx, key)
		return zero, false
	}

	// The durable tier expires on its own stamp, independent of the
	// in-process TTL.
	if c.now().Sub(env.Timestamp) >= c.durableTTL {
		c.clearDurable(ctx, key)
		return zero, false
	}

	var value T
	if err := json.Unmarshal(env.Data, &value); err != nil {
		c.log.Warn("Corrupt durable cache value, clearing", "key", key, "error", err)
		c.clearDurable(ctx, key)
		return zero, false
	}

	return value, true
}

func (c *TieredCache[T]) clearDurable(ctx context.Context, key string) {
	if c.store == nil {
		return
	}
	if err := c.store.Clear(ctx, key); err != nil {
		c.log.Debug("Durable store clear failed", "key", key, "error", err)
		metrics.DurableStoreErrors.WithLabelValues("clear").Inc()
	}
}
