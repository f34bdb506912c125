// Package ttlcache memoizes an expensive per-key lookup for a fixed lifetime.
//
// A Cache is built around a single Fetcher supplied at construction. Concurrent
// misses for the same key share one fetch; failed fetches are never stored. When
// MaxEntries is set the least recently used entry is evicted to make room.
package ttlcache

import (
	"container/list"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// DefaultTTL is used when Options.TTL is not positive.
const DefaultTTL = 30 * time.Minute

// Fetcher loads the value for key on a cache miss.
type Fetcher[K comparable, V any] interface {
	Fetch(ctx context.Context, key K) (V, error)
}

// FetchFunc adapts a plain function to Fetcher.
type FetchFunc[K comparable, V any] func(ctx context.Context, key K) (V, error)

// Fetch implements Fetcher.
func (f FetchFunc[K, V]) Fetch(ctx context.Context, key K) (V, error) { return f(ctx, key) }

// Unit is the only key of a single-slot cache, e.g. Cache[Unit, []Channel].
type Unit struct{}

// Options configures a Cache.
type Options struct {
	// Name labels metrics and log lines.
	Name string
	// TTL is measured from the moment a fetch completes successfully.
	TTL time.Duration
	// MaxEntries bounds the number of stored entries; 0 means unbounded.
	MaxEntries int
	// FetchTimeout bounds a single fetch; 0 means the fetch runs until the fetcher returns.
	FetchTimeout time.Duration
	Metrics      Metrics
	Logger       *logrus.Logger
	// Clock returns the current time; defaults to time.Now.
	Clock func() time.Time
}

type entry[K comparable, V any] struct {
	key       K
	value     V
	expiresAt time.Time
}

// Cache is a TTL cache safe for concurrent use.
type Cache[K comparable, V any] struct {
	name         string
	ttl          time.Duration
	maxEntries   int
	fetchTimeout time.Duration
	fetcher      Fetcher[K, V]
	metrics      Metrics
	logger       *logrus.Logger
	now          func() time.Time

	mu      sync.Mutex
	entries map[K]*list.Element
	// order holds *entry values, most recently used at the front.
	order *list.List

	group singleflight.Group
}

// New creates a cache that loads misses through fetcher.
func New[K comparable, V any](fetcher Fetcher[K, V], opts Options) *Cache[K, V] {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	maxEntries := opts.MaxEntries
	if maxEntries < 0 {
		maxEntries = 0
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = NoopMetrics{}
	}
	now := opts.Clock
	if now == nil {
		now = time.Now
	}
	return &Cache[K, V]{
		name:         opts.Name,
		ttl:          ttl,
		maxEntries:   maxEntries,
		fetchTimeout: opts.FetchTimeout,
		fetcher:      fetcher,
		metrics:      metrics,
		logger:       opts.Logger,
		now:          now,
		entries:      make(map[K]*list.Element),
		order:        list.New(),
	}
}

// Get returns the live value for key, fetching it on a miss or after expiry.
//
// Callers that miss while a fetch for the same key is in flight wait for that
// fetch and receive its value or error. The fetch itself is detached from the
// caller's cancellation so one impatient caller cannot fail the others; ctx only
// bounds how long this caller waits.
func (c *Cache[K, V]) Get(ctx context.Context, key K) (V, error) {
	if v, ok := c.lookup(key); ok {
		c.metrics.Hit(c.name)
		return v, nil
	}
	c.metrics.Miss(c.name)

	ch := c.group.DoChan(flightKey(key), func() (any, error) {
		// Another flight may have stored the value after our lookup.
		if v, ok := c.lookup(key); ok {
			return v, nil
		}
		return c.fetch(ctx, key)
	})

	var zero V
	select {
	case res := <-ch:
		if res.Shared {
			c.metrics.Coalesced(c.name)
		}
		if res.Err != nil {
			return zero, res.Err
		}
		v, _ := res.Val.(V)
		return v, nil
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

func (c *Cache[K, V]) fetch(ctx context.Context, key K) (any, error) {
	fctx := context.WithoutCancel(ctx)
	if c.fetchTimeout > 0 {
		var cancel context.CancelFunc
		fctx, cancel = context.WithTimeout(fctx, c.fetchTimeout)
		defer cancel()
	}

	v, err := c.fetcher.Fetch(fctx, key)
	if err != nil {
		c.metrics.FetchError(c.name)
		if c.logger != nil {
			c.logger.WithFields(logrus.Fields{"cache": c.name, "key": key}).WithError(err).Debug("ttlcache: fetch failed")
		}
		return nil, err
	}
	c.store(key, v)
	return v, nil
}

// lookup returns a live entry and marks it most recently used. An expired entry
// is dropped so it no longer counts against MaxEntries.
func (c *Cache[K, V]) lookup(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	el, ok := c.entries[key]
	if !ok {
		return zero, false
	}
	ent := el.Value.(*entry[K, V])
	if !c.now().Before(ent.expiresAt) {
		c.order.Remove(el)
		delete(c.entries, key)
		c.metrics.Expire(c.name)
		return zero, false
	}
	c.order.MoveToFront(el)
	return ent.value, true
}

func (c *Cache[K, V]) store(key K, v V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ent := &entry[K, V]{key: key, value: v, expiresAt: c.now().Add(c.ttl)}
	if el, ok := c.entries[key]; ok {
		el.Value = ent
		c.order.MoveToFront(el)
		return
	}
	if c.maxEntries > 0 && c.order.Len() >= c.maxEntries {
		c.evictOldest()
	}
	c.entries[key] = c.order.PushFront(ent)
}

// evictOldest removes the least recently used entry. Caller holds c.mu.
func (c *Cache[K, V]) evictOldest() {
	el := c.order.Back()
	if el == nil {
		return
	}
	ent := c.order.Remove(el).(*entry[K, V])
	delete(c.entries, ent.key)
	c.metrics.Eviction(c.name)
	if c.logger != nil {
		c.logger.WithFields(logrus.Fields{"cache": c.name, "key": ent.key}).Debug("ttlcache: evicted least recently used entry")
	}
}

// Invalidate drops key so the next Get fetches again. A fetch already in
// flight for key is not interrupted.
func (c *Cache[K, V]) Invalidate(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.entries[key]; ok {
		c.order.Remove(el)
		delete(c.entries, key)
	}
}

// Len reports the number of stored entries, including expired ones not yet observed.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// flightKey renders key for singleflight. The Go-syntax form is distinct for
// distinct values of the string, integer and struct key types used with this cache.
func flightKey[K comparable](key K) string {
	return fmt.Sprintf("%#v", key)
}
