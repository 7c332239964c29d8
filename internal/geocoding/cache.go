package geocoding

import (
	"context"
	"fmt"
	"sync"

	"github.com/climawiki/weather-service/internal/domain"
	"github.com/climawiki/weather-service/internal/observability"
)

// CachedResolver wraps a PlaceResolver with an in-memory LRU cache.
// Geocoding results for a fixed query or position are stable, so repeat
// lookups (favorite lists, page reloads) skip the providers entirely.
type CachedResolver struct {
	inner   domain.PlaceResolver
	cache   *lruCache
	metrics *observability.Metrics
}

// NewCachedResolver creates a cache decorator around a resolver.
func NewCachedResolver(inner domain.PlaceResolver, maxEntries int, metrics *observability.Metrics) *CachedResolver {
	return &CachedResolver{
		inner:   inner,
		cache:   newLRUCache(maxEntries),
		metrics: metrics,
	}
}

func (c *CachedResolver) Resolve(ctx context.Context, query string) ([]domain.Place, error) {
	key := "q:" + query
	if cached, ok := c.cache.get(key); ok {
		c.metrics.GeocodeCache.WithLabelValues("search", "hit").Inc()
		return cached.places, nil
	}
	c.metrics.GeocodeCache.WithLabelValues("search", "miss").Inc()

	results, err := c.inner.Resolve(ctx, query)
	if err != nil {
		return results, err
	}
	// Only cache non-empty results so transient soft failures can be retried.
	if len(results) > 0 {
		c.cache.put(key, cacheValue{places: results})
	}
	return results, nil
}

func (c *CachedResolver) ReverseResolve(ctx context.Context, lat, lon float64) (*domain.Place, error) {
	key := fmt.Sprintf("rev:%.6f,%.6f", lat, lon)
	if cached, ok := c.cache.get(key); ok {
		c.metrics.GeocodeCache.WithLabelValues("reverse", "hit").Inc()
		return cached.place, nil
	}
	c.metrics.GeocodeCache.WithLabelValues("reverse", "miss").Inc()

	result, err := c.inner.ReverseResolve(ctx, lat, lon)
	if err != nil {
		return result, err
	}
	if result != nil {
		c.cache.put(key, cacheValue{place: result})
	}
	return result, nil
}

type cacheValue struct {
	places []domain.Place
	place  *domain.Place
}

// lruCache is a simple thread-safe LRU cache for geocoding results.
type lruCache struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[string]*entry
	head       *entry // most recently used
	tail       *entry // least recently used
}

type entry struct {
	key   string
	value cacheValue
	prev  *entry
	next  *entry
}

func newLRUCache(maxEntries int) *lruCache {
	return &lruCache{
		maxEntries: maxEntries,
		entries:    make(map[string]*entry),
	}
}

func (c *lruCache) get(key string) (cacheValue, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return cacheValue{}, false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *lruCache) put(key string, value cacheValue) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.value = value
		c.moveToFront(e)
		return
	}

	e := &entry{key: key, value: value}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

func (c *lruCache) moveToFront(e *entry) {
	if e == c.head {
		return
	}
	c.remove(e)
	c.addToFront(e)
}

func (c *lruCache) addToFront(e *entry) {
	e.next = c.head
	e.prev = nil
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *lruCache) remove(e *entry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
}

func (c *lruCache) evictTail() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	c.remove(c.tail)
}
