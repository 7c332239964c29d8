package store

import (
	"sync"

	"github.com/climawiki/weather-service/internal/domain"
)

// SnapshotCache holds the most recent refreshed weather per location ID.
// It is fed by the scheduler, not by the pipeline itself; on-demand
// lookups always hit the providers fresh.
type SnapshotCache struct {
	mu        sync.RWMutex
	snapshots map[string]domain.NormalizedWeather
}

// NewSnapshotCache creates an empty snapshot cache.
func NewSnapshotCache() *SnapshotCache {
	return &SnapshotCache{
		snapshots: make(map[string]domain.NormalizedWeather),
	}
}

// Put records the latest snapshot for a location, replacing any previous one.
func (c *SnapshotCache) Put(id string, weather domain.NormalizedWeather) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snapshots[id] = weather
}

// Latest returns the last recorded snapshot for a location.
func (c *SnapshotCache) Latest(id string) (domain.NormalizedWeather, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	snapshot, ok := c.snapshots[id]
	if !ok {
		return domain.NormalizedWeather{}, ErrNotFound
	}
	return snapshot, nil
}

// Delete drops the snapshot for a location, if any.
func (c *SnapshotCache) Delete(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.snapshots, id)
}
