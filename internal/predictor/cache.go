// Package predictor serves outcome probabilities from registered models,
// with in-memory caching keyed by model and outcome.
package predictor

import (
	"fmt"
	"sync"
	"time"

	cache "github.com/patrickmn/go-cache"

	"github.com/yourusername/edge-finder/internal/metrics"
)

// CacheKey identifies one cached probability
type CacheKey struct {
	ModelName string
	EventID   string
	MarketID  string
	Outcome   string
}

// String returns the string representation of the cache key
func (k CacheKey) String() string {
	return fmt.Sprintf("%s:%s:%s:%s", k.ModelName, k.EventID, k.MarketID, k.Outcome)
}

// PredictionCache provides in-memory caching for model probabilities
type PredictionCache struct {
	cache   *cache.Cache
	ttl     time.Duration
	maxSize int

	mu        sync.RWMutex
	hitCount  uint64
	missCount uint64
}

// NewPredictionCache creates a new prediction cache
func NewPredictionCache(ttl time.Duration, maxSize int) *PredictionCache {
	return &PredictionCache{
		cache:   cache.New(ttl, ttl*2),
		ttl:     ttl,
		maxSize: maxSize,
	}
}

// Get retrieves a cached probability; the second return reports presence
func (pc *PredictionCache) Get(key CacheKey) (float64, bool) {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	if value, found := pc.cache.Get(key.String()); found {
		if p, ok := value.(float64); ok {
			pc.hitCount++
			pc.updateMetricsLocked()
			return p, true
		}
	}

	pc.missCount++
	pc.updateMetricsLocked()
	return 0, false
}

// Set stores a probability in the cache
func (pc *PredictionCache) Set(key CacheKey, probability float64) {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	if pc.cache.ItemCount() >= pc.maxSize {
		pc.cache.DeleteExpired()
	}

	pc.cache.Set(key.String(), probability, pc.ttl)
}

// InvalidateModel removes all cached entries for a model, used after
// retraining or activation changes
func (pc *PredictionCache) InvalidateModel(modelName string) {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	prefix := modelName + ":"
	for k := range pc.cache.Items() {
		if len(k) > len(prefix) && k[:len(prefix)] == prefix {
			pc.cache.Delete(k)
		}
	}
}

// Clear flushes the entire cache
func (pc *PredictionCache) Clear() {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	pc.cache.Flush()
	pc.hitCount = 0
	pc.missCount = 0
}

// Stats returns cache statistics
func (pc *PredictionCache) Stats() (hits, misses uint64, ratio float64) {
	pc.mu.RLock()
	defer pc.mu.RUnlock()

	hits = pc.hitCount
	misses = pc.missCount
	total := hits + misses
	if total > 0 {
		ratio = float64(hits) / float64(total)
	}
	return
}

// ItemCount returns the number of items in the cache
func (pc *PredictionCache) ItemCount() int {
	return pc.cache.ItemCount()
}

// updateMetricsLocked pushes the hit ratio gauge; callers hold pc.mu
func (pc *PredictionCache) updateMetricsLocked() {
	total := pc.hitCount + pc.missCount
	if total > 0 {
		metrics.PredictionCacheHitRatio.Set(float64(pc.hitCount) / float64(total))
	}
}
