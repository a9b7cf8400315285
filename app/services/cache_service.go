package services

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/address-cleanser/app/models"
)

// CacheService is the in-memory TTL cache. It backs single-process
// deployments and tests; production setups layer Redis and MongoDB instead.
type CacheService struct {
	cache      map[string]*models.CleanseResult
	timestamps map[string]time.Time
	revisions  map[string]string
	mu         sync.RWMutex
	ttl        time.Duration
	revision   string

	hits   atomic.Int64
	misses atomic.Int64
}

// NewCacheService builds an in-memory cache. revision stamps new entries so
// InvalidateByTableRevision can tell stale ones apart.
func NewCacheService(ttl time.Duration, revision string) *CacheService {
	return &CacheService{
		cache:      make(map[string]*models.CleanseResult),
		timestamps: make(map[string]time.Time),
		revisions:  make(map[string]string),
		ttl:        ttl,
		revision:   revision,
	}
}

func (cs *CacheService) Get(ctx context.Context, key string) (*models.CleanseResult, bool, error) {
	cs.mu.RLock()
	result, exists := cs.cache[key]
	expired := exists && cs.isExpired(key)
	cs.mu.RUnlock()

	if !exists || expired {
		if expired {
			go cs.deleteExpired(key)
		}
		cs.misses.Add(1)
		return nil, false, nil
	}
	cs.hits.Add(1)
	return result, true, nil
}

func (cs *CacheService) Set(ctx context.Context, key string, result *models.CleanseResult) error {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	cs.cache[key] = result
	cs.timestamps[key] = time.Now()
	cs.revisions[key] = cs.revision
	return nil
}

func (cs *CacheService) Delete(ctx context.Context, key string) error {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	cs.remove(key)
	return nil
}

func (cs *CacheService) Clear(ctx context.Context) error {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	cs.cache = make(map[string]*models.CleanseResult)
	cs.timestamps = make(map[string]time.Time)
	cs.revisions = make(map[string]string)
	return nil
}

// InvalidateByTableRevision drops every entry not stamped with the current
// revision.
func (cs *CacheService) InvalidateByTableRevision(ctx context.Context, revision string) error {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	for key, rev := range cs.revisions {
		if rev != revision {
			cs.remove(key)
		}
	}
	return nil
}

func (cs *CacheService) GetStats(ctx context.Context) (*CacheStats, error) {
	cs.mu.RLock()
	items := int64(len(cs.cache))
	cs.mu.RUnlock()

	hits, misses := cs.hits.Load(), cs.misses.Load()
	stats := &CacheStats{TotalHits: hits, TotalMiss: misses, TotalItems: items}
	if total := hits + misses; total > 0 {
		stats.HitRate = float64(hits) / float64(total)
	}
	return stats, nil
}

func (cs *CacheService) Exists(ctx context.Context, key string) (bool, error) {
	cs.mu.RLock()
	defer cs.mu.RUnlock()

	_, exists := cs.cache[key]
	return exists && !cs.isExpired(key), nil
}

func (cs *CacheService) GetTTL(ctx context.Context, key string) (time.Duration, error) {
	cs.mu.RLock()
	defer cs.mu.RUnlock()

	timestamp, exists := cs.timestamps[key]
	if !exists {
		return 0, nil
	}
	remaining := cs.ttl - time.Since(timestamp)
	if remaining < 0 {
		return 0, nil
	}
	return remaining, nil
}

// CleanupExpired sweeps expired entries.
func (cs *CacheService) CleanupExpired() {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	for key := range cs.cache {
		if cs.isExpired(key) {
			cs.remove(key)
		}
	}
}

// StartCleanupWorker sweeps on an interval for the lifetime of the process.
func (cs *CacheService) StartCleanupWorker(interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		for range ticker.C {
			cs.CleanupExpired()
		}
	}()
}

func (cs *CacheService) Close() error {
	return nil
}

// remove expects cs.mu held for writing.
func (cs *CacheService) remove(key string) {
	delete(cs.cache, key)
	delete(cs.timestamps, key)
	delete(cs.revisions, key)
}

// isExpired expects cs.mu held.
func (cs *CacheService) isExpired(key string) bool {
	timestamp, exists := cs.timestamps[key]
	if !exists {
		return true
	}
	return time.Since(timestamp) > cs.ttl
}

func (cs *CacheService) deleteExpired(key string) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.remove(key)
}
