package services

import (
	"context"
	"time"

	"github.com/address-cleanser/app/models"
)

// CacheStats aggregates cache counters for the admin endpoints.
type CacheStats struct {
	HitRate    float64 `json:"hit_rate"`
	TotalHits  int64   `json:"total_hits"`
	TotalMiss  int64   `json:"total_miss"`
	TotalItems int64   `json:"total_items"`
}

// ICacheService stores cleanse results keyed by address fingerprint. All
// implementations must be safe for concurrent use.
type ICacheService interface {
	// Get returns the cached result for a fingerprint, if present.
	Get(ctx context.Context, key string) (*models.CleanseResult, bool, error)

	// Set stores one result.
	Set(ctx context.Context, key string, result *models.CleanseResult) error

	// Delete removes one entry.
	Delete(ctx context.Context, key string) error

	// Clear removes everything.
	Clear(ctx context.Context) error

	// InvalidateByTableRevision drops entries produced against a stale
	// reference-table revision.
	InvalidateByTableRevision(ctx context.Context, revision string) error

	// GetStats returns hit/miss counters.
	GetStats(ctx context.Context) (*CacheStats, error)

	// Exists reports whether the key is cached.
	Exists(ctx context.Context, key string) (bool, error)

	// GetTTL returns the remaining lifetime of a key.
	GetTTL(ctx context.Context, key string) (time.Duration, error)

	// Close releases backing connections, if any.
	Close() error
}
