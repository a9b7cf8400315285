package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CleanseCache is the persisted cache entry for one cleansed address.
type CleanseCache struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	RawFingerprint string             `bson:"raw_fingerprint" json:"raw_fingerprint"`
	RawAddress     string             `bson:"raw_address" json:"raw_address"`
	Result         CleanseResult      `bson:"result" json:"result"`
	Confidence     float64            `bson:"confidence" json:"confidence"`
	TableRevision  string             `bson:"table_revision" json:"table_revision"`
	CreatedAt      time.Time          `bson:"created_at" json:"created_at"`
	LastAccessed   time.Time          `bson:"last_accessed" json:"last_accessed"`
	AccessCount    int                `bson:"access_count" json:"access_count"`
}

// NewCleanseCache builds an entry for one result under the current
// reference-table revision.
func NewCleanseCache(fingerprint string, result CleanseResult, tableRevision string) *CleanseCache {
	return &CleanseCache{
		RawFingerprint: fingerprint,
		RawAddress:     result.Raw,
		Result:         result,
		Confidence:     result.Confidence,
		TableRevision:  tableRevision,
		CreatedAt:      time.Now(),
		LastAccessed:   time.Now(),
		AccessCount:    1,
	}
}

// UpdateAccess refreshes the recency bookkeeping.
func (cc *CleanseCache) UpdateAccess() {
	cc.LastAccessed = time.Now()
	cc.AccessCount++
}

// IsExpired reports whether the entry has outlived its TTL.
func (cc *CleanseCache) IsExpired(ttl time.Duration) bool {
	return time.Since(cc.CreatedAt) > ttl
}

// IsCurrentRevision reports whether the entry was produced against the given
// reference-table revision.
func (cc *CleanseCache) IsCurrentRevision(revision string) bool {
	return cc.TableRevision == revision
}
