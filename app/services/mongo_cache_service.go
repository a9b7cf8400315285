package services

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/address-cleanser/app/models"
)

// MongoCacheService is the persistent cache: an in-memory LRU in front of a
// MongoDB collection. Keys are address fingerprints produced by the pipeline.
type MongoCacheService struct {
	db            *mongo.Database
	collection    *mongo.Collection
	l1Cache       *lru.Cache[string, *models.CleanseResult]
	logger        *zap.Logger
	tableRevision string

	totalHits atomic.Int64
	totalMiss atomic.Int64
	l1Hits    atomic.Int64
	l1Miss    atomic.Int64
	mongoHits atomic.Int64
	mongoMiss atomic.Int64
}

func NewMongoCacheService(db *mongo.Database, l1Size int, tableRevision string, logger *zap.Logger) (*MongoCacheService, error) {
	l1Cache, err := lru.New[string, *models.CleanseResult](l1Size)
	if err != nil {
		return nil, fmt.Errorf("create lru cache: %w", err)
	}

	collection := db.Collection("cleanse_cache")

	indexModels := []mongo.IndexModel{
		{
			Keys:    bson.D{bson.E{Key: "raw_fingerprint", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{bson.E{Key: "table_revision", Value: 1}},
		},
		{
			Keys: bson.D{bson.E{Key: "created_at", Value: 1}},
		},
		{
			Keys: bson.D{bson.E{Key: "last_accessed", Value: 1}},
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := collection.Indexes().CreateMany(ctx, indexModels); err != nil {
		logger.Warn("cannot create cleanse_cache indexes", zap.Error(err))
	}

	return &MongoCacheService{
		db:            db,
		collection:    collection,
		l1Cache:       l1Cache,
		logger:        logger,
		tableRevision: tableRevision,
	}, nil
}

// Get checks the L1 LRU first, then MongoDB. A MongoDB hit is promoted into
// L1 for the next lookup.
func (mcs *MongoCacheService) Get(ctx context.Context, key string) (*models.CleanseResult, bool, error) {
	if result, found := mcs.l1Cache.Get(key); found {
		mcs.l1Hits.Add(1)
		mcs.totalHits.Add(1)
		mcs.logger.Debug("l1 cache hit", zap.String("key", key))
		return result, true, nil
	}
	mcs.l1Miss.Add(1)

	var entry models.CleanseCache
	err := mcs.collection.FindOne(ctx, bson.M{"raw_fingerprint": key}).Decode(&entry)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			mcs.mongoMiss.Add(1)
			mcs.totalMiss.Add(1)
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("query mongo cache: %w", err)
	}

	mcs.mongoHits.Add(1)
	mcs.totalHits.Add(1)

	go mcs.updateAccessStats(context.Background(), entry.ID)

	mcs.l1Cache.Add(key, &entry.Result)
	mcs.logger.Debug("mongo cache hit", zap.String("key", key))
	return &entry.Result, true, nil
}

func (mcs *MongoCacheService) Set(ctx context.Context, key string, result *models.CleanseResult) error {
	mcs.l1Cache.Add(key, result)

	entry := models.NewCleanseCache(key, *result, mcs.tableRevision)

	opts := options.Replace().SetUpsert(true)
	if _, err := mcs.collection.ReplaceOne(ctx, bson.M{"raw_fingerprint": key}, entry, opts); err != nil {
		mcs.logger.Error("mongo cache write failed", zap.Error(err), zap.String("key", key))
		return fmt.Errorf("write mongo cache: %w", err)
	}
	return nil
}

func (mcs *MongoCacheService) Delete(ctx context.Context, key string) error {
	mcs.l1Cache.Remove(key)

	if _, err := mcs.collection.DeleteOne(ctx, bson.M{"raw_fingerprint": key}); err != nil {
		return fmt.Errorf("delete from mongo cache: %w", err)
	}
	return nil
}

func (mcs *MongoCacheService) Clear(ctx context.Context) error {
	mcs.l1Cache.Purge()

	if _, err := mcs.collection.DeleteMany(ctx, bson.M{}); err != nil {
		return fmt.Errorf("clear mongo cache: %w", err)
	}

	mcs.totalHits.Store(0)
	mcs.totalMiss.Store(0)
	mcs.l1Hits.Store(0)
	mcs.l1Miss.Store(0)
	mcs.mongoHits.Store(0)
	mcs.mongoMiss.Store(0)
	return nil
}

// InvalidateByTableRevision purges L1 wholesale and deletes every persisted
// entry whose revision differs from the given current one.
func (mcs *MongoCacheService) InvalidateByTableRevision(ctx context.Context, revision string) error {
	mcs.l1Cache.Purge()

	filter := bson.M{"table_revision": bson.M{"$ne": revision}}
	result, err := mcs.collection.DeleteMany(ctx, filter)
	if err != nil {
		return fmt.Errorf("invalidate mongo cache by revision: %w", err)
	}

	mcs.logger.Info("cache invalidated",
		zap.String("table_revision", revision),
		zap.Int64("deleted_count", result.DeletedCount))
	return nil
}

func (mcs *MongoCacheService) GetStats(ctx context.Context) (*CacheStats, error) {
	mongoCount, err := mcs.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("count mongo cache documents: %w", err)
	}

	hits, misses := mcs.totalHits.Load(), mcs.totalMiss.Load()
	hitRate := float64(0)
	if total := hits + misses; total > 0 {
		hitRate = float64(hits) / float64(total)
	}

	return &CacheStats{
		HitRate:    hitRate,
		TotalHits:  hits,
		TotalMiss:  misses,
		TotalItems: mongoCount,
	}, nil
}

func (mcs *MongoCacheService) Exists(ctx context.Context, key string) (bool, error) {
	if mcs.l1Cache.Contains(key) {
		return true, nil
	}

	count, err := mcs.collection.CountDocuments(ctx, bson.M{"raw_fingerprint": key})
	if err != nil {
		return false, fmt.Errorf("check mongo cache: %w", err)
	}
	return count > 0, nil
}

// GetTTL always returns 0: the persistent cache has no entry lifetime, it is
// bounded by revision invalidation instead.
func (mcs *MongoCacheService) GetTTL(ctx context.Context, key string) (time.Duration, error) {
	return 0, nil
}

// Close is a no-op; the MongoDB connection belongs to the caller.
func (mcs *MongoCacheService) Close() error {
	return nil
}

func (mcs *MongoCacheService) updateAccessStats(ctx context.Context, id primitive.ObjectID) {
	update := bson.M{
		"$set": bson.M{"last_accessed": time.Now()},
		"$inc": bson.M{"access_count": 1},
	}
	if _, err := mcs.collection.UpdateOne(ctx, bson.M{"_id": id}, update); err != nil {
		mcs.logger.Warn("cannot update access stats", zap.Error(err))
	}
}

// GetL1Stats exposes the layered counters for the admin stats endpoint.
func (mcs *MongoCacheService) GetL1Stats() map[string]interface{} {
	return map[string]interface{}{
		"l1_size":    mcs.l1Cache.Len(),
		"l1_hits":    mcs.l1Hits.Load(),
		"l1_miss":    mcs.l1Miss.Load(),
		"mongo_hits": mcs.mongoHits.Load(),
		"mongo_miss": mcs.mongoMiss.Load(),
		"total_hits": mcs.totalHits.Load(),
		"total_miss": mcs.totalMiss.Load(),
	}
}

// WarmUp preloads the most-accessed persisted entries into L1.
func (mcs *MongoCacheService) WarmUp(ctx context.Context, limit int) error {
	opts := options.Find().
		SetSort(bson.D{bson.E{Key: "access_count", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := mcs.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return fmt.Errorf("warm up cache: %w", err)
	}
	defer cursor.Close(ctx)

	count := 0
	for cursor.Next(ctx) {
		var entry models.CleanseCache
		if err := cursor.Decode(&entry); err != nil {
			mcs.logger.Warn("cannot decode cache entry during warm up", zap.Error(err))
			continue
		}
		mcs.l1Cache.Add(entry.RawFingerprint, &entry.Result)
		count++
	}

	mcs.logger.Info("cache warm up finished",
		zap.Int("loaded_items", count),
		zap.Int("l1_size", mcs.l1Cache.Len()))
	return nil
}
