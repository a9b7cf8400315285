package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/address-cleanser/app/models"
)

// HybridCacheService layers Redis (fast, shared) over MongoDB (persistent).
// Reads fall through Redis to MongoDB; MongoDB hits are synced back up.
type HybridCacheService struct {
	redisCache *RedisCacheService
	mongoCache *MongoCacheService
	logger     *zap.Logger
}

func NewHybridCacheService(redisCache *RedisCacheService, mongoCache *MongoCacheService, logger *zap.Logger) *HybridCacheService {
	return &HybridCacheService{
		redisCache: redisCache,
		mongoCache: mongoCache,
		logger:     logger,
	}
}

func (hcs *HybridCacheService) Get(ctx context.Context, key string) (*models.CleanseResult, bool, error) {
	result, found, err := hcs.redisCache.Get(ctx, key)
	if err != nil {
		hcs.logger.Warn("redis cache error, falling back to mongo", zap.Error(err))
	} else if found {
		return result, true, nil
	}

	result, found, err = hcs.mongoCache.Get(ctx, key)
	if err != nil {
		return nil, false, err
	}
	if !found {
		return nil, false, nil
	}

	// Promote the MongoDB hit into Redis off the request path.
	go func() {
		bgCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := hcs.redisCache.Set(bgCtx, key, result); err != nil {
			hcs.logger.Warn("mongo->redis sync failed", zap.Error(err), zap.String("key", key))
		}
	}()

	return result, true, nil
}

func (hcs *HybridCacheService) Set(ctx context.Context, key string, result *models.CleanseResult) error {
	return hcs.both(func() error {
		return hcs.redisCache.Set(ctx, key, result)
	}, func() error {
		return hcs.mongoCache.Set(ctx, key, result)
	})
}

func (hcs *HybridCacheService) Delete(ctx context.Context, key string) error {
	return hcs.both(func() error {
		return hcs.redisCache.Delete(ctx, key)
	}, func() error {
		return hcs.mongoCache.Delete(ctx, key)
	})
}

func (hcs *HybridCacheService) Clear(ctx context.Context) error {
	err := hcs.both(func() error {
		return hcs.redisCache.Clear(ctx)
	}, func() error {
		return hcs.mongoCache.Clear(ctx)
	})
	if err == nil {
		hcs.logger.Info("hybrid cache cleared")
	}
	return err
}

func (hcs *HybridCacheService) InvalidateByTableRevision(ctx context.Context, revision string) error {
	err := hcs.both(func() error {
		return hcs.redisCache.InvalidateByTableRevision(ctx, revision)
	}, func() error {
		return hcs.mongoCache.InvalidateByTableRevision(ctx, revision)
	})
	if err == nil {
		hcs.logger.Info("hybrid cache invalidated", zap.String("table_revision", revision))
	}
	return err
}

func (hcs *HybridCacheService) GetStats(ctx context.Context) (*CacheStats, error) {
	redisStats, redisErr := hcs.redisCache.GetStats(ctx)
	mongoStats, mongoErr := hcs.mongoCache.GetStats(ctx)

	if redisErr != nil && mongoErr != nil {
		return nil, fmt.Errorf("both cache layers failed: %v, %v", redisErr, mongoErr)
	}

	combined := &CacheStats{}
	switch {
	case redisErr == nil && mongoErr == nil:
		combined.TotalHits = redisStats.TotalHits + mongoStats.TotalHits
		combined.TotalMiss = redisStats.TotalMiss + mongoStats.TotalMiss
		combined.TotalItems = redisStats.TotalItems + mongoStats.TotalItems
		if total := combined.TotalHits + combined.TotalMiss; total > 0 {
			combined.HitRate = float64(combined.TotalHits) / float64(total)
		}
	case redisErr == nil:
		*combined = *redisStats
	default:
		*combined = *mongoStats
	}
	return combined, nil
}

func (hcs *HybridCacheService) Exists(ctx context.Context, key string) (bool, error) {
	exists, err := hcs.redisCache.Exists(ctx, key)
	if err != nil {
		hcs.logger.Warn("redis exists check failed, falling back to mongo", zap.Error(err))
	} else if exists {
		return true, nil
	}
	return hcs.mongoCache.Exists(ctx, key)
}

func (hcs *HybridCacheService) GetTTL(ctx context.Context, key string) (time.Duration, error) {
	return hcs.redisCache.GetTTL(ctx, key)
}

func (hcs *HybridCacheService) Close() error {
	return hcs.both(hcs.redisCache.Close, hcs.mongoCache.Close)
}

// WarmUpFromMongoDB preloads the persistent layer's hottest entries.
func (hcs *HybridCacheService) WarmUpFromMongoDB(ctx context.Context, limit int) error {
	return hcs.mongoCache.WarmUp(ctx, limit)
}

// both runs the two layer operations in parallel and joins their errors.
func (hcs *HybridCacheService) both(redisOp, mongoOp func() error) error {
	errCh := make(chan error, 2)
	go func() { errCh <- redisOp() }()
	go func() { errCh <- mongoOp() }()

	var errs []error
	for i := 0; i < 2; i++ {
		if err := <-errCh; err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("cache layer errors: %v", errs)
	}
	return nil
}
