package services

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/address-cleanser/app/models"
	"github.com/address-cleanser/internal/reference"
	"github.com/address-cleanser/internal/search"
)

// AdminService owns the locality directory lifecycle and system-level stats:
// seeding reference data, invalidating caches on a table revision bump, and
// reporting database counts.
type AdminService struct {
	db        *mongo.Database
	directory *search.LocalityDirectory
	cache     ICacheService
	tables    *reference.Tables
	logger    *zap.Logger
}

// LocalityValidation is a dry-run check of a seed payload.
type LocalityValidation struct {
	Passed             bool     `json:"passed"`
	Warnings           []string `json:"warnings"`
	EstimatedBuildTime string   `json:"estimated_build_time"`
}

// SeedResult reports a completed seed run.
type SeedResult struct {
	UnitsProcessed   int   `json:"units_processed"`
	IndexesBuilt     int   `json:"indexes_built"`
	ProcessingTimeMs int64 `json:"processing_time_ms"`
}

// SystemStats is the admin-level system snapshot.
type SystemStats struct {
	TotalProcessed int64                  `json:"total_processed"`
	MemoryUsage    map[string]interface{} `json:"memory_usage"`
	DatabaseStats  DatabaseStats          `json:"database_stats"`
	TableRevision  string                 `json:"table_revision"`
}

// DatabaseStats counts the persisted collections.
type DatabaseStats struct {
	Localities   int64 `json:"localities"`
	CleanseCache int64 `json:"cleanse_cache"`
}

func NewAdminService(db *mongo.Database, directory *search.LocalityDirectory, cache ICacheService, tables *reference.Tables, logger *zap.Logger) *AdminService {
	return &AdminService{
		db:        db,
		directory: directory,
		cache:     cache,
		tables:    tables,
		logger:    logger,
	}
}

// ValidateLocalityData checks a seed payload without writing anything.
func (as *AdminService) ValidateLocalityData(data []models.Locality) (*LocalityValidation, error) {
	if len(data) == 0 {
		return &LocalityValidation{
			Passed:             false,
			Warnings:           []string{"no localities to validate"},
			EstimatedBuildTime: "0s",
		}, nil
	}

	warnings := make([]string, 0)
	seenIDs := make(map[string]bool)
	for i, loc := range data {
		if loc.LocalityID == "" {
			warnings = append(warnings, fmt.Sprintf("missing locality_id at index %d", i))
		} else if seenIDs[loc.LocalityID] {
			warnings = append(warnings, fmt.Sprintf("duplicate locality_id %q", loc.LocalityID))
		}
		seenIDs[loc.LocalityID] = true

		if loc.Name == "" {
			warnings = append(warnings, fmt.Sprintf("missing name at index %d", i))
		}
		if !as.tables.IsState(loc.StateCode) {
			warnings = append(warnings, fmt.Sprintf("unknown state_code %q at index %d", loc.StateCode, i))
		}
		for _, zip := range loc.ZipCodes {
			if len(zip) != 5 {
				warnings = append(warnings, fmt.Sprintf("malformed zip %q at index %d", zip, i))
			}
		}
	}

	estimatedSeconds := len(data) / 100
	if estimatedSeconds < 1 {
		estimatedSeconds = 1
	}

	return &LocalityValidation{
		Passed:             len(warnings) == 0,
		Warnings:           warnings,
		EstimatedBuildTime: fmt.Sprintf("%ds", estimatedSeconds),
	}, nil
}

// SeedLocalities validates the payload, replaces the previous revision in
// MongoDB, pushes the data into the search directory, and invalidates cached
// results written under older revisions.
func (as *AdminService) SeedLocalities(ctx context.Context, tableRevision string, data []models.Locality, rebuildIndexes bool) (*SeedResult, error) {
	startTime := time.Now()

	validation, err := as.ValidateLocalityData(data)
	if err != nil {
		return nil, fmt.Errorf("validate localities: %w", err)
	}
	if !validation.Passed {
		return nil, fmt.Errorf("locality data rejected: %v", validation.Warnings)
	}

	collection := as.db.Collection("localities")

	deleteResult, err := collection.DeleteMany(ctx, bson.M{"table_revision": bson.M{"$ne": tableRevision}})
	if err != nil {
		return nil, fmt.Errorf("delete stale localities: %w", err)
	}
	as.logger.Info("stale localities removed",
		zap.String("table_revision", tableRevision),
		zap.Int64("deleted", deleteResult.DeletedCount))

	now := time.Now()
	documents := make([]interface{}, len(data))
	for i, loc := range data {
		loc.TableRevision = tableRevision
		loc.CreatedAt = now
		loc.UpdatedAt = now
		documents[i] = loc
	}
	if _, err := collection.InsertMany(ctx, documents); err != nil {
		return nil, fmt.Errorf("insert localities: %w", err)
	}

	indexesBuilt := 0
	if rebuildIndexes && as.directory != nil {
		if err := as.directory.BuildIndexes(); err != nil {
			as.logger.Warn("search index settings failed", zap.Error(err))
		} else {
			indexesBuilt++
		}
		if err := as.directory.SeedLocalities(data); err != nil {
			as.logger.Warn("search directory seed failed", zap.Error(err))
		} else {
			indexesBuilt++
		}
		if err := as.directory.DropStaleRevisions(tableRevision); err != nil {
			as.logger.Warn("search directory cleanup failed", zap.Error(err))
		}
	}

	if as.cache != nil {
		if err := as.cache.InvalidateByTableRevision(ctx, tableRevision); err != nil {
			as.logger.Warn("cache invalidation failed", zap.Error(err))
		}
	}

	elapsed := time.Since(startTime)
	as.logger.Info("locality seed completed",
		zap.String("table_revision", tableRevision),
		zap.Int("units_processed", len(data)),
		zap.Int("indexes_built", indexesBuilt),
		zap.Duration("elapsed", elapsed))

	return &SeedResult{
		UnitsProcessed:   len(data),
		IndexesBuilt:     indexesBuilt,
		ProcessingTimeMs: elapsed.Milliseconds(),
	}, nil
}

// InvalidateCache drops cached cleanse results from other table revisions.
func (as *AdminService) InvalidateCache(ctx context.Context, tableRevision string) error {
	if as.cache == nil {
		return errors.New("no cache configured")
	}
	if err := as.cache.InvalidateByTableRevision(ctx, tableRevision); err != nil {
		return fmt.Errorf("invalidate cache: %w", err)
	}
	as.logger.Info("cache invalidated", zap.String("table_revision", tableRevision))
	return nil
}

// GetSystemStats gathers process memory and database counts.
func (as *AdminService) GetSystemStats(ctx context.Context) (*SystemStats, error) {
	dbStats, err := as.getDatabaseStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("database stats: %w", err)
	}

	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return &SystemStats{
		TotalProcessed: dbStats.CleanseCache,
		MemoryUsage: map[string]interface{}{
			"alloc_mb":       bToMb(m.Alloc),
			"total_alloc_mb": bToMb(m.TotalAlloc),
			"sys_mb":         bToMb(m.Sys),
			"num_gc":         m.NumGC,
		},
		DatabaseStats: *dbStats,
		TableRevision: as.tables.Revision,
	}, nil
}

func (as *AdminService) getDatabaseStats(ctx context.Context) (*DatabaseStats, error) {
	stats := &DatabaseStats{}

	count, err := as.db.Collection("localities").CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	stats.Localities = count

	count, err = as.db.Collection("cleanse_cache").CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	stats.CleanseCache = count

	return stats, nil
}

func bToMb(b uint64) uint64 {
	return b / 1024 / 1024
}
