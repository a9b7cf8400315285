package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/address-cleanser/app/models"
	"github.com/address-cleanser/app/requests"
	"github.com/address-cleanser/internal/batch"
	"github.com/address-cleanser/internal/pipeline"
	"github.com/address-cleanser/internal/reference"
)

// recentScores is how many trailing confidences feed the rolling average in
// the stats endpoint.
const recentScores = 1000

var ErrJobNotFound = errors.New("job not found")

// AddressService runs the cleansing pipeline behind the API: caching for
// single calls, background jobs for batches, rolling service statistics.
type AddressService struct {
	cleanser  *pipeline.Cleanser
	cache     ICacheService
	tables    *reference.Tables
	batchOpts batch.Options
	logger    *zap.Logger
	startTime time.Time

	mu           sync.RWMutex
	jobs         map[string]*JobStatus
	jobResults   map[string][]batch.RowResult
	jobSummaries map[string]*batch.Summary

	statsMu        sync.Mutex
	totalProcessed int64
	validCount     int64
	invalidCount   int64
	errorCount     int64
	cacheHits      int64
	cacheLookups   int64
	ring           [recentScores]float64
	ringLen        int
	ringNext       int
}

// JobStatus tracks one background batch job.
type JobStatus struct {
	JobID     string    `json:"job_id"`
	Status    string    `json:"status"`
	Progress  float64   `json:"progress"`
	Processed int       `json:"processed"`
	Total     int       `json:"total"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewAddressService(cleanser *pipeline.Cleanser, cache ICacheService, tables *reference.Tables, batchOpts batch.Options, logger *zap.Logger) *AddressService {
	return &AddressService{
		cleanser:     cleanser,
		cache:        cache,
		tables:       tables,
		batchOpts:    batchOpts,
		logger:       logger,
		startTime:    time.Now(),
		jobs:         make(map[string]*JobStatus),
		jobResults:   make(map[string][]batch.RowResult),
		jobSummaries: make(map[string]*batch.Summary),
	}
}

// CleanseAddress runs one address through the pipeline, consulting the cache
// when the options ask for it. The second return reports a cache hit.
func (as *AddressService) CleanseAddress(ctx context.Context, raw string, options requests.CleanseOptions) (*models.CleanseResult, bool, error) {
	if raw == "" {
		return nil, false, errors.New("address must not be empty")
	}

	useCache := options.UseCache && as.cache != nil
	key := as.cleanser.Fingerprint(raw)

	if useCache {
		as.noteCacheLookup()
		cached, found, err := as.cache.Get(ctx, key)
		if err != nil {
			as.logger.Warn("cache lookup failed", zap.Error(err), zap.String("key", key))
		} else if found {
			as.noteCacheHit()
			return cached, true, nil
		}
	}

	result, err := as.cleanser.Cleanse(ctx, raw)
	if err != nil {
		as.noteError()
		return nil, false, err
	}
	as.noteResult(result)

	if useCache {
		if err := as.cache.Set(ctx, key, result); err != nil {
			as.logger.Warn("cache write failed", zap.Error(err), zap.String("key", key))
		}
	}
	return result, false, nil
}

// CleanseBatch runs a short list of addresses synchronously and folds the
// outcome into the rolling stats.
func (as *AddressService) CleanseBatch(ctx context.Context, addresses []string) ([]batch.RowResult, *batch.Summary, error) {
	rows := make([]batch.Row, len(addresses))
	for i, a := range addresses {
		rows[i] = batch.Row{
			Columns: []string{batch.DefaultAddressColumn},
			Values:  map[string]string{batch.DefaultAddressColumn: a},
		}
	}

	processor := batch.NewProcessor(as.cleanser, batch.NewColumnResolver(batch.ModeSingleColumn), as.batchOpts, as.logger)

	results := make([]batch.RowResult, 0, len(rows))
	summary, err := processor.Run(ctx, batch.NewSliceSource(rows), func(rr batch.RowResult) error {
		results = append(results, rr)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	as.noteBatch(summary, results)
	return results, summary, nil
}

// BuildRows converts a batch request into rows plus the resolver for them.
func BuildRows(req *requests.BatchCleanseRequest) ([]batch.Row, *batch.ColumnResolver, error) {
	if len(req.Addresses) > 0 {
		rows := make([]batch.Row, len(req.Addresses))
		for i, a := range req.Addresses {
			rows[i] = batch.Row{
				Columns: []string{batch.DefaultAddressColumn},
				Values:  map[string]string{batch.DefaultAddressColumn: a},
			}
		}
		return rows, batch.NewColumnResolver(batch.ModeSingleColumn), nil
	}

	if len(req.Rows) == 0 {
		return nil, nil, errors.New("either addresses or rows must be provided")
	}
	if len(req.Columns) == 0 {
		return nil, nil, errors.New("columns are required with tabular rows")
	}

	mode := batch.Mode(req.Mode)
	if mode == "" {
		mode = batch.ModeSingleColumn
	}
	switch mode {
	case batch.ModeSingleColumn, batch.ModeExplicitColumns, batch.ModeAutoCombine:
	default:
		return nil, nil, fmt.Errorf("unknown column mode %q", req.Mode)
	}
	return batch.RowsFromMaps(req.Columns, req.Rows), batch.NewColumnResolver(mode, req.ModeColumns...), nil
}

// EstimateBatchSeconds guesses job duration for the accept response.
func (as *AddressService) EstimateBatchSeconds(rowCount int) int {
	return rowCount / 1000
}

// ProcessBatchJob runs one batch job to completion. Meant to be launched on
// its own goroutine by the controller.
func (as *AddressService) ProcessBatchJob(jobID string, rows []batch.Row, resolver *batch.ColumnResolver) {
	as.mu.Lock()
	as.jobs[jobID] = &JobStatus{
		JobID:     jobID,
		Status:    "running",
		Total:     len(rows),
		Message:   "processing",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	as.mu.Unlock()

	processor := batch.NewProcessor(as.cleanser, resolver, as.batchOpts, as.logger)

	results := make([]batch.RowResult, 0, len(rows))
	summary, err := processor.Run(context.Background(), batch.NewSliceSource(rows), func(rr batch.RowResult) error {
		results = append(results, rr)
		as.updateJobProgress(jobID, len(results), len(rows))
		return nil
	})

	as.mu.Lock()
	defer as.mu.Unlock()

	job := as.jobs[jobID]
	job.UpdatedAt = time.Now()
	if err != nil {
		job.Status = "failed"
		job.Message = err.Error()
		as.logger.Error("batch job failed", zap.String("job_id", jobID), zap.Error(err))
		return
	}
	job.Status = "done"
	job.Message = "completed"
	job.Progress = 1.0
	as.jobResults[jobID] = results
	as.jobSummaries[jobID] = summary

	as.noteBatch(summary, results)
	as.logger.Info("batch job completed",
		zap.String("job_id", jobID),
		zap.Int("total", summary.Total),
		zap.Int("valid", summary.ValidCount),
		zap.Int("invalid", summary.InvalidCount),
		zap.Int("errors", summary.ErrorCount))
}

func (as *AddressService) updateJobProgress(jobID string, processed, total int) {
	as.mu.Lock()
	defer as.mu.Unlock()
	if job, exists := as.jobs[jobID]; exists {
		job.Processed = processed
		if total > 0 {
			job.Progress = float64(processed) / float64(total)
		}
		job.UpdatedAt = time.Now()
	}
}

// GetJobStatus returns the status for one job.
func (as *AddressService) GetJobStatus(jobID string) (*JobStatus, error) {
	as.mu.RLock()
	defer as.mu.RUnlock()

	job, exists := as.jobs[jobID]
	if !exists {
		return nil, ErrJobNotFound
	}
	status := *job
	return &status, nil
}

// GetJobSummary returns the finalized counters for a finished job.
func (as *AddressService) GetJobSummary(jobID string) (*batch.Summary, error) {
	as.mu.RLock()
	defer as.mu.RUnlock()

	summary, exists := as.jobSummaries[jobID]
	if !exists {
		return nil, ErrJobNotFound
	}
	return summary, nil
}

// GetJobResults returns a finished job's per-row results.
func (as *AddressService) GetJobResults(jobID string) ([]batch.RowResult, error) {
	as.mu.RLock()
	defer as.mu.RUnlock()

	results, exists := as.jobResults[jobID]
	if !exists {
		return nil, ErrJobNotFound
	}
	return results, nil
}

// GetJobResultsStream hands the results over a channel for NDJSON streaming.
func (as *AddressService) GetJobResultsStream(jobID string) (<-chan batch.RowResult, error) {
	results, err := as.GetJobResults(jobID)
	if err != nil {
		return nil, err
	}

	ch := make(chan batch.RowResult, 100)
	go func() {
		defer close(ch)
		for _, rr := range results {
			ch <- rr
		}
	}()
	return ch, nil
}

// GetStartTime returns service start time for uptime reporting.
func (as *AddressService) GetStartTime() time.Time {
	return as.startTime
}

// TableRevision identifies the reference tables in responses.
func (as *AddressService) TableRevision() string {
	return as.tables.Revision
}

// ServiceStats is a snapshot of the rolling counters.
type ServiceStats struct {
	TotalProcessed int64
	ValidCount     int64
	InvalidCount   int64
	ErrorCount     int64
	RecentAvgScore float64
	CacheHitRate   float64
	UptimeSeconds  int64
}

// GetStats snapshots the service counters.
func (as *AddressService) GetStats() ServiceStats {
	as.statsMu.Lock()
	defer as.statsMu.Unlock()

	stats := ServiceStats{
		TotalProcessed: as.totalProcessed,
		ValidCount:     as.validCount,
		InvalidCount:   as.invalidCount,
		ErrorCount:     as.errorCount,
		UptimeSeconds:  int64(time.Since(as.startTime).Seconds()),
	}
	if as.ringLen > 0 {
		sum := 0.0
		for i := 0; i < as.ringLen; i++ {
			sum += as.ring[i]
		}
		stats.RecentAvgScore = sum / float64(as.ringLen)
	}
	if as.cacheLookups > 0 {
		stats.CacheHitRate = float64(as.cacheHits) / float64(as.cacheLookups)
	}
	return stats
}

func (as *AddressService) noteResult(result *models.CleanseResult) {
	as.statsMu.Lock()
	defer as.statsMu.Unlock()

	as.totalProcessed++
	if result.Valid() {
		as.validCount++
	} else {
		as.invalidCount++
	}
	as.pushScore(result.Confidence)
}

func (as *AddressService) noteBatch(summary *batch.Summary, results []batch.RowResult) {
	as.statsMu.Lock()
	defer as.statsMu.Unlock()

	as.totalProcessed += int64(summary.Total)
	as.validCount += int64(summary.ValidCount)
	as.invalidCount += int64(summary.InvalidCount)
	as.errorCount += int64(summary.ErrorCount)
	for _, rr := range results {
		if rr.Result != nil {
			as.pushScore(rr.Result.Confidence)
		}
	}
}

func (as *AddressService) noteError() {
	as.statsMu.Lock()
	as.errorCount++
	as.totalProcessed++
	as.statsMu.Unlock()
}

func (as *AddressService) noteCacheLookup() {
	as.statsMu.Lock()
	as.cacheLookups++
	as.statsMu.Unlock()
}

func (as *AddressService) noteCacheHit() {
	as.statsMu.Lock()
	as.cacheHits++
	as.statsMu.Unlock()
}

// pushScore expects statsMu held.
func (as *AddressService) pushScore(score float64) {
	as.ring[as.ringNext] = score
	as.ringNext = (as.ringNext + 1) % recentScores
	if as.ringLen < recentScores {
		as.ringLen++
	}
}
