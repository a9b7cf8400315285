package responses

import (
	"github.com/address-cleanser/app/models"
	"github.com/address-cleanser/internal/batch"
)

// ResultView is a cleanse result shaped by the request's return flags. Fields
// the caller opted out of are omitted.
type ResultView struct {
	Raw        string                  `json:"raw,omitempty"`
	Parsed     *models.ParsedAddress   `json:"parsed,omitempty"`
	Validation models.ValidationResult `json:"validation"`
	Confidence *float64                `json:"confidence,omitempty"`
	Formatted  models.FormattedAddress `json:"formatted"`
}

// NewResultView trims a cleanse result down to what the caller asked for.
func NewResultView(r *models.CleanseResult, wantParsed, wantConfidence, wantOriginal bool) ResultView {
	view := ResultView{
		Validation: r.Validation,
		Formatted:  r.Formatted,
	}
	if wantOriginal {
		view.Raw = r.Raw
	}
	if wantParsed {
		parsed := r.Parsed
		view.Parsed = &parsed
	}
	if wantConfidence {
		confidence := r.Confidence
		view.Confidence = &confidence
	}
	return view
}

// CleanseAddressResponse wraps one cleanse result.
type CleanseAddressResponse struct {
	Result           ResultView `json:"result"`
	TableRevision    string     `json:"table_revision"`
	ProcessingTimeMs int64      `json:"processing_time_ms"`
	CacheHit         bool       `json:"cache_hit"`
}

// SyncBatchItem is one row of a synchronous batch. Error rows keep their slot
// so indexes line up with the request.
type SyncBatchItem struct {
	Index  int         `json:"index"`
	Result *ResultView `json:"result,omitempty"`
	Error  string      `json:"error,omitempty"`
}

// SyncBatchResponse returns a small synchronous batch with its summary.
type SyncBatchResponse struct {
	Results          []SyncBatchItem    `json:"results"`
	Summary          JobSummaryResponse `json:"summary"`
	TableRevision    string             `json:"table_revision"`
	ProcessingTimeMs int64              `json:"processing_time_ms"`
}

// BatchCleanseResponse acknowledges an accepted batch job.
type BatchCleanseResponse struct {
	JobID            string `json:"job_id"`
	EstimatedSeconds int    `json:"estimated_seconds"`
	TotalRows        int    `json:"total_rows"`
	Message          string `json:"message"`
}

// JobStatusResponse reports batch job progress.
type JobStatusResponse struct {
	JobID     string  `json:"job_id"`
	Status    string  `json:"status"`
	Progress  float64 `json:"progress"`
	Processed int     `json:"processed"`
	Total     int     `json:"total"`
	Message   string  `json:"message"`
}

// JobStatus constants
const (
	JobStatusPending = "pending"
	JobStatusRunning = "running"
	JobStatusDone    = "done"
	JobStatusFailed  = "failed"
)

// JobSummaryResponse reports the finalized batch counters.
type JobSummaryResponse struct {
	JobID             string  `json:"job_id,omitempty"`
	Total             int     `json:"total"`
	ValidCount        int     `json:"valid_count"`
	InvalidCount      int     `json:"invalid_count"`
	ErrorCount        int     `json:"error_count"`
	AverageConfidence float64 `json:"average_confidence"`
}

// NewJobSummaryResponse flattens a batch summary.
func NewJobSummaryResponse(jobID string, s *batch.Summary) JobSummaryResponse {
	return JobSummaryResponse{
		JobID:             jobID,
		Total:             s.Total,
		ValidCount:        s.ValidCount,
		InvalidCount:      s.InvalidCount,
		ErrorCount:        s.ErrorCount,
		AverageConfidence: s.AverageConfidence(),
	}
}

// StatsResponse reports service-level counters.
type StatsResponse struct {
	TotalProcessed int64   `json:"total_processed"`
	ValidCount     int64   `json:"valid_count"`
	InvalidCount   int64   `json:"invalid_count"`
	ErrorCount     int64   `json:"error_count"`
	RecentAvgScore float64 `json:"recent_avg_confidence"`
	CacheHitRate   float64 `json:"cache_hit_rate"`
	UptimeSeconds  int64   `json:"uptime_seconds"`
	TableRevision  string  `json:"table_revision"`
}

// SeedLocalitiesResponse reports a seed run.
type SeedLocalitiesResponse struct {
	ValidationPassed bool     `json:"validation_passed"`
	Warnings         []string `json:"warnings,omitempty"`
	UnitsProcessed   int      `json:"units_processed,omitempty"`
	IndexesBuilt     int      `json:"indexes_built,omitempty"`
	ProcessingTimeMs int64    `json:"processing_time_ms,omitempty"`
	DryRun           bool     `json:"dry_run"`
	Message          string   `json:"message"`
}

// ErrorResponse is the uniform error envelope.
type ErrorResponse struct {
	Error     string      `json:"error"`
	Message   string      `json:"message"`
	Details   interface{} `json:"details,omitempty"`
	Timestamp string      `json:"timestamp"`
	RequestID string      `json:"request_id,omitempty"`
}

// SuccessResponse is the uniform success envelope for admin actions.
type SuccessResponse struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp string      `json:"timestamp"`
}

// HealthCheckResponse reports process health.
type HealthCheckResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Uptime    string            `json:"uptime"`
	Version   string            `json:"version"`
	Services  map[string]string `json:"services"`
}

// SystemStatsResponse reports admin-level system counters.
type SystemStatsResponse struct {
	TotalProcessed int64                  `json:"total_processed"`
	MemoryUsage    map[string]interface{} `json:"memory_usage"`
	TableRevision  string                 `json:"table_revision"`
	DatabaseStats  DatabaseStats          `json:"database_stats"`
}

// DatabaseStats counts persisted collections.
type DatabaseStats struct {
	Localities   int64 `json:"localities"`
	CleanseCache int64 `json:"cleanse_cache"`
}
