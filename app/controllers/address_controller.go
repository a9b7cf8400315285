package controllers

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/address-cleanser/app/config"
	"github.com/address-cleanser/app/requests"
	"github.com/address-cleanser/app/responses"
	"github.com/address-cleanser/app/services"
	"github.com/address-cleanser/helpers/utils"
	"github.com/address-cleanser/internal/tagger"
)

// AddressController serves the cleansing API: single calls, batch jobs, job
// status and result retrieval, and service stats.
type AddressController struct {
	addressService *services.AddressService
	logger         *zap.Logger
}

func NewAddressController(addressService *services.AddressService, logger *zap.Logger) *AddressController {
	return &AddressController{
		addressService: addressService,
		logger:         logger,
	}
}

// CleanseAddress cleanses one free-form address string.
func (ac *AddressController) CleanseAddress(c *gin.Context) {
	var req requests.CleanseAddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("INVALID_REQUEST", "invalid request: "+err.Error()))
		return
	}

	startTime := time.Now()

	ctx, cancel := context.WithTimeout(c.Request.Context(), config.RequestTimeout())
	defer cancel()

	result, cacheHit, err := ac.addressService.CleanseAddress(ctx, req.Address, req.Options)
	if err != nil {
		if errors.Is(err, tagger.ErrTaggingFailed) {
			c.JSON(http.StatusUnprocessableEntity, errorResponse("UNPARSEABLE_ADDRESS", err.Error()))
			return
		}
		c.JSON(http.StatusInternalServerError, errorResponse("CLEANSE_ERROR", err.Error()))
		return
	}

	c.JSON(http.StatusOK, responses.CleanseAddressResponse{
		Result:           responses.NewResultView(result, req.Options.WantParsed(), req.Options.WantConfidence(), req.Options.WantOriginal()),
		TableRevision:    ac.addressService.TableRevision(),
		ProcessingTimeMs: time.Since(startTime).Milliseconds(),
		CacheHit:         cacheHit,
	})
}

// SyncBatch cleanses a short list of addresses in one request.
func (ac *AddressController) SyncBatch(c *gin.Context) {
	var req requests.SyncBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("INVALID_REQUEST", "invalid request: "+err.Error()))
		return
	}

	startTime := time.Now()

	results, summary, err := ac.addressService.CleanseBatch(c.Request.Context(), req.Addresses)
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse("BATCH_ERROR", err.Error()))
		return
	}

	items := make([]responses.SyncBatchItem, len(results))
	for i, rr := range results {
		item := responses.SyncBatchItem{Index: rr.Index}
		if rr.Error != "" {
			item.Error = rr.Error
		} else {
			view := responses.NewResultView(rr.Result, req.Options.WantParsed(), req.Options.WantConfidence(), req.Options.WantOriginal())
			item.Result = &view
		}
		items[i] = item
	}

	c.JSON(http.StatusOK, responses.SyncBatchResponse{
		Results:          items,
		Summary:          responses.NewJobSummaryResponse("", summary),
		TableRevision:    ac.addressService.TableRevision(),
		ProcessingTimeMs: time.Since(startTime).Milliseconds(),
	})
}

// SubmitBatchJob accepts a batch job and starts it in the background.
func (ac *AddressController) SubmitBatchJob(c *gin.Context) {
	var req requests.BatchCleanseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("INVALID_REQUEST", "invalid request: "+err.Error()))
		return
	}

	maxRows := config.C.Batch.MaxRequestRows
	if len(req.Addresses) > maxRows || len(req.Rows) > maxRows {
		c.JSON(http.StatusBadRequest, errorResponse("TOO_MANY_ROWS", "row count exceeds the per-request limit"))
		return
	}

	rows, resolver, err := services.BuildRows(&req)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("INVALID_REQUEST", err.Error()))
		return
	}

	jobID := utils.GenerateUUID()
	go ac.addressService.ProcessBatchJob(jobID, rows, resolver)

	c.JSON(http.StatusAccepted, responses.BatchCleanseResponse{
		JobID:            jobID,
		EstimatedSeconds: ac.addressService.EstimateBatchSeconds(len(rows)),
		TotalRows:        len(rows),
		Message:          "job accepted",
	})
}

// GetJobStatus reports progress for one batch job.
func (ac *AddressController) GetJobStatus(c *gin.Context) {
	jobID := c.Param("jobID")

	status, err := ac.addressService.GetJobStatus(jobID)
	if err != nil {
		c.JSON(http.StatusNotFound, errorResponse("JOB_NOT_FOUND", "no such job: "+jobID))
		return
	}

	c.JSON(http.StatusOK, responses.JobStatusResponse{
		JobID:     jobID,
		Status:    status.Status,
		Progress:  status.Progress,
		Processed: status.Processed,
		Total:     status.Total,
		Message:   status.Message,
	})
}

// GetJobSummary reports the finalized counters for a finished job.
func (ac *AddressController) GetJobSummary(c *gin.Context) {
	jobID := c.Param("jobID")

	summary, err := ac.addressService.GetJobSummary(jobID)
	if err != nil {
		c.JSON(http.StatusNotFound, errorResponse("JOB_NOT_FOUND", "no finished job: "+jobID))
		return
	}

	c.JSON(http.StatusOK, responses.NewJobSummaryResponse(jobID, summary))
}

// GetJobResults returns a finished job's rows, as JSON or streamed NDJSON.
func (ac *AddressController) GetJobResults(c *gin.Context) {
	jobID := c.Param("jobID")

	if c.Query("format") == "ndjson" {
		ac.streamNDJSONResults(c, jobID, c.Query("gzip") == "1")
		return
	}

	results, err := ac.addressService.GetJobResults(jobID)
	if err != nil {
		c.JSON(http.StatusNotFound, errorResponse("JOB_NOT_FOUND", "no finished job: "+jobID))
		return
	}

	c.JSON(http.StatusOK, responses.SuccessResponse{
		Success:   true,
		Message:   "job results",
		Data:      results,
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

// GetStats reports the rolling service counters.
func (ac *AddressController) GetStats(c *gin.Context) {
	stats := ac.addressService.GetStats()

	c.JSON(http.StatusOK, responses.StatsResponse{
		TotalProcessed: stats.TotalProcessed,
		ValidCount:     stats.ValidCount,
		InvalidCount:   stats.InvalidCount,
		ErrorCount:     stats.ErrorCount,
		RecentAvgScore: stats.RecentAvgScore,
		CacheHitRate:   stats.CacheHitRate,
		UptimeSeconds:  stats.UptimeSeconds,
		TableRevision:  ac.addressService.TableRevision(),
	})
}

// HealthCheck reports process health.
func (ac *AddressController) HealthCheck(c *gin.Context) {
	uptime := time.Since(ac.addressService.GetStartTime())

	c.JSON(http.StatusOK, responses.HealthCheckResponse{
		Status:    "healthy",
		Timestamp: time.Now().Format(time.RFC3339),
		Uptime:    uptime.String(),
		Version:   "1.0.0",
		Services: map[string]string{
			"pipeline": "healthy",
			"cache":    "healthy",
		},
	})
}

// streamNDJSONResults writes one JSON object per row, optionally gzipped.
func (ac *AddressController) streamNDJSONResults(c *gin.Context, jobID string, gzipEnabled bool) {
	resultChannel, err := ac.addressService.GetJobResultsStream(jobID)
	if err != nil {
		c.JSON(http.StatusNotFound, errorResponse("JOB_NOT_FOUND", "no finished job: "+jobID))
		return
	}

	c.Header("Content-Type", "application/x-ndjson")
	var writer gin.ResponseWriter = c.Writer
	if gzipEnabled {
		c.Header("Content-Encoding", "gzip")
		gzWriter := gzip.NewWriter(c.Writer)
		defer gzWriter.Close()
		writer = &gzipResponseWriter{
			ResponseWriter: c.Writer,
			gzWriter:       gzWriter,
		}
	}

	encoder := json.NewEncoder(writer)
	for result := range resultChannel {
		if err := encoder.Encode(result); err != nil {
			ac.logger.Error("ndjson encode failed", zap.String("job_id", jobID), zap.Error(err))
			break
		}
		if flusher, ok := writer.(http.Flusher); ok {
			flusher.Flush()
		}
	}
}

type gzipResponseWriter struct {
	gin.ResponseWriter
	gzWriter *gzip.Writer
}

func (w *gzipResponseWriter) Write(data []byte) (int, error) {
	return w.gzWriter.Write(data)
}

func (w *gzipResponseWriter) Flush() {
	w.gzWriter.Flush()
	if flusher, ok := w.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

func errorResponse(code, message string) responses.ErrorResponse {
	return responses.ErrorResponse{
		Error:     code,
		Message:   message,
		Timestamp: time.Now().Format(time.RFC3339),
	}
}
