package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/address-cleanser/app/requests"
	"github.com/address-cleanser/app/responses"
	"github.com/address-cleanser/app/services"
)

// AdminController serves the admin API: locality seeding, cache invalidation,
// and system stats.
type AdminController struct {
	adminService *services.AdminService
	logger       *zap.Logger
}

func NewAdminController(adminService *services.AdminService, logger *zap.Logger) *AdminController {
	return &AdminController{
		adminService: adminService,
		logger:       logger,
	}
}

// SeedLocalities loads locality reference data. With ?dry_run=1 it only
// validates the payload.
func (ac *AdminController) SeedLocalities(c *gin.Context) {
	var req requests.SeedLocalitiesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("INVALID_REQUEST", "invalid request: "+err.Error()))
		return
	}

	if c.Query("dry_run") == "1" {
		validation, err := ac.adminService.ValidateLocalityData(req.Data)
		if err != nil {
			c.JSON(http.StatusInternalServerError, errorResponse("VALIDATION_ERROR", err.Error()))
			return
		}
		c.JSON(http.StatusOK, responses.SeedLocalitiesResponse{
			ValidationPassed: validation.Passed,
			Warnings:         validation.Warnings,
			DryRun:           true,
			Message:          "validation only, nothing written",
		})
		return
	}

	result, err := ac.adminService.SeedLocalities(c.Request.Context(), req.TableRevision, req.Data, req.RebuildIndexes)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, errorResponse("SEED_FAILED", err.Error()))
		return
	}

	c.JSON(http.StatusOK, responses.SeedLocalitiesResponse{
		ValidationPassed: true,
		UnitsProcessed:   result.UnitsProcessed,
		IndexesBuilt:     result.IndexesBuilt,
		ProcessingTimeMs: result.ProcessingTimeMs,
		Message:          "localities seeded",
	})
}

// InvalidateCache drops cached results from other table revisions.
func (ac *AdminController) InvalidateCache(c *gin.Context) {
	var req requests.InvalidateCacheRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("INVALID_REQUEST", "invalid request: "+err.Error()))
		return
	}
	revision := req.TableRevision

	if err := ac.adminService.InvalidateCache(c.Request.Context(), revision); err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse("INVALIDATE_FAILED", err.Error()))
		return
	}

	c.JSON(http.StatusOK, responses.SuccessResponse{
		Success:   true,
		Message:   "cache invalidated for revision " + revision,
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

// GetSystemStats reports memory usage and database counts.
func (ac *AdminController) GetSystemStats(c *gin.Context) {
	stats, err := ac.adminService.GetSystemStats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse("STATS_ERROR", err.Error()))
		return
	}

	c.JSON(http.StatusOK, responses.SystemStatsResponse{
		TotalProcessed: stats.TotalProcessed,
		MemoryUsage:    stats.MemoryUsage,
		TableRevision:  stats.TableRevision,
		DatabaseStats: responses.DatabaseStats{
			Localities:   stats.DatabaseStats.Localities,
			CleanseCache: stats.DatabaseStats.CleanseCache,
		},
	})
}
