package routes

import (
	"github.com/gin-gonic/gin"
)

// SetupWebRoutes serves the landing and docs endpoints.
func SetupWebRoutes(router *gin.Engine) {
	web := router.Group("/")
	{
		web.GET("/", func(c *gin.Context) {
			c.JSON(200, gin.H{
				"message": "Address Cleansing Service",
				"version": "1.0.0",
				"docs":    "/docs",
			})
		})

		web.GET("/docs", func(c *gin.Context) {
			c.JSON(200, gin.H{
				"api": "Address Cleansing API v1",
				"endpoints": map[string]string{
					"cleanse":     "POST /v1/addresses/cleanse",
					"batch":       "POST /v1/addresses/batch",
					"jobs":        "POST /v1/addresses/jobs",
					"job_status":  "GET /v1/addresses/jobs/:jobID/status",
					"job_summary": "GET /v1/addresses/jobs/:jobID/summary",
					"job_results": "GET /v1/addresses/jobs/:jobID/results",
					"stats":       "GET /v1/stats",
					"health":      "GET /v1/health",
				},
			})
		})
	}
}
