package rest

import (
	"github.com/gin-gonic/gin"
)

// SetupRoutes configures all REST API routes
func SetupRoutes(router *gin.Engine, handler Handler, metricsHandler gin.HandlerFunc) {
	// Operational endpoints (no version prefix)
	router.GET("/health", handler.HealthCheck)
	if metricsHandler != nil {
		router.GET("/metrics", metricsHandler)
	}

	v1 := router.Group("/api/v1")
	{
		// Run a check in process and wait for it
		v1.POST("/checks/run", handler.RunCheck)

		// Start a check workflow
		v1.POST("/checks", handler.StartCheck)

		// Check workflow status
		v1.GET("/checks/:workflow_id/runs/:run_id", handler.GetCheckStatus)
	}
}
