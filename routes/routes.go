package routes

import (
	"net/http"

	"filevault/database"
	"filevault/middleware"
	"filevault/realtime"
	"filevault/storage"

	"github.com/gin-gonic/gin"
)

// SetupRoutes wires every endpoint group onto the engine.
func SetupRoutes(router *gin.Engine, hub *realtime.Hub) {
	router.GET("/health", healthCheck)

	api := router.Group("/api/v1")
	api.Use(middleware.RateLimitMiddleware())

	setupAuthRoutes(api)
	setupFileRoutes(api)
	setupFolderRoutes(api)
	setupShareRoutes(api, hub)
	setupRealtimeRoutes(router, api, hub)
}

func healthCheck(c *gin.Context) {
	status := http.StatusOK
	checks := gin.H{
		"database": "ok",
		"storage":  "ok",
	}

	if err := database.Ping(); err != nil {
		checks["database"] = err.Error()
		status = http.StatusServiceUnavailable
	}

	if err := storage.Blobs().HealthCheck(); err != nil {
		checks["storage"] = err.Error()
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, gin.H{
		"status": http.StatusText(status),
		"checks": checks,
	})
}
