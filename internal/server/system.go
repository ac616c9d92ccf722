package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mantonx/moviecatalog/internal/apiroutes"
	"github.com/mantonx/moviecatalog/internal/modules/modulemanager"
	"gorm.io/gorm"
)

type systemHandler struct {
	db       *gorm.DB
	registry *modulemanager.ModuleRegistry
}

func setupSystemRoutes(r *gin.Engine, db *gorm.DB, registry *modulemanager.ModuleRegistry) {
	h := &systemHandler{db: db, registry: registry}

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("", h.listRoutes)
		apiroutes.Register(apiGroup.BasePath(), "GET", "Lists all available API endpoints.")

		apiGroup.GET("/health", h.health)
		apiroutes.Register(apiGroup.BasePath()+"/health", "GET", "System health check with per-module status.")

		apiGroup.GET("/db-status", h.dbStatus)
		apiroutes.Register(apiGroup.BasePath()+"/db-status", "GET", "Database connection status.")

		apiGroup.GET("/connection-pool", h.connectionPool)
		apiroutes.Register(apiGroup.BasePath()+"/connection-pool", "GET", "Database connection pool statistics.")
	}
}

// listRoutes handles GET /api
func (h *systemHandler) listRoutes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"routes": apiroutes.Get()})
}

// health handles GET /api/health. Any unhealthy module turns the answer
// into 503.
func (h *systemHandler) health(c *gin.Context) {
	modules := h.registry.CheckHealth(c.Request.Context())

	status := http.StatusOK
	overall := "ok"
	for _, m := range modules {
		if m.Status != modulemanager.HealthStateHealthy {
			status = http.StatusServiceUnavailable
			overall = "degraded"
		}
	}
	c.JSON(status, gin.H{
		"status":  overall,
		"service": "moviecatalog",
		"modules": modules,
		"time":    time.Now().UTC(),
	})
}

// dbStatus handles GET /api/db-status
func (h *systemHandler) dbStatus(c *gin.Context) {
	sqlDB, err := h.db.DB()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status": "error",
			"error":  "failed to get database instance: " + err.Error(),
		})
		return
	}
	if err := sqlDB.PingContext(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "error",
			"error":  "database ping failed: " + err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":   "connected",
		"database": h.db.Dialector.Name(),
	})
}

// connectionPool handles GET /api/connection-pool
func (h *systemHandler) connectionPool(c *gin.Context) {
	sqlDB, err := h.db.DB()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get database instance: " + err.Error()})
		return
	}
	stats := sqlDB.Stats()

	var utilization float64
	if stats.MaxOpenConnections > 0 {
		utilization = float64(stats.InUse) / float64(stats.MaxOpenConnections) * 100
	}
	c.JSON(http.StatusOK, gin.H{
		"connection_pool": gin.H{
			"open_connections":     stats.OpenConnections,
			"max_open_connections": stats.MaxOpenConnections,
			"in_use":               stats.InUse,
			"idle":                 stats.Idle,
			"wait_count":           stats.WaitCount,
			"wait_duration":        stats.WaitDuration.String(),
			"max_idle_closed":      stats.MaxIdleClosed,
			"max_lifetime_closed":  stats.MaxLifetimeClosed,
		},
		"utilization_percent": utilization,
	})
}
