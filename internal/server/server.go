// Package server assembles the HTTP surface: middleware, the module system,
// media files and the health and discovery endpoints.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mantonx/moviecatalog/internal/api"
	"github.com/mantonx/moviecatalog/internal/config"
	"github.com/mantonx/moviecatalog/internal/logger"
	"github.com/mantonx/moviecatalog/internal/media"
	"github.com/mantonx/moviecatalog/internal/middleware"
	"github.com/mantonx/moviecatalog/internal/modules/adminmodule"
	"github.com/mantonx/moviecatalog/internal/modules/catalogmodule"
	"github.com/mantonx/moviecatalog/internal/modules/modulemanager"
	"gorm.io/gorm"
)

const shutdownTimeout = 5 * time.Second

// Server owns the router and the HTTP listener
type Server struct {
	cfg    *config.Config
	router *gin.Engine
}

// DefaultModules returns a registry holding every module of the application
func DefaultModules() *modulemanager.ModuleRegistry {
	registry := modulemanager.NewRegistry()
	registry.Register(catalogmodule.New())
	registry.Register(adminmodule.New())
	return registry
}

// New loads the modules and builds the router
func New(cfg *config.Config, db *gorm.DB, registry *modulemanager.ModuleRegistry) (*Server, error) {
	storage := media.NewLocalStorage(cfg.Media.Root, cfg.Media.URLPrefix, cfg.Media.MaxUploadSize)
	env := modulemanager.NewEnv(db, cfg, storage)

	if !cfg.Admin.Enabled {
		registry.DisableModule(adminmodule.ModuleID)
	}
	if err := registry.LoadAll(env); err != nil {
		return nil, fmt.Errorf("failed to load modules: %w", err)
	}
	logModuleStatus(registry)

	router, err := SetupRouter(cfg, db, registry)
	if err != nil {
		return nil, err
	}
	return &Server{cfg: cfg, router: router}, nil
}

// Router returns the configured HTTP handler
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Run serves until ctx is cancelled, then drains open connections
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:           s.cfg.Addr(),
		Handler:        s.router,
		ReadTimeout:    s.cfg.Server.ReadTimeout,
		WriteTimeout:   s.cfg.Server.WriteTimeout,
		MaxHeaderBytes: s.cfg.Server.MaxHeaderBytes,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
	case <-ctx.Done():
	}

	logger.Info("shutting down gracefully")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	logger.Info("server shutdown complete")
	return nil
}

// SetupRouter configures the middleware chain and every route
func SetupRouter(cfg *config.Config, db *gorm.DB, registry *modulemanager.ModuleRegistry) (*gin.Engine, error) {
	switch cfg.Server.Mode {
	case gin.DebugMode, gin.ReleaseMode, gin.TestMode:
		gin.SetMode(cfg.Server.Mode)
	default:
		return nil, fmt.Errorf("unknown gin mode: %s", cfg.Server.Mode)
	}

	r := gin.New()
	if err := r.SetTrustedProxies(cfg.Server.TrustedProxies); err != nil {
		return nil, fmt.Errorf("invalid trusted proxies: %w", err)
	}

	r.Use(
		middleware.RequestID(),
		middleware.RequestLogger(),
		middleware.ErrorLogger(),
		api.ErrorMiddleware(),
	)
	if cfg.Server.EnableCORS {
		r.Use(cors())
	}

	mediaPrefix := strings.TrimSuffix(cfg.Media.URLPrefix, "/")
	if mediaPrefix != "" && !strings.HasPrefix(cfg.Media.URLPrefix, "http") {
		r.Static(mediaPrefix, cfg.Media.Root)
	}

	setupSystemRoutes(r, db, registry)
	registry.RegisterRoutes(r)

	r.NoRoute(func(c *gin.Context) {
		api.RespondWithNotFound(c, "route", c.Request.URL.Path)
	})
	return r, nil
}

func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, "+middleware.RequestIDHeader)
		c.Header("Access-Control-Expose-Headers", middleware.RequestIDHeader)

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// logModuleStatus logs the loaded modules
func logModuleStatus(registry *modulemanager.ModuleRegistry) {
	modules := registry.ListModules()
	logger.Info("module system initialized", "modules", len(modules))
	for _, module := range modules {
		logger.Info("module loaded", "id", module.ID(), "name", module.Name(), "core", module.Core())
	}
}
