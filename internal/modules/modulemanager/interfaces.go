// Package modulemanager provides the module system: registration, ordered
// initialization, route registration and shutdown.
package modulemanager

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mantonx/moviecatalog/internal/config"
	"github.com/mantonx/moviecatalog/internal/media"
	"gorm.io/gorm"
)

// Env carries the shared resources handed to every module on Init
type Env struct {
	DB      *gorm.DB
	Config  *config.Config
	Storage media.Storage

	mu       sync.RWMutex
	services map[string]interface{}
}

// NewEnv creates a module environment
func NewEnv(db *gorm.DB, cfg *config.Config, storage media.Storage) *Env {
	return &Env{DB: db, Config: cfg, Storage: storage, services: make(map[string]interface{})}
}

// Provide publishes a service for modules initialized later
func (e *Env) Provide(name string, service interface{}) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.services[name] = service
}

// Lookup returns a service published with Provide, with type safety
func Lookup[T any](e *Env, name string) (T, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	var zero T
	service, exists := e.services[name]
	if !exists {
		return zero, fmt.Errorf("service '%s' not found", name)
	}
	typed, ok := service.(T)
	if !ok {
		return zero, fmt.Errorf("service '%s' has wrong type", name)
	}
	return typed, nil
}

// HealthChecker is an optional interface for modules that can report health status
type HealthChecker interface {
	// HealthCheck returns the current health status of the module
	HealthCheck(ctx context.Context) HealthStatus
}

// HealthStatus represents the health of a module
type HealthStatus struct {
	Status      HealthState `json:"status"`
	Message     string      `json:"message,omitempty"`
	LastChecked time.Time   `json:"last_checked"`
}

// HealthState represents the state of a module's health
type HealthState string

const (
	HealthStateHealthy   HealthState = "healthy"
	HealthStateUnhealthy HealthState = "unhealthy"
)

// CheckHealth collects the health of every loaded module that reports it
func (r *ModuleRegistry) CheckHealth(ctx context.Context) map[string]HealthStatus {
	result := make(map[string]HealthStatus)
	for _, module := range r.ListModules() {
		if hc, ok := module.(HealthChecker); ok {
			result[module.ID()] = hc.HealthCheck(ctx)
		}
	}
	return result
}
