package modulemanager

import (
	"context"
	"sync"
	"time"

	"gorm.io/gorm"
)

// BaseModule carries the identity of a module and a store-backed health
// check. Modules embed it and add Migrate and Init.
type BaseModule struct {
	id   string
	name string
	core bool

	mu          sync.RWMutex
	initialized bool
	db          *gorm.DB
}

// NewBaseModule creates a base module with common properties
func NewBaseModule(id, name string, core bool) *BaseModule {
	return &BaseModule{id: id, name: name, core: core}
}

// ID returns the unique module identifier
func (m *BaseModule) ID() string { return m.id }

// Name returns the module display name
func (m *BaseModule) Name() string { return m.name }

// Core returns whether the module can be disabled
func (m *BaseModule) Core() bool { return m.core }

// MarkInitialized records the store the module works on
func (m *BaseModule) MarkInitialized(db *gorm.DB) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.db = db
	m.initialized = true
}

// IsInitialized reports whether Init completed
func (m *BaseModule) IsInitialized() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.initialized
}

// HealthCheck reports unhealthy until Init completed, then pings the store
func (m *BaseModule) HealthCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{Status: HealthStateHealthy, LastChecked: time.Now()}

	m.mu.RLock()
	initialized, db := m.initialized, m.db
	m.mu.RUnlock()

	if !initialized {
		status.Status = HealthStateUnhealthy
		status.Message = "module is not initialized"
		return status
	}
	if db == nil {
		return status
	}

	sqlDB, err := db.DB()
	if err == nil {
		err = sqlDB.PingContext(ctx)
	}
	if err != nil {
		status.Status = HealthStateUnhealthy
		status.Message = "database ping failed: " + err.Error()
	}
	return status
}
