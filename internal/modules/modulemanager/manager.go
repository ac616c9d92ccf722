package modulemanager

import (
	"fmt"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/mantonx/moviecatalog/internal/logger"
	"gorm.io/gorm"
)

// Module defines the interface that all modules must implement
type Module interface {
	ID() string                // Unique identifier for the module
	Name() string              // Display name for the module
	Core() bool                // Whether this is a core module (cannot be disabled)
	Migrate(db *gorm.DB) error // Run database migrations
	Init(env *Env) error       // Initialize the module
}

// RouteRegistrar is an optional interface for modules that need to register routes
type RouteRegistrar interface {
	RegisterRoutes(router *gin.Engine)
}

// ModuleRegistry manages module registration and initialization
type ModuleRegistry struct {
	modules         map[string]Module
	order           []string // registration order
	loaded          []Module // initialization order
	disabledModules map[string]bool
	mu              sync.RWMutex
	initialized     bool
}

// NewRegistry creates an empty module registry
func NewRegistry() *ModuleRegistry {
	return &ModuleRegistry{
		modules:         make(map[string]Module),
		disabledModules: make(map[string]bool),
	}
}

// Register adds a module to the registry
func (r *ModuleRegistry) Register(m Module) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.initialized {
		logger.Warn("module registered after initialization", "module", m.ID())
	}

	if _, exists := r.modules[m.ID()]; !exists {
		r.order = append(r.order, m.ID())
	}
	r.modules[m.ID()] = m
	logger.Debug("module registered", "module", m.ID(), "name", m.Name())
}

// LoadAll migrates and initializes every enabled module in dependency order
func (r *ModuleRegistry) LoadAll(env *Env) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.initialized {
		logger.Warn("module system already initialized")
		return nil
	}

	enabled := make([]Module, 0, len(r.order))
	for _, id := range r.order {
		module := r.modules[id]
		if r.disabledModules[id] {
			if module.Core() {
				return fmt.Errorf("attempted to disable core module: %s", id)
			}
			logger.Warn("skipping disabled module", "module", id)
			continue
		}
		enabled = append(enabled, module)
	}

	initOrder, err := initializationOrder(enabled)
	if err != nil {
		return err
	}

	for i, module := range initOrder {
		logger.Info("initializing module", "module", module.ID(), "step", i+1, "of", len(initOrder))

		if err := module.Migrate(env.DB); err != nil {
			return fmt.Errorf("failed to migrate %s: %w", module.Name(), err)
		}
		if err := module.Init(env); err != nil {
			return fmt.Errorf("failed to initialize %s: %w", module.Name(), err)
		}
		r.loaded = append(r.loaded, module)
	}

	r.initialized = true
	return nil
}

// DisableModule marks a module as disabled
func (r *ModuleRegistry) DisableModule(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	module, exists := r.modules[id]
	if !exists {
		logger.Warn("attempted to disable unknown module", "module", id)
		return
	}
	if module.Core() {
		logger.Error("cannot disable core module", "module", id)
		return
	}
	r.disabledModules[id] = true
}

// ListModules returns the loaded modules in initialization order
func (r *ModuleRegistry) ListModules() []Module {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Module(nil), r.loaded...)
}

// RegisterRoutes registers routes for all loaded modules that implement RouteRegistrar
func (r *ModuleRegistry) RegisterRoutes(router *gin.Engine) {
	for _, module := range r.ListModules() {
		if routeRegistrar, ok := module.(RouteRegistrar); ok {
			logger.Debug("registering module routes", "module", module.ID())
			routeRegistrar.RegisterRoutes(router)
		}
	}
}
