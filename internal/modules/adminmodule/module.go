// Package adminmodule serves the staff-only administrative JSON surface:
// per-entity change lists and change forms configured explicitly through
// ModelAdmin, the movie publication actions and image uploads.
package adminmodule

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/mantonx/moviecatalog/internal/apiroutes"
	"github.com/mantonx/moviecatalog/internal/logger"
	"github.com/mantonx/moviecatalog/internal/modules/catalogmodule"
	"github.com/mantonx/moviecatalog/internal/modules/catalogmodule/service"
	"github.com/mantonx/moviecatalog/internal/modules/modulemanager"
	"gorm.io/gorm"
)

const (
	// ModuleID is the unique identifier for the admin module
	ModuleID = "system.admin"

	// ModuleName is the display name for the admin module
	ModuleName = "Admin Site"
)

// Module implements the admin site as a module
type Module struct {
	*modulemanager.BaseModule

	site   *Site
	auth   *Auth
	upload *uploadHandler
}

// New creates the admin module
func New() *Module {
	return &Module{BaseModule: modulemanager.NewBaseModule(ModuleID, ModuleName, false)}
}

// Dependencies returns the modules that must be initialized first
func (m *Module) Dependencies() []string {
	return []string{catalogmodule.ModuleID}
}

// Migrate is a no-op: the admin works on the catalog tables
func (m *Module) Migrate(db *gorm.DB) error {
	return nil
}

// Init builds the site from configuration and the catalog's publication service
func (m *Module) Init(env *modulemanager.Env) error {
	publisher, err := modulemanager.Lookup[*service.PublicationService](env, catalogmodule.PublicationServiceName)
	if err != nil {
		return fmt.Errorf("admin requires the catalog publication service: %w", err)
	}

	cfg := env.Config.Admin
	m.site = NewSite(cfg.SiteTitle, cfg.SiteHeader, env.DB, env.Storage, publisher)
	m.auth = NewAuth(cfg.Operators)
	m.upload = &uploadHandler{storage: env.Storage}

	if len(cfg.Operators) == 0 {
		logger.Warn("admin site has no operators configured")
	}
	m.MarkInitialized(env.DB)
	logger.Info("admin site initialized", "models", len(m.site.models), "operators", len(cfg.Operators))
	return nil
}

// RegisterRoutes registers HTTP routes
func (m *Module) RegisterRoutes(router *gin.Engine) {
	registerRoutes(router, m.site, m.auth, m.upload)
}

// registerRoutes mounts the admin site below /admin
func registerRoutes(router *gin.Engine, site *Site, auth *Auth, upload *uploadHandler) {
	group := router.Group("/admin", auth.Authenticate())
	site.register(group, auth)
	group.POST("/uploads", auth.Require(UploadPermission), upload.upload)

	apiroutes.Register("/admin/", "GET", "Admin site index with the models the operator may view.")
	for _, info := range site.Models() {
		apiroutes.Register(info.URL, "GET", "Change list of "+info.Name+". Query: q, page, filters.")
		apiroutes.Register(info.URL, "POST", "Creates a "+info.Model+".")
		apiroutes.Register(info.URL+":id/", "GET", "Change form of one "+info.Model+".")
		apiroutes.Register(info.URL+":id/", "PUT", "Updates a "+info.Model+".")
		apiroutes.Register(info.URL+":id/", "DELETE", "Deletes a "+info.Model+".")
	}
	apiroutes.Register("/admin/movies/actions/:action/", "POST", "Runs publish or unpublish on {\"ids\": [...]}.")
	apiroutes.Register("/admin/uploads", "POST", "Stores an image (multipart file, dir) and returns its reference.")
}
