// Package catalogmodule serves the public movie catalog: movie list and
// detail pages, actor pages, review posting and star ratings.
package catalogmodule

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/mantonx/moviecatalog/internal/database"
	"github.com/mantonx/moviecatalog/internal/logger"
	"github.com/mantonx/moviecatalog/internal/media"
	"github.com/mantonx/moviecatalog/internal/modules/catalogmodule/api"
	"github.com/mantonx/moviecatalog/internal/modules/catalogmodule/repository"
	"github.com/mantonx/moviecatalog/internal/modules/catalogmodule/service"
	"github.com/mantonx/moviecatalog/internal/modules/modulemanager"
	"gorm.io/gorm"
)

const (
	// ModuleID is the unique identifier for the catalog module
	ModuleID = "system.catalog"

	// ModuleName is the display name for the catalog module
	ModuleName = "Movie Catalog"

	// PublicationServiceName is the name the publication service is provided under
	PublicationServiceName = "catalog.publication"
)

// Module implements the public catalog as a module
type Module struct {
	*modulemanager.BaseModule

	db      *gorm.DB
	storage media.Storage

	views       *service.ViewService
	reviews     *service.ReviewService
	ratings     *service.RatingService
	publication *service.PublicationService
}

// New creates the catalog module
func New() *Module {
	return &Module{BaseModule: modulemanager.NewBaseModule(ModuleID, ModuleName, true)}
}

// Migrate creates the catalog schema and seeds the rating stars
func (m *Module) Migrate(db *gorm.DB) error {
	logger.Info("migrating catalog database schema")
	if err := database.Migrate(db); err != nil {
		return fmt.Errorf("failed to migrate catalog: %w", err)
	}
	return nil
}

// Init builds the repositories and services and provides the publication
// service to the admin module
func (m *Module) Init(env *modulemanager.Env) error {
	m.db = env.DB
	m.storage = env.Storage

	movies := repository.NewMovieRepository(m.db)
	reviews := repository.NewReviewRepository(m.db)
	ratings := repository.NewRatingRepository(m.db)

	m.views = service.NewViewService(movies, reviews, ratings)
	m.reviews = service.NewReviewService(movies, reviews)
	m.ratings = service.NewRatingService(movies, ratings)
	m.publication = service.NewPublicationService(movies)

	env.Provide(PublicationServiceName, m.publication)
	m.MarkInitialized(m.db)
	return nil
}

// RegisterRoutes registers HTTP routes
func (m *Module) RegisterRoutes(router *gin.Engine) {
	handler := api.NewHandler(m.views, m.reviews, m.ratings, m.storage)
	api.RegisterRoutes(router, handler)
}
