package database

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mantonx/moviecatalog/internal/config"
	"github.com/mantonx/moviecatalog/internal/logger"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Connect opens the catalog store described by cfg
func Connect(cfg config.DatabaseConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector

	switch cfg.Type {
	case "postgres":
		dialector = postgres.Open(postgresDSN(cfg))
	case "sqlite":
		path := cfg.DatabasePath
		if path == "" {
			path = filepath.Join(cfg.DataDir, "moviecatalog.db")
		}
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
		dialector = sqlite.Open(path + "?_foreign_keys=1&_busy_timeout=5000")
	default:
		return nil, fmt.Errorf("unsupported database type: %s", cfg.Type)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.NewGormLogger(logger.Named("gorm"), cfg.LogQueries),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s database: %w", cfg.Type, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access connection pool: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	logger.Info("database connected", "type", cfg.Type)
	return db, nil
}

func postgresDSN(cfg config.DatabaseConfig) string {
	if cfg.URL != "" {
		return cfg.URL
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=disable TimeZone=UTC",
		cfg.Host, cfg.Username, cfg.Password, cfg.Database, cfg.Port)
}

// Migrate creates or updates the catalog schema and seeds the rating stars
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(AllModels()...); err != nil {
		return fmt.Errorf("failed to migrate catalog models: %w", err)
	}
	return SeedRatingStars(db)
}

// SeedRatingStars makes sure the star values 1..5 exist
func SeedRatingStars(db *gorm.DB) error {
	for v := int16(1); v <= 5; v++ {
		star := RatingStar{Value: v}
		if err := db.Where(RatingStar{Value: v}).FirstOrCreate(&star).Error; err != nil {
			return fmt.Errorf("failed to seed rating star %d: %w", v, err)
		}
	}
	return nil
}

// Close releases the connection pool
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
