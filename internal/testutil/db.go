// Package testutil provides shared helpers for package tests.
package testutil

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/mantonx/moviecatalog/internal/database"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var dbCounter uint64

// NewTestDB opens a private in-memory SQLite catalog with the schema
// migrated and the rating stars seeded.
func NewTestDB(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:catalog_%d?mode=memory&cache=shared&_foreign_keys=1",
		atomic.AddUint64(&dbCounter, 1))

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// One connection keeps the shared in-memory database alive and serialises access.
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))

	t.Cleanup(func() { sqlDB.Close() })
	return db
}

// Star returns the seeded rating star with the given value
func Star(t testing.TB, db *gorm.DB, value int16) database.RatingStar {
	t.Helper()
	var star database.RatingStar
	require.NoError(t, db.Where("value = ?", value).First(&star).Error)
	return star
}

// CreateMovie inserts a movie with the given slug
func CreateMovie(t testing.TB, db *gorm.DB, url string, draft bool) *database.Movie {
	t.Helper()
	m := &database.Movie{Title: strings.ToUpper(url[:1]) + url[1:], URL: url, Draft: draft}
	require.NoError(t, db.Create(m).Error)
	return m
}
