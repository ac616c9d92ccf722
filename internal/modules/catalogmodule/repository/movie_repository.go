// Package repository provides data access for the public catalog
package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/mantonx/moviecatalog/internal/database"
	"gorm.io/gorm"
)

// MovieFilter narrows the public movie list. Empty fields do not filter.
type MovieFilter struct {
	Genres   []string // genre slugs, any of
	Years    []int    // any of
	Category string   // category slug
	Query    string   // case-insensitive substring of the title
	Limit    int
	Offset   int
}

// MovieRepository handles database operations for movies
type MovieRepository struct {
	db *gorm.DB
}

// NewMovieRepository creates a new movie repository
func NewMovieRepository(db *gorm.DB) *MovieRepository {
	return &MovieRepository{db: db}
}

// GetByID retrieves a movie by ID, drafts included
func (r *MovieRepository) GetByID(ctx context.Context, id uint) (*database.Movie, error) {
	var movie database.Movie
	if err := r.db.WithContext(ctx).First(&movie, id).Error; err != nil {
		return nil, fmt.Errorf("failed to get movie %d: %w", id, err)
	}
	return &movie, nil
}

// GetPublishedBySlug retrieves a published movie with everything its detail
// page shows except reviews and ratings
func (r *MovieRepository) GetPublishedBySlug(ctx context.Context, slug string) (*database.Movie, error) {
	var movie database.Movie
	err := r.db.WithContext(ctx).
		Preload("Category").
		Preload("Directors", orderByID).
		Preload("Actors", orderByID).
		Preload("Genres", orderByID).
		Preload("Shots", orderByID).
		Where("url = ? AND draft = ?", slug, false).
		First(&movie).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get movie %q: %w", slug, err)
	}
	return &movie, nil
}

// ListPublished returns the non-draft movies matching filter, ordered by ID
func (r *MovieRepository) ListPublished(ctx context.Context, filter MovieFilter) ([]database.Movie, error) {
	query := r.db.WithContext(ctx).Model(&database.Movie{}).
		Preload("Category").
		Where("movies.draft = ?", false)
	query = applyMovieFilter(query, filter)

	var movies []database.Movie
	if err := query.Order("movies.id ASC").Find(&movies).Error; err != nil {
		return nil, fmt.Errorf("failed to list movies: %w", err)
	}
	return movies, nil
}

// ListPublishedForActor returns the published movies an actor plays in or directs
func (r *MovieRepository) ListPublishedForActor(ctx context.Context, actorID uint) ([]database.Movie, error) {
	var movies []database.Movie
	err := r.db.WithContext(ctx).
		Where("draft = ?", false).
		Where("(id IN (?) OR id IN (?))",
			r.db.Table("movie_actors").Select("movie_id").Where("actor_id = ?", actorID),
			r.db.Table("movie_directors").Select("movie_id").Where("actor_id = ?", actorID)).
		Order("id ASC").
		Find(&movies).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list movies for actor %d: %w", actorID, err)
	}
	return movies, nil
}

// SetDraft sets the draft flag of the given movies in one transaction and
// returns the number of rows updated
func (r *MovieRepository) SetDraft(ctx context.Context, ids []uint, draft bool) (int64, error) {
	var updated int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Session(&gorm.Session{SkipHooks: true}).
			Model(&database.Movie{}).
			Where("id IN ?", ids).
			Update("draft", draft)
		if result.Error != nil {
			return result.Error
		}
		updated = result.RowsAffected
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to update draft flag: %w", err)
	}
	return updated, nil
}

// GetActorByName retrieves an actor by exact name
func (r *MovieRepository) GetActorByName(ctx context.Context, name string) (*database.Actor, error) {
	var actor database.Actor
	if err := r.db.WithContext(ctx).Where("name = ?", name).Order("id ASC").First(&actor).Error; err != nil {
		return nil, fmt.Errorf("failed to get actor %q: %w", name, err)
	}
	return &actor, nil
}

func applyMovieFilter(query *gorm.DB, filter MovieFilter) *gorm.DB {
	if len(filter.Years) > 0 {
		query = query.Where("movies.year IN ?", filter.Years)
	}

	if len(filter.Genres) > 0 {
		query = query.Where("movies.id IN (?)",
			query.Session(&gorm.Session{NewDB: true}).
				Table("movie_genres").
				Select("movie_genres.movie_id").
				Joins("JOIN genres ON genres.id = movie_genres.genre_id").
				Where("genres.url IN ?", filter.Genres))
	}

	if filter.Category != "" {
		query = query.Joins("JOIN categories ON categories.id = movies.category_id").
			Where("categories.url = ?", filter.Category)
	}

	if q := strings.TrimSpace(filter.Query); q != "" {
		query = query.Where("LOWER(movies.title) LIKE ?", "%"+strings.ToLower(q)+"%")
	}

	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}
	return query
}

func orderByID(db *gorm.DB) *gorm.DB {
	return db.Order("id ASC")
}
