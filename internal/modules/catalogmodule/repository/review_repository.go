package repository

import (
	"context"
	"fmt"

	"github.com/mantonx/moviecatalog/internal/database"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ReviewRepository handles database operations for reviews
type ReviewRepository struct {
	db *gorm.DB
}

// NewReviewRepository creates a new review repository
func NewReviewRepository(db *gorm.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// GetByID retrieves a review by ID
func (r *ReviewRepository) GetByID(ctx context.Context, id uint) (*database.Review, error) {
	var review database.Review
	if err := r.db.WithContext(ctx).First(&review, id).Error; err != nil {
		return nil, fmt.Errorf("failed to get review %d: %w", id, err)
	}
	return &review, nil
}

// Create inserts one review. Parent rules are checked by the model hooks.
func (r *ReviewRepository) Create(ctx context.Context, review *database.Review) error {
	if err := r.db.WithContext(ctx).Create(review).Error; err != nil {
		return fmt.Errorf("failed to create review: %w", err)
	}
	return nil
}

// ListByMovie returns every review of a movie ordered by ID
func (r *ReviewRepository) ListByMovie(ctx context.Context, movieID uint) ([]database.Review, error) {
	var reviews []database.Review
	if err := r.db.WithContext(ctx).Where("movie_id = ?", movieID).Order("id ASC").Find(&reviews).Error; err != nil {
		return nil, fmt.Errorf("failed to list reviews of movie %d: %w", movieID, err)
	}
	return reviews, nil
}

// RatingSummary aggregates the votes of one movie
type RatingSummary struct {
	Count   int64   `json:"count"`
	Average float64 `json:"average"`
}

// RatingRepository handles database operations for ratings and stars
type RatingRepository struct {
	db *gorm.DB
}

// NewRatingRepository creates a new rating repository
func NewRatingRepository(db *gorm.DB) *RatingRepository {
	return &RatingRepository{db: db}
}

// Upsert stores the vote of an address for a movie, replacing an earlier one
func (r *RatingRepository) Upsert(ctx context.Context, rating *database.Rating) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "ip"}, {Name: "movie_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"star_id"}),
	}).Create(rating).Error
	if err != nil {
		return fmt.Errorf("failed to save rating: %w", err)
	}
	return nil
}

// Get returns the vote of an address for a movie
func (r *RatingRepository) Get(ctx context.Context, ip string, movieID uint) (*database.Rating, error) {
	var rating database.Rating
	if err := r.db.WithContext(ctx).Preload("Star").Where("ip = ? AND movie_id = ?", ip, movieID).First(&rating).Error; err != nil {
		return nil, fmt.Errorf("failed to get rating: %w", err)
	}
	return &rating, nil
}

// Summary returns the vote count and average star value of a movie
func (r *RatingRepository) Summary(ctx context.Context, movieID uint) (RatingSummary, error) {
	var summary RatingSummary
	err := r.db.WithContext(ctx).
		Table("ratings").
		Select("COUNT(ratings.id) AS count, COALESCE(AVG(rating_stars.value), 0) AS average").
		Joins("JOIN rating_stars ON rating_stars.id = ratings.star_id").
		Where("ratings.movie_id = ?", movieID).
		Scan(&summary).Error
	if err != nil {
		return RatingSummary{}, fmt.Errorf("failed to summarize ratings of movie %d: %w", movieID, err)
	}
	return summary, nil
}

// GetStar retrieves a rating star by ID
func (r *RatingRepository) GetStar(ctx context.Context, id uint) (*database.RatingStar, error) {
	var star database.RatingStar
	if err := r.db.WithContext(ctx).First(&star, id).Error; err != nil {
		return nil, fmt.Errorf("failed to get rating star %d: %w", id, err)
	}
	return &star, nil
}

// ListStars returns the rating stars, highest value first
func (r *RatingRepository) ListStars(ctx context.Context) ([]database.RatingStar, error) {
	var stars []database.RatingStar
	if err := r.db.WithContext(ctx).Order("value DESC").Find(&stars).Error; err != nil {
		return nil, fmt.Errorf("failed to list rating stars: %w", err)
	}
	return stars, nil
}
