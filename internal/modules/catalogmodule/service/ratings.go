package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mantonx/moviecatalog/internal/database"
	"github.com/mantonx/moviecatalog/internal/modules/catalogmodule/repository"
	"github.com/mantonx/moviecatalog/internal/types"
	"github.com/mantonx/moviecatalog/internal/validation"
	"gorm.io/gorm"
)

// RatingInput is a star vote from one client address
type RatingInput struct {
	IP      string `json:"ip" validate:"required,ip"`
	MovieID uint   `json:"movie" validate:"required"`
	StarID  uint   `json:"star" validate:"required"`
}

// RatingService records star votes
type RatingService struct {
	movies  *repository.MovieRepository
	ratings *repository.RatingRepository
}

// NewRatingService creates a rating service
func NewRatingService(movies *repository.MovieRepository, ratings *repository.RatingRepository) *RatingService {
	return &RatingService{movies: movies, ratings: ratings}
}

// Rate stores the vote of in.IP for a published movie. A second vote from the
// same address replaces the first.
func (s *RatingService) Rate(ctx context.Context, in RatingInput) (*database.Rating, error) {
	in.IP = strings.TrimSpace(in.IP)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	movieID := fmt.Sprint(in.MovieID)
	movie, err := s.movies.GetByID(ctx, in.MovieID)
	if err != nil {
		return nil, storeErr(err, "get_movie", "movie", movieID)
	}
	if movie.Draft {
		return nil, types.NewNotFoundError("movie", movieID)
	}

	if _, err := s.ratings.GetStar(ctx, in.StarID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NewFieldValidationError(map[string]string{"star": "unknown rating star"})
		}
		return nil, types.NewStoreError("get_star", err)
	}

	if err := s.ratings.Upsert(ctx, &database.Rating{IP: in.IP, MovieID: movie.ID, StarID: in.StarID}); err != nil {
		return nil, types.NewStoreError("save_rating", err)
	}

	rating, err := s.ratings.Get(ctx, in.IP, movie.ID)
	if err != nil {
		return nil, types.NewStoreError("get_rating", err)
	}
	return rating, nil
}
