package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mantonx/moviecatalog/internal/database"
	"github.com/mantonx/moviecatalog/internal/logger"
	"github.com/mantonx/moviecatalog/internal/modules/catalogmodule/repository"
	"github.com/mantonx/moviecatalog/internal/types"
	"github.com/mantonx/moviecatalog/internal/validation"
	"gorm.io/gorm"
)

// ReviewInput is a review posted from a movie page
type ReviewInput struct {
	MovieID  uint   `json:"movie" validate:"required"`
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Text     string `json:"text" validate:"required,max=5000"`
	ParentID *uint  `json:"parent,omitempty"`
}

// ReviewService accepts visitor reviews
type ReviewService struct {
	movies  *repository.MovieRepository
	reviews *repository.ReviewRepository
}

// NewReviewService creates a review service
func NewReviewService(movies *repository.MovieRepository, reviews *repository.ReviewRepository) *ReviewService {
	return &ReviewService{movies: movies, reviews: reviews}
}

// Submit validates and stores one review and returns it together with the
// detail URL of its movie. Draft movies do not accept public reviews.
func (s *ReviewService) Submit(ctx context.Context, in ReviewInput) (*database.Review, string, error) {
	movieID := fmt.Sprint(in.MovieID)
	movie, err := s.movies.GetByID(ctx, in.MovieID)
	if err != nil {
		return nil, "", storeErr(err, "get_movie", "movie", movieID)
	}
	if movie.Draft {
		return nil, "", types.NewNotFoundError("movie", movieID)
	}

	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Text = strings.TrimSpace(in.Text)
	if err := validation.Struct(in); err != nil {
		return nil, "", err
	}

	if in.ParentID != nil {
		parent, err := s.reviews.GetByID(ctx, *in.ParentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, "", types.NewFieldValidationError(map[string]string{"parent": "parent review does not exist"})
			}
			return nil, "", types.NewStoreError("get_review", err)
		}
		if parent.MovieID != movie.ID {
			return nil, "", types.NewFieldValidationError(map[string]string{"parent": "parent review belongs to another movie"})
		}
	}

	review := &database.Review{
		MovieID:  movie.ID,
		ParentID: in.ParentID,
		Name:     in.Name,
		Email:    in.Email,
		Text:     in.Text,
	}
	if err := s.reviews.Create(ctx, review); err != nil {
		return nil, "", storeErr(err, "create_review", "review", "")
	}

	logger.Debug("review submitted", "movie", movie.URL, "review", review.ID, "reply", in.ParentID != nil)
	return review, movie.AbsoluteURL(), nil
}
