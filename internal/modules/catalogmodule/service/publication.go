package service

import (
	"context"
	"fmt"

	"github.com/mantonx/moviecatalog/internal/logger"
	"github.com/mantonx/moviecatalog/internal/modules/catalogmodule/repository"
	"github.com/mantonx/moviecatalog/internal/types"
)

// PublicationResult reports a bulk publish or unpublish
type PublicationResult struct {
	Count   int64  `json:"count"`
	Message string `json:"message"`
}

// PublicationService toggles the draft flag of movies in bulk
type PublicationService struct {
	movies *repository.MovieRepository
}

// NewPublicationService creates a publication service
func NewPublicationService(movies *repository.MovieRepository) *PublicationService {
	return &PublicationService{movies: movies}
}

// SetDraft updates the draft flag of exactly the given movies in one atomic
// statement and returns the number of rows updated
func (s *PublicationService) SetDraft(ctx context.Context, ids []uint, draft bool) (int64, error) {
	ids = dedupe(ids)
	if len(ids) == 0 {
		return 0, types.NewFieldValidationError(map[string]string{"ids": "select at least one movie"})
	}

	count, err := s.movies.SetDraft(ctx, ids, draft)
	if err != nil {
		return 0, types.NewStoreError("set_draft", err)
	}
	logger.Info("movie draft flag updated", "draft", draft, "requested", len(ids), "updated", count)
	return count, nil
}

// Publish makes the movies visible in the public list
func (s *PublicationService) Publish(ctx context.Context, ids []uint) (*PublicationResult, error) {
	return s.apply(ctx, ids, false)
}

// Unpublish hides the movies from the public list
func (s *PublicationService) Unpublish(ctx context.Context, ids []uint) (*PublicationResult, error) {
	return s.apply(ctx, ids, true)
}

func (s *PublicationService) apply(ctx context.Context, ids []uint, draft bool) (*PublicationResult, error) {
	count, err := s.SetDraft(ctx, ids, draft)
	if err != nil {
		return nil, err
	}
	return &PublicationResult{Count: count, Message: UpdatedMessage(count)}, nil
}

// UpdatedMessage renders the operator message for n updated rows
func UpdatedMessage(n int64) string {
	if n == 1 {
		return "1 record updated"
	}
	return fmt.Sprintf("%d records updated", n)
}

func dedupe(ids []uint) []uint {
	seen := make(map[uint]bool, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if id == 0 || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
