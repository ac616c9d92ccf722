package service

import (
	"context"
	"sort"
	"time"

	"github.com/mantonx/moviecatalog/internal/database"
	"github.com/mantonx/moviecatalog/internal/modules/catalogmodule/repository"
)

// ReviewNode is the public form of a review with its direct replies.
// The reviewer's email is never part of it.
type ReviewNode struct {
	ID        uint          `json:"id"`
	Name      string        `json:"name"`
	Text      string        `json:"text"`
	ParentID  *uint         `json:"parent_id"`
	CreatedAt time.Time     `json:"created_at"`
	Replies   []*ReviewNode `json:"replies"`
}

func newReviewNode(r database.Review) *ReviewNode {
	return &ReviewNode{
		ID:        r.ID,
		Name:      r.Name,
		Text:      r.Text,
		ParentID:  r.ParentID,
		CreatedAt: r.CreatedAt,
		Replies:   []*ReviewNode{},
	}
}

// MovieDetail is everything the public detail page shows
type MovieDetail struct {
	Movie   *database.Movie          `json:"movie"`
	Rating  repository.RatingSummary `json:"rating"`
	Stars   []database.RatingStar    `json:"stars"`
	Reviews []*ReviewNode            `json:"reviews"`
}

// ActorDetail is an actor with the published movies they take part in
type ActorDetail struct {
	Actor  *database.Actor  `json:"actor"`
	Movies []database.Movie `json:"movies"`
}

// ViewService serves the public read views
type ViewService struct {
	movies  *repository.MovieRepository
	reviews *repository.ReviewRepository
	ratings *repository.RatingRepository
}

// NewViewService creates a view service
func NewViewService(movies *repository.MovieRepository, reviews *repository.ReviewRepository, ratings *repository.RatingRepository) *ViewService {
	return &ViewService{movies: movies, reviews: reviews, ratings: ratings}
}

// ListPublished returns the non-draft movies matching filter in ID order
func (s *ViewService) ListPublished(ctx context.Context, filter repository.MovieFilter) ([]database.Movie, error) {
	movies, err := s.movies.ListPublished(ctx, filter)
	if err != nil {
		return nil, storeErr(err, "list_movies", "movie", "")
	}
	if movies == nil {
		movies = []database.Movie{}
	}
	return movies, nil
}

// Detail returns the published movie with the given slug
func (s *ViewService) Detail(ctx context.Context, slug string) (*MovieDetail, error) {
	movie, err := s.movies.GetPublishedBySlug(ctx, slug)
	if err != nil {
		return nil, storeErr(err, "get_movie", "movie", slug)
	}

	reviews, err := s.reviews.ListByMovie(ctx, movie.ID)
	if err != nil {
		return nil, storeErr(err, "list_reviews", "review", "")
	}
	summary, err := s.ratings.Summary(ctx, movie.ID)
	if err != nil {
		return nil, storeErr(err, "rating_summary", "rating", "")
	}
	stars, err := s.ratings.ListStars(ctx)
	if err != nil {
		return nil, storeErr(err, "list_stars", "rating_star", "")
	}

	return &MovieDetail{
		Movie:   movie,
		Rating:  summary,
		Stars:   stars,
		Reviews: BuildReviewTree(reviews),
	}, nil
}

// ActorDetail returns an actor by name with their published movies
func (s *ViewService) ActorDetail(ctx context.Context, name string) (*ActorDetail, error) {
	actor, err := s.movies.GetActorByName(ctx, name)
	if err != nil {
		return nil, storeErr(err, "get_actor", "actor", name)
	}
	movies, err := s.movies.ListPublishedForActor(ctx, actor.ID)
	if err != nil {
		return nil, storeErr(err, "list_actor_movies", "movie", "")
	}
	if movies == nil {
		movies = []database.Movie{}
	}
	return &ActorDetail{Actor: actor, Movies: movies}, nil
}

// BuildReviewTree arranges a movie's reviews into threads. Children are
// indexed by parent id; a review whose parent is not in the set is treated
// as top level. Every review appears exactly once, replies in ID order.
func BuildReviewTree(reviews []database.Review) []*ReviewNode {
	sorted := make([]database.Review, len(reviews))
	copy(sorted, reviews)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	nodes := make(map[uint]*ReviewNode, len(sorted))
	for _, r := range sorted {
		nodes[r.ID] = newReviewNode(r)
	}
	children := make(map[uint][]uint, len(sorted))
	var roots []uint
	for _, r := range sorted {
		if r.ParentID != nil {
			if _, ok := nodes[*r.ParentID]; ok && *r.ParentID != r.ID {
				children[*r.ParentID] = append(children[*r.ParentID], r.ID)
				continue
			}
		}
		roots = append(roots, r.ID)
	}

	attached := make(map[uint]bool, len(sorted))
	var attach func(id uint)
	attach = func(id uint) {
		attached[id] = true
		for _, child := range children[id] {
			if attached[child] {
				continue
			}
			nodes[id].Replies = append(nodes[id].Replies, nodes[child])
			attach(child)
		}
	}

	forest := []*ReviewNode{}
	for _, id := range roots {
		forest = append(forest, nodes[id])
		attach(id)
	}
	// Rows caught in a parent cycle are unreachable from any root; surface
	// the lowest id of each as top level.
	for _, r := range sorted {
		if !attached[r.ID] {
			forest = append(forest, nodes[r.ID])
			attach(r.ID)
		}
	}
	return forest
}
