package service_test

import (
	"context"
	"testing"

	"github.com/mantonx/moviecatalog/internal/database"
	"github.com/mantonx/moviecatalog/internal/modules/catalogmodule/repository"
	"github.com/mantonx/moviecatalog/internal/modules/catalogmodule/service"
	"github.com/mantonx/moviecatalog/internal/testutil"
	"github.com/mantonx/moviecatalog/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type services struct {
	db          *gorm.DB
	reviews     *service.ReviewService
	publication *service.PublicationService
	views       *service.ViewService
	ratings     *service.RatingService
}

func setup(t *testing.T) *services {
	t.Helper()
	db := testutil.NewTestDB(t)
	movies := repository.NewMovieRepository(db)
	reviews := repository.NewReviewRepository(db)
	ratings := repository.NewRatingRepository(db)
	return &services{
		db:          db,
		reviews:     service.NewReviewService(movies, reviews),
		publication: service.NewPublicationService(movies),
		views:       service.NewViewService(movies, reviews, ratings),
		ratings:     service.NewRatingService(movies, ratings),
	}
}

func validReview(movieID uint) service.ReviewInput {
	return service.ReviewInput{MovieID: movieID, Name: "A", Email: "a@x.com", Text: "great"}
}

func countReviews(t *testing.T, db *gorm.DB) int64 {
	var n int64
	require.NoError(t, db.Model(&database.Review{}).Count(&n).Error)
	return n
}

func TestSubmitReview_Matrix(t *testing.T) {
	s := setup(t)
	matrix := testutil.CreateMovie(t, s.db, "matrix", false)

	review, redirect, err := s.reviews.Submit(context.Background(), validReview(matrix.ID))
	require.NoError(t, err)

	assert.Equal(t, "/matrix/", redirect)
	assert.Equal(t, matrix.ID, review.MovieID)
	assert.Nil(t, review.ParentID)
	assert.Equal(t, int64(1), countReviews(t, s.db))

	var stored database.Review
	require.NoError(t, s.db.First(&stored, review.ID).Error)
	assert.Equal(t, "A", stored.Name)
	assert.Equal(t, "a@x.com", stored.Email)
	assert.Equal(t, "great", stored.Text)
	assert.Nil(t, stored.ParentID)
}

func TestSubmitReview_Replies(t *testing.T) {
	s := setup(t)
	x := testutil.CreateMovie(t, s.db, "x-movie", false)
	y := testutil.CreateMovie(t, s.db, "y-movie", false)
	ctx := context.Background()

	r1, _, err := s.reviews.Submit(ctx, validReview(x.ID))
	require.NoError(t, err)

	t.Run("same movie", func(t *testing.T) {
		in := validReview(x.ID)
		in.ParentID = &r1.ID
		reply, redirect, err := s.reviews.Submit(ctx, in)
		require.NoError(t, err)
		require.NotNil(t, reply.ParentID)
		assert.Equal(t, r1.ID, *reply.ParentID)
		assert.Equal(t, "/x-movie/", redirect)
	})

	t.Run("other movie", func(t *testing.T) {
		before := countReviews(t, s.db)
		in := validReview(y.ID)
		in.ParentID = &r1.ID
		_, _, err := s.reviews.Submit(ctx, in)
		require.Error(t, err)
		assert.True(t, types.IsValidation(err))

		var appErr *types.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Contains(t, appErr.Fields, "parent")
		assert.Equal(t, before, countReviews(t, s.db))
	})

	t.Run("missing parent", func(t *testing.T) {
		missing := uint(9999)
		in := validReview(x.ID)
		in.ParentID = &missing
		_, _, err := s.reviews.Submit(ctx, in)
		assert.True(t, types.IsValidation(err))
	})
}

func TestSubmitReview_Validation(t *testing.T) {
	s := setup(t)
	m := testutil.CreateMovie(t, s.db, "matrix", false)

	_, _, err := s.reviews.Submit(context.Background(), service.ReviewInput{
		MovieID: m.ID, Name: "  ", Email: "not-an-email", Text: "",
	})
	require.Error(t, err)

	var appErr *types.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, types.ErrorCodeValidation, appErr.Code)
	assert.Equal(t, "this field is required", appErr.Fields["name"])
	assert.Equal(t, "enter a valid email address", appErr.Fields["email"])
	assert.Equal(t, "this field is required", appErr.Fields["text"])
	assert.Equal(t, int64(0), countReviews(t, s.db))
}

func TestSubmitReview_UnknownOrDraftMovie(t *testing.T) {
	s := setup(t)
	draft := testutil.CreateMovie(t, s.db, "hidden", true)

	_, _, err := s.reviews.Submit(context.Background(), validReview(4242))
	assert.True(t, types.IsNotFound(err))

	_, _, err = s.reviews.Submit(context.Background(), validReview(draft.ID))
	assert.True(t, types.IsNotFound(err))
	assert.Equal(t, int64(0), countReviews(t, s.db))
}

func TestPublication_BulkUnpublish(t *testing.T) {
	s := setup(t)
	ctx := context.Background()
	a := testutil.CreateMovie(t, s.db, "alpha", false)
	b := testutil.CreateMovie(t, s.db, "beta", false)
	c := testutil.CreateMovie(t, s.db, "gamma", false)

	result, err := s.publication.Unpublish(ctx, []uint{a.ID, b.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(2), result.Count)
	assert.Equal(t, "2 records updated", result.Message)

	var drafts []database.Movie
	require.NoError(t, s.db.Where("draft = ?", true).Order("id").Find(&drafts).Error)
	require.Len(t, drafts, 2)
	assert.Equal(t, a.ID, drafts[0].ID)
	assert.Equal(t, b.ID, drafts[1].ID)

	list, err := s.views.ListPublished(ctx, repository.MovieFilter{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, c.ID, list[0].ID)

	result, err = s.publication.Publish(ctx, []uint{a.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.Count)
	assert.Equal(t, "1 record updated", result.Message)
}

func TestPublication_CountsOnlyExistingRows(t *testing.T) {
	s := setup(t)
	a := testutil.CreateMovie(t, s.db, "alpha", true)

	count, err := s.publication.SetDraft(context.Background(), []uint{a.ID, a.ID, 777}, false)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestPublication_EmptySelection(t *testing.T) {
	s := setup(t)
	_, err := s.publication.Publish(context.Background(), nil)
	assert.True(t, types.IsValidation(err))
}

func TestUpdatedMessage(t *testing.T) {
	assert.Equal(t, "0 records updated", service.UpdatedMessage(0))
	assert.Equal(t, "1 record updated", service.UpdatedMessage(1))
	assert.Equal(t, "5 records updated", service.UpdatedMessage(5))
}

func TestListPublished_ExcludesDrafts(t *testing.T) {
	s := setup(t)
	ctx := context.Background()

	want := map[uint]bool{}
	for i, slug := range []string{"one", "two", "three", "four", "five"} {
		draft := i%2 == 1
		m := testutil.CreateMovie(t, s.db, slug, draft)
		want[m.ID] = !draft
	}

	list, err := s.views.ListPublished(ctx, repository.MovieFilter{})
	require.NoError(t, err)

	got := map[uint]bool{}
	var prev uint
	for _, m := range list {
		assert.False(t, m.Draft)
		assert.Greater(t, m.ID, prev, "list is ordered by id")
		prev = m.ID
		got[m.ID] = true
	}
	for id, published := range want {
		assert.Equal(t, published, got[id], "movie %d", id)
	}
}

func TestListPublished_Filters(t *testing.T) {
	s := setup(t)
	ctx := context.Background()

	drama := database.Category{Name: "Drama"}
	require.NoError(t, s.db.Create(&drama).Error)
	scifi := database.Genre{Name: "Sci Fi"}
	require.NoError(t, s.db.Create(&scifi).Error)
	assert.Equal(t, "sci-fi", scifi.URL)

	matrix := &database.Movie{Title: "The Matrix", URL: "matrix", Year: 1999, CategoryID: &drama.ID, GenreIDs: []uint{scifi.ID}}
	require.NoError(t, s.db.Create(matrix).Error)
	heat := &database.Movie{Title: "Heat", URL: "heat", Year: 1995}
	require.NoError(t, s.db.Create(heat).Error)

	byGenre, err := s.views.ListPublished(ctx, repository.MovieFilter{Genres: []string{"sci-fi"}})
	require.NoError(t, err)
	require.Len(t, byGenre, 1)
	assert.Equal(t, matrix.ID, byGenre[0].ID)
	require.NotNil(t, byGenre[0].Category)
	assert.Equal(t, "Drama", byGenre[0].Category.Name)

	byYear, err := s.views.ListPublished(ctx, repository.MovieFilter{Years: []int{1995, 2001}})
	require.NoError(t, err)
	require.Len(t, byYear, 1)
	assert.Equal(t, heat.ID, byYear[0].ID)

	byCategory, err := s.views.ListPublished(ctx, repository.MovieFilter{Category: "drama"})
	require.NoError(t, err)
	require.Len(t, byCategory, 1)

	byQuery, err := s.views.ListPublished(ctx, repository.MovieFilter{Query: "MATR"})
	require.NoError(t, err)
	require.Len(t, byQuery, 1)
	assert.Equal(t, matrix.ID, byQuery[0].ID)

	none, err := s.views.ListPublished(ctx, repository.MovieFilter{Genres: []string{"sci-fi"}, Years: []int{1995}})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestDetail(t *testing.T) {
	s := setup(t)
	ctx := context.Background()

	keanu := database.Actor{Name: "Keanu Reeves", Age: 56}
	lana := database.Actor{Name: "Lana Wachowski", Age: 55}
	require.NoError(t, s.db.Create(&keanu).Error)
	require.NoError(t, s.db.Create(&lana).Error)
	matrix := &database.Movie{Title: "The Matrix", URL: "matrix", ActorIDs: []uint{keanu.ID}, DirectorIDs: []uint{lana.ID}}
	require.NoError(t, s.db.Create(matrix).Error)
	require.NoError(t, s.db.Create(&database.MovieShot{Title: "Lobby", MovieID: matrix.ID}).Error)
	testutil.CreateMovie(t, s.db, "hidden", true)

	r1, _, err := s.reviews.Submit(ctx, validReview(matrix.ID))
	require.NoError(t, err)
	reply := validReview(matrix.ID)
	reply.ParentID = &r1.ID
	r2, _, err := s.reviews.Submit(ctx, reply)
	require.NoError(t, err)
	_, _, err = s.reviews.Submit(ctx, validReview(matrix.ID))
	require.NoError(t, err)

	_, err = s.ratings.Rate(ctx, service.RatingInput{IP: "10.0.0.1", MovieID: matrix.ID, StarID: testutil.Star(t, s.db, 5).ID})
	require.NoError(t, err)
	_, err = s.ratings.Rate(ctx, service.RatingInput{IP: "10.0.0.2", MovieID: matrix.ID, StarID: testutil.Star(t, s.db, 4).ID})
	require.NoError(t, err)

	detail, err := s.views.Detail(ctx, "matrix")
	require.NoError(t, err)
	assert.Equal(t, matrix.ID, detail.Movie.ID)
	require.Len(t, detail.Movie.Actors, 1)
	assert.Equal(t, "Keanu Reeves", detail.Movie.Actors[0].Name)
	require.Len(t, detail.Movie.Directors, 1)
	assert.Equal(t, "Lana Wachowski", detail.Movie.Directors[0].Name)
	require.Len(t, detail.Movie.Shots, 1)
	assert.Equal(t, int64(2), detail.Rating.Count)
	assert.InDelta(t, 4.5, detail.Rating.Average, 0.001)
	require.Len(t, detail.Stars, 5)
	assert.Equal(t, int16(5), detail.Stars[0].Value)

	require.Len(t, detail.Reviews, 2)
	assert.Equal(t, r1.ID, detail.Reviews[0].ID)
	require.Len(t, detail.Reviews[0].Replies, 1)
	assert.Equal(t, r2.ID, detail.Reviews[0].Replies[0].ID)
	assert.Empty(t, detail.Reviews[1].Replies)

	_, err = s.views.Detail(ctx, "hidden")
	assert.True(t, types.IsNotFound(err))
	_, err = s.views.Detail(ctx, "nope")
	assert.True(t, types.IsNotFound(err))
}

func TestDetail_IdempotentAcrossUnrelatedMutations(t *testing.T) {
	s := setup(t)
	ctx := context.Background()
	testutil.CreateMovie(t, s.db, "matrix", false)

	first, err := s.views.Detail(ctx, "matrix")
	require.NoError(t, err)

	other := testutil.CreateMovie(t, s.db, "other", false)
	_, _, err = s.reviews.Submit(ctx, validReview(other.ID))
	require.NoError(t, err)
	_, err = s.publication.Unpublish(ctx, []uint{other.ID})
	require.NoError(t, err)

	second, err := s.views.Detail(ctx, "matrix")
	require.NoError(t, err)
	assert.Equal(t, first.Movie.ID, second.Movie.ID)
	assert.Equal(t, first.Movie.URL, second.Movie.URL)
	assert.Equal(t, first.Movie.Title, second.Movie.Title)
	assert.Empty(t, second.Reviews)
}

func TestActorDetail(t *testing.T) {
	s := setup(t)
	ctx := context.Background()

	keanu := database.Actor{Name: "Keanu Reeves"}
	require.NoError(t, s.db.Create(&keanu).Error)
	shown := &database.Movie{Title: "Speed", URL: "speed", ActorIDs: []uint{keanu.ID}}
	require.NoError(t, s.db.Create(shown).Error)
	hidden := &database.Movie{Title: "Draft", URL: "draft", Draft: true, DirectorIDs: []uint{keanu.ID}}
	require.NoError(t, s.db.Create(hidden).Error)

	detail, err := s.views.ActorDetail(ctx, "Keanu Reeves")
	require.NoError(t, err)
	require.Len(t, detail.Movies, 1)
	assert.Equal(t, shown.ID, detail.Movies[0].ID)

	_, err = s.views.ActorDetail(ctx, "Nobody")
	assert.True(t, types.IsNotFound(err))
}

func TestRate(t *testing.T) {
	s := setup(t)
	ctx := context.Background()
	m := testutil.CreateMovie(t, s.db, "matrix", false)

	rating, err := s.ratings.Rate(ctx, service.RatingInput{IP: "192.168.0.7", MovieID: m.ID, StarID: testutil.Star(t, s.db, 3).ID})
	require.NoError(t, err)
	assert.Equal(t, int16(3), rating.Star.Value)

	rating, err = s.ratings.Rate(ctx, service.RatingInput{IP: "192.168.0.7", MovieID: m.ID, StarID: testutil.Star(t, s.db, 1).ID})
	require.NoError(t, err)
	assert.Equal(t, int16(1), rating.Star.Value)

	var n int64
	require.NoError(t, s.db.Model(&database.Rating{}).Count(&n).Error)
	assert.Equal(t, int64(1), n)

	_, err = s.ratings.Rate(ctx, service.RatingInput{IP: "192.168.0.7", MovieID: m.ID, StarID: 999})
	assert.True(t, types.IsValidation(err))

	_, err = s.ratings.Rate(ctx, service.RatingInput{IP: "not an ip", MovieID: m.ID, StarID: 1})
	assert.True(t, types.IsValidation(err))

	_, err = s.ratings.Rate(ctx, service.RatingInput{IP: "192.168.0.7", MovieID: 999, StarID: 1})
	assert.True(t, types.IsNotFound(err))
}
