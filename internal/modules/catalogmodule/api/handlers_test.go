package api_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/mantonx/moviecatalog/internal/database"
	"github.com/mantonx/moviecatalog/internal/media"
	"github.com/mantonx/moviecatalog/internal/modules/catalogmodule/api"
	"github.com/mantonx/moviecatalog/internal/modules/catalogmodule/repository"
	"github.com/mantonx/moviecatalog/internal/modules/catalogmodule/service"
	"github.com/mantonx/moviecatalog/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.NewTestDB(t)
	movies := repository.NewMovieRepository(db)
	reviews := repository.NewReviewRepository(db)
	ratings := repository.NewRatingRepository(db)
	storage := media.NewLocalStorage(t.TempDir(), "/media/", 0)

	handler := api.NewHandler(
		service.NewViewService(movies, reviews, ratings),
		service.NewReviewService(movies, reviews),
		service.NewRatingService(movies, ratings),
		storage,
	)
	router := gin.New()
	api.RegisterRoutes(router, handler)
	return router, db
}

func postForm(router http.Handler, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func get(router http.Handler, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

type errorBody struct {
	Success bool `json:"success"`
	Error   struct {
		Code   string            `json:"code"`
		Fields map[string]string `json:"fields"`
	} `json:"error"`
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.False(t, body.Success)
	return body
}

func TestGetMovies(t *testing.T) {
	router, db := setupRouter(t)
	testutil.CreateMovie(t, db, "matrix", false)
	testutil.CreateMovie(t, db, "hidden", true)

	w := get(router, "/")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Movies []api.MovieSummary `json:"movies"`
		Count  int                `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, 1, body.Count)
	assert.Equal(t, "/matrix/", body.Movies[0].URL)

	w = get(router, "/?year=abc")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", decodeError(t, w).Error.Code)
}

func TestGetMovie(t *testing.T) {
	router, db := setupRouter(t)
	m := testutil.CreateMovie(t, db, "matrix", false)
	require.NoError(t, db.Model(m).UpdateColumn("poster", "posters/matrix.jpg").Error)
	testutil.CreateMovie(t, db, "hidden", true)

	w := get(router, "/matrix/")
	require.Equal(t, http.StatusOK, w.Code)

	var detail struct {
		Movie   database.Movie   `json:"movie"`
		Reviews []map[string]any `json:"reviews"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &detail))
	assert.Equal(t, m.ID, detail.Movie.ID)
	assert.Equal(t, "/media/posters/matrix.jpg", detail.Movie.Poster)
	assert.Empty(t, detail.Reviews)

	w = get(router, "/hidden/")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", decodeError(t, w).Error.Code)

	w = get(router, "/nope/")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetMovie_ReviewsWithoutEmail(t *testing.T) {
	router, db := setupRouter(t)
	m := testutil.CreateMovie(t, db, "matrix", false)

	w := postForm(router, fmt.Sprintf("/%d/review/", m.ID), url.Values{
		"name": {"Neo"}, "email": {"secret@private.example"}, "text": {"whoa"},
	})
	require.Equal(t, http.StatusFound, w.Code)
	var first database.Review
	require.NoError(t, db.First(&first).Error)
	w = postForm(router, fmt.Sprintf("/%d/review/", m.ID), url.Values{
		"name": {"Trinity"}, "email": {"trinity@private.example"}, "text": {"agreed"},
		"parent": {fmt.Sprint(first.ID)},
	})
	require.Equal(t, http.StatusFound, w.Code)

	w = get(router, "/matrix/")
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "private.example")
	assert.NotContains(t, w.Body.String(), `"email"`)

	var detail struct {
		Reviews []service.ReviewNode `json:"reviews"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &detail))
	require.Len(t, detail.Reviews, 1)
	assert.Equal(t, "Neo", detail.Reviews[0].Name)
	assert.Equal(t, "whoa", detail.Reviews[0].Text)
	require.Len(t, detail.Reviews[0].Replies, 1)
	assert.Equal(t, "Trinity", detail.Reviews[0].Replies[0].Name)
	assert.Equal(t, &first.ID, detail.Reviews[0].Replies[0].ParentID)
}

func TestAddReview_RedirectsToMovie(t *testing.T) {
	router, db := setupRouter(t)
	m := testutil.CreateMovie(t, db, "matrix", false)

	w := postForm(router, fmt.Sprintf("/%d/review/", m.ID), url.Values{
		"name":  {"A"},
		"email": {"a@x.com"},
		"text":  {"great"},
	})
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/matrix/", w.Header().Get("Location"))

	var reviews []database.Review
	require.NoError(t, db.Find(&reviews).Error)
	require.Len(t, reviews, 1)
	assert.Equal(t, m.ID, reviews[0].MovieID)
	assert.Nil(t, reviews[0].ParentID)
}

func TestAddReview_EmptyParentIsTopLevel(t *testing.T) {
	router, db := setupRouter(t)
	m := testutil.CreateMovie(t, db, "matrix", false)

	w := postForm(router, fmt.Sprintf("/%d/review/", m.ID), url.Values{
		"name": {"A"}, "email": {"a@x.com"}, "text": {"great"}, "parent": {""},
	})
	require.Equal(t, http.StatusFound, w.Code)

	var review database.Review
	require.NoError(t, db.First(&review).Error)
	assert.Nil(t, review.ParentID)
}

func TestAddReview_Rejects(t *testing.T) {
	router, db := setupRouter(t)
	x := testutil.CreateMovie(t, db, "x-movie", false)
	y := testutil.CreateMovie(t, db, "y-movie", false)

	w := postForm(router, fmt.Sprintf("/%d/review/", x.ID), url.Values{
		"name": {"A"}, "email": {"nope"}, "text": {"great"},
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeError(t, w)
	assert.Equal(t, "VALIDATION_ERROR", body.Error.Code)
	assert.Contains(t, body.Error.Fields, "email")

	parent := database.Review{MovieID: x.ID, Name: "B", Email: "b@x.com", Text: "first"}
	require.NoError(t, db.Create(&parent).Error)

	w = postForm(router, fmt.Sprintf("/%d/review/", y.ID), url.Values{
		"name": {"A"}, "email": {"a@x.com"}, "text": {"reply"}, "parent": {fmt.Sprint(parent.ID)},
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeError(t, w).Error.Fields, "parent")

	w = postForm(router, "/not-a-number/review/", url.Values{"name": {"A"}})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = postForm(router, "/9999/review/", url.Values{"name": {"A"}, "email": {"a@x.com"}, "text": {"t"}})
	assert.Equal(t, http.StatusNotFound, w.Code)

	var count int64
	require.NoError(t, db.Model(&database.Review{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestAddRating(t *testing.T) {
	router, db := setupRouter(t)
	m := testutil.CreateMovie(t, db, "matrix", false)
	star := testutil.Star(t, db, 4)

	w := postForm(router, "/add-rating/", url.Values{
		"movie": {fmt.Sprint(m.ID)},
		"star":  {fmt.Sprint(star.ID)},
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var rating database.Rating
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rating))
	assert.Equal(t, m.ID, rating.MovieID)
	assert.Equal(t, "192.0.2.1", rating.IP)

	w = postForm(router, "/add-rating/", url.Values{"movie": {fmt.Sprint(m.ID)}, "star": {"999"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetActor(t *testing.T) {
	router, db := setupRouter(t)
	keanu := database.Actor{Name: "Keanu Reeves", Image: "actors/keanu.jpg"}
	require.NoError(t, db.Create(&keanu).Error)
	require.NoError(t, db.Create(&database.Movie{Title: "Speed", URL: "speed", ActorIDs: []uint{keanu.ID}}).Error)

	w := get(router, "/actor/Keanu%20Reeves/")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Actor  database.Actor     `json:"actor"`
		Movies []api.MovieSummary `json:"movies"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "/media/actors/keanu.jpg", body.Actor.Image)
	require.Len(t, body.Movies, 1)
	assert.Equal(t, "/speed/", body.Movies[0].URL)

	w = get(router, "/actor/Nobody/")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
