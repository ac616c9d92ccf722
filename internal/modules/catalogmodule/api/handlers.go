// Package api exposes the public catalog over HTTP
package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/mantonx/moviecatalog/internal/api"
	"github.com/mantonx/moviecatalog/internal/database"
	"github.com/mantonx/moviecatalog/internal/media"
	"github.com/mantonx/moviecatalog/internal/modules/catalogmodule/repository"
	"github.com/mantonx/moviecatalog/internal/modules/catalogmodule/service"
	"github.com/mantonx/moviecatalog/internal/types"
)

// Handler provides HTTP handlers for the public catalog
type Handler struct {
	views   *service.ViewService
	reviews *service.ReviewService
	ratings *service.RatingService
	storage media.Storage
}

// NewHandler creates a new catalog API handler
func NewHandler(views *service.ViewService, reviews *service.ReviewService, ratings *service.RatingService, storage media.Storage) *Handler {
	return &Handler{views: views, reviews: reviews, ratings: ratings, storage: storage}
}

// MovieSummary is one entry of the public movie list
type MovieSummary struct {
	ID       uint   `json:"id"`
	Title    string `json:"title"`
	Tagline  string `json:"tagline"`
	Year     int    `json:"year"`
	Poster   string `json:"poster"`
	Category string `json:"category,omitempty"`
	URL      string `json:"url"`
}

// GetMovies handles GET /
// It returns the published movies in ID order.
//
// Query parameters:
//   - genre: genre slug, repeatable
//   - year: release year, repeatable
//   - category: category slug
//   - q: case-insensitive title search
//   - limit, offset: pagination
func (h *Handler) GetMovies(c *gin.Context) {
	filter := repository.MovieFilter{
		Genres:   c.QueryArray("genre"),
		Category: c.Query("category"),
		Query:    c.Query("q"),
	}

	for _, y := range c.QueryArray("year") {
		year, err := strconv.Atoi(y)
		if err != nil {
			api.RespondWithError(c, types.NewFieldValidationError(map[string]string{"year": "enter a whole number"}))
			return
		}
		filter.Years = append(filter.Years, year)
	}
	if limitStr := c.Query("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil && limit > 0 {
			filter.Limit = limit
		}
	}
	if offsetStr := c.Query("offset"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil && offset > 0 {
			filter.Offset = offset
		}
	}

	movies, err := h.views.ListPublished(c.Request.Context(), filter)
	if err != nil {
		api.RespondWithError(c, err)
		return
	}

	result := make([]MovieSummary, 0, len(movies))
	for i := range movies {
		result = append(result, h.summary(&movies[i]))
	}
	c.JSON(http.StatusOK, gin.H{
		"movies": result,
		"count":  len(result),
	})
}

// GetMovie handles GET /:slug/
// It returns the published movie with its cast, shots, rating summary and
// review threads.
func (h *Handler) GetMovie(c *gin.Context) {
	detail, err := h.views.Detail(c.Request.Context(), c.Param("slug"))
	if err != nil {
		api.RespondWithError(c, err)
		return
	}

	movie := detail.Movie
	movie.Poster = h.storage.URL(movie.Poster)
	for i := range movie.Actors {
		movie.Actors[i].Image = h.storage.URL(movie.Actors[i].Image)
	}
	for i := range movie.Directors {
		movie.Directors[i].Image = h.storage.URL(movie.Directors[i].Image)
	}
	for i := range movie.Shots {
		movie.Shots[i].Image = h.storage.URL(movie.Shots[i].Image)
	}

	c.JSON(http.StatusOK, detail)
}

// reviewForm is the body of a review post, form encoded or JSON
type reviewForm struct {
	Name   string `form:"name" json:"name"`
	Email  string `form:"email" json:"email"`
	Text   string `form:"text" json:"text"`
	Parent *uint  `form:"parent" json:"parent"`
}

// AddReview handles POST /:slug/review/
// The path segment is the movie id. On success it redirects to the movie page.
func (h *Handler) AddReview(c *gin.Context) {
	movieID, err := strconv.ParseUint(c.Param("slug"), 10, 64)
	if err != nil {
		api.RespondWithNotFound(c, "movie", c.Param("slug"))
		return
	}

	var form reviewForm
	if err := c.ShouldBind(&form); err != nil {
		api.RespondWithValidationError(c, "invalid review", err.Error())
		return
	}
	if form.Parent != nil && *form.Parent == 0 {
		form.Parent = nil
	}

	_, redirect, err := h.reviews.Submit(c.Request.Context(), service.ReviewInput{
		MovieID:  uint(movieID),
		Name:     form.Name,
		Email:    form.Email,
		Text:     form.Text,
		ParentID: form.Parent,
	})
	if err != nil {
		api.RespondWithError(c, err)
		return
	}
	c.Redirect(http.StatusFound, redirect)
}

// ratingForm is the body of a star vote
type ratingForm struct {
	Movie uint `form:"movie" json:"movie"`
	Star  uint `form:"star" json:"star"`
}

// AddRating handles POST /add-rating/
// The vote is keyed by the client address; voting again changes the star.
func (h *Handler) AddRating(c *gin.Context) {
	var form ratingForm
	if err := c.ShouldBind(&form); err != nil {
		api.RespondWithValidationError(c, "invalid rating", err.Error())
		return
	}

	rating, err := h.ratings.Rate(c.Request.Context(), service.RatingInput{
		IP:      clientIP(c),
		MovieID: form.Movie,
		StarID:  form.Star,
	})
	if err != nil {
		api.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rating)
}

// GetActor handles GET /actor/:name/
func (h *Handler) GetActor(c *gin.Context) {
	detail, err := h.views.ActorDetail(c.Request.Context(), c.Param("name"))
	if err != nil {
		api.RespondWithError(c, err)
		return
	}

	detail.Actor.Image = h.storage.URL(detail.Actor.Image)
	movies := make([]MovieSummary, 0, len(detail.Movies))
	for i := range detail.Movies {
		movies = append(movies, h.summary(&detail.Movies[i]))
	}
	c.JSON(http.StatusOK, gin.H{
		"actor":  detail.Actor,
		"movies": movies,
	})
}

func (h *Handler) summary(m *database.Movie) MovieSummary {
	s := MovieSummary{
		ID:      m.ID,
		Title:   m.Title,
		Tagline: m.Tagline,
		Year:    m.Year,
		Poster:  h.storage.URL(m.Poster),
		URL:     m.AbsoluteURL(),
	}
	if m.Category != nil {
		s.Category = m.Category.Name
	}
	return s
}

// clientIP strips an IPv6 zone so the address fits the rating column
func clientIP(c *gin.Context) string {
	ip := c.ClientIP()
	if i := strings.IndexByte(ip, '%'); i >= 0 {
		ip = ip[:i]
	}
	return ip
}
