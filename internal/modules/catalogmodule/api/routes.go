package api

import (
	"github.com/gin-gonic/gin"
	"github.com/mantonx/moviecatalog/internal/apiroutes"
)

// RegisterRoutes registers the public catalog routes
func RegisterRoutes(router *gin.Engine, handler *Handler) {
	router.GET("/", handler.GetMovies)
	router.POST("/add-rating/", handler.AddRating)
	router.GET("/actor/:name/", handler.GetActor)

	// The detail route takes the movie slug; the review route takes the
	// movie id in the same position.
	router.GET("/:slug/", handler.GetMovie)
	router.POST("/:slug/review/", handler.AddReview)

	apiroutes.Register("/", "GET", "Lists published movies. Filters: genre, year, category, q.")
	apiroutes.Register("/:slug/", "GET", "Shows a published movie with cast, shots, rating and reviews.")
	apiroutes.Register("/:id/review/", "POST", "Posts a review (name, email, text, parent) and redirects to the movie.")
	apiroutes.Register("/add-rating/", "POST", "Rates a movie (movie, star) once per client address.")
	apiroutes.Register("/actor/:name/", "GET", "Shows an actor with their published movies.")
}
