package adminmodule

import (
	"context"
	"fmt"

	"github.com/mantonx/moviecatalog/internal/database"
	"github.com/mantonx/moviecatalog/internal/media"
	"github.com/mantonx/moviecatalog/internal/modules/catalogmodule/service"
	"gorm.io/gorm"
)

// Publisher runs the movie publication actions
type Publisher interface {
	Publish(ctx context.Context, ids []uint) (*service.PublicationResult, error)
	Unpublish(ctx context.Context, ids []uint) (*service.PublicationResult, error)
}

// NewSite registers the catalog entities with their admin configuration
func NewSite(title, header string, db *gorm.DB, storage media.Storage, publisher Publisher) *Site {
	site := &Site{Title: title, Header: header}

	Register(site, NewResource(categoryAdmin(), db))
	Register(site, NewResource(genreAdmin(), db))
	Register(site, NewResource(actorAdmin(storage), db))
	Register(site, NewResource(movieAdmin(storage, publisher), db))
	Register(site, NewResource(shotAdmin(storage), db))
	Register(site, NewResource(ratingStarAdmin(), db))
	Register(site, NewResource(ratingAdmin(), db))
	Register(site, NewResource(reviewAdmin(), db))

	return site
}

func categoryAdmin() ModelAdmin[database.Category] {
	return ModelAdmin[database.Category]{
		Name:             "categories",
		Model:            "category",
		Table:            "categories",
		ListDisplay:      []string{"id", "name", "url"},
		ListDisplayLinks: []string{"name"},
	}
}

func genreAdmin() ModelAdmin[database.Genre] {
	return ModelAdmin[database.Genre]{
		Name:        "genres",
		Model:       "genre",
		Table:       "genres",
		ListDisplay: []string{"name", "url"},
	}
}

func actorAdmin(storage media.Storage) ModelAdmin[database.Actor] {
	image := func(a *database.Actor) interface{} {
		return media.Thumbnail(storage, a.Image, media.ListThumbnail)
	}
	return ModelAdmin[database.Actor]{
		Name:             "actors",
		Model:            "actor",
		Table:            "actors",
		ListDisplay:      []string{"name", "age", "get_image"},
		SearchFields:     []string{"actors.name"},
		Computed:         map[string]func(*database.Actor) interface{}{"get_image": image},
		ReadonlyComputed: map[string]func(*database.Actor) interface{}{"get_image": image},
		Files:            func(a *database.Actor) []string { return []string{a.Image} },
		Storage:          storage,
	}
}

func movieAdmin(storage media.Storage, publisher Publisher) ModelAdmin[database.Movie] {
	shots := &InlineAdmin[database.MovieShot]{
		Name: "shots",
		FK:   "movie_id",
		Computed: map[string]func(*database.MovieShot) interface{}{
			"get_image": func(s *database.MovieShot) interface{} {
				return media.Thumbnail(storage, s.Image, media.InlineThumbnail)
			},
		},
		Files: shotFiles,
	}
	reviews := &InlineAdmin[database.Review]{
		Name:           "reviews",
		FK:             "movie_id",
		ReadonlyFields: []string{"name", "email"},
	}

	return ModelAdmin[database.Movie]{
		Name:             "movies",
		Model:            "movie",
		Table:            "movies",
		ListDisplay:      []string{"title", "category", "url", "draft"},
		ListDisplayLinks: []string{"title"},
		ListFilter: []ListFilter{
			{Param: "category", Column: "movies.category_id"},
			{Param: "year", Column: "movies.year"},
		},
		SearchFields: []string{"movies.title", "categories.name"},
		SearchJoins:  []string{"LEFT JOIN categories ON categories.id = movies.category_id"},
		ListPreload:  []string{"Category"},
		Computed: map[string]func(*database.Movie) interface{}{
			"category": func(m *database.Movie) interface{} {
				if m.Category == nil {
					return nil
				}
				return m.Category.Name
			},
		},
		ReadonlyComputed: map[string]func(*database.Movie) interface{}{
			"get_image": func(m *database.Movie) interface{} {
				return media.Thumbnail(storage, m.Poster, media.PosterThumbnail)
			},
		},
		AfterLoad: loadMovieAssociations,
		Files:     func(m *database.Movie) []string { return []string{m.Poster} },
		Storage:   storage,
		Inlines:   []Inline{reviews, shots},
		Actions: []Action{
			{
				Name:        "publish",
				Description: "Publish",
				Run:         publicationAction(publisher.Publish),
			},
			{
				Name:        "unpublish",
				Description: "Unpublish",
				Run:         publicationAction(publisher.Unpublish),
			},
		},
	}
}

func publicationAction(run func(context.Context, []uint) (*service.PublicationResult, error)) func(context.Context, []uint) (*ActionResult, error) {
	return func(ctx context.Context, ids []uint) (*ActionResult, error) {
		res, err := run(ctx, ids)
		if err != nil {
			return nil, err
		}
		return &ActionResult{Count: res.Count, Message: res.Message}, nil
	}
}

// loadMovieAssociations fills the director, actor and genre id lists so the
// change form round-trips them
func loadMovieAssociations(ctx context.Context, db *gorm.DB, m *database.Movie) error {
	lists := []struct {
		table  string
		column string
		dst    *[]uint
	}{
		{"movie_directors", "actor_id", &m.DirectorIDs},
		{"movie_actors", "actor_id", &m.ActorIDs},
		{"movie_genres", "genre_id", &m.GenreIDs},
	}
	for _, l := range lists {
		ids := []uint{}
		err := db.WithContext(ctx).Table(l.table).
			Where("movie_id = ?", m.ID).
			Order(l.column+" ASC").
			Pluck(l.column, &ids).Error
		if err != nil {
			return fmt.Errorf("failed to load %s: %w", l.table, err)
		}
		*l.dst = ids
	}
	return nil
}

func shotAdmin(storage media.Storage) ModelAdmin[database.MovieShot] {
	return ModelAdmin[database.MovieShot]{
		Name:        "shots",
		Model:       "movieshot",
		Table:       "movie_shots",
		ListDisplay: []string{"title", "movie", "get_image"},
		ListPreload: []string{"Movie"},
		ListFilter:  []ListFilter{{Param: "movie", Column: "movie_shots.movie_id"}},
		Computed: map[string]func(*database.MovieShot) interface{}{
			"movie": movieTitle(func(s *database.MovieShot) *database.Movie { return s.Movie }),
			"get_image": func(s *database.MovieShot) interface{} {
				return media.Thumbnail(storage, s.Image, media.ListThumbnail)
			},
		},
		ReadonlyComputed: map[string]func(*database.MovieShot) interface{}{
			"get_image": func(s *database.MovieShot) interface{} {
				return media.Thumbnail(storage, s.Image, media.InlineThumbnail)
			},
		},
		Files:   shotFiles,
		Storage: storage,
	}
}

func shotFiles(s *database.MovieShot) []string {
	return []string{s.Image}
}

func ratingStarAdmin() ModelAdmin[database.RatingStar] {
	return ModelAdmin[database.RatingStar]{
		Name:  "rating-stars",
		Model: "ratingstar",
		Table: "rating_stars",
	}
}

func ratingAdmin() ModelAdmin[database.Rating] {
	return ModelAdmin[database.Rating]{
		Name:        "ratings",
		Model:       "rating",
		Table:       "ratings",
		ListDisplay: []string{"ip", "star", "movie"},
		ListPreload: []string{"Star", "Movie"},
		ListFilter:  []ListFilter{{Param: "movie", Column: "ratings.movie_id"}},
		Computed: map[string]func(*database.Rating) interface{}{
			"star": func(r *database.Rating) interface{} {
				if r.Star == nil {
					return nil
				}
				return r.Star.Value
			},
			"movie": movieTitle(func(r *database.Rating) *database.Movie { return r.Movie }),
		},
	}
}

func reviewAdmin() ModelAdmin[database.Review] {
	return ModelAdmin[database.Review]{
		Name:           "reviews",
		Model:          "review",
		Table:          "reviews",
		ListDisplay:    []string{"name", "email", "parent", "movie", "id"},
		ListPreload:    []string{"Movie"},
		ListFilter:     []ListFilter{{Param: "movie", Column: "reviews.movie_id"}},
		SearchFields:   []string{"reviews.name", "reviews.email"},
		ReadonlyFields: []string{"name", "email"},
		Computed: map[string]func(*database.Review) interface{}{
			"parent": func(r *database.Review) interface{} {
				if r.ParentID == nil {
					return nil
				}
				return *r.ParentID
			},
			"movie": movieTitle(func(r *database.Review) *database.Movie { return r.Movie }),
		},
	}
}

func movieTitle[T any](get func(*T) *database.Movie) func(*T) interface{} {
	return func(obj *T) interface{} {
		if m := get(obj); m != nil {
			return m.Title
		}
		return nil
	}
}
