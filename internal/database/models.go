package database

import (
	"time"
)

// =============================================================================
// LOOKUP TABLES
// =============================================================================

// Category groups movies (feature film, cartoon, series...)
type Category struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"size:150;not null" json:"name" validate:"required,max=150"`
	Description string `gorm:"type:text" json:"description"`
	URL         string `gorm:"size:160;not null;uniqueIndex" json:"url" validate:"max=160"`
}

// Genre of a movie
type Genre struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"size:100;not null" json:"name" validate:"required,max=100"`
	Description string `gorm:"type:text" json:"description"`
	URL         string `gorm:"size:160;not null;uniqueIndex" json:"url" validate:"max=160"`
}

// RatingStar is one of the fixed star values a visitor can vote with
type RatingStar struct {
	ID    uint  `gorm:"primaryKey" json:"id"`
	Value int16 `gorm:"not null;uniqueIndex" json:"value" validate:"min=1,max=5"`
}

// =============================================================================
// PEOPLE
// =============================================================================

// Actor is a person appearing in or directing movies. The same row is used for
// both roles; the role comes from the join table.
type Actor struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"size:100;not null;index" json:"name" validate:"required,max=100"`
	Age         uint16 `gorm:"not null;default:0" json:"age"`
	Description string `gorm:"type:text" json:"description"`
	Image       string `gorm:"size:255" json:"image"` // file reference
}

// =============================================================================
// MOVIES
// =============================================================================

// Movie is a catalog entry. Draft movies are hidden from public listings.
type Movie struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Title         string    `gorm:"size:100;not null;index" json:"title" validate:"required,max=100"`
	Tagline       string    `gorm:"size:100;not null;default:''" json:"tagline" validate:"max=100"`
	Description   string    `gorm:"type:text" json:"description"`
	Poster        string    `gorm:"size:255" json:"poster"` // file reference
	Year          int       `gorm:"not null;default:2019;index" json:"year"`
	Country       string    `gorm:"size:30" json:"country" validate:"max=30"`
	WorldPremiere time.Time `gorm:"type:date" json:"world_premiere"`
	Budget        uint      `gorm:"not null;default:0" json:"budget"` // dollars
	FeesInUSA     uint      `gorm:"column:fees_in_usa;not null;default:0" json:"fees_in_usa"`
	FeesInWorld   uint      `gorm:"column:fees_in_world;not null;default:0" json:"fees_in_world"`
	CategoryID    *uint     `gorm:"index" json:"category_id"`
	Category      *Category `gorm:"constraint:OnDelete:SET NULL" json:"category,omitempty" validate:"-"`
	URL           string    `gorm:"size:130;not null;uniqueIndex" json:"url" validate:"max=130"`
	Draft         bool      `gorm:"not null;default:false;index" json:"draft"`

	Directors []Actor `gorm:"many2many:movie_directors;constraint:OnDelete:CASCADE" json:"directors,omitempty" validate:"-"`
	Actors    []Actor `gorm:"many2many:movie_actors;constraint:OnDelete:CASCADE" json:"actors,omitempty" validate:"-"`
	Genres    []Genre `gorm:"many2many:movie_genres;constraint:OnDelete:CASCADE" json:"genres,omitempty" validate:"-"`

	Shots   []MovieShot `gorm:"constraint:OnDelete:CASCADE" json:"shots,omitempty" validate:"-"`
	Reviews []Review    `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Ratings []Rating    `gorm:"constraint:OnDelete:CASCADE" json:"-"`

	// When non-nil, the matching association is replaced after save.
	DirectorIDs []uint `gorm:"-" json:"director_ids,omitempty"`
	ActorIDs    []uint `gorm:"-" json:"actor_ids,omitempty"`
	GenreIDs    []uint `gorm:"-" json:"genre_ids,omitempty"`
}

// AbsoluteURL is the public detail page of the movie
func (m *Movie) AbsoluteURL() string {
	return "/" + m.URL + "/"
}

// MovieShot is a still frame from a movie
type MovieShot struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Title       string `gorm:"size:100;not null" json:"title" validate:"required,max=100"`
	Description string `gorm:"type:text" json:"description"`
	Image       string `gorm:"size:255" json:"image"` // file reference
	MovieID     uint   `gorm:"not null;index" json:"movie_id" validate:"required"`
	Movie       *Movie `json:"movie,omitempty" validate:"-"`
}

// =============================================================================
// VISITOR INPUT
// =============================================================================

// Rating is a star vote. One rating per (ip, movie).
type Rating struct {
	ID      uint        `gorm:"primaryKey" json:"id"`
	IP      string      `gorm:"column:ip;size:45;not null;uniqueIndex:idx_rating_ip_movie" json:"ip" validate:"required,max=45"`
	StarID  uint        `gorm:"not null;index" json:"star_id" validate:"required"`
	Star    *RatingStar `gorm:"constraint:OnDelete:CASCADE" json:"star,omitempty" validate:"-"`
	MovieID uint        `gorm:"not null;uniqueIndex:idx_rating_ip_movie" json:"movie_id" validate:"required"`
	Movie   *Movie      `json:"movie,omitempty" validate:"-"`
}

// Review is a visitor comment. ParentID links a reply to the review it
// answers; the parent always belongs to the same movie.
type Review struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Email     string    `gorm:"size:254;not null" json:"email" validate:"required,email,max=254"`
	Name      string    `gorm:"size:100;not null" json:"name" validate:"required,max=100"`
	Text      string    `gorm:"type:text;not null" json:"text" validate:"required,max=5000"`
	ParentID  *uint     `gorm:"index" json:"parent_id"`
	MovieID   uint      `gorm:"not null;index" json:"movie_id" validate:"required"`
	Movie     *Movie    `json:"movie,omitempty" validate:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// AllModels lists every catalog table in migration order
func AllModels() []interface{} {
	return []interface{}{
		&Category{},
		&Genre{},
		&Actor{},
		&RatingStar{},
		&Movie{},
		&MovieShot{},
		&Rating{},
		&Review{},
	}
}
