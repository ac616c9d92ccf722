package database

import (
	"fmt"
	"strings"
	"time"

	"github.com/gosimple/slug"
	"github.com/mantonx/moviecatalog/internal/types"
	"gorm.io/gorm"
)

// fresh returns a session on the same connection (and transaction) as tx
// without the statement state of the hook that is running. Hooks are skipped:
// batch statements issued from a hook must not re-enter model hooks.
func fresh(tx *gorm.DB) *gorm.DB {
	return tx.Session(&gorm.Session{NewDB: true, SkipHooks: true})
}

// =============================================================================
// SLUGS
// =============================================================================

func (c *Category) BeforeSave(tx *gorm.DB) error {
	if strings.TrimSpace(c.URL) == "" {
		c.URL = slug.Make(c.Name)
	}
	return checkSlug(c.URL)
}

func (g *Genre) BeforeSave(tx *gorm.DB) error {
	if strings.TrimSpace(g.URL) == "" {
		g.URL = slug.Make(g.Name)
	}
	return checkSlug(g.URL)
}

func checkSlug(s string) error {
	if s == "" {
		return types.NewFieldValidationError(map[string]string{"url": "this field is required"})
	}
	if !slug.IsSlug(s) {
		return types.NewFieldValidationError(map[string]string{"url": "enter a valid slug of letters, numbers, hyphens"})
	}
	return nil
}

// =============================================================================
// MOVIE
// =============================================================================

// reservedMovieSlugs are first path segments owned by fixed routes; a movie
// using one could never be reached at /<url>/.
var reservedMovieSlugs = map[string]bool{
	"admin":      true,
	"api":        true,
	"media":      true,
	"actor":      true,
	"add-rating": true,
}

func (m *Movie) BeforeSave(tx *gorm.DB) error {
	if strings.TrimSpace(m.URL) == "" {
		m.URL = slug.Make(m.Title)
	}
	if err := checkSlug(m.URL); err != nil {
		return err
	}
	if reservedMovieSlugs[m.URL] {
		return types.NewFieldValidationError(map[string]string{"url": "this address is reserved"})
	}
	return nil
}

func (m *Movie) BeforeCreate(tx *gorm.DB) error {
	if m.WorldPremiere.IsZero() {
		now := time.Now().UTC()
		m.WorldPremiere = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	}
	return nil
}

// AfterSave replaces the directors, actors and genres when their id lists were
// supplied with the movie.
func (m *Movie) AfterSave(tx *gorm.DB) error {
	db := fresh(tx)
	if m.DirectorIDs != nil {
		if err := checkIDs(db, &Actor{}, "director_ids", m.DirectorIDs); err != nil {
			return err
		}
		if err := replaceJoin(db, "movie_directors", "actor_id", m.ID, m.DirectorIDs); err != nil {
			return err
		}
	}
	if m.ActorIDs != nil {
		if err := checkIDs(db, &Actor{}, "actor_ids", m.ActorIDs); err != nil {
			return err
		}
		if err := replaceJoin(db, "movie_actors", "actor_id", m.ID, m.ActorIDs); err != nil {
			return err
		}
	}
	if m.GenreIDs != nil {
		if err := checkIDs(db, &Genre{}, "genre_ids", m.GenreIDs); err != nil {
			return err
		}
		if err := replaceJoin(db, "movie_genres", "genre_id", m.ID, m.GenreIDs); err != nil {
			return err
		}
	}
	return nil
}

func checkIDs(db *gorm.DB, model interface{}, field string, ids []uint) error {
	unique := uniqueIDs(ids)
	if len(unique) == 0 {
		return nil
	}
	var count int64
	if err := db.Model(model).Where("id IN ?", ids).Count(&count).Error; err != nil {
		return err
	}
	if int(count) != len(unique) {
		return types.NewFieldValidationError(map[string]string{field: "unknown id in list"})
	}
	return nil
}

// replaceJoin rewrites the join rows of one movie.
func replaceJoin(db *gorm.DB, table, otherColumn string, movieID uint, ids []uint) error {
	if err := db.Exec("DELETE FROM "+table+" WHERE movie_id = ?", movieID).Error; err != nil {
		return fmt.Errorf("failed to clear %s: %w", table, err)
	}
	seen := make(map[uint]bool, len(ids))
	rows := make([]map[string]interface{}, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		rows = append(rows, map[string]interface{}{"movie_id": movieID, otherColumn: id})
	}
	if len(rows) == 0 {
		return nil
	}
	if err := db.Table(table).Create(&rows).Error; err != nil {
		return fmt.Errorf("failed to fill %s: %w", table, err)
	}
	return nil
}

// BeforeDelete removes everything the movie owns.
func (m *Movie) BeforeDelete(tx *gorm.DB) error {
	if m.ID == 0 {
		return fmt.Errorf("movie delete requires a loaded movie")
	}
	db := fresh(tx)
	if err := db.Where("movie_id = ?", m.ID).Delete(&MovieShot{}).Error; err != nil {
		return err
	}
	if err := db.Where("movie_id = ?", m.ID).Delete(&Review{}).Error; err != nil {
		return err
	}
	if err := db.Where("movie_id = ?", m.ID).Delete(&Rating{}).Error; err != nil {
		return err
	}
	for _, table := range []string{"movie_directors", "movie_actors", "movie_genres"} {
		if err := db.Exec("DELETE FROM "+table+" WHERE movie_id = ?", m.ID).Error; err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// REVIEW
// =============================================================================

// BeforeSave keeps reply threads inside one movie and acyclic.
func (r *Review) BeforeSave(tx *gorm.DB) error {
	if r.ID != 0 {
		// Replies stay on their parent's movie.
		var moved int64
		if err := fresh(tx).Model(&Review{}).
			Where("parent_id = ? AND movie_id <> ?", r.ID, r.MovieID).
			Count(&moved).Error; err != nil {
			return err
		}
		if moved > 0 {
			return types.NewFieldValidationError(map[string]string{
				"movie_id": "a review with replies cannot move to another movie",
			})
		}
	}
	if r.ParentID == nil {
		return nil
	}
	if r.ID != 0 && *r.ParentID == r.ID {
		return types.NewFieldValidationError(map[string]string{"parent": "a review cannot answer itself"})
	}

	db := fresh(tx)
	var parent Review
	if err := db.Select("id", "movie_id", "parent_id").First(&parent, *r.ParentID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return types.NewFieldValidationError(map[string]string{"parent": "parent review does not exist"})
		}
		return err
	}
	if parent.MovieID != r.MovieID {
		return types.NewFieldValidationError(map[string]string{"parent": "parent review belongs to another movie"})
	}

	if r.ID == 0 {
		return nil
	}
	// Walk up from the new parent; meeting r means the update would close a cycle.
	seen := map[uint]bool{parent.ID: true}
	next := parent.ParentID
	for next != nil {
		if *next == r.ID {
			return types.NewFieldValidationError(map[string]string{"parent": "a review cannot answer one of its replies"})
		}
		if seen[*next] {
			break
		}
		seen[*next] = true
		var ancestor Review
		if err := db.Select("id", "parent_id").First(&ancestor, *next).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				break
			}
			return err
		}
		next = ancestor.ParentID
	}
	return nil
}

// BeforeDelete turns the direct replies into top-level reviews.
func (r *Review) BeforeDelete(tx *gorm.DB) error {
	if r.ID == 0 {
		return nil
	}
	return fresh(tx).Model(&Review{}).Where("parent_id = ?", r.ID).Update("parent_id", nil).Error
}

// =============================================================================
// LOOKUPS AND PEOPLE
// =============================================================================

func (c *Category) BeforeDelete(tx *gorm.DB) error {
	if c.ID == 0 {
		return nil
	}
	return fresh(tx).Model(&Movie{}).Where("category_id = ?", c.ID).Update("category_id", nil).Error
}

func (g *Genre) BeforeDelete(tx *gorm.DB) error {
	if g.ID == 0 {
		return nil
	}
	return fresh(tx).Exec("DELETE FROM movie_genres WHERE genre_id = ?", g.ID).Error
}

func (a *Actor) BeforeDelete(tx *gorm.DB) error {
	if a.ID == 0 {
		return nil
	}
	db := fresh(tx)
	for _, table := range []string{"movie_directors", "movie_actors"} {
		if err := db.Exec("DELETE FROM "+table+" WHERE actor_id = ?", a.ID).Error; err != nil {
			return err
		}
	}
	return nil
}

func (s *RatingStar) BeforeSave(tx *gorm.DB) error {
	if s.Value < 1 || s.Value > 5 {
		return types.NewFieldValidationError(map[string]string{"value": "must be between 1 and 5"})
	}
	return nil
}

func (s *RatingStar) BeforeDelete(tx *gorm.DB) error {
	if s.ID == 0 {
		return nil
	}
	return fresh(tx).Where("star_id = ?", s.ID).Delete(&Rating{}).Error
}

func uniqueIDs(ids []uint) map[uint]struct{} {
	set := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
