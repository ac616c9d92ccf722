package adminmodule

import (
	"context"

	"github.com/mantonx/moviecatalog/internal/media"
	"gorm.io/gorm"
)

// ListFilter is a sidebar filter of a change list: the query parameter
// ?<Param>=<value> restricts the list to rows where Column equals value.
type ListFilter struct {
	Param  string `json:"param"`
	Column string `json:"-"`
}

// ActionResult is what a bulk action reports back to the operator
type ActionResult struct {
	Count   int64  `json:"count"`
	Message string `json:"message"`
}

// Action is a bulk operation on selected rows of a change list
type Action struct {
	Name        string
	Description string
	// Permission required to run the action; defaults to "<model>.change"
	Permission string
	Run        func(ctx context.Context, ids []uint) (*ActionResult, error)
}

// ModelAdmin is the explicit admin configuration of one entity
type ModelAdmin[T any] struct {
	// Name is the URL segment, e.g. "movies"
	Name string
	// Model is the permission prefix, e.g. "movie" for "movie.change"
	Model string
	// Table is used to qualify columns when joins are involved
	Table string

	ListDisplay      []string
	ListDisplayLinks []string
	ListFilter       []ListFilter
	SearchFields     []string // qualified columns
	SearchJoins      []string
	ListPreload      []string

	// ReadonlyFields keep their stored value on update
	ReadonlyFields []string

	// Computed are list columns derived from a row, e.g. thumbnails
	Computed map[string]func(*T) interface{}
	// ReadonlyComputed are derived values shown on the change form
	ReadonlyComputed map[string]func(*T) interface{}

	// AfterLoad fills fields of a loaded object that are not columns
	AfterLoad func(ctx context.Context, db *gorm.DB, obj *T) error

	// Files lists the media references an object holds. References dropped
	// by an update, or held by a deleted object, are removed from Storage
	// after the change commits.
	Files   func(*T) []string
	Storage media.Storage

	Inlines []Inline
	Actions []Action
	PerPage int
}

func (m *ModelAdmin[T]) perm(action string) string {
	return m.Model + "." + action
}

func (m *ModelAdmin[T]) perPage() int {
	if m.PerPage > 0 {
		return m.PerPage
	}
	return 100
}

func (m *ModelAdmin[T]) action(name string) (Action, bool) {
	for _, a := range m.Actions {
		if a.Name == name {
			if a.Permission == "" {
				a.Permission = m.perm("change")
			}
			return a, true
		}
	}
	return Action{}, false
}

func (m *ModelAdmin[T]) files(obj *T) []string {
	if m.Files == nil {
		return nil
	}
	return m.Files(obj)
}

// releasedFiles returns the references of before that after no longer holds
func releasedFiles(before, after []string) []string {
	kept := make(map[string]bool, len(after))
	for _, ref := range after {
		kept[ref] = true
	}
	var released []string
	for _, ref := range before {
		if ref != "" && !kept[ref] {
			released = append(released, ref)
		}
	}
	return released
}
