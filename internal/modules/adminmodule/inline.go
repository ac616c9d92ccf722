package adminmodule

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mantonx/moviecatalog/internal/types"
	"github.com/mantonx/moviecatalog/internal/validation"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Inline edits the child rows of an object from the parent's change form
type Inline interface {
	InlineName() string
	List(ctx context.Context, db *gorm.DB, parentID uint) ([]map[string]interface{}, error)
	// Apply returns the media references the edited rows released
	Apply(tx *gorm.DB, parentID uint, rows []json.RawMessage) ([]string, error)
	// StoredFiles returns the media references held by all rows of a parent
	StoredFiles(ctx context.Context, db *gorm.DB, parentID uint) ([]string, error)
}

// InlineAdmin configures the inline rows of type C, linked to the parent
// through the FK field (by JSON name)
type InlineAdmin[C any] struct {
	Name           string
	FK             string
	ReadonlyFields []string
	Computed       map[string]func(*C) interface{}
	Files          func(*C) []string
}

// InlineName returns the key of the inline in change form payloads
func (in *InlineAdmin[C]) InlineName() string {
	return in.Name
}

// List returns the child rows of one parent in ID order
func (in *InlineAdmin[C]) List(ctx context.Context, db *gorm.DB, parentID uint) ([]map[string]interface{}, error) {
	var children []C
	if err := db.WithContext(ctx).Where(in.FK+" = ?", parentID).Order("id ASC").Find(&children).Error; err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", in.Name, err)
	}
	rows := make([]map[string]interface{}, 0, len(children))
	for i := range children {
		row := toMap(&children[i])
		for name, fn := range in.Computed {
			row[name] = fn(&children[i])
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// StoredFiles collects the media references of every child of parentID
func (in *InlineAdmin[C]) StoredFiles(ctx context.Context, db *gorm.DB, parentID uint) ([]string, error) {
	if in.Files == nil {
		return nil, nil
	}
	var children []C
	if err := db.WithContext(ctx).Where(in.FK+" = ?", parentID).Find(&children).Error; err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", in.Name, err)
	}
	var refs []string
	for i := range children {
		refs = append(refs, in.files(&children[i])...)
	}
	return refs, nil
}

func (in *InlineAdmin[C]) files(child *C) []string {
	if in.Files == nil {
		return nil
	}
	return in.Files(child)
}

// Apply creates, updates or deletes child rows. A row with an id updates
// that child, or deletes it when "delete" is true; a row without id is added.
func (in *InlineAdmin[C]) Apply(tx *gorm.DB, parentID uint, rows []json.RawMessage) ([]string, error) {
	var released []string
	for i, raw := range rows {
		label := fmt.Sprintf("%s[%d]", in.Name, i)

		var head struct {
			ID     uint `json:"id"`
			Delete bool `json:"delete"`
		}
		if err := json.Unmarshal(raw, &head); err != nil {
			return nil, types.NewFieldValidationError(map[string]string{label: "malformed row"})
		}

		if head.ID == 0 {
			if head.Delete {
				continue
			}
			child := new(C)
			if err := json.Unmarshal(raw, child); err != nil {
				return nil, types.NewFieldValidationError(map[string]string{label: "malformed row"})
			}
			setObjectID(child, 0)
			setUint(child, in.FK, parentID)
			if err := validation.Struct(child); err != nil {
				return nil, prefixFields(err, label)
			}
			if err := tx.Omit(clause.Associations).Create(child).Error; err != nil {
				return nil, prefixFields(writeErr(err, "create_"+in.Name), label)
			}
			continue
		}

		child := new(C)
		if err := tx.Where(in.FK+" = ?", parentID).First(child, head.ID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, types.NewFieldValidationError(map[string]string{label: "row does not belong to this object"})
			}
			return nil, types.NewStoreError("get_"+in.Name, err)
		}

		if head.Delete {
			if err := tx.Delete(child).Error; err != nil {
				return nil, writeErr(err, "delete_"+in.Name)
			}
			released = append(released, in.files(child)...)
			continue
		}

		original := *child
		if err := json.Unmarshal(raw, child); err != nil {
			return nil, types.NewFieldValidationError(map[string]string{label: "malformed row"})
		}
		restoreFields(child, &original, in.ReadonlyFields)
		setObjectID(child, head.ID)
		setUint(child, in.FK, parentID)
		if err := validation.Struct(child); err != nil {
			return nil, prefixFields(err, label)
		}
		if err := tx.Omit(clause.Associations).Save(child).Error; err != nil {
			return nil, prefixFields(writeErr(err, "update_"+in.Name), label)
		}
		released = append(released, releasedFiles(in.files(&original), in.files(child))...)
	}
	return released, nil
}
