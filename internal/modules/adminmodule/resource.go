package adminmodule

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/mantonx/moviecatalog/internal/api"
	"github.com/mantonx/moviecatalog/internal/logger"
	"github.com/mantonx/moviecatalog/internal/types"
	"github.com/mantonx/moviecatalog/internal/validation"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// registeredModel is the type-erased view of a Resource the site works with
type registeredModel interface {
	info() ModelInfo
	register(group *gin.RouterGroup, auth *Auth)
}

// ModelInfo describes a registered model on the site index
type ModelInfo struct {
	Name        string   `json:"name"`
	Model       string   `json:"model"`
	URL         string   `json:"url"`
	Permissions []string `json:"permissions"`
}

// Resource serves list, change form and bulk actions for one entity
type Resource[T any] struct {
	admin ModelAdmin[T]
	db    *gorm.DB
}

// NewResource binds an admin configuration to the store
func NewResource[T any](admin ModelAdmin[T], db *gorm.DB) *Resource[T] {
	return &Resource[T]{admin: admin, db: db}
}

func (r *Resource[T]) info() ModelInfo {
	return ModelInfo{
		Name:  r.admin.Name,
		Model: r.admin.Model,
		URL:   "/admin/" + r.admin.Name + "/",
	}
}

func (r *Resource[T]) register(group *gin.RouterGroup, auth *Auth) {
	a := &r.admin
	g := group.Group("/" + a.Name)

	g.GET("/", auth.Require(a.perm("view")), r.list)
	g.POST("/", auth.Require(a.perm("add")), r.create)
	g.GET("/:id/", auth.Require(a.perm("view")), r.retrieve)
	g.PUT("/:id/", auth.Require(a.perm("change")), r.update)
	g.PATCH("/:id/", auth.Require(a.perm("change")), r.update)
	g.DELETE("/:id/", auth.Require(a.perm("delete")), r.delete)

	for _, act := range a.Actions {
		act, _ = a.action(act.Name)
		g.POST("/actions/"+act.Name+"/", auth.Require(act.Permission), r.runAction(act))
	}
}

// list handles GET /admin/<name>/
//
// Query parameters:
//   - q: case-insensitive search over the search fields
//   - <filter param>: one per list filter, exact match
//   - page: 1-based page number
func (r *Resource[T]) list(c *gin.Context) {
	a := &r.admin
	ctx := c.Request.Context()

	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	perPage := a.perPage()

	build := func() *gorm.DB {
		q := r.db.WithContext(ctx).Model(new(T))
		for _, f := range a.ListFilter {
			if v := c.Query(f.Param); v != "" {
				q = q.Where(f.Column+" = ?", v)
			}
		}
		if term := strings.TrimSpace(c.Query("q")); term != "" && len(a.SearchFields) > 0 {
			for _, j := range a.SearchJoins {
				q = q.Joins(j)
			}
			conds := make([]string, 0, len(a.SearchFields))
			args := make([]interface{}, 0, len(a.SearchFields))
			for _, field := range a.SearchFields {
				conds = append(conds, "LOWER("+field+") LIKE ?")
				args = append(args, "%"+strings.ToLower(term)+"%")
			}
			q = q.Where("("+strings.Join(conds, " OR ")+")", args...)
		}
		return q
	}

	var total int64
	if err := build().Count(&total).Error; err != nil {
		api.RespondWithError(c, types.NewStoreError("count_"+a.Name, err))
		return
	}

	query := build()
	for _, p := range a.ListPreload {
		query = query.Preload(p)
	}
	var objs []T
	err = query.Order(a.Table + ".id ASC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&objs).Error
	if err != nil {
		api.RespondWithError(c, types.NewStoreError("list_"+a.Name, err))
		return
	}

	rows := make([]map[string]interface{}, 0, len(objs))
	for i := range objs {
		rows = append(rows, r.row(&objs[i]))
	}

	filters := make([]string, 0, len(a.ListFilter))
	for _, f := range a.ListFilter {
		filters = append(filters, f.Param)
	}
	actions := make([]gin.H, 0, len(a.Actions))
	for _, act := range a.Actions {
		actions = append(actions, gin.H{"name": act.Name, "description": act.Description})
	}

	c.JSON(http.StatusOK, gin.H{
		"model":              a.Name,
		"list_display":       a.ListDisplay,
		"list_display_links": a.ListDisplayLinks,
		"filters":            filters,
		"search":             len(a.SearchFields) > 0,
		"actions":            actions,
		"count":              total,
		"page":               page,
		"per_page":           perPage,
		"results":            rows,
	})
}

func (r *Resource[T]) row(obj *T) map[string]interface{} {
	id := objectID(obj)
	fields := toMap(obj)

	columns := fields
	if len(r.admin.ListDisplay) > 0 {
		columns = make(map[string]interface{}, len(r.admin.ListDisplay))
		for _, name := range r.admin.ListDisplay {
			if fn, ok := r.admin.Computed[name]; ok {
				columns[name] = fn(obj)
			} else {
				columns[name] = fields[name]
			}
		}
	}
	return map[string]interface{}{
		"id":        id,
		"admin_url": fmt.Sprintf("/admin/%s/%d/", r.admin.Name, id),
		"columns":   columns,
	}
}

// retrieve handles GET /admin/<name>/:id/
func (r *Resource[T]) retrieve(c *gin.Context) {
	obj, ok := r.load(c)
	if !ok {
		return
	}
	payload, err := r.changeForm(c, obj)
	if err != nil {
		api.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, payload)
}

func (r *Resource[T]) changeForm(c *gin.Context, obj *T) (gin.H, error) {
	a := &r.admin
	ctx := c.Request.Context()

	if a.AfterLoad != nil {
		if err := a.AfterLoad(ctx, r.db.WithContext(ctx), obj); err != nil {
			return nil, types.NewStoreError("load_"+a.Name, err)
		}
	}

	readonly := make(map[string]interface{}, len(a.ReadonlyComputed))
	for name, fn := range a.ReadonlyComputed {
		readonly[name] = fn(obj)
	}

	inlines := make(map[string]interface{}, len(a.Inlines))
	for _, in := range a.Inlines {
		rows, err := in.List(ctx, r.db, objectID(obj))
		if err != nil {
			return nil, types.NewStoreError("list_"+in.InlineName(), err)
		}
		inlines[in.InlineName()] = rows
	}

	readonlyFields := a.ReadonlyFields
	if readonlyFields == nil {
		readonlyFields = []string{}
	}
	return gin.H{
		"object":          obj,
		"readonly":        readonly,
		"readonly_fields": readonlyFields,
		"inlines":         inlines,
	}, nil
}

// changeBody is the part of a change form payload that is not the object
type changeBody struct {
	Inlines map[string][]json.RawMessage `json:"inlines"`
}

// create handles POST /admin/<name>/
func (r *Resource[T]) create(c *gin.Context) {
	obj := new(T)
	body, ok := r.decode(c, obj)
	if !ok {
		return
	}
	setObjectID(obj, 0)

	if err := validation.Struct(obj); err != nil {
		api.RespondWithError(c, err)
		return
	}

	err := r.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(obj).Error; err != nil {
			return writeErr(err, "create_"+r.admin.Name)
		}
		// A new object has no stored rows to release.
		_, err := r.applyInlines(tx, objectID(obj), body)
		return err
	})
	if err != nil {
		api.RespondWithError(c, err)
		return
	}

	r.audit(c, "add", objectID(obj))
	payload, err := r.changeForm(c, obj)
	if err != nil {
		api.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, payload)
}

// update handles PUT and PATCH /admin/<name>/:id/. Fields missing from the
// body keep their value; read-only fields always do.
func (r *Resource[T]) update(c *gin.Context) {
	obj, ok := r.load(c)
	if !ok {
		return
	}
	id := objectID(obj)
	original := *obj

	body, ok := r.decode(c, obj)
	if !ok {
		return
	}
	restoreFields(obj, &original, r.admin.ReadonlyFields)
	setObjectID(obj, id)

	if err := validation.Struct(obj); err != nil {
		api.RespondWithError(c, err)
		return
	}

	released := releasedFiles(r.admin.files(&original), r.admin.files(obj))
	err := r.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(obj).Error; err != nil {
			return writeErr(err, "update_"+r.admin.Name)
		}
		inlineReleased, err := r.applyInlines(tx, id, body)
		released = append(released, inlineReleased...)
		return err
	})
	if err != nil {
		api.RespondWithError(c, err)
		return
	}
	r.removeFiles(released)

	r.audit(c, "change", id)
	fresh := new(T)
	if err := r.db.WithContext(c.Request.Context()).First(fresh, id).Error; err != nil {
		api.RespondWithError(c, types.NewStoreError("get_"+r.admin.Name, err))
		return
	}
	payload, err := r.changeForm(c, fresh)
	if err != nil {
		api.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, payload)
}

// delete handles DELETE /admin/<name>/:id/
func (r *Resource[T]) delete(c *gin.Context) {
	obj, ok := r.load(c)
	if !ok {
		return
	}
	id := objectID(obj)
	ctx := c.Request.Context()

	released := r.admin.files(obj)
	for _, in := range r.admin.Inlines {
		refs, err := in.StoredFiles(ctx, r.db, id)
		if err != nil {
			api.RespondWithError(c, types.NewStoreError("get_"+in.InlineName(), err))
			return
		}
		released = append(released, refs...)
	}

	if err := r.db.WithContext(ctx).Delete(obj).Error; err != nil {
		api.RespondWithError(c, writeErr(err, "delete_"+r.admin.Name))
		return
	}
	r.removeFiles(released)
	r.audit(c, "delete", id)
	c.JSON(http.StatusOK, gin.H{"success": true, "deleted": id})
}

// actionRequest selects the rows a bulk action applies to
type actionRequest struct {
	IDs []uint `json:"ids"`
}

func (r *Resource[T]) runAction(act Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req actionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			api.RespondWithValidationError(c, "invalid action request", err.Error())
			return
		}
		result, err := act.Run(c.Request.Context(), req.IDs)
		if err != nil {
			api.RespondWithError(c, err)
			return
		}
		op, _ := currentOperator(c)
		logger.Info("admin action", "model", r.admin.Name, "action", act.Name,
			"operator", op.Name, "count", result.Count)
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"action":  act.Name,
			"count":   result.Count,
			"message": result.Message,
		})
	}
}

func (r *Resource[T]) applyInlines(tx *gorm.DB, parentID uint, body changeBody) ([]string, error) {
	for name := range body.Inlines {
		if r.inline(name) == nil {
			return nil, types.NewFieldValidationError(map[string]string{"inlines": "unknown inline " + name})
		}
	}
	var released []string
	for _, in := range r.admin.Inlines {
		rows, ok := body.Inlines[in.InlineName()]
		if !ok {
			continue
		}
		refs, err := in.Apply(tx, parentID, rows)
		if err != nil {
			return nil, err
		}
		released = append(released, refs...)
	}
	return released, nil
}

// removeFiles deletes media no committed row refers to any more. Failures
// leave an orphaned file behind and are only logged.
func (r *Resource[T]) removeFiles(refs []string) {
	if r.admin.Storage == nil {
		return
	}
	for _, ref := range refs {
		if ref == "" {
			continue
		}
		if err := r.admin.Storage.Delete(ref); err != nil {
			logger.Warn("failed to remove media file", "model", r.admin.Name, "ref", ref, "error", err)
		}
	}
}

func (r *Resource[T]) inline(name string) Inline {
	for _, in := range r.admin.Inlines {
		if in.InlineName() == name {
			return in
		}
	}
	return nil
}

func (r *Resource[T]) load(c *gin.Context) (*T, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		api.RespondWithNotFound(c, r.admin.Model, c.Param("id"))
		return nil, false
	}
	obj := new(T)
	if err := r.db.WithContext(c.Request.Context()).First(obj, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			api.RespondWithNotFound(c, r.admin.Model, c.Param("id"))
		} else {
			api.RespondWithError(c, types.NewStoreError("get_"+r.admin.Name, err))
		}
		return nil, false
	}
	return obj, true
}

// decode reads a change form body over obj
func (r *Resource[T]) decode(c *gin.Context, obj *T) (changeBody, bool) {
	var body changeBody
	raw, err := c.GetRawData()
	if err != nil {
		api.RespondWithValidationError(c, "unreadable body", err.Error())
		return body, false
	}
	if err := json.Unmarshal(raw, obj); err != nil {
		api.RespondWithValidationError(c, "malformed JSON body", err.Error())
		return body, false
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		api.RespondWithValidationError(c, "malformed inlines", err.Error())
		return body, false
	}
	return body, true
}

func (r *Resource[T]) audit(c *gin.Context, action string, id uint) {
	op, _ := currentOperator(c)
	logger.Info("admin change", "model", r.admin.Name, "action", action, "id", id, "operator", op.Name)
}
