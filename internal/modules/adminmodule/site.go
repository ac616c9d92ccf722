package adminmodule

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Site is the admin site identity, fixed at startup
type Site struct {
	Title  string `json:"site_title"`
	Header string `json:"site_header"`

	models []registeredModel
}

// Register adds a model admin to the site
func Register[T any](s *Site, r *Resource[T]) {
	s.models = append(s.models, r)
}

// Models lists the registered models in registration order
func (s *Site) Models() []ModelInfo {
	out := make([]ModelInfo, 0, len(s.models))
	for _, m := range s.models {
		out = append(out, m.info())
	}
	return out
}

// index handles GET /admin/ and lists the models the operator may view
func (s *Site) index(c *gin.Context) {
	op, _ := currentOperator(c)

	models := make([]ModelInfo, 0, len(s.models))
	for _, info := range s.Models() {
		perms := make([]string, 0, 4)
		for _, action := range []string{"view", "add", "change", "delete"} {
			if HasPermission(op, info.Model+"."+action) {
				perms = append(perms, action)
			}
		}
		if !HasPermission(op, info.Model+".view") {
			continue
		}
		info.Permissions = perms
		models = append(models, info)
	}

	c.JSON(http.StatusOK, gin.H{
		"site_title":  s.Title,
		"site_header": s.Header,
		"operator":    op.Name,
		"models":      models,
	})
}

func (s *Site) register(group *gin.RouterGroup, auth *Auth) {
	group.GET("/", s.index)
	for _, m := range s.models {
		m.register(group, auth)
	}
}
