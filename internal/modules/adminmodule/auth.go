package adminmodule

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/mantonx/moviecatalog/internal/api"
	"github.com/mantonx/moviecatalog/internal/config"
	"github.com/mantonx/moviecatalog/internal/types"
)

const operatorKey = "admin_operator"

// Auth resolves operators from bearer tokens and checks their permissions
type Auth struct {
	operators map[string]config.Operator
}

// NewAuth indexes the configured operators by token
func NewAuth(operators []config.Operator) *Auth {
	a := &Auth{operators: make(map[string]config.Operator, len(operators))}
	for _, op := range operators {
		if op.Token != "" {
			a.operators[op.Token] = op
		}
	}
	return a
}

// HasPermission reports whether op holds perm. "*" grants everything and
// "<model>.*" grants every action on one model.
func HasPermission(op config.Operator, perm string) bool {
	model := perm
	if i := strings.IndexByte(perm, '.'); i >= 0 {
		model = perm[:i]
	}
	for _, p := range op.Permissions {
		if p == "*" || p == perm || p == model+".*" {
			return true
		}
	}
	return false
}

// Authenticate rejects requests without a known operator token
func (a *Auth) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		op, ok := a.operators[token]
		if header == "" || token == "" || !ok {
			api.RespondWithError(c, types.NewUnauthorizedError())
			return
		}
		c.Set(operatorKey, op)
		c.Next()
	}
}

// Require rejects operators lacking perm
func (a *Auth) Require(perm string) gin.HandlerFunc {
	return func(c *gin.Context) {
		op, ok := currentOperator(c)
		if !ok {
			api.RespondWithError(c, types.NewUnauthorizedError())
			return
		}
		if !HasPermission(op, perm) {
			api.RespondWithError(c, types.NewPermissionDeniedError(perm).WithContext("operator", op.Name))
			return
		}
		c.Next()
	}
}

func currentOperator(c *gin.Context) (config.Operator, bool) {
	v, ok := c.Get(operatorKey)
	if !ok {
		return config.Operator{}, false
	}
	op, ok := v.(config.Operator)
	return op, ok
}
