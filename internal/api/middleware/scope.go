package middleware

import (
	"net/http"
	"strings"

	"github.com/andresuchdata/salesperf/backend-go/internal/domain"
	"github.com/gin-gonic/gin"
)

// Caller identity headers set by the fronting auth proxy.
const (
	HeaderRole       = "X-User-Role"
	HeaderSalesExecs = "X-Sales-Execs"

	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleSales   = "sales"

	scopeKey = "caller_scope"
	roleKey  = "caller_role"
)

// Scope resolves the caller's salesperson visibility. Admins and managers see
// everyone; sales users see the comma separated names in X-Sales-Execs.
func Scope() gin.HandlerFunc {
	return func(c *gin.Context) {
		role := strings.ToLower(strings.TrimSpace(c.GetHeader(HeaderRole)))

		var scope domain.Scope
		switch role {
		case RoleAdmin, RoleManager:
			scope = domain.ScopeAll()
		case RoleSales:
			var names []string
			for _, n := range strings.Split(c.GetHeader(HeaderSalesExecs), ",") {
				if n = strings.TrimSpace(n); n != "" {
					names = append(names, n)
				}
			}
			scope = domain.ScopeNames(names...)
		default:
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or unknown caller role"})
			return
		}

		c.Set(roleKey, role)
		c.Set(scopeKey, scope)
		c.Next()
	}
}

// AdminOnly rejects callers that are not admins. It must run after Scope.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(roleKey) != RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin role required"})
			return
		}
		c.Next()
	}
}

// CallerScope returns the scope stored by Scope. Without it nothing is visible.
func CallerScope(c *gin.Context) domain.Scope {
	if v, ok := c.Get(scopeKey); ok {
		if s, ok := v.(domain.Scope); ok {
			return s
		}
	}
	return domain.Scope{}
}

// IsAdmin reports whether the caller has the admin role.
func IsAdmin(c *gin.Context) bool {
	return c.GetString(roleKey) == RoleAdmin
}
