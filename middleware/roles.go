package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Avinkovic23/local-llm-project/utils"
)

type RoleMiddleware struct{}

func NewRoleMiddleware() *RoleMiddleware {
	return &RoleMiddleware{}
}

// RequireRole rejects the request before any handler side effect when
// the authenticated role is not one of allowedRoles.
func (r *RoleMiddleware) RequireRole(allowedRoles ...string) gin.HandlerFunc {
	return gin.HandlerFunc(func(c *gin.Context) {
		role := GetRole(c)
		if role == "" {
			utils.RespondWithUnauthorized(c, "User role not found")
			c.Abort()
			return
		}

		hasRole := false
		for _, allowedRole := range allowedRoles {
			if role == allowedRole {
				hasRole = true
				break
			}
		}

		if !hasRole {
			utils.RespondWithError(c, http.StatusForbidden, "forbidden", "Admin role required.", gin.H{
				"required_roles": allowedRoles,
				"user_role":      role,
			})
			c.Abort()
			return
		}

		c.Next()
	})
}

func (r *RoleMiddleware) AdminGuard() gin.HandlerFunc {
	return r.RequireRole("admin")
}
