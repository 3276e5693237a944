package middleware

import (
	"net/http"

	"github.com/clinic-thoughts/models"
	"github.com/gin-gonic/gin"
)

// AdminMiddleware creates a middleware that ensures the user has admin role
// This middleware should be used after AuthMiddleware
func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get(ContextRole)
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"status":  "error",
				"message": "Authentication required",
			})
			return
		}

		if roleStr, ok := role.(string); !ok || models.Role(roleStr) != models.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"status":  "error",
				"message": "Admin privileges required",
			})
			return
		}

		c.Next()
	}
}
