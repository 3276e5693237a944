package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/clinic-thoughts/dto"
	"github.com/clinic-thoughts/models"
	"github.com/clinic-thoughts/services"
	"github.com/gin-gonic/gin"
)

// Context keys set by AuthMiddleware
const (
	ContextUserID   = "userId"
	ContextRole     = "role"
	ContextClinicID = "clinicId"
	contextActor    = "actor"

	// TokenCookie is the cookie Login stores the session token in
	TokenCookie = "access_token"
)

// TokenValidator turns a session token into its claims
type TokenValidator interface {
	ValidateToken(token string) (*dto.TokenClaims, error)
}

// UserLookup loads the account a token was issued for
type UserLookup interface {
	GetUser(ctx context.Context, id uint) (*models.User, error)
}

// AuthMiddleware requires a valid session token from the Authorization
// header or the access_token cookie. Role and clinic come from the stored
// account, not the token, so demotions and deletions apply immediately.
func AuthMiddleware(tokens TokenValidator, users UserLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"status":  "error",
				"message": "Authentication required",
			})
			return
		}

		claims, err := tokens.ValidateToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"status":  "error",
				"message": "Invalid or expired token",
			})
			return
		}

		user, err := users.GetUser(c.Request.Context(), claims.UserID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"status":  "error",
				"message": "Failed to load account",
			})
			return
		}
		if user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"status":  "error",
				"message": "Account no longer exists",
			})
			return
		}

		c.Set(ContextUserID, user.ID)
		c.Set(ContextRole, string(user.Role))
		if user.ClinicID != nil {
			c.Set(ContextClinicID, *user.ClinicID)
		}
		c.Set(contextActor, services.Actor{
			UserID:   user.ID,
			Role:     user.Role,
			ClinicID: user.ClinicID,
		})
		c.Next()
	}
}

// ActorFrom returns the caller stored by AuthMiddleware
func ActorFrom(c *gin.Context) (services.Actor, bool) {
	value, exists := c.Get(contextActor)
	if !exists {
		return services.Actor{}, false
	}
	actor, ok := value.(services.Actor)
	return actor, ok
}

func extractToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	if cookie, err := c.Cookie(TokenCookie); err == nil {
		return cookie
	}
	return ""
}
