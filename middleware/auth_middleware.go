package middlewares

import (
	"complaint-portal/models"
	"complaint-portal/services"
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	userKey   = "user"
	userIDKey = "user_id"
)

// Authenticator resolves a bearer token to a user.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

// AuthMiddleware requires a valid session token, taken from the Authorization
// header or, failing that, the "token" cookie. The user is stored on the
// context for CurrentUser.
func AuthMiddleware(auth Authenticator, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := auth.Authenticate(c.Request.Context(), tokenFrom(c))
		if err != nil {
			if services.KindOf(err) != services.KindUnauthenticated {
				logger.Error("authentication failed", zap.Error(err))
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": err.Error()})
			return
		}

		c.Set(userKey, user)
		c.Set(userIDKey, user.ID.Hex())
		c.Next()
	}
}

func tokenFrom(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	if token, err := c.Cookie("token"); err == nil {
		return token
	}
	return ""
}

// CurrentUser returns the user set by AuthMiddleware.
func CurrentUser(c *gin.Context) *models.User {
	if v, ok := c.Get(userKey); ok {
		if u, ok := v.(*models.User); ok {
			return u
		}
	}
	return nil
}

// RequireHandler lets through users whose role can handle complaints.
func RequireHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil || !user.Role.CanHandleComplaints() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Not authorized as HR"})
			return
		}
		c.Next()
	}
}

// RequireComplainant lets through plain users, the only role that files
// complaints and keeps drafts.
func RequireComplainant() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil || user.Role != models.RoleUser {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Only complainants can perform this action"})
			return
		}
		c.Next()
	}
}
