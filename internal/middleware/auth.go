package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"pictochat-service/internal/auth"
	"pictochat-service/internal/models"
)

// UserContextKey is where the authenticated user is stored on the gin context.
const UserContextKey = "user"

// AuthMiddleware validates the Authorization header against the session
// guard. A token superseded by a newer login gets a distinct error so
// clients can tell a kick apart from a plain bad credential.
func AuthMiddleware(guard *auth.Guard) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization"})
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header"})
			return
		}

		user, err := guard.Validate(c.Request.Context(), parts[1])
		if errors.Is(err, auth.ErrSessionSuperseded) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "session terminated by a newer login"})
			return
		}
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set("userID", user.ID)
		c.Set(UserContextKey, user)
		c.Next()
	}
}

// CurrentUser pulls the authenticated user set by AuthMiddleware.
func CurrentUser(c *gin.Context) (models.User, bool) {
	value, ok := c.Get(UserContextKey)
	if !ok {
		return models.User{}, false
	}
	user, ok := value.(models.User)
	return user, ok
}
