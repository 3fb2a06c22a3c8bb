package auth

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sharespace-media/backend/internal/util"
)

// Middleware validates the Authorization bearer token and loads the
// authenticated user into the request context.
func (s *Service) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			util.RespondUnauthorized(c, "no token provided")
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(header, "Bearer ")
		if tokenString == header || tokenString == "" {
			util.RespondUnauthorized(c, "malformed authorization header")
			c.Abort()
			return
		}

		user, err := s.ValidateToken(tokenString)
		if err != nil {
			util.RespondUnauthorized(c, "invalid or expired token")
			c.Abort()
			return
		}

		c.Set("user_id", user.ID)
		c.Set("user", user)
		c.Next()
	}
}
