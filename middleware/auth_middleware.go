package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	// AuthTokenHeader carries the session token on protected routes.
	AuthTokenHeader = "auth-token"

	UserContextKey = "user_id"

	MsgPleaseAuthenticate = "Please authenticate"
	MsgInvalidToken       = "Invalid token"
)

type TokenValidator interface {
	Validate(token string) (string, error)
}

// RequireAuth rejects requests without a valid auth-token header and stores
// the token's user id under UserContextKey.
func RequireAuth(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader(AuthTokenHeader)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"errors": MsgPleaseAuthenticate})
			return
		}

		userID, err := validator.Validate(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"errors": MsgInvalidToken})
			return
		}

		c.Set(UserContextKey, userID)
		c.Next()
	}
}

// UserID returns the id stored by RequireAuth, or "" outside a protected route.
func UserID(c *gin.Context) string {
	return c.GetString(UserContextKey)
}
