package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/panel_api/internal/utils"
)

// SessionValidator verifies an admin session token.
type SessionValidator interface {
	ValidateSession(token string) error
}

// SessionMiddleware gates admin routes behind a valid session token taken
// from the session cookie or an Authorization: Bearer header.
type SessionMiddleware struct {
	auth SessionValidator
}

// NewSessionMiddleware constructs a SessionMiddleware.
func NewSessionMiddleware(auth SessionValidator) *SessionMiddleware {
	return &SessionMiddleware{auth: auth}
}

// Handle returns the gin middleware.
func (m *SessionMiddleware) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := sessionToken(c)
		if token == "" {
			utils.Error(c, 401, "UNAUTHORIZED", "Missing session")
			c.Abort()
			return
		}

		if err := m.auth.ValidateSession(token); err != nil {
			utils.Error(c, 401, "INVALID_SESSION", "Invalid or expired session")
			c.Abort()
			return
		}

		c.Next()
	}
}

func sessionToken(c *gin.Context) string {
	if cookie, err := c.Cookie(utils.SessionCookie); err == nil && cookie != "" {
		return cookie
	}
	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) == 2 && parts[0] == "Bearer" {
		return strings.TrimSpace(parts[1])
	}
	return ""
}
