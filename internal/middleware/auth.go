// Package middleware provides the gin middleware chain of the server.
package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/goatkit/ganttcalendar/internal/apierrors"
	"github.com/goatkit/ganttcalendar/internal/auth"
)

// Context keys set by the middleware.
const (
	UserKey      = "username"
	RequestIDKey = "request_id"
)

// Anonymous is the user name of unauthenticated requests.
const Anonymous = "anonymous"

// TokenValidator verifies session tokens.
type TokenValidator interface {
	ValidateToken(token string) (*auth.Claims, error)
}

// Auth resolves the current user from a bearer token or the auth_token
// cookie. Requests without a token continue as anonymous; requests with a
// bad token are rejected.
func Auth(v TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			c.Set(UserKey, Anonymous)
			c.Next()
			return
		}

		claims, err := v.ValidateToken(token)
		if err != nil {
			if errors.Is(err, auth.ErrTokenExpired) {
				apierrors.Error(c, apierrors.CodeTokenExpired)
			} else {
				apierrors.Error(c, apierrors.CodeInvalidToken)
			}
			return
		}

		c.Set(UserKey, claims.Username)
		c.Next()
	}
}

// CurrentUser returns the user resolved by Auth.
func CurrentUser(c *gin.Context) string {
	if u := c.GetString(UserKey); u != "" {
		return u
	}
	return Anonymous
}

func extractToken(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		parts := strings.Fields(header)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return parts[1]
		}
	}
	if cookie, err := c.Cookie("auth_token"); err == nil && cookie != "" {
		return cookie
	}
	return ""
}
