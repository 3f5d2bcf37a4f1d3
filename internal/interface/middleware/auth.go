package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/jobify/internal/domain/entity"
	"github.com/oksasatya/jobify/internal/domain/service"
	"github.com/oksasatya/jobify/pkg/helpers"
	"github.com/oksasatya/jobify/pkg/response"
)

const (
	CtxUserIDKey = "userID"
	CtxRoleKey   = "role"

	msgAuthInvalid   = "Authentication Invalid"
	msgNotAuthorized = "Not authorized to access this route"
)

// Auth validates the token cookie and ensures an active session exists.
// It sets userID and role in the Gin context on success. A nil session store
// skips the session check.
func Auth(tokens service.TokenIssuer, sessions service.SessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(helpers.TokenCookie)
		if err != nil || token == "" {
			unauthenticated(c)
			return
		}
		claims, err := tokens.Verify(token)
		if err != nil {
			unauthenticated(c)
			return
		}

		role := claims.Role
		if sessions != nil {
			sess, err := sessions.Get(c.Request.Context(), claims.UserID)
			if err != nil {
				if !errors.Is(err, service.ErrSessionNotFound) {
					_ = c.Error(err)
				}
				unauthenticated(c)
				return
			}
			role = sess.Role
			c.Set("userName", sess.Name)
		}

		c.Set(CtxUserIDKey, claims.UserID)
		c.Set(CtxRoleKey, role)
		c.Next()
	}
}

// RequireRole lets through only users whose role is in roles. Must run after Auth.
func RequireRole(roles ...entity.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := RoleFrom(c)
		for _, r := range roles {
			if role == r {
				c.Next()
				return
			}
		}
		response.Abort(c, http.StatusForbidden, msgNotAuthorized, nil)
	}
}

func UserIDFrom(c *gin.Context) string {
	return c.GetString(CtxUserIDKey)
}

func RoleFrom(c *gin.Context) entity.Role {
	if v, ok := c.Get(CtxRoleKey); ok {
		if r, ok := v.(entity.Role); ok {
			return r
		}
	}
	return ""
}

func unauthenticated(c *gin.Context) {
	response.Abort(c, http.StatusUnauthorized, msgAuthInvalid, nil)
}
