// internal/middleware/auth.go
package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/catalog-backend/internal/apperror"
	"github.com/javajoker/catalog-backend/internal/services"
	"github.com/javajoker/catalog-backend/internal/utils"
)

// JWTAuthentication attaches the user behind a bearer token to the request.
// Requests without a token continue anonymously; an invalid token is rejected.
func JWTAuthentication(auth *services.AuthService) gin.HandlerFunc {
	return authenticate(auth, true)
}

// OptionalJWTAuthentication is JWTAuthentication for public routes: an
// invalid or revoked token is ignored so the client can still log in again.
func OptionalJWTAuthentication(auth *services.AuthService) gin.HandlerFunc {
	return authenticate(auth, false)
}

func authenticate(auth *services.AuthService, strict bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}

		reject := func(err error) {
			if !strict {
				logrus.WithError(err).WithField("path", c.Request.URL.Path).Debug("Ignoring invalid bearer token")
				c.Next()
				return
			}
			utils.AppErrorResponse(c, apperror.ErrAuthenticationFailed)
			c.Abort()
		}

		// Extract token from "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			reject(apperror.ErrAuthenticationFailed)
			return
		}

		user, err := auth.ValidateToken(c.Request.Context(), parts[1])
		if err != nil {
			reject(err)
			return
		}

		c.Set(utils.ContextKeyUser, user)
		c.Set(utils.ContextKeyUserID, user.ID)
		c.Request = c.Request.WithContext(utils.WithUser(c.Request.Context(), user))
		c.Next()
	}
}

// AdminRequired lets only staff members through.
func AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := utils.GetUserFromContext(c)
		if !ok || !user.IsStaff {
			utils.ForbiddenResponse(c)
			c.Abort()
			return
		}
		c.Next()
	}
}
