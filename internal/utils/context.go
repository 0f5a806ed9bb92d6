// internal/utils/context.go
package utils

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/javajoker/catalog-backend/internal/models"
)

// Gin context keys shared by middleware and handlers.
const (
	ContextKeyUser      = "user"
	ContextKeyUserID    = "user_id"
	ContextKeyLang      = "lang"
	ContextKeyRequestID = "request_id"
)

type ctxKey int

const (
	userCtxKey ctxKey = iota
	langCtxKey
)

// WithUser attaches the authenticated user to ctx.
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userCtxKey, user)
}

// UserFromContext returns the authenticated user, or nil for anonymous requests.
func UserFromContext(ctx context.Context) *models.User {
	user, _ := ctx.Value(userCtxKey).(*models.User)
	return user
}

func WithLang(ctx context.Context, lang string) context.Context {
	return context.WithValue(ctx, langCtxKey, lang)
}

func LangFromContext(ctx context.Context) string {
	if lang, ok := ctx.Value(langCtxKey).(string); ok && lang != "" {
		return lang
	}
	return "en"
}

func GetLangFromContext(c *gin.Context) string {
	if lang, exists := c.Get(ContextKeyLang); exists {
		if langStr, ok := lang.(string); ok {
			return langStr
		}
	}
	return "en"
}

func GetUserFromContext(c *gin.Context) (*models.User, bool) {
	if user, exists := c.Get(ContextKeyUser); exists {
		if u, ok := user.(*models.User); ok && u != nil {
			return u, true
		}
	}
	return nil, false
}

func GetUserIDFromContext(c *gin.Context) (uint, bool) {
	if userID, exists := c.Get(ContextKeyUserID); exists {
		if id, ok := userID.(uint); ok {
			return id, true
		}
	}
	return 0, false
}
