// internal/middleware/i18n.go
package middleware

import (
	"github.com/gin-gonic/gin"
	"golang.org/x/text/language"

	"github.com/javajoker/catalog-backend/internal/utils"
)

var supportedLanguages = []language.Tag{language.English, language.Spanish}

// I18nMiddleware picks the response language from Accept-Language, falling
// back to defaultLang when the header is missing.
func I18nMiddleware(defaultLang string) gin.HandlerFunc {
	tags := supportedLanguages
	if defaultLang == "es" {
		tags = []language.Tag{language.Spanish, language.English}
	}
	matcher := language.NewMatcher(tags)

	return func(c *gin.Context) {
		lang := defaultLang
		if header := c.GetHeader("Accept-Language"); header != "" {
			_, index := language.MatchStrings(matcher, header)
			base, _ := tags[index].Base()
			lang = base.String()
		}
		if lang == "" {
			lang = "en"
		}

		c.Set(utils.ContextKeyLang, lang)
		c.Request = c.Request.WithContext(utils.WithLang(c.Request.Context(), lang))
		c.Next()
	}
}
