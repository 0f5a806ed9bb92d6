// internal/middleware/request_id.go
package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/javajoker/catalog-backend/internal/utils"
)

const RequestIDHeader = "X-Request-ID"

// RequestID keeps a caller supplied request id or generates one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" || len(id) > 64 {
			id = uuid.NewString()
		}
		c.Set(utils.ContextKeyRequestID, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}
