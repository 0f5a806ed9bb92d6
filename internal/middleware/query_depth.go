// internal/middleware/query_depth.go
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/catalog-backend/internal/graph"
)

// QueryDepthGuard rejects query operations nested deeper than maxDepth with
// an empty 403. Requests that cannot be parsed are let through for the
// GraphQL handler to report.
func QueryDepthGuard(maxDepth int) gin.HandlerFunc {
	return func(c *gin.Context) {
		requests, _, err := graph.ParseRequest(c.Request)
		if err != nil {
			c.Next()
			return
		}

		for _, req := range requests {
			ok, err := graph.CheckDepth(req.Query, maxDepth)
			if err != nil {
				continue
			}
			if !ok {
				logrus.WithFields(logrus.Fields{
					"path":      c.Request.URL.Path,
					"max_depth": maxDepth,
				}).Warn("Query depth exceeded")
				c.AbortWithStatus(http.StatusForbidden)
				return
			}
		}
		c.Next()
	}
}
