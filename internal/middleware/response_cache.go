// internal/middleware/response_cache.go
package middleware

import (
	"bytes"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/javajoker/catalog-backend/internal/cache"
	"github.com/javajoker/catalog-backend/internal/graph"
	"github.com/javajoker/catalog-backend/internal/utils"
)

const CacheStatusHeader = "X-Cache"

type bodyWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w bodyWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w bodyWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// readOnlyRequest reports whether every operation of the request is a query,
// along with the raw body the cache key is built from.
func readOnlyRequest(c *gin.Context) (bool, string) {
	requests, _, err := graph.ParseRequest(c.Request)
	if err != nil || len(requests) == 0 {
		return false, ""
	}
	for _, req := range requests {
		if !graph.IsReadOnly(req.Query) {
			return false, ""
		}
	}

	if c.Request.Method == http.MethodGet {
		return true, c.Request.URL.RawQuery
	}
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return false, ""
	}
	c.Request.Body = io.NopCloser(bytes.NewReader(body))
	return true, string(body)
}

// ResponseCache serves repeated read-only requests of an anonymous schema
// from redis. A nil cache disables it.
func ResponseCache(rc *cache.ResponseCache, schema string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rc == nil {
			c.Next()
			return
		}

		readOnly, raw := readOnlyRequest(c)
		if !readOnly {
			c.Next()
			return
		}

		key := cache.Key(schema, utils.GetLangFromContext(c), raw)
		if body, ok := rc.Get(c.Request.Context(), key); ok {
			c.Header(CacheStatusHeader, "HIT")
			c.Data(http.StatusOK, "application/json; charset=utf-8", body)
			c.Abort()
			return
		}

		c.Header(CacheStatusHeader, "MISS")
		writer := &bodyWriter{ResponseWriter: c.Writer, body: &bytes.Buffer{}}
		c.Writer = writer
		c.Next()

		if c.Writer.Status() == http.StatusOK {
			rc.Set(c.Request.Context(), key, writer.body.Bytes())
		}
	}
}

// InvalidateResponseCache clears the cache after a successful request that
// carried a mutation.
func InvalidateResponseCache(rc *cache.ResponseCache) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rc == nil || c.Request.Method != http.MethodPost {
			c.Next()
			return
		}

		readOnly, _ := readOnlyRequest(c)
		c.Next()

		if !readOnly && c.Writer.Status() == http.StatusOK {
			rc.InvalidateAll(c.Request.Context())
		}
	}
}
