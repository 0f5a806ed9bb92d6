package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/javajoker/catalog-backend/internal/config"
	"github.com/javajoker/catalog-backend/internal/models"
	"github.com/javajoker/catalog-backend/internal/services"
	"github.com/javajoker/catalog-backend/internal/testutil"
	"github.com/javajoker/catalog-backend/internal/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newAuth(t *testing.T) (*services.AuthService, *gorm.DB) {
	t.Helper()
	db := testutil.NewDB(t)
	cfg := &config.Config{JWT: config.JWTConfig{SecretKey: "middleware-secret", AccessTokenTTL: 1}}
	utils.SetJWTSecret(cfg.JWT.SecretKey)
	return services.NewAuthService(db, cfg), db
}

func createUser(t *testing.T, auth *services.AuthService, email string, staff bool) *models.User {
	t.Helper()
	user, err := auth.CreateUser(context.Background(), &services.CreateUserRequest{
		Email:    email,
		Password: "password123",
		IsStaff:  staff,
	})
	require.NoError(t, err)
	return user
}

// whoami reports the user attached to the request context.
func whoami(c *gin.Context) {
	if user := utils.UserFromContext(c.Request.Context()); user != nil {
		c.String(http.StatusOK, user.Email)
		return
	}
	c.String(http.StatusOK, "anonymous")
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWTAuthentication(t *testing.T) {
	auth, _ := newAuth(t)
	user := createUser(t, auth, "staff@example.com", true)
	token, err := auth.IssueToken(user)
	require.NoError(t, err)

	r := gin.New()
	r.Use(JWTAuthentication(auth))
	r.GET("/me", whoami)

	w := serve(r, httptest.NewRequest(http.MethodGet, "/me", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "anonymous", w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = serve(r, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "staff@example.com", w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	w = serve(r, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "authentication-failed")

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", token)
	w = serve(r, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestOptionalJWTAuthenticationIgnoresBadToken(t *testing.T) {
	auth, _ := newAuth(t)
	user := createUser(t, auth, "staff@example.com", true)
	token, err := auth.IssueToken(user)
	require.NoError(t, err)

	r := gin.New()
	r.Use(OptionalJWTAuthentication(auth))
	r.GET("/me", whoami)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	assert.Equal(t, "staff@example.com", serve(r, req).Body.String())

	for _, header := range []string{"Bearer not-a-token", token} {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", header)
		w := serve(r, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "anonymous", w.Body.String())
	}
}

func TestJWTAuthenticationRejectsRevokedToken(t *testing.T) {
	auth, _ := newAuth(t)
	user := createUser(t, auth, "staff@example.com", true)
	token, err := auth.IssueToken(user)
	require.NoError(t, err)
	time.Sleep(2 * time.Millisecond)
	require.NoError(t, auth.RevokeAllSessions(context.Background(), user))

	r := gin.New()
	r.Use(JWTAuthentication(auth))
	r.GET("/me", whoami)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, serve(r, req).Code)
}

func TestAdminRequired(t *testing.T) {
	auth, _ := newAuth(t)
	staff := createUser(t, auth, "staff@example.com", true)
	customer := createUser(t, auth, "customer@example.com", false)

	r := gin.New()
	r.Use(JWTAuthentication(auth), AdminRequired())
	r.GET("/admin", whoami)

	assert.Equal(t, http.StatusForbidden, serve(r, httptest.NewRequest(http.MethodGet, "/admin", nil)).Code)

	for _, tc := range []struct {
		user   *models.User
		status int
	}{
		{staff, http.StatusOK},
		{customer, http.StatusForbidden},
	} {
		token, err := auth.IssueToken(tc.user)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := serve(r, req)
		assert.Equal(t, tc.status, w.Code, tc.user.Email)
		if tc.status == http.StatusForbidden {
			assert.Contains(t, w.Body.String(), "permission-denied")
		}
	}
}

func TestI18nMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(I18nMiddleware("en"))
	r.GET("/lang", func(c *gin.Context) {
		c.String(http.StatusOK, utils.GetLangFromContext(c)+"/"+utils.LangFromContext(c.Request.Context()))
	})

	tests := []struct {
		header string
		want   string
	}{
		{"", "en/en"},
		{"es-ES,es;q=0.9", "es/es"},
		{"en-US", "en/en"},
		{"fr-FR", "en/en"},
		{"fr;q=0.9, es;q=0.8", "es/es"},
	}
	for _, tc := range tests {
		req := httptest.NewRequest(http.MethodGet, "/lang", nil)
		if tc.header != "" {
			req.Header.Set("Accept-Language", tc.header)
		}
		assert.Equal(t, tc.want, serve(r, req).Body.String(), tc.header)
	}
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(utils.ContextKeyRequestID))
	})

	w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Len(t, w.Body.String(), 36)
	assert.Equal(t, w.Body.String(), w.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	assert.Equal(t, "abc-123", serve(r, req).Body.String())
}

func TestQueryDepthGuard(t *testing.T) {
	r := gin.New()
	r.Use(QueryDepthGuard(2))
	r.POST("/graphql", func(c *gin.Context) {
		body, _ := c.GetRawData()
		c.String(http.StatusOK, string(body))
	})

	post := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		return serve(r, req)
	}

	w := post(`{"query":"{ categories { id } }"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `{"query":"{ categories { id } }"}`, w.Body.String())

	w = post(`{"query":"{ categories { subcategories { id } } }"}`)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Empty(t, w.Body.String())

	// Mutations are not measured.
	w = post(`{"query":"mutation { createCategory(input: {}) { category { parentCategory { id } } } }"}`)
	assert.Equal(t, http.StatusOK, w.Code)

	// Unparseable queries pass through.
	w = post(`{"query":"{ categories { "}`)
	assert.Equal(t, http.StatusOK, w.Code)

	w = post(`[{"query":"{ materials { id } }"},{"query":"{ a { b { c } } }"}]`)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRateLimiter(t *testing.T) {
	limiter := NewRateLimiter(config.RateLimitConfig{RequestsPerSecond: 0.001, Burst: 1})

	r := gin.New()
	r.Use(limiter.Middleware())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, serve(r, httptest.NewRequest(http.MethodGet, "/", nil)).Code)
	w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "rate-limited")
}

func TestRateLimiterSweep(t *testing.T) {
	limiter := NewRateLimiter(config.RateLimitConfig{RequestsPerSecond: 1, Burst: 1})
	limiter.getVisitor("10.0.0.1")
	limiter.getVisitor("10.0.0.2")
	limiter.visitors["10.0.0.1"].lastSeen = time.Now().Add(-time.Hour)

	limiter.sweep(time.Now().Add(-visitorIdleTimeout))

	assert.NotContains(t, limiter.visitors, "10.0.0.1")
	assert.Contains(t, limiter.visitors, "10.0.0.2")
}

func TestAuditLogMiddleware(t *testing.T) {
	auth, db := newAuth(t)
	staff := createUser(t, auth, "staff@example.com", true)
	token, err := auth.IssueToken(staff)
	require.NoError(t, err)

	r := gin.New()
	r.Use(RequestID(), JWTAuthentication(auth), AuditLogMiddleware(db))
	r.POST("/graphql_admin", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/graphql_admin", func(c *gin.Context) { c.Status(http.StatusOK) })

	serve(r, httptest.NewRequest(http.MethodGet, "/graphql_admin", nil))

	req := httptest.NewRequest(http.MethodPost, "/graphql_admin", strings.NewReader(`{"query":"mutation { logout { success } }"}`))
	req.Header.Set("Authorization", "Bearer "+token)
	serve(r, req)

	assert.Eventually(t, func() bool {
		var count int64
		db.Model(&models.AuditLog{}).Count(&count)
		return count == 1
	}, 2*time.Second, 20*time.Millisecond)

	var entry models.AuditLog
	require.NoError(t, db.First(&entry).Error)
	assert.Equal(t, "POST /graphql_admin", entry.Action)
	require.NotNil(t, entry.UserID)
	assert.Equal(t, staff.ID, *entry.UserID)
	assert.NotEmpty(t, entry.RequestID)
}

func TestResponseCacheDisabledWithoutRedis(t *testing.T) {
	calls := 0
	r := gin.New()
	r.Use(ResponseCache(nil, "public"))
	r.POST("/graphql", func(c *gin.Context) {
		calls++
		c.String(http.StatusOK, "ok")
	})

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(`{"query":"{ materials { id } }"}`))
		w := serve(r, req)
		assert.Empty(t, w.Header().Get(CacheStatusHeader))
	}
	assert.Equal(t, 2, calls)
}
