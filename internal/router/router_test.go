package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"

	"github.com/javajoker/catalog-backend/internal/config"
	"github.com/javajoker/catalog-backend/internal/i18n"
	"github.com/javajoker/catalog-backend/internal/services"
	"github.com/javajoker/catalog-backend/internal/testutil"
)

type RouterTestSuite struct {
	suite.Suite
	engine *gin.Engine
	token  string
}

func (suite *RouterTestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
	suite.Require().NoError(i18n.Initialize("en"))
}

func (suite *RouterTestSuite) SetupTest() {
	db := testutil.NewDB(suite.T())
	cfg := &config.Config{
		JWT:       config.JWTConfig{SecretKey: "router-secret", AccessTokenTTL: 1},
		Catalog:   config.CatalogConfig{ShortDescriptionMaxLength: 50, MaxQueryDepth: 4},
		RateLimit: config.RateLimitConfig{RequestsPerSecond: 1000, Burst: 1000},
		CORS:      config.CORSConfig{AllowedOrigins: []string{"*"}},
		I18n:      config.I18nConfig{DefaultLocale: "en"},
	}

	engine, err := Initialize(db, cfg, nil, services.LogImageStore{})
	suite.Require().NoError(err)
	suite.engine = engine

	auth := services.NewAuthService(db, cfg)
	suite.Require().NoError(auth.EnsureStaffUser(context.Background(), config.AdminConfig{
		Email:    "admin@example.com",
		Password: "password123",
	}))

	var login struct {
		Data struct {
			Login struct {
				Token string `json:"token"`
			} `json:"login"`
		} `json:"data"`
	}
	w := suite.post("/graphql", `{"query":"mutation { login(email: \"admin@example.com\", password: \"password123\") { token } }"}`, "")
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &login))
	suite.Require().NotEmpty(login.Data.Login.Token)
	suite.token = login.Data.Login.Token
}

func (suite *RouterTestSuite) request(method, path, body, token string, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	w := httptest.NewRecorder()
	suite.engine.ServeHTTP(w, req)
	return w
}

func (suite *RouterTestSuite) post(path, body, token string, headers ...string) *httptest.ResponseRecorder {
	return suite.request(http.MethodPost, path, body, token, headers...)
}

func (suite *RouterTestSuite) decode(w *httptest.ResponseRecorder) map[string]interface{} {
	var out map[string]interface{}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func (suite *RouterTestSuite) TestHealth() {
	w := suite.request(http.MethodGet, "/health", "", "")
	suite.Equal(http.StatusOK, w.Code)
	suite.Contains(w.Body.String(), "healthy")
}

func (suite *RouterTestSuite) TestPublicQuery() {
	w := suite.post("/graphql", `{"query":"{ categories { id } materials { id } }"}`, "")
	suite.Equal(http.StatusOK, w.Code)
	suite.NotEmpty(w.Header().Get("X-Request-ID"))

	out := suite.decode(w)
	suite.Nil(out["errors"])
	suite.Empty(out["data"].(map[string]interface{})["categories"])
}

func (suite *RouterTestSuite) TestQueryDepthExceeded() {
	w := suite.post("/graphql", `{"query":"{ categories { subcategories { subcategories { subcategories { id } } } } }"}`, "")
	suite.Equal(http.StatusForbidden, w.Code)
	suite.Empty(w.Body.String())
}

func (suite *RouterTestSuite) TestAdminRequiresStaff() {
	w := suite.post("/graphql_admin", `{"query":"{ me { email } }"}`, "")
	suite.Equal(http.StatusForbidden, w.Code)

	w = suite.post("/graphql_admin", `{"query":"{ me { email } }"}`, suite.token)
	suite.Equal(http.StatusOK, w.Code)
	suite.Equal("admin@example.com", suite.decode(w)["data"].(map[string]interface{})["me"].(map[string]interface{})["email"])
}

func (suite *RouterTestSuite) TestErrorCodeAndLocalizedMessage() {
	w := suite.post("/graphql_admin", `{"query":"{ message(id: \"999\") { id } }"}`, suite.token, "Accept-Language", "es")
	suite.Equal(http.StatusOK, w.Code)

	errs := suite.decode(w)["errors"].([]interface{})
	suite.Require().Len(errs, 1)
	first := errs[0].(map[string]interface{})
	suite.Equal("does-not-exist", first["code"])
	suite.Equal("does-not-exist", first["extensions"].(map[string]interface{})["code"])
	suite.Equal("El objeto solicitado no existe", first["message"])
}

func (suite *RouterTestSuite) TestBatchRequest() {
	w := suite.post("/graphql", `[{"query":"{ categories { id } }"},{"query":"{ manufacturers { id } }"}]`, "")
	suite.Equal(http.StatusOK, w.Code)

	var out []map[string]interface{}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &out))
	suite.Len(out, 2)
}

func (suite *RouterTestSuite) TestMutationOverGetRejected() {
	q := url.Values{}
	q.Set("query", `mutation { createMessage(name: "a", email: "a@example.com", topic: "t", message: "m") { success } }`)
	w := suite.request(http.MethodGet, "/graphql?"+q.Encode(), "", "")
	suite.Equal(http.StatusMethodNotAllowed, w.Code)
}

func (suite *RouterTestSuite) TestLogoutRevokesToken() {
	w := suite.post("/graphql_admin", `{"query":"mutation { logout { success } }"}`, suite.token)
	suite.Equal(http.StatusOK, w.Code)

	w = suite.post("/graphql_admin", `{"query":"{ me { email } }"}`, suite.token)
	suite.Equal(http.StatusUnauthorized, w.Code)

	// A stale token does not lock the client out of the public graph.
	w = suite.post("/graphql", `{"query":"mutation { login(email: \"admin@example.com\", password: \"password123\") { token } }"}`, suite.token)
	suite.Equal(http.StatusOK, w.Code)
	login := suite.decode(w)["data"].(map[string]interface{})["login"].(map[string]interface{})
	suite.NotEmpty(login["token"])
}

func (suite *RouterTestSuite) TestIntrospection() {
	w := suite.request(http.MethodGet, "/graphql_introspection_schema", "", "")
	suite.Equal(http.StatusForbidden, w.Code)

	w = suite.request(http.MethodGet, "/graphql_introspection_schema", "", suite.token)
	suite.Equal(http.StatusOK, w.Code)
	suite.True(strings.HasPrefix(w.Body.String(), `{"data":{"__schema":`))
	suite.NotContains(w.Body.String(), "createCategory")
	suite.NotContains(w.Body.String(), "\n")

	w = suite.request(http.MethodGet, "/graphql_introspection_schema?app=admin", "", suite.token)
	suite.Equal(http.StatusOK, w.Code)
	suite.Contains(w.Body.String(), "createCategory")
}

func TestRouterTestSuite(t *testing.T) {
	suite.Run(t, new(RouterTestSuite))
}
