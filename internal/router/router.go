// internal/router/router.go
package router

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/javajoker/catalog-backend/internal/cache"
	"github.com/javajoker/catalog-backend/internal/config"
	"github.com/javajoker/catalog-backend/internal/graph"
	"github.com/javajoker/catalog-backend/internal/handlers"
	"github.com/javajoker/catalog-backend/internal/middleware"
	"github.com/javajoker/catalog-backend/internal/services"
	"github.com/javajoker/catalog-backend/internal/utils"
)

// Initialize wires services, schemas and routes. redisClient may be nil, in
// which case responses are not cached.
func Initialize(db *gorm.DB, cfg *config.Config, redisClient *redis.Client, store services.ImageStore) (*gin.Engine, error) {
	// Initialize services
	storageService := services.NewStorageService(store)
	authService := services.NewAuthService(db, cfg)

	schemas, err := graph.NewSchemas(&graph.Services{
		Auth:       authService,
		Categories: services.NewCategoryService(db, storageService, cfg),
		Offers:     services.NewOfferService(db, storageService, cfg),
		Materials:  services.NewMaterialService(db),
		Contact:    services.NewContactService(db, storageService),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build schemas: %w", err)
	}

	var responseCache *cache.ResponseCache
	if redisClient != nil {
		responseCache = cache.NewResponseCache(redisClient, time.Duration(cfg.Redis.CacheTTL)*time.Second)
	}

	// Initialize handlers
	publicHandler := handlers.NewGraphQLHandler(schemas.Public)
	adminHandler := handlers.NewGraphQLHandler(schemas.Admin)
	introspectionHandler := handlers.NewIntrospectionHandler(schemas)
	healthHandler := handlers.NewHealthHandler(db, redisClient)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimit)

	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(middleware.I18nMiddleware(cfg.I18n.DefaultLocale))

	r.GET("/health", healthHandler.Health)

	// Public catalog graph
	public := r.Group("/graphql")
	public.Use(middleware.OptionalJWTAuthentication(authService))
	public.Use(rateLimiter.Middleware())
	public.Use(middleware.QueryDepthGuard(cfg.Catalog.MaxQueryDepth))
	public.Use(middleware.ResponseCache(responseCache, "public"))
	{
		public.GET("", publicHandler.Serve)
		public.POST("", publicHandler.Serve)
	}

	// Staff-only admin graph
	admin := r.Group("/graphql_admin")
	admin.Use(middleware.JWTAuthentication(authService))
	admin.Use(middleware.AdminRequired())
	admin.Use(rateLimiter.Middleware())
	admin.Use(middleware.QueryDepthGuard(cfg.Catalog.MaxQueryDepth))
	admin.Use(middleware.AuditLogMiddleware(db))
	admin.Use(middleware.InvalidateResponseCache(responseCache))
	{
		admin.GET("", adminHandler.Serve)
		admin.POST("", adminHandler.Serve)
	}

	r.GET("/graphql_introspection_schema", middleware.JWTAuthentication(authService), introspectionHandler.Schema)

	return r, nil
}
