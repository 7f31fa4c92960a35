package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/foodgram/backend/config"
	"github.com/foodgram/backend/internal/api"
	"github.com/foodgram/backend/internal/logging"
	"github.com/foodgram/backend/internal/middleware"
	"github.com/foodgram/backend/internal/repository"
	"github.com/foodgram/backend/internal/router"
	"github.com/foodgram/backend/internal/service"
	"github.com/foodgram/backend/internal/storage"
)

// Server represents the HTTP server
type Server struct {
	cfg    *config.Config
	router *gin.Engine
	http   *http.Server
}

// NewServices wires repositories into the services the handlers use. Token
// revocation lives in Redis when a client is given, in memory otherwise.
func NewServices(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, images storage.ImageStore) api.Services {
	recipeRepo := repository.NewRecipeRepository(db)
	userRepo := repository.NewUserRepository(db)
	tagRepo := repository.NewTagRepository(db)
	ingredientRepo := repository.NewIngredientRepository(db)
	favorites := repository.NewFavoriteRepository(db)
	cart := repository.NewCartRepository(db)
	follows := repository.NewFollowRepository(db)
	views := service.NewViewBuilder(recipeRepo, userRepo, favorites, cart, follows, images)

	var tokens service.TokenStore = service.NewMemoryTokenStore()
	if redisClient != nil {
		tokens = service.NewRedisTokenStore(redisClient)
	}

	return api.Services{
		Auth:          service.NewAuthService(userRepo, tokens, cfg.JWTSecret, cfg.TokenTTL),
		Users:         service.NewUserService(userRepo, views),
		Subscriptions: service.NewSubscriptionService(userRepo, recipeRepo, follows, views),
		Recipes:       service.NewRecipeService(recipeRepo, tagRepo, ingredientRepo, favorites, cart, images, views),
		ShoppingList:  service.NewShoppingListService(recipeRepo),
		Catalog:       service.NewCatalogService(tagRepo, ingredientRepo),
	}
}

// New creates a new server instance. redisClient may be nil.
func New(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, images storage.ImageStore) *Server {
	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	deps := router.Dependencies{
		DB:          db,
		Services:    NewServices(cfg, db, redisClient, images),
		PageSize:    cfg.PageSize,
		CORSOrigins: cfg.CORSOrigins,
	}
	if redisClient != nil && cfg.RecipeCreateLimit > 0 {
		deps.Limiter = middleware.NewRecipeCreationRateLimiter(redisClient, cfg.RecipeCreateLimit)
	}
	if fs, ok := images.(*storage.FilesystemStore); ok && strings.HasPrefix(cfg.MediaBaseURL, "/") {
		deps.MediaDir = fs.Dir()
		deps.MediaRoute = cfg.MediaBaseURL
	}

	r := router.SetupRouter(deps)
	return &Server{
		cfg:    cfg,
		router: r,
		http: &http.Server{
			Addr:              net.JoinHostPort(cfg.ServerHost, cfg.ServerPort),
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until Shutdown is called.
func (s *Server) Start() error {
	logging.Info().Str("addr", s.http.Addr).Msg("Starting server")
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return s.http.Shutdown(ctx)
}
