package api

import (
	"github.com/gin-gonic/gin"

	"github.com/foodgram/backend/internal/middleware"
	"github.com/foodgram/backend/internal/service"
)

// Services bundles what the handlers depend on.
type Services struct {
	Auth          service.IAuthService
	Users         service.IUserService
	Subscriptions service.ISubscriptionService
	Recipes       service.IRecipeService
	ShoppingList  service.IShoppingListService
	Catalog       service.ICatalogService
}

// RegisterRoutes mounts every API route on router. limiter may be nil when
// Redis is not configured.
func RegisterRoutes(router *gin.RouterGroup, svc Services, pageSize int, limiter *middleware.RateLimiter) {
	NewAuthHandler(svc.Auth).RegisterRoutes(router)
	NewUserHandler(svc.Users, svc.Subscriptions, svc.Auth, pageSize).RegisterRoutes(router)
	NewCatalogHandler(svc.Catalog).RegisterRoutes(router)
	NewRecipeHandlerWithRateLimit(svc.Recipes, svc.ShoppingList, svc.Auth, pageSize, limiter).RegisterRoutes(router)
}
