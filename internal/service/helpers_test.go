package service_test

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/foodgram/backend/internal/repository"
	"github.com/foodgram/backend/internal/service"
	"github.com/foodgram/backend/internal/storage"
	"github.com/foodgram/backend/internal/testhelpers"
	"github.com/foodgram/backend/internal/types"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type env struct {
	db            *gorm.DB
	images        *storage.FilesystemStore
	favorites     *repository.EdgeRepository
	cart          *repository.EdgeRepository
	follows       *repository.EdgeRepository
	recipes       *service.RecipeService
	shopping      *service.ShoppingListService
	subscriptions *service.SubscriptionService
	users         *service.UserService
	auth          *service.AuthService
	catalog       *service.CatalogService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db := testhelpers.SetupTestDB(t)
	images, err := storage.NewFilesystemStore(t.TempDir(), "/media")
	require.NoError(t, err)

	recipeRepo := repository.NewRecipeRepository(db)
	userRepo := repository.NewUserRepository(db)
	tagRepo := repository.NewTagRepository(db)
	ingredientRepo := repository.NewIngredientRepository(db)
	favorites := repository.NewFavoriteRepository(db)
	cart := repository.NewCartRepository(db)
	follows := repository.NewFollowRepository(db)
	views := service.NewViewBuilder(recipeRepo, userRepo, favorites, cart, follows, images)

	return &env{
		db:            db,
		images:        images,
		favorites:     favorites,
		cart:          cart,
		follows:       follows,
		recipes:       service.NewRecipeService(recipeRepo, tagRepo, ingredientRepo, favorites, cart, images, views),
		shopping:      service.NewShoppingListService(recipeRepo),
		subscriptions: service.NewSubscriptionService(userRepo, recipeRepo, follows, views),
		users:         service.NewUserService(userRepo, views).WithHashCost(bcrypt.MinCost),
		auth:          service.NewAuthService(userRepo, service.NewMemoryTokenStore(), "test-secret", time.Hour),
		catalog:       service.NewCatalogService(tagRepo, ingredientRepo),
	}
}

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

var pngDataURI = "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngBytes)

func ptr[T any](v T) *T {
	return &v
}

// recipeInput builds a complete recipe write.
func recipeInput(tags []uint, lines ...types.IngredientAmount) types.RecipeInput {
	return types.RecipeInput{
		Tags:        &tags,
		Ingredients: &lines,
		Name:        ptr("Pancakes"),
		Text:        ptr("Mix and fry."),
		CookingTime: ptr(15),
		Image:       ptr(pngDataURI),
	}
}
