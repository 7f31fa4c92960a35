package service

import (
	"context"

	"github.com/foodgram/backend/internal/repository"
	"github.com/foodgram/backend/internal/storage"
	"github.com/foodgram/backend/internal/types"
)

// IAuthService defines the interface for authentication operations
type IAuthService interface {
	Login(ctx context.Context, email, password string) (string, error)
	GenerateToken(userID uint, username string) (string, error)
	ValidateToken(ctx context.Context, token string) (*types.TokenClaims, error)
	Logout(ctx context.Context, claims *types.TokenClaims) error
}

// IUserService defines the interface for user account operations
type IUserService interface {
	Register(ctx context.Context, req types.RegisterRequest) (*types.UserCreated, error)
	Get(ctx context.Context, viewer Viewer, id uint) (*types.UserView, error)
	List(ctx context.Context, viewer Viewer, page repository.Page) ([]types.UserView, int64, error)
	SetPassword(ctx context.Context, viewer Viewer, req types.SetPasswordRequest) error
}

// ISubscriptionService defines the interface for follow operations
type ISubscriptionService interface {
	Subscribe(ctx context.Context, viewer Viewer, authorID uint, recipesLimit int) (*types.SubscriptionView, error)
	Unsubscribe(ctx context.Context, viewer Viewer, authorID uint) error
	List(ctx context.Context, viewer Viewer, page repository.Page, recipesLimit int) ([]types.SubscriptionView, int64, error)
}

// IRecipeService defines the interface for recipe operations
type IRecipeService interface {
	Create(ctx context.Context, viewer Viewer, input types.RecipeInput, upload *storage.Image) (*types.RecipeView, error)
	Update(ctx context.Context, viewer Viewer, id uint, input types.RecipeInput, upload *storage.Image, mode WriteMode) (*types.RecipeView, error)
	Delete(ctx context.Context, viewer Viewer, id uint) error
	Get(ctx context.Context, viewer Viewer, id uint) (*types.RecipeView, error)
	List(ctx context.Context, viewer Viewer, q RecipeQuery) ([]types.RecipeView, int64, error)
	AddFavorite(ctx context.Context, viewer Viewer, id uint) (*types.RecipeBrief, error)
	RemoveFavorite(ctx context.Context, viewer Viewer, id uint) error
	AddToCart(ctx context.Context, viewer Viewer, id uint) (*types.RecipeBrief, error)
	RemoveFromCart(ctx context.Context, viewer Viewer, id uint) error
}

// IShoppingListService defines the interface for the shopping list report
type IShoppingListService interface {
	BuildReport(ctx context.Context, userID uint) ([]ReportLine, error)
	Render(ctx context.Context, userID uint) (string, error)
}

// ICatalogService defines the interface for tag and ingredient reference data
type ICatalogService interface {
	ListTags(ctx context.Context) ([]types.TagView, error)
	GetTag(ctx context.Context, id uint) (*types.TagView, error)
	SearchIngredients(ctx context.Context, prefix string) ([]types.IngredientView, error)
	GetIngredient(ctx context.Context, id uint) (*types.IngredientView, error)
	ImportIngredients(ctx context.Context, records []types.IngredientView) (int64, error)
	ImportTags(ctx context.Context, records []types.TagView) (int, error)
}
