package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/foodgram/backend/internal/service"
	"github.com/foodgram/backend/internal/storage"
	"github.com/foodgram/backend/internal/types"
)

// MockRecipeService is a mock implementation of the IRecipeService interface
type MockRecipeService struct {
	mock.Mock
}

var _ service.IRecipeService = (*MockRecipeService)(nil)

func (m *MockRecipeService) Create(ctx context.Context, viewer service.Viewer, input types.RecipeInput, upload *storage.Image) (*types.RecipeView, error) {
	args := m.Called(ctx, viewer, input, upload)
	return recipeView(args)
}

func (m *MockRecipeService) Update(ctx context.Context, viewer service.Viewer, id uint, input types.RecipeInput, upload *storage.Image, mode service.WriteMode) (*types.RecipeView, error) {
	args := m.Called(ctx, viewer, id, input, upload, mode)
	return recipeView(args)
}

func (m *MockRecipeService) Delete(ctx context.Context, viewer service.Viewer, id uint) error {
	return m.Called(ctx, viewer, id).Error(0)
}

func (m *MockRecipeService) Get(ctx context.Context, viewer service.Viewer, id uint) (*types.RecipeView, error) {
	args := m.Called(ctx, viewer, id)
	return recipeView(args)
}

func (m *MockRecipeService) List(ctx context.Context, viewer service.Viewer, q service.RecipeQuery) ([]types.RecipeView, int64, error) {
	args := m.Called(ctx, viewer, q)
	recipes, _ := args.Get(0).([]types.RecipeView)
	return recipes, args.Get(1).(int64), args.Error(2)
}

func (m *MockRecipeService) AddFavorite(ctx context.Context, viewer service.Viewer, id uint) (*types.RecipeBrief, error) {
	args := m.Called(ctx, viewer, id)
	return recipeBrief(args)
}

func (m *MockRecipeService) RemoveFavorite(ctx context.Context, viewer service.Viewer, id uint) error {
	return m.Called(ctx, viewer, id).Error(0)
}

func (m *MockRecipeService) AddToCart(ctx context.Context, viewer service.Viewer, id uint) (*types.RecipeBrief, error) {
	args := m.Called(ctx, viewer, id)
	return recipeBrief(args)
}

func (m *MockRecipeService) RemoveFromCart(ctx context.Context, viewer service.Viewer, id uint) error {
	return m.Called(ctx, viewer, id).Error(0)
}

func recipeView(args mock.Arguments) (*types.RecipeView, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.RecipeView), args.Error(1)
}

func recipeBrief(args mock.Arguments) (*types.RecipeBrief, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.RecipeBrief), args.Error(1)
}

// MockShoppingListService is a mock implementation of the IShoppingListService interface
type MockShoppingListService struct {
	mock.Mock
}

var _ service.IShoppingListService = (*MockShoppingListService)(nil)

func (m *MockShoppingListService) BuildReport(ctx context.Context, userID uint) ([]service.ReportLine, error) {
	args := m.Called(ctx, userID)
	lines, _ := args.Get(0).([]service.ReportLine)
	return lines, args.Error(1)
}

func (m *MockShoppingListService) Render(ctx context.Context, userID uint) (string, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Error(1)
}

// MockCatalogService is a mock implementation of the ICatalogService interface
type MockCatalogService struct {
	mock.Mock
}

var _ service.ICatalogService = (*MockCatalogService)(nil)

func (m *MockCatalogService) ListTags(ctx context.Context) ([]types.TagView, error) {
	args := m.Called(ctx)
	tags, _ := args.Get(0).([]types.TagView)
	return tags, args.Error(1)
}

func (m *MockCatalogService) GetTag(ctx context.Context, id uint) (*types.TagView, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.TagView), args.Error(1)
}

func (m *MockCatalogService) SearchIngredients(ctx context.Context, prefix string) ([]types.IngredientView, error) {
	args := m.Called(ctx, prefix)
	ings, _ := args.Get(0).([]types.IngredientView)
	return ings, args.Error(1)
}

func (m *MockCatalogService) GetIngredient(ctx context.Context, id uint) (*types.IngredientView, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.IngredientView), args.Error(1)
}

func (m *MockCatalogService) ImportIngredients(ctx context.Context, records []types.IngredientView) (int64, error) {
	args := m.Called(ctx, records)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCatalogService) ImportTags(ctx context.Context, records []types.TagView) (int, error) {
	args := m.Called(ctx, records)
	return args.Int(0), args.Error(1)
}
