package service

import (
	"context"

	"github.com/foodgram/backend/internal/models"
	"github.com/foodgram/backend/internal/repository"
	"github.com/foodgram/backend/internal/storage"
	"github.com/foodgram/backend/internal/types"
)

// Viewer is the identity a view is rendered for. UserID 0 is anonymous.
type Viewer struct {
	UserID uint
}

// Anonymous reports whether the viewer is not logged in.
func (v Viewer) Anonymous() bool {
	return v.UserID == 0
}

// ViewBuilder renders models into API views relative to a viewer. Derived
// flags are looked up in batches, one query per relation per call.
type ViewBuilder struct {
	recipes   *repository.RecipeRepository
	users     *repository.UserRepository
	favorites *repository.EdgeRepository
	cart      *repository.EdgeRepository
	follows   *repository.EdgeRepository
	images    storage.ImageStore
}

func NewViewBuilder(
	recipes *repository.RecipeRepository,
	users *repository.UserRepository,
	favorites, cart, follows *repository.EdgeRepository,
	images storage.ImageStore,
) *ViewBuilder {
	return &ViewBuilder{
		recipes:   recipes,
		users:     users,
		favorites: favorites,
		cart:      cart,
		follows:   follows,
		images:    images,
	}
}

// Recipe renders a single recipe.
func (b *ViewBuilder) Recipe(ctx context.Context, viewer Viewer, recipe models.Recipe) (*types.RecipeView, error) {
	views, err := b.Recipes(ctx, viewer, []models.Recipe{recipe})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// Recipes renders recipes in the given order.
func (b *ViewBuilder) Recipes(ctx context.Context, viewer Viewer, recipes []models.Recipe) ([]types.RecipeView, error) {
	views := make([]types.RecipeView, 0, len(recipes))
	if len(recipes) == 0 {
		return views, nil
	}

	recipeIDs := make([]uint, len(recipes))
	authorIDs := make([]uint, len(recipes))
	for i, r := range recipes {
		recipeIDs[i] = r.ID
		authorIDs[i] = r.AuthorID
	}

	tags, err := b.recipes.TagsForRecipes(ctx, recipeIDs)
	if err != nil {
		return nil, err
	}
	lines, err := b.recipes.LinesForRecipes(ctx, recipeIDs)
	if err != nil {
		return nil, err
	}
	authors, err := b.users.ByIDs(ctx, authorIDs)
	if err != nil {
		return nil, err
	}
	favorited, err := b.favorites.MemberSet(ctx, viewer.UserID, recipeIDs)
	if err != nil {
		return nil, err
	}
	inCart, err := b.cart.MemberSet(ctx, viewer.UserID, recipeIDs)
	if err != nil {
		return nil, err
	}
	subscribed, err := b.follows.MemberSet(ctx, viewer.UserID, authorIDs)
	if err != nil {
		return nil, err
	}

	for _, r := range recipes {
		view := types.RecipeView{
			ID:               r.ID,
			Tags:             make([]types.TagView, 0, len(tags[r.ID])),
			Author:           userView(authors[r.AuthorID], subscribed[r.AuthorID]),
			Ingredients:      make([]types.IngredientLineView, 0, len(lines[r.ID])),
			IsFavorited:      favorited[r.ID],
			IsInShoppingCart: inCart[r.ID],
			Name:             r.Name,
			Image:            b.images.URL(r.Image),
			Text:             r.Text,
			CookingTime:      r.CookingTime,
		}
		for _, tag := range tags[r.ID] {
			view.Tags = append(view.Tags, TagView(tag))
		}
		for _, line := range lines[r.ID] {
			view.Ingredients = append(view.Ingredients, types.IngredientLineView{
				ID:              line.IngredientID,
				Name:            line.Name,
				MeasurementUnit: line.MeasurementUnit,
				Amount:          line.Amount,
			})
		}
		views = append(views, view)
	}
	return views, nil
}

// Brief renders the short recipe form.
func (b *ViewBuilder) Brief(recipe models.Recipe) types.RecipeBrief {
	return types.RecipeBrief{
		ID:          recipe.ID,
		Name:        recipe.Name,
		Image:       b.images.URL(recipe.Image),
		CookingTime: recipe.CookingTime,
	}
}

// Users renders users with the viewer's subscription flag.
func (b *ViewBuilder) Users(ctx context.Context, viewer Viewer, users []models.User) ([]types.UserView, error) {
	ids := make([]uint, len(users))
	for i, u := range users {
		ids[i] = u.ID
	}
	subscribed, err := b.follows.MemberSet(ctx, viewer.UserID, ids)
	if err != nil {
		return nil, err
	}
	views := make([]types.UserView, 0, len(users))
	for _, u := range users {
		views = append(views, userView(u, subscribed[u.ID]))
	}
	return views, nil
}

func userView(u models.User, subscribed bool) types.UserView {
	return types.UserView{
		Email:        u.Email,
		ID:           u.ID,
		Username:     u.Username,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		IsSubscribed: subscribed,
	}
}

// TagView renders a tag.
func TagView(tag models.Tag) types.TagView {
	return types.TagView{ID: tag.ID, Name: tag.Name, Color: tag.Color, Slug: tag.Slug}
}

// IngredientView renders an ingredient.
func IngredientView(ing models.Ingredient) types.IngredientView {
	return types.IngredientView{ID: ing.ID, Name: ing.Name, MeasurementUnit: ing.MeasurementUnit}
}
