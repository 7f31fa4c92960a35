package service_test

import (
	"context"
	"encoding/base64"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/foodgram/backend/internal/models"
	"github.com/foodgram/backend/internal/service"
	"github.com/foodgram/backend/internal/storage"
	"github.com/foodgram/backend/internal/testhelpers"
	"github.com/foodgram/backend/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type catalog struct {
	author *models.User
	other  *models.User
	tags   []*models.Tag
	flour  *models.Ingredient
	salt   *models.Ingredient
	milk   *models.Ingredient
}

func seedCatalog(t *testing.T, e *env) *catalog {
	return &catalog{
		author: testhelpers.CreateTestUser(t, e.db, "author"),
		other:  testhelpers.CreateTestUser(t, e.db, "other"),
		tags: []*models.Tag{
			testhelpers.CreateTestTag(t, e.db, "Breakfast", 1),
			testhelpers.CreateTestTag(t, e.db, "Lunch", 2),
		},
		flour: testhelpers.CreateTestIngredient(t, e.db, "Flour", "g"),
		salt:  testhelpers.CreateTestIngredient(t, e.db, "Salt", "g"),
		milk:  testhelpers.CreateTestIngredient(t, e.db, "Milk", "ml"),
	}
}

func validationFields(t *testing.T, err error) map[string][]string {
	t.Helper()
	var verr *service.ValidationError
	require.True(t, errors.As(err, &verr), "expected ValidationError, got %v", err)
	return verr.Fields
}

func TestCreateRecipe(t *testing.T) {
	e := newEnv(t)
	c := seedCatalog(t, e)
	ctx := context.Background()
	viewer := service.Viewer{UserID: c.author.ID}

	view, err := e.recipes.Create(ctx, viewer, recipeInput(
		[]uint{c.tags[0].ID, c.tags[1].ID},
		types.IngredientAmount{ID: c.flour.ID, Amount: 200},
		types.IngredientAmount{ID: c.milk.ID, Amount: 300},
	), nil)
	require.NoError(t, err)

	assert.NotZero(t, view.ID)
	assert.Equal(t, "Pancakes", view.Name)
	assert.Equal(t, 15, view.CookingTime)
	assert.Len(t, view.Tags, 2)
	require.Len(t, view.Ingredients, 2)
	assert.Equal(t, types.IngredientLineView{ID: c.flour.ID, Name: "Flour", MeasurementUnit: "g", Amount: 200}, view.Ingredients[0])
	assert.Equal(t, c.author.ID, view.Author.ID)
	assert.False(t, view.IsFavorited)
	assert.False(t, view.IsInShoppingCart)
	assert.False(t, view.Author.IsSubscribed)

	require.True(t, strings.HasPrefix(view.Image, "/media/recipes/images/"))
	stored := filepath.Join(e.images.Dir(), strings.TrimPrefix(view.Image, "/media/"))
	data, err := os.ReadFile(stored)
	require.NoError(t, err)
	assert.Equal(t, pngBytes, data)
}

func TestCreateRecipeTagValidation(t *testing.T) {
	e := newEnv(t)
	c := seedCatalog(t, e)
	ctx := context.Background()
	viewer := service.Viewer{UserID: c.author.ID}
	line := types.IngredientAmount{ID: c.flour.ID, Amount: 1}

	_, err := e.recipes.Create(ctx, viewer, recipeInput([]uint{c.tags[0].ID, c.tags[0].ID}, line), nil)
	assert.Contains(t, validationFields(t, err), "tags")

	_, err = e.recipes.Create(ctx, viewer, recipeInput([]uint{}, line), nil)
	assert.Contains(t, validationFields(t, err), "tags")

	_, err = e.recipes.Create(ctx, viewer, recipeInput([]uint{c.tags[0].ID, 999}, line), nil)
	assert.Equal(t, []string{"Tag 999 does not exist."}, validationFields(t, err)["tags"])

	input := recipeInput(nil, line)
	input.Tags = nil
	_, err = e.recipes.Create(ctx, viewer, input, nil)
	assert.Equal(t, []string{service.FieldRequired}, validationFields(t, err)["tags"])

	var count int64
	require.NoError(t, e.db.Model(&models.Recipe{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCreateRecipeIngredientValidation(t *testing.T) {
	e := newEnv(t)
	c := seedCatalog(t, e)
	ctx := context.Background()
	viewer := service.Viewer{UserID: c.author.ID}
	tags := []uint{c.tags[0].ID}

	_, err := e.recipes.Create(ctx, viewer, recipeInput(tags), nil)
	assert.Contains(t, validationFields(t, err), "ingredients")

	_, err = e.recipes.Create(ctx, viewer, recipeInput(tags,
		types.IngredientAmount{ID: c.flour.ID, Amount: 1},
		types.IngredientAmount{ID: c.flour.ID, Amount: 2},
	), nil)
	assert.Contains(t, validationFields(t, err), "ingredients")

	_, err = e.recipes.Create(ctx, viewer, recipeInput(tags, types.IngredientAmount{ID: c.flour.ID, Amount: 0}), nil)
	assert.Contains(t, validationFields(t, err), "ingredients")

	_, err = e.recipes.Create(ctx, viewer, recipeInput(tags, types.IngredientAmount{ID: 4242, Amount: 3}), nil)
	assert.Equal(t, []string{"Ingredient 4242 does not exist."}, validationFields(t, err)["ingredients"])
}

func TestCreateRecipeScalarValidation(t *testing.T) {
	e := newEnv(t)
	c := seedCatalog(t, e)
	viewer := service.Viewer{UserID: c.author.ID}

	input := recipeInput([]uint{c.tags[0].ID}, types.IngredientAmount{ID: c.salt.ID, Amount: 1})
	input.CookingTime = ptr(0)
	input.Name = nil
	input.Image = ptr("not-an-image")

	_, err := e.recipes.Create(context.Background(), viewer, input, nil)
	fields := validationFields(t, err)
	assert.Contains(t, fields, "cooking_time")
	assert.Equal(t, []string{service.FieldRequired}, fields["name"])
	assert.Contains(t, fields, "image")
}

func TestCreateRecipeRequiresImage(t *testing.T) {
	e := newEnv(t)
	c := seedCatalog(t, e)

	input := recipeInput([]uint{c.tags[0].ID}, types.IngredientAmount{ID: c.salt.ID, Amount: 1})
	input.Image = nil
	_, err := e.recipes.Create(context.Background(), service.Viewer{UserID: c.author.ID}, input, nil)
	assert.Equal(t, []string{service.FieldRequired}, validationFields(t, err)["image"])
}

func TestCreateRecipeRejectsNonImageDataURI(t *testing.T) {
	e := newEnv(t)
	c := seedCatalog(t, e)

	input := recipeInput([]uint{c.tags[0].ID}, types.IngredientAmount{ID: c.salt.ID, Amount: 1})
	input.Image = ptr("data:image/html;base64," + base64.StdEncoding.EncodeToString([]byte("<html><script>alert(1)</script></html>")))
	_, err := e.recipes.Create(context.Background(), service.Viewer{UserID: c.author.ID}, input, nil)
	assert.Equal(t, []string{storage.ErrUnsupportedImage.Error()}, validationFields(t, err)["image"])

	entries, err := os.ReadDir(e.images.Dir())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestUpdateRecipeReplacesLines(t *testing.T) {
	e := newEnv(t)
	c := seedCatalog(t, e)
	ctx := context.Background()
	viewer := service.Viewer{UserID: c.author.ID}

	created, err := e.recipes.Create(ctx, viewer, recipeInput(
		[]uint{c.tags[0].ID},
		types.IngredientAmount{ID: c.flour.ID, Amount: 200},
		types.IngredientAmount{ID: c.salt.ID, Amount: 5},
	), nil)
	require.NoError(t, err)

	tags := []uint{c.tags[1].ID}
	lines := []types.IngredientAmount{{ID: c.milk.ID, Amount: 250}}
	updated, err := e.recipes.Update(ctx, viewer, created.ID, types.RecipeInput{
		Tags:        &tags,
		Ingredients: &lines,
		CookingTime: ptr(20),
	}, nil, service.WritePartial)
	require.NoError(t, err)

	assert.Equal(t, "Pancakes", updated.Name)
	assert.Equal(t, 20, updated.CookingTime)
	assert.Equal(t, created.Image, updated.Image)

	readBack, err := e.recipes.Get(ctx, service.Viewer{}, created.ID)
	require.NoError(t, err)
	assert.Equal(t, []types.IngredientLineView{{ID: c.milk.ID, Name: "Milk", MeasurementUnit: "ml", Amount: 250}}, readBack.Ingredients)
	require.Len(t, readBack.Tags, 1)
	assert.Equal(t, c.tags[1].ID, readBack.Tags[0].ID)

	var lineCount int64
	require.NoError(t, e.db.Model(&models.RecipeIngredient{}).Where("recipe_id = ?", created.ID).Count(&lineCount).Error)
	assert.Equal(t, int64(1), lineCount)
}

func TestPatchRecipeRequiresIngredients(t *testing.T) {
	e := newEnv(t)
	c := seedCatalog(t, e)
	ctx := context.Background()
	viewer := service.Viewer{UserID: c.author.ID}

	created, err := e.recipes.Create(ctx, viewer, recipeInput(
		[]uint{c.tags[0].ID},
		types.IngredientAmount{ID: c.flour.ID, Amount: 200},
	), nil)
	require.NoError(t, err)

	tags := []uint{c.tags[0].ID}
	_, err = e.recipes.Update(ctx, viewer, created.ID, types.RecipeInput{
		Tags: &tags,
		Name: ptr("Renamed"),
	}, nil, service.WritePartial)
	fields := validationFields(t, err)
	assert.Equal(t, []string{service.FieldRequired}, fields["ingredients"])

	readBack, err := e.recipes.Get(ctx, viewer, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Pancakes", readBack.Name)
	assert.Len(t, readBack.Ingredients, 1)
}

func TestReplaceRecipeRequiresScalars(t *testing.T) {
	e := newEnv(t)
	c := seedCatalog(t, e)
	ctx := context.Background()
	viewer := service.Viewer{UserID: c.author.ID}

	created, err := e.recipes.Create(ctx, viewer, recipeInput(
		[]uint{c.tags[0].ID},
		types.IngredientAmount{ID: c.flour.ID, Amount: 200},
	), nil)
	require.NoError(t, err)

	tags := []uint{c.tags[0].ID}
	lines := []types.IngredientAmount{{ID: c.flour.ID, Amount: 1}}
	_, err = e.recipes.Update(ctx, viewer, created.ID, types.RecipeInput{Tags: &tags, Ingredients: &lines}, nil, service.WriteReplace)
	fields := validationFields(t, err)
	assert.Contains(t, fields, "name")
	assert.Contains(t, fields, "text")
	assert.Contains(t, fields, "cooking_time")
	assert.NotContains(t, fields, "image")
}

func TestUpdateAndDeleteRequireAuthor(t *testing.T) {
	e := newEnv(t)
	c := seedCatalog(t, e)
	ctx := context.Background()

	created, err := e.recipes.Create(ctx, service.Viewer{UserID: c.author.ID}, recipeInput(
		[]uint{c.tags[0].ID},
		types.IngredientAmount{ID: c.flour.ID, Amount: 200},
	), nil)
	require.NoError(t, err)

	stranger := service.Viewer{UserID: c.other.ID}
	_, err = e.recipes.Update(ctx, stranger, created.ID, recipeInput([]uint{c.tags[0].ID}, types.IngredientAmount{ID: c.flour.ID, Amount: 1}), nil, service.WriteReplace)
	var perr *service.PermissionError
	assert.True(t, errors.As(err, &perr))

	err = e.recipes.Delete(ctx, stranger, created.ID)
	assert.True(t, errors.As(err, &perr))

	var nf *service.NotFoundError
	err = e.recipes.Delete(ctx, stranger, created.ID+100)
	assert.True(t, errors.As(err, &nf))
}

func TestDeleteRecipe(t *testing.T) {
	e := newEnv(t)
	c := seedCatalog(t, e)
	ctx := context.Background()
	viewer := service.Viewer{UserID: c.author.ID}

	created, err := e.recipes.Create(ctx, viewer, recipeInput(
		[]uint{c.tags[0].ID},
		types.IngredientAmount{ID: c.flour.ID, Amount: 200},
	), nil)
	require.NoError(t, err)
	_, err = e.recipes.AddToCart(ctx, service.Viewer{UserID: c.other.ID}, created.ID)
	require.NoError(t, err)

	require.NoError(t, e.recipes.Delete(ctx, viewer, created.ID))

	_, err = e.recipes.Get(ctx, viewer, created.ID)
	var nf *service.NotFoundError
	assert.True(t, errors.As(err, &nf))

	stored := filepath.Join(e.images.Dir(), strings.TrimPrefix(created.Image, "/media/"))
	_, err = os.Stat(stored)
	assert.True(t, os.IsNotExist(err))

	report, err := e.shopping.BuildReport(ctx, c.other.ID)
	require.NoError(t, err)
	assert.Empty(t, report)
}

func TestFavoriteTwice(t *testing.T) {
	e := newEnv(t)
	c := seedCatalog(t, e)
	ctx := context.Background()
	recipe := testhelpers.CreateTestRecipe(t, e.db, c.author, "Soup", []*models.Tag{c.tags[0]}, nil)
	viewer := service.Viewer{UserID: c.other.ID}

	brief, err := e.recipes.AddFavorite(ctx, viewer, recipe.ID)
	require.NoError(t, err)
	assert.Equal(t, recipe.ID, brief.ID)
	assert.Equal(t, "Soup", brief.Name)

	_, err = e.recipes.AddFavorite(ctx, viewer, recipe.ID)
	var conflict *service.ConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, "Already in favorites", conflict.Message)

	count, err := e.favorites.Count(ctx, c.other.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	view, err := e.recipes.Get(ctx, viewer, recipe.ID)
	require.NoError(t, err)
	assert.True(t, view.IsFavorited)
	assert.False(t, view.IsInShoppingCart)

	anonymous, err := e.recipes.Get(ctx, service.Viewer{}, recipe.ID)
	require.NoError(t, err)
	assert.False(t, anonymous.IsFavorited)
}

func TestUnfavoriteAbsent(t *testing.T) {
	e := newEnv(t)
	c := seedCatalog(t, e)
	ctx := context.Background()
	recipe := testhelpers.CreateTestRecipe(t, e.db, c.author, "Soup", []*models.Tag{c.tags[0]}, nil)
	viewer := service.Viewer{UserID: c.other.ID}

	err := e.recipes.RemoveFavorite(ctx, viewer, recipe.ID)
	var conflict *service.ConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, "Recipe was not in favorites", conflict.Message)

	count, err := e.favorites.Count(ctx, c.other.ID)
	require.NoError(t, err)
	assert.Zero(t, count)

	err = e.recipes.RemoveFavorite(ctx, viewer, recipe.ID+100)
	var nf *service.NotFoundError
	assert.True(t, errors.As(err, &nf))
}

func TestCartAddRemove(t *testing.T) {
	e := newEnv(t)
	c := seedCatalog(t, e)
	ctx := context.Background()
	recipe := testhelpers.CreateTestRecipe(t, e.db, c.author, "Soup", []*models.Tag{c.tags[0]}, nil)
	viewer := service.Viewer{UserID: c.other.ID}

	_, err := e.recipes.AddToCart(ctx, viewer, recipe.ID)
	require.NoError(t, err)
	_, err = e.recipes.AddToCart(ctx, viewer, recipe.ID)
	var conflict *service.ConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, "Already in shopping cart", conflict.Message)

	require.NoError(t, e.recipes.RemoveFromCart(ctx, viewer, recipe.ID))
	err = e.recipes.RemoveFromCart(ctx, viewer, recipe.ID)
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, "Recipe was not in shopping cart", conflict.Message)
}

func TestListRecipesFlagsAndFilters(t *testing.T) {
	e := newEnv(t)
	c := seedCatalog(t, e)
	ctx := context.Background()
	r1 := testhelpers.CreateTestRecipe(t, e.db, c.author, "One", []*models.Tag{c.tags[0]}, nil)
	r2 := testhelpers.CreateTestRecipe(t, e.db, c.author, "Two", []*models.Tag{c.tags[1]}, nil)
	viewer := service.Viewer{UserID: c.other.ID}

	_, err := e.recipes.AddFavorite(ctx, viewer, r1.ID)
	require.NoError(t, err)
	_, err = e.subscriptions.Subscribe(ctx, viewer, c.author.ID, service.Unlimited)
	require.NoError(t, err)

	views, total, err := e.recipes.List(ctx, viewer, service.RecipeQuery{IsFavorited: ptr(true)})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, views, 1)
	assert.Equal(t, r1.ID, views[0].ID)
	assert.True(t, views[0].IsFavorited)
	assert.True(t, views[0].Author.IsSubscribed)

	// Anonymous viewers ignore the favorite filter.
	views, total, err = e.recipes.List(ctx, service.Viewer{}, service.RecipeQuery{IsFavorited: ptr(true)})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	for _, v := range views {
		assert.False(t, v.IsFavorited)
		assert.False(t, v.Author.IsSubscribed)
	}

	views, _, err = e.recipes.List(ctx, viewer, service.RecipeQuery{TagSlugs: []string{c.tags[1].Slug}})
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, r2.ID, views[0].ID)
}

func TestListRecipesExcludesFavoritedAndCarted(t *testing.T) {
	e := newEnv(t)
	c := seedCatalog(t, e)
	ctx := context.Background()
	r1 := testhelpers.CreateTestRecipe(t, e.db, c.author, "One", []*models.Tag{c.tags[0]}, nil)
	r2 := testhelpers.CreateTestRecipe(t, e.db, c.author, "Two", []*models.Tag{c.tags[1]}, nil)
	viewer := service.Viewer{UserID: c.other.ID}

	_, err := e.recipes.AddFavorite(ctx, viewer, r1.ID)
	require.NoError(t, err)
	_, err = e.recipes.AddToCart(ctx, viewer, r2.ID)
	require.NoError(t, err)

	views, total, err := e.recipes.List(ctx, viewer, service.RecipeQuery{IsFavorited: ptr(false)})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, views, 1)
	assert.Equal(t, r2.ID, views[0].ID)

	views, total, err = e.recipes.List(ctx, viewer, service.RecipeQuery{IsInShoppingCart: ptr(false)})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, views, 1)
	assert.Equal(t, r1.ID, views[0].ID)

	_, total, err = e.recipes.List(ctx, viewer, service.RecipeQuery{IsFavorited: ptr(false), IsInShoppingCart: ptr(false)})
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)

	// Anonymous viewers ignore the exclusion too.
	_, total, err = e.recipes.List(ctx, service.Viewer{}, service.RecipeQuery{IsFavorited: ptr(false)})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
}
