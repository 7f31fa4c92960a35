package repository

import (
	"context"
	"fmt"

	"github.com/foodgram/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Line is one ingredient entry of a recipe write.
type Line struct {
	IngredientID uint
	Amount       int
}

// LineRow is a recipe line joined with its ingredient.
type LineRow struct {
	RecipeID        uint
	IngredientID    uint
	Name            string
	MeasurementUnit string
	Amount          int
}

// RecipeFilter narrows List. Zero values disable a filter.
type RecipeFilter struct {
	AuthorID    uint
	TagSlugs    []string
	FavoritedBy uint
	InCartOf    uint
	Page        Page

	// NotFavoritedBy and NotInCartOf drop recipes the user has favorited or carted.
	NotFavoritedBy uint
	NotInCartOf    uint
}

type RecipeRepository struct {
	db *gorm.DB
}

func NewRecipeRepository(db *gorm.DB) *RecipeRepository {
	return &RecipeRepository{db: db}
}

// Create inserts the recipe, its tag set and its lines in one transaction.
func (r *RecipeRepository) Create(ctx context.Context, recipe *models.Recipe, tagIDs []uint, lines []Line) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkReferences(tx, tagIDs, lines); err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations).Create(recipe).Error; err != nil {
			return fmt.Errorf("create recipe: %w", translate(err))
		}
		return insertChildren(tx, recipe.ID, tagIDs, lines)
	})
}

// Update replaces the scalar fields, the tag set and every line of an existing
// recipe in one transaction. Old lines are deleted, not merged.
func (r *RecipeRepository) Update(ctx context.Context, recipe *models.Recipe, tagIDs []uint, lines []Line) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Recipe
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&existing, recipe.ID).Error; err != nil {
			return translate(err)
		}
		if err := checkReferences(tx, tagIDs, lines); err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.RecipeTag{}).Error; err != nil {
			return fmt.Errorf("clear recipe tags: %w", err)
		}
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return fmt.Errorf("clear recipe lines: %w", err)
		}
		err := tx.Model(&existing).Select("name", "text", "cooking_time", "image").Updates(map[string]interface{}{
			"name":         recipe.Name,
			"text":         recipe.Text,
			"cooking_time": recipe.CookingTime,
			"image":        recipe.Image,
		}).Error
		if err != nil {
			return fmt.Errorf("update recipe: %w", translate(err))
		}
		if err := insertChildren(tx, recipe.ID, tagIDs, lines); err != nil {
			return err
		}
		return tx.First(recipe, recipe.ID).Error
	})
}

// Delete removes a recipe with its lines, tags and every edge pointing at it.
func (r *RecipeRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, child := range []interface{}{
			&models.RecipeTag{},
			&models.RecipeIngredient{},
			&models.Favorite{},
			&models.ShoppingCartItem{},
		} {
			if err := tx.Where("recipe_id = ?", id).Delete(child).Error; err != nil {
				return err
			}
		}
		res := tx.Delete(&models.Recipe{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (r *RecipeRepository) Get(ctx context.Context, id uint) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := r.db.WithContext(ctx).First(&recipe, id).Error; err != nil {
		return nil, translate(err)
	}
	return &recipe, nil
}

// List returns one page of recipes matching f, newest first, and the total match count.
func (r *RecipeRepository) List(ctx context.Context, f RecipeFilter) ([]models.Recipe, int64, error) {
	var total int64
	if err := r.filtered(ctx, f).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var recipes []models.Recipe
	q := r.filtered(ctx, f).Order("recipes.created_at DESC, recipes.id DESC")
	if err := f.Page.apply(q).Find(&recipes).Error; err != nil {
		return nil, 0, err
	}
	return recipes, total, nil
}

func (r *RecipeRepository) filtered(ctx context.Context, f RecipeFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&models.Recipe{})
	if f.AuthorID != 0 {
		q = q.Where("recipes.author_id = ?", f.AuthorID)
	}
	if len(f.TagSlugs) > 0 {
		q = q.Where("recipes.id IN (?)", r.db.
			Table("recipe_tags").
			Select("recipe_tags.recipe_id").
			Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
			Where("tags.slug IN ?", f.TagSlugs))
	}
	if f.FavoritedBy != 0 {
		q = q.Where("recipes.id IN (?)", r.edgeRecipes("favorites", f.FavoritedBy))
	}
	if f.NotFavoritedBy != 0 {
		q = q.Where("recipes.id NOT IN (?)", r.edgeRecipes("favorites", f.NotFavoritedBy))
	}
	if f.InCartOf != 0 {
		q = q.Where("recipes.id IN (?)", r.edgeRecipes("shopping_cart_items", f.InCartOf))
	}
	if f.NotInCartOf != 0 {
		q = q.Where("recipes.id NOT IN (?)", r.edgeRecipes("shopping_cart_items", f.NotInCartOf))
	}
	return q
}

func (r *RecipeRepository) edgeRecipes(table string, userID uint) *gorm.DB {
	return r.db.Table(table).Select("recipe_id").Where("user_id = ?", userID)
}

// ByAuthor returns the author's recipes, newest first. A negative limit means all of them.
func (r *RecipeRepository) ByAuthor(ctx context.Context, authorID uint, limit int) ([]models.Recipe, error) {
	var recipes []models.Recipe
	q := r.db.WithContext(ctx).
		Where("author_id = ?", authorID).
		Order("created_at DESC, id DESC")
	if limit >= 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&recipes).Error; err != nil {
		return nil, err
	}
	return recipes, nil
}

// ByIDs loads recipes keyed by id. Missing ids are absent from the map.
func (r *RecipeRepository) ByIDs(ctx context.Context, ids []uint) (map[uint]models.Recipe, error) {
	out := make(map[uint]models.Recipe, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var recipes []models.Recipe
	if err := r.db.WithContext(ctx).Where("id IN ?", uniqueIDs(ids)).Find(&recipes).Error; err != nil {
		return nil, err
	}
	for _, recipe := range recipes {
		out[recipe.ID] = recipe
	}
	return out, nil
}

// CountByAuthors returns the number of recipes per author id.
func (r *RecipeRepository) CountByAuthors(ctx context.Context, authorIDs []uint) (map[uint]int64, error) {
	counts := make(map[uint]int64, len(authorIDs))
	if len(authorIDs) == 0 {
		return counts, nil
	}
	var rows []struct {
		AuthorID uint
		Total    int64
	}
	err := r.db.WithContext(ctx).
		Model(&models.Recipe{}).
		Select("author_id, COUNT(*) AS total").
		Where("author_id IN ?", uniqueIDs(authorIDs)).
		Group("author_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.AuthorID] = row.Total
	}
	return counts, nil
}

// TagsForRecipes returns each recipe's tags ordered by tag id.
func (r *RecipeRepository) TagsForRecipes(ctx context.Context, recipeIDs []uint) (map[uint][]models.Tag, error) {
	out := make(map[uint][]models.Tag, len(recipeIDs))
	if len(recipeIDs) == 0 {
		return out, nil
	}
	var rows []struct {
		RecipeID uint
		models.Tag
	}
	err := r.db.WithContext(ctx).
		Table("recipe_tags").
		Select("recipe_tags.recipe_id, tags.id, tags.name, tags.color, tags.slug").
		Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
		Where("recipe_tags.recipe_id IN ?", uniqueIDs(recipeIDs)).
		Order("tags.id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.RecipeID] = append(out[row.RecipeID], row.Tag)
	}
	return out, nil
}

// LinesForRecipes returns each recipe's ingredient lines in insertion order.
func (r *RecipeRepository) LinesForRecipes(ctx context.Context, recipeIDs []uint) (map[uint][]LineRow, error) {
	out := make(map[uint][]LineRow, len(recipeIDs))
	if len(recipeIDs) == 0 {
		return out, nil
	}
	var rows []LineRow
	err := r.db.WithContext(ctx).
		Table("recipe_ingredients").
		Select("recipe_ingredients.recipe_id, recipe_ingredients.ingredient_id, ingredients.name, ingredients.measurement_unit, recipe_ingredients.amount").
		Joins("JOIN ingredients ON ingredients.id = recipe_ingredients.ingredient_id").
		Where("recipe_ingredients.recipe_id IN ?", uniqueIDs(recipeIDs)).
		Order("recipe_ingredients.id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.RecipeID] = append(out[row.RecipeID], row)
	}
	return out, nil
}

// CartLines streams every line of every recipe in the user's shopping cart,
// ordered by when the recipe entered the cart and then by line.
func (r *RecipeRepository) CartLines(ctx context.Context, userID uint) ([]LineRow, error) {
	var rows []LineRow
	err := r.db.WithContext(ctx).
		Table("shopping_cart_items").
		Select("recipe_ingredients.recipe_id, recipe_ingredients.ingredient_id, ingredients.name, ingredients.measurement_unit, recipe_ingredients.amount").
		Joins("JOIN recipe_ingredients ON recipe_ingredients.recipe_id = shopping_cart_items.recipe_id").
		Joins("JOIN ingredients ON ingredients.id = recipe_ingredients.ingredient_id").
		Where("shopping_cart_items.user_id = ?", userID).
		Order("shopping_cart_items.added_at, shopping_cart_items.id, recipe_ingredients.id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// checkReferences fails when any tag or ingredient id is unknown, so a write
// never silently drops a line.
func checkReferences(tx *gorm.DB, tagIDs []uint, lines []Line) error {
	tags := uniqueIDs(tagIDs)
	if len(tags) > 0 {
		var count int64
		if err := tx.Model(&models.Tag{}).Where("id IN ?", tags).Count(&count).Error; err != nil {
			return err
		}
		if count != int64(len(tags)) {
			return fmt.Errorf("tags: %w", ErrMissingReference)
		}
	}

	ingredientIDs := make([]uint, 0, len(lines))
	for _, line := range lines {
		ingredientIDs = append(ingredientIDs, line.IngredientID)
	}
	ingredients := uniqueIDs(ingredientIDs)
	if len(ingredients) > 0 {
		var count int64
		if err := tx.Model(&models.Ingredient{}).Where("id IN ?", ingredients).Count(&count).Error; err != nil {
			return err
		}
		if count != int64(len(ingredients)) {
			return fmt.Errorf("ingredients: %w", ErrMissingReference)
		}
	}
	return nil
}

func insertChildren(tx *gorm.DB, recipeID uint, tagIDs []uint, lines []Line) error {
	if len(tagIDs) > 0 {
		rows := make([]models.RecipeTag, 0, len(tagIDs))
		for _, id := range tagIDs {
			rows = append(rows, models.RecipeTag{RecipeID: recipeID, TagID: id})
		}
		if err := tx.Omit(clause.Associations).Create(&rows).Error; err != nil {
			return fmt.Errorf("insert recipe tags: %w", translate(err))
		}
	}
	if len(lines) > 0 {
		rows := make([]models.RecipeIngredient, 0, len(lines))
		for _, line := range lines {
			rows = append(rows, models.RecipeIngredient{
				RecipeID:     recipeID,
				IngredientID: line.IngredientID,
				Amount:       line.Amount,
			})
		}
		if err := tx.Omit(clause.Associations).Create(&rows).Error; err != nil {
			return fmt.Errorf("insert recipe lines: %w", translate(err))
		}
	}
	return nil
}
