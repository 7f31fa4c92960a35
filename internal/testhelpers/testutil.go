package testhelpers

import (
	"fmt"
	"testing"

	"github.com/foodgram/backend/internal/models"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// TestPassword is the plain-text password of every user created by CreateTestUser.
const TestPassword = "password123"

// Line describes one ingredient line for CreateTestRecipe.
type Line struct {
	Ingredient *models.Ingredient
	Amount     int
}

// CreateTestUser inserts a user named username with TestPassword.
func CreateTestUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	require.NoError(t, err)

	user := &models.User{
		Email:        fmt.Sprintf("%s@example.com", username),
		Username:     username,
		FirstName:    "Test",
		LastName:     username,
		PasswordHash: string(hash),
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// CreateTestTag inserts a tag whose slug and color are derived from name and n.
func CreateTestTag(t *testing.T, db *gorm.DB, name string, n int) *models.Tag {
	t.Helper()

	tag := &models.Tag{
		Name:  name,
		Color: fmt.Sprintf("#%06x", n),
		Slug:  fmt.Sprintf("tag-%d", n),
	}
	require.NoError(t, db.Create(tag).Error)
	return tag
}

func CreateTestIngredient(t *testing.T, db *gorm.DB, name, unit string) *models.Ingredient {
	t.Helper()

	ingredient := &models.Ingredient{Name: name, MeasurementUnit: unit}
	require.NoError(t, db.Create(ingredient).Error)
	return ingredient
}

// CreateTestRecipe inserts a recipe with its tags and lines directly, bypassing the service layer.
func CreateTestRecipe(t *testing.T, db *gorm.DB, author *models.User, name string, tags []*models.Tag, lines []Line) *models.Recipe {
	t.Helper()

	recipe := &models.Recipe{
		AuthorID:    author.ID,
		Name:        name,
		Text:        "Mix everything.",
		CookingTime: 10,
		Image:       "recipes/images/test.png",
	}
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(recipe).Error; err != nil {
			return err
		}
		for _, tag := range tags {
			if err := tx.Create(&models.RecipeTag{RecipeID: recipe.ID, TagID: tag.ID}).Error; err != nil {
				return err
			}
		}
		for _, line := range lines {
			row := &models.RecipeIngredient{
				RecipeID:     recipe.ID,
				IngredientID: line.Ingredient.ID,
				Amount:       line.Amount,
			}
			if err := tx.Create(row).Error; err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)
	return recipe
}
