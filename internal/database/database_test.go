package database_test

import (
	"context"
	"errors"
	"testing"

	"github.com/foodgram/backend/internal/database"
	"github.com/foodgram/backend/internal/models"
	"github.com/foodgram/backend/internal/testhelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestDatabase(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	require.NotNil(t, db)
	require.NoError(t, database.HealthCheck(context.Background(), db))

	user := testhelpers.CreateTestUser(t, db, "alice")
	assert.NotZero(t, user.ID)
}

func TestUniqueConstraintsTranslate(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	user := testhelpers.CreateTestUser(t, db, "alice")
	author := testhelpers.CreateTestUser(t, db, "bob")
	recipe := testhelpers.CreateTestRecipe(t, db, author, "Soup", nil, nil)

	require.NoError(t, db.Create(&models.Favorite{UserID: user.ID, RecipeID: recipe.ID}).Error)
	err := db.Create(&models.Favorite{UserID: user.ID, RecipeID: recipe.ID}).Error
	assert.True(t, errors.Is(err, gorm.ErrDuplicatedKey), "got %v", err)

	testhelpers.CreateTestIngredient(t, db, "Flour", "g")
	err = db.Create(&models.Ingredient{Name: "Flour", MeasurementUnit: "g"}).Error
	assert.True(t, errors.Is(err, gorm.ErrDuplicatedKey), "got %v", err)

	// Same name with another unit is a distinct ingredient.
	require.NoError(t, db.Create(&models.Ingredient{Name: "Flour", MeasurementUnit: "kg"}).Error)
}

func TestSelfFollowRejectedByConstraint(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	user := testhelpers.CreateTestUser(t, db, "alice")

	err := db.Create(&models.Follow{FollowerID: user.ID, FolloweeID: user.ID}).Error
	assert.Error(t, err)
}

func TestRunMigrationsPostgres(t *testing.T) {
	db := testhelpers.SetupPostgresDB(t)

	require.NoError(t, database.RunMigrations(db, "../../migrations"))
	// Re-running skips recorded files.
	require.NoError(t, database.RunMigrations(db, "../../migrations"))

	var count int64
	require.NoError(t, db.Table("migrations").Count(&count).Error)
	assert.Equal(t, int64(2), count)
}
