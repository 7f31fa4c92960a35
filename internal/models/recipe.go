package models

import (
	"time"
)

type Recipe struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	AuthorID    uint      `gorm:"not null;index" json:"author_id"`
	Name        string    `gorm:"size:200;not null" json:"name"`
	Image       string    `gorm:"size:255" json:"image"`
	Text        string    `gorm:"type:text;not null" json:"text"`
	CookingTime int       `gorm:"not null;check:chk_cooking_time_positive,cooking_time >= 1" json:"cooking_time"`

	Author User `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// RecipeTag links a recipe to one of its tags.
type RecipeTag struct {
	RecipeID uint `gorm:"primaryKey;autoIncrement:false" json:"recipe_id"`
	TagID    uint `gorm:"primaryKey;autoIncrement:false;index" json:"tag_id"`

	Recipe Recipe `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Tag    Tag    `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

func (RecipeTag) TableName() string {
	return "recipe_tags"
}

// RecipeIngredient is one (ingredient, amount) line of a recipe.
type RecipeIngredient struct {
	ID           uint `gorm:"primarykey" json:"id"`
	RecipeID     uint `gorm:"not null;uniqueIndex:idx_recipe_ingredient" json:"recipe_id"`
	IngredientID uint `gorm:"not null;uniqueIndex:idx_recipe_ingredient;index" json:"ingredient_id"`
	Amount       int  `gorm:"not null;check:chk_amount_positive,amount >= 1" json:"amount"`

	Recipe     Recipe     `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Ingredient Ingredient `gorm:"constraint:OnDelete:RESTRICT" json:"-"`
}

func (RecipeIngredient) TableName() string {
	return "recipe_ingredients"
}

// Favorite marks a recipe as favorited by a user.
type Favorite struct {
	ID       uint      `gorm:"primarykey" json:"id"`
	UserID   uint      `gorm:"not null;uniqueIndex:idx_favorite_pair" json:"user_id"`
	RecipeID uint      `gorm:"not null;uniqueIndex:idx_favorite_pair;index" json:"recipe_id"`
	AddedAt  time.Time `gorm:"not null" json:"added_at"`

	User   User   `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Recipe Recipe `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

func (Favorite) TableName() string {
	return "favorites"
}

// ShoppingCartItem puts a recipe into a user's shopping list.
type ShoppingCartItem struct {
	ID       uint      `gorm:"primarykey" json:"id"`
	UserID   uint      `gorm:"not null;uniqueIndex:idx_cart_pair" json:"user_id"`
	RecipeID uint      `gorm:"not null;uniqueIndex:idx_cart_pair;index" json:"recipe_id"`
	AddedAt  time.Time `gorm:"not null" json:"added_at"`

	User   User   `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Recipe Recipe `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

func (ShoppingCartItem) TableName() string {
	return "shopping_cart_items"
}

// All lists every model in dependency order, for AutoMigrate.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Follow{},
		&Ingredient{},
		&Tag{},
		&Recipe{},
		&RecipeTag{},
		&RecipeIngredient{},
		&Favorite{},
		&ShoppingCartItem{},
	}
}
