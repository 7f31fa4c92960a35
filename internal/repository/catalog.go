package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/foodgram/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type IngredientRepository struct {
	db *gorm.DB
}

func NewIngredientRepository(db *gorm.DB) *IngredientRepository {
	return &IngredientRepository{db: db}
}

// Search lists ingredients whose name starts with prefix, case-insensitively.
// An empty prefix lists everything.
func (r *IngredientRepository) Search(ctx context.Context, prefix string) ([]models.Ingredient, error) {
	q := r.db.WithContext(ctx).Order("name, measurement_unit")
	if prefix != "" {
		q = q.Where("LOWER(name) LIKE ? ESCAPE '\\'", escapeLike(strings.ToLower(prefix))+"%")
	}
	var ingredients []models.Ingredient
	if err := q.Find(&ingredients).Error; err != nil {
		return nil, err
	}
	return ingredients, nil
}

func (r *IngredientRepository) Get(ctx context.Context, id uint) (*models.Ingredient, error) {
	var ingredient models.Ingredient
	if err := r.db.WithContext(ctx).First(&ingredient, id).Error; err != nil {
		return nil, translate(err)
	}
	return &ingredient, nil
}

// Existing returns the subset of ids that are present.
func (r *IngredientRepository) Existing(ctx context.Context, ids []uint) (map[uint]bool, error) {
	return existing(ctx, r.db, &models.Ingredient{}, ids)
}

// Insert adds ingredients in one transaction, skipping (name, unit) pairs that
// already exist. It returns how many rows were written.
func (r *IngredientRepository) Insert(ctx context.Context, ingredients []models.Ingredient) (int64, error) {
	if len(ingredients) == 0 {
		return 0, nil
	}
	var written int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).CreateInBatches(&ingredients, 500)
		if res.Error != nil {
			return fmt.Errorf("insert ingredients: %w", translate(res.Error))
		}
		written = res.RowsAffected
		return nil
	})
	return written, err
}

type TagRepository struct {
	db *gorm.DB
}

func NewTagRepository(db *gorm.DB) *TagRepository {
	return &TagRepository{db: db}
}

func (r *TagRepository) List(ctx context.Context) ([]models.Tag, error) {
	var tags []models.Tag
	if err := r.db.WithContext(ctx).Order("id").Find(&tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}

func (r *TagRepository) Get(ctx context.Context, id uint) (*models.Tag, error) {
	var tag models.Tag
	if err := r.db.WithContext(ctx).First(&tag, id).Error; err != nil {
		return nil, translate(err)
	}
	return &tag, nil
}

// Existing returns the subset of ids that are present.
func (r *TagRepository) Existing(ctx context.Context, ids []uint) (map[uint]bool, error) {
	return existing(ctx, r.db, &models.Tag{}, ids)
}

// Insert adds tags in one transaction. Any duplicate name, color or slug
// fails the whole batch.
func (r *TagRepository) Insert(ctx context.Context, tags []models.Tag) error {
	if len(tags) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&tags).Error; err != nil {
			return fmt.Errorf("insert tags: %w", translate(err))
		}
		return nil
	})
}

func existing(ctx context.Context, db *gorm.DB, model interface{}, ids []uint) (map[uint]bool, error) {
	set := make(map[uint]bool, len(ids))
	if len(ids) == 0 {
		return set, nil
	}
	var found []uint
	if err := db.WithContext(ctx).Model(model).Where("id IN ?", uniqueIDs(ids)).Pluck("id", &found).Error; err != nil {
		return nil, err
	}
	for _, id := range found {
		set[id] = true
	}
	return set, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
