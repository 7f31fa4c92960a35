package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/foodgram/backend/internal/logging"
	"github.com/foodgram/backend/internal/models"
	"github.com/foodgram/backend/internal/repository"
	"github.com/foodgram/backend/internal/types"
)

var hexColor = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// NormalizeColor validates a 3 or 6 digit hex color and returns it as
// lowercase #rrggbb.
func NormalizeColor(color string) (string, error) {
	color = strings.TrimSpace(color)
	if !hexColor.MatchString(color) {
		return "", fmt.Errorf("%s is not a valid HEX color", color)
	}
	color = strings.ToLower(color)
	if len(color) == 4 {
		color = string([]byte{'#', color[1], color[1], color[2], color[2], color[3], color[3]})
	}
	return color, nil
}

// CatalogService serves the read-only tag and ingredient reference data and
// its bulk import.
type CatalogService struct {
	tags        *repository.TagRepository
	ingredients *repository.IngredientRepository
}

var _ ICatalogService = (*CatalogService)(nil)

func NewCatalogService(tags *repository.TagRepository, ingredients *repository.IngredientRepository) *CatalogService {
	return &CatalogService{tags: tags, ingredients: ingredients}
}

func (s *CatalogService) ListTags(ctx context.Context) ([]types.TagView, error) {
	tags, err := s.tags.List(ctx)
	if err != nil {
		return nil, err
	}
	views := make([]types.TagView, 0, len(tags))
	for _, tag := range tags {
		views = append(views, TagView(tag))
	}
	return views, nil
}

func (s *CatalogService) GetTag(ctx context.Context, id uint) (*types.TagView, error) {
	tag, err := s.tags.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &NotFoundError{Resource: "tag"}
		}
		return nil, err
	}
	view := TagView(*tag)
	return &view, nil
}

// SearchIngredients lists ingredients whose name starts with prefix.
func (s *CatalogService) SearchIngredients(ctx context.Context, prefix string) ([]types.IngredientView, error) {
	ingredients, err := s.ingredients.Search(ctx, strings.TrimSpace(prefix))
	if err != nil {
		return nil, err
	}
	views := make([]types.IngredientView, 0, len(ingredients))
	for _, ing := range ingredients {
		views = append(views, IngredientView(ing))
	}
	return views, nil
}

func (s *CatalogService) GetIngredient(ctx context.Context, id uint) (*types.IngredientView, error) {
	ing, err := s.ingredients.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &NotFoundError{Resource: "ingredient"}
		}
		return nil, err
	}
	view := IngredientView(*ing)
	return &view, nil
}

// ImportIngredients validates every record before writing any; a single bad
// record rejects the batch. Existing (name, unit) pairs are skipped.
func (s *CatalogService) ImportIngredients(ctx context.Context, records []types.IngredientView) (int64, error) {
	rows := make([]models.Ingredient, 0, len(records))
	for i, rec := range records {
		name := strings.TrimSpace(rec.Name)
		unit := strings.TrimSpace(rec.MeasurementUnit)
		if name == "" || unit == "" {
			return 0, NewValidationError(fmt.Sprintf("record %d", i+1), "name and measurement_unit are required.")
		}
		if len(name) > 200 || len(unit) > 200 {
			return 0, NewValidationError(fmt.Sprintf("record %d", i+1), "Ensure fields have no more than 200 characters.")
		}
		rows = append(rows, models.Ingredient{Name: name, MeasurementUnit: unit})
	}
	written, err := s.ingredients.Insert(ctx, rows)
	if err != nil {
		return 0, err
	}
	logging.Ctx(ctx).Info().Str("component", "catalog").Int64("written", written).Int("records", len(records)).Msg("Imported ingredients")
	return written, nil
}

// ImportTags normalizes colors and inserts every tag or none.
func (s *CatalogService) ImportTags(ctx context.Context, records []types.TagView) (int, error) {
	rows := make([]models.Tag, 0, len(records))
	for i, rec := range records {
		field := fmt.Sprintf("record %d", i+1)
		if strings.TrimSpace(rec.Name) == "" || strings.TrimSpace(rec.Slug) == "" {
			return 0, NewValidationError(field, "name and slug are required.")
		}
		color, err := NormalizeColor(rec.Color)
		if err != nil {
			return 0, NewValidationError(field, err.Error()+".")
		}
		rows = append(rows, models.Tag{Name: strings.TrimSpace(rec.Name), Color: color, Slug: strings.TrimSpace(rec.Slug)})
	}
	if err := s.tags.Insert(ctx, rows); err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			return 0, &ConflictError{Message: "A tag with this name, color or slug already exists."}
		}
		return 0, err
	}
	logging.Ctx(ctx).Info().Str("component", "catalog").Int("written", len(rows)).Msg("Imported tags")
	return len(rows), nil
}
