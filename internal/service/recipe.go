package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/foodgram/backend/internal/logging"
	"github.com/foodgram/backend/internal/models"
	"github.com/foodgram/backend/internal/repository"
	"github.com/foodgram/backend/internal/storage"
	"github.com/foodgram/backend/internal/types"
	"github.com/rs/zerolog"
)

// WriteMode selects which recipe fields a write requires.
type WriteMode int

const (
	// WriteCreate requires every field, image included.
	WriteCreate WriteMode = iota
	// WriteReplace requires every field except the image.
	WriteReplace
	// WritePartial requires only tags and ingredients.
	WritePartial
)

// RecipeWriteSet is validated recipe input ready for persistence.
type RecipeWriteSet struct {
	Name        string
	Text        string
	CookingTime int
	TagIDs      []uint
	Lines       []repository.Line
	// Image is nil when the stored image is kept.
	Image *storage.Image
}

// recipeScalars holds the rules for the plain recipe fields.
type recipeScalars struct {
	Name        string `json:"name" validate:"required,max=200"`
	Text        string `json:"text" validate:"required"`
	CookingTime int    `json:"cooking_time" validate:"gte=1"`
}

// RecipeQuery selects a page of recipes.
type RecipeQuery struct {
	TagSlugs         []string
	AuthorID         uint
	// nil leaves the relation unfiltered; false excludes recipes in it.
	IsFavorited      *bool
	IsInShoppingCart *bool
	Page             repository.Page
}

// RecipeService owns the recipe aggregate and the favorite and cart relations.
type RecipeService struct {
	recipes     *repository.RecipeRepository
	tags        *repository.TagRepository
	ingredients *repository.IngredientRepository
	favorites   *repository.EdgeRepository
	cart        *repository.EdgeRepository
	images      storage.ImageStore
	views       *ViewBuilder
	log         zerolog.Logger
}

var _ IRecipeService = (*RecipeService)(nil)

func NewRecipeService(
	recipes *repository.RecipeRepository,
	tags *repository.TagRepository,
	ingredients *repository.IngredientRepository,
	favorites, cart *repository.EdgeRepository,
	images storage.ImageStore,
	views *ViewBuilder,
) *RecipeService {
	return &RecipeService{
		recipes:     recipes,
		tags:        tags,
		ingredients: ingredients,
		favorites:   favorites,
		cart:        cart,
		images:      images,
		views:       views,
		log:         logging.With("recipes"),
	}
}

// ParseInput validates input against mode. upload, when set, is an image sent
// as a file and takes precedence over a data URI in input.Image. existing
// supplies omitted scalar fields on partial writes.
func (s *RecipeService) ParseInput(ctx context.Context, input types.RecipeInput, upload *storage.Image, mode WriteMode, existing *models.Recipe) (*RecipeWriteSet, error) {
	verr := &ValidationError{}
	ws := &RecipeWriteSet{}

	scalars := recipeScalars{}
	if existing != nil {
		scalars = recipeScalars{Name: existing.Name, Text: existing.Text, CookingTime: existing.CookingTime}
	}
	requireScalars := mode != WritePartial
	if input.Name != nil {
		scalars.Name = strings.TrimSpace(*input.Name)
	} else if requireScalars {
		verr.Add("name", FieldRequired)
	}
	if input.Text != nil {
		scalars.Text = *input.Text
	} else if requireScalars {
		verr.Add("text", FieldRequired)
	}
	if input.CookingTime != nil {
		scalars.CookingTime = *input.CookingTime
	} else if requireScalars {
		verr.Add("cooking_time", FieldRequired)
	}
	if err := validateStruct(scalars); err != nil {
		var fieldErr *ValidationError
		if !errors.As(err, &fieldErr) {
			return nil, err
		}
		for field, msgs := range fieldErr.Fields {
			if _, reported := verr.Fields[field]; reported {
				continue
			}
			for _, msg := range msgs {
				verr.Add(field, msg)
			}
		}
	}
	ws.Name, ws.Text, ws.CookingTime = scalars.Name, scalars.Text, scalars.CookingTime

	tagIDs, err := s.parseTags(ctx, input.Tags, verr)
	if err != nil {
		return nil, err
	}
	ws.TagIDs = tagIDs

	lines, err := s.parseIngredients(ctx, input.Ingredients, verr)
	if err != nil {
		return nil, err
	}
	ws.Lines = lines

	switch {
	case upload != nil:
		ws.Image = upload
	case input.Image != nil && *input.Image != "":
		img, err := storage.DecodeDataURI(*input.Image)
		if err != nil {
			verr.Add("image", err.Error())
		} else {
			ws.Image = img
		}
	case mode == WriteCreate:
		verr.Add("image", FieldRequired)
	}

	if err := verr.OrNil(); err != nil {
		return nil, err
	}
	return ws, nil
}

func (s *RecipeService) parseTags(ctx context.Context, raw *[]uint, verr *ValidationError) ([]uint, error) {
	if raw == nil {
		verr.Add("tags", FieldRequired)
		return nil, nil
	}
	ids := *raw
	if len(ids) == 0 {
		verr.Add("tags", "At least one tag is required.")
		return nil, nil
	}
	seen := make(map[uint]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			verr.Add("tags", fmt.Sprintf("Tag %d is listed more than once.", id))
			return nil, nil
		}
		seen[id] = true
	}
	found, err := s.tags.Existing(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		if !found[id] {
			verr.Add("tags", fmt.Sprintf("Tag %d does not exist.", id))
		}
	}
	return ids, nil
}

func (s *RecipeService) parseIngredients(ctx context.Context, raw *[]types.IngredientAmount, verr *ValidationError) ([]repository.Line, error) {
	if raw == nil {
		verr.Add("ingredients", FieldRequired)
		return nil, nil
	}
	items := *raw
	if len(items) == 0 {
		verr.Add("ingredients", "At least one ingredient is required.")
		return nil, nil
	}
	seen := make(map[uint]bool, len(items))
	ids := make([]uint, 0, len(items))
	lines := make([]repository.Line, 0, len(items))
	for _, item := range items {
		if seen[item.ID] {
			verr.Add("ingredients", fmt.Sprintf("Ingredient %d is listed more than once.", item.ID))
			return nil, nil
		}
		seen[item.ID] = true
		if item.Amount < 1 {
			verr.Add("ingredients", fmt.Sprintf("Amount of ingredient %d must be at least 1.", item.ID))
		}
		ids = append(ids, item.ID)
		lines = append(lines, repository.Line{IngredientID: item.ID, Amount: item.Amount})
	}
	found, err := s.ingredients.Existing(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		if !found[id] {
			verr.Add("ingredients", fmt.Sprintf("Ingredient %d does not exist.", id))
		}
	}
	return lines, nil
}

// Create validates input and stores a new recipe authored by the viewer.
func (s *RecipeService) Create(ctx context.Context, viewer Viewer, input types.RecipeInput, upload *storage.Image) (*types.RecipeView, error) {
	ws, err := s.ParseInput(ctx, input, upload, WriteCreate, nil)
	if err != nil {
		return nil, err
	}

	key, err := s.images.Save(ctx, ws.Image.Ext, ws.Image.ContentType, ws.Image.Data)
	if err != nil {
		return nil, fmt.Errorf("store recipe image: %w", err)
	}

	recipe := &models.Recipe{
		AuthorID:    viewer.UserID,
		Name:        ws.Name,
		Text:        ws.Text,
		CookingTime: ws.CookingTime,
		Image:       key,
	}
	if err := s.recipes.Create(ctx, recipe, ws.TagIDs, ws.Lines); err != nil {
		s.discardImage(ctx, key)
		return nil, s.writeError(err)
	}

	logging.Ctx(ctx).Info().
		Str("component", "recipes").
		Uint("recipe_id", recipe.ID).
		Uint("author_id", viewer.UserID).
		Msg("Recipe created")
	return s.views.Recipe(ctx, viewer, *recipe)
}

// Update rewrites a recipe owned by the viewer.
func (s *RecipeService) Update(ctx context.Context, viewer Viewer, id uint, input types.RecipeInput, upload *storage.Image, mode WriteMode) (*types.RecipeView, error) {
	existing, err := s.owned(ctx, viewer, id)
	if err != nil {
		return nil, err
	}
	ws, err := s.ParseInput(ctx, input, upload, mode, existing)
	if err != nil {
		return nil, err
	}

	recipe := &models.Recipe{
		ID:          id,
		Name:        ws.Name,
		Text:        ws.Text,
		CookingTime: ws.CookingTime,
		Image:       existing.Image,
	}
	if ws.Image != nil {
		key, err := s.images.Save(ctx, ws.Image.Ext, ws.Image.ContentType, ws.Image.Data)
		if err != nil {
			return nil, fmt.Errorf("store recipe image: %w", err)
		}
		recipe.Image = key
	}

	if err := s.recipes.Update(ctx, recipe, ws.TagIDs, ws.Lines); err != nil {
		if recipe.Image != existing.Image {
			s.discardImage(ctx, recipe.Image)
		}
		return nil, s.writeError(err)
	}
	if recipe.Image != existing.Image {
		s.discardImage(ctx, existing.Image)
	}

	return s.views.Recipe(ctx, viewer, *recipe)
}

// Delete removes a recipe owned by the viewer together with its image.
func (s *RecipeService) Delete(ctx context.Context, viewer Viewer, id uint) error {
	existing, err := s.owned(ctx, viewer, id)
	if err != nil {
		return err
	}
	if err := s.recipes.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return &NotFoundError{Resource: "recipe"}
		}
		return err
	}
	s.discardImage(ctx, existing.Image)
	return nil
}

func (s *RecipeService) Get(ctx context.Context, viewer Viewer, id uint) (*types.RecipeView, error) {
	recipe, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.views.Recipe(ctx, viewer, *recipe)
}

// List returns one page of recipes, newest first. The favorite and cart
// filters only apply to logged-in viewers.
func (s *RecipeService) List(ctx context.Context, viewer Viewer, q RecipeQuery) ([]types.RecipeView, int64, error) {
	filter := repository.RecipeFilter{
		AuthorID: q.AuthorID,
		TagSlugs: q.TagSlugs,
		Page:     q.Page,
	}
	if !viewer.Anonymous() {
		switch {
		case q.IsFavorited == nil:
		case *q.IsFavorited:
			filter.FavoritedBy = viewer.UserID
		default:
			filter.NotFavoritedBy = viewer.UserID
		}
		switch {
		case q.IsInShoppingCart == nil:
		case *q.IsInShoppingCart:
			filter.InCartOf = viewer.UserID
		default:
			filter.NotInCartOf = viewer.UserID
		}
	}
	recipes, total, err := s.recipes.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	views, err := s.views.Recipes(ctx, viewer, recipes)
	if err != nil {
		return nil, 0, err
	}
	return views, total, nil
}

// AddFavorite marks a recipe as a favorite of the viewer.
func (s *RecipeService) AddFavorite(ctx context.Context, viewer Viewer, id uint) (*types.RecipeBrief, error) {
	return s.addEdge(ctx, s.favorites, viewer, id, "Already in favorites")
}

// RemoveFavorite reports a ConflictError when the recipe was not a favorite.
func (s *RecipeService) RemoveFavorite(ctx context.Context, viewer Viewer, id uint) error {
	return s.removeEdge(ctx, s.favorites, viewer, id, "Recipe was not in favorites")
}

// AddToCart puts a recipe into the viewer's shopping cart.
func (s *RecipeService) AddToCart(ctx context.Context, viewer Viewer, id uint) (*types.RecipeBrief, error) {
	return s.addEdge(ctx, s.cart, viewer, id, "Already in shopping cart")
}

// RemoveFromCart reports a ConflictError when the recipe was not in the cart.
func (s *RecipeService) RemoveFromCart(ctx context.Context, viewer Viewer, id uint) error {
	return s.removeEdge(ctx, s.cart, viewer, id, "Recipe was not in shopping cart")
}

func (s *RecipeService) addEdge(ctx context.Context, edges *repository.EdgeRepository, viewer Viewer, id uint, duplicate string) (*types.RecipeBrief, error) {
	recipe, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	res, err := edges.InsertIfAbsent(ctx, viewer.UserID, recipe.ID)
	if err != nil {
		return nil, err
	}
	if res == repository.AlreadyExisted {
		return nil, &ConflictError{Message: duplicate}
	}
	brief := s.views.Brief(*recipe)
	return &brief, nil
}

func (s *RecipeService) removeEdge(ctx context.Context, edges *repository.EdgeRepository, viewer Viewer, id uint, absent string) error {
	if _, err := s.load(ctx, id); err != nil {
		return err
	}
	found, err := edges.Delete(ctx, viewer.UserID, id)
	if err != nil {
		return err
	}
	if !found {
		return &ConflictError{Message: absent}
	}
	return nil
}

func (s *RecipeService) load(ctx context.Context, id uint) (*models.Recipe, error) {
	recipe, err := s.recipes.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, &NotFoundError{Resource: "recipe"}
	}
	return recipe, err
}

func (s *RecipeService) owned(ctx context.Context, viewer Viewer, id uint) (*models.Recipe, error) {
	recipe, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if recipe.AuthorID != viewer.UserID {
		return nil, &PermissionError{Message: "You do not have permission to perform this action."}
	}
	return recipe, nil
}

// writeError maps persistence failures of a recipe write to service errors.
func (s *RecipeService) writeError(err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return &NotFoundError{Resource: "recipe"}
	case errors.Is(err, repository.ErrMissingReference):
		// A tag or ingredient vanished between validation and the write.
		return NewValidationError("non_field_errors", "A referenced tag or ingredient does not exist.")
	case errors.Is(err, repository.ErrAlreadyExists):
		return NewValidationError("non_field_errors", "Duplicate tag or ingredient.")
	default:
		return err
	}
}

func (s *RecipeService) discardImage(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.images.Delete(ctx, key); err != nil && !errors.Is(err, storage.ErrNotFound) {
		s.log.Warn().Err(err).Str("image", key).Msg("Failed to delete recipe image")
	}
}
