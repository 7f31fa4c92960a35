package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/foodgram/backend/internal/metrics"
	"github.com/foodgram/backend/internal/middleware"
	"github.com/foodgram/backend/internal/service"
	"github.com/foodgram/backend/internal/storage"
	"github.com/foodgram/backend/internal/types"
)

// maxRecipeBody bounds a JSON recipe write: a base64 image at the size cap plus the document.
const maxRecipeBody = storage.MaxImageSize/3*4 + 1<<20

type RecipeHandler struct {
	recipeService       service.IRecipeService
	shoppingListService service.IShoppingListService
	tokens              middleware.TokenValidator
	createLimiter       gin.HandlerFunc
	pageSize            int
}

func NewRecipeHandler(recipeService service.IRecipeService, shoppingListService service.IShoppingListService, tokens middleware.TokenValidator, pageSize int) *RecipeHandler {
	return &RecipeHandler{
		recipeService:       recipeService,
		shoppingListService: shoppingListService,
		tokens:              tokens,
		pageSize:            pageSize,
	}
}

// NewRecipeHandlerWithRateLimit also throttles recipe creation.
func NewRecipeHandlerWithRateLimit(recipeService service.IRecipeService, shoppingListService service.IShoppingListService, tokens middleware.TokenValidator, pageSize int, limiter *middleware.RateLimiter) *RecipeHandler {
	h := NewRecipeHandler(recipeService, shoppingListService, tokens, pageSize)
	if limiter != nil {
		h.createLimiter = limiter.RateLimitMiddleware()
	}
	return h
}

func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup) {
	required := middleware.AuthMiddleware(h.tokens)
	optional := middleware.OptionalAuthMiddleware(h.tokens)

	create := []gin.HandlerFunc{required}
	if h.createLimiter != nil {
		create = append(create, h.createLimiter)
	}
	create = append(create, h.CreateRecipe)

	recipes := router.Group("/recipes")
	{
		recipes.GET("", optional, h.ListRecipes)
		recipes.POST("", create...)
		recipes.GET("/download_shopping_cart", required, h.DownloadShoppingCart)
		recipes.GET("/:id", optional, h.GetRecipe)
		recipes.PUT("/:id", required, h.UpdateRecipe)
		recipes.PATCH("/:id", required, h.PatchRecipe)
		recipes.DELETE("/:id", required, h.DeleteRecipe)
		recipes.POST("/:id/favorite", required, h.FavoriteRecipe)
		recipes.DELETE("/:id/favorite", required, h.UnfavoriteRecipe)
		recipes.POST("/:id/shopping_cart", required, h.AddToShoppingCart)
		recipes.DELETE("/:id/shopping_cart", required, h.RemoveFromShoppingCart)
	}
}

func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	p := parsePagination(c, h.pageSize)
	q := service.RecipeQuery{
		TagSlugs:         c.QueryArray("tags"),
		IsFavorited:      flagParam(c, "is_favorited"),
		IsInShoppingCart: flagParam(c, "is_in_shopping_cart"),
		Page:             p.repo(),
	}
	if raw := c.Query("author"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || id == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"author": []string{invalidIDMessage}})
			return
		}
		q.AuthorID = uint(id)
	}

	recipes, count, err := h.recipeService.List(c.Request.Context(), viewer(c), q)
	if err != nil {
		respondError(c, err)
		return
	}
	respondPage(c, p, count, recipes)
}

// flagParam is nil when the parameter is absent. "1" and "true" select
// matching recipes; any other value excludes them.
func flagParam(c *gin.Context, name string) *bool {
	v, ok := c.GetQuery(name)
	if !ok {
		return nil
	}
	include := v == "1" || strings.EqualFold(v, "true")
	return &include
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	recipe, err := h.recipeService.Get(c.Request.Context(), viewer(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, recipe)
}

func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	input, upload, ok := readRecipeInput(c)
	if !ok {
		return
	}
	recipe, err := h.recipeService.Create(c.Request.Context(), viewer(c), input, upload)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, recipe)
}

func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	h.update(c, service.WriteReplace)
}

func (h *RecipeHandler) PatchRecipe(c *gin.Context) {
	h.update(c, service.WritePartial)
}

func (h *RecipeHandler) update(c *gin.Context, mode service.WriteMode) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	input, upload, ok := readRecipeInput(c)
	if !ok {
		return
	}
	recipe, err := h.recipeService.Update(c.Request.Context(), viewer(c), id, input, upload, mode)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, recipe)
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.recipeService.Delete(c.Request.Context(), viewer(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *RecipeHandler) FavoriteRecipe(c *gin.Context) {
	h.addEdge(c, h.recipeService.AddFavorite)
}

func (h *RecipeHandler) UnfavoriteRecipe(c *gin.Context) {
	h.removeEdge(c, h.recipeService.RemoveFavorite)
}

func (h *RecipeHandler) AddToShoppingCart(c *gin.Context) {
	h.addEdge(c, h.recipeService.AddToCart)
}

func (h *RecipeHandler) RemoveFromShoppingCart(c *gin.Context) {
	h.removeEdge(c, h.recipeService.RemoveFromCart)
}

type addEdgeFunc func(ctx context.Context, v service.Viewer, id uint) (*types.RecipeBrief, error)

type removeEdgeFunc func(ctx context.Context, v service.Viewer, id uint) error

func (h *RecipeHandler) addEdge(c *gin.Context, add addEdgeFunc) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	brief, err := add(c.Request.Context(), viewer(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, brief)
}

func (h *RecipeHandler) removeEdge(c *gin.Context, remove removeEdgeFunc) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := remove(c.Request.Context(), viewer(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DownloadShoppingCart sends the aggregated cart as a plain text attachment.
func (h *RecipeHandler) DownloadShoppingCart(c *gin.Context) {
	report, err := h.shoppingListService.Render(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	metrics.ShoppingListDownloads.Inc()
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", service.ShoppingListFilename))
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(report))
}

// readRecipeInput accepts either a JSON body, where the image is a data URI,
// or a multipart form with the JSON document in the "recipe" field and the
// image as a file in "image".
func readRecipeInput(c *gin.Context) (types.RecipeInput, *storage.Image, bool) {
	var input types.RecipeInput
	if !strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxRecipeBody)
		if err := c.ShouldBindJSON(&input); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				c.JSON(http.StatusBadRequest, gin.H{"image": []string{storage.ErrImageTooLarge.Error()}})
				return input, nil, false
			}
			c.JSON(http.StatusBadRequest, gin.H{"detail": "JSON parse error - " + err.Error()})
			return input, nil, false
		}
		return input, nil, true
	}

	if raw := c.PostForm("recipe"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"recipe": []string{"JSON parse error - " + err.Error()}})
			return input, nil, false
		}
	}

	header, err := c.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return input, nil, true
		}
		c.JSON(http.StatusBadRequest, gin.H{"image": []string{"The submitted data was not a file."}})
		return input, nil, false
	}
	if header.Size > storage.MaxImageSize {
		c.JSON(http.StatusBadRequest, gin.H{"image": []string{storage.ErrImageTooLarge.Error()}})
		return input, nil, false
	}
	f, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"image": []string{"The submitted file could not be read."}})
		return input, nil, false
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, storage.MaxImageSize+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"image": []string{"The submitted file could not be read."}})
		return input, nil, false
	}
	img, err := storage.DetectImage(data)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"image": []string{err.Error()}})
		return input, nil, false
	}
	return input, img, true
}
