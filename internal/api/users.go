package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/foodgram/backend/internal/middleware"
	"github.com/foodgram/backend/internal/service"
	"github.com/foodgram/backend/internal/types"
)

// UserHandler serves accounts and subscriptions.
type UserHandler struct {
	userService         service.IUserService
	subscriptionService service.ISubscriptionService
	tokens              middleware.TokenValidator
	pageSize            int
}

func NewUserHandler(userService service.IUserService, subscriptionService service.ISubscriptionService, tokens middleware.TokenValidator, pageSize int) *UserHandler {
	return &UserHandler{
		userService:         userService,
		subscriptionService: subscriptionService,
		tokens:              tokens,
		pageSize:            pageSize,
	}
}

func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	required := middleware.AuthMiddleware(h.tokens)
	optional := middleware.OptionalAuthMiddleware(h.tokens)

	users := router.Group("/users")
	{
		users.POST("", h.Register)
		users.GET("", optional, h.ListUsers)
		users.GET("/me", required, h.Me)
		users.POST("/set_password", required, h.SetPassword)
		users.GET("/subscriptions", required, h.ListSubscriptions)
		users.GET("/:id", optional, h.GetUser)
		users.POST("/:id/subscribe", required, h.Subscribe)
		users.DELETE("/:id/subscribe", required, h.Unsubscribe)
	}
}

func viewer(c *gin.Context) service.Viewer {
	return service.Viewer{UserID: middleware.UserID(c)}
}

func (h *UserHandler) Register(c *gin.Context) {
	var req types.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}
	created, err := h.userService.Register(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	p := parsePagination(c, h.pageSize)
	users, count, err := h.userService.List(c.Request.Context(), viewer(c), p.repo())
	if err != nil {
		respondError(c, err)
		return
	}
	respondPage(c, p, count, users)
}

func (h *UserHandler) GetUser(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	user, err := h.userService.Get(c.Request.Context(), viewer(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) Me(c *gin.Context) {
	v := viewer(c)
	user, err := h.userService.Get(c.Request.Context(), v, v.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) SetPassword(c *gin.Context) {
	var req types.SetPasswordRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.userService.SetPassword(c.Request.Context(), viewer(c), req); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *UserHandler) ListSubscriptions(c *gin.Context) {
	p := parsePagination(c, h.pageSize)
	limit := service.ParseRecipesLimit(c.Query("recipes_limit"))
	subs, count, err := h.subscriptionService.List(c.Request.Context(), viewer(c), p.repo(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	respondPage(c, p, count, subs)
}

func (h *UserHandler) Subscribe(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	limit := service.ParseRecipesLimit(c.Query("recipes_limit"))
	sub, err := h.subscriptionService.Subscribe(c.Request.Context(), viewer(c), id, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sub)
}

func (h *UserHandler) Unsubscribe(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.subscriptionService.Unsubscribe(c.Request.Context(), viewer(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
