package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/foodgram/backend/internal/mocks"
	"github.com/foodgram/backend/internal/service"
	"github.com/foodgram/backend/internal/types"
)

const (
	testToken  = "good-token"
	testUserID = uint(1)
)

type testAPI struct {
	router        *gin.Engine
	auth          *mocks.MockAuthService
	users         *mocks.MockUserService
	subscriptions *mocks.MockSubscriptionService
	recipes       *mocks.MockRecipeService
	shopping      *mocks.MockShoppingListService
	catalog       *mocks.MockCatalogService
}

func setupTestAPI(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	a := &testAPI{
		auth:          new(mocks.MockAuthService),
		users:         new(mocks.MockUserService),
		subscriptions: new(mocks.MockSubscriptionService),
		recipes:       new(mocks.MockRecipeService),
		shopping:      new(mocks.MockShoppingListService),
		catalog:       new(mocks.MockCatalogService),
	}
	a.auth.On("ValidateToken", mock.Anything, testToken).
		Return(&types.TokenClaims{UserID: testUserID, Username: "cook"}, nil).Maybe()
	a.auth.On("ValidateToken", mock.Anything, mock.Anything).
		Return(nil, service.ErrInvalidToken).Maybe()

	a.router = gin.New()
	RegisterRoutes(a.router.Group("/api"), Services{
		Auth:          a.auth,
		Users:         a.users,
		Subscriptions: a.subscriptions,
		Recipes:       a.recipes,
		ShoppingList:  a.shopping,
		Catalog:       a.catalog,
	}, 6, nil)

	t.Cleanup(func() {
		a.users.AssertExpectations(t)
		a.subscriptions.AssertExpectations(t)
		a.recipes.AssertExpectations(t)
		a.shopping.AssertExpectations(t)
		a.catalog.AssertExpectations(t)
	})
	return a
}

// do sends body as JSON; a nil body sends no payload. token "" is anonymous.
func (a *testAPI) do(method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Token "+token)
	}
	rr := httptest.NewRecorder()
	a.router.ServeHTTP(rr, req)
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	return out
}

func TestRespondError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name   string
		err    error
		status int
		body   string
	}{
		{"validation", service.NewValidationError("tags", service.FieldRequired), http.StatusBadRequest, `{"tags":["This field is required."]}`},
		{"not found", &service.NotFoundError{Resource: "recipe"}, http.StatusNotFound, `{"detail":"Not found."}`},
		{"conflict", &service.ConflictError{Message: "Already in favorites"}, http.StatusBadRequest, `{"detail":"Already in favorites"}`},
		{"self follow", service.ErrSelfFollow, http.StatusBadRequest, `{"detail":"You cannot subscribe or unsubscribe to yourself."}`},
		{"permission", &service.PermissionError{Message: "You can only change your own recipes."}, http.StatusForbidden, `{"detail":"You can only change your own recipes."}`},
		{"credentials", service.ErrInvalidCredentials, http.StatusBadRequest, `{"non_field_errors":["Unable to log in with provided credentials."]}`},
		{"unexpected", errors.New("connection reset"), http.StatusInternalServerError, `{"detail":"Internal Server Error"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(rr)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			respondError(c, tt.err)

			assert.Equal(t, tt.status, rr.Code)
			assert.JSONEq(t, tt.body, rr.Body.String())
		})
	}
}

func TestPagination(t *testing.T) {
	gin.SetMode(gin.TestMode)

	newCtx := func(target string) *gin.Context {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, target, nil)
		return c
	}

	t.Run("defaults", func(t *testing.T) {
		p := parsePagination(newCtx("/api/recipes"), 6)
		assert.Equal(t, pagination{page: 1, limit: 6}, p)
		assert.Equal(t, 0, p.repo().Offset)
	})

	t.Run("bad values fall back", func(t *testing.T) {
		p := parsePagination(newCtx("/api/recipes?page=-2&limit=abc"), 6)
		assert.Equal(t, pagination{page: 1, limit: 6}, p)
	})

	t.Run("limit is capped", func(t *testing.T) {
		p := parsePagination(newCtx("/api/recipes?limit=1000"), 6)
		assert.Equal(t, maxPageSize, p.limit)
	})

	t.Run("middle page links", func(t *testing.T) {
		c := newCtx("/api/recipes?page=2&limit=2&tags=lunch")
		p := parsePagination(c, 6)
		assert.Equal(t, 2, p.repo().Offset)

		page := newPage(c, p, 5, []int{3, 4})
		require.NotNil(t, page.Next)
		require.NotNil(t, page.Previous)
		assert.Equal(t, "http://example.com/api/recipes?limit=2&page=3&tags=lunch", *page.Next)
		assert.Equal(t, "http://example.com/api/recipes?limit=2&tags=lunch", *page.Previous)
	})

	t.Run("huge page stays past the end", func(t *testing.T) {
		c := newCtx("/api/recipes?page=9223372036854775807&limit=6")
		p := parsePagination(c, 6)
		assert.Equal(t, math.MaxInt/6, p.page)
		assert.Positive(t, p.repo().Offset)

		page := newPage[int](c, p, 3, nil)
		assert.Nil(t, page.Next)
		assert.NotNil(t, page.Previous)
		assert.Empty(t, page.Results)
	})

	t.Run("past the end is an empty page", func(t *testing.T) {
		c := newCtx("/api/recipes?page=9")
		page := newPage[int](c, parsePagination(c, 6), 3, nil)
		assert.Nil(t, page.Next)
		assert.NotNil(t, page.Previous)
		assert.Empty(t, page.Results)
		assert.NotNil(t, page.Results)
	})
}

func TestPathIDRejectsNonIntegers(t *testing.T) {
	a := setupTestAPI(t)

	for _, path := range []string{"/api/tags/abc", "/api/tags/0", "/api/tags/-1"} {
		rr := a.do(http.MethodGet, path, nil, "")
		assert.Equal(t, http.StatusBadRequest, rr.Code, path)
		assert.JSONEq(t, `{"detail":"Invalid ID format. ID must be an integer."}`, rr.Body.String())
	}
}

type jsonBody map[string]interface{}
