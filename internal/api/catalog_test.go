package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/foodgram/backend/internal/service"
	"github.com/foodgram/backend/internal/types"
)

func TestTags(t *testing.T) {
	a := setupTestAPI(t)
	tags := []types.TagView{{ID: 1, Name: "Breakfast", Color: "#E26C2D", Slug: "breakfast"}}
	a.catalog.On("ListTags", mock.Anything).Return(tags, nil).Once()
	a.catalog.On("GetTag", mock.Anything, uint(1)).Return(&tags[0], nil).Once()
	a.catalog.On("GetTag", mock.Anything, uint(2)).Return(nil, &service.NotFoundError{Resource: "tag"}).Once()

	rr := a.do(http.MethodGet, "/api/tags", nil, "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[{"id":1,"name":"Breakfast","color":"#E26C2D","slug":"breakfast"}]`, rr.Body.String())

	rr = a.do(http.MethodGet, "/api/tags/1", nil, "")
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = a.do(http.MethodGet, "/api/tags/2", nil, "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestIngredients(t *testing.T) {
	a := setupTestAPI(t)
	a.catalog.On("SearchIngredients", mock.Anything, "fl").
		Return([]types.IngredientView{{ID: 2, Name: "flour", MeasurementUnit: "g"}}, nil).Once()
	a.catalog.On("GetIngredient", mock.Anything, uint(2)).
		Return(&types.IngredientView{ID: 2, Name: "flour", MeasurementUnit: "g"}, nil).Once()

	rr := a.do(http.MethodGet, "/api/ingredients?name=fl", nil, "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[{"id":2,"name":"flour","measurement_unit":"g"}]`, rr.Body.String())

	rr = a.do(http.MethodGet, "/api/ingredients/2", nil, "")
	assert.Equal(t, http.StatusOK, rr.Code)
}
