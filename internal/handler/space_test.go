package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parqueo/backend/internal/domain"
)

func TestListSpaces_200_Filters(t *testing.T) {
	m := &serverMocks{}
	m.spaces.listSpaces = func(_ context.Context, filter domain.SpaceFilter) ([]domain.Space, error) {
		require.NotNil(t, filter.CategoryID)
		assert.Equal(t, int64(1), *filter.CategoryID)
		require.NotNil(t, filter.Available)
		assert.True(t, *filter.Available)
		return []domain.Space{{ID: 3, Code: "A-3", CategoryID: 1, Available: true}}, nil
	}

	req := httptest.NewRequest(http.MethodGet, "/api/spaces?category_id=1&available=true", nil)
	rec := httptest.NewRecorder()
	m.newHTTPHandler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var spaces []domain.Space
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &spaces))
	require.Len(t, spaces, 1)
	assert.Equal(t, "A-3", spaces[0].Code)
}

func TestListSpaces_NoFilters(t *testing.T) {
	m := &serverMocks{}
	m.spaces.listSpaces = func(_ context.Context, filter domain.SpaceFilter) ([]domain.Space, error) {
		assert.Nil(t, filter.CategoryID)
		assert.Nil(t, filter.Available)
		return []domain.Space{}, nil
	}

	req := httptest.NewRequest(http.MethodGet, "/api/spaces", nil)
	rec := httptest.NewRecorder()
	m.newHTTPHandler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
}

func TestListSpaces_BadCategoryID_400(t *testing.T) {
	m := &serverMocks{}

	req := httptest.NewRequest(http.MethodGet, "/api/spaces?category_id=sedan", nil)
	rec := httptest.NewRecorder()
	m.newHTTPHandler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListCategories_200(t *testing.T) {
	m := &serverMocks{}
	m.categories.list = func(_ context.Context) ([]domain.Category, error) {
		return []domain.Category{
			{ID: 1, Name: "sedan"},
			{ID: 2, Name: "suv"},
			{ID: 3, Name: "motorcycle"},
		}, nil
	}

	req := httptest.NewRequest(http.MethodGet, "/api/categories", nil)
	rec := httptest.NewRecorder()
	m.newHTTPHandler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var categories []domain.Category
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &categories))
	assert.Len(t, categories, 3)
}
