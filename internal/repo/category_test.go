package repo_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parqueo/backend/internal/domain"
	"github.com/parqueo/backend/internal/repo"
	"github.com/parqueo/backend/testutil"
)

func TestCategoryRepo_GetByID_Seeded(t *testing.T) {
	pool := testutil.NewPool(t)
	r := repo.NewCategoryRepo(pool)

	got, err := r.GetByID(context.Background(), domain.CategorySedan)

	require.NoError(t, err)
	assert.Equal(t, "sedan", got.Name)
}

func TestCategoryRepo_GetByID_NotFound(t *testing.T) {
	pool := testutil.NewPool(t)
	r := repo.NewCategoryRepo(pool)

	_, err := r.GetByID(context.Background(), -1)

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCategoryRepo_List(t *testing.T) {
	pool := testutil.NewPool(t)
	r := repo.NewCategoryRepo(pool)

	got, err := r.List(context.Background())

	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, domain.CategorySedan, got[0].ID)
	assert.Equal(t, domain.CategoryMotorcycle, got[2].ID)
}
