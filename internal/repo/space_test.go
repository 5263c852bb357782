package repo_test

import (
	"context"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parqueo/backend/internal/domain"
	"github.com/parqueo/backend/internal/repo"
	"github.com/parqueo/backend/testutil"
)

// newSpaceTx opens a transaction against the test database and returns a
// SpaceRepo backed by it plus the transaction itself (for raw fixture SQL).
// The transaction is rolled back when the test finishes, so tests never leak
// rows into the shared schema.
func newSpaceTx(t *testing.T) (pgx.Tx, repo.SpaceRepo) {
	t.Helper()
	pool := testutil.NewPool(t)

	tx, err := pool.Begin(context.Background())
	require.NoError(t, err, "begin transaction")

	t.Cleanup(func() {
		_ = tx.Rollback(context.Background())
	})

	return tx, repo.NewSpaceRepo(tx)
}

// insertSpace adds an available space through raw SQL so tests can build
// arbitrary starting states, including ones no repo method produces.
func insertSpace(t *testing.T, tx pgx.Tx, code string, categoryID int64, available bool) int64 {
	t.Helper()
	var id int64
	err := tx.QueryRow(context.Background(),
		`INSERT INTO spaces (code, category_id, available) VALUES ($1, $2, $3) RETURNING id`,
		code, categoryID, available,
	).Scan(&id)
	require.NoError(t, err, "insert fixture space")
	return id
}

func TestSpaceRepo_GetByID(t *testing.T) {
	tx, r := newSpaceTx(t)
	ctx := context.Background()

	id := insertSpace(t, tx, "T-1", domain.CategorySedan, true)

	got, err := r.GetByID(ctx, id)

	require.NoError(t, err)
	assert.Equal(t, "T-1", got.Code)
	assert.Equal(t, domain.CategorySedan, got.CategoryID)
	assert.True(t, got.Available)
	assert.False(t, got.CreatedAt.IsZero(), "created_at should be set by the DB")
}

func TestSpaceRepo_GetByID_NotFound(t *testing.T) {
	_, r := newSpaceTx(t)

	_, err := r.GetByID(context.Background(), -1)

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSpaceRepo_List_Filters(t *testing.T) {
	tx, r := newSpaceTx(t)
	ctx := context.Background()

	sedanID := insertSpace(t, tx, "T-1", domain.CategorySedan, true)
	insertSpace(t, tx, "T-2", domain.CategorySedan, false)
	insertSpace(t, tx, "T-3", domain.CategoryMotorcycle, true)

	categoryID := domain.CategorySedan
	available := true
	got, err := r.List(ctx, domain.SpaceFilter{CategoryID: &categoryID, Available: &available})

	require.NoError(t, err)
	// The seed migration also creates available sedan spaces; ours must be
	// among the results and every result must match both filters.
	found := false
	for _, s := range got {
		assert.Equal(t, domain.CategorySedan, s.CategoryID)
		assert.True(t, s.Available)
		if s.ID == sedanID {
			found = true
		}
	}
	assert.True(t, found, "fixture space missing from filtered list")
}

func TestSpaceRepo_FindAvailableByCategory_OrderAndLimit(t *testing.T) {
	tx, r := newSpaceTx(t)
	ctx := context.Background()

	insertSpace(t, tx, "T-1", domain.CategoryMotorcycle, true)
	insertSpace(t, tx, "T-2", domain.CategoryMotorcycle, true)

	got, err := r.FindAvailableByCategory(ctx, domain.CategoryMotorcycle, 100)

	require.NoError(t, err)
	require.NotEmpty(t, got)
	for i := 1; i < len(got); i++ {
		assert.Less(t, got[i-1].ID, got[i].ID, "candidates must come back in ascending id order")
	}

	limited, err := r.FindAvailableByCategory(ctx, domain.CategoryMotorcycle, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestSpaceRepo_ConditionalClaim(t *testing.T) {
	tx, r := newSpaceTx(t)
	ctx := context.Background()

	id := insertSpace(t, tx, "T-1", domain.CategorySedan, true)

	got, err := r.ConditionalClaim(ctx, id)

	require.NoError(t, err)
	assert.False(t, got.Available, "a won claim returns the space already flipped")

	// The flag is persisted, not just reported.
	stored, err := r.GetByID(ctx, id)
	require.NoError(t, err)
	assert.False(t, stored.Available)
}

func TestSpaceRepo_ConditionalClaim_AlreadyOccupied(t *testing.T) {
	tx, r := newSpaceTx(t)
	ctx := context.Background()

	id := insertSpace(t, tx, "T-1", domain.CategorySedan, false)

	_, err := r.ConditionalClaim(ctx, id)

	assert.ErrorIs(t, err, domain.ErrSpaceUnavailable)
}

func TestSpaceRepo_ConditionalClaim_NotFound(t *testing.T) {
	_, r := newSpaceTx(t)

	_, err := r.ConditionalClaim(context.Background(), -1)

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// TestSpaceRepo_ConditionalClaim_Concurrent races many claimers on one space
// through separate pool connections. Exactly one must win; the rest must see
// the space as unavailable. This is the property the whole allocation design
// rests on, so it runs against real Postgres, not a mock.
func TestSpaceRepo_ConditionalClaim_Concurrent(t *testing.T) {
	pool := testutil.NewPool(t)
	ctx := context.Background()

	var id int64
	err := pool.QueryRow(ctx,
		`INSERT INTO spaces (code, category_id, available) VALUES ($1, $2, true) RETURNING id`,
		"T-RACE", domain.CategorySedan,
	).Scan(&id)
	require.NoError(t, err)
	t.Cleanup(func() {
		_, _ = pool.Exec(context.Background(), `DELETE FROM spaces WHERE id = $1`, id)
	})

	r := repo.NewSpaceRepo(pool)

	const claimers = 16
	var wg sync.WaitGroup
	results := make([]error, claimers)

	for i := 0; i < claimers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = r.ConditionalClaim(ctx, id)
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range results {
		if err == nil {
			wins++
			continue
		}
		assert.ErrorIs(t, err, domain.ErrSpaceUnavailable)
	}
	assert.Equal(t, 1, wins, "exactly one concurrent claimer may win")
}

func TestSpaceRepo_InsertClaimed(t *testing.T) {
	_, r := newSpaceTx(t)

	got, err := r.InsertClaimed(context.Background(), domain.CategorySUV, "GEN-2-0042")

	require.NoError(t, err)
	assert.Equal(t, "GEN-2-0042", got.Code)
	assert.False(t, got.Available, "a provisioned space must never be observably available")
}

func TestSpaceRepo_SetAvailable_Idempotent(t *testing.T) {
	tx, r := newSpaceTx(t)
	ctx := context.Background()

	id := insertSpace(t, tx, "T-1", domain.CategorySedan, false)

	require.NoError(t, r.SetAvailable(ctx, id, true))
	require.NoError(t, r.SetAvailable(ctx, id, true), "re-releasing must be a no-op")

	got, err := r.GetByID(ctx, id)
	require.NoError(t, err)
	assert.True(t, got.Available)
}

func TestSpaceRepo_SetAvailable_NotFound(t *testing.T) {
	_, r := newSpaceTx(t)

	err := r.SetAvailable(context.Background(), -1, true)

	assert.ErrorIs(t, err, domain.ErrNotFound)
}
