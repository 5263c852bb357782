package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/parqueo/backend/internal/domain"
)

// CategoryRepo defines read access to the vehicle category reference data.
// Categories are seeded by migration and never mutated at runtime.
type CategoryRepo interface {
	// GetByID retrieves a single category.
	// Returns domain.ErrNotFound if no category with that ID exists.
	GetByID(ctx context.Context, id int64) (domain.Category, error)

	// List returns all categories ordered by id ascending.
	List(ctx context.Context) ([]domain.Category, error)
}

// pgCategoryRepo is the Postgres implementation of CategoryRepo.
type pgCategoryRepo struct {
	db db
}

// NewCategoryRepo constructs a CategoryRepo backed by the provided db connection.
func NewCategoryRepo(db db) CategoryRepo {
	return &pgCategoryRepo{db: db}
}

func (r *pgCategoryRepo) GetByID(ctx context.Context, id int64) (domain.Category, error) {
	const q = `SELECT id, name FROM categories WHERE id = @id`

	var c domain.Category
	err := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}).Scan(&c.ID, &c.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Category{}, fmt.Errorf("repo.CategoryRepo.GetByID: %w", domain.ErrNotFound)
		}
		return domain.Category{}, fmt.Errorf("repo.CategoryRepo.GetByID: %w", err)
	}
	return c, nil
}

func (r *pgCategoryRepo) List(ctx context.Context) ([]domain.Category, error) {
	const q = `SELECT id, name FROM categories ORDER BY id ASC`

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("repo.CategoryRepo.List: %w", err)
	}
	defer rows.Close()

	var categories []domain.Category
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("repo.CategoryRepo.List: scan: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.CategoryRepo.List: rows: %w", err)
	}

	return categories, nil
}
