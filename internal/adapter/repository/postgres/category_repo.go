package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/abbaskhatri/bynkbook/internal/domain"
)

// CategoryRepository implements usecase.CategoryRepository.
type CategoryRepository struct {
	pool *pgxpool.Pool
}

// NewCategoryRepository creates a new CategoryRepository.
func NewCategoryRepository(pool *pgxpool.Pool) *CategoryRepository {
	return &CategoryRepository{pool: pool}
}

// Create inserts a new category.
func (r *CategoryRepository) Create(ctx context.Context, category *domain.Category) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO categories (id, business_id, name, archived, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, category.ID, category.BusinessID, category.Name, category.Archived, category.CreatedAt)
	return err
}

// ListByBusiness retrieves a business's categories.
func (r *CategoryRepository) ListByBusiness(ctx context.Context, businessID string, includeArchived bool) ([]*domain.Category, error) {
	query := `SELECT id, business_id, name, archived, created_at FROM categories WHERE business_id = $1`
	if !includeArchived {
		query += ` AND NOT archived`
	}
	query += ` ORDER BY name`

	rows, err := r.pool.Query(ctx, query, businessID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []*domain.Category
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.BusinessID, &c.Name, &c.Archived, &c.CreatedAt); err != nil {
			return nil, err
		}
		categories = append(categories, &c)
	}

	return categories, rows.Err()
}
