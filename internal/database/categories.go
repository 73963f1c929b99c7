package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fluxolab/fluxo-api/internal/models"
)

// CategoryRepository persists user-defined categories.
type CategoryRepository struct {
	pool *pgxpool.Pool
}

// NewCategoryRepository creates the repository.
func NewCategoryRepository(pool *pgxpool.Pool) *CategoryRepository {
	return &CategoryRepository{pool: pool}
}

// List returns a user's categories ordered by name.
func (r *CategoryRepository) List(ctx context.Context, userID string) ([]models.Category, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, name, type, created_at FROM categories WHERE user_id = $1 ORDER BY name`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	categories := []models.Category{}
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.Type, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// Create inserts a category.
func (r *CategoryRepository) Create(ctx context.Context, c models.Category) (models.Category, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO categories (id, user_id, name, type, created_at)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, user_id, name, type, created_at`,
		uuid.New(), c.UserID, c.Name, c.Type, time.Now().UTC())

	var out models.Category
	if err := row.Scan(&out.ID, &out.UserID, &out.Name, &out.Type, &out.CreatedAt); err != nil {
		return models.Category{}, fmt.Errorf("failed to insert category: %w", err)
	}
	return out, nil
}
