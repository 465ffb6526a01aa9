// Package ingredients provides a PostgreSQL-backed repository for recipe
// ingredients.
package ingredients

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/recipevault/internal/dbx"
	"github.com/dmitrijs2005/recipevault/internal/server/models"
)

// PostgresRepository implements ingredient storage over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// ListByUser returns the user's ingredients in reverse lexicographic name order.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]*models.Ingredient, error) {
	query := `
		SELECT id, user_id, name
		FROM ingredients
		WHERE user_id = $1
		ORDER BY name DESC
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Ingredient
	for rows.Next() {
		var item models.Ingredient
		if err := rows.Scan(&item.ID, &item.UserID, &item.Name); err != nil {
			return nil, err
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Create inserts a new ingredient row for its owning user.
func (r *PostgresRepository) Create(ctx context.Context, ingredient *models.Ingredient) (*models.Ingredient, error) {
	query := `
		INSERT INTO ingredients (user_id, name)
		VALUES ($1, $2)
		RETURNING id
	`
	if err := r.db.QueryRowContext(ctx, query, ingredient.UserID, ingredient.Name).Scan(&ingredient.ID); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return ingredient, nil
}
