// Package tags provides a PostgreSQL-backed repository for recipe tags.
package tags

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/recipevault/internal/dbx"
	"github.com/dmitrijs2005/recipevault/internal/server/models"
)

// PostgresRepository implements tag storage over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// ListByUser returns the user's tags in reverse lexicographic name order.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]*models.Tag, error) {
	query := `
		SELECT id, user_id, name
		FROM tags
		WHERE user_id = $1
		ORDER BY name DESC
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Tag
	for rows.Next() {
		var item models.Tag
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

// Create inserts a new tag row for its owning user.
func (r *PostgresRepository) Create(ctx context.Context, tag *models.Tag) (*models.Tag, error) {
	query := `
		INSERT INTO tags (user_id, name)
		VALUES ($1, $2)
		RETURNING id
	`
	if err := r.db.QueryRowContext(ctx, query, tag.UserID, tag.Name).Scan(&tag.ID); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return tag, nil
}
