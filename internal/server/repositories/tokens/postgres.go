// Package tokens provides a PostgreSQL-backed repository for the durable
// opaque auth tokens used by the authentication flow.
package tokens

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/recipevault/internal/common"
	"github.com/dmitrijs2005/recipevault/internal/dbx"
	"github.com/dmitrijs2005/recipevault/internal/server/models"
)

// PostgresRepository implements token storage over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetOrCreate inserts candidate as the token for userID; if the user already
// has one, the no-op conflict update makes RETURNING yield the existing token.
// Concurrent logins therefore always agree on a single token per user.
func (r *PostgresRepository) GetOrCreate(ctx context.Context, userID, candidate string) (string, error) {
	query := `
		INSERT INTO auth_tokens (user_id, token)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET user_id = auth_tokens.user_id
		RETURNING token
	`
	var token string
	if err := r.db.QueryRowContext(ctx, query, userID, candidate).Scan(&token); err != nil {
		return "", fmt.Errorf("db error: %w", err)
	}
	return token, nil
}

// GetByToken returns the token row for the given token string.
// If not found, it returns common.ErrorNotFound.
func (r *PostgresRepository) GetByToken(ctx context.Context, token string) (*models.AuthToken, error) {
	query := `
		SELECT id, user_id, token, created_at
		FROM auth_tokens
		WHERE token = $1
	`
	authToken := &models.AuthToken{}
	err := r.db.QueryRowContext(ctx, query, token).
		Scan(&authToken.ID, &authToken.UserID, &authToken.Token, &authToken.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return authToken, nil
}
