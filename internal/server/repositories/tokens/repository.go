package tokens

import (
	"context"

	"github.com/dmitrijs2005/recipevault/internal/server/models"
)

type Repository interface {
	// GetOrCreate returns the user's existing token, inserting candidate
	// atomically when none exists yet.
	GetOrCreate(ctx context.Context, userID, candidate string) (string, error)
	GetByToken(ctx context.Context, token string) (*models.AuthToken, error)
}
