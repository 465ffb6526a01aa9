package tags

import (
	"context"

	"github.com/dmitrijs2005/recipevault/internal/server/models"
)

type Repository interface {
	ListByUser(ctx context.Context, userID string) ([]*models.Tag, error)
	Create(ctx context.Context, tag *models.Tag) (*models.Tag, error)
}
