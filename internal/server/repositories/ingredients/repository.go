package ingredients

import (
	"context"

	"github.com/dmitrijs2005/recipevault/internal/server/models"
)

type Repository interface {
	ListByUser(ctx context.Context, userID string) ([]*models.Ingredient, error)
	Create(ctx context.Context, ingredient *models.Ingredient) (*models.Ingredient, error)
}
