package recipes

import (
	"context"

	"github.com/dmitrijs2005/recipevault/internal/server/models"
)

type Repository interface {
	ListByUser(ctx context.Context, userID string) ([]*models.Recipe, error)
	IngredientRefsByUser(ctx context.Context, userID string) (map[string][]string, error)
	TagRefsByUser(ctx context.Context, userID string) (map[string][]string, error)

	GetForUser(ctx context.Context, id, userID string) (*models.Recipe, error)
	IngredientsFor(ctx context.Context, recipeID string) ([]*models.Ingredient, error)
	TagsFor(ctx context.Context, recipeID string) ([]*models.Tag, error)

	Create(ctx context.Context, recipe *models.Recipe) (*models.Recipe, error)
	Update(ctx context.Context, recipe *models.Recipe) error
	Delete(ctx context.Context, id, userID string) error
	SetImageKey(ctx context.Context, id, userID, key string) error

	SetIngredients(ctx context.Context, recipeID string, ingredientIDs []string) error
	SetTags(ctx context.Context, recipeID string, tagIDs []string) error
}
