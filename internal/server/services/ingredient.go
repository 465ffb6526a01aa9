package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/recipevault/internal/common"
	"github.com/dmitrijs2005/recipevault/internal/server/models"
	"github.com/dmitrijs2005/recipevault/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/recipevault/internal/validation"
)

// IngredientService mirrors TagService for the ingredient resource.
type IngredientService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewIngredientService(db *sql.DB, m repomanager.RepositoryManager) *IngredientService {
	return &IngredientService{db: db, repomanager: m}
}

// List returns the caller's ingredients, name descending.
func (s *IngredientService) List(ctx context.Context, userID string) ([]*models.Ingredient, error) {
	result, err := s.repomanager.Ingredients(s.db).ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing ingredients: %w", err)
	}
	return result, nil
}

// Create stores a new ingredient owned by the caller.
func (s *IngredientService) Create(ctx context.Context, userID, name string) (*models.Ingredient, error) {
	ve := common.NewValidationError()
	validation.Required(ve, "name", name)
	validation.MaxLen(ve, "name", name, validation.MaxNameLength)
	if !ve.Empty() {
		return nil, ve
	}

	ingredient := &models.Ingredient{UserID: userID, Name: name}
	created, err := s.repomanager.Ingredients(s.db).Create(ctx, ingredient)
	if err != nil {
		return nil, fmt.Errorf("creating ingredient: %w", err)
	}
	return created, nil
}
