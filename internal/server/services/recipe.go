package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/recipevault/internal/common"
	"github.com/dmitrijs2005/recipevault/internal/dbx"
	"github.com/dmitrijs2005/recipevault/internal/server/models"
	"github.com/dmitrijs2005/recipevault/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/recipevault/internal/validation"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RecipeInput carries the full payload for creating a recipe. The owner is
// never part of the input; the service stamps the caller's id.
type RecipeInput struct {
	Title         string
	TimeMinutes   int
	Price         decimal.Decimal
	Link          string
	IngredientIDs []string
	TagIDs        []string
}

// RecipePatch carries a partial update; nil fields are left untouched.
// An empty (non-nil) id slice clears the association set.
type RecipePatch struct {
	Title         *string
	TimeMinutes   *int
	Price         *decimal.Decimal
	Link          *string
	IngredientIDs *[]string
	TagIDs        *[]string
}

// RecipeService implements the full ownership-scoped CRUD contract for
// recipes, including the many-to-many ingredient/tag sets.
type RecipeService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewRecipeService(db *sql.DB, m repomanager.RepositoryManager) *RecipeService {
	return &RecipeService{db: db, repomanager: m}
}

// List returns the caller's recipes in store-default order with id-only
// association references (the summary projection).
func (s *RecipeService) List(ctx context.Context, userID string) ([]*models.Recipe, error) {
	repo := s.repomanager.Recipes(s.db)

	result, err := repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing recipes: %w", err)
	}

	ingredientRefs, err := repo.IngredientRefsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading ingredient refs: %w", err)
	}
	tagRefs, err := repo.TagRefsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading tag refs: %w", err)
	}

	for _, recipe := range result {
		recipe.IngredientIDs = refsOrEmpty(ingredientRefs[recipe.ID])
		recipe.TagIDs = refsOrEmpty(tagRefs[recipe.ID])
	}
	return result, nil
}

// Get returns the detail projection: scalars plus fully expanded ingredient
// and tag sub-records. A recipe owned by someone else is indistinguishable
// from a nonexistent one.
func (s *RecipeService) Get(ctx context.Context, userID, id string) (*models.RecipeDetail, error) {
	if uuid.Validate(id) != nil {
		return nil, common.ErrorNotFound
	}

	repo := s.repomanager.Recipes(s.db)

	recipe, err := repo.GetForUser(ctx, id, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("loading recipe: %w", err)
	}

	ingredients, err := repo.IngredientsFor(ctx, recipe.ID)
	if err != nil {
		return nil, fmt.Errorf("loading ingredients: %w", err)
	}
	tags, err := repo.TagsFor(ctx, recipe.ID)
	if err != nil {
		return nil, fmt.Errorf("loading tags: %w", err)
	}

	recipe.IngredientIDs = idsOf(ingredients, func(i *models.Ingredient) string { return i.ID })
	recipe.TagIDs = idsOf(tags, func(t *models.Tag) string { return t.ID })

	return &models.RecipeDetail{Recipe: *recipe, Ingredients: ingredients, Tags: tags}, nil
}

// Create validates the payload and stores the recipe with its association
// sets in one transaction. The owner is forced to the caller.
func (s *RecipeService) Create(ctx context.Context, userID string, in RecipeInput) (*models.Recipe, error) {
	ve := common.NewValidationError()
	validation.Required(ve, "title", in.Title)
	validation.MaxLen(ve, "title", in.Title, validation.MaxNameLength)
	validation.NonNegativeInt(ve, "time_minutes", in.TimeMinutes)
	validation.Price(ve, "price", in.Price)
	validation.MaxLen(ve, "link", in.Link, validation.MaxNameLength)
	validateRefIDs(ve, "ingredients", in.IngredientIDs)
	validateRefIDs(ve, "tags", in.TagIDs)
	if !ve.Empty() {
		return nil, ve
	}

	recipe := &models.Recipe{
		UserID:      userID,
		Title:       in.Title,
		TimeMinutes: in.TimeMinutes,
		Price:       in.Price,
		Link:        in.Link,
	}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Recipes(tx)
		if _, err := repo.Create(ctx, recipe); err != nil {
			return err
		}
		if err := repo.SetIngredients(ctx, recipe.ID, in.IngredientIDs); err != nil {
			return refError(err, "ingredients")
		}
		if err := repo.SetTags(ctx, recipe.ID, in.TagIDs); err != nil {
			return refError(err, "tags")
		}
		return nil
	})
	if err != nil {
		if _, ok := common.AsValidationError(err); ok {
			return nil, err
		}
		return nil, fmt.Errorf("creating recipe: %w", err)
	}

	recipe.IngredientIDs = refsOrEmpty(in.IngredientIDs)
	recipe.TagIDs = refsOrEmpty(in.TagIDs)
	return recipe, nil
}

// Update applies a partial update under the same ownership rule as Get. Only
// supplied fields change; the merged record is validated before the write.
func (s *RecipeService) Update(ctx context.Context, userID, id string, patch RecipePatch) (*models.Recipe, error) {
	if uuid.Validate(id) != nil {
		return nil, common.ErrorNotFound
	}

	ve := common.NewValidationError()
	if patch.IngredientIDs != nil {
		validateRefIDs(ve, "ingredients", *patch.IngredientIDs)
	}
	if patch.TagIDs != nil {
		validateRefIDs(ve, "tags", *patch.TagIDs)
	}
	if !ve.Empty() {
		return nil, ve
	}

	var updated *models.Recipe

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Recipes(tx)

		recipe, err := repo.GetForUser(ctx, id, userID)
		if err != nil {
			return err
		}

		if patch.Title != nil {
			recipe.Title = *patch.Title
		}
		if patch.TimeMinutes != nil {
			recipe.TimeMinutes = *patch.TimeMinutes
		}
		if patch.Price != nil {
			recipe.Price = *patch.Price
		}
		if patch.Link != nil {
			recipe.Link = *patch.Link
		}

		ve := common.NewValidationError()
		validation.Required(ve, "title", recipe.Title)
		validation.MaxLen(ve, "title", recipe.Title, validation.MaxNameLength)
		validation.NonNegativeInt(ve, "time_minutes", recipe.TimeMinutes)
		validation.Price(ve, "price", recipe.Price)
		validation.MaxLen(ve, "link", recipe.Link, validation.MaxNameLength)
		if !ve.Empty() {
			return ve
		}

		if err := repo.Update(ctx, recipe); err != nil {
			return err
		}

		if patch.IngredientIDs != nil {
			if err := repo.SetIngredients(ctx, recipe.ID, *patch.IngredientIDs); err != nil {
				return refError(err, "ingredients")
			}
			recipe.IngredientIDs = refsOrEmpty(*patch.IngredientIDs)
		} else {
			current, err := repo.IngredientsFor(ctx, recipe.ID)
			if err != nil {
				return err
			}
			recipe.IngredientIDs = idsOf(current, func(i *models.Ingredient) string { return i.ID })
		}

		if patch.TagIDs != nil {
			if err := repo.SetTags(ctx, recipe.ID, *patch.TagIDs); err != nil {
				return refError(err, "tags")
			}
			recipe.TagIDs = refsOrEmpty(*patch.TagIDs)
		} else {
			current, err := repo.TagsFor(ctx, recipe.ID)
			if err != nil {
				return err
			}
			recipe.TagIDs = idsOf(current, func(t *models.Tag) string { return t.ID })
		}

		updated = recipe
		return nil
	})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		if _, ok := common.AsValidationError(err); ok {
			return nil, err
		}
		return nil, fmt.Errorf("updating recipe: %w", err)
	}
	return updated, nil
}

// Delete removes the caller's recipe; associations go with it via cascade.
func (s *RecipeService) Delete(ctx context.Context, userID, id string) error {
	if uuid.Validate(id) != nil {
		return common.ErrorNotFound
	}

	err := s.repomanager.Recipes(s.db).Delete(ctx, id, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorNotFound
		}
		return fmt.Errorf("deleting recipe: %w", err)
	}
	return nil
}

// validateRefIDs rejects reference ids that are not well-formed UUIDs before
// they reach the store, keyed the same way a dangling reference would be.
func validateRefIDs(ve *common.ValidationError, field string, ids []string) {
	for _, id := range ids {
		if uuid.Validate(id) != nil {
			ve.Add(field, "referenced object does not exist")
			return
		}
	}
}

// refError converts a dangling-reference failure into a field-keyed
// validation error; other errors pass through.
func refError(err error, field string) error {
	if errors.Is(err, common.ErrorNotFound) {
		ve := common.NewValidationError()
		ve.Add(field, "referenced object does not exist")
		return ve
	}
	return err
}

func refsOrEmpty(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}

func idsOf[T any](items []T, id func(T) string) []string {
	result := make([]string, 0, len(items))
	for _, item := range items {
		result = append(result, id(item))
	}
	return result
}
