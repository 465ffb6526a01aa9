// Package recipes provides a PostgreSQL-backed repository for recipes and
// their many-to-many ingredient/tag associations.
package recipes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/recipevault/internal/common"
	"github.com/dmitrijs2005/recipevault/internal/dbx"
	"github.com/dmitrijs2005/recipevault/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

// PostgresRepository implements recipe storage over a dbx.DBTX
// (*sql.DB or *sql.Tx). Association writes must run inside a transaction,
// so callers pass a *sql.Tx via dbx.WithTx for create/update.
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// isFKViolation reports whether err is a Postgres foreign-key violation
// (SQLSTATE 23503), i.e. a referenced row does not exist.
func isFKViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}

// ListByUser returns the user's recipes in store-default order, scalar fields
// only. Associations are loaded separately via the *RefsByUser queries.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]*models.Recipe, error) {
	query := `
		SELECT id, user_id, title, time_minutes, price, link, image_key, created_at
		FROM recipes
		WHERE user_id = $1
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Recipe
	for rows.Next() {
		var item models.Recipe
		if err := rows.Scan(&item.ID, &item.UserID, &item.Title, &item.TimeMinutes,
			&item.Price, &item.Link, &item.ImageKey, &item.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// IngredientRefsByUser returns recipe_id → ingredient ids for all of the
// user's recipes in a single query.
func (r *PostgresRepository) IngredientRefsByUser(ctx context.Context, userID string) (map[string][]string, error) {
	query := `
		SELECT ri.recipe_id, ri.ingredient_id
		FROM recipe_ingredients ri
		JOIN recipes rc ON rc.id = ri.recipe_id
		WHERE rc.user_id = $1
	`
	return r.refsByUser(ctx, query, userID)
}

// TagRefsByUser returns recipe_id → tag ids for all of the user's recipes.
func (r *PostgresRepository) TagRefsByUser(ctx context.Context, userID string) (map[string][]string, error) {
	query := `
		SELECT rt.recipe_id, rt.tag_id
		FROM recipe_tags rt
		JOIN recipes rc ON rc.id = rt.recipe_id
		WHERE rc.user_id = $1
	`
	return r.refsByUser(ctx, query, userID)
}

func (r *PostgresRepository) refsByUser(ctx context.Context, query, userID string) (map[string][]string, error) {
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	refs := make(map[string][]string)
	for rows.Next() {
		var recipeID, refID string
		if err := rows.Scan(&recipeID, &refID); err != nil {
			return nil, err
		}
		refs[recipeID] = append(refs[recipeID], refID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return refs, nil
}

// GetForUser returns the recipe only when it exists and belongs to userID.
// A missing row and an ownership mismatch are both common.ErrorNotFound.
func (r *PostgresRepository) GetForUser(ctx context.Context, id, userID string) (*models.Recipe, error) {
	query := `
		SELECT id, user_id, title, time_minutes, price, link, image_key, created_at
		FROM recipes
		WHERE id = $1 AND user_id = $2
	`
	var item models.Recipe
	err := r.db.QueryRowContext(ctx, query, id, userID).
		Scan(&item.ID, &item.UserID, &item.Title, &item.TimeMinutes,
			&item.Price, &item.Link, &item.ImageKey, &item.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &item, nil
}

// IngredientsFor returns the full ingredient records attached to a recipe.
func (r *PostgresRepository) IngredientsFor(ctx context.Context, recipeID string) ([]*models.Ingredient, error) {
	query := `
		SELECT i.id, i.user_id, i.name
		FROM ingredients i
		JOIN recipe_ingredients ri ON ri.ingredient_id = i.id
		WHERE ri.recipe_id = $1
	`
	rows, err := r.db.QueryContext(ctx, query, recipeID)
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

// TagsFor returns the full tag records attached to a recipe.
func (r *PostgresRepository) TagsFor(ctx context.Context, recipeID string) ([]*models.Tag, error) {
	query := `
		SELECT t.id, t.user_id, t.name
		FROM tags t
		JOIN recipe_tags rt ON rt.tag_id = t.id
		WHERE rt.recipe_id = $1
	`
	rows, err := r.db.QueryContext(ctx, query, recipeID)
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

// Create inserts the recipe scalars and returns the stored row ids.
func (r *PostgresRepository) Create(ctx context.Context, recipe *models.Recipe) (*models.Recipe, error) {
	query := `
		INSERT INTO recipes (user_id, title, time_minutes, price, link, image_key)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		recipe.UserID, recipe.Title, recipe.TimeMinutes, recipe.Price, recipe.Link, recipe.ImageKey).
		Scan(&recipe.ID, &recipe.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return recipe, nil
}

// Update persists the recipe scalars. The user_id predicate keeps the write
// ownership-scoped; zero rows affected means not found (or not owned).
func (r *PostgresRepository) Update(ctx context.Context, recipe *models.Recipe) error {
	query := `
		UPDATE recipes
		SET title = $1, time_minutes = $2, price = $3, link = $4
		WHERE id = $5 AND user_id = $6
	`
	res, err := r.db.ExecContext(ctx, query,
		recipe.Title, recipe.TimeMinutes, recipe.Price, recipe.Link, recipe.ID, recipe.UserID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return rowsAffectedOne(res)
}

// Delete removes the recipe when owned by userID; cascades clear associations.
func (r *PostgresRepository) Delete(ctx context.Context, id, userID string) error {
	query := `
		DELETE FROM recipes
		WHERE id = $1 AND user_id = $2
	`
	res, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return rowsAffectedOne(res)
}

// SetImageKey stores the object-storage key for the recipe's image.
func (r *PostgresRepository) SetImageKey(ctx context.Context, id, userID, key string) error {
	query := `
		UPDATE recipes
		SET image_key = $1
		WHERE id = $2 AND user_id = $3
	`
	res, err := r.db.ExecContext(ctx, query, key, id, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return rowsAffectedOne(res)
}

// SetIngredients replaces the recipe's ingredient set. A reference to a
// nonexistent ingredient surfaces as common.ErrorNotFound.
func (r *PostgresRepository) SetIngredients(ctx context.Context, recipeID string, ingredientIDs []string) error {
	return r.setRefs(ctx, recipeID, ingredientIDs,
		`DELETE FROM recipe_ingredients WHERE recipe_id = $1`,
		`INSERT INTO recipe_ingredients (recipe_id, ingredient_id) VALUES ($1, $2)`)
}

// SetTags replaces the recipe's tag set.
func (r *PostgresRepository) SetTags(ctx context.Context, recipeID string, tagIDs []string) error {
	return r.setRefs(ctx, recipeID, tagIDs,
		`DELETE FROM recipe_tags WHERE recipe_id = $1`,
		`INSERT INTO recipe_tags (recipe_id, tag_id) VALUES ($1, $2)`)
}

func (r *PostgresRepository) setRefs(ctx context.Context, recipeID string, ids []string, deleteQuery, insertQuery string) error {
	if _, err := r.db.ExecContext(ctx, deleteQuery, recipeID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	for _, id := range ids {
		if _, err := r.db.ExecContext(ctx, insertQuery, recipeID, id); err != nil {
			if isFKViolation(err) {
				return common.ErrorNotFound
			}
			return fmt.Errorf("db error: %w", err)
		}
	}
	return nil
}

func rowsAffectedOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	switch n {
	case 1:
		return nil
	case 0:
		return common.ErrorNotFound
	default:
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
}
