package services

import (
	"context"
	"database/sql"
	"sync"
	"testing"

	"github.com/dmitrijs2005/recipevault/internal/common"
	"github.com/dmitrijs2005/recipevault/internal/dbx"
	"github.com/dmitrijs2005/recipevault/internal/server/models"
	ingredientsrepo "github.com/dmitrijs2005/recipevault/internal/server/repositories/ingredients"
	recipesrepo "github.com/dmitrijs2005/recipevault/internal/server/repositories/recipes"
	tagsrepo "github.com/dmitrijs2005/recipevault/internal/server/repositories/tags"
	tokensrepo "github.com/dmitrijs2005/recipevault/internal/server/repositories/tokens"
	usersrepo "github.com/dmitrijs2005/recipevault/internal/server/repositories/users"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

// In-memory repository fakes. They ignore the DBTX handle, so transactional
// service code runs against them unchanged.

type memUsersRepo struct {
	mu   sync.Mutex
	byID map[string]*models.User
}

func newMemUsersRepo() *memUsersRepo {
	return &memUsersRepo{byID: make(map[string]*models.User)}
}

func (r *memUsersRepo) Create(ctx context.Context, user *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byID {
		if u.Email == user.Email {
			return nil, common.ErrorAlreadyExists
		}
	}
	user.ID = uuid.NewString()
	cp := *user
	r.byID[user.ID] = &cp
	return user, nil
}

func (r *memUsersRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *memUsersRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *memUsersRepo) Update(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[user.ID]; !ok {
		return common.ErrorNotFound
	}
	cp := *user
	r.byID[user.ID] = &cp
	return nil
}

type memTokensRepo struct {
	mu     sync.Mutex
	byUser map[string]string
}

func newMemTokensRepo() *memTokensRepo {
	return &memTokensRepo{byUser: make(map[string]string)}
}

func (r *memTokensRepo) GetOrCreate(ctx context.Context, userID, candidate string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if tok, ok := r.byUser[userID]; ok {
		return tok, nil
	}
	r.byUser[userID] = candidate
	return candidate, nil
}

func (r *memTokensRepo) GetByToken(ctx context.Context, token string) (*models.AuthToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for userID, tok := range r.byUser {
		if tok == token {
			return &models.AuthToken{UserID: userID, Token: tok}, nil
		}
	}
	return nil, common.ErrorNotFound
}

type memTagsRepo struct {
	mu   sync.Mutex
	byID map[string]*models.Tag
}

func newMemTagsRepo() *memTagsRepo {
	return &memTagsRepo{byID: make(map[string]*models.Tag)}
}

func (r *memTagsRepo) ListByUser(ctx context.Context, userID string) ([]*models.Tag, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*models.Tag
	for _, t := range r.byID {
		if t.UserID == userID {
			cp := *t
			result = append(result, &cp)
		}
	}
	return result, nil
}

func (r *memTagsRepo) Create(ctx context.Context, tag *models.Tag) (*models.Tag, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tag.ID = uuid.NewString()
	cp := *tag
	r.byID[tag.ID] = &cp
	return tag, nil
}

type memIngredientsRepo struct {
	mu   sync.Mutex
	byID map[string]*models.Ingredient
}

func newMemIngredientsRepo() *memIngredientsRepo {
	return &memIngredientsRepo{byID: make(map[string]*models.Ingredient)}
}

func (r *memIngredientsRepo) ListByUser(ctx context.Context, userID string) ([]*models.Ingredient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*models.Ingredient
	for _, i := range r.byID {
		if i.UserID == userID {
			cp := *i
			result = append(result, &cp)
		}
	}
	return result, nil
}

func (r *memIngredientsRepo) Create(ctx context.Context, ingredient *models.Ingredient) (*models.Ingredient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ingredient.ID = uuid.NewString()
	cp := *ingredient
	r.byID[ingredient.ID] = &cp
	return ingredient, nil
}

type memRecipesRepo struct {
	mu             sync.Mutex
	byID           map[string]*models.Recipe
	ingredientRefs map[string][]string
	tagRefs        map[string][]string

	// reference targets, emulating the FK constraints
	tags        *memTagsRepo
	ingredients *memIngredientsRepo
}

func newMemRecipesRepo(tags *memTagsRepo, ingredients *memIngredientsRepo) *memRecipesRepo {
	return &memRecipesRepo{
		byID:           make(map[string]*models.Recipe),
		ingredientRefs: make(map[string][]string),
		tagRefs:        make(map[string][]string),
		tags:           tags,
		ingredients:    ingredients,
	}
}

func (r *memRecipesRepo) ListByUser(ctx context.Context, userID string) ([]*models.Recipe, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*models.Recipe
	for _, rec := range r.byID {
		if rec.UserID == userID {
			cp := *rec
			result = append(result, &cp)
		}
	}
	return result, nil
}

func (r *memRecipesRepo) IngredientRefsByUser(ctx context.Context, userID string) (map[string][]string, error) {
	return r.refsByUser(userID, r.ingredientRefs), nil
}

func (r *memRecipesRepo) TagRefsByUser(ctx context.Context, userID string) (map[string][]string, error) {
	return r.refsByUser(userID, r.tagRefs), nil
}

func (r *memRecipesRepo) refsByUser(userID string, refs map[string][]string) map[string][]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make(map[string][]string)
	for recipeID, ids := range refs {
		if rec, ok := r.byID[recipeID]; ok && rec.UserID == userID && len(ids) > 0 {
			result[recipeID] = append([]string(nil), ids...)
		}
	}
	return result
}

func (r *memRecipesRepo) GetForUser(ctx context.Context, id, userID string) (*models.Recipe, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.byID[id]
	if !ok || rec.UserID != userID {
		return nil, common.ErrorNotFound
	}
	cp := *rec
	return &cp, nil
}

func (r *memRecipesRepo) IngredientsFor(ctx context.Context, recipeID string) ([]*models.Ingredient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*models.Ingredient
	for _, id := range r.ingredientRefs[recipeID] {
		if i, ok := r.ingredients.byID[id]; ok {
			cp := *i
			result = append(result, &cp)
		}
	}
	return result, nil
}

func (r *memRecipesRepo) TagsFor(ctx context.Context, recipeID string) ([]*models.Tag, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*models.Tag
	for _, id := range r.tagRefs[recipeID] {
		if t, ok := r.tags.byID[id]; ok {
			cp := *t
			result = append(result, &cp)
		}
	}
	return result, nil
}

func (r *memRecipesRepo) Create(ctx context.Context, recipe *models.Recipe) (*models.Recipe, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	recipe.ID = uuid.NewString()
	cp := *recipe
	r.byID[recipe.ID] = &cp
	return recipe, nil
}

func (r *memRecipesRepo) Update(ctx context.Context, recipe *models.Recipe) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.byID[recipe.ID]
	if !ok || existing.UserID != recipe.UserID {
		return common.ErrorNotFound
	}
	cp := *recipe
	r.byID[recipe.ID] = &cp
	return nil
}

func (r *memRecipesRepo) Delete(ctx context.Context, id, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.byID[id]
	if !ok || rec.UserID != userID {
		return common.ErrorNotFound
	}
	delete(r.byID, id)
	delete(r.ingredientRefs, id)
	delete(r.tagRefs, id)
	return nil
}

func (r *memRecipesRepo) SetImageKey(ctx context.Context, id, userID, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.byID[id]
	if !ok || rec.UserID != userID {
		return common.ErrorNotFound
	}
	rec.ImageKey = key
	return nil
}

func (r *memRecipesRepo) SetIngredients(ctx context.Context, recipeID string, ingredientIDs []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range ingredientIDs {
		if _, ok := r.ingredients.byID[id]; !ok {
			return common.ErrorNotFound
		}
	}
	r.ingredientRefs[recipeID] = append([]string(nil), ingredientIDs...)
	return nil
}

func (r *memRecipesRepo) SetTags(ctx context.Context, recipeID string, tagIDs []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range tagIDs {
		if _, ok := r.tags.byID[id]; !ok {
			return common.ErrorNotFound
		}
	}
	r.tagRefs[recipeID] = append([]string(nil), tagIDs...)
	return nil
}

// fakeRepoManager vends the in-memory repos regardless of the DBTX handle.
type fakeRepoManager struct {
	users       *memUsersRepo
	tokens      *memTokensRepo
	tags        *memTagsRepo
	ingredients *memIngredientsRepo
	recipes     *memRecipesRepo
}

func newFakeRepoManager() *fakeRepoManager {
	tags := newMemTagsRepo()
	ingredients := newMemIngredientsRepo()
	return &fakeRepoManager{
		users:       newMemUsersRepo(),
		tokens:      newMemTokensRepo(),
		tags:        tags,
		ingredients: ingredients,
		recipes:     newMemRecipesRepo(tags, ingredients),
	}
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error       { return nil }
func (m *fakeRepoManager) Users(db dbx.DBTX) usersrepo.Repository             { return m.users }
func (m *fakeRepoManager) Tokens(db dbx.DBTX) tokensrepo.Repository           { return m.tokens }
func (m *fakeRepoManager) Tags(db dbx.DBTX) tagsrepo.Repository               { return m.tags }
func (m *fakeRepoManager) Ingredients(db dbx.DBTX) ingredientsrepo.Repository { return m.ingredients }
func (m *fakeRepoManager) Recipes(db dbx.DBTX) recipesrepo.Repository         { return m.recipes }

// newServiceDB returns a real (sqlite) DB so dbx.WithTx can begin and commit
// transactions; the fakes above never touch it.
func newServiceDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", "file:services_tests?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}
