package http

import (
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"

	"github.com/dmitrijs2005/recipevault/internal/common"
	"github.com/dmitrijs2005/recipevault/internal/logging"
	"github.com/dmitrijs2005/recipevault/internal/server/models"
	"github.com/dmitrijs2005/recipevault/internal/server/services"
)

// Function-field fakes for the service interfaces. A nil field means the
// handler under test must not reach that operation.

type fakeUserService struct {
	registerFn      func(ctx context.Context, email, password, name string) (*models.User, error)
	loginFn         func(ctx context.Context, email, password string) (string, error)
	getByTokenFn    func(ctx context.Context, token string) (*models.User, error)
	profileFn       func(ctx context.Context, userID string) (*models.User, error)
	updateProfileFn func(ctx context.Context, userID string, name, password *string) (*models.User, error)
}

func (f *fakeUserService) Register(ctx context.Context, email, password, name string) (*models.User, error) {
	return f.registerFn(ctx, email, password, name)
}

func (f *fakeUserService) Login(ctx context.Context, email, password string) (string, error) {
	return f.loginFn(ctx, email, password)
}

func (f *fakeUserService) GetByToken(ctx context.Context, token string) (*models.User, error) {
	return f.getByTokenFn(ctx, token)
}

func (f *fakeUserService) Profile(ctx context.Context, userID string) (*models.User, error) {
	return f.profileFn(ctx, userID)
}

func (f *fakeUserService) UpdateProfile(ctx context.Context, userID string, name, password *string) (*models.User, error) {
	return f.updateProfileFn(ctx, userID, name, password)
}

type fakeTagService struct {
	listFn   func(ctx context.Context, userID string) ([]*models.Tag, error)
	createFn func(ctx context.Context, userID, name string) (*models.Tag, error)
}

func (f *fakeTagService) List(ctx context.Context, userID string) ([]*models.Tag, error) {
	return f.listFn(ctx, userID)
}

func (f *fakeTagService) Create(ctx context.Context, userID, name string) (*models.Tag, error) {
	return f.createFn(ctx, userID, name)
}

type fakeIngredientService struct {
	listFn   func(ctx context.Context, userID string) ([]*models.Ingredient, error)
	createFn func(ctx context.Context, userID, name string) (*models.Ingredient, error)
}

func (f *fakeIngredientService) List(ctx context.Context, userID string) ([]*models.Ingredient, error) {
	return f.listFn(ctx, userID)
}

func (f *fakeIngredientService) Create(ctx context.Context, userID, name string) (*models.Ingredient, error) {
	return f.createFn(ctx, userID, name)
}

type fakeRecipeService struct {
	listFn   func(ctx context.Context, userID string) ([]*models.Recipe, error)
	getFn    func(ctx context.Context, userID, id string) (*models.RecipeDetail, error)
	createFn func(ctx context.Context, userID string, in services.RecipeInput) (*models.Recipe, error)
	updateFn func(ctx context.Context, userID, id string, patch services.RecipePatch) (*models.Recipe, error)
	deleteFn func(ctx context.Context, userID, id string) error
}

func (f *fakeRecipeService) List(ctx context.Context, userID string) ([]*models.Recipe, error) {
	return f.listFn(ctx, userID)
}

func (f *fakeRecipeService) Get(ctx context.Context, userID, id string) (*models.RecipeDetail, error) {
	return f.getFn(ctx, userID, id)
}

func (f *fakeRecipeService) Create(ctx context.Context, userID string, in services.RecipeInput) (*models.Recipe, error) {
	return f.createFn(ctx, userID, in)
}

func (f *fakeRecipeService) Update(ctx context.Context, userID, id string, patch services.RecipePatch) (*models.Recipe, error) {
	return f.updateFn(ctx, userID, id, patch)
}

func (f *fakeRecipeService) Delete(ctx context.Context, userID, id string) error {
	return f.deleteFn(ctx, userID, id)
}

type fakeImageService struct {
	attachFn   func(ctx context.Context, userID, recipeID, fileName string) (string, string, error)
	downloadFn func(ctx context.Context, key string) (string, error)
}

func (f *fakeImageService) AttachImage(ctx context.Context, userID, recipeID, fileName string) (string, string, error) {
	return f.attachFn(ctx, userID, recipeID, fileName)
}

func (f *fakeImageService) DownloadURL(ctx context.Context, key string) (string, error) {
	return f.downloadFn(ctx, key)
}

// authUser is the account behind the "good-token" credential in tests.
var authUser = &models.User{ID: "u-1", Email: "alice@example.com", Name: "Alice", IsActive: true}

// authedUserService resolves "good-token" to authUser and rejects the rest.
func authedUserService() *fakeUserService {
	return &fakeUserService{
		getByTokenFn: func(ctx context.Context, token string) (*models.User, error) {
			if token == "good-token" {
				return authUser, nil
			}
			return nil, common.ErrorUnauthenticated
		},
	}
}

type testServices struct {
	users       *fakeUserService
	tags        *fakeTagService
	ingredients *fakeIngredientService
	recipes     *fakeRecipeService
	images      *fakeImageService
}

func newTestServer(t *testing.T, svc testServices) *httptest.Server {
	t.Helper()

	if svc.users == nil {
		svc.users = authedUserService()
	}
	if svc.tags == nil {
		svc.tags = &fakeTagService{}
	}
	if svc.ingredients == nil {
		svc.ingredients = &fakeIngredientService{}
	}
	if svc.recipes == nil {
		svc.recipes = &fakeRecipeService{}
	}
	if svc.images == nil {
		svc.images = &fakeImageService{}
	}

	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	s := NewHTTPServer(":0", logger, nil, svc.users, svc.tags, svc.ingredients, svc.recipes, svc.images)

	ts := httptest.NewServer(s.Router())
	t.Cleanup(ts.Close)
	return ts
}
