// Package http exposes the RecipeVault API over HTTP/JSON. It mirrors the
// service layer one handler per operation and owns request/response shaping,
// token authentication, and error-to-status mapping.
package http

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/dmitrijs2005/recipevault/internal/logging"
	"github.com/dmitrijs2005/recipevault/internal/server/models"
	"github.com/dmitrijs2005/recipevault/internal/server/services"
	"github.com/gorilla/mux"
)

// UserService is the identity surface the handlers need.
type UserService interface {
	Register(ctx context.Context, email, password, name string) (*models.User, error)
	Login(ctx context.Context, email, password string) (string, error)
	GetByToken(ctx context.Context, token string) (*models.User, error)
	Profile(ctx context.Context, userID string) (*models.User, error)
	UpdateProfile(ctx context.Context, userID string, name, password *string) (*models.User, error)
}

type TagService interface {
	List(ctx context.Context, userID string) ([]*models.Tag, error)
	Create(ctx context.Context, userID, name string) (*models.Tag, error)
}

type IngredientService interface {
	List(ctx context.Context, userID string) ([]*models.Ingredient, error)
	Create(ctx context.Context, userID, name string) (*models.Ingredient, error)
}

type RecipeService interface {
	List(ctx context.Context, userID string) ([]*models.Recipe, error)
	Get(ctx context.Context, userID, id string) (*models.RecipeDetail, error)
	Create(ctx context.Context, userID string, in services.RecipeInput) (*models.Recipe, error)
	Update(ctx context.Context, userID, id string, patch services.RecipePatch) (*models.Recipe, error)
	Delete(ctx context.Context, userID, id string) error
}

type ImageService interface {
	AttachImage(ctx context.Context, userID, recipeID, fileName string) (key, url string, err error)
	DownloadURL(ctx context.Context, key string) (string, error)
}

// HTTPServer serves the public API on a single address.
type HTTPServer struct {
	address string
	logger  logging.Logger
	db      *sql.DB

	users       UserService
	tags        TagService
	ingredients IngredientService
	recipes     RecipeService
	images      ImageService
}

func NewHTTPServer(address string, l logging.Logger, db *sql.DB,
	us UserService, ts TagService, is IngredientService, rs RecipeService, ims ImageService) *HTTPServer {
	return &HTTPServer{
		address:     address,
		logger:      l.With("module", "http_server"),
		db:          db,
		users:       us,
		tags:        ts,
		ingredients: is,
		recipes:     rs,
		images:      ims,
	}
}

// Router builds the full route table. Everything under /api except user
// registration and token issuance requires a valid token.
func (s *HTTPServer) Router() *mux.Router {
	router := mux.NewRouter()
	router.NotFoundHandler = http.HandlerFunc(handleNotFound)

	router.HandleFunc("/healthz", s.handleHealthz).Methods(http.MethodGet)

	router.HandleFunc("/api/user/create/", s.handleUserCreate).Methods(http.MethodPost)
	router.HandleFunc("/api/user/token/", s.handleUserToken).Methods(http.MethodPost)

	// The subrouter inherits the parent configuration; only its routes pass
	// through the token middleware.
	authed := router.NewRoute().Subrouter()
	authed.Use(s.tokenAuthMiddleware)

	authed.HandleFunc("/api/user/me/", s.handleUserMe).Methods(http.MethodGet)
	authed.HandleFunc("/api/user/me/", s.handleUserMeUpdate).Methods(http.MethodPatch)

	authed.HandleFunc("/api/recipe/tags/", s.handleTagList).Methods(http.MethodGet)
	authed.HandleFunc("/api/recipe/tags/", s.handleTagCreate).Methods(http.MethodPost)

	authed.HandleFunc("/api/recipe/ingredients/", s.handleIngredientList).Methods(http.MethodGet)
	authed.HandleFunc("/api/recipe/ingredients/", s.handleIngredientCreate).Methods(http.MethodPost)

	authed.HandleFunc("/api/recipe/recipes/", s.handleRecipeList).Methods(http.MethodGet)
	authed.HandleFunc("/api/recipe/recipes/", s.handleRecipeCreate).Methods(http.MethodPost)
	authed.HandleFunc("/api/recipe/recipes/{id}/", s.handleRecipeGet).Methods(http.MethodGet)
	authed.HandleFunc("/api/recipe/recipes/{id}/", s.handleRecipeUpdate).Methods(http.MethodPatch)
	authed.HandleFunc("/api/recipe/recipes/{id}/", s.handleRecipeReplace).Methods(http.MethodPut)
	authed.HandleFunc("/api/recipe/recipes/{id}/", s.handleRecipeDelete).Methods(http.MethodDelete)
	authed.HandleFunc("/api/recipe/recipes/{id}/upload-image/", s.handleRecipeUploadImage).Methods(http.MethodPost)

	return router
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *HTTPServer) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.address,
		Handler: s.Router(),
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "shutdown error", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *HTTPServer) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if err := s.db.PingContext(r.Context()); err != nil {
		s.logger.Error(r.Context(), "health check failed", "error", err)
		RespondWithError(w, http.StatusServiceUnavailable, "database unreachable")
		return
	}
	RespondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func handleNotFound(w http.ResponseWriter, r *http.Request) {
	RespondWithError(w, http.StatusNotFound, "resource not found")
}
