package http

import (
	"net/http"

	"github.com/dmitrijs2005/recipevault/internal/server/models"
	"github.com/dmitrijs2005/recipevault/internal/server/services"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
)

type nameRequest struct {
	Name string `json:"name"`
}

type tagResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type ingredientResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type recipeRequest struct {
	Title       string          `json:"title"`
	TimeMinutes int             `json:"time_minutes"`
	Price       decimal.Decimal `json:"price"`
	Link        string          `json:"link"`
	Ingredients []string        `json:"ingredients"`
	Tags        []string        `json:"tags"`
}

type recipePatchRequest struct {
	Title       *string          `json:"title"`
	TimeMinutes *int             `json:"time_minutes"`
	Price       *decimal.Decimal `json:"price"`
	Link        *string          `json:"link"`
	Ingredients *[]string        `json:"ingredients"`
	Tags        *[]string        `json:"tags"`
}

// recipeSummary is the list projection: scalars plus id-only reference sets.
// Price is rendered as a fixed two-decimal string.
type recipeSummary struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	TimeMinutes int      `json:"time_minutes"`
	Price       string   `json:"price"`
	Link        string   `json:"link"`
	Ingredients []string `json:"ingredients"`
	Tags        []string `json:"tags"`
}

// recipeDetailResponse expands the reference sets into sub-records and adds
// the image download URL, null when no image is attached.
type recipeDetailResponse struct {
	ID          string               `json:"id"`
	Title       string               `json:"title"`
	TimeMinutes int                  `json:"time_minutes"`
	Price       string               `json:"price"`
	Link        string               `json:"link"`
	Ingredients []ingredientResponse `json:"ingredients"`
	Tags        []tagResponse        `json:"tags"`
	Image       *string              `json:"image"`
}

func newRecipeSummary(r *models.Recipe) recipeSummary {
	return recipeSummary{
		ID:          r.ID,
		Title:       r.Title,
		TimeMinutes: r.TimeMinutes,
		Price:       r.Price.StringFixed(2),
		Link:        r.Link,
		Ingredients: r.IngredientIDs,
		Tags:        r.TagIDs,
	}
}

func (s *HTTPServer) handleTagList(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		RespondWithError(w, http.StatusUnauthorized, "invalid or missing authentication token")
		return
	}

	tags, err := s.tags.List(r.Context(), user.ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	result := make([]tagResponse, 0, len(tags))
	for _, t := range tags {
		result = append(result, tagResponse{ID: t.ID, Name: t.Name})
	}
	RespondWithJSON(w, http.StatusOK, result)
}

func (s *HTTPServer) handleTagCreate(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		RespondWithError(w, http.StatusUnauthorized, "invalid or missing authentication token")
		return
	}

	var req nameRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	tag, err := s.tags.Create(r.Context(), user.ID, req.Name)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	RespondWithJSON(w, http.StatusCreated, tagResponse{ID: tag.ID, Name: tag.Name})
}

func (s *HTTPServer) handleIngredientList(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		RespondWithError(w, http.StatusUnauthorized, "invalid or missing authentication token")
		return
	}

	ingredients, err := s.ingredients.List(r.Context(), user.ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	result := make([]ingredientResponse, 0, len(ingredients))
	for _, i := range ingredients {
		result = append(result, ingredientResponse{ID: i.ID, Name: i.Name})
	}
	RespondWithJSON(w, http.StatusOK, result)
}

func (s *HTTPServer) handleIngredientCreate(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		RespondWithError(w, http.StatusUnauthorized, "invalid or missing authentication token")
		return
	}

	var req nameRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	ingredient, err := s.ingredients.Create(r.Context(), user.ID, req.Name)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	RespondWithJSON(w, http.StatusCreated, ingredientResponse{ID: ingredient.ID, Name: ingredient.Name})
}

func (s *HTTPServer) handleRecipeList(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		RespondWithError(w, http.StatusUnauthorized, "invalid or missing authentication token")
		return
	}

	recipes, err := s.recipes.List(r.Context(), user.ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	result := make([]recipeSummary, 0, len(recipes))
	for _, recipe := range recipes {
		result = append(result, newRecipeSummary(recipe))
	}
	RespondWithJSON(w, http.StatusOK, result)
}

func (s *HTTPServer) handleRecipeCreate(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		RespondWithError(w, http.StatusUnauthorized, "invalid or missing authentication token")
		return
	}

	var req recipeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	recipe, err := s.recipes.Create(r.Context(), user.ID, services.RecipeInput{
		Title:         req.Title,
		TimeMinutes:   req.TimeMinutes,
		Price:         req.Price,
		Link:          req.Link,
		IngredientIDs: req.Ingredients,
		TagIDs:        req.Tags,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}

	RespondWithJSON(w, http.StatusCreated, newRecipeSummary(recipe))
}

func (s *HTTPServer) handleRecipeGet(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		RespondWithError(w, http.StatusUnauthorized, "invalid or missing authentication token")
		return
	}

	detail, err := s.recipes.Get(r.Context(), user.ID, mux.Vars(r)["id"])
	if err != nil {
		respondServiceError(w, err)
		return
	}

	resp := recipeDetailResponse{
		ID:          detail.ID,
		Title:       detail.Title,
		TimeMinutes: detail.TimeMinutes,
		Price:       detail.Price.StringFixed(2),
		Link:        detail.Link,
		Ingredients: make([]ingredientResponse, 0, len(detail.Ingredients)),
		Tags:        make([]tagResponse, 0, len(detail.Tags)),
	}
	for _, i := range detail.Ingredients {
		resp.Ingredients = append(resp.Ingredients, ingredientResponse{ID: i.ID, Name: i.Name})
	}
	for _, t := range detail.Tags {
		resp.Tags = append(resp.Tags, tagResponse{ID: t.ID, Name: t.Name})
	}

	if detail.ImageKey != "" {
		url, err := s.images.DownloadURL(r.Context(), detail.ImageKey)
		if err != nil {
			respondServiceError(w, err)
			return
		}
		resp.Image = &url
	}

	RespondWithJSON(w, http.StatusOK, resp)
}

func (s *HTTPServer) handleRecipeUpdate(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		RespondWithError(w, http.StatusUnauthorized, "invalid or missing authentication token")
		return
	}

	var req recipePatchRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	recipe, err := s.recipes.Update(r.Context(), user.ID, mux.Vars(r)["id"], services.RecipePatch{
		Title:         req.Title,
		TimeMinutes:   req.TimeMinutes,
		Price:         req.Price,
		Link:          req.Link,
		IngredientIDs: req.Ingredients,
		TagIDs:        req.Tags,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}

	RespondWithJSON(w, http.StatusOK, newRecipeSummary(recipe))
}

// handleRecipeReplace implements PUT: every field takes the request value,
// absent optional fields reset to their zero values.
func (s *HTTPServer) handleRecipeReplace(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		RespondWithError(w, http.StatusUnauthorized, "invalid or missing authentication token")
		return
	}

	var req recipeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	ingredients := req.Ingredients
	if ingredients == nil {
		ingredients = []string{}
	}
	tags := req.Tags
	if tags == nil {
		tags = []string{}
	}

	recipe, err := s.recipes.Update(r.Context(), user.ID, mux.Vars(r)["id"], services.RecipePatch{
		Title:         &req.Title,
		TimeMinutes:   &req.TimeMinutes,
		Price:         &req.Price,
		Link:          &req.Link,
		IngredientIDs: &ingredients,
		TagIDs:        &tags,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}

	RespondWithJSON(w, http.StatusOK, newRecipeSummary(recipe))
}

func (s *HTTPServer) handleRecipeDelete(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		RespondWithError(w, http.StatusUnauthorized, "invalid or missing authentication token")
		return
	}

	if err := s.recipes.Delete(r.Context(), user.ID, mux.Vars(r)["id"]); err != nil {
		respondServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type uploadImageRequest struct {
	FileName string `json:"file_name"`
}

type uploadImageResponse struct {
	ImageKey  string `json:"image_key"`
	UploadURL string `json:"upload_url"`
}

func (s *HTTPServer) handleRecipeUploadImage(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		RespondWithError(w, http.StatusUnauthorized, "invalid or missing authentication token")
		return
	}

	var req uploadImageRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	key, url, err := s.images.AttachImage(r.Context(), user.ID, mux.Vars(r)["id"], req.FileName)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	RespondWithJSON(w, http.StatusOK, uploadImageResponse{ImageKey: key, UploadURL: url})
}
