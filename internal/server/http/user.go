package http

import (
	"net/http"

	"github.com/dmitrijs2005/recipevault/internal/server/models"
)

type userCreateRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type userUpdateRequest struct {
	Name     *string `json:"name"`
	Password *string `json:"password"`
}

type tokenRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// userResponse is the public projection of a user. The password never appears
// in any response.
type userResponse struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

func newUserResponse(u *models.User) userResponse {
	return userResponse{Email: u.Email, Name: u.Name}
}

func (s *HTTPServer) handleUserCreate(w http.ResponseWriter, r *http.Request) {
	var req userCreateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := s.users.Register(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	RespondWithJSON(w, http.StatusCreated, newUserResponse(user))
}

func (s *HTTPServer) handleUserToken(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	token, err := s.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	RespondWithJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (s *HTTPServer) handleUserMe(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		RespondWithError(w, http.StatusUnauthorized, "invalid or missing authentication token")
		return
	}

	profile, err := s.users.Profile(r.Context(), user.ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	RespondWithJSON(w, http.StatusOK, newUserResponse(profile))
}

func (s *HTTPServer) handleUserMeUpdate(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		RespondWithError(w, http.StatusUnauthorized, "invalid or missing authentication token")
		return
	}

	var req userUpdateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	updated, err := s.users.UpdateProfile(r.Context(), user.ID, req.Name, req.Password)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	RespondWithJSON(w, http.StatusOK, newUserResponse(updated))
}
