package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/recipevault/internal/common"
)

// RespondWithJSON writes payload as the JSON response body with the given
// status code.
func RespondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, _ := json.Marshal(payload)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

// RespondWithError writes a single-message error body.
func RespondWithError(w http.ResponseWriter, code int, message string) {
	RespondWithJSON(w, code, map[string]string{"error": message})
}

// respondServiceError maps a service-layer error onto the wire. Validation
// errors render as a field-keyed object with HTTP 400; the sentinels map to
// their status codes; anything else is a 500 with no detail leaked.
func respondServiceError(w http.ResponseWriter, err error) {
	if ve, ok := common.AsValidationError(err); ok {
		RespondWithJSON(w, http.StatusBadRequest, ve.Fields)
		return
	}

	switch {
	case errors.Is(err, common.ErrorInvalidCredentials):
		// credential failures are deliberately indistinct
		RespondWithJSON(w, http.StatusBadRequest, map[string][]string{
			common.NonFieldKey: {common.ErrorInvalidCredentials.Error()},
		})
	case errors.Is(err, common.ErrorUnauthenticated):
		RespondWithError(w, http.StatusUnauthorized, "invalid or missing authentication token")
	case errors.Is(err, common.ErrorNotFound):
		RespondWithError(w, http.StatusNotFound, "resource not found")
	default:
		RespondWithError(w, http.StatusInternalServerError, "internal server error")
	}
}

// decodeJSON fills dst from the request body. A malformed body is reported to
// the client directly; the caller only proceeds on true.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}
