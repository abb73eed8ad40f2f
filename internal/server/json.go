package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/balkashynov/studybot/internal/apperrors"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func readJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

// Error codes let clients tell outcomes apart that share an HTTP status
const (
	CodeInvalidInput  = "invalid_input"
	CodeNotFound      = "not_found"
	CodeConflict      = "conflict"
	CodeAlreadyJoined = "already_joined"
	CodeForbidden     = "forbidden"
)

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

// writeDomainError maps the outcome taxonomy onto HTTP statuses and codes
func writeDomainError(w http.ResponseWriter, err error) {
	var status int
	var code string
	switch {
	case errors.Is(err, apperrors.ErrInvalidInput):
		status, code = http.StatusBadRequest, CodeInvalidInput
	case errors.Is(err, apperrors.ErrNotFound):
		status, code = http.StatusNotFound, CodeNotFound
	case errors.Is(err, apperrors.ErrAlreadyJoined):
		status, code = http.StatusConflict, CodeAlreadyJoined
	case errors.Is(err, apperrors.ErrConflict):
		status, code = http.StatusConflict, CodeConflict
	case errors.Is(err, apperrors.ErrForbidden):
		status, code = http.StatusForbidden, CodeForbidden
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, status, ErrorResponse{Error: err.Error(), Code: code})
}

func groupID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "groupID"), 10, 64)
}
