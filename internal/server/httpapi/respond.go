// Package httpapi exposes the REST surface over chi: authentication, the
// user directory, file transfer and the websocket upgrade endpoint. Every
// response is wrapped in a status/message envelope.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/chathub/internal/common"
	"github.com/dmitrijs2005/chathub/internal/server/models"
)

const (
	statusSuccess = "success"
	statusError   = "error"
)

type response struct {
	Status     string      `json:"status"`
	Message    string      `json:"message,omitempty"`
	Data       any         `json:"data,omitempty"`
	Error      string      `json:"error,omitempty"`
	Pagination *pagination `json:"pagination,omitempty"`
}

type pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

// userDTO is the public shape of an account. The password hash and the
// refresh token never leave the service.
type userDTO struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type userDetailDTO struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toUserDTO(u *models.User) userDTO {
	return userDTO{ID: u.ID, Name: u.Name, Email: u.Email}
}

func toUserDetailDTO(u *models.User) userDetailDTO {
	return userDetailDTO{ID: u.ID, Name: u.Name, Email: u.Email, CreatedAt: u.CreatedAt, UpdatedAt: u.UpdatedAt}
}

func writeJSON(w http.ResponseWriter, code int, resp response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(resp)
}

func writeSuccess(w http.ResponseWriter, code int, message string, data any) {
	writeJSON(w, code, response{Status: statusSuccess, Message: message, Data: data})
}

func writePage(w http.ResponseWriter, data any, p *pagination) {
	writeJSON(w, http.StatusOK, response{Status: statusSuccess, Data: data, Pagination: p})
}

// writeError maps the service error taxonomy onto HTTP status codes.
func writeError(w http.ResponseWriter, err error) {
	var code int
	var msg string

	switch {
	case errors.Is(err, common.ErrValidation):
		code, msg = http.StatusBadRequest, "invalid request"
	case errors.Is(err, common.ErrDuplicateEmail):
		code, msg = http.StatusBadRequest, "email already registered"
	case errors.Is(err, common.ErrInvalidCredentials):
		code, msg = http.StatusUnauthorized, "invalid email or password"
	case errors.Is(err, common.ErrMissingToken):
		code, msg = http.StatusUnauthorized, "access denied, no token provided"
	case errors.Is(err, common.ErrInvalidToken):
		code, msg = http.StatusUnauthorized, "invalid or expired token"
	case errors.Is(err, common.ErrTokenMismatch):
		code, msg = http.StatusUnauthorized, "token has been revoked"
	case errors.Is(err, common.ErrNotFound):
		code, msg = http.StatusNotFound, "not found"
	default:
		code, msg = http.StatusInternalServerError, "internal server error"
	}

	writeJSON(w, code, response{Status: statusError, Error: msg})
}

// writeAuthError is writeError for the bearer gate, where a vanished account
// means the credential is no longer acceptable.
func writeAuthError(w http.ResponseWriter, err error) {
	if errors.Is(err, common.ErrNotFound) {
		writeJSON(w, http.StatusUnauthorized, response{Status: statusError, Error: "invalid or expired token"})
		return
	}
	writeError(w, err)
}

func decodeBody(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return common.ErrValidation
	}
	return nil
}
