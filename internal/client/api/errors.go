package api

import (
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/gophnotes/internal/common"
)

// Error is a non-2xx answer of the API.
type Error struct {
	Status  int    `json:"-"`
	Message string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned %d", e.Status)
	}
	return e.Message
}

// Is lets callers match API errors against the common sentinels.
func (e *Error) Is(target error) bool {
	switch target {
	case common.ErrNotFoundInTrash:
		return e.Status == http.StatusNotFound && e.Message == "note not found in trash"
	case common.ErrorNotFound:
		return e.Status == http.StatusNotFound
	case common.ErrAuthenticationRequired:
		return e.Status == http.StatusUnauthorized && e.Code != "invalid_credentials"
	case common.ErrorUnauthorized:
		return e.Status == http.StatusUnauthorized && e.Code == "invalid_credentials"
	case common.ErrTokenExpired:
		return e.Code == "token_expired"
	case common.ErrAlreadyExists:
		return e.Status == http.StatusConflict
	case common.ErrValidation:
		return e.Status == http.StatusBadRequest
	case common.ErrAIUnavailable:
		return e.Status == http.StatusServiceUnavailable
	}
	return false
}
