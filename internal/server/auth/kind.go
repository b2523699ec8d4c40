package auth

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/gophnotes/internal/common"
)

// Kind is the closed set of account failure categories the API reports.
type Kind int

const (
	KindNone Kind = iota
	KindInvalidCredentials
	KindEmailTaken
	KindValidation
	KindTokenExpired
	KindInvalidToken
	KindSessionExpired
	KindUnauthenticated
	KindNotFound
	KindInternal
)

var kindNames = map[Kind]string{
	KindNone:               "none",
	KindInvalidCredentials: "invalid_credentials",
	KindEmailTaken:         "email_taken",
	KindValidation:         "validation",
	KindTokenExpired:       "token_expired",
	KindInvalidToken:       "invalid_token",
	KindSessionExpired:     "session_expired",
	KindUnauthenticated:    "unauthenticated",
	KindNotFound:           "not_found",
	KindInternal:           "internal",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "internal"
}

// Status is the HTTP status code reported for the kind.
func (k Kind) Status() int {
	switch k {
	case KindNone:
		return http.StatusOK
	case KindInvalidCredentials, KindTokenExpired, KindInvalidToken, KindSessionExpired, KindUnauthenticated:
		return http.StatusUnauthorized
	case KindEmailTaken:
		return http.StatusConflict
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Message is the user-facing text for the kind.
func (k Kind) Message() string {
	switch k {
	case KindNone:
		return ""
	case KindInvalidCredentials:
		return "invalid email or password"
	case KindEmailTaken:
		return "email is already registered"
	case KindValidation:
		return "invalid request"
	case KindTokenExpired:
		return "access token expired"
	case KindInvalidToken:
		return "invalid token"
	case KindSessionExpired:
		return "session expired, please log in again"
	case KindUnauthenticated:
		return "please log in"
	case KindNotFound:
		return "account not found"
	default:
		return "internal error"
	}
}

// Classify maps an error from the account services to its Kind.
// Unknown errors are KindInternal, nil is KindNone.
func Classify(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, common.ErrorUnauthorized):
		return KindInvalidCredentials
	case errors.Is(err, common.ErrAlreadyExists):
		return KindEmailTaken
	case errors.Is(err, common.ErrValidation):
		return KindValidation
	case errors.Is(err, common.ErrTokenExpired):
		return KindTokenExpired
	case errors.Is(err, common.ErrInvalidToken):
		return KindInvalidToken
	case errors.Is(err, common.ErrRefreshTokenExpired):
		return KindSessionExpired
	case errors.Is(err, common.ErrAuthenticationRequired):
		return KindUnauthenticated
	case errors.Is(err, common.ErrorNotFound):
		return KindNotFound
	default:
		return KindInternal
	}
}
