package apierr

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/yungbote/sunft-backend/internal/domain/sunft"
)

type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

// StatusForKind maps a domain error kind to its HTTP status.
func StatusForKind(kind sunft.Kind) int {
	switch kind {
	case sunft.KindAuthorization:
		return http.StatusForbidden
	case sunft.KindInvalidAmount, sunft.KindInvalidArgument:
		return http.StatusBadRequest
	case sunft.KindAlreadyDestroyed:
		return http.StatusConflict
	case sunft.KindExternalTransfer:
		return http.StatusUnprocessableEntity
	case sunft.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// From classifies err. An *Error already in the chain wins; domain errors are
// mapped by kind; anything else is an internal error.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	kind := sunft.KindOf(err)
	if kind == "" {
		return New(http.StatusInternalServerError, "internal", err)
	}
	return New(StatusForKind(kind), sunft.CodeOf(err), err)
}
