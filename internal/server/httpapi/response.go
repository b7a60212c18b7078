// Package httpapi is the HTTP transport: routing, auth middleware, cookie
// handling and the JSON response envelope. It maps service outcomes to
// status codes once, here; handlers never invent their own error bodies.
package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/akarpovs/viewtube/internal/common"
)

// Response is the JSON envelope every endpoint returns.
type Response struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
	Data   any    `json:"data,omitempty"`
}

const (
	statusOK    = "OK"
	statusError = "Error"
)

func okWithData(data any) Response {
	return Response{Status: statusOK, Data: data}
}

func errorResponse(msg string) Response {
	return Response{Status: statusError, Error: msg}
}

func validationError(errs validator.ValidationErrors) Response {
	var msgs []string
	for _, err := range errs {
		switch err.ActualTag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("field %s is required", err.Field()))
		default:
			msgs = append(msgs, fmt.Sprintf("field %s is invalid", err.Field()))
		}
	}
	return errorResponse(strings.Join(msgs, ", "))
}

// writeError maps a service error to (status, message). Anything outside the
// known taxonomy is normalized to a generic 500 so internals never leak.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	msg := "internal server error"

	switch {
	case errors.Is(err, common.ErrValidation):
		status, msg = http.StatusBadRequest, err.Error()
	case errors.Is(err, common.ErrDuplicateAccount):
		status, msg = http.StatusConflict, "account with this handle or email already exists"
	case errors.Is(err, common.ErrNotFound):
		status, msg = http.StatusNotFound, "not found"
	case errors.Is(err, common.ErrInvalidCredentials):
		status, msg = http.StatusUnauthorized, "invalid credentials"
	case errors.Is(err, common.ErrInvalidToken):
		status, msg = http.StatusUnauthorized, "invalid token"
	case errors.Is(err, common.ErrTokenMismatch):
		status, msg = http.StatusUnauthorized, "refresh token is expired or already used"
	case errors.Is(err, common.ErrMediaOperation):
		status, msg = http.StatusInternalServerError, "media operation failed"
	case errors.Is(err, common.ErrTokenGeneration):
		status, msg = http.StatusInternalServerError, "could not issue session tokens"
	}

	w.WriteHeader(status)
	render.JSON(w, r, errorResponse(msg))
}
