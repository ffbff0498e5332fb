package httpx

import (
	"errors"
	"net/http"

	"github.com/courseloop/courseloop/internal/shared"
)

// RespondError maps domain errors to HTTP responses. Guard-chain
// denials are handled by the rbac middleware; this covers everything
// that reaches a handler body.
func RespondError(w http.ResponseWriter, err error) {
	if fields, ok := shared.AsFieldErrors(err); ok {
		FieldProblem(w, fields)
		return
	}
	switch {
	case errors.Is(err, shared.ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, shared.ErrDuplicateEmail):
		FieldProblem(w, map[string]string{"email": "That email is already registered"})
	case errors.Is(err, shared.ErrInvalidCredentials):
		Problem(w, http.StatusUnauthorized, "Unauthorized", err.Error())
	case errors.Is(err, shared.ErrUnauthenticated), errors.Is(err, shared.ErrAuthInvalid):
		Problem(w, http.StatusUnauthorized, "Unauthorized", err.Error())
	case errors.Is(err, shared.ErrTooManyAttempts):
		Problem(w, http.StatusTooManyRequests, "Too Many Requests", "too many failed login attempts, try again later")
	case errors.Is(err, shared.ErrLookupFailed):
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
