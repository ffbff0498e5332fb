package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnauthenticated indicates a missing credential on a route that forbids guests.
	ErrUnauthenticated = errors.New("authentication required")
	// ErrAuthInvalid indicates an expired, tampered or stale credential.
	ErrAuthInvalid = errors.New("credential invalid")
	// ErrLookupFailed indicates an infrastructure fault while resolving a principal.
	// Distinct from ErrAuthInvalid: infrastructure faults must never degrade to guest.
	ErrLookupFailed = errors.New("principal lookup failed")
	// ErrDuplicateEmail indicates a unique-email conflict on signup.
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrTooManyAttempts indicates the login throttle locked the email key.
	ErrTooManyAttempts = errors.New("too many failed login attempts")
)

// FieldErrors carries per-field validation messages surfaced as a 400 body.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	for field, msg := range fe {
		return field + ": " + msg
	}
	return "validation failed"
}

// AsFieldErrors unwraps err into FieldErrors when possible.
func AsFieldErrors(err error) (FieldErrors, bool) {
	var fe FieldErrors
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}
