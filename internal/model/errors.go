package model

import "errors"

var (
	// ErrInvalidToken is returned when a token is malformed, unsigned,
	// expired, or its signature does not verify. A missing token is not
	// a token error; it is the anonymous state.
	ErrInvalidToken = errors.New("invalid token")

	// ErrInvalidCredentials covers both unknown username and wrong
	// password so the two are indistinguishable to the caller.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrUnauthenticated is returned when a guarded operation is
	// attempted without an authenticated identity.
	ErrUnauthenticated = errors.New("authentication required")

	// ErrForbidden is returned when the caller is authenticated but
	// does not own the addressed resource.
	ErrForbidden = errors.New("access denied")

	// ErrNotFound is returned when the addressed resource is absent.
	ErrNotFound = errors.New("not found")

	// ErrDuplicate is returned on a uniqueness conflict, e.g. an
	// already-taken username.
	ErrDuplicate = errors.New("already exists")

	// ErrInvalidReference is returned when a caller-supplied foreign
	// key does not resolve to an existing row.
	ErrInvalidReference = errors.New("referenced resource does not exist")

	// ErrMalformedInput is returned when the store rejects a value as
	// syntactically invalid for its column type.
	ErrMalformedInput = errors.New("malformed input value")
)

// ValidationError reports missing or malformed caller input.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func Invalid(msg string) error { return &ValidationError{Msg: msg} }

// IsValidation reports whether err is a caller-input validation failure.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
