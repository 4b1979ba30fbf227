package domain

import "errors"

// Common errors used throughout the application.
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrInvalidInput  = errors.New("invalid input")

	// Authentication failures (401). ErrInvalidCredentials covers both
	// unknown email and wrong password so responses cannot be used to
	// probe for account existence. ErrUnauthenticated covers tokens whose
	// subject no longer resolves to a user, for the same reason.
	ErrMissingToken          = errors.New("missing bearer token")
	ErrTokenMalformed        = errors.New("token malformed")
	ErrTokenSignatureInvalid = errors.New("token signature invalid")
	ErrTokenExpired          = errors.New("token expired")
	ErrInvalidCredentials    = errors.New("invalid email or password")
	ErrUnauthenticated       = errors.New("not authenticated")

	// Authorization failures (403).
	ErrNotOwner  = errors.New("not the group owner")
	ErrNotMember = errors.New("not a group member")
	ErrNotAuthor = errors.New("not the post author")

	// ErrAlreadyMember is returned by the atomic join when the user is
	// already in the group's member set.
	ErrAlreadyMember = errors.New("already a member")
)

// APIError represents an error response from the API.
type APIError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return e.Message
}
