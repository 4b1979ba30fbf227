package domain

import "time"

// User is a registered identity capable of authenticating.
// PasswordHash is stored but never serialized to clients.
type User struct {
	ID           string    `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"` // display name, globally unique
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// RegisterRequest is the request body for creating a user.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest is the request body for opening a session.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SessionResponse is returned by register and login. The token is a
// signed bearer token accepted on authenticated endpoints until expiry.
type SessionResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}
