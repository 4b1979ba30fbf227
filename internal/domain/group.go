package domain

import "time"

// Group is a named study group owned by the user who created it.
// Membership is keyed by user ID in storage; Members carries the
// display names resolved at read time, in join order.
type Group struct {
	ID          string    `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Subject     string    `json:"subject" db:"subject"`
	Description string    `json:"description" db:"description"`
	AuthorID    string    `json:"author_id" db:"author_id"` // immutable once set
	Members     []string  `json:"members" db:"-"`           // stored in separate table
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// CreateGroupRequest is the request body for creating a group.
type CreateGroupRequest struct {
	Name        string `json:"name"`
	Subject     string `json:"subject"`
	Description string `json:"description,omitempty"`
}
