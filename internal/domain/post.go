package domain

import "time"

// Post is a short text message inside a group. AuthorName is the display
// name of the creating user; only that user may edit or delete the post.
// A post's GroupID must reference a live group at creation time, and
// posts are deleted together with their group.
type Post struct {
	ID         string    `json:"id" db:"id"`
	Text       string    `json:"text" db:"text"`
	AuthorName string    `json:"author_name" db:"author_name"`
	GroupID    string    `json:"group_id" db:"group_id"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

// CreatePostRequest is the request body for creating a post.
type CreatePostRequest struct {
	Text string `json:"text"`
}

// UpdatePostRequest is the request body for editing a post's text.
type UpdatePostRequest struct {
	Text string `json:"text"`
}
