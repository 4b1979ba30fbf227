package storage

import (
	"context"

	"github.com/DivyanshChaudhary0/Virtual-Study-Group-Platform/internal/domain"
)

// Storage defines the interface for the storage layer.
// Implementations must be safe for concurrent use.
type Storage interface {
	// Close closes the storage connection.
	Close() error

	// Users
	CreateUser(ctx context.Context, user *domain.User) error
	GetUserByID(ctx context.Context, id string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)

	// Groups
	CreateGroup(ctx context.Context, group *domain.Group) error
	GetGroup(ctx context.Context, id string) (*domain.Group, error)
	ListGroups(ctx context.Context) ([]*domain.Group, error)

	// AddGroupMember atomically inserts the user into the group's member
	// set. It is a single conditional update, not a read-check-then-write
	// sequence: concurrent joins by distinct users must all succeed, and
	// a repeat join must fail with domain.ErrAlreadyMember without
	// changing the set. Returns domain.ErrNotFound if the group does not
	// exist.
	AddGroupMember(ctx context.Context, groupID, userID string) error

	// IsGroupMember reports whether the user is in the group's member
	// set. Returns domain.ErrNotFound if the group does not exist.
	IsGroupMember(ctx context.Context, groupID, userID string) (bool, error)

	// DeleteGroup deletes the group together with its membership records
	// and all posts that reference it, as one atomic operation.
	DeleteGroup(ctx context.Context, id string) error

	// Posts
	CreatePost(ctx context.Context, post *domain.Post) error
	GetPost(ctx context.Context, id string) (*domain.Post, error)
	ListPostsByGroup(ctx context.Context, groupID string) ([]*domain.Post, error)
	UpdatePostText(ctx context.Context, id, text string) (*domain.Post, error)
	DeletePost(ctx context.Context, id string) error
}
