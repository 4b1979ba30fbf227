package sql

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"

	"github.com/DivyanshChaudhary0/Virtual-Study-Group-Platform/internal/domain"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// isUniqueViolation checks if an error is a UNIQUE constraint violation.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	// SQLite
	if strings.Contains(errStr, "UNIQUE constraint failed") {
		return true
	}
	// PostgreSQL
	if strings.Contains(errStr, "duplicate key value violates unique constraint") {
		return true
	}
	return false
}

// wrapUniqueError converts UNIQUE violations to domain.ErrAlreadyExists.
func wrapUniqueError(err error) error {
	if isUniqueViolation(err) {
		return domain.ErrAlreadyExists
	}
	return err
}

// Store implements the storage.Storage interface using SQL.
type Store struct {
	db     *sqlx.DB
	driver string
}

// New creates a new SQL store and runs pending migrations.
func New(driver, dsn string) (*Store, error) {
	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	goose.SetBaseFS(embedMigrations)
	if err := goose.SetDialect(driver); err != nil {
		return nil, fmt.Errorf("setting goose dialect: %w", err)
	}

	if err := goose.Up(db.DB, "migrations"); err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return &Store{db: db, driver: driver}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ============================================
// Users
// ============================================

func (s *Store) CreateUser(ctx context.Context, user *domain.User) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, name, email, password_hash, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		user.ID, user.Name, user.Email, user.PasswordHash, user.CreatedAt)
	return wrapUniqueError(err)
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	var user domain.User
	err := s.db.GetContext(ctx, &user,
		`SELECT id, name, email, password_hash, created_at FROM users WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	err := s.db.GetContext(ctx, &user,
		`SELECT id, name, email, password_hash, created_at FROM users WHERE email = $1`, email)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// ============================================
// Groups
// ============================================

func (s *Store) CreateGroup(ctx context.Context, group *domain.Group) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO study_groups (id, name, subject, description, author_id, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		group.ID, group.Name, group.Subject, group.Description, group.AuthorID, group.CreatedAt)
	return wrapUniqueError(err)
}

func (s *Store) GetGroup(ctx context.Context, id string) (*domain.Group, error) {
	var group domain.Group
	err := s.db.GetContext(ctx, &group,
		`SELECT id, name, subject, description, author_id, created_at
		 FROM study_groups WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	members, err := s.memberNames(ctx, id)
	if err != nil {
		return nil, err
	}
	group.Members = members
	return &group, nil
}

// memberNames resolves the group's member IDs to display names in join
// order. Membership itself is keyed by user ID; names are presentation
// only.
func (s *Store) memberNames(ctx context.Context, groupID string) ([]string, error) {
	names := []string{}
	err := s.db.SelectContext(ctx, &names,
		`SELECT u.name FROM group_members gm
		 JOIN users u ON u.id = gm.user_id
		 WHERE gm.group_id = $1
		 ORDER BY gm.joined_at, u.name`, groupID)
	if err != nil {
		return nil, err
	}
	return names, nil
}

func (s *Store) ListGroups(ctx context.Context) ([]*domain.Group, error) {
	var groups []*domain.Group
	err := s.db.SelectContext(ctx, &groups,
		`SELECT id, name, subject, description, author_id, created_at
		 FROM study_groups ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	for _, group := range groups {
		members, err := s.memberNames(ctx, group.ID)
		if err != nil {
			return nil, err
		}
		group.Members = members
	}
	return groups, nil
}

// AddGroupMember inserts the membership row in a single conditional
// statement: the INSERT only selects a row when the group exists, and
// the (group_id, user_id) primary key rejects duplicates. The database
// serializes concurrent joins; there is no read-check-then-write window.
func (s *Store) AddGroupMember(ctx context.Context, groupID, userID string) error {
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO group_members (group_id, user_id, joined_at)
		 SELECT $1, $2, $3
		 WHERE EXISTS (SELECT 1 FROM study_groups WHERE id = $1)`,
		groupID, userID, time.Now())
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyMember
		}
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Store) IsGroupMember(ctx context.Context, groupID, userID string) (bool, error) {
	var exists int
	err := s.db.GetContext(ctx, &exists,
		`SELECT COUNT(*) FROM study_groups WHERE id = $1`, groupID)
	if err != nil {
		return false, err
	}
	if exists == 0 {
		return false, domain.ErrNotFound
	}

	var count int
	err = s.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM group_members WHERE group_id = $1 AND user_id = $2`,
		groupID, userID)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// DeleteGroup removes the group, its membership rows, and every post
// that references it in one transaction, so no orphaned posts survive.
func (s *Store) DeleteGroup(ctx context.Context, id string) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM posts WHERE group_id = $1`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM group_members WHERE group_id = $1`, id); err != nil {
		return err
	}
	result, err := tx.ExecContext(ctx, `DELETE FROM study_groups WHERE id = $1`, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}

	return tx.Commit()
}

// ============================================
// Posts
// ============================================

func (s *Store) CreatePost(ctx context.Context, post *domain.Post) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO posts (id, text, author_name, group_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		post.ID, post.Text, post.AuthorName, post.GroupID, post.CreatedAt, post.UpdatedAt)
	return wrapUniqueError(err)
}

func (s *Store) GetPost(ctx context.Context, id string) (*domain.Post, error) {
	var post domain.Post
	err := s.db.GetContext(ctx, &post,
		`SELECT id, text, author_name, group_id, created_at, updated_at
		 FROM posts WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (s *Store) ListPostsByGroup(ctx context.Context, groupID string) ([]*domain.Post, error) {
	posts := []*domain.Post{}
	err := s.db.SelectContext(ctx, &posts,
		`SELECT id, text, author_name, group_id, created_at, updated_at
		 FROM posts WHERE group_id = $1 ORDER BY created_at DESC`, groupID)
	if err != nil {
		return nil, err
	}
	return posts, nil
}

func (s *Store) UpdatePostText(ctx context.Context, id, text string) (*domain.Post, error) {
	result, err := s.db.ExecContext(ctx,
		`UPDATE posts SET text = $1, updated_at = $2 WHERE id = $3`,
		text, time.Now(), id)
	if err != nil {
		return nil, err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return nil, domain.ErrNotFound
	}
	return s.GetPost(ctx, id)
}

func (s *Store) DeletePost(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
