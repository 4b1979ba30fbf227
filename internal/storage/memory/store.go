package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/DivyanshChaudhary0/Virtual-Study-Group-Platform/internal/domain"
)

// Store is an in-memory implementation of the storage interface for
// testing. The mutex gives every operation the same atomicity the SQL
// store gets from conditional statements and transactions.
type Store struct {
	mu sync.RWMutex

	users   map[string]*domain.User  // key: id
	groups  map[string]*domain.Group // key: id
	members map[string][]string      // key: group id, value: user ids in join order
	posts   map[string]*domain.Post  // key: id
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		users:   make(map[string]*domain.User),
		groups:  make(map[string]*domain.Group),
		members: make(map[string][]string),
		posts:   make(map[string]*domain.Post),
	}
}

func (s *Store) Close() error { return nil }

// ============================================
// Users
// ============================================

func (s *Store) CreateUser(ctx context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Name == user.Name || existing.Email == user.Email {
			return domain.ErrAlreadyExists
		}
	}

	u := *user
	s.users[user.ID] = &u
	return nil
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	u := *user
	return &u, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, user := range s.users {
		if user.Email == email {
			u := *user
			return &u, nil
		}
	}
	return nil, domain.ErrNotFound
}

// ============================================
// Groups
// ============================================

func (s *Store) CreateGroup(ctx context.Context, group *domain.Group) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.groups[group.ID]; ok {
		return domain.ErrAlreadyExists
	}
	g := *group
	s.groups[group.ID] = &g
	s.members[group.ID] = []string{}
	return nil
}

func (s *Store) GetGroup(ctx context.Context, id string) (*domain.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	group, ok := s.groups[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	g := *group
	g.Members = s.memberNamesLocked(id)
	return &g, nil
}

// memberNamesLocked resolves member user IDs to display names in join
// order. Caller must hold at least the read lock.
func (s *Store) memberNamesLocked(groupID string) []string {
	names := []string{}
	for _, userID := range s.members[groupID] {
		if user, ok := s.users[userID]; ok {
			names = append(names, user.Name)
		}
	}
	return names
}

func (s *Store) ListGroups(ctx context.Context) ([]*domain.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	groups := make([]*domain.Group, 0, len(s.groups))
	for id, group := range s.groups {
		g := *group
		g.Members = s.memberNamesLocked(id)
		groups = append(groups, &g)
	}
	sort.Slice(groups, func(i, j int) bool {
		return groups[i].CreatedAt.After(groups[j].CreatedAt)
	})
	return groups, nil
}

// AddGroupMember tests and inserts under one lock acquisition, matching
// the SQL store's single conditional statement.
func (s *Store) AddGroupMember(ctx context.Context, groupID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.groups[groupID]; !ok {
		return domain.ErrNotFound
	}
	for _, id := range s.members[groupID] {
		if id == userID {
			return domain.ErrAlreadyMember
		}
	}
	s.members[groupID] = append(s.members[groupID], userID)
	return nil
}

func (s *Store) IsGroupMember(ctx context.Context, groupID, userID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.groups[groupID]; !ok {
		return false, domain.ErrNotFound
	}
	for _, id := range s.members[groupID] {
		if id == userID {
			return true, nil
		}
	}
	return false, nil
}

// DeleteGroup removes the group, its membership, and its posts in one
// critical section.
func (s *Store) DeleteGroup(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.groups[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.groups, id)
	delete(s.members, id)
	for postID, post := range s.posts {
		if post.GroupID == id {
			delete(s.posts, postID)
		}
	}
	return nil
}

// ============================================
// Posts
// ============================================

func (s *Store) CreatePost(ctx context.Context, post *domain.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.groups[post.GroupID]; !ok {
		return domain.ErrNotFound
	}
	if _, ok := s.posts[post.ID]; ok {
		return domain.ErrAlreadyExists
	}
	p := *post
	s.posts[post.ID] = &p
	return nil
}

func (s *Store) GetPost(ctx context.Context, id string) (*domain.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	post, ok := s.posts[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	p := *post
	return &p, nil
}

func (s *Store) ListPostsByGroup(ctx context.Context, groupID string) ([]*domain.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	posts := []*domain.Post{}
	for _, post := range s.posts {
		if post.GroupID == groupID {
			p := *post
			posts = append(posts, &p)
		}
	}
	sort.Slice(posts, func(i, j int) bool {
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
	return posts, nil
}

func (s *Store) UpdatePostText(ctx context.Context, id, text string) (*domain.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	post, ok := s.posts[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	post.Text = text
	post.UpdatedAt = time.Now()
	p := *post
	return &p, nil
}

func (s *Store) DeletePost(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.posts[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.posts, id)
	return nil
}
