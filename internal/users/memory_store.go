package users

import (
	"context"
	"sort"
	"strings"
	"sync"

	"gateway-service/internal/auth"
)

// MemoryStore keeps users in process memory. It is used when no database is
// configured and in tests.
type MemoryStore struct {
	mu     sync.RWMutex
	nextID int64
	byID   map[int64]User
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byID: make(map[int64]User)}
}

func (s *MemoryStore) Create(_ context.Context, u *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.emailTaken(u.Email, 0) {
		return ErrDuplicateUser
	}
	s.nextID++
	u.ID = s.nextID
	s.byID[u.ID] = *u
	return nil
}

func (s *MemoryStore) Update(_ context.Context, u *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[u.ID]; !ok {
		return ErrUserNotFound
	}
	if s.emailTaken(u.Email, u.ID) {
		return ErrDuplicateUser
	}
	s.byID[u.ID] = *u
	return nil
}

func (s *MemoryStore) FindByID(_ context.Context, id int64) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.byID[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return &u, nil
}

func (s *MemoryStore) FindByEmail(_ context.Context, email string) (*User, error) {
	return s.find(func(u User) bool { return strings.EqualFold(u.Email, email) })
}

func (s *MemoryStore) FindByProvider(_ context.Context, provider auth.Provider, providerID string) (*User, error) {
	return s.find(func(u User) bool { return u.Provider == provider && u.ProviderID == providerID })
}

func (s *MemoryStore) List(_ context.Context) ([]User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]User, 0, len(s.byID))
	for _, u := range s.byID {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[id]; !ok {
		return ErrUserNotFound
	}
	delete(s.byID, id)
	return nil
}

func (s *MemoryStore) find(match func(User) bool) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.byID {
		if match(u) {
			return &u, nil
		}
	}
	return nil, ErrUserNotFound
}

// emailTaken must be called with mu held.
func (s *MemoryStore) emailTaken(email string, except int64) bool {
	for id, u := range s.byID {
		if id != except && strings.EqualFold(u.Email, email) {
			return true
		}
	}
	return false
}
