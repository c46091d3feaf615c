package memory

import (
	"context"
	"sync"
	"time"

	"github.com/dtroode/shareride-auth/internal/model"
)

var _ model.UserStore = (*UserStore)(nil)

// UserStore is an in-memory credential store enforcing unique emails.
type UserStore struct {
	lock    sync.RWMutex
	byEmail map[string]model.User
}

func NewUserStore() *UserStore {
	return &UserStore{
		byEmail: make(map[string]model.User),
	}
}

func (s *UserStore) GetByEmail(_ context.Context, email string) (model.User, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	user, ok := s.byEmail[email]
	if !ok {
		return model.User{}, model.ErrNotFound
	}
	return user, nil
}

func (s *UserStore) Create(_ context.Context, user model.User) (model.User, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if _, ok := s.byEmail[user.Email]; ok {
		return model.User{}, model.ErrEmailTaken
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	s.byEmail[user.Email] = user
	return user, nil
}

// Len returns the number of registered users.
func (s *UserStore) Len() int {
	s.lock.RLock()
	defer s.lock.RUnlock()

	return len(s.byEmail)
}
