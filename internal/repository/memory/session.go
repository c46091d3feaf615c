package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dtroode/shareride-auth/internal/model"
)

var _ model.SessionStore = (*SessionStore)(nil)

// SessionStore keeps sessions in process memory. Sessions do not survive a restart.
type SessionStore struct {
	lock     sync.Mutex
	sessions map[string]model.Session
	ttl      time.Duration
	now      func() time.Time
}

func NewSessionStore(ttl time.Duration) *SessionStore {
	return &SessionStore{
		sessions: make(map[string]model.Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

func (s *SessionStore) Create(_ context.Context, data model.SessionData) (model.Session, error) {
	token, err := model.NewSessionToken()
	if err != nil {
		return model.Session{}, fmt.Errorf("failed to generate session token: %w", err)
	}

	now := s.now().UTC()
	session := model.Session{
		SessionData: data,
		Token:       token,
		CreatedAt:   now,
		ExpiresAt:   now.Add(s.ttl),
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	s.purgeExpired(now)
	s.sessions[token] = session

	return session, nil
}

func (s *SessionStore) Get(_ context.Context, token string) (model.Session, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	session, ok := s.sessions[token]
	if !ok {
		return model.Session{}, model.ErrSessionNotFound
	}
	if session.Expired(s.now()) {
		delete(s.sessions, token)
		return model.Session{}, model.ErrSessionNotFound
	}
	return session, nil
}

func (s *SessionStore) Destroy(_ context.Context, token string) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	delete(s.sessions, token)
	return nil
}

// Len returns the number of stored sessions, expired ones included.
func (s *SessionStore) Len() int {
	s.lock.Lock()
	defer s.lock.Unlock()

	return len(s.sessions)
}

// Name implements health.Checker.
func (s *SessionStore) Name() string {
	return "memory"
}

// Check implements health.Checker.
func (s *SessionStore) Check(context.Context) error {
	return nil
}

// purgeExpired must be called with s.lock held.
func (s *SessionStore) purgeExpired(now time.Time) {
	for token, session := range s.sessions {
		if session.Expired(now) {
			delete(s.sessions, token)
		}
	}
}
