package redis

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/dtroode/shareride-auth/internal/model"
)

const sessionKeyPrefix = "session:"

// Client is the part of *redis.Client the session store needs.
type Client interface {
	Set(ctx context.Context, key string, value any, expiration time.Duration) *goredis.StatusCmd
	Get(ctx context.Context, key string) *goredis.StringCmd
	Del(ctx context.Context, keys ...string) *goredis.IntCmd
	Ping(ctx context.Context) *goredis.StatusCmd
}

var _ model.SessionStore = (*SessionStore)(nil)

// SessionStore keeps sessions in redis with the session TTL as key expiry.
type SessionStore struct {
	rdb Client
	ttl time.Duration
	now func() time.Time
}

type sessionRecord struct {
	UserID    uuid.UUID `json:"user_id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

func NewSessionStore(rdb Client, ttl time.Duration) *SessionStore {
	return &SessionStore{
		rdb: rdb,
		ttl: ttl,
		now: time.Now,
	}
}

func (s *SessionStore) Create(ctx context.Context, data model.SessionData) (model.Session, error) {
	token, err := model.NewSessionToken()
	if err != nil {
		return model.Session{}, fmt.Errorf("failed to generate session token: %w", err)
	}

	now := s.now().UTC()
	record := sessionRecord{
		UserID:    data.UserID,
		FirstName: data.FirstName,
		LastName:  data.LastName,
		Email:     data.Email,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}

	payload, err := json.Marshal(record)
	if err != nil {
		return model.Session{}, fmt.Errorf("failed to encode session: %w", err)
	}

	if err := s.rdb.Set(ctx, sessionKey(token), payload, s.ttl).Err(); err != nil {
		return model.Session{}, fmt.Errorf("failed to create session: %w", err)
	}

	return model.Session{
		SessionData: data,
		Token:       token,
		CreatedAt:   record.CreatedAt,
		ExpiresAt:   record.ExpiresAt,
	}, nil
}

func (s *SessionStore) Get(ctx context.Context, token string) (model.Session, error) {
	if token == "" {
		return model.Session{}, model.ErrSessionNotFound
	}

	data, err := s.rdb.Get(ctx, sessionKey(token)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return model.Session{}, model.ErrSessionNotFound
		}
		return model.Session{}, fmt.Errorf("failed to get session: %w", err)
	}

	var record sessionRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return model.Session{}, fmt.Errorf("failed to decode session: %w", err)
	}

	session := model.Session{
		SessionData: model.SessionData{
			UserID:    record.UserID,
			FirstName: record.FirstName,
			LastName:  record.LastName,
			Email:     record.Email,
		},
		Token:     token,
		CreatedAt: record.CreatedAt,
		ExpiresAt: record.ExpiresAt,
	}

	// Key expiry has second granularity on some deployments.
	if session.Expired(s.now()) {
		if err := s.Destroy(ctx, token); err != nil {
			return model.Session{}, err
		}
		return model.Session{}, model.ErrSessionNotFound
	}

	return session, nil
}

func (s *SessionStore) Destroy(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.rdb.Del(ctx, sessionKey(token)).Err(); err != nil {
		return fmt.Errorf("failed to destroy session: %w", err)
	}
	return nil
}

// Name implements health.Checker.
func (s *SessionStore) Name() string {
	return "redis"
}

// Check implements health.Checker.
func (s *SessionStore) Check(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

func sessionKey(token string) string {
	return sessionKeyPrefix + hex.EncodeToString(model.HashSessionToken(token))
}
