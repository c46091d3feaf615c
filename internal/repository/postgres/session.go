package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dtroode/shareride-auth/internal/model"
)

var _ model.SessionStore = (*SessionRepository)(nil)

// SessionRepository stores sessions in the sessions table keyed by token digest.
type SessionRepository struct {
	db  DBTX
	ttl time.Duration
	now func() time.Time
}

func NewSessionRepository(db DBTX, ttl time.Duration) *SessionRepository {
	return &SessionRepository{db: db, ttl: ttl, now: time.Now}
}

// Create also deletes every expired row.
func (r *SessionRepository) Create(ctx context.Context, data model.SessionData) (model.Session, error) {
	const purgeQuery = `DELETE FROM sessions WHERE expires_at <= $1`
	const query = `
        INSERT INTO sessions (token_hash, user_id, first_name, last_name, email, created_at, expires_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
    `

	token, err := model.NewSessionToken()
	if err != nil {
		return model.Session{}, fmt.Errorf("failed to generate session token: %w", err)
	}

	now := r.now().UTC()
	if _, err := r.db.ExecContext(ctx, purgeQuery, now); err != nil {
		return model.Session{}, fmt.Errorf("failed to purge expired sessions: %w", err)
	}

	session := model.Session{
		SessionData: data,
		Token:       token,
		CreatedAt:   now,
		ExpiresAt:   now.Add(r.ttl),
	}

	if _, err := r.db.ExecContext(ctx, query,
		model.HashSessionToken(token), data.UserID, data.FirstName, data.LastName, data.Email,
		session.CreatedAt, session.ExpiresAt,
	); err != nil {
		return model.Session{}, fmt.Errorf("failed to create session: %w", err)
	}

	return session, nil
}

// Get drops the row of an expired session before reporting it missing.
func (r *SessionRepository) Get(ctx context.Context, token string) (model.Session, error) {
	const query = `
        SELECT user_id, first_name, last_name, email, created_at, expires_at
        FROM sessions WHERE token_hash = $1
    `

	if token == "" {
		return model.Session{}, model.ErrSessionNotFound
	}

	session := model.Session{Token: token}
	err := r.db.QueryRowContext(ctx, query, model.HashSessionToken(token)).Scan(
		&session.UserID, &session.FirstName, &session.LastName, &session.Email,
		&session.CreatedAt, &session.ExpiresAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Session{}, model.ErrSessionNotFound
		}
		return model.Session{}, fmt.Errorf("failed to get session: %w", err)
	}

	if session.Expired(r.now()) {
		if err := r.Destroy(ctx, token); err != nil {
			return model.Session{}, err
		}
		return model.Session{}, model.ErrSessionNotFound
	}

	return session, nil
}

func (r *SessionRepository) Destroy(ctx context.Context, token string) error {
	const query = `DELETE FROM sessions WHERE token_hash = $1`

	if token == "" {
		return nil
	}

	if _, err := r.db.ExecContext(ctx, query, model.HashSessionToken(token)); err != nil {
		return fmt.Errorf("failed to destroy session: %w", err)
	}
	return nil
}
