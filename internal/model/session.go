package model

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SessionTokenBytes is the amount of entropy in a session token.
const SessionTokenBytes = 32

// SessionStore keeps authenticated sessions keyed by an opaque token.
type SessionStore interface {
	// Create stores data under a fresh token and returns the stored session.
	Create(ctx context.Context, data SessionData) (Session, error)
	// Get returns ErrSessionNotFound for unknown or expired tokens.
	Get(ctx context.Context, token string) (Session, error)
	// Destroy removes the session. Unknown tokens are not an error.
	Destroy(ctx context.Context, token string) error
}

// SessionData is the user snapshot copied into a session at login.
type SessionData struct {
	UserID    uuid.UUID
	FirstName string
	LastName  string
	Email     string
}

// FullName joins first and last name.
func (d SessionData) FullName() string {
	return d.FirstName + " " + d.LastName
}

// Session is an authenticated browser session.
type Session struct {
	SessionData
	Token     string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Expired reports whether the session is no longer valid at now.
func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// NewSessionToken returns a random URL-safe token.
func NewSessionToken() (string, error) {
	buf := make([]byte, SessionTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// HashSessionToken returns the digest persistent stores key sessions by.
func HashSessionToken(token string) []byte {
	sum := sha256.Sum256([]byte(token))
	return sum[:]
}
