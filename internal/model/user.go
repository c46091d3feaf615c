package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// UserStore defines persistence operations for users.
type UserStore interface {
	// GetByEmail returns ErrNotFound when no user matches and
	// ErrAmbiguousEmail when more than one does.
	GetByEmail(ctx context.Context, email string) (User, error)
	// Create returns ErrEmailTaken when the email is already registered.
	Create(ctx context.Context, user User) (User, error)
}

// Gender enumerates the values accepted at registration.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

// Genders lists accepted genders in form order.
var Genders = []Gender{GenderMale, GenderFemale, GenderOther}

// User represents a registered account.
type User struct {
	ID           uuid.UUID
	FirstName    string
	LastName     string
	Gender       Gender
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// FullName joins first and last name.
func (u User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// PasswordHasher produces and verifies one-way password hashes.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}
