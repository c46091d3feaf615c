package model

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrAmbiguousEmail  = errors.New("more than one user with email")
	ErrEmailTaken      = errors.New("email already registered")
	ErrSessionNotFound = errors.New("session not found")
)
