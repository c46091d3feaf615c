package model

// RegisterParams is the raw registration form input.
type RegisterParams struct {
	FirstName string
	LastName  string
	Gender    string
	Email     string
	Password  string
}

// LoginParams is the raw login form input plus request facts the login flow needs.
type LoginParams struct {
	Email    string
	Password string
	// ClientIP keys failed attempt throttling.
	ClientIP string
	// CurrentToken is the session token the client presented, if any.
	// It is destroyed on successful login.
	CurrentToken string
}
