package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/dtroode/shareride-auth/internal/model"
)

const typeForm = "form"

// ErrInvalidToken is returned for forged, expired or malformed form tokens.
var ErrInvalidToken = errors.New("invalid form token")

// Claims represents the claims of a form token.
type Claims struct {
	jwt.RegisteredClaims
	TokenType string `json:"typ"`
}

// JWT issues HMAC-signed anti-forgery tokens for HTML forms.
// A token carries a random ID and an expiry and is bound to nothing else:
// the double-submit check compares it with the copy kept in a cookie.
type JWT struct {
	secretKey string
	ttl       time.Duration
}

var _ model.FormTokenManager = (*JWT)(nil)

// NewJWT creates a new form token manager with the provided secret key and lifetime.
func NewJWT(secretKey string, ttl time.Duration) *JWT {
	return &JWT{secretKey: secretKey, ttl: ttl}
}

// TTL returns how long issued tokens stay valid.
func (j *JWT) TTL() time.Duration {
	return j.ttl
}

// Generate creates a new form token.
func (j *JWT) Generate() (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.ttl)),
		},
		TokenType: typeForm,
	})

	tokenString, err := token.SignedString([]byte(j.secretKey))
	if err != nil {
		return "", fmt.Errorf("failed to sign form token: %w", err)
	}

	return tokenString, nil
}

// Validate checks signature, expiry and token type.
func (j *JWT) Validate(tokenString string) error {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("wrong signing method %v", t.Header["alg"])
		}
		return []byte(j.secretKey), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !token.Valid {
		return ErrInvalidToken
	}
	if claims.TokenType != typeForm {
		return fmt.Errorf("%w: token type mismatch: %s", ErrInvalidToken, claims.TokenType)
	}
	if claims.ID == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidToken)
	}
	return nil
}
