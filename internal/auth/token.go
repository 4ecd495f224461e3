package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	"bankelig/internal/model"
)

// SessionTokenExpiry is the lifetime of a signed session token. The same
// window is applied to the persisted session row.
const SessionTokenExpiry = 7 * 24 * time.Hour

// ErrMissingSecret is returned when the signing secret is empty.
var ErrMissingSecret = errors.New("jwt secret is not configured")

// Claims carried inside a signed session token.
type Claims struct {
	UserID      string `json:"user_id"`
	Email       string `json:"email"`
	Role        string `json:"role"`
	Fingerprint string `json:"fingerprint,omitempty"`
	jwt.RegisteredClaims
}

// TokenSigner issues and verifies signed session tokens.
type TokenSigner struct {
	secret []byte
}

// NewTokenSigner creates a signer. An empty secret is a configuration error
// and must abort startup.
func NewTokenSigner(secret string) (*TokenSigner, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}
	return &TokenSigner{secret: []byte(secret)}, nil
}

// Generate signs a session token for the user with a unique token ID and a
// fixed 7-day expiry. The fingerprint, when present, is bound into the token
// and checked again at validation.
func (s *TokenSigner) Generate(user *model.User, fingerprint string) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID:      user.ID,
		Email:       user.Email,
		Role:        string(user.Role),
		Fingerprint: fingerprint,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(now.Add(SessionTokenExpiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Validate verifies the signature and registered claims and returns the
// parsed claims. Expired or tampered tokens fail here without any store
// lookup.
func (s *TokenSigner) Validate(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}

	return claims, nil
}
