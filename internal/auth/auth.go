// Package auth issues and verifies the bearer tokens attached to requests.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const defaultTokenTTL = 24 * time.Hour

// Identity is the authenticated caller attached to a request context.
type Identity struct {
	UserID string
	Role   string
}

// IsAdmin reports whether the identity carries the admin role.
func (i *Identity) IsAdmin() bool {
	return i != nil && i.Role == "admin"
}

type contextKey struct{}

// Service signs and verifies JWTs and hashes passwords.
type Service struct {
	secret []byte
	ttl    time.Duration
}

// NewService builds a Service from the signing secret.
func NewService(secret string, ttl time.Duration) (*Service, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("jwt secret required")
	}
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	return &Service{secret: []byte(secret), ttl: ttl}, nil
}

// HashPassword hashes a plaintext password with bcrypt.
func (s *Service) HashPassword(password string) (string, error) {
	if password == "" {
		return "", errors.New("password required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword verifies a plaintext password against its bcrypt hash.
func (s *Service) CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

type claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// IssueToken signs a token for the given user.
func (s *Service) IssueToken(userID, role string) (string, error) {
	if s == nil {
		return "", errors.New("auth service not initialised")
	}
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ParseToken verifies a token and returns the identity it carries.
func (s *Service) ParseToken(raw string) (*Identity, error) {
	if s == nil {
		return nil, errors.New("auth service not initialised")
	}
	parsed, err := jwt.ParseWithClaims(raw, &claims{}, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	c, ok := parsed.Claims.(*claims)
	if !ok || c.Subject == "" {
		return nil, errors.New("invalid token claims")
	}
	return &Identity{UserID: c.Subject, Role: c.Role}, nil
}

// Middleware attaches the caller's identity to the request context when a
// valid bearer token is present. Requests without a token pass through
// anonymously; handlers that need a user check CurrentIdentity themselves.
func (s *Service) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if token, ok := strings.CutPrefix(header, "Bearer "); ok {
			if identity, err := s.ParseToken(strings.TrimSpace(token)); err == nil {
				r = r.WithContext(context.WithValue(r.Context(), contextKey{}, identity))
			}
		}
		next.ServeHTTP(w, r)
	})
}

// CurrentIdentity returns the authenticated identity for the request, or nil.
func CurrentIdentity(r *http.Request) *Identity {
	identity, _ := r.Context().Value(contextKey{}).(*Identity)
	return identity
}
