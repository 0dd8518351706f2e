package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrUsernameTaken reports a registration against an existing username.
// Usernames compare case-insensitively.
var ErrUsernameTaken = errors.New("username already taken")

// CreateUser inserts a new user row.
func (s *Store) CreateUser(ctx context.Context, user User) (*User, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("store not initialised")
	}
	user.Username = strings.TrimSpace(user.Username)
	if user.Username == "" {
		return nil, errors.New("username required")
	}
	if user.PasswordHash == "" {
		return nil, errors.New("password hash required")
	}
	if user.DisplayName == "" {
		user.DisplayName = user.Username
	}
	if user.Role == "" {
		user.Role = RoleUser
	}
	user.ID = uuid.NewString()
	user.CreatedAt = time.Now().UTC()
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, username, password_hash, display_name, first_name, last_name, office, role, avatar_url, created_at)
                 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID, user.Username, user.PasswordHash, user.DisplayName, user.FirstName, user.LastName,
		user.Office, user.Role, user.AvatarURL, user.CreatedAt); err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return &user, nil
}

// UserByUsername resolves a user by case-insensitive username.
func (s *Store) UserByUsername(ctx context.Context, username string) (*User, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("store not initialised")
	}
	var user User
	if err := s.db.GetContext(ctx, &user,
		`SELECT * FROM users WHERE username = ? COLLATE NOCASE`, strings.TrimSpace(username)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select user: %w", err)
	}
	return &user, nil
}

// UserByID retrieves a user by id.
func (s *Store) UserByID(ctx context.Context, id string) (*User, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("store not initialised")
	}
	var user User
	if err := s.db.GetContext(ctx, &user, `SELECT * FROM users WHERE id = ?`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select user: %w", err)
	}
	return &user, nil
}

// TouchLastLogin stamps the user's last successful login.
func (s *Store) TouchLastLogin(ctx context.Context, id string) error {
	if s == nil || s.db == nil {
		return errors.New("store not initialised")
	}
	if _, err := s.db.ExecContext(ctx,
		`UPDATE users SET last_login_at = ? WHERE id = ?`, time.Now().UTC(), id); err != nil {
		return fmt.Errorf("touch last login: %w", err)
	}
	return nil
}
