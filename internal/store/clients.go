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

// CreateClient inserts a new client and returns the stored row.
func (s *Store) CreateClient(ctx context.Context, name, domain string) (*Client, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("store not initialised")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("client name required")
	}
	client := &Client{
		ID:        uuid.NewString(),
		Name:      name,
		Domain:    strings.TrimSpace(domain),
		CreatedAt: time.Now().UTC(),
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO clients (id, name, domain, created_at) VALUES (?, ?, ?, ?)`,
		client.ID, client.Name, client.Domain, client.CreatedAt); err != nil {
		return nil, fmt.Errorf("insert client: %w", err)
	}
	return client, nil
}

// ClientByID retrieves a single client.
func (s *Store) ClientByID(ctx context.Context, id string) (*Client, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("store not initialised")
	}
	var client Client
	if err := s.db.GetContext(ctx, &client, `SELECT * FROM clients WHERE id = ?`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select client: %w", err)
	}
	return &client, nil
}

// ListClients returns all clients ordered by name.
func (s *Store) ListClients(ctx context.Context) ([]Client, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("store not initialised")
	}
	clients := []Client{}
	if err := s.db.SelectContext(ctx, &clients, `SELECT * FROM clients ORDER BY name`); err != nil {
		return nil, fmt.Errorf("select clients: %w", err)
	}
	return clients, nil
}

// ClientSessionCount counts sessions referencing the client. Deletion is
// blocked at the handler level while this is non-zero.
func (s *Store) ClientSessionCount(ctx context.Context, clientID string) (int, error) {
	if s == nil || s.db == nil {
		return 0, errors.New("store not initialised")
	}
	var count int
	if err := s.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM idea_sessions WHERE client_id = ?`, clientID); err != nil {
		return 0, fmt.Errorf("count client sessions: %w", err)
	}
	return count, nil
}

// DeleteClient removes a client row; documents cascade.
func (s *Store) DeleteClient(ctx context.Context, id string) error {
	if s == nil || s.db == nil {
		return errors.New("store not initialised")
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM clients WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete client: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return ErrNotFound
	}
	return nil
}
