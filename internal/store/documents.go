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

// CreateClientDocument records an uploaded brand-context file for a client.
func (s *Store) CreateClientDocument(ctx context.Context, clientID, name, fileURL, fileType string, fileSize int64) (*ClientDocument, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("store not initialised")
	}
	if strings.TrimSpace(clientID) == "" {
		return nil, errors.New("client id required")
	}
	doc := &ClientDocument{
		ID:        uuid.NewString(),
		ClientID:  clientID,
		Name:      strings.TrimSpace(name),
		FileURL:   fileURL,
		FileType:  strings.ToLower(strings.TrimSpace(fileType)),
		FileSize:  fileSize,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO client_documents (id, client_id, name, file_url, file_type, file_size, created_at)
                 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		doc.ID, doc.ClientID, doc.Name, doc.FileURL, doc.FileType, doc.FileSize, doc.CreatedAt); err != nil {
		return nil, fmt.Errorf("insert client document: %w", err)
	}
	return doc, nil
}

// ClientDocumentByID retrieves a single document row.
func (s *Store) ClientDocumentByID(ctx context.Context, id string) (*ClientDocument, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("store not initialised")
	}
	var doc ClientDocument
	if err := s.db.GetContext(ctx, &doc, `SELECT * FROM client_documents WHERE id = ?`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select client document: %w", err)
	}
	return &doc, nil
}

// ClientDocuments lists all persisted documents for a client.
func (s *Store) ClientDocuments(ctx context.Context, clientID string) ([]ClientDocument, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("store not initialised")
	}
	docs := []ClientDocument{}
	if err := s.db.SelectContext(ctx, &docs,
		`SELECT * FROM client_documents WHERE client_id = ? ORDER BY created_at, name`, clientID); err != nil {
		return nil, fmt.Errorf("select client documents: %w", err)
	}
	return docs, nil
}

// DeleteClientDocument removes the row; the caller is responsible for the
// backing blob.
func (s *Store) DeleteClientDocument(ctx context.Context, id string) error {
	if s == nil || s.db == nil {
		return errors.New("store not initialised")
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM client_documents WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete client document: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return ErrNotFound
	}
	return nil
}
