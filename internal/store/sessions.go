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

// NewSession describes a generation request about to be persisted.
type NewSession struct {
	ClientID         string
	PropertyIDs      []string
	IdeaLane         string
	TechModifiers    []string
	AudienceModifier string
	PlatformModifier string
	BudgetTier       string
	ContentStyle     string
	AIModel          string
	NumIdeas         int
	UserID           string
	Name             string
}

// NewIdea is one generated idea awaiting persistence.
type NewIdea struct {
	Title       string
	Overview    string
	Features    []string
	BrandFit    string
	ImagePrompt string
}

// CreateSessionWithIdeas writes the session row and its idea rows in a single
// transaction, so a failed idea insert never leaves an orphaned session.
func (s *Store) CreateSessionWithIdeas(ctx context.Context, session NewSession, ideas []NewIdea) (*IdeaSession, []Idea, error) {
	if s == nil || s.db == nil {
		return nil, nil, errors.New("store not initialised")
	}
	now := time.Now().UTC()
	row := &IdeaSession{
		ID:               uuid.NewString(),
		ClientID:         session.ClientID,
		PropertyIDs:      StringList(session.PropertyIDs),
		IdeaLane:         session.IdeaLane,
		TechModifiers:    StringList(session.TechModifiers),
		AudienceModifier: session.AudienceModifier,
		PlatformModifier: session.PlatformModifier,
		BudgetTier:       session.BudgetTier,
		ContentStyle:     session.ContentStyle,
		AIModel:          session.AIModel,
		NumIdeas:         session.NumIdeas,
		Name:             session.Name,
		CreatedAt:        now,
	}
	if trimmed := strings.TrimSpace(session.UserID); trimmed != "" {
		row.UserID = sql.NullString{String: trimmed, Valid: true}
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("begin session insert: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO idea_sessions
                 (id, client_id, property_ids, idea_lane, tech_modifiers, audience_modifier,
                  platform_modifier, budget_tier, content_style, ai_model, num_ideas, user_id, name, created_at)
                 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		row.ID, row.ClientID, row.PropertyIDs, row.IdeaLane, row.TechModifiers, row.AudienceModifier,
		row.PlatformModifier, row.BudgetTier, row.ContentStyle, row.AIModel, row.NumIdeas, row.UserID,
		row.Name, row.CreatedAt); err != nil {
		tx.Rollback()
		return nil, nil, fmt.Errorf("insert session: %w", err)
	}

	stored := make([]Idea, 0, len(ideas))
	for _, idea := range ideas {
		record := Idea{
			ID:          uuid.NewString(),
			SessionID:   row.ID,
			Title:       idea.Title,
			Overview:    idea.Overview,
			Features:    StringList(idea.Features),
			BrandFit:    idea.BrandFit,
			ImagePrompt: idea.ImagePrompt,
			CreatedAt:   now,
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO ideas (id, session_id, title, overview, features, brand_fit, image_prompt, created_at)
                         VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			record.ID, record.SessionID, record.Title, record.Overview, record.Features,
			record.BrandFit, record.ImagePrompt, record.CreatedAt); err != nil {
			tx.Rollback()
			return nil, nil, fmt.Errorf("insert idea: %w", err)
		}
		stored = append(stored, record)
	}
	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("commit session insert: %w", err)
	}
	return row, stored, nil
}

// SessionByID retrieves one session.
func (s *Store) SessionByID(ctx context.Context, id string) (*IdeaSession, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("store not initialised")
	}
	var session IdeaSession
	if err := s.db.GetContext(ctx, &session, `SELECT * FROM idea_sessions WHERE id = ?`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select session: %w", err)
	}
	return &session, nil
}

// ListSessions returns sessions newest first, optionally scoped to a client.
func (s *Store) ListSessions(ctx context.Context, clientID string) ([]IdeaSession, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("store not initialised")
	}
	sessions := []IdeaSession{}
	if strings.TrimSpace(clientID) != "" {
		if err := s.db.SelectContext(ctx, &sessions,
			`SELECT * FROM idea_sessions WHERE client_id = ? ORDER BY created_at DESC`, clientID); err != nil {
			return nil, fmt.Errorf("select sessions: %w", err)
		}
		return sessions, nil
	}
	if err := s.db.SelectContext(ctx, &sessions,
		`SELECT * FROM idea_sessions ORDER BY created_at DESC`); err != nil {
		return nil, fmt.Errorf("select sessions: %w", err)
	}
	return sessions, nil
}

// RenameSession updates the user-editable label, the only mutable session
// field.
func (s *Store) RenameSession(ctx context.Context, id, name string) error {
	if s == nil || s.db == nil {
		return errors.New("store not initialised")
	}
	res, err := s.db.ExecContext(ctx, `UPDATE idea_sessions SET name = ? WHERE id = ?`, strings.TrimSpace(name), id)
	if err != nil {
		return fmt.Errorf("rename session: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteSession removes a session; its ideas cascade.
func (s *Store) DeleteSession(ctx context.Context, id string) error {
	if s == nil || s.db == nil {
		return errors.New("store not initialised")
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM idea_sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return ErrNotFound
	}
	return nil
}
