package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// SearchResult is one idea matched by a text search, with its session label.
type SearchResult struct {
	Idea        Idea   `json:"idea"`
	SessionName string `json:"session_name,omitempty"`
}

// SearchIdeas runs a LIKE match over idea titles, overviews, and session
// names. SQLite LIKE is case-insensitive for ASCII, which is all this needs.
func (s *Store) SearchIdeas(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("store not initialised")
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return []SearchResult{}, nil
	}
	if limit <= 0 {
		limit = 20
	}
	pattern := "%" + escapeLike(query) + "%"
	rows := []struct {
		Idea
		SessionName string `db:"session_name"`
	}{}
	if err := s.db.SelectContext(ctx, &rows,
		`SELECT i.*, s.name AS session_name
                 FROM ideas i
                 INNER JOIN idea_sessions s ON s.id = i.session_id
                 WHERE i.title LIKE ? ESCAPE '\'
                    OR i.overview LIKE ? ESCAPE '\'
                    OR s.name LIKE ? ESCAPE '\'
                 ORDER BY i.created_at DESC
                 LIMIT ?`,
		pattern, pattern, pattern, limit); err != nil {
		return nil, fmt.Errorf("search ideas: %w", err)
	}
	out := make([]SearchResult, 0, len(rows))
	for _, row := range rows {
		out = append(out, SearchResult{Idea: row.Idea, SessionName: row.SessionName})
	}
	return out, nil
}

func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}
