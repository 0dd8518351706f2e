package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var validCategories = map[string]struct{}{
	CategoryLeague:         {},
	CategoryTeam:           {},
	CategoryMusicFestival:  {},
	CategoryEntertainment:  {},
	CategoryCulturalMoment: {},
}

// CreateProperty inserts a property. A parent may only be assigned when the
// parent itself has no parent (one level of nesting, team -> league).
func (s *Store) CreateProperty(ctx context.Context, name, category, parentID string) (*Property, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("store not initialised")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("property name required")
	}
	category = strings.ToLower(strings.TrimSpace(category))
	if _, ok := validCategories[category]; !ok {
		return nil, fmt.Errorf("invalid property category: %s", category)
	}
	property := &Property{
		ID:        uuid.NewString(),
		Name:      name,
		Category:  category,
		CreatedAt: time.Now().UTC(),
	}
	parentID = strings.TrimSpace(parentID)
	if parentID != "" {
		parent, err := s.PropertyByID(ctx, parentID)
		if err != nil {
			return nil, fmt.Errorf("resolve parent property: %w", err)
		}
		if parent.ParentID.Valid {
			return nil, errors.New("parent property must be top-level")
		}
		property.ParentID = sql.NullString{String: parentID, Valid: true}
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO properties (id, name, category, parent_id, created_at) VALUES (?, ?, ?, ?, ?)`,
		property.ID, property.Name, property.Category, property.ParentID, property.CreatedAt); err != nil {
		return nil, fmt.Errorf("insert property: %w", err)
	}
	return property, nil
}

// PropertyByID retrieves a single property.
func (s *Store) PropertyByID(ctx context.Context, id string) (*Property, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("store not initialised")
	}
	var property Property
	if err := s.db.GetContext(ctx, &property, `SELECT * FROM properties WHERE id = ?`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select property: %w", err)
	}
	return &property, nil
}

// PropertiesByIDs resolves the given id list. Unknown ids are silently
// dropped; callers decide how to treat an empty result.
func (s *Store) PropertiesByIDs(ctx context.Context, ids []string) ([]Property, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("store not initialised")
	}
	if len(ids) == 0 {
		return []Property{}, nil
	}
	query, args, err := sqlx.In(`SELECT * FROM properties WHERE id IN (?) ORDER BY name`, ids)
	if err != nil {
		return nil, fmt.Errorf("build property query: %w", err)
	}
	query = s.db.Rebind(query)
	properties := []Property{}
	if err := s.db.SelectContext(ctx, &properties, query, args...); err != nil {
		return nil, fmt.Errorf("select properties: %w", err)
	}
	return properties, nil
}

// ListProperties returns all properties ordered by category then name.
func (s *Store) ListProperties(ctx context.Context) ([]Property, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("store not initialised")
	}
	properties := []Property{}
	if err := s.db.SelectContext(ctx, &properties, `SELECT * FROM properties ORDER BY category, name`); err != nil {
		return nil, fmt.Errorf("select properties: %w", err)
	}
	return properties, nil
}
