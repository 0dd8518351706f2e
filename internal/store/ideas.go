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

// IdeasBySession returns the ideas for a session in creation order.
func (s *Store) IdeasBySession(ctx context.Context, sessionID string) ([]Idea, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("store not initialised")
	}
	ideas := []Idea{}
	// Ideas within a session share a created_at; rowid preserves insertion
	// order.
	if err := s.db.SelectContext(ctx, &ideas,
		`SELECT * FROM ideas WHERE session_id = ? ORDER BY created_at, rowid`, sessionID); err != nil {
		return nil, fmt.Errorf("select ideas: %w", err)
	}
	return ideas, nil
}

// IdeaByID retrieves a single idea.
func (s *Store) IdeaByID(ctx context.Context, id string) (*Idea, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("store not initialised")
	}
	var idea Idea
	if err := s.db.GetContext(ctx, &idea, `SELECT * FROM ideas WHERE id = ?`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select idea: %w", err)
	}
	return &idea, nil
}

// UpdateIdea applies the provided field updates and returns the fresh row.
func (s *Store) UpdateIdea(ctx context.Context, id string, update IdeaUpdate) (*Idea, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("store not initialised")
	}
	sets := []string{}
	args := []interface{}{}
	if update.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, strings.TrimSpace(*update.Title))
	}
	if update.Overview != nil {
		sets = append(sets, "overview = ?")
		args = append(args, *update.Overview)
	}
	if update.Features != nil {
		sets = append(sets, "features = ?")
		args = append(args, *update.Features)
	}
	if update.BrandFit != nil {
		sets = append(sets, "brand_fit = ?")
		args = append(args, *update.BrandFit)
	}
	if update.ImagePrompt != nil {
		sets = append(sets, "image_prompt = ?")
		args = append(args, *update.ImagePrompt)
	}
	if len(sets) == 0 {
		return s.IdeaByID(ctx, id)
	}
	args = append(args, id)
	query := fmt.Sprintf(`UPDATE ideas SET %s WHERE id = ?`, strings.Join(sets, ", "))
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("update idea: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return nil, ErrNotFound
	}
	return s.IdeaByID(ctx, id)
}

// SetIdeaImage sets or clears the idea's rendered image URL. The image
// side-channel never touches the other idea fields.
func (s *Store) SetIdeaImage(ctx context.Context, id, imageURL string) error {
	if s == nil || s.db == nil {
		return errors.New("store not initialised")
	}
	res, err := s.db.ExecContext(ctx, `UPDATE ideas SET image_url = ? WHERE id = ?`, imageURL, id)
	if err != nil {
		return fmt.Errorf("set idea image: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return ErrNotFound
	}
	return nil
}

// UpsertRating writes a user's rating for an idea. A repeat rating from the
// same user overwrites the previous row.
func (s *Store) UpsertRating(ctx context.Context, ideaID, userID string, rating int, comment string) (*IdeaRating, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("store not initialised")
	}
	if rating < 1 || rating > 3 {
		return nil, fmt.Errorf("rating out of range: %d", rating)
	}
	now := time.Now().UTC()
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO idea_ratings (id, idea_id, user_id, rating, comment, created_at, updated_at)
                 VALUES (?, ?, ?, ?, ?, ?, ?)
                 ON CONFLICT(idea_id, user_id) DO UPDATE SET
                        rating = excluded.rating,
                        comment = excluded.comment,
                        updated_at = excluded.updated_at`,
		uuid.NewString(), ideaID, userID, rating, comment, now, now); err != nil {
		return nil, fmt.Errorf("upsert rating: %w", err)
	}
	var stored IdeaRating
	if err := s.db.GetContext(ctx, &stored,
		`SELECT * FROM idea_ratings WHERE idea_id = ? AND user_id = ?`, ideaID, userID); err != nil {
		return nil, fmt.Errorf("select rating: %w", err)
	}
	return &stored, nil
}

// RatingsForIdea lists all ratings attached to an idea.
func (s *Store) RatingsForIdea(ctx context.Context, ideaID string) ([]IdeaRating, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("store not initialised")
	}
	ratings := []IdeaRating{}
	if err := s.db.SelectContext(ctx, &ratings,
		`SELECT * FROM idea_ratings WHERE idea_id = ? ORDER BY updated_at DESC`, ideaID); err != nil {
		return nil, fmt.Errorf("select ratings: %w", err)
	}
	return ratings, nil
}
