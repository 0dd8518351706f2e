package store

import (
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// StringList stores a JSON-encoded array of strings in a TEXT column.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		l = StringList{}
	}
	data, err := json.Marshal([]string(l))
	if err != nil {
		return nil, fmt.Errorf("marshal string list: %w", err)
	}
	return string(data), nil
}

func (l *StringList) Scan(src interface{}) error {
	if src == nil {
		*l = nil
		return nil
	}
	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("scan string list: unsupported type %T", src)
	}
	if len(data) == 0 {
		*l = nil
		return nil
	}
	var out []string
	if err := json.Unmarshal(data, &out); err != nil {
		return fmt.Errorf("scan string list: %w", err)
	}
	*l = out
	return nil
}

// Property categories.
const (
	CategoryLeague         = "league"
	CategoryTeam           = "team"
	CategoryMusicFestival  = "music_festival"
	CategoryEntertainment  = "entertainment"
	CategoryCulturalMoment = "cultural_moment"
)

// User roles.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

type Client struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Domain    string    `db:"domain" json:"domain,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type Property struct {
	ID        string         `db:"id" json:"id"`
	Name      string         `db:"name" json:"name"`
	Category  string         `db:"category" json:"category"`
	ParentID  sql.NullString `db:"parent_id" json:"-"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
}

// MarshalJSON renders parent_id as a plain nullable string.
func (p Property) MarshalJSON() ([]byte, error) {
	type alias Property
	var parent *string
	if p.ParentID.Valid {
		parent = &p.ParentID.String
	}
	return json.Marshal(struct {
		alias
		ParentID *string `json:"parent_id"`
	}{alias(p), parent})
}

type ClientDocument struct {
	ID        string    `db:"id" json:"id"`
	ClientID  string    `db:"client_id" json:"client_id"`
	Name      string    `db:"name" json:"name"`
	FileURL   string    `db:"file_url" json:"file_url"`
	FileType  string    `db:"file_type" json:"file_type"`
	FileSize  int64     `db:"file_size" json:"file_size"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type IdeaSession struct {
	ID               string         `db:"id" json:"id"`
	ClientID         string         `db:"client_id" json:"client_id"`
	PropertyIDs      StringList     `db:"property_ids" json:"property_ids"`
	IdeaLane         string         `db:"idea_lane" json:"idea_lane"`
	TechModifiers    StringList     `db:"tech_modifiers" json:"tech_modifiers,omitempty"`
	AudienceModifier string         `db:"audience_modifier" json:"audience_modifier,omitempty"`
	PlatformModifier string         `db:"platform_modifier" json:"platform_modifier,omitempty"`
	BudgetTier       string         `db:"budget_tier" json:"budget_tier,omitempty"`
	ContentStyle     string         `db:"content_style" json:"content_style,omitempty"`
	AIModel          string         `db:"ai_model" json:"ai_model,omitempty"`
	NumIdeas         int            `db:"num_ideas" json:"num_ideas"`
	UserID           sql.NullString `db:"user_id" json:"-"`
	Name             string         `db:"name" json:"name,omitempty"`
	CreatedAt        time.Time      `db:"created_at" json:"created_at"`
}

type Idea struct {
	ID           string     `db:"id" json:"id"`
	SessionID    string     `db:"session_id" json:"session_id"`
	Title        string     `db:"title" json:"title"`
	Overview     string     `db:"overview" json:"overview"`
	Features     StringList `db:"features" json:"features"`
	BrandFit     string     `db:"brand_fit" json:"brand_fit"`
	ImagePrompt  string     `db:"image_prompt" json:"image_prompt"`
	ImageURL     string     `db:"image_url" json:"image_url,omitempty"`
	FigmaFrameID string     `db:"figma_frame_id" json:"figma_frame_id,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
}

type IdeaRating struct {
	ID        string    `db:"id" json:"id"`
	IdeaID    string    `db:"idea_id" json:"idea_id"`
	UserID    string    `db:"user_id" json:"user_id"`
	Rating    int       `db:"rating" json:"rating"`
	Comment   string    `db:"comment" json:"comment,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

type User struct {
	ID           string       `db:"id" json:"id"`
	Username     string       `db:"username" json:"username"`
	PasswordHash string       `db:"password_hash" json:"-"`
	DisplayName  string       `db:"display_name" json:"display_name"`
	FirstName    string       `db:"first_name" json:"first_name,omitempty"`
	LastName     string       `db:"last_name" json:"last_name,omitempty"`
	Office       string       `db:"office" json:"office,omitempty"`
	Role         string       `db:"role" json:"role"`
	AvatarURL    string       `db:"avatar_url" json:"avatar_url,omitempty"`
	CreatedAt    time.Time    `db:"created_at" json:"created_at"`
	LastLoginAt  sql.NullTime `db:"last_login_at" json:"-"`
}

// IdeaUpdate carries the editable idea fields; nil pointers leave the column
// untouched.
type IdeaUpdate struct {
	Title       *string
	Overview    *string
	Features    *StringList
	BrandFit    *string
	ImagePrompt *string
}
