package api

import "github.com/sponsorworks/ideaforge/internal/store"

type generateResponse struct {
	SessionID string       `json:"session_id"`
	Ideas     []store.Idea `json:"ideas"`
}

type createClientRequest struct {
	Name   string `json:"name"`
	Domain string `json:"domain"`
}

type createPropertyRequest struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	ParentID string `json:"parent_id"`
}

type renameSessionRequest struct {
	Name string `json:"name"`
}

type sessionResponse struct {
	Session *store.IdeaSession `json:"session"`
	Ideas   []store.Idea       `json:"ideas"`
}

type updateIdeaRequest struct {
	Title       *string           `json:"title"`
	Overview    *string           `json:"overview"`
	Features    *store.StringList `json:"features"`
	BrandFit    *string           `json:"brand_fit"`
	ImagePrompt *string           `json:"image_prompt"`
}

type rateIdeaRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

type registerRequest struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Office      string `json:"office"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string      `json:"token"`
	User  *store.User `json:"user"`
}
