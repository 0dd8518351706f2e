package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/sponsorworks/ideaforge/internal/common"
	"github.com/sponsorworks/ideaforge/internal/store"
)

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	logger := common.Logger()
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}
	username := strings.TrimSpace(req.Username)
	if username == "" {
		writeError(w, http.StatusBadRequest, errors.New("username is required"))
		return
	}
	if len(req.Password) < 8 {
		writeError(w, http.StatusBadRequest, errors.New("password must be at least 8 characters"))
		return
	}
	hash, err := s.auth.HashPassword(req.Password)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	user, err := s.store.CreateUser(r.Context(), store.User{
		Username:     username,
		PasswordHash: hash,
		DisplayName:  strings.TrimSpace(req.DisplayName),
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Office:       strings.TrimSpace(req.Office),
	})
	if err != nil {
		if errors.Is(err, store.ErrUsernameTaken) {
			writeError(w, http.StatusConflict, err)
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	token, err := s.auth.IssueToken(user.ID, user.Role)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	logger.Info("api: user registered", "user", user.ID, "username", user.Username)
	writeJSON(w, http.StatusCreated, authResponse{Token: token, User: user})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	logger := common.Logger()
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}
	user, err := s.store.UserByUsername(r.Context(), req.Username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusUnauthorized, errors.New("invalid credentials"))
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if !s.auth.CheckPassword(user.PasswordHash, req.Password) {
		writeError(w, http.StatusUnauthorized, errors.New("invalid credentials"))
		return
	}
	token, err := s.auth.IssueToken(user.ID, user.Role)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if err := s.store.TouchLastLogin(r.Context(), user.ID); err != nil {
		logger.Warn("api: last login stamp failed", "user", user.ID, "error", err)
	}
	logger.Info("api: user logged in", "user", user.ID)
	writeJSON(w, http.StatusOK, authResponse{Token: token, User: user})
}
