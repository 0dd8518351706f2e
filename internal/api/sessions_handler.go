package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	chi "github.com/go-chi/chi/v5"

	"github.com/sponsorworks/ideaforge/internal/common"
)

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.store.ListSessions(r.Context(), r.URL.Query().Get("client_id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"sessions": sessions})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	session, err := s.store.SessionByID(r.Context(), id)
	if err != nil {
		writeStoreError(w, err, "session_not_found")
		return
	}
	ideas, err := s.store.IdeasBySession(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{Session: session, Ideas: ideas})
}

func (s *Server) handleRenameSession(w http.ResponseWriter, r *http.Request) {
	var req renameSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, errors.New("name is required"))
		return
	}
	id := chi.URLParam(r, "id")
	if err := s.store.RenameSession(r.Context(), id, req.Name); err != nil {
		writeStoreError(w, err, "session_not_found")
		return
	}
	session, err := s.store.SessionByID(r.Context(), id)
	if err != nil {
		writeStoreError(w, err, "session_not_found")
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.store.DeleteSession(r.Context(), id); err != nil {
		writeStoreError(w, err, "session_not_found")
		return
	}
	common.Logger().Info("api: session deleted", "session", id)
	w.WriteHeader(http.StatusNoContent)
}
