package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	chi "github.com/go-chi/chi/v5"

	"github.com/sponsorworks/ideaforge/internal/common"
)

func (s *Server) handleListClients(w http.ResponseWriter, r *http.Request) {
	clients, err := s.store.ListClients(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"clients": clients})
}

func (s *Server) handleCreateClient(w http.ResponseWriter, r *http.Request) {
	var req createClientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, errors.New("name is required"))
		return
	}
	client, err := s.store.CreateClient(r.Context(), req.Name, req.Domain)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	common.Logger().Info("api: client created", "client", client.ID, "name", client.Name)
	writeJSON(w, http.StatusCreated, client)
}

func (s *Server) handleGetClient(w http.ResponseWriter, r *http.Request) {
	client, err := s.store.ClientByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, err, "client_not_found")
		return
	}
	writeJSON(w, http.StatusOK, client)
}

// handleDeleteClient refuses to delete a client that still has generation
// sessions; history stays addressable.
func (s *Server) handleDeleteClient(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	count, err := s.store.ClientSessionCount(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if count > 0 {
		writeError(w, http.StatusConflict, errors.New("client has existing sessions"))
		return
	}
	docs, err := s.store.ClientDocuments(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if err := s.store.DeleteClient(r.Context(), id); err != nil {
		writeStoreError(w, err, "client_not_found")
		return
	}
	logger := common.Logger()
	for _, doc := range docs {
		if err := s.blobs.Delete(doc.FileURL); err != nil {
			logger.Warn("api: document blob delete failed", "document", doc.ID, "error", err)
		}
	}
	logger.Info("api: client deleted", "client", id)
	w.WriteHeader(http.StatusNoContent)
}
