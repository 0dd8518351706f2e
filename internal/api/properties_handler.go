package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/sponsorworks/ideaforge/internal/common"
)

func (s *Server) handleListProperties(w http.ResponseWriter, r *http.Request) {
	properties, err := s.store.ListProperties(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"properties": properties})
}

func (s *Server) handleCreateProperty(w http.ResponseWriter, r *http.Request) {
	var req createPropertyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, errors.New("name is required"))
		return
	}
	property, err := s.store.CreateProperty(r.Context(), req.Name, req.Category, req.ParentID)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	common.Logger().Info("api: property created", "property", property.ID, "category", property.Category)
	writeJSON(w, http.StatusCreated, property)
}
