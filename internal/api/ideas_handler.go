package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	chi "github.com/go-chi/chi/v5"

	"github.com/sponsorworks/ideaforge/internal/auth"
	"github.com/sponsorworks/ideaforge/internal/common"
	"github.com/sponsorworks/ideaforge/internal/store"
)

var allowedImageTypes = map[string]struct{}{
	"png":  {},
	"jpg":  {},
	"jpeg": {},
	"webp": {},
}

// canEditIdea reports whether the caller may mutate the idea. Ideas in a
// session owned by a user are editable by that user and admins; ideas in
// anonymous sessions stay open to everyone.
func (s *Server) canEditIdea(r *http.Request, idea *store.Idea) (bool, error) {
	session, err := s.store.SessionByID(r.Context(), idea.SessionID)
	if err != nil {
		return false, err
	}
	if !session.UserID.Valid {
		return true, nil
	}
	identity := auth.CurrentIdentity(r)
	if identity == nil {
		return false, nil
	}
	return identity.IsAdmin() || identity.UserID == session.UserID.String, nil
}

func (s *Server) handleUpdateIdea(w http.ResponseWriter, r *http.Request) {
	idea, err := s.store.IdeaByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, err, "idea_not_found")
		return
	}
	allowed, err := s.canEditIdea(r, idea)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if !allowed {
		writeError(w, http.StatusForbidden, errors.New("not allowed to edit this idea"))
		return
	}
	var req updateIdeaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}
	if req.Title != nil && strings.TrimSpace(*req.Title) == "" {
		writeError(w, http.StatusBadRequest, errors.New("title must not be empty"))
		return
	}
	updated, err := s.store.UpdateIdea(r.Context(), idea.ID, store.IdeaUpdate{
		Title:       req.Title,
		Overview:    req.Overview,
		Features:    req.Features,
		BrandFit:    req.BrandFit,
		ImagePrompt: req.ImagePrompt,
	})
	if err != nil {
		writeStoreError(w, err, "idea_not_found")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleUploadIdeaImage(w http.ResponseWriter, r *http.Request) {
	logger := common.Logger()
	id := chi.URLParam(r, "id")
	idea, err := s.store.IdeaByID(r.Context(), id)
	if err != nil {
		writeStoreError(w, err, "idea_not_found")
		return
	}
	allowed, err := s.canEditIdea(r, idea)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if !allowed {
		writeError(w, http.StatusForbidden, errors.New("not allowed to edit this idea"))
		return
	}
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("failed to parse upload form: %w", err))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.New("file is required"))
		return
	}
	defer file.Close()
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(header.Filename)), ".")
	if _, ok := allowedImageTypes[ext]; !ok {
		writeError(w, http.StatusBadRequest, fmt.Errorf("unsupported image type: %s", ext))
		return
	}
	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Errorf("read upload: %w", err))
		return
	}
	key, err := s.blobs.Put(header.Filename, data)
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Errorf("store upload: %w", err))
		return
	}
	if err := s.store.SetIdeaImage(r.Context(), id, key); err != nil {
		if delErr := s.blobs.Delete(key); delErr != nil {
			logger.Warn("api: orphan blob cleanup failed", "key", key, "error", delErr)
		}
		writeStoreError(w, err, "idea_not_found")
		return
	}
	// Replacing an image leaves the previous blob orphaned; drop it.
	if idea.ImageURL != "" {
		if err := s.blobs.Delete(idea.ImageURL); err != nil {
			logger.Warn("api: previous image delete failed", "idea", id, "error", err)
		}
	}
	logger.Info("api: idea image set", "idea", id, "bytes", len(data))
	fresh, err := s.store.IdeaByID(r.Context(), id)
	if err != nil {
		writeStoreError(w, err, "idea_not_found")
		return
	}
	writeJSON(w, http.StatusOK, fresh)
}

func (s *Server) handleClearIdeaImage(w http.ResponseWriter, r *http.Request) {
	logger := common.Logger()
	id := chi.URLParam(r, "id")
	idea, err := s.store.IdeaByID(r.Context(), id)
	if err != nil {
		writeStoreError(w, err, "idea_not_found")
		return
	}
	allowed, err := s.canEditIdea(r, idea)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if !allowed {
		writeError(w, http.StatusForbidden, errors.New("not allowed to edit this idea"))
		return
	}
	if err := s.store.SetIdeaImage(r.Context(), id, ""); err != nil {
		writeStoreError(w, err, "idea_not_found")
		return
	}
	if idea.ImageURL != "" {
		if err := s.blobs.Delete(idea.ImageURL); err != nil {
			logger.Warn("api: image blob delete failed", "idea", id, "error", err)
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRateIdea(w http.ResponseWriter, r *http.Request) {
	identity := auth.CurrentIdentity(r)
	if identity == nil {
		writeError(w, http.StatusUnauthorized, errors.New("authentication required"))
		return
	}
	var req rateIdeaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}
	if req.Rating < 1 || req.Rating > 3 {
		writeError(w, http.StatusBadRequest, errors.New("rating must be between 1 and 3"))
		return
	}
	id := chi.URLParam(r, "id")
	if _, err := s.store.IdeaByID(r.Context(), id); err != nil {
		writeStoreError(w, err, "idea_not_found")
		return
	}
	rating, err := s.store.UpsertRating(r.Context(), id, identity.UserID, req.Rating, strings.TrimSpace(req.Comment))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, rating)
}

func (s *Server) handleListRatings(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := s.store.IdeaByID(r.Context(), id); err != nil {
		writeStoreError(w, err, "idea_not_found")
		return
	}
	ratings, err := s.store.RatingsForIdea(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"ratings": ratings})
}
