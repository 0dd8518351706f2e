package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	chi "github.com/go-chi/chi/v5"

	"github.com/sponsorworks/ideaforge/internal/common"
	"github.com/sponsorworks/ideaforge/internal/extract"
)

var allowedDocumentTypes = map[string]struct{}{
	"pdf":  {},
	"docx": {},
	"doc":  {},
	"txt":  {},
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	clientID := chi.URLParam(r, "id")
	if _, err := s.store.ClientByID(r.Context(), clientID); err != nil {
		writeStoreError(w, err, "client_not_found")
		return
	}
	docs, err := s.store.ClientDocuments(r.Context(), clientID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"documents": docs})
}

// handleUploadDocument stores a persistent brand-context file. The blob is
// written first; the row insert failing leaves an unreferenced blob, which
// the delete path never sees.
func (s *Server) handleUploadDocument(w http.ResponseWriter, r *http.Request) {
	logger := common.Logger()
	clientID := chi.URLParam(r, "id")
	if _, err := s.store.ClientByID(r.Context(), clientID); err != nil {
		writeStoreError(w, err, "client_not_found")
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
	fileType := strings.TrimPrefix(strings.ToLower(filepath.Ext(header.Filename)), ".")
	if _, ok := allowedDocumentTypes[fileType]; !ok {
		writeError(w, http.StatusBadRequest, fmt.Errorf("unsupported file type: %s", fileType))
		return
	}
	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Errorf("read upload: %w", err))
		return
	}
	// Reject files the pipeline cannot read at upload time rather than
	// silently skipping them at generation time.
	if _, err := extract.Text(header.Filename, fileType, data, extract.ClientDocumentLimit); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("unreadable document: %w", err))
		return
	}
	key, err := s.blobs.Put(header.Filename, data)
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Errorf("store upload: %w", err))
		return
	}
	doc, err := s.store.CreateClientDocument(r.Context(), clientID, header.Filename, key, fileType, int64(len(data)))
	if err != nil {
		if delErr := s.blobs.Delete(key); delErr != nil {
			logger.Warn("api: orphan blob cleanup failed", "key", key, "error", delErr)
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	logger.Info("api: document uploaded", "client", clientID, "document", doc.ID, "type", fileType, "bytes", len(data))
	writeJSON(w, http.StatusCreated, doc)
}

func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	logger := common.Logger()
	id := chi.URLParam(r, "id")
	doc, err := s.store.ClientDocumentByID(r.Context(), id)
	if err != nil {
		writeStoreError(w, err, "document_not_found")
		return
	}
	if err := s.store.DeleteClientDocument(r.Context(), id); err != nil {
		writeStoreError(w, err, "document_not_found")
		return
	}
	if err := s.blobs.Delete(doc.FileURL); err != nil {
		logger.Warn("api: document blob delete failed", "document", id, "error", err)
	}
	logger.Info("api: document deleted", "document", id)
	w.WriteHeader(http.StatusNoContent)
}
