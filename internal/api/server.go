package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	chi "github.com/go-chi/chi/v5"

	"github.com/sponsorworks/ideaforge/internal/auth"
	"github.com/sponsorworks/ideaforge/internal/blob"
	"github.com/sponsorworks/ideaforge/internal/common"
	"github.com/sponsorworks/ideaforge/internal/llm"
	"github.com/sponsorworks/ideaforge/internal/store"
)

type Server struct {
	router chi.Router
	store  *store.Store
	blobs  *blob.Store
	models *llm.Router
	auth   *auth.Service
}

// Config controls server construction.
type Config struct {
	BlobRoot  string
	JWTSecret string
	TokenTTL  time.Duration
}

// DefaultConfig returns the standard configuration used when no overrides
// are provided.
func DefaultConfig() Config {
	return Config{
		BlobRoot:  filepath.Join("data", "blobs"),
		JWTSecret: os.Getenv("IDEAFORGE_JWT_SECRET"),
	}
}

// Merge overlays non-empty override fields onto the base configuration.
func (c Config) Merge(override Config) Config {
	result := c
	if strings.TrimSpace(override.BlobRoot) != "" {
		result.BlobRoot = strings.TrimSpace(override.BlobRoot)
	}
	if strings.TrimSpace(override.JWTSecret) != "" {
		result.JWTSecret = override.JWTSecret
	}
	if override.TokenTTL > 0 {
		result.TokenTTL = override.TokenTTL
	}
	return result
}

func NewServer(st *store.Store, models *llm.Router, cfg *Config) (*Server, error) {
	logger := common.Logger()
	if st == nil {
		return nil, fmt.Errorf("store required")
	}
	if models == nil {
		return nil, fmt.Errorf("model router required")
	}
	configuration := DefaultConfig()
	if cfg != nil {
		configuration = configuration.Merge(*cfg)
	}
	blobs, err := blob.NewStore(configuration.BlobRoot)
	if err != nil {
		return nil, fmt.Errorf("init blob store: %w", err)
	}
	secret := configuration.JWTSecret
	if strings.TrimSpace(secret) == "" {
		return nil, fmt.Errorf("jwt secret required (set IDEAFORGE_JWT_SECRET)")
	}
	authService, err := auth.NewService(secret, configuration.TokenTTL)
	if err != nil {
		return nil, fmt.Errorf("init auth service: %w", err)
	}
	caps := models.Capabilities()
	logger.Info(
		"api: building server",
		"blob_root", configuration.BlobRoot,
		"claude", caps.Claude,
		"writer", caps.Writer,
		"gemini", caps.Gemini,
	)
	srv := &Server{
		router: chi.NewRouter(),
		store:  st,
		blobs:  blobs,
		models: models,
		auth:   authService,
	}
	srv.routes()
	logger.Info("api: server ready")
	return srv, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	logger := common.Logger()
	logger.Info("api: configuring routes")
	s.router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			logger.Debug("request", "method", r.Method, "path", r.URL.Path, "dur", time.Since(start), "remote", r.RemoteAddr)
		})
	})
	s.router.Use(s.auth.Middleware)

	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	uiPath := filepath.Join("web", "ui")
	if _, err := os.Stat(filepath.Join(uiPath, "index.html")); err != nil {
		logger.Warn("api: ui index missing", "path", filepath.Join(uiPath, "index.html"), "error", err)
	}
	fileServer := http.FileServer(http.Dir(uiPath))
	s.router.Get("/ui", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/ui/", http.StatusMovedPermanently)
	})
	s.router.Get("/ui/*", func(w http.ResponseWriter, r *http.Request) {
		trimmed := strings.TrimPrefix(r.URL.Path, "/ui/")
		if trimmed == "" || trimmed == "/" {
			http.ServeFile(w, r, filepath.Join(uiPath, "index.html"))
			return
		}
		http.StripPrefix("/ui/", fileServer).ServeHTTP(w, r)
	})
	s.router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/ui/", http.StatusFound)
	})

	s.router.Post("/v1/auth/register", s.handleRegister)
	s.router.Post("/v1/auth/login", s.handleLogin)

	s.router.Get("/v1/clients", s.handleListClients)
	s.router.Post("/v1/clients", s.handleCreateClient)
	s.router.Get("/v1/clients/{id}", s.handleGetClient)
	s.router.Delete("/v1/clients/{id}", s.handleDeleteClient)
	s.router.Get("/v1/clients/{id}/documents", s.handleListDocuments)
	s.router.Post("/v1/clients/{id}/documents", s.handleUploadDocument)
	s.router.Delete("/v1/documents/{id}", s.handleDeleteDocument)

	s.router.Get("/v1/properties", s.handleListProperties)
	s.router.Post("/v1/properties", s.handleCreateProperty)

	s.router.Post("/v1/generate", s.handleGenerate)

	s.router.Get("/v1/sessions", s.handleListSessions)
	s.router.Get("/v1/sessions/{id}", s.handleGetSession)
	s.router.Patch("/v1/sessions/{id}", s.handleRenameSession)
	s.router.Delete("/v1/sessions/{id}", s.handleDeleteSession)

	s.router.Patch("/v1/ideas/{id}", s.handleUpdateIdea)
	s.router.Post("/v1/ideas/{id}/image", s.handleUploadIdeaImage)
	s.router.Delete("/v1/ideas/{id}/image", s.handleClearIdeaImage)
	s.router.Put("/v1/ideas/{id}/rating", s.handleRateIdea)
	s.router.Get("/v1/ideas/{id}/ratings", s.handleListRatings)

	s.router.Get("/v1/search", s.handleSearch)
	s.router.Get("/v1/logs", s.handleLogs)
}

func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"entries": common.LogEntries()})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, err error) {
	logger := common.Logger()
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "status", status, "error", err)
	} else {
		logger.Warn("request failed", "status", status, "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// writeStoreError maps store lookup failures onto 404 vs 500.
func writeStoreError(w http.ResponseWriter, err error, notFoundMsg string) {
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, errors.New(notFoundMsg))
		return
	}
	writeError(w, http.StatusInternalServerError, err)
}
