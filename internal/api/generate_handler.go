package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/sponsorworks/ideaforge/internal/auth"
	"github.com/sponsorworks/ideaforge/internal/common"
	"github.com/sponsorworks/ideaforge/internal/extract"
	"github.com/sponsorworks/ideaforge/internal/llm"
	"github.com/sponsorworks/ideaforge/internal/prompt"
	"github.com/sponsorworks/ideaforge/internal/store"
)

const maxUploadMemory = 64 << 20 // 64 MiB of in-memory file parts

// handleGenerate runs the full idea-generation pipeline: validate, fetch,
// extract, build the prompt, call the model, persist, respond.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	logger := common.Logger()
	ctx := r.Context()
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		logger.Warn("api: generate form parse failed", "error", err)
		writeError(w, http.StatusBadRequest, fmt.Errorf("failed to parse generation form: %w", err))
		return
	}
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}

	// Validation is fail-fast: required fields, then the num_ideas range,
	// then the requested backend's credential. The first failing check wins.
	clientID := strings.TrimSpace(r.FormValue("client_id"))
	if clientID == "" {
		writeError(w, http.StatusBadRequest, errors.New("client_id is required"))
		return
	}
	rawPropertyIDs := strings.TrimSpace(r.FormValue("property_ids"))
	if rawPropertyIDs == "" {
		writeError(w, http.StatusBadRequest, errors.New("property_ids is required"))
		return
	}
	var propertyIDs []string
	if err := json.Unmarshal([]byte(rawPropertyIDs), &propertyIDs); err != nil {
		writeError(w, http.StatusBadRequest, errors.New("property_ids must be a JSON string array"))
		return
	}
	lane := prompt.Lane(strings.TrimSpace(r.FormValue("idea_lane")))
	if lane == "" {
		writeError(w, http.StatusBadRequest, errors.New("idea_lane is required"))
		return
	}
	if !lane.Valid() {
		writeError(w, http.StatusBadRequest, fmt.Errorf("unknown idea_lane: %s", lane))
		return
	}
	rawNumIdeas := strings.TrimSpace(r.FormValue("num_ideas"))
	if rawNumIdeas == "" {
		writeError(w, http.StatusBadRequest, errors.New("num_ideas is required"))
		return
	}
	numIdeas, err := strconv.Atoi(rawNumIdeas)
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.New("num_ideas must be an integer"))
		return
	}
	if numIdeas < 1 || numIdeas > 10 {
		writeError(w, http.StatusBadRequest, errors.New("num_ideas must be between 1 and 10"))
		return
	}
	model := strings.TrimSpace(r.FormValue("ai_model"))
	if err := s.models.Available(model); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	var techModifiers []string
	if raw := strings.TrimSpace(r.FormValue("tech_modifiers")); raw != "" {
		if err := json.Unmarshal([]byte(raw), &techModifiers); err != nil {
			writeError(w, http.StatusBadRequest, errors.New("tech_modifiers must be a JSON string array"))
			return
		}
	}
	var talentNames []string
	if raw := strings.TrimSpace(r.FormValue("talent_names")); raw != "" {
		if err := json.Unmarshal([]byte(raw), &talentNames); err != nil {
			writeError(w, http.StatusBadRequest, errors.New("talent_names must be a JSON string array"))
			return
		}
	}
	contentStyle := strings.TrimSpace(r.FormValue("content_style"))
	audienceModifier := strings.TrimSpace(r.FormValue("audience_modifier"))
	platformModifier := strings.TrimSpace(r.FormValue("platform_modifier"))
	budgetTier := strings.TrimSpace(r.FormValue("budget_tier"))

	logger.Info("api: generate requested",
		"client", clientID, "properties", len(propertyIDs), "lane", string(lane),
		"num_ideas", numIdeas, "model", model)

	// The three entity fetches have no ordering dependency; run them
	// concurrently and join before proceeding.
	var (
		client     *store.Client
		properties []store.Property
		documents  []store.ClientDocument
	)
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		var err error
		client, err = s.store.ClientByID(groupCtx, clientID)
		return err
	})
	group.Go(func() error {
		var err error
		properties, err = s.store.PropertiesByIDs(groupCtx, propertyIDs)
		return err
	})
	group.Go(func() error {
		var err error
		documents, err = s.store.ClientDocuments(groupCtx, clientID)
		return err
	})
	if err := group.Wait(); err != nil {
		writeStoreError(w, err, "client_not_found")
		return
	}
	if len(properties) == 0 {
		writeError(w, http.StatusNotFound, errors.New("no_properties_found"))
		return
	}

	// Extraction failures are per-document and non-fatal: log, skip, keep
	// going. Only the model call and persistence can fail the request.
	var extracted []extract.Document
	for _, doc := range documents {
		data, err := s.blobs.Fetch(doc.FileURL)
		if err != nil {
			logger.Warn("api: client document fetch failed", "document", doc.Name, "error", err)
			continue
		}
		text, err := extract.Text(doc.Name, doc.FileType, data, extract.ClientDocumentLimit)
		if err != nil {
			logger.Warn("api: client document extraction failed", "document", doc.Name, "error", err)
			continue
		}
		extracted = append(extracted, extract.Document{Name: doc.Name, Text: text})
	}
	extracted = append(extracted, s.extractSessionFiles(r)...)

	propertyNames := make([]string, 0, len(properties))
	for _, property := range properties {
		propertyNames = append(propertyNames, property.Name)
	}
	promptText := prompt.Build(prompt.Input{
		ClientName:       client.Name,
		PropertyNames:    propertyNames,
		Lane:             lane,
		TechModifiers:    techModifiers,
		AudienceModifier: audienceModifier,
		PlatformModifier: platformModifier,
		BudgetTier:       budgetTier,
		TalentNames:      talentNames,
		NumIdeas:         numIdeas,
		DocumentContext:  extract.BuildReferenceBlock(extracted),
		Style:            prompt.ParseStyle(contentStyle),
	})

	generated, err := s.models.Generate(ctx, model, promptText)
	if err != nil {
		var confErr *llm.ConfigurationError
		if errors.As(err, &confErr) {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		logger.Error("api: generation failed", "error", err)
		writeError(w, http.StatusInternalServerError, errors.New("failed to generate ideas, please try again"))
		return
	}
	if len(generated) != numIdeas {
		// Models under- and over-generate; persist what came back and let
		// the caller decide.
		logger.Warn("api: idea count mismatch", "requested", numIdeas, "returned", len(generated))
	}

	newIdeas := make([]store.NewIdea, 0, len(generated))
	for _, idea := range generated {
		newIdeas = append(newIdeas, store.NewIdea{
			Title:       idea.Title,
			Overview:    idea.Overview,
			Features:    idea.Features,
			BrandFit:    idea.BrandFit,
			ImagePrompt: idea.ImagePrompt,
		})
	}
	newSession := store.NewSession{
		ClientID:         clientID,
		PropertyIDs:      propertyIDs,
		IdeaLane:         string(lane),
		TechModifiers:    techModifiers,
		AudienceModifier: audienceModifier,
		PlatformModifier: platformModifier,
		BudgetTier:       budgetTier,
		ContentStyle:     contentStyle,
		AIModel:          model,
		NumIdeas:         numIdeas,
		Name:             strings.TrimSpace(r.FormValue("session_name")),
	}
	if identity := auth.CurrentIdentity(r); identity != nil {
		newSession.UserID = identity.UserID
	}
	session, ideas, err := s.store.CreateSessionWithIdeas(ctx, newSession, newIdeas)
	if err != nil {
		logger.Error("api: session persistence failed", "error", err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	logger.Info("api: generate succeeded", "session", session.ID, "ideas", len(ideas))
	writeJSON(w, http.StatusOK, generateResponse{SessionID: session.ID, Ideas: ideas})
}

// extractSessionFiles pulls the indexed one-off uploads out of the multipart
// form. The explicit count field lets the receiver iterate without relying
// on part enumeration order.
func (s *Server) extractSessionFiles(r *http.Request) []extract.Document {
	logger := common.Logger()
	count := 0
	if raw := strings.TrimSpace(r.FormValue("session_file_count")); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			count = parsed
		}
	}
	var docs []extract.Document
	for i := 0; i < count; i++ {
		field := fmt.Sprintf("session_file_%d", i)
		headers := r.MultipartForm.File[field]
		if len(headers) == 0 {
			logger.Warn("api: session file missing", "field", field)
			continue
		}
		header := headers[0]
		src, err := header.Open()
		if err != nil {
			logger.Warn("api: session file open failed", "file", header.Filename, "error", err)
			continue
		}
		data, err := io.ReadAll(src)
		src.Close()
		if err != nil {
			logger.Warn("api: session file read failed", "file", header.Filename, "error", err)
			continue
		}
		fileType := strings.TrimPrefix(strings.ToLower(filepath.Ext(header.Filename)), ".")
		text, err := extract.Text(header.Filename, fileType, data, extract.SessionFileLimit)
		if err != nil {
			logger.Warn("api: session file extraction failed", "file", header.Filename, "error", err)
			continue
		}
		docs = append(docs, extract.Document{Name: header.Filename, Text: text})
	}
	return docs
}
