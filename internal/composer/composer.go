// Package composer holds the generation form state and turns it into a
// multipart submission against the generate endpoint. It is the Go client
// counterpart to the server pipeline, used by programmatic callers and the
// UI shim alike.
package composer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/sponsorworks/ideaforge/internal/common"
	"github.com/sponsorworks/ideaforge/internal/prompt"
)

// State is the composer's request lifecycle.
type State int

const (
	StateIdle State = iota
	StateGenerating
	StateResult
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateGenerating:
		return "generating"
	case StateResult:
		return "result"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// ValidationError annotates which sub-form blocked submission.
type ValidationError struct {
	Section string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Section, e.Message)
}

// SessionFile is an uploaded-but-not-yet-submitted one-off document.
type SessionFile struct {
	Name string
	Data []byte
}

// ClientOption is one selectable client shown by the form.
type ClientOption struct {
	ID   string
	Name string
}

// GeneratedIdea mirrors the idea objects in a generate response.
type GeneratedIdea struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Overview    string   `json:"overview"`
	Features    []string `json:"features"`
	BrandFit    string   `json:"brand_fit"`
	ImagePrompt string   `json:"image_prompt"`
}

type generateResult struct {
	SessionID string          `json:"session_id"`
	Ideas     []GeneratedIdea `json:"ideas"`
	Error     string          `json:"error"`
}

// Composer accumulates selections across the form's sections and submits
// them in one request. All methods are safe for concurrent use.
type Composer struct {
	endpoint string
	client   *http.Client

	mu               sync.Mutex
	state            State
	clients          []ClientOption
	clientID         string
	propertyIDs      []string
	lane             prompt.Lane
	techModifiers    []string
	audienceModifier string
	platformModifier string
	budgetTier       string
	contentStyle     string
	aiModel          string
	numIdeas         int
	files            []SessionFile

	sessionID string
	ideas     []GeneratedIdea
	lastError string
}

// New builds a composer targeting the given generate endpoint URL.
func New(endpoint string, client *http.Client) *Composer {
	if client == nil {
		client = http.DefaultClient
	}
	return &Composer{
		endpoint: endpoint,
		client:   client,
		state:    StateIdle,
		numIdeas: 3,
	}
}

// State returns the current lifecycle state.
func (c *Composer) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// LastError returns the message from the most recent failed submission.
func (c *Composer) LastError() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastError
}

// Results returns the session id and ideas from the last successful run.
func (c *Composer) Results() (string, []GeneratedIdea) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ideas := make([]GeneratedIdea, len(c.ideas))
	copy(ideas, c.ideas)
	return c.sessionID, ideas
}

// SetClients replaces the selectable client list, kept sorted by name.
func (c *Composer) SetClients(clients []ClientOption) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clients = make([]ClientOption, len(clients))
	copy(c.clients, clients)
	sort.Slice(c.clients, func(i, j int) bool {
		return strings.ToLower(c.clients[i].Name) < strings.ToLower(c.clients[j].Name)
	})
}

// AddClient inserts a newly created client at its sorted position and
// selects it.
func (c *Composer) AddClient(client ClientOption) {
	c.mu.Lock()
	defer c.mu.Unlock()
	at := sort.Search(len(c.clients), func(i int) bool {
		return strings.ToLower(c.clients[i].Name) >= strings.ToLower(client.Name)
	})
	c.clients = append(c.clients, ClientOption{})
	copy(c.clients[at+1:], c.clients[at:])
	c.clients[at] = client
	c.clientID = client.ID
}

// Clients returns the sorted selectable client list.
func (c *Composer) Clients() []ClientOption {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]ClientOption, len(c.clients))
	copy(out, c.clients)
	return out
}

// SelectClient records the chosen client.
func (c *Composer) SelectClient(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clientID = strings.TrimSpace(id)
}

// ToggleProperty adds or removes a property from the selection.
func (c *Composer) ToggleProperty(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, existing := range c.propertyIDs {
		if existing == id {
			c.propertyIDs = append(c.propertyIDs[:i], c.propertyIDs[i+1:]...)
			return
		}
	}
	c.propertyIDs = append(c.propertyIDs, id)
}

// SelectLane records the chosen idea lane.
func (c *Composer) SelectLane(lane prompt.Lane) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lane = lane
}

// SetModifiers records the optional prompt refinements.
func (c *Composer) SetModifiers(tech []string, audience, platform, budget string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.techModifiers = append([]string(nil), tech...)
	c.audienceModifier = strings.TrimSpace(audience)
	c.platformModifier = strings.TrimSpace(platform)
	c.budgetTier = strings.TrimSpace(budget)
}

// SetStyle records the output style as "name:intensity".
func (c *Composer) SetStyle(style string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.contentStyle = strings.TrimSpace(style)
}

// SetModel records the backend identifier to request.
func (c *Composer) SetModel(model string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.aiModel = strings.TrimSpace(model)
}

// SetNumIdeas records how many ideas to request.
func (c *Composer) SetNumIdeas(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.numIdeas = n
}

// AttachFile stages a one-off document for the next submission.
func (c *Composer) AttachFile(name string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.files = append(c.files, SessionFile{Name: name, Data: append([]byte(nil), data...)})
}

// Files returns the staged one-off documents.
func (c *Composer) Files() []SessionFile {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]SessionFile, len(c.files))
	copy(out, c.files)
	return out
}

// Validate checks the selection state locally. Failures never reach the
// network; the returned error names the sub-form that blocked submission.
func (c *Composer) Validate() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.validateLocked()
}

func (c *Composer) validateLocked() error {
	if c.clientID == "" {
		return &ValidationError{Section: "client", Message: "select a client"}
	}
	if len(c.propertyIDs) == 0 {
		return &ValidationError{Section: "properties", Message: "select at least one property"}
	}
	if c.lane == "" {
		return &ValidationError{Section: "lane", Message: "select an idea lane"}
	}
	if !c.lane.Valid() {
		return &ValidationError{Section: "lane", Message: fmt.Sprintf("unknown lane: %s", c.lane)}
	}
	if c.numIdeas < 1 || c.numIdeas > 10 {
		return &ValidationError{Section: "count", Message: "idea count must be between 1 and 10"}
	}
	return nil
}

// Generate validates, packages, and submits the current selections. On
// success the composer moves to the result state; on failure it returns to
// idle with the error recorded, leaving the form re-submittable.
func (c *Composer) Generate(ctx context.Context) (string, []GeneratedIdea, error) {
	logger := common.Logger()
	c.mu.Lock()
	if c.state == StateGenerating {
		c.mu.Unlock()
		return "", nil, errors.New("generation already in progress")
	}
	if err := c.validateLocked(); err != nil {
		c.mu.Unlock()
		return "", nil, err
	}
	body, contentType, err := c.packageLocked()
	if err != nil {
		c.mu.Unlock()
		return "", nil, err
	}
	c.state = StateGenerating
	c.lastError = ""
	endpoint := c.endpoint
	client := c.client
	c.mu.Unlock()

	sessionID, ideas, err := submit(ctx, client, endpoint, contentType, body)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.state = StateIdle
		c.lastError = err.Error()
		logger.Warn("composer: generation failed", "error", err)
		return "", nil, err
	}
	c.state = StateResult
	c.sessionID = sessionID
	c.ideas = ideas
	logger.Info("composer: generation succeeded", "session", sessionID, "ideas", len(ideas))
	return sessionID, ideas, nil
}

// packageLocked renders the selections into a multipart body. Files go out
// as indexed parts with an explicit count field so the receiver can iterate
// without relying on part enumeration order.
func (c *Composer) packageLocked() (*bytes.Buffer, string, error) {
	body := &bytes.Buffer{}
	form := multipart.NewWriter(body)
	fields := map[string]string{
		"client_id":         c.clientID,
		"idea_lane":         string(c.lane),
		"num_ideas":         strconv.Itoa(c.numIdeas),
		"content_style":     c.contentStyle,
		"audience_modifier": c.audienceModifier,
		"platform_modifier": c.platformModifier,
		"budget_tier":       c.budgetTier,
		"ai_model":          c.aiModel,
	}
	propertyIDs, err := json.Marshal(c.propertyIDs)
	if err != nil {
		return nil, "", fmt.Errorf("encode property ids: %w", err)
	}
	fields["property_ids"] = string(propertyIDs)
	if len(c.techModifiers) > 0 {
		tech, err := json.Marshal(c.techModifiers)
		if err != nil {
			return nil, "", fmt.Errorf("encode tech modifiers: %w", err)
		}
		fields["tech_modifiers"] = string(tech)
	}
	fields["session_file_count"] = strconv.Itoa(len(c.files))
	for key, value := range fields {
		if value == "" {
			continue
		}
		if err := form.WriteField(key, value); err != nil {
			return nil, "", fmt.Errorf("write field %s: %w", key, err)
		}
	}
	for i, file := range c.files {
		part, err := form.CreateFormFile(fmt.Sprintf("session_file_%d", i), file.Name)
		if err != nil {
			return nil, "", fmt.Errorf("create file part: %w", err)
		}
		if _, err := part.Write(file.Data); err != nil {
			return nil, "", fmt.Errorf("write file part: %w", err)
		}
	}
	if err := form.Close(); err != nil {
		return nil, "", fmt.Errorf("finalize form: %w", err)
	}
	return body, form.FormDataContentType(), nil
}

func submit(ctx context.Context, client *http.Client, endpoint, contentType string, body io.Reader) (string, []GeneratedIdea, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return "", nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	resp, err := client.Do(req)
	if err != nil {
		return "", nil, fmt.Errorf("submit generation: %w", err)
	}
	defer resp.Body.Close()
	var result generateResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", nil, fmt.Errorf("decode response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		message := result.Error
		if message == "" {
			message = resp.Status
		}
		return "", nil, errors.New(message)
	}
	return result.SessionID, result.Ideas, nil
}

// Reset returns to the idle state and discards all selections, staged files,
// and results.
func (c *Composer) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = StateIdle
	c.clientID = ""
	c.propertyIDs = nil
	c.lane = ""
	c.techModifiers = nil
	c.audienceModifier = ""
	c.platformModifier = ""
	c.budgetTier = ""
	c.contentStyle = ""
	c.aiModel = ""
	c.numIdeas = 3
	c.files = nil
	c.sessionID = ""
	c.ideas = nil
	c.lastError = ""
}
