package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sponsorworks/ideaforge/internal/llm"
	"github.com/sponsorworks/ideaforge/internal/store"
)

func doJSON(t *testing.T, srv *Server, method, path string, payload interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()
	var body *bytes.Buffer
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewBuffer(data)
	} else {
		body = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func TestClientEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/v1/clients", createClientRequest{Name: "Acme", Domain: "acme.example"}, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d body = %s", rec.Code, rec.Body.String())
	}
	var client store.Client
	if err := json.Unmarshal(rec.Body.Bytes(), &client); err != nil {
		t.Fatalf("decode client: %v", err)
	}

	rec = doJSON(t, srv, http.MethodPost, "/v1/clients", createClientRequest{Name: "  "}, "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("blank name status = %d", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodGet, "/v1/clients/"+client.ID, nil, "")
	if rec.Code != http.StatusOK {
		t.Errorf("get status = %d", rec.Code)
	}
	rec = doJSON(t, srv, http.MethodGet, "/v1/clients/missing", nil, "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing get status = %d", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodGet, "/v1/clients", nil, "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), client.ID) {
		t.Errorf("list = %d %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, srv, http.MethodDelete, "/v1/clients/"+client.ID, nil, "")
	if rec.Code != http.StatusNoContent {
		t.Errorf("delete status = %d", rec.Code)
	}
}

func TestDeleteClientWithSessionsBlocked(t *testing.T) {
	srv, st := newTestServer(t)
	clientID, _ := seedClientAndProperty(t, st)
	if _, _, err := st.CreateSessionWithIdeas(context.Background(), store.NewSession{
		ClientID: clientID, PropertyIDs: []string{"p"}, IdeaLane: "digital", NumIdeas: 1,
	}, nil); err != nil {
		t.Fatalf("seed session: %v", err)
	}

	rec := doJSON(t, srv, http.MethodDelete, "/v1/clients/"+clientID, nil, "")
	if rec.Code != http.StatusConflict {
		t.Fatalf("delete status = %d, want conflict", rec.Code)
	}
	if _, err := st.ClientByID(context.Background(), clientID); err != nil {
		t.Errorf("client removed despite conflict: %v", err)
	}
}

func TestPropertyEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/v1/properties", createPropertyRequest{Name: "Metro League", Category: "league"}, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d body = %s", rec.Code, rec.Body.String())
	}
	var league store.Property
	if err := json.Unmarshal(rec.Body.Bytes(), &league); err != nil {
		t.Fatalf("decode property: %v", err)
	}

	rec = doJSON(t, srv, http.MethodPost, "/v1/properties", createPropertyRequest{Name: "River City FC", Category: "team", ParentID: league.ID}, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("create child status = %d body = %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, srv, http.MethodPost, "/v1/properties", createPropertyRequest{Name: "Bad", Category: "stadium"}, "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("invalid category status = %d", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodGet, "/v1/properties", nil, "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Metro League") {
		t.Errorf("list = %d %s", rec.Code, rec.Body.String())
	}
}

func TestDocumentUploadAndDelete(t *testing.T) {
	srv, st := newTestServer(t)
	clientID, _ := seedClientAndProperty(t, st)

	body := &bytes.Buffer{}
	form := multipart.NewWriter(body)
	part, _ := form.CreateFormFile("file", "brief.txt")
	part.Write([]byte("Brand loves rivers."))
	form.Close()
	req := httptest.NewRequest(http.MethodPost, "/v1/clients/"+clientID+"/documents", body)
	req.Header.Set("Content-Type", form.FormDataContentType())
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("upload status = %d body = %s", rec.Code, rec.Body.String())
	}
	var doc store.ClientDocument
	if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
		t.Fatalf("decode document: %v", err)
	}
	if doc.FileType != "txt" || doc.FileSize != int64(len("Brand loves rivers.")) {
		t.Errorf("document = %+v", doc)
	}
	if _, err := srv.blobs.Fetch(doc.FileURL); err != nil {
		t.Errorf("blob missing after upload: %v", err)
	}

	rec = doJSON(t, srv, http.MethodGet, "/v1/clients/"+clientID+"/documents", nil, "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), doc.ID) {
		t.Errorf("list = %d %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, srv, http.MethodDelete, "/v1/documents/"+doc.ID, nil, "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", rec.Code)
	}
	if _, err := srv.blobs.Fetch(doc.FileURL); err == nil {
		t.Errorf("blob survived document delete")
	}
}

func TestDocumentUploadRejectsUnsupportedType(t *testing.T) {
	srv, st := newTestServer(t)
	clientID, _ := seedClientAndProperty(t, st)

	body := &bytes.Buffer{}
	form := multipart.NewWriter(body)
	part, _ := form.CreateFormFile("file", "deck.pptx")
	part.Write([]byte("slides"))
	form.Close()
	req := httptest.NewRequest(http.MethodPost, "/v1/clients/"+clientID+"/documents", body)
	req.Header.Set("Content-Type", form.FormDataContentType())
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("pptx upload status = %d", rec.Code)
	}
}

func TestSessionEndpoints(t *testing.T) {
	backend := &scriptedBackend{response: ideasJSON(2)}
	srv, st := newTestServer(t, llm.WithBackend(llm.BackendClaude, backend))
	clientID, propertyID := seedClientAndProperty(t, st)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, validForm(clientID, propertyID).request(t))
	if rec.Code != http.StatusOK {
		t.Fatalf("generate status = %d", rec.Code)
	}
	var generated generateResponse
	json.Unmarshal(rec.Body.Bytes(), &generated)

	rec = doJSON(t, srv, http.MethodGet, "/v1/sessions?client_id="+clientID, nil, "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), generated.SessionID) {
		t.Errorf("list = %d %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, srv, http.MethodGet, "/v1/sessions/"+generated.SessionID, nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}
	var detail sessionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &detail); err != nil {
		t.Fatalf("decode session: %v", err)
	}
	if len(detail.Ideas) != 2 {
		t.Errorf("session ideas = %d", len(detail.Ideas))
	}

	rec = doJSON(t, srv, http.MethodPatch, "/v1/sessions/"+generated.SessionID, renameSessionRequest{Name: "Summer push"}, "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Summer push") {
		t.Errorf("rename = %d %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, srv, http.MethodDelete, "/v1/sessions/"+generated.SessionID, nil, "")
	if rec.Code != http.StatusNoContent {
		t.Errorf("delete status = %d", rec.Code)
	}
	rec = doJSON(t, srv, http.MethodGet, "/v1/sessions/"+generated.SessionID, nil, "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("deleted session get status = %d", rec.Code)
	}
}

func TestIdeaUpdateEndpoint(t *testing.T) {
	backend := &scriptedBackend{response: ideasJSON(1)}
	srv, st := newTestServer(t, llm.WithBackend(llm.BackendClaude, backend))
	clientID, propertyID := seedClientAndProperty(t, st)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, validForm(clientID, propertyID).request(t))
	var generated generateResponse
	json.Unmarshal(rec.Body.Bytes(), &generated)
	ideaID := generated.Ideas[0].ID

	title := "Edited title"
	rec = doJSON(t, srv, http.MethodPatch, "/v1/ideas/"+ideaID, updateIdeaRequest{Title: &title}, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d body = %s", rec.Code, rec.Body.String())
	}
	var updated store.Idea
	json.Unmarshal(rec.Body.Bytes(), &updated)
	if updated.Title != "Edited title" || updated.Overview != "overview" {
		t.Errorf("updated = %+v", updated)
	}

	blank := "  "
	rec = doJSON(t, srv, http.MethodPatch, "/v1/ideas/"+ideaID, updateIdeaRequest{Title: &blank}, "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("blank title status = %d", rec.Code)
	}
}

func TestIdeaEditOwnership(t *testing.T) {
	backend := &scriptedBackend{response: ideasJSON(1)}
	srv, st := newTestServer(t, llm.WithBackend(llm.BackendClaude, backend))
	clientID, propertyID := seedClientAndProperty(t, st)

	rec := doJSON(t, srv, http.MethodPost, "/v1/auth/register", registerRequest{Username: "owner", Password: "long-enough-pw"}, "")
	var owner authResponse
	json.Unmarshal(rec.Body.Bytes(), &owner)

	req := validForm(clientID, propertyID).request(t)
	req.Header.Set("Authorization", "Bearer "+owner.Token)
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	var generated generateResponse
	json.Unmarshal(rec.Body.Bytes(), &generated)
	ideaID := generated.Ideas[0].ID

	title := "Edited"
	rec = doJSON(t, srv, http.MethodPatch, "/v1/ideas/"+ideaID, updateIdeaRequest{Title: &title}, "")
	if rec.Code != http.StatusForbidden {
		t.Errorf("anonymous edit of owned idea status = %d", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodPost, "/v1/auth/register", registerRequest{Username: "other", Password: "long-enough-pw"}, "")
	var other authResponse
	json.Unmarshal(rec.Body.Bytes(), &other)
	rec = doJSON(t, srv, http.MethodPatch, "/v1/ideas/"+ideaID, updateIdeaRequest{Title: &title}, other.Token)
	if rec.Code != http.StatusForbidden {
		t.Errorf("non-owner edit status = %d", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodPatch, "/v1/ideas/"+ideaID, updateIdeaRequest{Title: &title}, owner.Token)
	if rec.Code != http.StatusOK {
		t.Errorf("owner edit status = %d body = %s", rec.Code, rec.Body.String())
	}

	// Admins can edit anyone's ideas.
	adminToken, err := srv.auth.IssueToken(owner.User.ID, store.RoleAdmin)
	if err != nil {
		t.Fatalf("issue admin token: %v", err)
	}
	rec = doJSON(t, srv, http.MethodPatch, "/v1/ideas/"+ideaID, updateIdeaRequest{Title: &title}, adminToken)
	if rec.Code != http.StatusOK {
		t.Errorf("admin edit status = %d", rec.Code)
	}
}

func TestRatingEndpoints(t *testing.T) {
	backend := &scriptedBackend{response: ideasJSON(1)}
	srv, st := newTestServer(t, llm.WithBackend(llm.BackendClaude, backend))
	clientID, propertyID := seedClientAndProperty(t, st)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, validForm(clientID, propertyID).request(t))
	var generated generateResponse
	json.Unmarshal(rec.Body.Bytes(), &generated)
	ideaID := generated.Ideas[0].ID

	// Rating requires an authenticated caller.
	rec = doJSON(t, srv, http.MethodPut, "/v1/ideas/"+ideaID+"/rating", rateIdeaRequest{Rating: 2}, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous rating status = %d", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodPost, "/v1/auth/register", registerRequest{Username: "casey", Password: "long-enough-pw"}, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("register status = %d body = %s", rec.Code, rec.Body.String())
	}
	var auth authResponse
	json.Unmarshal(rec.Body.Bytes(), &auth)

	rec = doJSON(t, srv, http.MethodPut, "/v1/ideas/"+ideaID+"/rating", rateIdeaRequest{Rating: 2, Comment: "decent"}, auth.Token)
	if rec.Code != http.StatusOK {
		t.Fatalf("rating status = %d body = %s", rec.Code, rec.Body.String())
	}

	// Re-rating overwrites rather than appending.
	rec = doJSON(t, srv, http.MethodPut, "/v1/ideas/"+ideaID+"/rating", rateIdeaRequest{Rating: 3}, auth.Token)
	if rec.Code != http.StatusOK {
		t.Fatalf("re-rating status = %d", rec.Code)
	}
	rec = doJSON(t, srv, http.MethodGet, "/v1/ideas/"+ideaID+"/ratings", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("ratings list status = %d", rec.Code)
	}
	var listed struct {
		Ratings []store.IdeaRating `json:"ratings"`
	}
	json.Unmarshal(rec.Body.Bytes(), &listed)
	if len(listed.Ratings) != 1 || listed.Ratings[0].Rating != 3 {
		t.Errorf("ratings = %+v", listed.Ratings)
	}

	rec = doJSON(t, srv, http.MethodPut, "/v1/ideas/"+ideaID+"/rating", rateIdeaRequest{Rating: 4}, auth.Token)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("out-of-range rating status = %d", rec.Code)
	}
}

func TestAuthEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/v1/auth/register", registerRequest{Username: "casey", Password: "short"}, "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("short password status = %d", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodPost, "/v1/auth/register", registerRequest{Username: "casey", Password: "long-enough-pw"}, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("register status = %d body = %s", rec.Code, rec.Body.String())
	}
	if strings.Contains(rec.Body.String(), "password_hash") {
		t.Errorf("password hash leaked in response")
	}

	rec = doJSON(t, srv, http.MethodPost, "/v1/auth/register", registerRequest{Username: "CASEY", Password: "long-enough-pw"}, "")
	if rec.Code != http.StatusConflict {
		t.Errorf("duplicate username status = %d", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodPost, "/v1/auth/login", loginRequest{Username: "casey", Password: "long-enough-pw"}, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d body = %s", rec.Code, rec.Body.String())
	}
	var auth authResponse
	json.Unmarshal(rec.Body.Bytes(), &auth)
	if auth.Token == "" || auth.User == nil {
		t.Errorf("auth response = %+v", auth)
	}

	rec = doJSON(t, srv, http.MethodPost, "/v1/auth/login", loginRequest{Username: "casey", Password: "wrong-password"}, "")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("bad password status = %d", rec.Code)
	}
	rec = doJSON(t, srv, http.MethodPost, "/v1/auth/login", loginRequest{Username: "nobody", Password: "whatever"}, "")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("unknown user status = %d", rec.Code)
	}
}

func TestSearchEndpoint(t *testing.T) {
	backend := &scriptedBackend{response: `[{"title": "River Rally", "overview": "festival", "features": [], "brand_fit": "", "image_prompt": ""}]`}
	srv, st := newTestServer(t, llm.WithBackend(llm.BackendClaude, backend))
	clientID, propertyID := seedClientAndProperty(t, st)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, validForm(clientID, propertyID).request(t))
	if rec.Code != http.StatusOK {
		t.Fatalf("generate status = %d", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodGet, "/v1/search?q=rally", nil, "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "River Rally") {
		t.Errorf("search = %d %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, srv, http.MethodGet, "/v1/search", nil, "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing query status = %d", rec.Code)
	}
	rec = doJSON(t, srv, http.MethodGet, "/v1/search?q=rally&limit=0", nil, "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad limit status = %d", rec.Code)
	}
}

func TestSessionRecordsUser(t *testing.T) {
	backend := &scriptedBackend{response: ideasJSON(1)}
	srv, st := newTestServer(t, llm.WithBackend(llm.BackendClaude, backend))
	clientID, propertyID := seedClientAndProperty(t, st)

	rec := doJSON(t, srv, http.MethodPost, "/v1/auth/register", registerRequest{Username: "casey", Password: "long-enough-pw"}, "")
	var auth authResponse
	json.Unmarshal(rec.Body.Bytes(), &auth)

	req := validForm(clientID, propertyID).request(t)
	req.Header.Set("Authorization", "Bearer "+auth.Token)
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("generate status = %d", rec.Code)
	}
	var generated generateResponse
	json.Unmarshal(rec.Body.Bytes(), &generated)

	session, err := st.SessionByID(context.Background(), generated.SessionID)
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	if !session.UserID.Valid || session.UserID.String != auth.User.ID {
		t.Errorf("session user = %+v, want %s", session.UserID, auth.User.ID)
	}
}

func TestNewServerRequiresSecret(t *testing.T) {
	st, err := store.Open(fmt.Sprintf("%s/test.db", t.TempDir()))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer st.Close()
	_, err = NewServer(st, llm.NewRouter(llm.Config{}), &Config{BlobRoot: t.TempDir(), JWTSecret: ""})
	if err == nil {
		t.Errorf("server constructed without jwt secret")
	}
}
