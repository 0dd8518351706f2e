package composer

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sponsorworks/ideaforge/internal/prompt"
)

func readyComposer(endpoint string) *Composer {
	c := New(endpoint, nil)
	c.SelectClient("client-1")
	c.ToggleProperty("prop-1")
	c.SelectLane(prompt.LaneDigital)
	return c
}

func TestValidateBlocksBeforeNetwork(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	c := New(server.URL, nil)
	cases := []struct {
		name    string
		prepare func(*Composer)
		section string
	}{
		{"no client", func(c *Composer) {}, "client"},
		{"no properties", func(c *Composer) { c.SelectClient("client-1") }, "properties"},
		{"no lane", func(c *Composer) { c.SelectClient("client-1"); c.ToggleProperty("p") }, "lane"},
		{"bad lane", func(c *Composer) {
			c.SelectClient("client-1")
			c.ToggleProperty("p")
			c.SelectLane("metaverse")
		}, "lane"},
		{"bad count", func(c *Composer) {
			c.SelectClient("client-1")
			c.ToggleProperty("p")
			c.SelectLane(prompt.LaneDigital)
			c.SetNumIdeas(11)
		}, "count"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c.Reset()
			tc.prepare(c)
			_, _, err := c.Generate(context.Background())
			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if vErr.Section != tc.section {
				t.Errorf("section = %s, want %s", vErr.Section, tc.section)
			}
			if called {
				t.Fatalf("validation failure reached the network")
			}
			if c.State() != StateIdle {
				t.Errorf("state = %s after validation failure", c.State())
			}
		})
	}
}

func TestGenerateLifecycle(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"session_id": "session-1",
			"ideas": []map[string]interface{}{
				{"id": "idea-1", "title": "One", "overview": "o", "features": []string{"f"}, "brand_fit": "b", "image_prompt": "i"},
			},
		})
	}))
	defer server.Close()

	c := readyComposer(server.URL)
	sessionID, ideas, err := c.Generate(context.Background())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if sessionID != "session-1" || len(ideas) != 1 || ideas[0].Title != "One" {
		t.Fatalf("result = %s %+v", sessionID, ideas)
	}
	if c.State() != StateResult {
		t.Errorf("state = %s, want result", c.State())
	}
	gotSession, gotIdeas := c.Results()
	if gotSession != "session-1" || len(gotIdeas) != 1 {
		t.Errorf("stored results = %s %+v", gotSession, gotIdeas)
	}
}

func TestGenerateFailureLeavesFormResubmittable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"error": "failed to generate ideas, please try again"})
	}))
	defer server.Close()

	c := readyComposer(server.URL)
	_, _, err := c.Generate(context.Background())
	if err == nil {
		t.Fatalf("expected error")
	}
	if c.State() != StateIdle {
		t.Errorf("state = %s after failure, want idle", c.State())
	}
	if c.LastError() != "failed to generate ideas, please try again" {
		t.Errorf("last error = %q", c.LastError())
	}

	// The selections survived; a retry is just another Generate call.
	if err := c.Validate(); err != nil {
		t.Errorf("selections lost after failure: %v", err)
	}
}

func TestPackagingFieldsAndFiles(t *testing.T) {
	var gotFields map[string]string
	var gotFiles map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(16 << 20); err != nil {
			t.Errorf("parse form: %v", err)
		}
		gotFields = map[string]string{}
		for key := range r.MultipartForm.Value {
			gotFields[key] = r.FormValue(key)
		}
		gotFiles = map[string]string{}
		for field, headers := range r.MultipartForm.File {
			src, _ := headers[0].Open()
			data, _ := io.ReadAll(src)
			src.Close()
			gotFiles[field] = headers[0].Filename + ":" + string(data)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{"session_id": "s", "ideas": []interface{}{}})
	}))
	defer server.Close()

	c := readyComposer(server.URL)
	c.ToggleProperty("prop-2")
	c.SetModifiers([]string{"AR", "AI"}, "students", "TikTok", "mid")
	c.SetStyle("techbro:4")
	c.SetModel("gemini")
	c.SetNumIdeas(5)
	c.AttachFile("notes.txt", []byte("river stage"))
	c.AttachFile("deck.txt", []byte("second file"))

	if _, _, err := c.Generate(context.Background()); err != nil {
		t.Fatalf("generate: %v", err)
	}

	want := map[string]string{
		"client_id":          "client-1",
		"property_ids":       `["prop-1","prop-2"]`,
		"idea_lane":          "digital",
		"num_ideas":          "5",
		"tech_modifiers":     `["AR","AI"]`,
		"audience_modifier":  "students",
		"platform_modifier":  "TikTok",
		"budget_tier":        "mid",
		"content_style":      "techbro:4",
		"ai_model":           "gemini",
		"session_file_count": "2",
	}
	for key, value := range want {
		if gotFields[key] != value {
			t.Errorf("field %s = %q, want %q", key, gotFields[key], value)
		}
	}
	if gotFiles["session_file_0"] != "notes.txt:river stage" {
		t.Errorf("session_file_0 = %q", gotFiles["session_file_0"])
	}
	if gotFiles["session_file_1"] != "deck.txt:second file" {
		t.Errorf("session_file_1 = %q", gotFiles["session_file_1"])
	}
}

func TestTogglePropertyRemovesOnRepeat(t *testing.T) {
	c := New("http://unused", nil)
	c.ToggleProperty("p1")
	c.ToggleProperty("p2")
	c.ToggleProperty("p1")
	c.SelectClient("client-1")
	c.SelectLane(prompt.LaneDigital)
	if err := c.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	c.ToggleProperty("p2")
	if err := c.Validate(); err == nil {
		t.Errorf("empty selection validated")
	}
}

func TestResetDiscardsEverything(t *testing.T) {
	c := readyComposer("http://unused")
	c.AttachFile("notes.txt", []byte("data"))
	c.SetNumIdeas(7)
	c.Reset()
	if c.State() != StateIdle {
		t.Errorf("state = %s after reset", c.State())
	}
	if len(c.Files()) != 0 {
		t.Errorf("files survived reset")
	}
	if err := c.Validate(); err == nil {
		t.Errorf("selections survived reset")
	}
	session, ideas := c.Results()
	if session != "" || len(ideas) != 0 {
		t.Errorf("results survived reset")
	}
}

func TestClientListSortedInsert(t *testing.T) {
	c := New("http://unused", nil)
	c.SetClients([]ClientOption{
		{ID: "3", Name: "Charlie"},
		{ID: "1", Name: "alpha"},
	})
	c.AddClient(ClientOption{ID: "2", Name: "Bravo"})
	clients := c.Clients()
	if len(clients) != 3 {
		t.Fatalf("clients = %d", len(clients))
	}
	if clients[0].Name != "alpha" || clients[1].Name != "Bravo" || clients[2].Name != "Charlie" {
		t.Errorf("order = %v", clients)
	}
}
