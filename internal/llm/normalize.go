package llm

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// Idea is one normalized idea from a model response.
type Idea struct {
	Title       string   `json:"title"`
	Overview    string   `json:"overview"`
	Features    []string `json:"features"`
	BrandFit    string   `json:"brand_fit"`
	ImagePrompt string   `json:"image_prompt"`
}

var fencedBlock = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")

// ExtractIdeas normalizes raw model output into an idea list. Models are
// asked for a bare JSON array but routinely wrap it in prose or a fenced
// code block, so extraction tries three strategies in order:
//
//  1. the inner content of the first fenced block,
//  2. the span from the first '[' to the last ']',
//  3. the raw text verbatim.
//
// Only after the chosen candidate fails to parse as a JSON array does this
// return a ParseError.
func ExtractIdeas(raw string) ([]Idea, error) {
	candidate := strings.TrimSpace(raw)
	if match := fencedBlock.FindStringSubmatch(candidate); match != nil {
		candidate = strings.TrimSpace(match[1])
	} else if start := strings.IndexByte(candidate, '['); start >= 0 {
		if end := strings.LastIndexByte(candidate, ']'); end > start {
			candidate = candidate[start : end+1]
		}
	}

	var parsed interface{}
	if err := json.Unmarshal([]byte(candidate), &parsed); err != nil {
		return nil, &ParseError{Kind: KindUnparseableOutput, Err: err}
	}
	elements, ok := parsed.([]interface{})
	if !ok {
		return nil, &ParseError{Kind: KindUnparseableOutput, Err: fmt.Errorf("model output is not a JSON array")}
	}

	ideas := make([]Idea, 0, len(elements))
	for _, element := range elements {
		fields, _ := element.(map[string]interface{})
		ideas = append(ideas, mapIdea(fields))
	}
	return ideas, nil
}

// mapIdea coerces one array element defensively: missing title becomes
// "Untitled Idea", missing strings become "", features becomes [] unless it
// is an array. Downstream consumers tolerate empty strings.
func mapIdea(fields map[string]interface{}) Idea {
	idea := Idea{
		Title:       stringField(fields, "title"),
		Overview:    stringField(fields, "overview"),
		BrandFit:    stringField(fields, "brand_fit"),
		ImagePrompt: stringField(fields, "image_prompt"),
		Features:    []string{},
	}
	if idea.Title == "" {
		idea.Title = "Untitled Idea"
	}
	if raw, ok := fields["features"].([]interface{}); ok {
		for _, item := range raw {
			if s, ok := item.(string); ok {
				idea.Features = append(idea.Features, s)
			} else {
				idea.Features = append(idea.Features, fmt.Sprint(item))
			}
		}
	}
	return idea
}

func stringField(fields map[string]interface{}, key string) string {
	if fields == nil {
		return ""
	}
	if s, ok := fields[key].(string); ok {
		return s
	}
	return ""
}
