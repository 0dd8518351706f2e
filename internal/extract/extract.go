// Package extract converts uploaded PDF, DOCX, and plain-text files into
// UTF-8 text bounded to a caller-specified ceiling.
package extract

import (
	"bytes"
	"fmt"
	"strings"

	docx "github.com/fumiama/go-docx"
	"github.com/ledongthuc/pdf"
)

// Character ceilings applied before prompt assembly. Persistent brand
// documents get a tighter ceiling than one-off session uploads.
const (
	ClientDocumentLimit = 15000
	SessionFileLimit    = 20000
)

// TruncationMarker is appended whenever extracted text is cut at a ceiling.
const TruncationMarker = "\n\n[truncated]"

// Extraction failure kinds.
const (
	KindPDFParseFailed  = "pdf_parse_failed"
	KindDocxParseFailed = "docx_parse_failed"
	KindUnsupportedType = "unsupported_type"
)

// ExtractionError reports a per-document failure. Callers treat these as
// non-fatal: skip the document, log, continue.
type ExtractionError struct {
	Name string
	Kind string
	Err  error
}

func (e *ExtractionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("extract %s: %s: %v", e.Name, e.Kind, e.Err)
	}
	return fmt.Sprintf("extract %s: %s", e.Name, e.Kind)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// Text extracts plain text from data according to the declared file type and
// truncates it to limit characters.
func Text(name, fileType string, data []byte, limit int) (string, error) {
	switch strings.ToLower(strings.TrimSpace(fileType)) {
	case "pdf":
		text, err := pdfText(data)
		if err != nil {
			return "", &ExtractionError{Name: name, Kind: KindPDFParseFailed, Err: err}
		}
		return Truncate(text, limit), nil
	case "docx", "doc":
		text, err := docxText(data)
		if err != nil {
			return "", &ExtractionError{Name: name, Kind: KindDocxParseFailed, Err: err}
		}
		return Truncate(text, limit), nil
	case "txt":
		return Truncate(strings.ToValidUTF8(string(data), ""), limit), nil
	default:
		return "", &ExtractionError{Name: name, Kind: KindUnsupportedType}
	}
}

// Truncate cuts text to limit characters and appends the truncation marker.
// The cut is a plain character cut, no sentence-boundary search.
func Truncate(text string, limit int) string {
	if limit <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + TruncationMarker
}

func pdfText(data []byte) (text string, err error) {
	// The pdf package panics on some malformed inputs; recover so a corrupt
	// document stays a per-document error.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf reader panic: %v", r)
		}
	}()
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	plain, err := reader.GetPlainText()
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(plain); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func docxText(data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("docx reader panic: %v", r)
		}
	}()
	doc, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	var builder strings.Builder
	for _, item := range doc.Document.Body.Items {
		paragraph, ok := item.(*docx.Paragraph)
		if !ok {
			continue
		}
		for _, child := range paragraph.Children {
			run, ok := child.(*docx.Run)
			if !ok {
				continue
			}
			for _, runChild := range run.Children {
				if t, ok := runChild.(*docx.Text); ok {
					builder.WriteString(t.Text)
				}
			}
		}
		builder.WriteString("\n")
	}
	return builder.String(), nil
}

// Document is one extracted document ready for prompt context.
type Document struct {
	Name string
	Text string
}

// BuildReferenceBlock concatenates extracted documents into one delimited
// context section with per-document headers. An empty list yields "" and the
// caller omits the section entirely.
func BuildReferenceBlock(docs []Document) string {
	if len(docs) == 0 {
		return ""
	}
	var builder strings.Builder
	builder.WriteString("=== REFERENCE DOCUMENTS ===\n")
	for i, doc := range docs {
		name := strings.TrimSpace(doc.Name)
		if name == "" {
			name = "untitled"
		}
		builder.WriteString(fmt.Sprintf("--- Document %d: %s ---\n", i+1, name))
		builder.WriteString(strings.TrimSpace(doc.Text))
		builder.WriteString("\n")
	}
	builder.WriteString("=== END REFERENCE DOCUMENTS ===")
	return builder.String()
}
