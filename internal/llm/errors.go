package llm

import "fmt"

// Configuration error kinds.
const (
	KindMissingAPIKey  = "missing_api_key"
	KindUnknownBackend = "unknown_backend"
)

// ConfigurationError reports an operator-actionable routing problem, such as
// a requested backend without its credential. It is fatal to the request and
// never triggers a silent fallback to another backend.
type ConfigurationError struct {
	Backend string
	Kind    string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("llm backend %s: %s", e.Backend, e.Kind)
}

// KindUnparseableOutput marks model output that survived none of the three
// extraction strategies.
const KindUnparseableOutput = "unparseable_model_output"

// ParseError reports model output that could not be normalized into an idea
// list. Callers surface a generic retry message; no automatic retry happens.
type ParseError struct {
	Kind string
	Err  error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("normalize model output: %s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("normalize model output: %s", e.Kind)
}

func (e *ParseError) Unwrap() error { return e.Err }
