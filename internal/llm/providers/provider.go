// Package providers holds one client per hosted model backend. Each backend
// takes the assembled prompt plus a fixed system prompt and returns the raw
// completion text; response normalization happens in the llm package.
package providers

import "context"

// Backend is a single hosted model endpoint.
type Backend interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
	Name() string
}
