package llm

import (
	"context"
	"errors"
	"fmt"
)

// Usage is the provider-reported token accounting for one call. A zero
// TotalTokens means the provider did not report usage and the caller should
// fall back to its pre-call estimate.
type Usage struct {
	PromptTokens     int64
	CompletionTokens int64
	TotalTokens      int64
}

// Result is the raw text output of one model call plus its usage.
type Result struct {
	Text  string
	Usage Usage
}

// Client abstracts a vision-capable LLM provider. Implementations must be
// safe for concurrent use. The model parameter selects one of the
// provider's candidates; the fallback ordering lives in the gateway, not
// here.
type Client interface {
	// GenerateWithImage sends a prompt plus inline image data to the given
	// model and returns its raw text output.
	GenerateWithImage(ctx context.Context, model, prompt string, image []byte, mimeType string) (*Result, error)
	// GenerateText sends a text-only prompt to the given model.
	GenerateText(ctx context.Context, model, prompt string) (*Result, error)
	// SourceName returns a short provider label for logs (e.g. "Gemini").
	SourceName() string
}

// APIError is a non-2xx upstream response. The gateway uses the status code
// to classify failures; Message carries the provider's error text for
// server-side logs only.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (status %d): %s", e.StatusCode, e.Message)
}

// StatusOf returns the HTTP status of err when it is an APIError, else 0.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}
