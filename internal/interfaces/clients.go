// Package interfaces defines client and service contracts for Lexicon
package interfaces

import (
	"context"
)

// GeminiClient provides access to the Gemini text generation API
type GeminiClient interface {
	// GenerateContent generates text from a prompt
	GenerateContent(ctx context.Context, prompt string) (string, error)

	// GenerateExample generates a practical usage example for a term name
	GenerateExample(ctx context.Context, term string) (string, error)
}

// AnalyticsSink receives fire-and-forget analytics events.
// Implementations must not block the caller and never report failures.
type AnalyticsSink interface {
	Track(event string, params map[string]string)
}
