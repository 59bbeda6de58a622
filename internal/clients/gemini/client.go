// Package gemini provides a client for the Google Gemini API
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"github.com/bobmcallan/lexicon/internal/common"
	"github.com/bobmcallan/lexicon/internal/interfaces"
)

const (
	DefaultModel     = "gemini-2.0-flash"
	DefaultRateLimit = 2 // requests per second
	DefaultTimeout   = 30 * time.Second
)

// ErrMissingAPIKey is returned when no API key is configured.
var ErrMissingAPIKey = errors.New("gemini api key is not configured")

// Compile-time interface check
var _ interfaces.GeminiClient = (*Client)(nil)

// generateFunc performs one upstream call. Swapped out in tests.
type generateFunc func(ctx context.Context, model, prompt string) (*genai.GenerateContentResponse, error)

// Client implements the GeminiClient interface
type Client struct {
	generate generateFunc
	model    string
	timeout  time.Duration
	limiter  *rate.Limiter
	logger   *common.Logger
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithModel sets the model to use
func WithModel(model string) ClientOption {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

// WithRateLimit sets requests per second
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		if requestsPerSecond > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
		}
	}
}

// WithTimeout bounds each generation call
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a new Gemini client
func NewClient(ctx context.Context, apiKey string, opts ...ClientOption) (*Client, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	genaiClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return newClient(func(ctx context.Context, model, prompt string) (*genai.GenerateContentResponse, error) {
		return genaiClient.Models.GenerateContent(ctx, model, genai.Text(prompt), nil)
	}, opts...), nil
}

func newClient(gen generateFunc, opts ...ClientOption) *Client {
	c := &Client{
		generate: gen,
		model:    DefaultModel,
		timeout:  DefaultTimeout,
		limiter:  rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:   common.NewSilentLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Model returns the configured model name
func (c *Client) Model() string {
	return c.model
}

// GenerateContent generates text from a prompt
func (c *Client) GenerateContent(ctx context.Context, prompt string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	c.logger.Debug().Str("model", c.model).Msg("Generating content")
	start := time.Now()

	result, err := c.generate(ctx, c.model, prompt)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	text, err := extractTextFromResponse(result)
	if err != nil {
		return "", err
	}
	c.logger.Debug().Str("model", c.model).Dur("elapsed", time.Since(start)).Int("chars", len(text)).Msg("Content generated")
	return text, nil
}

// GenerateExample generates a practical usage example for a term
func (c *Client) GenerateExample(ctx context.Context, term string) (string, error) {
	return c.GenerateContent(ctx, BuildExamplePrompt(term))
}

// BuildExamplePrompt builds the example generation prompt for a term
func BuildExamplePrompt(term string) string {
	return fmt.Sprintf("You are an AI expert. Generate a practical example of how to use the AI term: %s. "+
		"The example should be clear, concise, and easy to understand.", term)
}

// extractTextFromResponse extracts text from a generate content response
func extractTextFromResponse(result *genai.GenerateContentResponse) (string, error) {
	if result == nil || len(result.Candidates) == 0 || result.Candidates[0].Content == nil || len(result.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no content generated")
	}

	var sb strings.Builder
	for _, part := range result.Candidates[0].Content.Parts {
		if part != nil && part.Text != "" {
			sb.WriteString(part.Text)
		}
	}
	if strings.TrimSpace(sb.String()) == "" {
		return "", fmt.Errorf("no content generated")
	}

	return sb.String(), nil
}
