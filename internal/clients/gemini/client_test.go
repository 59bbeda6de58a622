package gemini

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func textResponse(parts ...string) *genai.GenerateContentResponse {
	content := &genai.Content{Role: "model"}
	for _, p := range parts {
		content.Parts = append(content.Parts, &genai.Part{Text: p})
	}
	return &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{Content: content}}}
}

func TestBuildExamplePrompt(t *testing.T) {
	got := BuildExamplePrompt("Token")
	assert.Equal(t, "You are an AI expert. Generate a practical example of how to use the AI term: Token. "+
		"The example should be clear, concise, and easy to understand.", got)
}

func TestExtractTextFromResponse(t *testing.T) {
	text, err := extractTextFromResponse(textResponse("Hello, ", "world"))
	require.NoError(t, err)
	assert.Equal(t, "Hello, world", text)

	_, err = extractTextFromResponse(&genai.GenerateContentResponse{})
	assert.Error(t, err)

	_, err = extractTextFromResponse(nil)
	assert.Error(t, err)

	_, err = extractTextFromResponse(textResponse("  "))
	assert.Error(t, err, "whitespace only is not content")
}

func TestNewClient_RequiresAPIKey(t *testing.T) {
	_, err := NewClient(context.Background(), "")
	assert.True(t, errors.Is(err, ErrMissingAPIKey))
}

func TestGenerateExample_SendsPromptAndModel(t *testing.T) {
	var gotModel, gotPrompt string
	c := newClient(func(ctx context.Context, model, prompt string) (*genai.GenerateContentResponse, error) {
		gotModel, gotPrompt = model, prompt
		return textResponse("Example text"), nil
	}, WithModel("gemini-test"))

	out, err := c.GenerateExample(context.Background(), "Prompt Engineering")
	require.NoError(t, err)
	assert.Equal(t, "Example text", out)
	assert.Equal(t, "gemini-test", gotModel)
	assert.Contains(t, gotPrompt, "the AI term: Prompt Engineering.")
}

func TestGenerateContent_WrapsUpstreamError(t *testing.T) {
	upstream := errors.New("quota exceeded")
	c := newClient(func(ctx context.Context, model, prompt string) (*genai.GenerateContentResponse, error) {
		return nil, upstream
	})

	_, err := c.GenerateContent(context.Background(), "x")
	require.Error(t, err)
	assert.True(t, errors.Is(err, upstream))
}

func TestGenerateContent_AppliesTimeout(t *testing.T) {
	c := newClient(func(ctx context.Context, model, prompt string) (*genai.GenerateContentResponse, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}, WithTimeout(20*time.Millisecond))

	_, err := c.GenerateContent(context.Background(), "x")
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestGenerateContent_RateLimited(t *testing.T) {
	var calls atomic.Int32
	c := newClient(func(ctx context.Context, model, prompt string) (*genai.GenerateContentResponse, error) {
		calls.Add(1)
		return textResponse("ok"), nil
	}, WithRateLimit(1))

	_, err := c.GenerateContent(context.Background(), "first")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = c.GenerateContent(ctx, "second")
	require.Error(t, err, "second call within the same second must wait past the deadline")
	assert.Equal(t, int32(1), calls.Load())
}

func TestOptions_IgnoreZeroValues(t *testing.T) {
	c := newClient(nil, WithModel(""), WithTimeout(0), WithRateLimit(0))
	assert.Equal(t, DefaultModel, c.Model())
	assert.Equal(t, DefaultTimeout, c.timeout)
}
