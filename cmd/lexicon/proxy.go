package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/bobmcallan/lexicon/internal/models"
)

// ServerProxy sends CLI commands to a running lexicon-server.
type ServerProxy struct {
	serverURL  string
	httpClient *http.Client
}

// NewServerProxy creates a proxy targeting the given server URL.
func NewServerProxy(serverURL string) *ServerProxy {
	return &ServerProxy{
		serverURL: strings.TrimRight(serverURL, "/"),
		httpClient: &http.Client{
			Timeout: 60 * time.Second, // Match server WriteTimeout
		},
	}
}

// GenerateExample asks the server for a generated example.
func (p *ServerProxy) GenerateExample(ctx context.Context, term string) (*models.ExampleResult, error) {
	body, err := p.post(ctx, "/api/examples", models.ExampleRequest{Term: term})
	if err != nil {
		return nil, err
	}
	var result models.ExampleResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode example: %w", err)
	}
	return &result, nil
}

// SubmitTermRequest posts a term request to the server.
func (p *ServerProxy) SubmitTermRequest(ctx context.Context, req models.TermRequest) (*models.SubmissionResult, error) {
	body, err := p.post(ctx, "/api/term-requests", req)
	if err != nil {
		return nil, err
	}
	var result models.SubmissionResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode submission result: %w", err)
	}
	return &result, nil
}

// post performs a POST request with JSON body and returns the response body.
func (p *ServerProxy) post(ctx context.Context, path string, data interface{}) ([]byte, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.serverURL+path, bytes.NewReader(jsonData))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("server request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errResp struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		if json.Unmarshal(body, &errResp) == nil {
			if errResp.Error != "" {
				return nil, fmt.Errorf("%s", errResp.Error)
			}
			if errResp.Message != "" {
				return nil, fmt.Errorf("%s", errResp.Message)
			}
		}
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(body))
	}

	return body, nil
}
