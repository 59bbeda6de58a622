// Package common provides shared test infrastructure
package common

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	imageRepo  = "lexicon-server"
	imageTag   = "test"
	serverPort = "8080/tcp"
)

var (
	buildOnce  sync.Once
	buildError error
)

// EnvOptions configures the Docker test environment
type EnvOptions struct {
	// Env is passed to the server container on top of the defaults.
	Env map[string]string
}

// Env is an isolated lexicon-server container
type Env struct {
	t          *testing.T
	container  testcontainers.Container
	ctx        context.Context
	cancel     context.CancelFunc
	client     *http.Client
	BaseURL    string
	ResultsDir string
}

// buildTestImage builds the Docker image once per test run
func buildTestImage() error {
	buildOnce.Do(func() {
		ctx := context.Background()

		req := testcontainers.GenericContainerRequest{
			ContainerRequest: testcontainers.ContainerRequest{
				FromDockerfile: testcontainers.FromDockerfile{
					Context:    findProjectRoot(),
					Dockerfile: "tests/docker/Dockerfile",
					Repo:       imageRepo,
					Tag:        imageTag,
					KeepImage:  true,
				},
			},
		}

		// Only the image is wanted; a failure to start this throwaway
		// container is fine once the image exists.
		c, err := testcontainers.GenericContainer(ctx, req)
		if c != nil {
			_ = c.Terminate(ctx)
		}
		if err != nil && !strings.Contains(err.Error(), imageRepo+":"+imageTag) {
			buildError = err
		}
	})
	return buildError
}

// NewEnv starts a server container with default options.
func NewEnv(t *testing.T) *Env {
	return NewEnvWithOptions(t, EnvOptions{})
}

// NewEnvWithOptions starts a server container and waits for /api/health.
// It skips the test unless LEXICON_TEST_DOCKER=true.
func NewEnvWithOptions(t *testing.T, opts EnvOptions) *Env {
	t.Helper()

	if os.Getenv("LEXICON_TEST_DOCKER") != "true" {
		t.Skip("Docker tests disabled (set LEXICON_TEST_DOCKER=true to enable)")
		return nil
	}

	if err := buildTestImage(); err != nil {
		t.Fatalf("Failed to build test image: %v", err)
	}

	datetime := time.Now().Format("20060102-150405")
	resultsDir := filepath.Join(findProjectRoot(), "tests", "results", datetime+"-"+sanitizeName(t.Name()))
	if err := os.MkdirAll(resultsDir, 0755); err != nil {
		t.Fatalf("Failed to create results dir: %v", err)
	}

	timeout := 60 * time.Second
	if envTimeout := os.Getenv("LEXICON_TEST_TIMEOUT"); envTimeout != "" {
		if d, err := time.ParseDuration(envTimeout); err == nil {
			timeout = d
		}
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)

	containerEnv := map[string]string{
		"LEXICON_ENV":                "test",
		"LEXICON_ANALYTICS_PROVIDER": "log",
		"LEXICON_LOG_LEVEL":          "debug",
	}
	for k, v := range opts.Env {
		containerEnv[k] = v
	}

	req := testcontainers.ContainerRequest{
		Image:        imageRepo + ":" + imageTag,
		ExposedPorts: []string{serverPort},
		Env:          containerEnv,
		WaitingFor:   wait.ForHTTP("/api/health").WithPort(serverPort).WithStartupTimeout(30 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		cancel()
		t.Fatalf("Failed to start container: %v", err)
	}

	baseURL, err := container.PortEndpoint(ctx, serverPort, "http")
	if err != nil {
		_ = container.Terminate(ctx)
		cancel()
		t.Fatalf("Failed to resolve server endpoint: %v", err)
	}

	env := &Env{
		t:          t,
		container:  container,
		ctx:        ctx,
		cancel:     cancel,
		client:     &http.Client{Timeout: 30 * time.Second},
		BaseURL:    baseURL,
		ResultsDir: resultsDir,
	}
	t.Logf("Container started at %s", baseURL)
	return env
}

// Cleanup collects logs and tears down the container
func (e *Env) Cleanup() {
	if e == nil {
		return
	}

	e.collectLogs()

	if e.container != nil {
		if err := e.container.Terminate(e.ctx); err != nil {
			e.t.Logf("Warning: failed to terminate container: %v", err)
		}
	}
	if e.cancel != nil {
		e.cancel()
	}
}

// Context returns the test context
func (e *Env) Context() context.Context {
	return e.ctx
}

// HTTPGet issues a GET against the server.
func (e *Env) HTTPGet(path string) (*http.Response, error) {
	return e.HTTPRequest(http.MethodGet, path, nil, nil)
}

// HTTPPost posts body as JSON.
func (e *Env) HTTPPost(path string, body interface{}) (*http.Response, error) {
	return e.HTTPRequest(http.MethodPost, path, body, nil)
}

// HTTPRequest sends a request with an optional JSON body and extra headers.
func (e *Env) HTTPRequest(method, path string, body interface{}, headers map[string]string) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(e.ctx, method, e.BaseURL+path, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return e.client.Do(req)
}

// Exec runs a command inside the container and returns its combined output.
func (e *Env) Exec(cmd ...string) (int, string, error) {
	code, reader, err := e.container.Exec(e.ctx, cmd)
	if err != nil {
		return 0, "", fmt.Errorf("exec failed: %w", err)
	}
	output, err := io.ReadAll(reader)
	if err != nil {
		return code, "", fmt.Errorf("read exec output: %w", err)
	}
	return code, string(output), nil
}

// OutputGuard returns a TestOutputGuard writing to this Env's results directory
func (e *Env) OutputGuard() *TestOutputGuard {
	return NewTestOutputGuardWithDir(e.t, e.ResultsDir)
}

// Logs returns the container's output so far.
func (e *Env) Logs() (string, error) {
	reader, err := e.container.Logs(e.ctx)
	if err != nil {
		return "", fmt.Errorf("get container logs: %w", err)
	}
	defer reader.Close()

	logs, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("read container logs: %w", err)
	}
	return string(logs), nil
}

// collectLogs saves container logs to the results directory
func (e *Env) collectLogs() {
	if e.container == nil {
		return
	}

	logs, err := e.Logs()
	if err != nil {
		e.t.Logf("Warning: %v", err)
		return
	}

	if err := os.WriteFile(filepath.Join(e.ResultsDir, "container.log"), []byte(logs), 0644); err != nil {
		e.t.Logf("Warning: failed to save logs: %v", err)
	}
}

// findProjectRoot walks up directories to find go.mod
func findProjectRoot() string {
	dir, _ := os.Getwd()
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "."
		}
		dir = parent
	}
}

func sanitizeName(name string) string {
	return strings.NewReplacer("/", "_", " ", "_").Replace(name)
}

// TestOutputGuard saves response bodies for later inspection
type TestOutputGuard struct {
	t          *testing.T
	resultsDir string
}

// NewTestOutputGuardWithDir creates an output guard writing to resultsDir
func NewTestOutputGuardWithDir(t *testing.T, resultsDir string) *TestOutputGuard {
	return &TestOutputGuard{t: t, resultsDir: resultsDir}
}

// SaveResult writes output to <name>.json in the results directory.
// Failures are logged, not fatal.
func (g *TestOutputGuard) SaveResult(name string, output []byte) {
	if err := os.MkdirAll(g.resultsDir, 0755); err != nil {
		g.t.Logf("Warning: failed to create results dir: %v", err)
		return
	}
	if err := os.WriteFile(filepath.Join(g.resultsDir, name+".json"), output, 0644); err != nil {
		g.t.Logf("Warning: failed to save %s: %v", name, err)
	}
}

// DecodeBody reads and decodes a JSON response body, closing it.
func DecodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()

	var out T
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatalf("decode body %q: %v", truncate(string(body), 300), err)
	}
	return out
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
