// Package common provides the container-based n8n test environment shared
// by the integration tests.
package common

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// n8nImage is the official n8n release image used for integration tests.
const n8nImage = "docker.n8n.io/n8nio/n8n:latest"

// ownerEmail/ownerPassword are the instance-owner credentials the harness
// provisions on a fresh container.
const (
	ownerEmail    = "ci@example.com"
	ownerPassword = "Test1234!ci"
)

// N8NEnv provides a running n8n instance with a provisioned API key.
// Container mode starts a fresh n8n in Docker; manual mode (N8N_TEST_URL +
// N8N_TEST_API_KEY set) reuses an existing instance.
type N8NEnv struct {
	t          *testing.T
	container  testcontainers.Container
	ctx        context.Context
	cancel     context.CancelFunc
	baseURL    string
	apiKey     string
	resultsDir string
}

// NewN8NEnv starts (or attaches to) an n8n instance for one test.
func NewN8NEnv(t *testing.T) *N8NEnv {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	if url := os.Getenv("N8N_TEST_URL"); url != "" {
		key := os.Getenv("N8N_TEST_API_KEY")
		if key == "" {
			t.Fatal("N8N_TEST_URL is set but N8N_TEST_API_KEY is not")
		}
		return &N8NEnv{t: t, baseURL: url, apiKey: key}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 180*time.Second)

	datetime := time.Now().Format("20060102-150405")
	resultsDir := filepath.Join(FindProjectRoot(), "tests", "logs", datetime+"-"+t.Name())
	os.MkdirAll(resultsDir, 0755)

	container, err := testcontainers.Run(ctx, n8nImage,
		testcontainers.WithExposedPorts("5678/tcp"),
		testcontainers.WithEnv(map[string]string{
			"N8N_SECURE_COOKIE":       "false",
			"N8N_DIAGNOSTICS_ENABLED": "false",
		}),
		testcontainers.WithWaitStrategy(
			wait.ForHTTP("/healthz").WithPort("5678/tcp").WithStartupTimeout(120*time.Second),
		),
	)
	if err != nil {
		cancel()
		t.Fatalf("failed to start n8n: %v", err)
	}

	mappedPort, err := container.MappedPort(ctx, "5678/tcp")
	if err != nil {
		container.Terminate(ctx)
		cancel()
		t.Fatalf("failed to get mapped port: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		container.Terminate(ctx)
		cancel()
		t.Fatalf("failed to get host: %v", err)
	}

	env := &N8NEnv{
		t:          t,
		container:  container,
		ctx:        ctx,
		cancel:     cancel,
		baseURL:    fmt.Sprintf("http://%s:%s", host, mappedPort.Port()),
		resultsDir: resultsDir,
	}

	if err := env.provisionAPIKey(); err != nil {
		env.Cleanup()
		t.Fatalf("failed to provision n8n API key: %v", err)
	}

	t.Logf("n8n environment ready: %s", env.baseURL)
	return env
}

// BaseURL returns the base URL of the running n8n instance.
func (e *N8NEnv) BaseURL() string {
	return e.baseURL
}

// APIKey returns the provisioned API key.
func (e *N8NEnv) APIKey() string {
	return e.apiKey
}

// Cleanup tears down the container. No-op in manual mode.
func (e *N8NEnv) Cleanup() {
	if e == nil || e.container == nil {
		return
	}

	cleanupCtx, cleanupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cleanupCancel()

	e.collectLogs(cleanupCtx)
	e.container.Terminate(cleanupCtx)
	if e.cancel != nil {
		e.cancel()
	}
}

// provisionAPIKey claims the fresh instance via the owner-setup endpoint and
// creates an API key through the session-authenticated internal API. Public
// API keys cannot be injected by environment variable.
func (e *N8NEnv) provisionAPIKey() error {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return err
	}
	session := &http.Client{Jar: jar, Timeout: 30 * time.Second}

	setup := map[string]interface{}{
		"email":     ownerEmail,
		"firstName": "CI",
		"lastName":  "Test",
		"password":  ownerPassword,
	}
	if _, err := e.postJSON(session, "/rest/owner/setup", setup); err != nil {
		return fmt.Errorf("owner setup: %w", err)
	}

	body, err := e.postJSON(session, "/rest/api-keys", map[string]interface{}{
		"label":     "integration-tests",
		"expiresAt": nil,
		"scopes":    []string{"*"},
	})
	if err != nil {
		return fmt.Errorf("create api key: %w", err)
	}

	var keyResp struct {
		Data struct {
			RawAPIKey string `json:"rawApiKey"`
			APIKey    string `json:"apiKey"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &keyResp); err != nil {
		return fmt.Errorf("decode api key response: %w", err)
	}

	e.apiKey = keyResp.Data.RawAPIKey
	if e.apiKey == "" {
		e.apiKey = keyResp.Data.APIKey
	}
	if e.apiKey == "" {
		return fmt.Errorf("api key missing from response: %s", body)
	}
	return nil
}

func (e *N8NEnv) postJSON(client *http.Client, path string, payload interface{}) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	resp, err := client.Post(e.baseURL+path, "application/json", bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("%s returned %d: %s", path, resp.StatusCode, body)
	}
	return body, nil
}

func (e *N8NEnv) collectLogs(ctx context.Context) {
	if e.container == nil || e.resultsDir == "" {
		return
	}
	reader, err := e.container.Logs(ctx)
	if err != nil {
		return
	}
	defer reader.Close()
	logs, _ := io.ReadAll(reader)
	os.WriteFile(filepath.Join(e.resultsDir, "n8n.log"), logs, 0644)
}

// FindProjectRoot walks up from the working directory to the go.mod root.
func FindProjectRoot() string {
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
