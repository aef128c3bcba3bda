package gen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/talgya/hexcrawl/internal/world"
)

// OllamaConfig holds the connection settings for a local Ollama server.
type OllamaConfig struct {
	BaseURL string
	Model   string
	Timeout time.Duration
}

// DefaultOllamaConfig returns the standard local endpoint settings.
func DefaultOllamaConfig() OllamaConfig {
	return OllamaConfig{
		BaseURL: "http://localhost:11434",
		Model:   "qwen2.5:3b",
		Timeout: 10 * time.Second,
	}
}

// OllamaClient generates hex descriptions through the Ollama HTTP API.
type OllamaClient struct {
	cfg        OllamaConfig
	httpClient *http.Client

	mu    sync.Mutex
	cache map[world.HexCoord]string
}

// NewOllamaClient creates a client for the given endpoint.
// Returns nil if the base URL is empty (generation disabled).
func NewOllamaClient(cfg OllamaConfig) *OllamaClient {
	if cfg.BaseURL == "" {
		return nil
	}
	return &OllamaClient{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		cache: make(map[world.HexCoord]string),
	}
}

// Available probes the server's model list endpoint.
func (c *OllamaClient) Available(ctx context.Context) bool {
	if c == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"/api/tags", nil)
	if err != nil {
		return false
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// generateRequest is the Ollama API request body.
type generateRequest struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	Stream  bool           `json:"stream"`
	Options map[string]any `json:"options,omitempty"`
}

// generateResponse is the Ollama API response body.
type generateResponse struct {
	Response string `json:"response"`
}

// Describe requests a short atmospheric description for one hex.
// Results are memoized per coordinate so a retried hex never pays the
// network call twice.
func (c *OllamaClient) Describe(ctx context.Context, r Request) (string, error) {
	c.mu.Lock()
	if text, ok := c.cache[r.Coord]; ok {
		c.mu.Unlock()
		return text, nil
	}
	c.mu.Unlock()

	prompt := fmt.Sprintf(
		"Generate a brief, evocative description (2-3 sentences) for a hex tile in a fantasy map.\n"+
			"The terrain is: %s.\n"+
			"Location: hex coordinates (%d, %d).\n"+
			"The party is %s.\n"+
			"Make it atmospheric and hint at potential discoveries or dangers.\nDescription:",
		r.Terrain, r.Coord.Q, r.Coord.R, r.Context,
	)

	body, err := json.Marshal(generateRequest{
		Model:  c.cfg.Model,
		Prompt: prompt,
		Stream: false,
		Options: map[string]any{
			"num_predict": 60,
			"temperature": 0.7,
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.cfg.BaseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("generate call: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("generate error %d: %s", resp.StatusCode, string(respBody))
	}

	var apiResp generateResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}

	text := strings.TrimSpace(apiResp.Response)
	if text == "" {
		return "", fmt.Errorf("empty response")
	}

	c.mu.Lock()
	c.cache[r.Coord] = text
	c.mu.Unlock()
	return text, nil
}
