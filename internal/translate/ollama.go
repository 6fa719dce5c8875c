package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// #region config
// OllamaConfig configures the HTTP translation collaborator.
type OllamaConfig struct {
	BaseURL string        // default http://localhost:11434
	Model   string        // default llama3.2
	Timeout time.Duration // transport timeout; per-call deadlines come from ctx
}

// DefaultOllamaConfig returns sensible defaults.
func DefaultOllamaConfig() OllamaConfig {
	return OllamaConfig{
		BaseURL: "http://localhost:11434",
		Model:   "llama3.2",
		Timeout: 120 * time.Second,
	}
}

// #endregion config

// #region client
// OllamaTranslator verbalizes projections through the Ollama generate API at
// zero temperature. It is a Translator.
type OllamaTranslator struct {
	baseURL    string
	model      string
	httpClient *http.Client
}

// NewOllamaTranslator creates the HTTP translator client.
func NewOllamaTranslator(cfg OllamaConfig) *OllamaTranslator {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:11434"
	}
	if cfg.Model == "" {
		cfg.Model = "llama3.2"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 120 * time.Second
	}
	return &OllamaTranslator{
		baseURL:    cfg.BaseURL,
		model:      cfg.Model,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// #endregion client

// #region wire
type generateRequest struct {
	Model   string           `json:"model"`
	Prompt  string           `json:"prompt"`
	Stream  bool             `json:"stream"`
	Options *generateOptions `json:"options,omitempty"`
}

type generateOptions struct {
	Temperature float64 `json:"temperature"`
	Seed        int     `json:"seed,omitempty"`
}

type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// #endregion wire

// #region verbalize
// Verbalize sends the projection block at temperature 0 and returns the text.
func (c *OllamaTranslator) Verbalize(ctx context.Context, projections []Projection) (string, error) {
	body, err := json.Marshal(generateRequest{
		Model:   c.model,
		Prompt:  BuildInstruction(projections),
		Stream:  false,
		Options: &generateOptions{Temperature: 0},
	})
	if err != nil {
		return "", fmt.Errorf("marshal generate request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create generate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("generate request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read generate response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("generate status %d: %s", resp.StatusCode, string(respBody))
	}

	var out generateResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return "", fmt.Errorf("parse generate response: %w", err)
	}
	return out.Response, nil
}

// #endregion verbalize
