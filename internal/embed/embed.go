package embed

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/semiosislab/semiosis/go-engine/internal/tensor"
)

// #region interface
// Embedder is the embedding collaborator: text in, fixed-length normalized
// vector out. Implementations block; callers bound them with a context.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// #endregion interface

// #region errors
var (
	// ErrWrongDimension marks a collaborator response of the wrong length.
	ErrWrongDimension = errors.New("embedding contract: wrong dimension")
	// ErrNotNormalized marks a collaborator response without unit norm.
	ErrNotNormalized = errors.New("embedding contract: vector not unit-norm")
)

// NormTolerance is the allowed deviation from unit norm.
const NormTolerance = 1e-3

// Validate enforces the collaborator contract: exactly the segment width and
// unit L2 norm. Any violation fails the cycle that requested the embedding.
func Validate(vec []float32) error {
	if len(vec) != tensor.SegmentWidth {
		return fmt.Errorf("%w: got %d, want %d", ErrWrongDimension, len(vec), tensor.SegmentWidth)
	}
	n := float64(tensor.Norm(vec))
	if math.Abs(n-1.0) > NormTolerance {
		return fmt.Errorf("%w: norm %.6f", ErrNotNormalized, n)
	}
	return nil
}

// #endregion errors

// #region config
// OllamaConfig configures the HTTP embedding collaborator.
type OllamaConfig struct {
	BaseURL string        // default http://localhost:11434
	Model   string        // default mxbai-embed-large (1024 dimensions)
	Timeout time.Duration // transport timeout; per-call deadlines come from ctx
	// Normalize rescales the raw API vector to unit norm before handing it
	// back. Most embedding endpoints return unnormalized vectors; disable to
	// exercise the strict contract against a pre-normalizing service.
	Normalize bool
}

// DefaultOllamaConfig returns sensible defaults.
func DefaultOllamaConfig() OllamaConfig {
	return OllamaConfig{
		BaseURL:   "http://localhost:11434",
		Model:     "mxbai-embed-large",
		Timeout:   60 * time.Second,
		Normalize: true,
	}
}

// #endregion config

// #region client
// OllamaEmbedder calls the Ollama embeddings API.
type OllamaEmbedder struct {
	baseURL    string
	model      string
	normalize  bool
	httpClient *http.Client
}

// NewOllamaEmbedder creates the HTTP embedding client.
func NewOllamaEmbedder(cfg OllamaConfig) *OllamaEmbedder {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:11434"
	}
	if cfg.Model == "" {
		cfg.Model = "mxbai-embed-large"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &OllamaEmbedder{
		baseURL:    cfg.BaseURL,
		model:      cfg.Model,
		normalize:  cfg.Normalize,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

type embedRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type embedResponse struct {
	Embedding []float32 `json:"embedding"`
}

// Embed sends text to the embeddings endpoint and returns the vector.
func (c *OllamaEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	body, err := json.Marshal(embedRequest{Model: c.model, Prompt: text})
	if err != nil {
		return nil, fmt.Errorf("marshal embed request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create embed request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embed request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read embed response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("embed status %d: %s", resp.StatusCode, string(respBody))
	}

	var out embedResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, fmt.Errorf("parse embed response: %w", err)
	}

	vec := out.Embedding
	if c.normalize {
		if !tensor.Normalize(vec) {
			return nil, fmt.Errorf("embed %q: %w", truncate(text, 40), tensor.ErrDegenerateVector)
		}
	}
	return vec, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// #endregion client
