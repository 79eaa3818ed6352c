// Package openai provides the remote embedder: a client for
// OpenAI-compatible embedding endpoints (OpenAI itself, Ollama, and proxies
// speaking either response shape). Chunk texts and the builder's synthesized
// summaries both flow through Embed, so the vector dimension observed on the
// first call must hold for the whole run.
package openai

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"
)

// Client calls an OpenAI-compatible /embeddings endpoint with retry.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	http       *http.Client
	maxRetries int

	dimension int
}

// Config configures the embeddings client.
type Config struct {
	BaseURL   string
	APIKeyEnv string
	Model     string
	Timeout   time.Duration
}

// NewClient creates an embeddings client. The API key is read from the
// environment variable named in the config.
func NewClient(cfg Config) (*Client, error) {
	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" {
		return nil, fmt.Errorf("missing API key in env %s", cfg.APIKeyEnv)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "text-embedding-3-small"
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		apiKey:     key,
		model:      cfg.Model,
		http:       &http.Client{Timeout: timeout},
		maxRetries: 5,
	}, nil
}

// Name returns the identifier of this embedder implementation.
func (c *Client) Name() string { return "openai" }

// Prepare is a no-op: the model's vocabulary lives server-side. The vector
// dimension is learned from the first Embed response instead.
func (c *Client) Prepare(corpus []string) error { return nil }

// Dimension reports the vector size observed on the first successful Embed,
// zero before that. Ingest embeds before sizing the store, so the value is
// set by the time anything depends on it.
func (c *Client) Dimension() int { return c.dimension }

type embedRequest struct {
	// Prompt mirrors Input for Ollama's native endpoint.
	Input  string `json:"input,omitempty"`
	Prompt string `json:"prompt,omitempty"`
	Model  string `json:"model"`
}

// Embed requests an embedding for the input, retrying transient failures
// with exponential backoff and honoring Retry-After on throttling.
func (c *Client) Embed(input string) ([]float64, error) {
	body, err := json.Marshal(embedRequest{Input: input, Prompt: input, Model: c.model})
	if err != nil {
		return nil, err
	}
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		vec, wait, err := c.attempt(body)
		if err == nil {
			if c.dimension == 0 {
				c.dimension = len(vec)
			}
			return vec, nil
		}
		lastErr = err
		if wait < 0 || attempt == c.maxRetries {
			break
		}
		if wait == 0 {
			wait = backoff(attempt)
		}
		time.Sleep(wait)
	}
	return nil, lastErr
}

// attempt performs a single request. On error, wait encodes how to proceed:
// negative means the failure is permanent, zero means retry with default
// backoff, positive means the server asked for that delay.
func (c *Client) attempt(body []byte) ([]float64, time.Duration, error) {
	req, err := http.NewRequest(http.MethodPost, c.baseURL+"/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, -1, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		var wait time.Duration
		if ra := resp.Header.Get("Retry-After"); ra != "" {
			if secs, err := strconv.Atoi(ra); err == nil {
				wait = time.Duration(secs) * time.Second
			}
		}
		return nil, wait, fmt.Errorf("openai embeddings failed: %s", resp.Status)
	}
	if resp.StatusCode >= 300 {
		return nil, -1, fmt.Errorf("openai embeddings failed: %s", resp.Status)
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, err
	}
	vec := decodeEmbedding(payload)
	if vec == nil {
		return nil, 0, errors.New("no embedding returned")
	}
	return vec, 0, nil
}

// decodeEmbedding accepts the OpenAI response shape and falls back to
// Ollama's native one.
func decodeEmbedding(payload []byte) []float64 {
	var openaiOut struct {
		Data []struct {
			Embedding []float64 `json:"embedding"`
		} `json:"data"`
	}
	if json.Unmarshal(payload, &openaiOut) == nil &&
		len(openaiOut.Data) > 0 && len(openaiOut.Data[0].Embedding) > 0 {
		return openaiOut.Data[0].Embedding
	}
	var ollamaOut struct {
		Embedding []float64 `json:"embedding"`
	}
	if json.Unmarshal(payload, &ollamaOut) == nil && len(ollamaOut.Embedding) > 0 {
		return ollamaOut.Embedding
	}
	return nil
}

func backoff(attempt int) time.Duration {
	d := 200 * time.Millisecond << attempt
	if d > 5*time.Second {
		d = 5 * time.Second
	}
	return d
}
