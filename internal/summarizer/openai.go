package summarizer

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"raptor/internal/domain"
)

// ChatClient is an OpenAI-compatible chat completions client implementing
// the ChatModel interface for abstractive cluster summaries.
type ChatClient struct {
	baseURL    string
	apiKey     string
	model      string
	client     *http.Client
	maxRetries int
}

// ChatConfig configures the OpenAI-compatible chat client.
type ChatConfig struct {
	BaseURL   string
	APIKeyEnv string
	Model     string
	Timeout   time.Duration
}

// NewChatClient creates a chat completions client using the provided configuration.
func NewChatClient(cfg ChatConfig) (*ChatClient, error) {
	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" {
		return nil, fmt.Errorf("missing API key in env %s", cfg.APIKeyEnv)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	t := cfg.Timeout
	if t == 0 {
		t = 60 * time.Second
	}
	return &ChatClient{
		baseURL:    cfg.BaseURL,
		apiKey:     key,
		model:      cfg.Model,
		client:     &http.Client{Timeout: t},
		maxRetries: 3,
	}, nil
}

// Chat sends the messages to the chat completions endpoint and returns the
// first choice.
func (c *ChatClient) Chat(messages []domain.ChatMessage) (domain.ChatMessage, error) {
	type wireMessage struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}
	wire := make([]wireMessage, len(messages))
	for i, m := range messages {
		wire[i] = wireMessage{Role: m.Role, Content: m.Content}
	}
	body := map[string]any{
		"model":    c.model,
		"messages": wire,
	}
	data, _ := json.Marshal(body)
	url := fmt.Sprintf("%s/chat/completions", c.baseURL)

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, _ := http.NewRequest(http.MethodPost, url, bytes.NewReader(data))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.apiKey)

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = err
			time.Sleep(chatRetryDelay(attempt))
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			_ = resp.Body.Close()
			lastErr = fmt.Errorf("chat completions failed: %s", resp.Status)
			time.Sleep(chatRetryDelay(attempt))
			continue
		}
		if resp.StatusCode >= 300 {
			_ = resp.Body.Close()
			return domain.ChatMessage{}, fmt.Errorf("chat completions failed: %s", resp.Status)
		}

		payload, err := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if err != nil {
			lastErr = err
			time.Sleep(chatRetryDelay(attempt))
			continue
		}
		var out struct {
			Choices []struct {
				Message struct {
					Role    string `json:"role"`
					Content string `json:"content"`
				} `json:"message"`
			} `json:"choices"`
		}
		if err := json.Unmarshal(payload, &out); err != nil {
			return domain.ChatMessage{}, err
		}
		if len(out.Choices) == 0 {
			return domain.ChatMessage{}, errors.New("no chat completion returned")
		}
		msg := out.Choices[0].Message
		return domain.ChatMessage{Role: msg.Role, Content: msg.Content}, nil
	}
	return domain.ChatMessage{}, lastErr
}

func chatRetryDelay(attempt int) time.Duration {
	base := 500 * time.Millisecond
	d := base << attempt
	if d > 8*time.Second {
		d = 8 * time.Second
	}
	return d
}
