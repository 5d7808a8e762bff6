package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultZAIBaseURL = "https://api.z.ai/api/paas/v4"
	defaultZAIModel   = "glm-4.6"
	defaultTimeout    = 60 * time.Second

	// Error bodies are copied into the returned error; cap them so a large
	// HTML error page does not end up in the logs.
	maxErrorBody = 512
)

// ZAIConfig configures a ZAIClient. Zero values fall back to defaults.
type ZAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// ZAIClient talks to an OpenAI-compatible chat completions endpoint.
type ZAIClient struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

var _ Completer = (*ZAIClient)(nil)

func NewZAIClient(cfg ZAIConfig) *ZAIClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultZAIBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = defaultZAIModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &ZAIClient{
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		model:      cfg.Model,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

type zaiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type zaiRequest struct {
	Model       string       `json:"model"`
	Messages    []zaiMessage `json:"messages"`
	MaxTokens   int          `json:"max_tokens,omitempty"`
	Temperature float64      `json:"temperature"`
}

type zaiResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Complete sends one chat completion request.
func (c *ZAIClient) Complete(ctx context.Context, req Request) (string, error) {
	messages := make([]zaiMessage, 0, 2)
	if req.System != "" {
		messages = append(messages, zaiMessage{Role: "system", Content: req.System})
	}
	messages = append(messages, zaiMessage{Role: "user", Content: req.User})

	body, err := json.Marshal(zaiRequest{
		Model:       c.model,
		Messages:    messages,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("zai: marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("zai: create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("zai: request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("zai: read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		if len(raw) > maxErrorBody {
			raw = raw[:maxErrorBody]
		}
		return "", fmt.Errorf("zai: status %d: %s", resp.StatusCode, string(raw))
	}

	var out zaiResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("zai: parse response: %w", err)
	}
	if out.Error != nil {
		return "", fmt.Errorf("zai: api error: %s", out.Error.Message)
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("zai: no completion returned")
	}

	return out.Choices[0].Message.Content, nil
}
