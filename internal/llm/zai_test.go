package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestZAIClient(t *testing.T, handler http.HandlerFunc) *ZAIClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewZAIClient(ZAIConfig{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Model:   "test-model",
	})
}

func TestZAIClient_Complete(t *testing.T) {
	var captured zaiRequest
	var authHeader, path string

	client := newTestZAIClient(t, func(w http.ResponseWriter, r *http.Request) {
		authHeader = r.Header.Get("Authorization")
		path = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"{\"task_type\":\"x\"}"}}]}`))
	})

	out, err := client.Complete(context.Background(), Request{
		System:      "be precise",
		User:        "hello",
		Temperature: 0.3,
		MaxTokens:   2000,
	})
	require.NoError(t, err)
	assert.Equal(t, `{"task_type":"x"}`, out)

	assert.Equal(t, "Bearer test-key", authHeader)
	assert.Equal(t, "/chat/completions", path)
	assert.Equal(t, "test-model", captured.Model)
	assert.Equal(t, 2000, captured.MaxTokens)
	assert.InDelta(t, 0.3, captured.Temperature, 1e-9)
	require.Len(t, captured.Messages, 2)
	assert.Equal(t, "system", captured.Messages[0].Role)
	assert.Equal(t, "be precise", captured.Messages[0].Content)
	assert.Equal(t, "user", captured.Messages[1].Role)
	assert.Equal(t, "hello", captured.Messages[1].Content)
}

func TestZAIClient_CompleteWithoutSystem(t *testing.T) {
	var captured zaiRequest
	client := newTestZAIClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&captured)
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
	})

	_, err := client.Complete(context.Background(), Request{User: "hi"})
	require.NoError(t, err)
	require.Len(t, captured.Messages, 1)
	assert.Equal(t, "user", captured.Messages[0].Role)
}

func TestZAIClient_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{"non-200 status", http.StatusInternalServerError, `boom`, "status 500"},
		{"rate limited is not retried", http.StatusTooManyRequests, `slow down`, "status 429"},
		{"api error field", http.StatusOK, `{"error":{"message":"bad model"}}`, "bad model"},
		{"no choices", http.StatusOK, `{"choices":[]}`, "no completion returned"},
		{"malformed body", http.StatusOK, `not json`, "parse response"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			client := newTestZAIClient(t, func(w http.ResponseWriter, r *http.Request) {
				calls++
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := client.Complete(context.Background(), Request{User: "hi"})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.Equal(t, 1, calls, "exactly one attempt per call")
		})
	}
}

func TestZAIClient_Defaults(t *testing.T) {
	c := NewZAIClient(ZAIConfig{APIKey: "k", BaseURL: "https://example.test/v4/"})
	assert.Equal(t, "https://example.test/v4", c.baseURL)
	assert.Equal(t, defaultZAIModel, c.model)
	assert.Equal(t, defaultTimeout, c.httpClient.Timeout)
}
