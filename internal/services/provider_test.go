package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recruitforge/hiring-engine/internal/models"
)

func TestClaudeProviderGenerate(t *testing.T) {
	var captured claudeRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, claudeAPIVersion, r.Header.Get("anthropic-version"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"content": [{"type": "text", "text": "{\"ok\": true}"}],
			"model": "claude-test",
			"usage": {"input_tokens": 12, "output_tokens": 8}
		}`))
	}))
	defer server.Close()

	provider := NewClaudeProvider("test-key", "claude-test", server.URL)

	result, err := provider.Generate(context.Background(), "hello", models.GenerationOptions{
		Temperature:    0.7,
		MaxTokens:      256,
		ResponseFormat: "json",
		SystemPrompt:   "You are a recruiter.",
	})
	require.NoError(t, err)

	assert.Equal(t, `{"ok": true}`, result.Content)
	assert.Equal(t, "claude", result.Provider)
	assert.Equal(t, "claude-test", result.Model)
	assert.Equal(t, 20, result.Usage.TotalTokens)

	assert.Equal(t, "claude-test", captured.Model)
	assert.Equal(t, 256, captured.MaxTokens)
	require.Len(t, captured.Messages, 1)
	assert.Equal(t, "user", captured.Messages[0].Role)
	assert.Equal(t, "hello", captured.Messages[0].Content)
	// The JSON requirement travels in the system prompt.
	assert.Contains(t, captured.System, "You are a recruiter.")
	assert.Contains(t, captured.System, "single valid JSON object")
}

func TestClaudeProviderGenerateErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error": {"type": "rate_limit_error"}}`))
	}))
	defer server.Close()

	provider := NewClaudeProvider("test-key", "claude-test", server.URL)

	_, err := provider.Generate(context.Background(), "hello", models.GenerationOptions{MaxTokens: 256})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
	assert.Contains(t, err.Error(), "rate_limit_error")
}

func TestClaudeProviderGenerateEmptyContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"content": [], "model": "claude-test"}`))
	}))
	defer server.Close()

	provider := NewClaudeProvider("test-key", "claude-test", server.URL)

	_, err := provider.Generate(context.Background(), "hello", models.GenerationOptions{MaxTokens: 256})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no text content")
}

func TestOllamaProviderGenerate(t *testing.T) {
	var captured ollamaRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"model": "llama3.1",
			"response": "{\"ok\": true}",
			"prompt_eval_count": 15,
			"eval_count": 5
		}`))
	}))
	defer server.Close()

	provider := NewOllamaProvider(server.URL, "llama3.1")

	result, err := provider.Generate(context.Background(), "hello", models.GenerationOptions{
		Temperature:    0.3,
		MaxTokens:      512,
		ResponseFormat: "json",
	})
	require.NoError(t, err)

	assert.Equal(t, `{"ok": true}`, result.Content)
	assert.Equal(t, "ollama", result.Provider)
	assert.Equal(t, 20, result.Usage.TotalTokens)

	assert.Equal(t, "llama3.1", captured.Model)
	assert.False(t, captured.Stream)
	assert.Equal(t, "json", captured.Format)
	assert.Equal(t, 512, captured.Options.NumPredict)
}

func TestOllamaProviderGenerateEmptyResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"model": "llama3.1", "response": "  "}`))
	}))
	defer server.Close()

	provider := NewOllamaProvider(server.URL, "llama3.1")

	_, err := provider.Generate(context.Background(), "hello", models.GenerationOptions{MaxTokens: 512})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty response")
}

func TestOllamaProviderHealthCheck(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/tags" {
			_, _ = w.Write([]byte(`{"models": []}`))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	provider := NewOllamaProvider(server.URL, "llama3.1")
	assert.NoError(t, provider.HealthCheck(context.Background()))

	server.Close()
	assert.Error(t, provider.HealthCheck(context.Background()))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcde...", truncate("abcdefghij", 5))
}
