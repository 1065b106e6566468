package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"recruitforge/hiring-engine/internal/models"
)

const claudeAPIVersion = "2023-06-01"

// claudeProvider talks to the Anthropic messages API over plain HTTP JSON.
type claudeProvider struct {
	apiKey     string
	modelName  string
	endpoint   string
	httpClient *http.Client
}

func NewClaudeProvider(apiKey, modelName, endpoint string) GenerationProvider {
	return &claudeProvider{
		apiKey:     apiKey,
		modelName:  modelName,
		endpoint:   endpoint,
		httpClient: &http.Client{},
	}
}

func (c *claudeProvider) Name() string {
	return "claude"
}

type claudeRequest struct {
	Model       string          `json:"model"`
	MaxTokens   int             `json:"max_tokens"`
	Temperature float32         `json:"temperature,omitempty"`
	TopP        float32         `json:"top_p,omitempty"`
	System      string          `json:"system,omitempty"`
	Messages    []claudeMessage `json:"messages"`
}

type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type claudeResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Model string `json:"model"`
	Usage struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

func (c *claudeProvider) Generate(ctx context.Context, prompt string, opts models.GenerationOptions) (*models.GenerationResult, error) {
	system := opts.SystemPrompt
	if opts.ResponseFormat == "json" {
		// The messages API has no structured-output flag; the JSON
		// requirement is translated into the system prompt instead.
		if system != "" {
			system += "\n"
		}
		system += "Respond with a single valid JSON object and nothing else."
	}

	reqBody := claudeRequest{
		Model:       c.modelName,
		MaxTokens:   opts.MaxTokens,
		Temperature: opts.Temperature,
		TopP:        opts.TopP,
		System:      system,
		Messages: []claudeMessage{
			{Role: "user", Content: prompt},
		},
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal claude request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build claude request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", claudeAPIVersion)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("claude request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read claude response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("claude API returned status %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	var parsed claudeResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("parse claude response: %w", err)
	}
	if len(parsed.Content) == 0 || parsed.Content[0].Text == "" {
		return nil, fmt.Errorf("claude returned no text content")
	}

	model := parsed.Model
	if model == "" {
		model = c.modelName
	}

	return &models.GenerationResult{
		Content:  parsed.Content[0].Text,
		Provider: c.Name(),
		Model:    model,
		Usage: models.TokenUsage{
			PromptTokens:     parsed.Usage.InputTokens,
			CompletionTokens: parsed.Usage.OutputTokens,
			TotalTokens:      parsed.Usage.InputTokens + parsed.Usage.OutputTokens,
		},
	}, nil
}

// HealthCheck probes the messages endpoint with a one-token request.
func (c *claudeProvider) HealthCheck(ctx context.Context) error {
	_, err := c.Generate(ctx, "ping", models.GenerationOptions{MaxTokens: 1})
	if err != nil {
		return fmt.Errorf("claude health probe: %w", err)
	}
	return nil
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
