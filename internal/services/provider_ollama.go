package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"recruitforge/hiring-engine/internal/models"
)

// ollamaProvider targets a self-hosted Ollama instance via its native
// /api/generate endpoint.
type ollamaProvider struct {
	baseURL    string
	modelName  string
	httpClient *http.Client
}

func NewOllamaProvider(baseURL, modelName string) GenerationProvider {
	return &ollamaProvider{
		baseURL:    strings.TrimRight(baseURL, "/"),
		modelName:  modelName,
		httpClient: &http.Client{},
	}
}

func (o *ollamaProvider) Name() string {
	return "ollama"
}

type ollamaRequest struct {
	Model   string        `json:"model"`
	Prompt  string        `json:"prompt"`
	Stream  bool          `json:"stream"`
	System  string        `json:"system,omitempty"`
	Format  string        `json:"format,omitempty"`
	Options ollamaOptions `json:"options"`
}

type ollamaOptions struct {
	Temperature float32 `json:"temperature"`
	NumPredict  int     `json:"num_predict"`
	TopP        float32 `json:"top_p,omitempty"`
}

type ollamaResponse struct {
	Model           string `json:"model"`
	Response        string `json:"response"`
	PromptEvalCount int    `json:"prompt_eval_count"`
	EvalCount       int    `json:"eval_count"`
}

func (o *ollamaProvider) Generate(ctx context.Context, prompt string, opts models.GenerationOptions) (*models.GenerationResult, error) {
	reqBody := ollamaRequest{
		Model:  o.modelName,
		Prompt: prompt,
		Stream: false,
		System: opts.SystemPrompt,
		Format: opts.ResponseFormat,
		Options: ollamaOptions{
			Temperature: opts.Temperature,
			NumPredict:  opts.MaxTokens,
			TopP:        opts.TopP,
		},
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal ollama request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/api/generate", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build ollama request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ollama request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read ollama response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ollama returned status %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	var parsed ollamaResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("parse ollama response: %w", err)
	}
	if strings.TrimSpace(parsed.Response) == "" {
		return nil, fmt.Errorf("ollama returned empty response")
	}

	model := parsed.Model
	if model == "" {
		model = o.modelName
	}

	return &models.GenerationResult{
		Content:  parsed.Response,
		Provider: o.Name(),
		Model:    model,
		Usage: models.TokenUsage{
			PromptTokens:     parsed.PromptEvalCount,
			CompletionTokens: parsed.EvalCount,
			TotalTokens:      parsed.PromptEvalCount + parsed.EvalCount,
		},
	}, nil
}

// HealthCheck hits the lightweight tags listing instead of running a
// generation.
func (o *ollamaProvider) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.baseURL+"/api/tags", nil)
	if err != nil {
		return fmt.Errorf("build ollama health request: %w", err)
	}

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("ollama health probe: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ollama health probe returned status %d", resp.StatusCode)
	}
	return nil
}
