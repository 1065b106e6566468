package services

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"recruitforge/hiring-engine/internal/models"
)

// geminiProvider adapts the Google GenAI SDK to the GenerationProvider
// contract.
type geminiProvider struct {
	client    *genai.Client
	modelName string
}

func NewGeminiProvider(client *genai.Client, modelName string) GenerationProvider {
	return &geminiProvider{
		client:    client,
		modelName: modelName,
	}
}

func (g *geminiProvider) Name() string {
	return "gemini"
}

func (g *geminiProvider) Generate(ctx context.Context, prompt string, opts models.GenerationOptions) (*models.GenerationResult, error) {
	temperature := opts.Temperature
	config := &genai.GenerateContentConfig{
		Temperature:     &temperature,
		MaxOutputTokens: int32(opts.MaxTokens),
	}

	if opts.TopP > 0 {
		topP := opts.TopP
		config.TopP = &topP
	}
	if opts.ResponseFormat == "json" {
		config.ResponseMIMEType = "application/json"
	}
	if opts.SystemPrompt != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: opts.SystemPrompt}},
		}
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.modelName, genai.Text(prompt), config)
	if err != nil {
		return nil, fmt.Errorf("gemini generate content: %w", err)
	}
	if resp == nil {
		return nil, fmt.Errorf("gemini returned nil response")
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return nil, fmt.Errorf("gemini returned no text content")
	}

	result := &models.GenerationResult{
		Content:  text,
		Provider: g.Name(),
		Model:    g.modelName,
	}
	if resp.UsageMetadata != nil {
		result.Usage = models.TokenUsage{
			PromptTokens:     int(resp.UsageMetadata.PromptTokenCount),
			CompletionTokens: int(resp.UsageMetadata.CandidatesTokenCount),
			TotalTokens:      int(resp.UsageMetadata.TotalTokenCount),
		}
	}

	return result, nil
}

// HealthCheck issues a minimal one-token generation as the liveness probe;
// the Gemini API has no dedicated ping endpoint.
func (g *geminiProvider) HealthCheck(ctx context.Context) error {
	config := &genai.GenerateContentConfig{MaxOutputTokens: 1}

	_, err := g.client.Models.GenerateContent(ctx, g.modelName, genai.Text("ping"), config)
	if err != nil {
		return fmt.Errorf("gemini health probe: %w", err)
	}
	return nil
}
