package services

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// EmbeddingDimension is a deployment constant tied to the embedding model.
const EmbeddingDimension = 768

// EmbeddingService turns text into a fixed-dimension float vector. It is an
// external capability as far as scoring is concerned.
type EmbeddingService interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimension() int
}

type geminiEmbeddingService struct {
	client     *genai.Client
	embedModel string
}

func NewGeminiEmbeddingService(client *genai.Client, embedModel string) EmbeddingService {
	return &geminiEmbeddingService{
		client:     client,
		embedModel: embedModel,
	}
}

func (g *geminiEmbeddingService) Dimension() int {
	return EmbeddingDimension
}

func (g *geminiEmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	// Blank input yields a zero vector rather than an error.
	if strings.TrimSpace(text) == "" {
		return make([]float32, EmbeddingDimension), nil
	}

	// Truncate text if too long (max ~10000 tokens for embedding)
	if len(text) > 40000 {
		text = text[:40000]
	}

	result, err := g.client.Models.EmbedContent(ctx, g.embedModel, genai.Text(text), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embedding: %w", err)
	}

	if result == nil || len(result.Embeddings) == 0 {
		return nil, fmt.Errorf("empty embedding result")
	}

	return result.Embeddings[0].Values, nil
}
