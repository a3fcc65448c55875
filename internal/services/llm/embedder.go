package llm

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/colligo/internal/common"
	"github.com/ternarybob/colligo/internal/interfaces"
	"google.golang.org/genai"
)

// GeminiEmbedder generates embedding vectors through the Gemini embedding
// API. Texts are framed asymmetrically before encoding: stored excerpts get
// a "passage: " prefix and search texts a "query: " prefix, matching the
// framing the retrieval model was trained with. Mixing frames degrades
// nearest-neighbour quality silently, so the prefix is applied here and
// nowhere else.
type GeminiEmbedder struct {
	factory   *ProviderFactory
	model     string
	dimension int
	logger    arbor.ILogger
}

// NewGeminiEmbedder creates an embedder bound to the configured embedding
// model and output dimension.
func NewGeminiEmbedder(cfg *common.Config, factory *ProviderFactory, logger arbor.ILogger) *GeminiEmbedder {
	return &GeminiEmbedder{
		factory:   factory,
		model:     cfg.Gemini.EmbeddingModel,
		dimension: cfg.Embeddings.Dimension,
		logger:    logger,
	}
}

// Frame returns the text as it is sent to the embedding model for the
// given role.
func Frame(text string, role interfaces.EmbeddingRole) string {
	switch role {
	case interfaces.RoleQuery:
		return "query: " + text
	default:
		return "passage: " + text
	}
}

// Encode embeds one text under the given role and returns the vector.
func (e *GeminiEmbedder) Encode(ctx context.Context, text string, role interfaces.EmbeddingRole) ([]float32, error) {
	client, err := e.factory.GetGeminiClient(ctx)
	if err != nil {
		return nil, err
	}

	outputDim := int32(e.dimension)
	config := &genai.EmbedContentConfig{
		OutputDimensionality: &outputDim,
	}

	framed := Frame(text, role)
	contents := []*genai.Content{genai.NewContentFromText(framed, genai.RoleUser)}

	result, err := client.Models.EmbedContent(ctx, e.model, contents, config)
	if err != nil {
		return nil, fmt.Errorf("embedding generation failed: %w", err)
	}

	var embedding []float32
	if result != nil && len(result.Embeddings) > 0 {
		embedding = result.Embeddings[0].Values
	}
	if embedding == nil {
		return nil, fmt.Errorf("no embedding returned from API")
	}
	if len(embedding) != e.dimension {
		return nil, fmt.Errorf("embedding dimension mismatch: expected %d, got %d", e.dimension, len(embedding))
	}

	return embedding, nil
}

// Dimension reports the configured output dimensionality.
func (e *GeminiEmbedder) Dimension() int {
	return e.dimension
}
