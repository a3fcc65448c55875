package interfaces

import (
	"context"
)

// EmbeddingRole selects the input framing for the asymmetric embedding model.
// Passage and query vectors live in the same space but are framed differently;
// callers must not mix the roles.
type EmbeddingRole string

const (
	// RolePassage frames text as a stored document passage
	RolePassage EmbeddingRole = "passage"
	// RoleQuery frames text as a retrieval question
	RoleQuery EmbeddingRole = "query"
)

// Embedder generates fixed-dimensionality embedding vectors. The pipeline
// does not interpret vector contents, only distances.
type Embedder interface {
	// Encode generates an embedding for the text under the given role
	Encode(ctx context.Context, text string, role EmbeddingRole) ([]float32, error)

	// Dimension returns the provider-fixed vector length
	Dimension() int
}

// EmbeddingService frames text per role and backfills missing embeddings
// idempotently (only rows with a nil embedding are touched).
type EmbeddingService interface {
	Embedder

	// EmbedPendingExcerpts populates embeddings for excerpts that lack one.
	// Returns the number of rows embedded.
	EmbedPendingExcerpts(ctx context.Context, limit int) (int, error)

	// EmbedPendingQuestions populates embeddings for questions that lack one
	EmbedPendingQuestions(ctx context.Context, limit int) (int, error)
}
