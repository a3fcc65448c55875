// Package embeddings backfills embedding vectors onto stored excerpts and
// questions. The backfill is idempotent; rows that already carry a vector
// are never re-encoded.
package embeddings

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/colligo/internal/interfaces"
)

// Service wires an Embedder to the excerpt and question stores.
type Service struct {
	embedder  interfaces.Embedder
	excerpts  interfaces.ExcerptStorage
	questions interfaces.QuestionStorage
	logger    arbor.ILogger
}

// NewService creates an embedding backfill service.
func NewService(embedder interfaces.Embedder, storage interfaces.StorageManager, logger arbor.ILogger) *Service {
	return &Service{
		embedder:  embedder,
		excerpts:  storage.ExcerptStorage(),
		questions: storage.QuestionStorage(),
		logger:    logger,
	}
}

// Encode exposes the underlying embedder.
func (s *Service) Encode(ctx context.Context, text string, role interfaces.EmbeddingRole) ([]float32, error) {
	return s.embedder.Encode(ctx, text, role)
}

// Dimension reports the embedder's output dimensionality.
func (s *Service) Dimension() int {
	return s.embedder.Dimension()
}

// EmbedPendingExcerpts encodes every excerpt without a vector, up to limit
// rows (0 means no limit). Rows that fail to encode are left untouched for
// the next run; the first error is returned after the pass completes.
func (s *Service) EmbedPendingExcerpts(ctx context.Context, limit int) (int, error) {
	pending, err := s.excerpts.ListPendingEmbedding(ctx, limit)
	if err != nil {
		return 0, fmt.Errorf("failed to list excerpts pending embedding: %w", err)
	}

	var embedded int
	var firstErr error
	for _, excerpt := range pending {
		vector, err := s.embedder.Encode(ctx, excerpt.Text, interfaces.RolePassage)
		if err != nil {
			s.logger.Warn().
				Str("excerpt_id", excerpt.ID).
				Err(err).
				Msg("Failed to embed excerpt")
			if firstErr == nil {
				firstErr = err
			}
			continue
		}

		excerpt.Embedding = vector
		if err := s.excerpts.Update(ctx, excerpt); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		embedded++
	}

	s.logger.Info().
		Int("embedded", embedded).
		Int("pending", len(pending)).
		Msg("Excerpt embedding backfill complete")
	return embedded, firstErr
}

// EmbedPendingQuestions encodes every question without a vector using the
// query framing.
func (s *Service) EmbedPendingQuestions(ctx context.Context, limit int) (int, error) {
	pending, err := s.questions.ListPendingEmbedding(ctx, limit)
	if err != nil {
		return 0, fmt.Errorf("failed to list questions pending embedding: %w", err)
	}

	var embedded int
	var firstErr error
	for _, question := range pending {
		vector, err := s.embedder.Encode(ctx, question.Text, interfaces.RoleQuery)
		if err != nil {
			s.logger.Warn().
				Str("question_id", question.ID).
				Err(err).
				Msg("Failed to embed question")
			if firstErr == nil {
				firstErr = err
			}
			continue
		}

		question.Embedding = vector
		if err := s.questions.Update(ctx, question); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		embedded++
	}

	s.logger.Info().
		Int("embedded", embedded).
		Int("pending", len(pending)).
		Msg("Question embedding backfill complete")
	return embedded, firstErr
}
