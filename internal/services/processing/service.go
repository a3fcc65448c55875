// Package processing runs the periodic maintenance pass: embedding backfill
// for excerpts and questions, on demand or on a cron schedule.
package processing

import (
	"context"
	"sync"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/colligo/internal/common"
	"github.com/ternarybob/colligo/internal/interfaces"
)

// Stats summarizes one processing run.
type Stats struct {
	ExcerptsEmbedded  int
	QuestionsEmbedded int
	Duration          time.Duration
}

// Service runs embedding backfill passes.
type Service struct {
	embeddings interfaces.EmbeddingService
	limit      int
	logger     arbor.ILogger
	mu         sync.Mutex
}

// NewService creates a processing service.
func NewService(cfg *common.Config, embeddingService interfaces.EmbeddingService, logger arbor.ILogger) *Service {
	return &Service{
		embeddings: embeddingService,
		limit:      cfg.Processing.Limit,
		logger:     logger,
	}
}

// ProcessAll backfills embeddings for excerpts and questions. Runs are
// serialized; a second caller blocks until the first finishes.
func (s *Service) ProcessAll(ctx context.Context) (*Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()

	excerpts, err := s.embeddings.EmbedPendingExcerpts(ctx, s.limit)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Excerpt embedding pass finished with errors")
	}

	questions, qErr := s.embeddings.EmbedPendingQuestions(ctx, s.limit)
	if qErr != nil {
		s.logger.Warn().Err(qErr).Msg("Question embedding pass finished with errors")
		if err == nil {
			err = qErr
		}
	}

	stats := &Stats{
		ExcerptsEmbedded:  excerpts,
		QuestionsEmbedded: questions,
		Duration:          time.Since(start),
	}
	return stats, err
}
