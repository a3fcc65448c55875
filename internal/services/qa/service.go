// Package qa turns unanswered analyst questions into retrieval-grounded
// generation jobs, and copies answered jobs back onto their questions.
package qa

import (
	"context"
	"fmt"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/colligo/internal/common"
	"github.com/ternarybob/colligo/internal/interfaces"
	"github.com/ternarybob/colligo/internal/models"
	"github.com/ternarybob/colligo/internal/services/index"
	"github.com/ternarybob/colligo/internal/services/prompts"
)

// Service produces QA jobs from unanswered questions.
type Service struct {
	questions interfaces.QuestionStorage
	jobs      interfaces.JobStorage
	index     *index.Index
	embedder  interfaces.Embedder
	topK      int
	logger    arbor.ILogger
}

// NewService creates a QA service scoped to the shared stores and index.
func NewService(cfg *common.Config, storage interfaces.StorageManager, idx *index.Index, embedder interfaces.Embedder, logger arbor.ILogger) *Service {
	return &Service{
		questions: storage.QuestionStorage(),
		jobs:      storage.JobStorage(),
		index:     idx,
		embedder:  embedder,
		topK:      cfg.Pipeline.TopK,
		logger:    logger,
	}
}

// ProduceJobs retrieves context for every unanswered question against the
// given document group and enqueues one QA job per question. A question
// with no retrievable context is answered immediately with the no-context
// answer instead of being enqueued. Returns the number of jobs enqueued.
func (s *Service) ProduceJobs(ctx context.Context, groupPrefix string) (int, error) {
	unanswered, err := s.questions.ListUnanswered(ctx, 0)
	if err != nil {
		return 0, fmt.Errorf("failed to list unanswered questions: %w", err)
	}

	var enqueued int
	for _, question := range unanswered {
		query := question.Embedding
		if len(query) == 0 {
			query, err = s.embedder.Encode(ctx, question.Text, interfaces.RoleQuery)
			if err != nil {
				return enqueued, fmt.Errorf("failed to embed question %s: %w", question.ID, err)
			}
			question.Embedding = query
			if err := s.questions.Update(ctx, question); err != nil {
				return enqueued, fmt.Errorf("failed to store question embedding: %w", err)
			}
		}

		matches, err := s.index.TopK(ctx, groupPrefix, query, s.topK)
		if err != nil {
			return enqueued, fmt.Errorf("failed to retrieve context for question %s: %w", question.ID, err)
		}

		if len(matches) == 0 {
			question.Answer = prompts.NoContextAnswer
			if err := s.questions.Update(ctx, question); err != nil {
				return enqueued, fmt.Errorf("failed to store no-context answer: %w", err)
			}
			s.logger.Info().
				Str("question_id", question.ID).
				Msg("No context retrieved, answered without generation")
			continue
		}

		prompt := prompts.Answer(question.Text, matches)
		if _, err := s.jobs.Enqueue(ctx, prompt, groupPrefix, models.JobTypeQA); err != nil {
			return enqueued, fmt.Errorf("failed to enqueue QA job: %w", err)
		}
		enqueued++
	}

	s.logger.Info().
		Str("group_prefix", groupPrefix).
		Int("questions", len(unanswered)).
		Int("jobs", enqueued).
		Msg("Produced QA jobs")
	return enqueued, nil
}

// CollectAnswers copies answered QA job output back onto questions whose
// text appears in the job prompt. Returns the number of questions updated.
func (s *Service) CollectAnswers(ctx context.Context, groupPrefix string) (int, error) {
	answered, err := s.jobs.ListAnswered(ctx, groupPrefix, models.JobTypeQA)
	if err != nil {
		return 0, fmt.Errorf("failed to list answered QA jobs: %w", err)
	}

	unanswered, err := s.questions.ListUnanswered(ctx, 0)
	if err != nil {
		return 0, fmt.Errorf("failed to list unanswered questions: %w", err)
	}

	var updated int
	for _, question := range unanswered {
		for _, job := range answered {
			if !strings.Contains(job.Prompt, question.Text) {
				continue
			}
			question.Answer = job.Answer
			if err := s.questions.Update(ctx, question); err != nil {
				return updated, fmt.Errorf("failed to store answer for %s: %w", question.ID, err)
			}
			updated++
			break
		}
	}

	s.logger.Info().
		Str("group_prefix", groupPrefix).
		Int("updated", updated).
		Msg("Collected QA answers")
	return updated, nil
}
