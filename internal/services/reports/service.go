// Package reports turns answered extraction jobs into one merged report per
// document group. Production enqueues one job per prompt-sized chunk of each
// excerpt; consumption extracts the JSON from every answered job, logs the
// fragments, and saves the lossless merge.
package reports

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/colligo/internal/common"
	"github.com/ternarybob/colligo/internal/interfaces"
	"github.com/ternarybob/colligo/internal/models"
	"github.com/ternarybob/colligo/internal/services/chunker"
	"github.com/ternarybob/colligo/internal/services/extract"
	"github.com/ternarybob/colligo/internal/services/merge"
	"github.com/ternarybob/colligo/internal/services/prompts"
)

// Service produces extraction jobs and consumes their answers.
type Service struct {
	excerpts  interfaces.ExcerptStorage
	jobs      interfaces.JobStorage
	fragments interfaces.FragmentStorage
	reports   interfaces.ReportStorage
	maxChars  int
	logger    arbor.ILogger
}

// NewService creates a report service over the shared stores.
func NewService(cfg *common.Config, storage interfaces.StorageManager, logger arbor.ILogger) *Service {
	return &Service{
		excerpts:  storage.ExcerptStorage(),
		jobs:      storage.JobStorage(),
		fragments: storage.FragmentStorage(),
		reports:   storage.ReportStorage(),
		maxChars:  cfg.Pipeline.MaxPromptChars,
		logger:    logger,
	}
}

// ProduceExtractionJobs enqueues one pending extraction job per prompt-sized
// chunk of every excerpt in the group. Chunks whose prompt already has a job
// for the group are skipped, so a re-run enqueues nothing for unchanged
// excerpts. Returns the number of jobs enqueued.
func (s *Service) ProduceExtractionJobs(ctx context.Context, groupPrefix string) (int, error) {
	excerpts, err := s.excerpts.QueryByGroupPrefix(ctx, groupPrefix)
	if err != nil {
		return 0, fmt.Errorf("failed to load excerpts: %w", err)
	}

	seen := make(map[string]map[string]bool)
	var enqueued, skipped int
	for _, excerpt := range excerpts {
		existing, ok := seen[excerpt.GroupKey]
		if !ok {
			jobs, err := s.jobs.ListByGroup(ctx, excerpt.GroupKey, models.JobTypeExtraction)
			if err != nil {
				return enqueued, fmt.Errorf("failed to list extraction jobs: %w", err)
			}
			existing = make(map[string]bool, len(jobs))
			for _, job := range jobs {
				existing[job.Prompt] = true
			}
			seen[excerpt.GroupKey] = existing
		}

		chunks := chunker.SplitChars(excerpt.Text, s.maxChars)
		for idx, chunk := range chunks {
			prompt := prompts.Extraction(chunk, idx+1)
			if existing[prompt] {
				skipped++
				continue
			}
			if _, err := s.jobs.Enqueue(ctx, prompt, excerpt.GroupKey, models.JobTypeExtraction); err != nil {
				return enqueued, fmt.Errorf("failed to enqueue extraction job: %w", err)
			}
			existing[prompt] = true
			enqueued++
		}
	}

	s.logger.Info().
		Str("group_prefix", groupPrefix).
		Int("excerpts", len(excerpts)).
		Int("jobs", enqueued).
		Int("skipped", skipped).
		Msg("Produced extraction jobs")
	return enqueued, nil
}

// BuildReport extracts the JSON fragment from every answered extraction job
// in the group, appends the fragments to the fragment log, merges them and
// saves the result wholesale. A re-run replaces the previous fragment log
// and report for the group. Jobs whose answers hold no recoverable JSON are
// skipped and counted.
func (s *Service) BuildReport(ctx context.Context, groupKey string) (*models.MergedReport, error) {
	answered, err := s.jobs.ListAnswered(ctx, groupKey, models.JobTypeExtraction)
	if err != nil {
		return nil, fmt.Errorf("failed to list answered jobs: %w", err)
	}
	if len(answered) == 0 {
		return nil, fmt.Errorf("no answered extraction jobs for group %s", groupKey)
	}

	if err := s.fragments.DeleteByGroup(ctx, groupKey); err != nil {
		return nil, fmt.Errorf("failed to clear fragment log: %w", err)
	}

	var raws [][]byte
	var skipped int
	for _, job := range answered {
		result, err := extract.Extract(job.Answer)
		if err != nil || result.Raw == nil {
			s.logger.Warn().
				Str("job_id", job.ID).
				Str("attempted", result.Diagnostic).
				Err(err).
				Msg("Answered job held no recoverable JSON")
			skipped++
			continue
		}

		if _, err := s.fragments.Append(ctx, groupKey, job.ID, result.Raw); err != nil {
			return nil, fmt.Errorf("failed to append fragment: %w", err)
		}
		raws = append(raws, result.Raw)
	}

	merged, used := merge.MergeRaw(raws)
	encoded, err := merged.Encode()
	if err != nil {
		return nil, fmt.Errorf("failed to encode merged report: %w", err)
	}

	report := &models.MergedReport{
		GroupKey:      groupKey,
		Report:        encoded,
		FragmentCount: used,
	}
	if err := s.reports.Save(ctx, report); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("group_key", groupKey).
		Int("fragments", used).
		Int("skipped", skipped).
		Msg("Built merged report")
	return report, nil
}
