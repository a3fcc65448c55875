// Package queue drains pending generation jobs through an LLM provider.
// Each job ends in exactly one terminal state per batch; a failure never
// stops the batch.
package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/colligo/internal/common"
	"github.com/ternarybob/colligo/internal/interfaces"
	"github.com/ternarybob/colligo/internal/services/llm"
	"golang.org/x/time/rate"
)

// BatchStats reports the outcome of one worker batch.
type BatchStats struct {
	Answered int
	Failed   int
	Duration time.Duration
}

// Worker processes pending generation jobs sequentially.
type Worker struct {
	jobs     interfaces.JobStorage
	provider llm.Provider
	limiter  *rate.Limiter
	timeout  time.Duration
	logger   arbor.ILogger
}

// NewWorker creates a queue worker. The generation interval from the
// pipeline config becomes a token bucket, so the pacing between model calls
// holds even across restarts of the batch.
func NewWorker(cfg *common.Config, jobs interfaces.JobStorage, provider llm.Provider, logger arbor.ILogger) *Worker {
	interval, err := time.ParseDuration(cfg.Pipeline.GenerationInterval)
	if err != nil || interval <= 0 {
		interval = 10 * time.Second
	}
	timeout, err := time.ParseDuration(cfg.Pipeline.GenerationTimeout)
	if err != nil || timeout <= 0 {
		timeout = 2 * time.Minute
	}

	return &Worker{
		jobs:     jobs,
		provider: provider,
		limiter:  rate.NewLimiter(rate.Every(interval), 1),
		timeout:  timeout,
		logger:   logger,
	}
}

// ProcessBatch drains up to limit pending jobs (0 means all). The pending
// set is listed once at the start; jobs enqueued mid-batch wait for the
// next run. Per-job errors mark the job failed and the batch continues.
func (w *Worker) ProcessBatch(ctx context.Context, limit int) (*BatchStats, error) {
	pending, err := w.jobs.ListPending(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending jobs: %w", err)
	}

	start := time.Now()
	stats := &BatchStats{}

	w.logger.Info().
		Int("pending", len(pending)).
		Msg("Processing job batch")

	for _, job := range pending {
		if err := w.limiter.Wait(ctx); err != nil {
			stats.Duration = time.Since(start)
			return stats, err
		}

		answer, err := w.generate(ctx, job.Prompt)
		if err != nil {
			if ctx.Err() != nil {
				stats.Duration = time.Since(start)
				return stats, ctx.Err()
			}
			w.failJob(ctx, job.ID, err)
			stats.Failed++
			continue
		}

		if err := w.jobs.MarkAnswered(ctx, job.ID, answer); err != nil {
			w.logger.Error().
				Str("job_id", job.ID).
				Err(err).
				Msg("Failed to record job answer")
			stats.Failed++
			continue
		}
		stats.Answered++
	}

	stats.Duration = time.Since(start)
	w.logger.Info().
		Int("answered", stats.Answered).
		Int("failed", stats.Failed).
		Dur("duration", stats.Duration).
		Msg("Job batch complete")
	return stats, nil
}

func (w *Worker) generate(ctx context.Context, prompt string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	// An empty model selects the provider's configured default
	response, err := w.provider.GenerateText(callCtx, &llm.GenerateRequest{
		Prompt: prompt,
	})
	if err != nil {
		return "", err
	}
	return response.Text, nil
}

func (w *Worker) failJob(ctx context.Context, id string, cause error) {
	w.logger.Warn().
		Str("job_id", id).
		Err(cause).
		Msg("Job generation failed")

	if err := w.jobs.MarkFailed(ctx, id, cause.Error()); err != nil {
		w.logger.Error().
			Str("job_id", id).
			Err(err).
			Msg("Failed to record job failure")
	}
}
