package processing

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"
)

// Scheduler handles periodic embedding backfill
type Scheduler struct {
	service *Service
	cron    *cron.Cron
	logger  arbor.ILogger
}

// NewScheduler creates a new processing scheduler
func NewScheduler(service *Service, logger arbor.ILogger) *Scheduler {
	return &Scheduler{
		service: service,
		cron:    cron.New(cron.WithSeconds()),
		logger:  logger,
	}
}

// Start begins the scheduled processing
func (s *Scheduler) Start(schedule string) error {
	if schedule == "" {
		// Default: every 6 hours
		schedule = "0 0 */6 * * *"
	}

	_, err := s.cron.AddFunc(schedule, func() {
		s.runProcessing()
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info().
		Str("schedule", schedule).
		Msg("Embedding backfill scheduler started")

	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.cron.Stop()
	s.logger.Info().Msg("Embedding backfill scheduler stopped")
}

// RunNow triggers an immediate processing run
func (s *Scheduler) RunNow() {
	s.logger.Info().Msg("Triggering immediate backfill run")
	go s.runProcessing()
}

func (s *Scheduler) runProcessing() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	s.logger.Info().Msg("Starting scheduled backfill")

	stats, err := s.service.ProcessAll(ctx)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("Scheduled backfill failed")
		return
	}

	s.logger.Info().
		Int("excerpts", stats.ExcerptsEmbedded).
		Int("questions", stats.QuestionsEmbedded).
		Dur("duration", stats.Duration).
		Msg("Scheduled backfill completed")
}
