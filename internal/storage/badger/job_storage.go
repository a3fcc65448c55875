package badger

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/colligo/internal/common"
	"github.com/ternarybob/colligo/internal/interfaces"
	"github.com/ternarybob/colligo/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

const jobCollection = "jobs"

// JobStorage implements the JobStorage interface for Badger.
//
// Status transitions are committed as one upsert of the whole row, so a job
// can never be observed answered without its answer. The terminal-state guard
// inside markTransition refuses to move a job out of answered or failed, which
// keeps concurrent external writers from double-finishing a row.
type JobStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewJobStorage creates a new JobStorage instance
func NewJobStorage(db *BadgerDB, logger arbor.ILogger) interfaces.JobStorage {
	return &JobStorage{
		db:     db,
		logger: logger,
	}
}

func (s *JobStorage) Enqueue(ctx context.Context, prompt, groupKey string, jobType models.JobType) (*models.GenerationJob, error) {
	if prompt == "" {
		return nil, fmt.Errorf("prompt is required")
	}
	if groupKey == "" {
		return nil, fmt.Errorf("group key is required")
	}

	seq, err := s.db.NextSeq(jobCollection)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	job := &models.GenerationJob{
		ID:        common.NewJobID(),
		Prompt:    prompt,
		GroupKey:  groupKey,
		Status:    models.JobStatusPending,
		Type:      jobType,
		Seq:       seq,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.db.Store().Insert(job.ID, job); err != nil {
		return nil, fmt.Errorf("failed to enqueue job: %w", err)
	}

	s.logger.Debug().
		Str("job_id", job.ID).
		Str("group_key", groupKey).
		Str("type", string(jobType)).
		Msg("Enqueued generation job")
	return job, nil
}

func (s *JobStorage) Get(ctx context.Context, id string) (*models.GenerationJob, error) {
	var job models.GenerationJob
	if err := s.db.Store().Get(id, &job); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("job not found: %s", id)
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return &job, nil
}

func (s *JobStorage) ListPending(ctx context.Context, limit int) ([]*models.GenerationJob, error) {
	var jobs []models.GenerationJob
	if err := s.db.Store().Find(&jobs, badgerhold.Where("Status").Eq(models.JobStatusPending).Index("Status")); err != nil {
		return nil, fmt.Errorf("failed to list pending jobs: %w", err)
	}

	sort.Slice(jobs, func(i, j int) bool { return jobs[i].Seq < jobs[j].Seq })
	if limit > 0 && len(jobs) > limit {
		jobs = jobs[:limit]
	}

	result := make([]*models.GenerationJob, len(jobs))
	for i := range jobs {
		result[i] = &jobs[i]
	}
	return result, nil
}

func (s *JobStorage) ListAnswered(ctx context.Context, groupKey string, jobType models.JobType) ([]*models.GenerationJob, error) {
	query := badgerhold.Where("Status").Eq(models.JobStatusAnswered).Index("Status").
		And("GroupKey").Eq(groupKey)
	if jobType != "" {
		query = query.And("Type").Eq(jobType)
	}

	var jobs []models.GenerationJob
	if err := s.db.Store().Find(&jobs, query); err != nil {
		return nil, fmt.Errorf("failed to list answered jobs: %w", err)
	}

	sort.Slice(jobs, func(i, j int) bool { return jobs[i].Seq < jobs[j].Seq })

	result := make([]*models.GenerationJob, len(jobs))
	for i := range jobs {
		result[i] = &jobs[i]
	}
	return result, nil
}

func (s *JobStorage) ListByGroup(ctx context.Context, groupKey string, jobType models.JobType) ([]*models.GenerationJob, error) {
	query := badgerhold.Where("GroupKey").Eq(groupKey).Index("GroupKey")
	if jobType != "" {
		query = query.And("Type").Eq(jobType)
	}

	var jobs []models.GenerationJob
	if err := s.db.Store().Find(&jobs, query); err != nil {
		return nil, fmt.Errorf("failed to list jobs by group: %w", err)
	}

	sort.Slice(jobs, func(i, j int) bool { return jobs[i].Seq < jobs[j].Seq })

	result := make([]*models.GenerationJob, len(jobs))
	for i := range jobs {
		result[i] = &jobs[i]
	}
	return result, nil
}

func (s *JobStorage) MarkAnswered(ctx context.Context, id, answer string) error {
	if answer == "" {
		return fmt.Errorf("answer is required to mark job answered")
	}
	return s.markTransition(id, models.JobStatusAnswered, answer, "")
}

func (s *JobStorage) MarkFailed(ctx context.Context, id, errMsg string) error {
	return s.markTransition(id, models.JobStatusFailed, "", errMsg)
}

func (s *JobStorage) markTransition(id string, target models.JobStatus, answer, errMsg string) error {
	var job models.GenerationJob
	if err := s.db.Store().Get(id, &job); err != nil {
		if err == badgerhold.ErrNotFound {
			return fmt.Errorf("job not found: %s", id)
		}
		return fmt.Errorf("failed to get job: %w", err)
	}

	if !job.Status.CanTransition(target) {
		return fmt.Errorf("illegal job transition %s -> %s for %s", job.Status, target, id)
	}

	job.Status = target
	job.Answer = answer
	job.Error = errMsg
	job.UpdatedAt = time.Now()

	if err := s.db.Store().Update(id, &job); err != nil {
		return fmt.Errorf("failed to update job status: %w", err)
	}

	s.logger.Debug().
		Str("job_id", id).
		Str("status", string(target)).
		Msg("Job transitioned")
	return nil
}

func (s *JobStorage) CountByStatus(ctx context.Context, status models.JobStatus) (int, error) {
	count, err := s.db.Store().Count(&models.GenerationJob{}, badgerhold.Where("Status").Eq(status).Index("Status"))
	if err != nil {
		return 0, fmt.Errorf("failed to count jobs by status: %w", err)
	}
	return int(count), nil
}
