package interfaces

import (
	"context"

	"github.com/ternarybob/colligo/internal/models"
)

// ExcerptStorage - interface for excerpt persistence
type ExcerptStorage interface {
	// Insert appends a new excerpt row, assigning its identity and sequence.
	// No deduplication is performed.
	Insert(ctx context.Context, excerpt *models.Excerpt) (*models.Excerpt, error)

	// Get returns one excerpt by ID
	Get(ctx context.Context, id string) (*models.Excerpt, error)

	// Update overwrites an existing excerpt row (used by the split pass and
	// the embedding backfill)
	Update(ctx context.Context, excerpt *models.Excerpt) error

	// QueryByGroupPrefix returns excerpts whose GroupKey starts with the
	// prefix, ordered by insertion sequence
	QueryByGroupPrefix(ctx context.Context, prefix string) ([]*models.Excerpt, error)

	// ListPendingEmbedding returns excerpts with a nil embedding, ordered by
	// insertion sequence, at most limit rows (0 = unlimited)
	ListPendingEmbedding(ctx context.Context, limit int) ([]*models.Excerpt, error)

	// Count returns the total number of excerpt rows
	Count(ctx context.Context) (int, error)
}

// QuestionStorage - interface for question persistence
type QuestionStorage interface {
	Insert(ctx context.Context, question *models.Question) (*models.Question, error)
	Get(ctx context.Context, id string) (*models.Question, error)
	Update(ctx context.Context, question *models.Question) error

	// ListUnanswered returns questions without an answer, ordered by
	// insertion sequence, at most limit rows (0 = unlimited). The filter
	// makes the QA producer idempotent.
	ListUnanswered(ctx context.Context, limit int) ([]*models.Question, error)

	// ListPendingEmbedding returns questions with a nil embedding
	ListPendingEmbedding(ctx context.Context, limit int) ([]*models.Question, error)

	Count(ctx context.Context) (int, error)
}

// JobStorage - interface for the generation job queue
type JobStorage interface {
	// Enqueue inserts a new pending job
	Enqueue(ctx context.Context, prompt, groupKey string, jobType models.JobType) (*models.GenerationJob, error)

	Get(ctx context.Context, id string) (*models.GenerationJob, error)

	// ListPending returns pending jobs ordered by insertion sequence
	// (oldest first), at most limit rows (0 = unlimited)
	ListPending(ctx context.Context, limit int) ([]*models.GenerationJob, error)

	// ListAnswered returns answered jobs for a group, ordered by insertion
	// sequence, optionally filtered by job type ("" = all types)
	ListAnswered(ctx context.Context, groupKey string, jobType models.JobType) ([]*models.GenerationJob, error)

	// ListByGroup returns all jobs for a group regardless of status, ordered
	// by insertion sequence, optionally filtered by job type ("" = all
	// types). Producers use it to skip work that is already enqueued.
	ListByGroup(ctx context.Context, groupKey string, jobType models.JobType) ([]*models.GenerationJob, error)

	// MarkAnswered commits the answered status together with the answer text
	// in a single write. Refused if the job is already terminal.
	MarkAnswered(ctx context.Context, id, answer string) error

	// MarkFailed commits the failed status with a diagnostic, leaving the
	// answer empty. Refused if the job is already terminal.
	MarkFailed(ctx context.Context, id, errMsg string) error

	// CountByStatus returns the number of jobs in the given status
	CountByStatus(ctx context.Context, status models.JobStatus) (int, error)
}

// FragmentStorage - append-only log of extraction fragments
type FragmentStorage interface {
	Append(ctx context.Context, groupKey, jobID string, raw []byte) (*models.Fragment, error)

	// ListByGroup returns fragments in append order
	ListByGroup(ctx context.Context, groupKey string) ([]*models.Fragment, error)

	// DeleteByGroup clears a group's fragment log (used before a re-run so
	// the merged report is rebuilt wholesale)
	DeleteByGroup(ctx context.Context, groupKey string) error
}

// ReportStorage - interface for merged report persistence
type ReportStorage interface {
	// Save overwrites the group's report wholesale
	Save(ctx context.Context, report *models.MergedReport) error
	Get(ctx context.Context, groupKey string) (*models.MergedReport, error)
	List(ctx context.Context) ([]*models.MergedReport, error)
}

// StorageManager provides access to all storage interfaces
type StorageManager interface {
	ExcerptStorage() ExcerptStorage
	QuestionStorage() QuestionStorage
	JobStorage() JobStorage
	FragmentStorage() FragmentStorage
	ReportStorage() ReportStorage
	Close() error
}
