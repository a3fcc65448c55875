package reports

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/colligo/internal/common"
	"github.com/ternarybob/colligo/internal/interfaces"
	"github.com/ternarybob/colligo/internal/models"
	"github.com/ternarybob/colligo/internal/storage/badger"
)

func newTestStorage(t *testing.T) interfaces.StorageManager {
	t.Helper()

	storage, err := badger.NewManager(&common.BadgerConfig{Path: t.TempDir()}, arbor.NewLogger())
	if err != nil {
		t.Fatalf("Failed to open test storage: %v", err)
	}
	t.Cleanup(func() { storage.Close() })
	return storage
}

func newTestService(t *testing.T) (*Service, interfaces.StorageManager) {
	storage := newTestStorage(t)
	return NewService(common.NewDefaultConfig(), storage, arbor.NewLogger()), storage
}

func TestProduceExtractionJobsOnePerChunk(t *testing.T) {
	service, storage := newTestService(t)
	ctx := context.Background()

	// 12000 chars splits into three 5000-char prompt chunks
	_, err := storage.ExcerptStorage().Insert(ctx, &models.Excerpt{
		GroupKey: "tata-motor",
		Text:     strings.Repeat("x", 12000),
	})
	require.NoError(t, err)

	_, err = storage.ExcerptStorage().Insert(ctx, &models.Excerpt{
		GroupKey: "tata-motor",
		Text:     "short excerpt",
	})
	require.NoError(t, err)

	enqueued, err := service.ProduceExtractionJobs(ctx, "tata-motor")
	require.NoError(t, err)
	assert.Equal(t, 4, enqueued)

	pending, err := storage.JobStorage().ListPending(ctx, 0)
	require.NoError(t, err)
	require.Len(t, pending, 4)
	for _, job := range pending {
		assert.Equal(t, models.JobTypeExtraction, job.Type)
		assert.Contains(t, job.Prompt, "financial analyst AI")
	}
}

func TestProduceExtractionJobsRerunEnqueuesNothing(t *testing.T) {
	service, storage := newTestService(t)
	ctx := context.Background()

	_, err := storage.ExcerptStorage().Insert(ctx, &models.Excerpt{
		GroupKey: "tata-motor",
		Text:     strings.Repeat("x", 12000),
	})
	require.NoError(t, err)

	enqueued, err := service.ProduceExtractionJobs(ctx, "tata-motor")
	require.NoError(t, err)
	assert.Equal(t, 3, enqueued)

	// A second run finds every chunk already covered by a job
	enqueued, err = service.ProduceExtractionJobs(ctx, "tata-motor")
	require.NoError(t, err)
	assert.Equal(t, 0, enqueued)

	pending, err := storage.JobStorage().ListPending(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, pending, 3)
}

func TestProduceExtractionJobsRerunCoversNewExcerpts(t *testing.T) {
	service, storage := newTestService(t)
	ctx := context.Background()
	jobs := storage.JobStorage()

	_, err := storage.ExcerptStorage().Insert(ctx, &models.Excerpt{
		GroupKey: "vbl",
		Text:     "first excerpt",
	})
	require.NoError(t, err)

	enqueued, err := service.ProduceExtractionJobs(ctx, "vbl")
	require.NoError(t, err)
	require.Equal(t, 1, enqueued)

	// Finished jobs still count as covered on the next run
	pending, err := jobs.ListPending(ctx, 0)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.NoError(t, jobs.MarkAnswered(ctx, pending[0].ID, `{"Year":"2023"}`))

	_, err = storage.ExcerptStorage().Insert(ctx, &models.Excerpt{
		GroupKey: "vbl",
		Text:     "second excerpt",
	})
	require.NoError(t, err)

	enqueued, err = service.ProduceExtractionJobs(ctx, "vbl")
	require.NoError(t, err)
	assert.Equal(t, 1, enqueued)

	pending, err = jobs.ListPending(ctx, 0)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Contains(t, pending[0].Prompt, "second excerpt")
}

func TestBuildReportMergesAnsweredJobs(t *testing.T) {
	service, storage := newTestService(t)
	ctx := context.Background()
	jobs := storage.JobStorage()

	a, err := jobs.Enqueue(ctx, "prompt a", "tata-motor", models.JobTypeExtraction)
	require.NoError(t, err)
	b, err := jobs.Enqueue(ctx, "prompt b", "tata-motor", models.JobTypeExtraction)
	require.NoError(t, err)
	c, err := jobs.Enqueue(ctx, "prompt c", "tata-motor", models.JobTypeExtraction)
	require.NoError(t, err)

	require.NoError(t, jobs.MarkAnswered(ctx, a.ID, `Here you go: {"Revenue":"100 crores"}`))
	require.NoError(t, jobs.MarkAnswered(ctx, b.ID, `{"Margin":"12%"}`))
	require.NoError(t, jobs.MarkAnswered(ctx, c.ID, "no json in this answer"))

	report, err := service.BuildReport(ctx, "tata-motor")
	require.NoError(t, err)
	assert.Equal(t, 2, report.FragmentCount)
	assert.JSONEq(t, `{"Revenue":"100 crores","Margin":"12%"}`, string(report.Report))

	fragments, err := storage.FragmentStorage().ListByGroup(ctx, "tata-motor")
	require.NoError(t, err)
	assert.Len(t, fragments, 2)

	saved, err := storage.ReportStorage().Get(ctx, "tata-motor")
	require.NoError(t, err)
	assert.JSONEq(t, string(report.Report), string(saved.Report))
}

func TestBuildReportRerunReplacesFragments(t *testing.T) {
	service, storage := newTestService(t)
	ctx := context.Background()
	jobs := storage.JobStorage()

	job, err := jobs.Enqueue(ctx, "prompt", "vbl", models.JobTypeExtraction)
	require.NoError(t, err)
	require.NoError(t, jobs.MarkAnswered(ctx, job.ID, `{"Year":"2023"}`))

	_, err = service.BuildReport(ctx, "vbl")
	require.NoError(t, err)
	_, err = service.BuildReport(ctx, "vbl")
	require.NoError(t, err)

	// Fragment log holds one generation, not the union of both runs
	fragments, err := storage.FragmentStorage().ListByGroup(ctx, "vbl")
	require.NoError(t, err)
	assert.Len(t, fragments, 1)
}

func TestBuildReportNoAnsweredJobs(t *testing.T) {
	service, _ := newTestService(t)

	_, err := service.BuildReport(context.Background(), "absent")
	assert.Error(t, err)
}
