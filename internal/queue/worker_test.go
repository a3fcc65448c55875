package queue

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/colligo/internal/common"
	"github.com/ternarybob/colligo/internal/interfaces"
	"github.com/ternarybob/colligo/internal/models"
	"github.com/ternarybob/colligo/internal/services/llm"
	"github.com/ternarybob/colligo/internal/storage/badger"
)

// scriptedProvider fails prompts containing "fail" and echoes the rest.
type scriptedProvider struct {
	calls int
}

func (p *scriptedProvider) GenerateText(ctx context.Context, req *llm.GenerateRequest) (*llm.GenerateResponse, error) {
	p.calls++
	if strings.Contains(req.Prompt, "fail") {
		return nil, fmt.Errorf("model refused")
	}
	return &llm.GenerateResponse{Text: "answer to: " + req.Prompt}, nil
}

func (p *scriptedProvider) Close() error { return nil }

func newTestWorker(t *testing.T, provider llm.Provider) (*Worker, interfaces.JobStorage) {
	t.Helper()

	storage, err := badger.NewManager(&common.BadgerConfig{Path: t.TempDir()}, arbor.NewLogger())
	if err != nil {
		t.Fatalf("Failed to open test storage: %v", err)
	}
	t.Cleanup(func() { storage.Close() })

	cfg := common.NewDefaultConfig()
	cfg.Pipeline.GenerationInterval = "1ms"
	return NewWorker(cfg, storage.JobStorage(), provider, arbor.NewLogger()), storage.JobStorage()
}

func TestProcessBatchDrivesAllJobsTerminal(t *testing.T) {
	provider := &scriptedProvider{}
	worker, jobs := newTestWorker(t, provider)
	ctx := context.Background()

	ids := make([]string, 0, 3)
	for _, prompt := range []string{"extract part 1", "this one should fail", "extract part 2"} {
		job, err := jobs.Enqueue(ctx, prompt, "tata-motor", models.JobTypeExtraction)
		require.NoError(t, err)
		ids = append(ids, job.ID)
	}

	stats, err := worker.ProcessBatch(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Answered)
	assert.Equal(t, 1, stats.Failed)
	assert.Equal(t, 3, provider.calls)

	for _, id := range ids {
		job, err := jobs.Get(ctx, id)
		require.NoError(t, err)
		assert.True(t, job.Status.IsTerminal(), "job %s left in %s", id, job.Status)
	}

	// The failed job records the error and keeps its answer empty
	failed, err := jobs.Get(ctx, ids[1])
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusFailed, failed.Status)
	assert.Empty(t, failed.Answer)
	assert.Contains(t, failed.Error, "model refused")

	pending, err := jobs.ListPending(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestProcessBatchHonorsLimit(t *testing.T) {
	worker, jobs := newTestWorker(t, &scriptedProvider{})
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := jobs.Enqueue(ctx, fmt.Sprintf("prompt %d", i), "vbl", models.JobTypeQA)
		require.NoError(t, err)
	}

	stats, err := worker.ProcessBatch(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Answered)

	pending, err := jobs.ListPending(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, pending, 3)
}

func TestProcessBatchEmptyQueue(t *testing.T) {
	worker, _ := newTestWorker(t, &scriptedProvider{})

	stats, err := worker.ProcessBatch(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Answered)
	assert.Equal(t, 0, stats.Failed)
}

func TestProcessBatchStopsOnContextCancel(t *testing.T) {
	worker, jobs := newTestWorker(t, &scriptedProvider{})
	ctx, cancel := context.WithCancel(context.Background())

	_, err := jobs.Enqueue(ctx, "prompt", "vbl", models.JobTypeQA)
	require.NoError(t, err)
	cancel()

	_, err = worker.ProcessBatch(ctx, 0)
	assert.Error(t, err)
}
