package embeddings

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/colligo/internal/common"
	"github.com/ternarybob/colligo/internal/interfaces"
	"github.com/ternarybob/colligo/internal/models"
	"github.com/ternarybob/colligo/internal/storage/badger"
)

// recordingEmbedder returns a fixed vector and remembers the roles it saw.
type recordingEmbedder struct {
	roles   []interfaces.EmbeddingRole
	failOn  string
	failErr error
}

func (e *recordingEmbedder) Encode(ctx context.Context, text string, role interfaces.EmbeddingRole) ([]float32, error) {
	if e.failOn != "" && text == e.failOn {
		return nil, e.failErr
	}
	e.roles = append(e.roles, role)
	return []float32{0.1, 0.2}, nil
}

func (e *recordingEmbedder) Dimension() int { return 2 }

func newTestService(t *testing.T, embedder interfaces.Embedder) (*Service, interfaces.StorageManager) {
	t.Helper()

	storage, err := badger.NewManager(&common.BadgerConfig{Path: t.TempDir()}, arbor.NewLogger())
	if err != nil {
		t.Fatalf("Failed to open test storage: %v", err)
	}
	t.Cleanup(func() { storage.Close() })

	return NewService(embedder, storage, arbor.NewLogger()), storage
}

func TestEmbedPendingExcerptsIsIdempotent(t *testing.T) {
	embedder := &recordingEmbedder{}
	service, storage := newTestService(t, embedder)
	ctx := context.Background()

	_, err := storage.ExcerptStorage().Insert(ctx, &models.Excerpt{
		GroupKey: "vbl",
		Text:     "needs a vector",
	})
	require.NoError(t, err)

	embedded, err := service.EmbedPendingExcerpts(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, embedded)
	require.Len(t, embedder.roles, 1)
	assert.Equal(t, interfaces.RolePassage, embedder.roles[0])

	// Second pass finds nothing to do
	embedded, err = service.EmbedPendingExcerpts(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, embedded)
}

func TestEmbedPendingQuestionsUsesQueryRole(t *testing.T) {
	embedder := &recordingEmbedder{}
	service, storage := newTestService(t, embedder)
	ctx := context.Background()

	_, err := storage.QuestionStorage().Insert(ctx, &models.Question{
		Text: "what was revenue",
	})
	require.NoError(t, err)

	embedded, err := service.EmbedPendingQuestions(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, embedded)
	require.Len(t, embedder.roles, 1)
	assert.Equal(t, interfaces.RoleQuery, embedder.roles[0])
}

func TestEmbedPendingExcerptsContinuesPastFailures(t *testing.T) {
	embedder := &recordingEmbedder{
		failOn:  "poison row",
		failErr: fmt.Errorf("provider unavailable"),
	}
	service, storage := newTestService(t, embedder)
	ctx := context.Background()

	_, err := storage.ExcerptStorage().Insert(ctx, &models.Excerpt{GroupKey: "vbl", Text: "poison row"})
	require.NoError(t, err)
	_, err = storage.ExcerptStorage().Insert(ctx, &models.Excerpt{GroupKey: "vbl", Text: "healthy row"})
	require.NoError(t, err)

	embedded, err := service.EmbedPendingExcerpts(ctx, 0)
	assert.Error(t, err)
	assert.Equal(t, 1, embedded)

	// The failed row stays pending for the next run
	pending, listErr := storage.ExcerptStorage().ListPendingEmbedding(ctx, 0)
	require.NoError(t, listErr)
	require.Len(t, pending, 1)
	assert.Equal(t, "poison row", pending[0].Text)
}
