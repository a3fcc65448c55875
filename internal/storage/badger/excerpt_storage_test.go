package badger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/colligo/internal/models"
)

func TestExcerptInsertAndQueryByGroupPrefix(t *testing.T) {
	db := newTestDB(t)
	storage := NewExcerptStorage(db, arbor.NewLogger())
	ctx := context.Background()

	groups := []string{"tata-motor", "tata-motor", "lg-el"}
	for i, group := range groups {
		_, err := storage.Insert(ctx, &models.Excerpt{
			GroupKey: group,
			Text:     "excerpt body",
		})
		require.NoError(t, err, "insert %d", i)
	}

	tata, err := storage.QueryByGroupPrefix(ctx, "tata-motor")
	require.NoError(t, err)
	assert.Len(t, tata, 2)

	lg, err := storage.QueryByGroupPrefix(ctx, "lg")
	require.NoError(t, err)
	assert.Len(t, lg, 1)

	none, err := storage.QueryByGroupPrefix(ctx, "reliance")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestExcerptQueryOrderIsInsertionOrder(t *testing.T) {
	db := newTestDB(t)
	storage := NewExcerptStorage(db, arbor.NewLogger())
	ctx := context.Background()

	texts := []string{"first", "second", "third"}
	for _, text := range texts {
		_, err := storage.Insert(ctx, &models.Excerpt{GroupKey: "vbl", Text: text})
		require.NoError(t, err)
	}

	got, err := storage.QueryByGroupPrefix(ctx, "vbl")
	require.NoError(t, err)
	require.Len(t, got, 3)
	for i, text := range texts {
		assert.Equal(t, text, got[i].Text)
	}
}

func TestExcerptListPendingEmbedding(t *testing.T) {
	db := newTestDB(t)
	storage := NewExcerptStorage(db, arbor.NewLogger())
	ctx := context.Background()

	embedded, err := storage.Insert(ctx, &models.Excerpt{
		GroupKey:  "vbl",
		Text:      "already embedded",
		Embedding: []float32{0.1, 0.2},
	})
	require.NoError(t, err)

	_, err = storage.Insert(ctx, &models.Excerpt{GroupKey: "vbl", Text: "needs embedding"})
	require.NoError(t, err)

	pending, err := storage.ListPendingEmbedding(ctx, 0)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "needs embedding", pending[0].Text)
	assert.NotEqual(t, embedded.ID, pending[0].ID)
}

func TestExcerptUpdatePreservesIdentity(t *testing.T) {
	db := newTestDB(t)
	storage := NewExcerptStorage(db, arbor.NewLogger())
	ctx := context.Background()

	excerpt, err := storage.Insert(ctx, &models.Excerpt{GroupKey: "vbl", Text: "original"})
	require.NoError(t, err)

	excerpt.Text = "rewritten"
	excerpt.Embedding = []float32{1, 2, 3}
	require.NoError(t, err)
	require.NoError(t, storage.Update(ctx, excerpt))

	got, err := storage.Get(ctx, excerpt.ID)
	require.NoError(t, err)
	assert.Equal(t, "rewritten", got.Text)
	assert.Equal(t, excerpt.Seq, got.Seq)
	assert.Equal(t, []float32{1, 2, 3}, got.Embedding)
}
