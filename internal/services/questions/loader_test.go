package questions

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/colligo/internal/common"
	"github.com/ternarybob/colligo/internal/interfaces"
	"github.com/ternarybob/colligo/internal/storage/badger"
)

func newTestLoader(t *testing.T) (*Loader, interfaces.QuestionStorage) {
	t.Helper()

	storage, err := badger.NewManager(&common.BadgerConfig{Path: t.TempDir()}, arbor.NewLogger())
	if err != nil {
		t.Fatalf("Failed to open test storage: %v", err)
	}
	t.Cleanup(func() { storage.Close() })

	return NewLoader(storage.QuestionStorage(), arbor.NewLogger()), storage.QuestionStorage()
}

func TestLoadInsertsQuestions(t *testing.T) {
	loader, store := newTestLoader(t)

	data := []byte(`questions:
  - "What was consolidated revenue in FY25?"
  - "What are the major risk factors?"
  - ""
`)
	inserted, err := loader.Load(context.Background(), data)
	require.NoError(t, err)
	assert.Equal(t, 2, inserted)

	unanswered, err := store.ListUnanswered(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, unanswered, 2)
}

func TestLoadIsIdempotent(t *testing.T) {
	loader, store := newTestLoader(t)

	data := []byte("questions:\n  - What was net profit?\n")
	_, err := loader.Load(context.Background(), data)
	require.NoError(t, err)

	inserted, err := loader.Load(context.Background(), data)
	require.NoError(t, err)
	assert.Equal(t, 0, inserted)

	unanswered, err := store.ListUnanswered(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, unanswered, 1)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	loader, _ := newTestLoader(t)

	_, err := loader.Load(context.Background(), []byte("questions: [unclosed"))
	assert.Error(t, err)
}
