package badger

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/colligo/internal/interfaces"
	"github.com/ternarybob/colligo/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

const fragmentCollection = "fragments"

// FragmentStorage implements the append-only fragment log for Badger
type FragmentStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewFragmentStorage creates a new FragmentStorage instance
func NewFragmentStorage(db *BadgerDB, logger arbor.ILogger) interfaces.FragmentStorage {
	return &FragmentStorage{
		db:     db,
		logger: logger,
	}
}

func (s *FragmentStorage) Append(ctx context.Context, groupKey, jobID string, raw []byte) (*models.Fragment, error) {
	if groupKey == "" {
		return nil, fmt.Errorf("group key is required")
	}

	seq, err := s.db.NextSeq(fragmentCollection)
	if err != nil {
		return nil, err
	}

	fragment := &models.Fragment{
		ID:        "frg_" + uuid.New().String(),
		GroupKey:  groupKey,
		JobID:     jobID,
		Raw:       raw,
		Seq:       seq,
		CreatedAt: time.Now(),
	}

	if err := s.db.Store().Insert(fragment.ID, fragment); err != nil {
		return nil, fmt.Errorf("failed to append fragment: %w", err)
	}
	return fragment, nil
}

func (s *FragmentStorage) ListByGroup(ctx context.Context, groupKey string) ([]*models.Fragment, error) {
	var fragments []models.Fragment
	if err := s.db.Store().Find(&fragments, badgerhold.Where("GroupKey").Eq(groupKey).Index("GroupKey")); err != nil {
		return nil, fmt.Errorf("failed to list fragments: %w", err)
	}

	sort.Slice(fragments, func(i, j int) bool { return fragments[i].Seq < fragments[j].Seq })

	result := make([]*models.Fragment, len(fragments))
	for i := range fragments {
		result[i] = &fragments[i]
	}
	return result, nil
}

func (s *FragmentStorage) DeleteByGroup(ctx context.Context, groupKey string) error {
	if err := s.db.Store().DeleteMatching(&models.Fragment{}, badgerhold.Where("GroupKey").Eq(groupKey).Index("GroupKey")); err != nil {
		return fmt.Errorf("failed to delete fragments: %w", err)
	}
	return nil
}
