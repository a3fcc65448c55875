package badger

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/colligo/internal/common"
	"github.com/ternarybob/colligo/internal/interfaces"
	"github.com/ternarybob/colligo/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

const excerptCollection = "excerpts"

// ExcerptStorage implements the ExcerptStorage interface for Badger
type ExcerptStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewExcerptStorage creates a new ExcerptStorage instance
func NewExcerptStorage(db *BadgerDB, logger arbor.ILogger) interfaces.ExcerptStorage {
	return &ExcerptStorage{
		db:     db,
		logger: logger,
	}
}

func (s *ExcerptStorage) Insert(ctx context.Context, excerpt *models.Excerpt) (*models.Excerpt, error) {
	if excerpt.GroupKey == "" {
		return nil, fmt.Errorf("group key is required")
	}

	seq, err := s.db.NextSeq(excerptCollection)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	excerpt.ID = common.NewExcerptID()
	excerpt.Seq = seq
	excerpt.CreatedAt = now
	excerpt.UpdatedAt = now

	if err := s.db.Store().Insert(excerpt.ID, excerpt); err != nil {
		return nil, fmt.Errorf("failed to insert excerpt: %w", err)
	}
	return excerpt, nil
}

func (s *ExcerptStorage) Get(ctx context.Context, id string) (*models.Excerpt, error) {
	var excerpt models.Excerpt
	if err := s.db.Store().Get(id, &excerpt); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("excerpt not found: %s", id)
		}
		return nil, fmt.Errorf("failed to get excerpt: %w", err)
	}
	return &excerpt, nil
}

func (s *ExcerptStorage) Update(ctx context.Context, excerpt *models.Excerpt) error {
	if excerpt.ID == "" {
		return fmt.Errorf("excerpt ID is required")
	}
	excerpt.UpdatedAt = time.Now()

	if err := s.db.Store().Update(excerpt.ID, excerpt); err != nil {
		if err == badgerhold.ErrNotFound {
			return fmt.Errorf("excerpt not found: %s", excerpt.ID)
		}
		return fmt.Errorf("failed to update excerpt: %w", err)
	}
	return nil
}

// QueryByGroupPrefix matches on a GroupKey prefix rather than equality:
// upstream group keys may carry trailing chunk indices, and every downstream
// join must still find the rows.
func (s *ExcerptStorage) QueryByGroupPrefix(ctx context.Context, prefix string) ([]*models.Excerpt, error) {
	regex, err := regexp.Compile("^" + regexp.QuoteMeta(prefix))
	if err != nil {
		return nil, fmt.Errorf("invalid group prefix: %w", err)
	}

	var excerpts []models.Excerpt
	if err := s.db.Store().Find(&excerpts, badgerhold.Where("GroupKey").RegExp(regex)); err != nil {
		return nil, fmt.Errorf("failed to query excerpts by group prefix: %w", err)
	}

	sort.Slice(excerpts, func(i, j int) bool { return excerpts[i].Seq < excerpts[j].Seq })

	result := make([]*models.Excerpt, len(excerpts))
	for i := range excerpts {
		result[i] = &excerpts[i]
	}
	return result, nil
}

func (s *ExcerptStorage) ListPendingEmbedding(ctx context.Context, limit int) ([]*models.Excerpt, error) {
	var excerpts []models.Excerpt
	if err := s.db.Store().Find(&excerpts, badgerhold.Where("Embedding").IsNil()); err != nil {
		return nil, fmt.Errorf("failed to list excerpts pending embedding: %w", err)
	}

	sort.Slice(excerpts, func(i, j int) bool { return excerpts[i].Seq < excerpts[j].Seq })
	if limit > 0 && len(excerpts) > limit {
		excerpts = excerpts[:limit]
	}

	result := make([]*models.Excerpt, len(excerpts))
	for i := range excerpts {
		result[i] = &excerpts[i]
	}
	return result, nil
}

func (s *ExcerptStorage) Count(ctx context.Context) (int, error) {
	count, err := s.db.Store().Count(&models.Excerpt{}, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to count excerpts: %w", err)
	}
	return int(count), nil
}
