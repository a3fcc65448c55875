package badger

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/colligo/internal/interfaces"
	"github.com/ternarybob/colligo/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// ReportStorage implements the ReportStorage interface for Badger
type ReportStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewReportStorage creates a new ReportStorage instance
func NewReportStorage(db *BadgerDB, logger arbor.ILogger) interfaces.ReportStorage {
	return &ReportStorage{
		db:     db,
		logger: logger,
	}
}

// Save overwrites the group's report wholesale; there is no partial update.
func (s *ReportStorage) Save(ctx context.Context, report *models.MergedReport) error {
	if report.GroupKey == "" {
		return fmt.Errorf("group key is required")
	}

	now := time.Now()
	if report.CreatedAt.IsZero() {
		report.CreatedAt = now
	}
	report.UpdatedAt = now

	if err := s.db.Store().Upsert(report.GroupKey, report); err != nil {
		return fmt.Errorf("failed to save merged report: %w", err)
	}
	return nil
}

func (s *ReportStorage) Get(ctx context.Context, groupKey string) (*models.MergedReport, error) {
	var report models.MergedReport
	if err := s.db.Store().Get(groupKey, &report); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("report not found: %s", groupKey)
		}
		return nil, fmt.Errorf("failed to get merged report: %w", err)
	}
	return &report, nil
}

func (s *ReportStorage) List(ctx context.Context) ([]*models.MergedReport, error) {
	var reports []models.MergedReport
	if err := s.db.Store().Find(&reports, nil); err != nil {
		return nil, fmt.Errorf("failed to list merged reports: %w", err)
	}

	result := make([]*models.MergedReport, len(reports))
	for i := range reports {
		result[i] = &reports[i]
	}
	return result, nil
}
