package badger

import (
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/colligo/internal/common"
	"github.com/ternarybob/colligo/internal/interfaces"
)

// Manager implements the StorageManager interface for Badger
type Manager struct {
	db        *BadgerDB
	excerpts  interfaces.ExcerptStorage
	questions interfaces.QuestionStorage
	jobs      interfaces.JobStorage
	fragments interfaces.FragmentStorage
	reports   interfaces.ReportStorage
	logger    arbor.ILogger
}

// NewManager creates a storage manager backed by a single Badger database
func NewManager(config *common.BadgerConfig, logger arbor.ILogger) (interfaces.StorageManager, error) {
	db, err := NewBadgerDB(logger, config)
	if err != nil {
		return nil, err
	}

	return &Manager{
		db:        db,
		excerpts:  NewExcerptStorage(db, logger),
		questions: NewQuestionStorage(db, logger),
		jobs:      NewJobStorage(db, logger),
		fragments: NewFragmentStorage(db, logger),
		reports:   NewReportStorage(db, logger),
		logger:    logger,
	}, nil
}

func (m *Manager) ExcerptStorage() interfaces.ExcerptStorage {
	return m.excerpts
}

func (m *Manager) QuestionStorage() interfaces.QuestionStorage {
	return m.questions
}

func (m *Manager) JobStorage() interfaces.JobStorage {
	return m.jobs
}

func (m *Manager) FragmentStorage() interfaces.FragmentStorage {
	return m.fragments
}

func (m *Manager) ReportStorage() interfaces.ReportStorage {
	return m.reports
}

func (m *Manager) Close() error {
	return m.db.Close()
}
