package badger

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/colligo/internal/common"
	"github.com/timshannon/badgerhold/v4"
)

// BadgerDB manages the Badger database connection
type BadgerDB struct {
	store  *badgerhold.Store
	logger arbor.ILogger
	config *common.BadgerConfig

	seqMu sync.Mutex
}

// seqCounter holds the next insertion sequence for one collection.
// Key format: collection name ("excerpts", "questions", "jobs", "fragments").
type seqCounter struct {
	Name string `badgerhold:"key"`
	Next uint64
}

// NewBadgerDB creates a new Badger database connection
func NewBadgerDB(logger arbor.ILogger, config *common.BadgerConfig) (*BadgerDB, error) {
	// If reset_on_startup is enabled, delete the existing database
	if config.ResetOnStartup {
		if _, err := os.Stat(config.Path); err == nil {
			logger.Debug().Str("path", config.Path).Msg("Deleting existing database (reset_on_startup=true)")
			if err := os.RemoveAll(config.Path); err != nil {
				logger.Warn().Err(err).Str("path", config.Path).Msg("Failed to delete database directory")
			}
		}
	}

	dir := filepath.Dir(config.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	logger.Debug().Str("path", config.Path).Msg("Opening Badger database connection")

	options := badgerhold.DefaultOptions
	options.Dir = config.Path
	options.ValueDir = config.Path
	options.Logger = nil // Disable default badger logger to use arbor

	store, err := badgerhold.Open(options)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger database: %w", err)
	}

	logger.Debug().Str("path", config.Path).Msg("Badger database initialized")

	return &BadgerDB{
		store:  store,
		logger: logger,
		config: config,
	}, nil
}

// Store returns the underlying badgerhold store
func (b *BadgerDB) Store() *badgerhold.Store {
	return b.store
}

// NextSeq returns the next insertion sequence for a collection. Sequences are
// monotonic per collection and give retrieval its deterministic tie-break.
func (b *BadgerDB) NextSeq(collection string) (uint64, error) {
	b.seqMu.Lock()
	defer b.seqMu.Unlock()

	var counter seqCounter
	err := b.store.Get(collection, &counter)
	if err != nil && err != badgerhold.ErrNotFound {
		return 0, fmt.Errorf("failed to read sequence counter: %w", err)
	}
	if err == badgerhold.ErrNotFound {
		counter = seqCounter{Name: collection, Next: 1}
	}

	seq := counter.Next
	counter.Next++
	if err := b.store.Upsert(collection, &counter); err != nil {
		return 0, fmt.Errorf("failed to advance sequence counter: %w", err)
	}
	return seq, nil
}

// Close closes the database connection
func (b *BadgerDB) Close() error {
	if b.store != nil {
		return b.store.Close()
	}
	return nil
}
