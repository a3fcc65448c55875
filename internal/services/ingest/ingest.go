// Package ingest loads delimited document text into the excerpt store and
// enforces the per-excerpt word budget.
package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/colligo/internal/common"
	"github.com/ternarybob/colligo/internal/interfaces"
	"github.com/ternarybob/colligo/internal/models"
	"github.com/ternarybob/colligo/internal/services/chunker"
)

// Service ingests raw document files into excerpts.
type Service struct {
	excerpts  interfaces.ExcerptStorage
	delimiter string
	maxWords  int
	logger    arbor.ILogger
}

// NewService creates an ingest service bound to the configured excerpt
// delimiter and word budget.
func NewService(cfg *common.Config, excerpts interfaces.ExcerptStorage, logger arbor.ILogger) *Service {
	return &Service{
		excerpts:  excerpts,
		delimiter: cfg.Pipeline.ExcerptDelimiter,
		maxWords:  cfg.Pipeline.MaxExcerptWords,
		logger:    logger,
	}
}

// IngestText splits content on the excerpt delimiter and stores one excerpt
// per non-empty segment under the group derived from filename. Returns the
// number of excerpts stored.
func (s *Service) IngestText(ctx context.Context, filename, content string) (int, error) {
	groupKey := common.NormalizeGroupKey(filename)
	if groupKey == "" {
		return 0, fmt.Errorf("filename %q yields an empty group key", filename)
	}

	segments := strings.Split(content, s.delimiter)
	var stored int
	for _, segment := range segments {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			continue
		}

		if _, err := s.excerpts.Insert(ctx, &models.Excerpt{
			GroupKey: groupKey,
			Text:     segment,
		}); err != nil {
			return stored, fmt.Errorf("failed to store excerpt: %w", err)
		}
		stored++
	}

	s.logger.Info().
		Str("group_key", groupKey).
		Str("filename", filename).
		Int("excerpts", stored).
		Msg("Ingested document")
	return stored, nil
}

// IngestFile reads a document file from disk and ingests it.
func (s *Service) IngestFile(ctx context.Context, path string) (int, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return s.IngestText(ctx, filepath.Base(path), string(content))
}

// IngestDir ingests every .txt file in dir. Files are processed in
// directory order; a failing file stops the walk.
func (s *Service) IngestDir(ctx context.Context, dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	var total int
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(strings.ToLower(entry.Name()), ".txt") {
			continue
		}
		count, err := s.IngestFile(ctx, filepath.Join(dir, entry.Name()))
		if err != nil {
			return total, err
		}
		total += count
	}
	return total, nil
}

// SplitOversized rewrites every stored excerpt that exceeds the word budget
// as a run of budget-sized rows. The first chunk replaces the original row
// in place, so its identity survives; the remaining chunks are inserted as
// new rows under the same group. Returns the number of rows that were split.
func (s *Service) SplitOversized(ctx context.Context, groupPrefix string) (int, error) {
	excerpts, err := s.excerpts.QueryByGroupPrefix(ctx, groupPrefix)
	if err != nil {
		return 0, fmt.Errorf("failed to load excerpts: %w", err)
	}

	var split int
	for _, excerpt := range excerpts {
		if excerpt.WordCount() <= s.maxWords {
			continue
		}

		chunks := chunker.SplitWords(excerpt.Text, s.maxWords)
		if len(chunks) < 2 {
			continue
		}

		excerpt.Text = chunks[0]
		// The replaced text invalidates any existing vector.
		excerpt.Embedding = nil
		if err := s.excerpts.Update(ctx, excerpt); err != nil {
			return split, fmt.Errorf("failed to rewrite oversized excerpt %s: %w", excerpt.ID, err)
		}

		for _, chunk := range chunks[1:] {
			if _, err := s.excerpts.Insert(ctx, &models.Excerpt{
				GroupKey: excerpt.GroupKey,
				Text:     chunk,
			}); err != nil {
				return split, fmt.Errorf("failed to insert split chunk: %w", err)
			}
		}

		s.logger.Debug().
			Str("excerpt_id", excerpt.ID).
			Int("chunks", len(chunks)).
			Msg("Split oversized excerpt")
		split++
	}
	return split, nil
}
