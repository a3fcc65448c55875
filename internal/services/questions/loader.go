// Package questions loads analyst question sets from YAML files into the
// question store.
package questions

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/colligo/internal/interfaces"
	"github.com/ternarybob/colligo/internal/models"
	"gopkg.in/yaml.v3"
)

// QuestionSet is the on-disk YAML shape of a question file.
type QuestionSet struct {
	Questions []string `yaml:"questions"`
}

// Loader inserts question-set entries into the question store.
type Loader struct {
	questions interfaces.QuestionStorage
	logger    arbor.ILogger
}

// NewLoader creates a question loader.
func NewLoader(questions interfaces.QuestionStorage, logger arbor.ILogger) *Loader {
	return &Loader{
		questions: questions,
		logger:    logger,
	}
}

// LoadFile parses a YAML question set and stores every question that is not
// already present. Matching is by exact text, so re-running a load is safe.
func (l *Loader) LoadFile(ctx context.Context, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read question file %s: %w", path, err)
	}
	return l.Load(ctx, data)
}

// Load parses YAML question-set content and stores the new questions.
func (l *Loader) Load(ctx context.Context, data []byte) (int, error) {
	var set QuestionSet
	if err := yaml.Unmarshal(data, &set); err != nil {
		return 0, fmt.Errorf("failed to parse question set: %w", err)
	}

	existing, err := l.questions.ListUnanswered(ctx, 0)
	if err != nil {
		return 0, fmt.Errorf("failed to list existing questions: %w", err)
	}
	seen := make(map[string]bool, len(existing))
	for _, q := range existing {
		seen[q.Text] = true
	}

	var inserted int
	for _, text := range set.Questions {
		text = strings.TrimSpace(text)
		if text == "" || seen[text] {
			continue
		}

		if _, err := l.questions.Insert(ctx, &models.Question{Text: text}); err != nil {
			return inserted, fmt.Errorf("failed to insert question: %w", err)
		}
		seen[text] = true
		inserted++
	}

	l.logger.Info().
		Int("questions", len(set.Questions)).
		Int("inserted", inserted).
		Msg("Loaded question set")
	return inserted, nil
}
