package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJobStatusTransitions(t *testing.T) {
	assert.True(t, JobStatusPending.CanTransition(JobStatusAnswered))
	assert.True(t, JobStatusPending.CanTransition(JobStatusFailed))

	// Terminal states never transition out
	assert.False(t, JobStatusAnswered.CanTransition(JobStatusPending))
	assert.False(t, JobStatusAnswered.CanTransition(JobStatusFailed))
	assert.False(t, JobStatusFailed.CanTransition(JobStatusPending))
	assert.False(t, JobStatusFailed.CanTransition(JobStatusAnswered))

	// Self-transitions are not legal either
	assert.False(t, JobStatusPending.CanTransition(JobStatusPending))
}

func TestJobStatusIsTerminal(t *testing.T) {
	assert.False(t, JobStatusPending.IsTerminal())
	assert.True(t, JobStatusAnswered.IsTerminal())
	assert.True(t, JobStatusFailed.IsTerminal())
}

func TestExcerptWordCount(t *testing.T) {
	tests := []struct {
		text     string
		expected int
	}{
		{"", 0},
		{"   ", 0},
		{"one", 1},
		{"revenue grew 12% year on year", 6},
		{"tab\tseparated\nand newline", 4},
	}

	for _, tt := range tests {
		e := &Excerpt{Text: tt.text}
		assert.Equal(t, tt.expected, e.WordCount(), "text %q", tt.text)
	}
}
