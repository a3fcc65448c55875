package models

import (
	"time"
)

// Question represents one standing analyst question. The embedding is
// populated lazily: only rows with a nil embedding are processed by the
// backfill pass, so re-running it is idempotent.
type Question struct {
	ID        string    `json:"id" badgerhold:"key"`
	Text      string    `json:"text"`
	Embedding []float32 `json:"embedding,omitempty"`
	Answer    string    `json:"answer,omitempty"`
	Seq       uint64    `json:"seq" badgerhold:"index"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Answered reports whether the question already carries an answer. The QA
// producer skips answered questions so a re-run enqueues no duplicate jobs.
func (q *Question) Answered() bool {
	return q.Answer != ""
}
