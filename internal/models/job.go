package models

import (
	"time"
)

// JobStatus represents the lifecycle state of a generation job
type JobStatus string

const (
	// JobStatusPending indicates the job is waiting for a worker
	JobStatusPending JobStatus = "pending"
	// JobStatusAnswered indicates generation succeeded and the answer is stored
	JobStatusAnswered JobStatus = "answered"
	// JobStatusFailed indicates generation failed unrecoverably
	JobStatusFailed JobStatus = "failed"
)

// IsTerminal reports whether the status permits no further transitions
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusAnswered || s == JobStatusFailed
}

// CanTransition reports whether a transition to the target status is legal.
// The only legal transitions are pending -> answered and pending -> failed.
func (s JobStatus) CanTransition(target JobStatus) bool {
	if s != JobStatusPending {
		return false
	}
	return target == JobStatusAnswered || target == JobStatusFailed
}

// JobType distinguishes bulk extraction jobs from question-answering jobs
type JobType string

const (
	JobTypeExtraction JobType = "extraction"
	JobTypeQA         JobType = "qa"
)

// GenerationJob represents one queued model-generation request. Producers
// insert pending rows; the worker claims them in Seq order, calls the model,
// and commits the terminal status together with the answer in one write.
type GenerationJob struct {
	ID        string    `json:"id" badgerhold:"key"`
	Prompt    string    `json:"prompt"`
	GroupKey  string    `json:"group_key" badgerhold:"index"` // company/document the prompt belongs to
	Status    JobStatus `json:"status" badgerhold:"index"`
	Type      JobType   `json:"type" badgerhold:"index"`
	Answer    string    `json:"answer,omitempty"` // empty unless Status == answered
	Error     string    `json:"error,omitempty"`  // diagnostic for failed jobs
	Seq       uint64    `json:"seq" badgerhold:"index"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
