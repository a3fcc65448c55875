package common

import (
	"github.com/google/uuid"
)

// NewExcerptID generates a unique excerpt ID with the "exc_" prefix
// Format: exc_<uuid>
func NewExcerptID() string {
	return "exc_" + uuid.New().String()
}

// NewQuestionID generates a unique question ID with the "qst_" prefix
func NewQuestionID() string {
	return "qst_" + uuid.New().String()
}

// NewJobID generates a unique generation job ID with the "job_" prefix
func NewJobID() string {
	return "job_" + uuid.New().String()
}
