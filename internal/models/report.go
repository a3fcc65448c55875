package models

import (
	"encoding/json"
	"time"
)

// Fragment is the parsed result of one excerpt's extraction pass, stored on
// an append-only log until the merge pass folds it into the group's report.
// Raw holds the fragment's canonical JSON encoding.
type Fragment struct {
	ID        string    `json:"id" badgerhold:"key"`
	GroupKey  string    `json:"group_key" badgerhold:"index"`
	JobID     string    `json:"job_id"`
	Raw       []byte    `json:"raw"`
	Seq       uint64    `json:"seq" badgerhold:"index"`
	CreatedAt time.Time `json:"created_at"`
}

// MergedReport is the single structured document produced by folding all
// fragments of a group. Re-running the merge overwrites the row wholesale.
type MergedReport struct {
	GroupKey      string          `json:"group_key" badgerhold:"key"`
	Report        json.RawMessage `json:"report"`
	FragmentCount int             `json:"fragment_count"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}
