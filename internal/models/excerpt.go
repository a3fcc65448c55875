package models

import (
	"time"
)

// Excerpt represents one bounded-size slice of a source document's text.
// GroupKey is the normalized document identifier shared by every excerpt of
// the same source document; Seq is a store-assigned monotonic insertion
// sequence used for deterministic ordering and tie-breaks.
//
// Excerpts are never deleted. An oversized excerpt is superseded in place:
// its text is replaced with the first chunk and the remaining chunks are
// appended as new rows carrying the same GroupKey.
type Excerpt struct {
	ID        string    `json:"id" badgerhold:"key"`
	GroupKey  string    `json:"group_key" badgerhold:"index"`
	Text      string    `json:"text"`
	Embedding []float32 `json:"embedding,omitempty"` // nil until the backfill pass runs
	Seq       uint64    `json:"seq" badgerhold:"index"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// WordCount returns the number of whitespace-separated words in the excerpt
func (e *Excerpt) WordCount() int {
	return countWords(e.Text)
}

func countWords(text string) int {
	n := 0
	inWord := false
	for _, r := range text {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\v' || r == '\f' {
			inWord = false
			continue
		}
		if !inWord {
			n++
			inWord = true
		}
	}
	return n
}
