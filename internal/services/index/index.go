// Package index ranks stored excerpts against a query vector. The scan is
// brute force over one document group; group corpora are small enough that
// an approximate index would cost more than it saves.
package index

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/colligo/internal/interfaces"
	"github.com/ternarybob/colligo/internal/models"
)

// Match pairs an excerpt with its distance to the query vector.
type Match struct {
	Excerpt  *models.Excerpt
	Distance float64
}

// Index retrieves the nearest excerpts within a document group.
type Index struct {
	excerpts interfaces.ExcerptStorage
	embedder interfaces.Embedder
	logger   arbor.ILogger
}

// NewIndex creates a retrieval index over the excerpt store.
func NewIndex(excerpts interfaces.ExcerptStorage, embedder interfaces.Embedder, logger arbor.ILogger) *Index {
	return &Index{
		excerpts: excerpts,
		embedder: embedder,
		logger:   logger,
	}
}

// TopK returns the k excerpts in the group nearest to the query vector,
// ordered by ascending L2 distance with ties broken by insertion order.
// Excerpts without a vector, or with a vector of the wrong dimension, are
// skipped. A non-positive k or an empty group yields an empty slice.
func (idx *Index) TopK(ctx context.Context, groupPrefix string, query []float32, k int) ([]Match, error) {
	if k <= 0 {
		return []Match{}, nil
	}

	excerpts, err := idx.excerpts.QueryByGroupPrefix(ctx, groupPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to load group excerpts: %w", err)
	}

	matches := make([]Match, 0, len(excerpts))
	for _, excerpt := range excerpts {
		if len(excerpt.Embedding) == 0 {
			continue
		}
		if len(excerpt.Embedding) != len(query) {
			idx.logger.Warn().
				Str("excerpt_id", excerpt.ID).
				Int("have", len(excerpt.Embedding)).
				Int("want", len(query)).
				Msg("Skipping excerpt with mismatched embedding dimension")
			continue
		}
		matches = append(matches, Match{
			Excerpt:  excerpt,
			Distance: l2Distance(query, excerpt.Embedding),
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Distance != matches[j].Distance {
			return matches[i].Distance < matches[j].Distance
		}
		return matches[i].Excerpt.Seq < matches[j].Excerpt.Seq
	})

	if len(matches) > k {
		matches = matches[:k]
	}
	return matches, nil
}

// Search embeds the query text and returns its nearest excerpts.
func (idx *Index) Search(ctx context.Context, groupPrefix, queryText string, k int) ([]Match, error) {
	query, err := idx.embedder.Encode(ctx, queryText, interfaces.RoleQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	return idx.TopK(ctx, groupPrefix, query, k)
}

func l2Distance(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}
