// Package search provides the two search strategies of the navigator:
// the instant local token filter and the async ranked full-text
// provider backed by SQLite FTS5.
package search

import (
	"context"

	"notenav/pkg/types"
)

// Hit is one ranked result from a full-text provider.
type Hit struct {
	Path    string
	Score   float64
	Terms   []string
	Spans   []types.MatchSpan
	Excerpt string
}

// Provider is the external ranked search contract. Search failures are
// treated by callers as an empty result set; search only ever narrows an
// always-available base list.
type Provider interface {
	Available() bool
	Search(ctx context.Context, query string) ([]Hit, error)
}

// Meta converts a hit into the render-facing search metadata.
func (h *Hit) Meta() *types.SearchMeta {
	return &types.SearchMeta{
		Score:   h.Score,
		Terms:   h.Terms,
		Spans:   h.Spans,
		Excerpt: h.Excerpt,
	}
}
