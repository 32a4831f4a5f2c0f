package search

import (
	"context"
	"errors"

	"github.com/hyperifyio/articlegen/internal/article"
)

// ErrNoProvider is returned when no search backend is configured.
var ErrNoProvider = errors.New("no search provider configured")

// Provider is a minimal interface for search providers. Organic results are
// returned in rank order with Position starting at 1.
type Provider interface {
	Search(ctx context.Context, query string, limit int) (article.SearchResponse, error)
	Name() string
}

// clip normalizes and de-duplicates organic links, keeps at most limit
// results and renumbers positions.
func clip(resp article.SearchResponse, limit int) article.SearchResponse {
	resp.Organic = normalizeOrganic(resp.Organic)
	if limit > 0 && len(resp.Organic) > limit {
		resp.Organic = resp.Organic[:limit]
	}
	for i := range resp.Organic {
		resp.Organic[i].Position = i + 1
	}
	return resp
}
