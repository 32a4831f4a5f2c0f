package extract

import (
	"context"
	"errors"
	"fmt"
)

// ErrFetch marks failures of the underlying page fetch. Callers use it to
// tell an unreachable page apart from an empty one.
var ErrFetch = errors.New("fetch page")

// Getter is the minimal fetch capability the extractor needs. *fetch.Client
// satisfies it.
type Getter interface {
	Get(ctx context.Context, url string) ([]byte, string, error)
}

// Extractor fetches a URL and derives title, description and body text.
type Extractor struct {
	Fetcher Getter
}

// Extract fetches url and parses it. Fetch failures are returned wrapped in
// ErrFetch; parse problems yield an empty Page instead.
func (e *Extractor) Extract(ctx context.Context, url string) (Page, error) {
	if e == nil || e.Fetcher == nil {
		return Page{}, fmt.Errorf("%w: fetcher not configured", ErrFetch)
	}
	body, _, err := e.Fetcher.Get(ctx, url)
	if err != nil {
		return Page{}, fmt.Errorf("%w %s: %v", ErrFetch, url, err)
	}
	p := FromHTMLWithURL(body, url)
	return p, nil
}
