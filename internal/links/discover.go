package links

import (
	"context"

	"github.com/rs/zerolog/log"
)

// IntelLookup is the fallback used when static scanning finds nothing.
type IntelLookup interface {
	Lookup(ctx context.Context, target string) (IntelResult, error)
}

// Discoverer finds outbound commerce links for a page. Some pages only
// emit links from scripts, so an empty static scan falls back to Intel.
type Discoverer struct {
	Filter Filter
	Intel  IntelLookup
}

// Discover scans markup and filters the result against sourceURL's host.
// It never fails; a broken fallback yields no links.
func (d *Discoverer) Discover(ctx context.Context, markup string, sourceURL string) []string {
	host := Hostname(sourceURL)
	found := d.Filter.Apply(Scan(markup), host)
	if len(found) > 0 || d.Intel == nil {
		return found
	}
	res, err := d.Intel.Lookup(ctx, sourceURL)
	if err != nil {
		log.Warn().Err(err).Str("url", sourceURL).Msg("url intel lookup failed")
		return []string{}
	}
	found = d.Filter.Apply(res.Links, host)
	log.Debug().Str("url", sourceURL).Int("links", len(found)).Msg("links from url intel fallback")
	return found
}
