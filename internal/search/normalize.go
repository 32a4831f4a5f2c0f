package search

import (
	"net/url"
	"strings"

	"github.com/hyperifyio/articlegen/internal/article"
)

var trackingParams = []string{"utm_source", "utm_medium", "utm_campaign", "utm_term", "utm_content", "utm_id", "gclid", "fbclid"}

// normalizeOrganic canonicalizes result links and drops exact duplicates,
// keeping the first (highest ranked) occurrence. Results without a usable
// link are dropped.
func normalizeOrganic(in []article.SearchResult) []article.SearchResult {
	seen := make(map[string]struct{}, len(in))
	out := make([]article.SearchResult, 0, len(in))
	for _, r := range in {
		if strings.TrimSpace(r.Link) == "" {
			continue
		}
		u, err := url.Parse(strings.TrimSpace(r.Link))
		if err != nil || u.Host == "" {
			continue
		}
		normalizeURL(u)
		key := u.String()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		r.Link = key
		out = append(out, r)
	}
	return out
}

// normalizeURL drops the fragment, lowercases the host and strips common
// tracking parameters. Other query parameters keep their original encoding.
func normalizeURL(u *url.URL) {
	u.Fragment = ""
	u.RawFragment = ""
	u.Host = strings.ToLower(u.Host)
	if u.RawQuery == "" {
		return
	}
	q := u.Query()
	removed := false
	for _, p := range trackingParams {
		if q.Has(p) {
			q.Del(p)
			removed = true
		}
	}
	if removed {
		u.RawQuery = q.Encode()
	}
}
