package strategy

import (
	"net/url"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// Kind is the source type of a URL.
type Kind string

const (
	KindGeneric    Kind = "generic"
	KindCommerce   Kind = "commerce"
	KindDiscussion Kind = "discussion"
	// KindExcluded covers storefronts we cannot extract; results are skipped.
	KindExcluded Kind = "excluded"
)

var excludedStores = map[string]struct{}{
	"ebay":       {},
	"walmart":    {},
	"etsy":       {},
	"target":     {},
	"bestbuy":    {},
	"aliexpress": {},
}

// Classify maps a URL to its source kind by hostname. Unparseable URLs are
// generic and fail later at fetch time.
func Classify(rawURL string) Kind {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return KindGeneric
	}
	host := strings.TrimSuffix(strings.ToLower(u.Hostname()), ".")
	if host == "" {
		return KindGeneric
	}
	switch host {
	case "amzn.to", "amzn.com", "a.co":
		return KindCommerce
	case "redd.it":
		return KindDiscussion
	}
	site := siteLabel(host)
	switch site {
	case "amazon":
		return KindCommerce
	case "reddit":
		return KindDiscussion
	}
	if _, ok := excludedStores[site]; ok {
		return KindExcluded
	}
	return KindGeneric
}

// siteLabel returns the label left of the public suffix, e.g. "amazon" for
// www.amazon.co.uk.
func siteLabel(host string) string {
	etld1, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		etld1 = host
	}
	if i := strings.IndexByte(etld1, '.'); i > 0 {
		return etld1[:i]
	}
	return etld1
}
