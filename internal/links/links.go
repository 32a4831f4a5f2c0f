package links

import (
	"net/url"
	"regexp"
	"strings"
)

// candidateRe matches absolute URLs and bare www. hosts, stopping at
// whitespace, quotes, angle brackets and commas.
var candidateRe = regexp.MustCompile(`(?:https?://|www\.)[^\s"'<>,]+`)

// DefaultAllowedDomains lists the commerce domains outbound links may point to.
var DefaultAllowedDomains = []string{
	"amazon.com",
	"amazon.co.uk",
	"amazon.ca",
	"amazon.de",
	"amzn.to",
	"amzn.com",
	"ebay.com",
	"walmart.com",
	"target.com",
	"bestbuy.com",
	"etsy.com",
}

// DefaultNoise matches CDN, ad and analytics hostnames.
var DefaultNoise = regexp.MustCompile(`(?i)(^|[.-])(cdn|ajax|static|assets|images?|img|media|fonts|analytics|doubleclick|googletagmanager|googlesyndication|adservice|ads|pixel|tracking|tracker|metrics|beacon)([.-]|$)`)

// Scan returns every URL-looking token in markup, deduplicated by exact
// string and kept in first-seen order.
func Scan(markup string) []string {
	found := candidateRe.FindAllString(markup, -1)
	seen := make(map[string]struct{}, len(found))
	out := make([]string, 0, len(found))
	for _, f := range found {
		f = strings.TrimRight(f, ").;:!?]}")
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	return out
}

// Filter narrows candidate links to unique, allow-listed, non-noise links
// that point away from the source host.
type Filter struct {
	Allowed []string
	Noise   *regexp.Regexp
}

// DefaultFilter returns a Filter with the package defaults.
func DefaultFilter() Filter {
	return Filter{Allowed: DefaultAllowedDomains, Noise: DefaultNoise}
}

// Apply keeps a link iff it is unique in the output, has a hostname and a
// path, is not on internalHost, is on an allowed domain, and is not noise.
func (f Filter) Apply(candidates []string, internalHost string) []string {
	allowed := f.Allowed
	if allowed == nil {
		allowed = DefaultAllowedDomains
	}
	noise := f.Noise
	if noise == nil {
		noise = DefaultNoise
	}
	internal := bareHost(internalHost)

	out := make([]string, 0, len(candidates))
	seen := map[string]struct{}{}
	for _, c := range candidates {
		if _, dup := seen[c]; dup {
			continue
		}
		host, ok := hostWithPath(c)
		if !ok {
			continue
		}
		if bareHost(host) == internal {
			continue
		}
		if !onDomain(host, allowed) {
			continue
		}
		if noise.MatchString(host) {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}

// Hostname returns the lower-cased hostname of rawURL or "" when it does
// not parse.
func Hostname(rawURL string) string {
	u, err := url.Parse(normalize(rawURL))
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}

func hostWithPath(raw string) (string, bool) {
	u, err := url.Parse(normalize(raw))
	if err != nil {
		return "", false
	}
	host := strings.ToLower(u.Hostname())
	if host == "" || u.Path == "" || u.Path == "/" {
		return "", false
	}
	return host, true
}

func normalize(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(strings.ToLower(raw), "www.") {
		return "https://" + raw
	}
	return raw
}

func bareHost(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	return strings.TrimPrefix(h, "www.")
}

func onDomain(host string, domains []string) bool {
	for _, d := range domains {
		d = strings.ToLower(strings.TrimSpace(d))
		if d == "" {
			continue
		}
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}
