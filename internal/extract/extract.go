package extract

import (
	"bytes"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
	"golang.org/x/net/html"
)

// Page is a simplified representation of an extracted web page. HTML keeps
// the raw markup for link discovery.
type Page struct {
	Title       string
	Description string
	Text        string
	HTML        string
	Keywords    []string
}

var titleSelectors = []metaSelector{
	{sel: `meta[property="og:title"]`, attr: "content"},
	{sel: `meta[name="twitter:title"]`, attr: "content"},
	{sel: "head title"},
	{sel: "h1"},
}

var descriptionSelectors = []metaSelector{
	{sel: `meta[name="description"]`, attr: "content"},
	{sel: `meta[property="og:description"]`, attr: "content"},
	{sel: `meta[name="twitter:description"]`, attr: "content"},
}

// Body roots in order of preference. Article-type pages rarely nest
// correctly, so later entries trade precision for coverage.
var bodySelectors = []string{"article, section", "main", "body"}

type metaSelector struct {
	sel  string
	attr string // empty means element text
}

// FromHTML extracts a Page from raw markup.
func FromHTML(input []byte) Page {
	return FromHTMLWithURL(input, "")
}

// FromHTMLWithURL is FromHTML with the page URL available for the
// readability fallback.
func FromHTMLWithURL(input []byte, pageURL string) Page {
	p := Page{HTML: string(input)}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(input))
	if err != nil {
		return p
	}
	p.Title = firstNonEmpty(doc, titleSelectors)
	p.Description = firstNonEmpty(doc, descriptionSelectors)
	p.Text = bodyText(doc)
	p.Keywords = keywords(doc)

	if p.Title == "" || p.Description == "" {
		if art, err := readability.FromReader(bytes.NewReader(input), parseURL(pageURL)); err == nil {
			if p.Title == "" {
				p.Title = collapseSpaces(strings.TrimSpace(art.Title))
			}
			if p.Description == "" {
				p.Description = collapseSpaces(strings.TrimSpace(art.Excerpt))
			}
		}
	}
	return p
}

func firstNonEmpty(doc *goquery.Document, selectors []metaSelector) string {
	for _, ms := range selectors {
		s := doc.Find(ms.sel).First()
		if s.Length() == 0 {
			continue
		}
		var v string
		if ms.attr != "" {
			v, _ = s.Attr(ms.attr)
		} else {
			v = s.Text()
		}
		if v = collapseSpaces(strings.TrimSpace(v)); v != "" {
			return v
		}
	}
	return ""
}

func bodyText(doc *goquery.Document) string {
	for _, sel := range bodySelectors {
		var b strings.Builder
		matches := doc.Find(sel)
		for _, n := range matches.Nodes {
			if nestedInMatch(n, matches) {
				continue
			}
			collectText(&b, n, false)
			b.WriteString("\n\n")
		}
		if text := normalizeWhitespace(b.String()); text != "" {
			return text
		}
	}
	return ""
}

// nestedInMatch reports whether n sits inside another node of the same
// selection, so a <section> inside an <article> is not collected twice.
func nestedInMatch(n *html.Node, s *goquery.Selection) bool {
	for p := n.Parent; p != nil; p = p.Parent {
		for _, m := range s.Nodes {
			if m == p {
				return true
			}
		}
	}
	return false
}

func keywords(doc *goquery.Document) []string {
	raw, ok := doc.Find(`meta[name="keywords"]`).First().Attr("content")
	if !ok {
		return nil
	}
	var out []string
	seen := map[string]struct{}{}
	for _, k := range strings.Split(raw, ",") {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		if _, dup := seen[strings.ToLower(k)]; dup {
			continue
		}
		seen[strings.ToLower(k)] = struct{}{}
		out = append(out, k)
	}
	return out
}

func parseURL(raw string) *url.URL {
	u, err := url.Parse(raw)
	if err != nil || raw == "" {
		return &url.URL{}
	}
	return u
}

func collectText(b *strings.Builder, n *html.Node, inPre bool) {
	if n.Type == html.ElementNode {
		// Skip known boilerplate containers like cookie/consent banners
		if isBoilerplateContainer(n) {
			return
		}
		switch strings.ToLower(n.Data) {
		case "script", "style", "noscript", "nav", "footer", "aside", "iframe", "template":
			return
		case "pre", "code":
			inPre = true
		case "br", "hr", "ul", "ol":
			b.WriteString("\n")
		case "p", "h1", "h2", "h3", "h4", "h5", "h6", "li", "div":
			b.WriteString("\n")
		}
	}

	if n.Type == html.TextNode {
		data := n.Data
		if !inPre {
			data = strings.ReplaceAll(data, "\t", " ")
			data = strings.ReplaceAll(data, "\r", " ")
		}
		b.WriteString(data)
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(b, c, inPre)
	}

	if n.Type == html.ElementNode {
		switch strings.ToLower(n.Data) {
		case "p", "h1", "h2", "h3", "h4", "h5", "h6":
			b.WriteString("\n\n")
		case "li", "pre", "code", "div":
			b.WriteString("\n")
		}
	}
}

// isBoilerplateContainer returns true if the element looks like a cookie/consent banner.
func isBoilerplateContainer(n *html.Node) bool {
	if n == nil || n.Type != html.ElementNode {
		return false
	}
	for _, attr := range n.Attr {
		key := strings.ToLower(attr.Key)
		if key != "id" && key != "class" && !strings.HasPrefix(key, "data-") && key != "aria-label" && key != "role" {
			continue
		}
		if containsAny(strings.ToLower(attr.Val), []string{"cookie", "consent", "gdpr"}) {
			return true
		}
	}
	return false
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

func normalizeWhitespace(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			// Keep at most one consecutive blank
			if len(out) > 0 && out[len(out)-1] == "" {
				continue
			}
			out = append(out, "")
			continue
		}
		out = append(out, collapseSpaces(trimmed))
	}
	for len(out) > 0 && out[0] == "" {
		out = out[1:]
	}
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	return strings.Join(out, "\n")
}

func collapseSpaces(s string) string {
	var b strings.Builder
	lastSpace := false
	for _, r := range s {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			if !lastSpace {
				b.WriteByte(' ')
				lastSpace = true
			}
			continue
		}
		b.WriteRune(r)
		lastSpace = false
	}
	return b.String()
}
