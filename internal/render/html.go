package render

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/hyperifyio/articlegen/internal/article"
)

// fragmentPolicy allows exactly the elements HTML emits.
var fragmentPolicy = func() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements("h1", "h2", "p", "ul", "li", "strong", "br")
	p.AllowAttrs("href").OnElements("a")
	p.RequireParseableURLs(true)
	p.AllowURLSchemes("http", "https")
	return p
}()

// HTML renders doc as an HTML fragment. Provider text is plain text and is
// escaped, so characters such as '<' and '&' survive as content; the
// assembled fragment is then passed through an allow-list sanitizer.
func HTML(doc article.Document) string {
	clean := func(s string) string { return html.EscapeString(strings.TrimSpace(s)) }

	var b strings.Builder
	if t := strings.TrimSpace(doc.Title); t != "" {
		b.WriteString("<h1>" + clean(t) + "</h1>\n")
	}
	for _, p := range doc.Paragraphs {
		if h := strings.TrimSpace(p.Generated.Title); h != "" {
			b.WriteString("<h2>" + clean(h) + "</h2>\n")
		}
		for _, para := range strings.Split(p.Generated.Text, "\n\n") {
			if strings.TrimSpace(para) == "" {
				continue
			}
			b.WriteString("<p>" + clean(para) + "</p>\n")
		}
		if len(p.ExternalLinks) > 0 {
			b.WriteString("<p>" + linksLabel(len(p.ExternalLinks)) + "</p>\n<ul>\n")
			for _, l := range p.ExternalLinks {
				b.WriteString("<li>" + anchor(l, l) + "</li>\n")
			}
			b.WriteString("</ul>\n")
		}
		if p.SourceURL != "" {
			b.WriteString("<p>Source: " + anchor(p.SourceURL, p.SourceURL) + "</p>\n")
		}
		if len(p.Source.Tags) > 0 {
			b.WriteString("<p>Tags: " + clean(strings.Join(p.Source.Tags, ", ")) + "</p>\n")
		}
	}
	if len(doc.RelatedSearches) > 0 {
		b.WriteString("<h2>Related Searches</h2>\n<ul>\n")
		for _, rs := range doc.RelatedSearches {
			if rs.Link != "" {
				b.WriteString("<li>" + anchor(rs.Link, rs.Query) + "</li>\n")
			} else {
				b.WriteString("<li>" + clean(rs.Query) + "</li>\n")
			}
		}
		b.WriteString("</ul>\n")
	}
	if len(doc.RelatedQuestions) > 0 {
		b.WriteString("<h2>Related Questions</h2>\n<ul>\n")
		for _, rq := range doc.RelatedQuestions {
			b.WriteString("<li><strong>" + clean(questionText(rq)) + "</strong>")
			if s := strings.TrimSpace(rq.Snippet); s != "" && rq.Question != "" {
				b.WriteString("<br>" + clean(s))
			}
			b.WriteString("</li>\n")
		}
		b.WriteString("</ul>\n")
	}
	return fragmentPolicy.Sanitize(b.String())
}

func anchor(href, text string) string {
	if !strings.HasPrefix(href, "http://") && !strings.HasPrefix(href, "https://") {
		return html.EscapeString(text)
	}
	return `<a href="` + html.EscapeString(href) + `">` + html.EscapeString(text) + "</a>"
}
