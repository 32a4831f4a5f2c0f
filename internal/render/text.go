package render

import (
	"strings"

	"github.com/hyperifyio/articlegen/internal/article"
)

// Text renders doc as plain text with newline separators.
func Text(doc article.Document) string {
	var b strings.Builder
	if t := strings.TrimSpace(doc.Title); t != "" {
		b.WriteString(t)
		b.WriteString("\n\n")
	}
	for _, p := range doc.Paragraphs {
		if h := strings.TrimSpace(p.Generated.Title); h != "" {
			b.WriteString(h)
			b.WriteString("\n")
		}
		b.WriteString(p.Generated.Text)
		b.WriteString("\n")
		if len(p.ExternalLinks) > 0 {
			b.WriteString(linksLabel(len(p.ExternalLinks)))
			b.WriteString("\n")
			for _, l := range p.ExternalLinks {
				b.WriteString(l)
				b.WriteString("\n")
			}
		}
		if p.SourceURL != "" {
			b.WriteString("Source: ")
			b.WriteString(p.SourceURL)
			b.WriteString("\n")
		}
		if len(p.Source.Tags) > 0 {
			b.WriteString("Tags: ")
			b.WriteString(strings.Join(p.Source.Tags, ", "))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	if len(doc.RelatedSearches) > 0 {
		b.WriteString("Related Searches:\n")
		for _, rs := range doc.RelatedSearches {
			b.WriteString("- ")
			b.WriteString(rs.Query)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	if len(doc.RelatedQuestions) > 0 {
		b.WriteString("Related Questions:\n")
		for _, rq := range doc.RelatedQuestions {
			b.WriteString("- ")
			b.WriteString(questionText(rq))
			b.WriteString("\n")
			if s := strings.TrimSpace(rq.Snippet); s != "" && rq.Question != "" {
				b.WriteString("  ")
				b.WriteString(s)
				b.WriteString("\n")
			}
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n") + "\n"
}

// questionText falls back to the snippet for providers that only return
// answers.
func questionText(rq article.RelatedQuestion) string {
	if q := strings.TrimSpace(rq.Question); q != "" {
		return q
	}
	return strings.TrimSpace(rq.Snippet)
}
