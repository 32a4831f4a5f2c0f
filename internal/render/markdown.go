package render

import (
	"strings"

	"github.com/hyperifyio/articlegen/internal/article"
)

// br is a Markdown hard line break.
const br = "  \n"

// Markdown renders doc as Markdown, using two trailing spaces for line
// breaks inside a paragraph block.
func Markdown(doc article.Document) string {
	var b strings.Builder
	if t := strings.TrimSpace(doc.Title); t != "" {
		b.WriteString("# ")
		b.WriteString(t)
		b.WriteString("\n\n")
	}
	for _, p := range doc.Paragraphs {
		if h := strings.TrimSpace(p.Generated.Title); h != "" {
			b.WriteString("## ")
			b.WriteString(h)
			b.WriteString("\n\n")
		}
		b.WriteString(p.Generated.Text)
		b.WriteString("\n\n")
		if len(p.ExternalLinks) > 0 {
			b.WriteString("**")
			b.WriteString(linksLabel(len(p.ExternalLinks)))
			b.WriteString("**")
			b.WriteString(br)
			for _, l := range p.ExternalLinks {
				b.WriteString("- <")
				b.WriteString(l)
				b.WriteString(">\n")
			}
			b.WriteString("\n")
		}
		if p.SourceURL != "" {
			b.WriteString("Source: [")
			b.WriteString(p.SourceURL)
			b.WriteString("](")
			b.WriteString(p.SourceURL)
			b.WriteString(")")
			b.WriteString(br)
		}
		if len(p.Source.Tags) > 0 {
			b.WriteString("Tags: ")
			b.WriteString(strings.Join(p.Source.Tags, ", "))
			b.WriteString(br)
		}
		b.WriteString("\n")
	}
	if len(doc.RelatedSearches) > 0 {
		b.WriteString("## Related Searches\n\n")
		for _, rs := range doc.RelatedSearches {
			b.WriteString("- ")
			if rs.Link != "" {
				b.WriteString("[" + rs.Query + "](" + rs.Link + ")")
			} else {
				b.WriteString(rs.Query)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	if len(doc.RelatedQuestions) > 0 {
		b.WriteString("## Related Questions\n\n")
		for _, rq := range doc.RelatedQuestions {
			b.WriteString("- **")
			b.WriteString(questionText(rq))
			b.WriteString("**")
			if s := strings.TrimSpace(rq.Snippet); s != "" && rq.Question != "" {
				b.WriteString(br)
				b.WriteString("  ")
				b.WriteString(s)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n") + "\n"
}
