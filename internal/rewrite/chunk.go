package rewrite

import (
	"regexp"
	"strings"

	"github.com/hyperifyio/articlegen/internal/article"
)

var sentenceEnd = regexp.MustCompile(`[.!?]["')\]]?\s+`)

// Chunk splits text into pieces of at most max bytes, preferring paragraph
// boundaries, then sentence boundaries, then a hard cut on a rune boundary.
// max <= 0 disables chunking.
func Chunk(text string, max int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if max <= 0 || len(text) <= max {
		return []string{text}
	}
	var pieces []string
	for _, para := range strings.Split(text, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		if len(para) <= max {
			pieces = append(pieces, para)
			continue
		}
		for _, s := range splitSentences(para) {
			if len(s) <= max {
				pieces = append(pieces, s)
				continue
			}
			pieces = append(pieces, hardSplit(s, max)...)
		}
	}
	return pack(pieces, max)
}

// pack greedily joins neighbouring pieces while they fit.
func pack(pieces []string, max int) []string {
	var out []string
	var cur strings.Builder
	for _, p := range pieces {
		if cur.Len() > 0 && cur.Len()+2+len(p) > max {
			out = append(out, cur.String())
			cur.Reset()
		}
		if cur.Len() > 0 {
			cur.WriteString("\n\n")
		}
		cur.WriteString(p)
	}
	if cur.Len() > 0 {
		out = append(out, cur.String())
	}
	return out
}

func splitSentences(s string) []string {
	var out []string
	last := 0
	for _, loc := range sentenceEnd.FindAllStringIndex(s, -1) {
		out = append(out, strings.TrimSpace(s[last:loc[1]]))
		last = loc[1]
	}
	if rest := strings.TrimSpace(s[last:]); rest != "" {
		out = append(out, rest)
	}
	return out
}

func hardSplit(s string, max int) []string {
	var out []string
	for len(s) > max {
		cut := max
		for cut > 0 && !isRuneStart(s[cut]) {
			cut--
		}
		if cut == 0 {
			cut = max
		}
		out = append(out, s[:cut])
		s = s[cut:]
	}
	if s != "" {
		out = append(out, s)
	}
	return out
}

func isRuneStart(b byte) bool { return b&0xC0 != 0x80 }

// SummaryText flattens a summary into prose, preferring the synopsis and
// falling back to the joined snippets.
func SummaryText(s article.Summary) string {
	if t := strings.TrimSpace(s.Summary); t != "" {
		return t
	}
	parts := make([]string, 0, len(s.Snippets))
	for _, sn := range s.Snippets {
		if sn = strings.TrimSpace(sn); sn != "" {
			parts = append(parts, sn)
		}
	}
	return strings.Join(parts, " ")
}
