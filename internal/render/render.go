// Package render turns an assembled document into text, Markdown, HTML or
// PDF. Each format writes its own separators.
package render

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hyperifyio/articlegen/internal/article"
)

// ErrUnknownFormat is returned for output formats without a renderer.
var ErrUnknownFormat = errors.New("unknown output format")

// Formats lists the supported output formats.
var Formats = []string{article.FormatText, article.FormatMarkdown, article.FormatHTML}

// Supported reports whether format has a renderer.
func Supported(format string) bool {
	for _, f := range Formats {
		if f == format {
			return true
		}
	}
	return false
}

// Render renders doc in the given format.
func Render(doc article.Document, format string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case article.FormatText:
		return Text(doc), nil
	case article.FormatMarkdown:
		return Markdown(doc), nil
	case article.FormatHTML:
		return HTML(doc), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

func linksLabel(n int) string {
	return fmt.Sprintf("Found %d Link(s):", n)
}
