// Package strategy turns one search result URL into an article paragraph.
// Each source type has its own strategy; Classify picks which one runs.
package strategy

import (
	"context"
	"strings"

	"github.com/hyperifyio/articlegen/internal/article"
	"github.com/hyperifyio/articlegen/internal/rewrite"
)

// Options control one strategy invocation.
type Options struct {
	IncludeTitle       bool
	Rewrite            bool
	Mode               string
	ParaphraseProvider string
	SummarizeProvider  string
	Language           string
	Strength           int
	SentNum            int
}

func (o Options) paraphrase() rewrite.ParaphraseOptions {
	return rewrite.ParaphraseOptions{Language: o.Language, Strength: o.Strength}
}

// Strategy builds a paragraph from url. A nil paragraph with a nil error
// means the result is dropped; an error means a fetch or lookup failed.
type Strategy interface {
	Name() string
	Extract(ctx context.Context, url string, opts Options) (*article.Paragraph, error)
}

// Rewriter is the dispatch surface strategies use. *rewrite.Dispatcher
// satisfies it.
type Rewriter interface {
	Paraphrase(ctx context.Context, text string, opts rewrite.ParaphraseOptions, provider string) (string, bool)
	Summarize(ctx context.Context, text string, opts rewrite.SummarizeOptions, provider string) (article.Summary, bool)
}

// Registry maps a source kind to its strategy.
type Registry map[Kind]Strategy

// For returns the strategy registered for k.
func (r Registry) For(k Kind) (Strategy, bool) {
	s, ok := r[k]
	return s, ok && s != nil
}

// passThrough copies source material into the generated slot unchanged.
func passThrough(src article.Source, includeTitle bool) article.Generated {
	g := article.Generated{Text: src.Description}
	if includeTitle {
		g.Title = src.Title
	}
	return g
}

// paraphraseText rewrites text and reports false when the provider failed
// or returned nothing usable.
func paraphraseText(ctx context.Context, rw Rewriter, text string, opts Options) (string, bool) {
	if rw == nil {
		return "", false
	}
	out, ok := rw.Paraphrase(ctx, text, opts.paraphrase(), opts.ParaphraseProvider)
	out = strings.TrimSpace(out)
	return out, ok && out != ""
}

func nonEmpty(vals ...string) []string {
	out := make([]string, 0, len(vals))
	seen := map[string]struct{}{}
	for _, v := range vals {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		k := strings.ToLower(v)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, v)
	}
	return out
}
