package strategy

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/articlegen/internal/article"
	"github.com/hyperifyio/articlegen/internal/extract"
	"github.com/hyperifyio/articlegen/internal/rewrite"
)

// PageExtractor fetches and parses a page. *extract.Extractor satisfies it.
type PageExtractor interface {
	Extract(ctx context.Context, url string) (extract.Page, error)
}

// LinkDiscoverer finds outbound links. *links.Discoverer satisfies it.
type LinkDiscoverer interface {
	Discover(ctx context.Context, markup string, sourceURL string) []string
}

// Generic handles ordinary web pages: extract the body, discover outbound
// links, then paraphrase or summarize-then-paraphrase the body.
type Generic struct {
	Pages    PageExtractor
	Links    LinkDiscoverer
	Rewriter Rewriter
}

func (g *Generic) Name() string { return string(KindGeneric) }

func (g *Generic) Extract(ctx context.Context, url string, opts Options) (*article.Paragraph, error) {
	page, err := g.Pages.Extract(ctx, url)
	if err != nil {
		return nil, err
	}
	body := strings.TrimSpace(page.Text)
	if body == "" {
		log.Debug().Str("url", url).Msg("page has no body text")
		return nil, nil
	}
	p := &article.Paragraph{
		SourceURL: url,
		Source: article.Source{
			Title:       page.Title,
			Description: body,
			Tags:        nonEmpty(page.Keywords...),
		},
		ExternalLinks: []string{},
	}
	if g.Links != nil {
		if found := g.Links.Discover(ctx, page.HTML, url); found != nil {
			p.ExternalLinks = found
		}
	}

	if !opts.Rewrite {
		p.Generated = passThrough(p.Source, opts.IncludeTitle)
		return p, nil
	}

	text := body
	if opts.Mode == article.ModeSummarize {
		if g.Rewriter == nil {
			return nil, nil
		}
		sum, ok := g.Rewriter.Summarize(ctx, body, rewrite.SummarizeOptions{SentNum: opts.SentNum, URL: url}, opts.SummarizeProvider)
		if !ok {
			log.Debug().Str("url", url).Msg("summary unavailable, dropping paragraph")
			return nil, nil
		}
		p.Source.Summary = rewrite.SummaryText(sum)
		if p.Source.Summary == "" {
			return nil, nil
		}
		text = p.Source.Summary
	}
	out, ok := paraphraseText(ctx, g.Rewriter, text, opts)
	if !ok {
		log.Debug().Str("url", url).Msg("paraphrase unavailable, dropping paragraph")
		return nil, nil
	}
	p.Generated.Text = out
	if opts.IncludeTitle {
		p.Generated.Title = page.Title
	}
	return p, nil
}
