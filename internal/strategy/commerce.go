package strategy

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/articlegen/internal/article"
	"github.com/hyperifyio/articlegen/internal/product"
)

var asinRe = regexp.MustCompile(`(?i)/(?:dp|gp/product|gp/aw/d|product)/([a-z0-9]{10})(?:[/?#]|$)`)

// ParseASIN extracts a product identifier from a product page URL.
func ParseASIN(rawURL string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", false
	}
	m := asinRe.FindStringSubmatch(u.EscapedPath())
	if m == nil {
		return "", false
	}
	return strings.ToUpper(m[1]), true
}

// ProductLookup resolves identifiers and catalogue data. *product.Client
// satisfies it.
type ProductLookup interface {
	ResolveASIN(ctx context.Context, productURL string) (string, error)
	Details(ctx context.Context, asin string) (product.Details, error)
}

// Commerce handles product detail pages. Product pages are a leaf, so no
// outbound links are collected.
type Commerce struct {
	Products ProductLookup
	Rewriter Rewriter
}

func (c *Commerce) Name() string { return string(KindCommerce) }

func (c *Commerce) Extract(ctx context.Context, rawURL string, opts Options) (*article.Paragraph, error) {
	if c.Products == nil {
		return nil, fmt.Errorf("product lookup not configured")
	}
	asin, ok := ParseASIN(rawURL)
	if !ok {
		resolved, err := c.Products.ResolveASIN(ctx, rawURL)
		if err != nil {
			return nil, err
		}
		if resolved == "" {
			log.Debug().Str("url", rawURL).Msg("no product identifier")
			return nil, nil
		}
		asin = resolved
	}
	d, err := c.Products.Details(ctx, asin)
	if err != nil {
		return nil, err
	}
	if d.Title == "" || d.Description == "" {
		log.Debug().Str("url", rawURL).Str("asin", asin).Msg("incomplete product details")
		return nil, nil
	}
	p := &article.Paragraph{
		SourceURL: rawURL,
		Source: article.Source{
			Title:       d.Title,
			Description: d.Description,
			Tags:        nonEmpty(d.Brand, d.Category),
		},
		ExternalLinks: []string{},
	}
	if !opts.Rewrite {
		p.Generated = passThrough(p.Source, opts.IncludeTitle)
		return p, nil
	}
	out, ok := paraphraseText(ctx, c.Rewriter, d.Description, opts)
	if !ok {
		return nil, nil
	}
	p.Generated.Text = out
	if opts.IncludeTitle {
		p.Generated.Title = d.Title
	}
	return p, nil
}
