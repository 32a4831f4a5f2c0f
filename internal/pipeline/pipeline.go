// Package pipeline turns a seed query into an assembled article: search,
// per-result extraction in rank order, link trimming, title generation and
// rendering.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/articlegen/internal/article"
	"github.com/hyperifyio/articlegen/internal/metrics"
	"github.com/hyperifyio/articlegen/internal/render"
	"github.com/hyperifyio/articlegen/internal/rewrite"
	"github.com/hyperifyio/articlegen/internal/search"
	"github.com/hyperifyio/articlegen/internal/strategy"
)

// ErrSearch wraps search provider failures. They abort the request.
var ErrSearch = errors.New("search failed")

// Defaults fill provider choices a request leaves empty.
type Defaults struct {
	ParaphraseProvider string
	SummarizeProvider  string
	Language           string
	Strength           int
	SentNum            int
}

// Pipeline wires the search provider, the per-kind strategies and the
// rewriter used for titles. Build one at startup and share it; it holds no
// per-request state.
type Pipeline struct {
	Search     search.Provider
	Strategies strategy.Registry
	Rewriter   strategy.Rewriter
	Defaults   Defaults
}

// Generate runs one request and renders the result in cfg.OutputFormat.
// Validation problems are reported in Result.Errors; only unexpected
// failures such as a broken search provider are returned as errors.
func (p *Pipeline) Generate(ctx context.Context, cfg article.Config) (article.Result, error) {
	start := time.Now()
	eff, errs, ok := p.prepare(cfg)
	res := article.Result{Errors: errs, Params: params(eff)}
	if !ok {
		return res, nil
	}
	doc, buildErrs, err := p.build(ctx, eff)
	res.Errors = append(res.Errors, buildErrs...)
	if err != nil {
		return res, err
	}
	out, err := render.Render(doc, eff.OutputFormat)
	if err != nil {
		return res, fmt.Errorf("render: %w", err)
	}
	res.GeneratedArticle = out
	metrics.GenerateDuration.WithLabelValues(eff.OutputFormat).Observe(time.Since(start).Seconds())
	return res, nil
}

// Build runs one request without rendering, for callers that produce other
// formats such as PDF. The returned strings are validation errors.
func (p *Pipeline) Build(ctx context.Context, cfg article.Config) (article.Document, []string, error) {
	eff, errs, ok := p.prepare(cfg)
	if !ok {
		return article.Document{}, errs, nil
	}
	doc, buildErrs, err := p.build(ctx, eff)
	return doc, append(errs, buildErrs...), err
}

func (p *Pipeline) build(ctx context.Context, cfg article.Config) (article.Document, []string, error) {
	runID := uuid.NewString()
	lg := log.With().Str("run_id", runID).Logger()
	lg.Info().Str("seed", cfg.SeedText).Int("results", cfg.NumSerpResults).Str("format", cfg.OutputFormat).Bool("rewrite", cfg.RewriteEnabled()).Msg("generate start")

	var doc article.Document
	errs := []string{}
	if p.Search == nil {
		return doc, errs, fmt.Errorf("%w: %v", ErrSearch, search.ErrNoProvider)
	}
	resp, err := p.Search.Search(ctx, cfg.SeedText, cfg.NumSerpResults)
	if err != nil {
		return doc, errs, fmt.Errorf("%w: %s: %v", ErrSearch, p.Search.Name(), err)
	}
	results := resp.Organic
	if len(results) > cfg.NumSerpResults {
		results = results[:cfg.NumSerpResults]
	}
	if len(results) == 0 {
		errs = append(errs, "search returned no results")
	}
	doc.RelatedSearches = resp.RelatedSearches
	doc.RelatedQuestions = resp.RelatedQuestions

	opts := options(cfg)
	for _, r := range results {
		if err := ctx.Err(); err != nil {
			return doc, errs, err
		}
		if para := p.process(ctx, lg, r, opts); para != nil {
			para.TrimLinks(cfg.NumOutboundLinksPerSerpResult)
			doc.Paragraphs = append(doc.Paragraphs, *para)
		}
	}
	if len(results) > 0 && len(doc.Paragraphs) == 0 {
		errs = append(errs, "no search result could be turned into a paragraph")
	}

	doc.Title = p.title(ctx, cfg, opts)
	lg.Info().Int("paragraphs", len(doc.Paragraphs)).Bool("title", doc.Title != "").Msg("generate done")
	return doc, errs, nil
}

// process runs the strategy for one search result. Failures only drop the
// result.
func (p *Pipeline) process(ctx context.Context, lg zerolog.Logger, r article.SearchResult, opts strategy.Options) *article.Paragraph {
	kind := strategy.Classify(r.Link)
	if kind == strategy.KindExcluded {
		lg.Debug().Str("url", r.Link).Msg("excluded storefront, skipping")
		metrics.ParagraphsBuilt.WithLabelValues(string(kind), metrics.OutcomeSkipped).Inc()
		return nil
	}
	st, ok := p.Strategies.For(kind)
	if !ok {
		lg.Debug().Str("url", r.Link).Str("kind", string(kind)).Msg("no strategy for source kind")
		metrics.ParagraphsBuilt.WithLabelValues(string(kind), metrics.OutcomeSkipped).Inc()
		return nil
	}
	para, err := st.Extract(ctx, r.Link, opts)
	if err != nil {
		lg.Warn().Err(err).Str("url", r.Link).Str("strategy", st.Name()).Msg("extraction failed")
		metrics.ParagraphsBuilt.WithLabelValues(string(kind), metrics.OutcomeFailed).Inc()
		return nil
	}
	if para == nil {
		lg.Debug().Str("url", r.Link).Str("strategy", st.Name()).Msg("paragraph dropped")
		metrics.ParagraphsBuilt.WithLabelValues(string(kind), metrics.OutcomeDropped).Inc()
		return nil
	}
	metrics.ParagraphsBuilt.WithLabelValues(string(kind), metrics.OutcomeOK).Inc()
	return para
}

// title paraphrases the seed. Without rewriting, or when the provider
// fails, the stripped seed or no title is used respectively.
func (p *Pipeline) title(ctx context.Context, cfg article.Config, opts strategy.Options) string {
	seed := StripSearchOperators(cfg.SeedText)
	if seed == "" {
		return ""
	}
	if !cfg.RewriteEnabled() {
		return seed
	}
	if p.Rewriter == nil {
		return ""
	}
	out, ok := p.Rewriter.Paraphrase(ctx, seed, rewrite.ParaphraseOptions{Language: opts.Language, Strength: opts.Strength}, opts.ParaphraseProvider)
	if !ok {
		return ""
	}
	return strings.TrimSpace(out)
}

var siteOperatorRe = regexp.MustCompile(`(?i)(^|\s)-?site:\S*`)

// StripSearchOperators removes site: operators from a query.
func StripSearchOperators(q string) string {
	q = siteOperatorRe.ReplaceAllString(q, " ")
	return strings.Join(strings.Fields(q), " ")
}

func options(cfg article.Config) strategy.Options {
	return strategy.Options{
		IncludeTitle:       true,
		Rewrite:            cfg.RewriteEnabled(),
		Mode:               cfg.Mode,
		ParaphraseProvider: cfg.ParaphraseProvider,
		SummarizeProvider:  cfg.SummarizeProvider,
		Language:           cfg.Language,
		Strength:           cfg.Strength,
		SentNum:            cfg.SentNum,
	}
}

func params(cfg article.Config) article.Params {
	return article.Params{
		SeedText:                      cfg.SeedText,
		OutputFormat:                  cfg.OutputFormat,
		NumSerpResults:                cfg.NumSerpResults,
		NumOutboundLinksPerSerpResult: cfg.NumOutboundLinksPerSerpResult,
		Rewrite:                       cfg.RewriteEnabled(),
		Mode:                          cfg.Mode,
	}
}
