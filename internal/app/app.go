package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"

	"github.com/hyperifyio/articlegen/internal/article"
	"github.com/hyperifyio/articlegen/internal/cache"
	"github.com/hyperifyio/articlegen/internal/comments"
	"github.com/hyperifyio/articlegen/internal/extract"
	"github.com/hyperifyio/articlegen/internal/fetch"
	"github.com/hyperifyio/articlegen/internal/links"
	"github.com/hyperifyio/articlegen/internal/llm"
	"github.com/hyperifyio/articlegen/internal/pipeline"
	"github.com/hyperifyio/articlegen/internal/product"
	"github.com/hyperifyio/articlegen/internal/render"
	"github.com/hyperifyio/articlegen/internal/rewrite"
	"github.com/hyperifyio/articlegen/internal/robots"
	"github.com/hyperifyio/articlegen/internal/search"
	"github.com/hyperifyio/articlegen/internal/server"
	"github.com/hyperifyio/articlegen/internal/strategy"
)

const (
	providerSerpAPI = "serpapi"
	providerSearx   = "searxng"
	providerFile    = "file"
)

// ErrNoParagraphs is returned by Run when an article came out without any
// paragraph. The CLI maps it to a non-zero exit.
var ErrNoParagraphs = errors.New("no paragraphs generated")

// App owns the wired pipeline and its collaborators.
type App struct {
	cfg      Config
	pipeline *pipeline.Pipeline
	cache    *cache.PageCache
	ai       llm.ModelLister
}

// New builds every client from cfg and wires the pipeline. Unconfigured
// providers are still registered; they report failure when called.
func New(ctx context.Context, cfg Config) (*App, error) {
	hc := newHTTPClient(cfg, providerTimeout)

	sp, err := newSearchProvider(cfg, hc)
	if err != nil {
		return nil, err
	}

	a := &App{cfg: cfg}
	if cfg.CacheDir != "" {
		if cfg.CacheClear {
			_ = cache.ClearDir(cfg.CacheDir)
		}
		if cfg.CacheMaxAge > 0 {
			if n, err := cache.PurgeByAge(cfg.CacheDir, cfg.CacheMaxAge); err == nil && n > 0 {
				log.Debug().Int("removed", n).Msg("purged stale cache entries")
			}
		}
		if cfg.CacheMaxBytes > 0 || cfg.CacheMaxEntries > 0 {
			if n, err := cache.EnforceLimits(cfg.CacheDir, cfg.CacheMaxBytes, cfg.CacheMaxEntries); err == nil && n > 0 {
				log.Debug().Int("removed", n).Msg("evicted cache entries over limit")
			}
		}
		a.cache = &cache.PageCache{Dir: cfg.CacheDir, MaxAge: cfg.CacheMaxAge, StrictPerms: cfg.CacheStrictPerms}
	}

	ua := pickNonEmpty(cfg.UserAgent, fetch.DefaultUserAgent)
	fetcher := &fetch.Client{
		HTTPClient:        newHTTPClient(cfg, 0),
		UserAgent:         ua,
		MaxAttempts:       cfg.FetchAttempts,
		PerRequestTimeout: cfg.FetchTimeout,
		Cache:             a.cache,
		MaxConcurrent:     cfg.MaxConcurrent,
	}
	if cfg.RespectRobots {
		fetcher.Robots = &robots.Manager{HTTPClient: hc, Cache: a.cache, UserAgent: ua}
	}

	var chat *llm.OpenAIProvider
	if strings.TrimSpace(cfg.LLMBaseURL) != "" || strings.TrimSpace(cfg.LLMAPIKey) != "" {
		chat = llm.NewOpenAIProvider(cfg.LLMAPIKey, cfg.LLMBaseURL, func(c *openai.ClientConfig) {
			c.HTTPClient = hc
		})
		a.ai = chat
	}
	dispatcher := newDispatcher(cfg, hc, chat)

	discoverer := &links.Discoverer{Filter: links.DefaultFilter()}
	if strings.TrimSpace(cfg.IntelURL) != "" {
		discoverer.Intel = &links.IntelClient{BaseURL: cfg.IntelURL, APIKey: cfg.IntelKey, HTTPClient: hc}
	}

	strategies := strategy.Registry{
		strategy.KindGeneric: &strategy.Generic{
			Pages:    &extract.Extractor{Fetcher: fetcher},
			Links:    discoverer,
			Rewriter: dispatcher,
		},
		strategy.KindCommerce: &strategy.Commerce{
			Products: &product.Client{BaseURL: cfg.ProductURL, APIKey: cfg.ProductKey, HTTPClient: hc},
			Rewriter: dispatcher,
		},
		strategy.KindDiscussion: &strategy.Discussion{
			Comments: &comments.Client{BaseURL: cfg.CommentsURL, APIKey: cfg.CommentsKey, HTTPClient: hc},
			Rewriter: dispatcher,
		},
	}

	a.pipeline = &pipeline.Pipeline{
		Search:     sp,
		Strategies: strategies,
		Rewriter:   dispatcher,
		Defaults: pipeline.Defaults{
			ParaphraseProvider: cfg.ParaphraseProvider,
			SummarizeProvider:  cfg.SummarizeProvider,
			Language:           cfg.LanguageHint,
			Strength:           cfg.Strength,
			SentNum:            cfg.SentNum,
		},
	}

	a.preflight(ctx)
	log.Info().Str("search", sp.Name()).Str("paraphrase", cfg.ParaphraseProvider).Str("summarize", cfg.SummarizeProvider).Bool("cache", a.cache != nil).Msg("app ready")
	return a, nil
}

// preflight lists models on the LLM endpoint. It never fails; an unreachable
// endpoint only matters when a request picks the openai provider.
func (a *App) preflight(ctx context.Context) {
	if a.ai == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	models, err := a.ai.ListModels(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("LLM model list failed; continuing")
		return
	}
	if len(models.Models) > 0 {
		log.Info().Int("count", len(models.Models)).Msg("LLM models available")
	} else {
		log.Warn().Msg("LLM returned zero models")
	}
}

func newSearchProvider(cfg Config, hc *http.Client) (search.Provider, error) {
	name := strings.ToLower(strings.TrimSpace(cfg.SearchProvider))
	if name == "" {
		switch {
		case strings.TrimSpace(cfg.SerpAPIKey) != "":
			name = providerSerpAPI
		case strings.TrimSpace(cfg.SearxURL) != "":
			name = providerSearx
		case strings.TrimSpace(cfg.FileSearchPath) != "":
			name = providerFile
		default:
			return nil, search.ErrNoProvider
		}
	}
	switch name {
	case providerSerpAPI:
		return &search.SerpAPI{BaseURL: cfg.SerpAPIURL, APIKey: cfg.SerpAPIKey, HL: cfg.SerpAPIHL, GL: cfg.SerpAPIGL, HTTPClient: hc}, nil
	case providerSearx:
		return &search.SearxNG{BaseURL: cfg.SearxURL, APIKey: cfg.SearxKey, Language: cfg.LanguageHint, UserAgent: cfg.SearxUA, HTTPClient: hc}, nil
	case providerFile:
		return &search.FileProvider{Path: cfg.FileSearchPath}, nil
	}
	return nil, fmt.Errorf("unknown search provider %q", cfg.SearchProvider)
}

func newDispatcher(cfg Config, hc *http.Client, chat *llm.OpenAIProvider) *rewrite.Dispatcher {
	d := rewrite.NewDispatcher()
	if cfg.MaxChunkChars > 0 {
		d.MaxChunkChars = cfg.MaxChunkChars
	}
	endpoint := func(url, key string) rewrite.Endpoint {
		return rewrite.Endpoint{BaseURL: url, APIKey: key, HTTPClient: hc}
	}
	spinner := endpoint(cfg.TextSpinnerURL, "")
	if cfg.TextSpinnerKey != "" {
		spinner.Headers = map[string]string{"X-RapidAPI-Key": cfg.TextSpinnerKey}
	}

	d.RegisterParaphraser(&rewrite.Rewriter{Endpoint: endpoint(cfg.RewriterURL, cfg.RewriterKey)})
	d.RegisterParaphraser(&rewrite.TextSpinner{Endpoint: spinner})
	d.RegisterSummarizer(&rewrite.SentenceSummarizer{Endpoint: endpoint(cfg.SentencesURL, cfg.SentencesKey)})
	d.RegisterSummarizer(&rewrite.ExtractiveSummarizer{Endpoint: endpoint(cfg.ExtractiveURL, cfg.ExtractiveKey)})

	chatPara := &rewrite.ChatParaphraser{Model: cfg.LLMModel}
	tldr := &rewrite.TLDRSummarizer{Model: pickNonEmpty(cfg.LLMCompletionModel, cfg.LLMModel)}
	if chat != nil {
		chatPara.Client = chat
		tldr.Client = chat
	}
	d.RegisterParaphraser(chatPara)
	d.RegisterSummarizer(tldr)
	return d
}

// Pipeline exposes the wired pipeline, e.g. for the HTTP service.
func (a *App) Pipeline() *pipeline.Pipeline { return a.pipeline }

func (a *App) Close() {
	// nothing yet
}

// requestConfig maps CLI settings onto one generation request.
func (a *App) requestConfig() article.Config {
	rw := !a.cfg.NoRewrite
	return article.Config{
		SeedText:                      a.cfg.SeedText,
		NumSerpResults:                a.cfg.NumSerpResults,
		NumOutboundLinksPerSerpResult: a.cfg.NumOutboundLinks,
		OutputFormat:                  a.cfg.OutputFormat,
		Rewrite:                       &rw,
		Mode:                          a.cfg.Mode,
	}
}

// Run generates one article from cfg.SeedText and writes it to OutputPath
// ("-" means stdout; empty derives a path under OutputsDir). When
// OutputPDFPath is set a PDF rendition is written as well.
func (a *App) Run(ctx context.Context) error {
	doc, errs, err := a.pipeline.Build(ctx, a.requestConfig())
	for _, e := range errs {
		log.Warn().Str("problem", e).Msg("request")
	}
	if err != nil {
		return err
	}
	if len(doc.Paragraphs) == 0 {
		return ErrNoParagraphs
	}

	format := strings.ToLower(pickNonEmpty(a.cfg.OutputFormat, article.FormatText))
	out, err := render.Render(doc, format)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}
	if err := a.writeOutput(out); err != nil {
		return err
	}

	if p := strings.TrimSpace(a.cfg.OutputPDFPath); p != "" {
		var buf bytes.Buffer
		if err := render.WritePDF(render.Markdown(doc), &buf); err != nil {
			return fmt.Errorf("render pdf: %w", err)
		}
		if err := writeFile(p, buf.Bytes()); err != nil {
			return fmt.Errorf("write pdf: %w", err)
		}
		log.Info().Str("pdf", p).Msg("wrote PDF output")
	}
	return nil
}

func (a *App) writeOutput(out string) error {
	path := strings.TrimSpace(a.cfg.OutputPath)
	if path == "-" {
		_, err := io.WriteString(os.Stdout, out)
		return err
	}
	if path == "" {
		path = deriveOutputPath(a.cfg)
	}
	if err := writeFile(path, []byte(out)); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	log.Info().Str("out", path).Msg("wrote article")
	return nil
}

// Serve runs the HTTP service until ctx is cancelled.
func (a *App) Serve(ctx context.Context) error {
	srv := &server.Server{Generator: a.pipeline, Timeout: a.cfg.RequestTimeout}
	return server.ListenAndServe(ctx, a.cfg.ServeAddr, srv.Routes())
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}

func pickNonEmpty(a, b string) string {
	if strings.TrimSpace(a) != "" {
		return a
	}
	return b
}
