package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/articlegen/internal/app"
)

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, opts, err := parseFlags(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if opts.version {
		fmt.Println(app.Version())
		return
	}
	if cfg.Verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, opts.serve); err != nil {
		log.Error().Err(err).Msg("run failed")
		os.Exit(exitCode(err))
	}
}

type cliOptions struct {
	serve   bool
	version bool
}

// parseFlags applies configuration in increasing precedence: dotenv files,
// config file, environment, explicit flags.
func parseFlags(args []string) (app.Config, cliOptions, error) {
	def := app.DefaultConfig()
	cfg := def
	var (
		opts       cliOptions
		configPath string
		envFiles   string
	)

	fs := flag.NewFlagSet("articlegen", flag.ContinueOnError)
	fs.StringVar(&configPath, "config", os.Getenv("ARTICLEGEN_CONFIG"), "Path to YAML or JSON config file")
	fs.StringVar(&envFiles, "env", ".env", "Comma-separated dotenv files loaded before anything else")
	fs.BoolVar(&opts.serve, "serve", false, "Run the HTTP service instead of a one-shot generation")
	fs.BoolVar(&opts.version, "version", false, "Print version and exit")
	fs.StringVar(&cfg.ServeAddr, "addr", def.ServeAddr, "Listen address for -serve")
	fs.DurationVar(&cfg.RequestTimeout, "request.timeout", def.RequestTimeout, "Upper bound for one generation request in -serve mode")

	fs.StringVar(&cfg.SeedText, "seed", "", "Seed search query (also accepted as positional arguments)")
	fs.StringVar(&cfg.OutputPath, "output", "", "Output path; '-' writes to stdout, empty derives a path under -outputs.dir")
	fs.StringVar(&cfg.OutputsDir, "outputs.dir", def.OutputsDir, "Directory for derived output paths")
	fs.StringVar(&cfg.OutputPDFPath, "pdf", "", "Also write the article as PDF to this path")
	fs.StringVar(&cfg.OutputFormat, "format", def.OutputFormat, "Output format: text, markdown or html")
	fs.IntVar(&cfg.NumSerpResults, "results", def.NumSerpResults, "Number of search results to turn into paragraphs (1-10)")
	fs.IntVar(&cfg.NumOutboundLinks, "links", def.NumOutboundLinks, "Outbound links kept per paragraph (1-10)")
	fs.StringVar(&cfg.Mode, "mode", def.Mode, "Rewrite mode: paraphrase or summarize")
	fs.BoolVar(&cfg.NoRewrite, "no-rewrite", false, "Keep extracted text as is")
	fs.BoolVar(&cfg.RespectRobots, "robots", def.RespectRobots, "Honour robots.txt when fetching pages")

	fs.StringVar(&cfg.SearchProvider, "search.provider", "", "serpapi, searxng or file; empty picks the first configured")
	fs.StringVar(&cfg.SerpAPIKey, "serpapi.key", "", "SerpAPI key")
	fs.StringVar(&cfg.SearxURL, "searx.url", "", "SearxNG base URL")
	fs.StringVar(&cfg.FileSearchPath, "search.file", "", "Path to JSON file for offline file-based search")

	fs.StringVar(&cfg.ParaphraseProvider, "paraphrase", def.ParaphraseProvider, "Paraphrase provider: rewriter, textspinner or openai")
	fs.StringVar(&cfg.SummarizeProvider, "summarize", def.SummarizeProvider, "Summarize provider: sentences, extractive or openai")
	fs.StringVar(&cfg.LanguageHint, "lang", def.LanguageHint, "Language passed to rewrite providers")
	fs.StringVar(&cfg.LLMBaseURL, "llm.base", "", "OpenAI-compatible base URL")
	fs.StringVar(&cfg.LLMModel, "llm.model", "", "Chat model for the openai paraphraser")
	fs.StringVar(&cfg.LLMAPIKey, "llm.key", "", "API key for the OpenAI-compatible server")

	fs.StringVar(&cfg.CacheDir, "cache.dir", def.CacheDir, "Page cache directory; empty disables caching")
	fs.DurationVar(&cfg.CacheMaxAge, "cache.maxAge", 0, "Serve cached pages younger than this and purge older ones; 0 disables")
	fs.BoolVar(&cfg.CacheClear, "cache.clear", false, "Clear the cache directory before running")
	fs.BoolVar(&cfg.CacheStrictPerms, "cache.strictPerms", false, "Restrict cache permissions (0700 dirs, 0600 files)")
	fs.BoolVar(&cfg.Verbose, "v", false, "Verbose logging")
	if err := fs.Parse(args); err != nil {
		return cfg, opts, err
	}
	if cfg.SeedText == "" && fs.NArg() > 0 {
		cfg.SeedText = strings.Join(fs.Args(), " ")
	}

	explicit := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { explicit[f.Name] = true })
	flagged := cfg

	var paths []string
	for _, p := range strings.Split(envFiles, ",") {
		if p = strings.TrimSpace(p); p != "" {
			paths = append(paths, p)
		}
	}
	if err := app.LoadEnvFiles(paths...); err != nil {
		return cfg, opts, fmt.Errorf("load env: %w", err)
	}
	if strings.TrimSpace(configPath) != "" {
		fc, err := app.LoadConfigFile(configPath)
		if err != nil {
			return cfg, opts, fmt.Errorf("load config: %w", err)
		}
		app.ApplyFileConfig(&cfg, fc)
	}
	app.ApplyEnvOverrides(&cfg)
	app.ApplyEnvToConfig(&cfg)
	restoreExplicit(&cfg, flagged, explicit)

	if err := app.ValidateConfig(cfg, opts.serve); err != nil && !opts.version {
		return cfg, opts, err
	}
	return cfg, opts, nil
}

// restoreExplicit puts back values set on the command line after env
// overrides ran, so flags keep the highest precedence.
func restoreExplicit(cfg *app.Config, flagged app.Config, explicit map[string]bool) {
	for name, apply := range map[string]func(){
		"addr":              func() { cfg.ServeAddr = flagged.ServeAddr },
		"request.timeout":   func() { cfg.RequestTimeout = flagged.RequestTimeout },
		"seed":              func() { cfg.SeedText = flagged.SeedText },
		"output":            func() { cfg.OutputPath = flagged.OutputPath },
		"outputs.dir":       func() { cfg.OutputsDir = flagged.OutputsDir },
		"pdf":               func() { cfg.OutputPDFPath = flagged.OutputPDFPath },
		"format":            func() { cfg.OutputFormat = flagged.OutputFormat },
		"search.provider":   func() { cfg.SearchProvider = flagged.SearchProvider },
		"serpapi.key":       func() { cfg.SerpAPIKey = flagged.SerpAPIKey },
		"searx.url":         func() { cfg.SearxURL = flagged.SearxURL },
		"search.file":       func() { cfg.FileSearchPath = flagged.FileSearchPath },
		"paraphrase":        func() { cfg.ParaphraseProvider = flagged.ParaphraseProvider },
		"summarize":         func() { cfg.SummarizeProvider = flagged.SummarizeProvider },
		"lang":              func() { cfg.LanguageHint = flagged.LanguageHint },
		"llm.base":          func() { cfg.LLMBaseURL = flagged.LLMBaseURL },
		"llm.model":         func() { cfg.LLMModel = flagged.LLMModel },
		"llm.key":           func() { cfg.LLMAPIKey = flagged.LLMAPIKey },
		"cache.dir":         func() { cfg.CacheDir = flagged.CacheDir },
		"cache.maxAge":      func() { cfg.CacheMaxAge = flagged.CacheMaxAge },
		"cache.clear":       func() { cfg.CacheClear = flagged.CacheClear },
		"cache.strictPerms": func() { cfg.CacheStrictPerms = flagged.CacheStrictPerms },
		"no-rewrite":        func() { cfg.NoRewrite = flagged.NoRewrite },
		"robots":            func() { cfg.RespectRobots = flagged.RespectRobots },
		"v":                 func() { cfg.Verbose = flagged.Verbose },
	} {
		if explicit[name] {
			apply()
		}
	}
}

// exitCode maps errors to process exit codes: 2 when no paragraph could be
// generated, 1 otherwise.
func exitCode(err error) int {
	if errors.Is(err, app.ErrNoParagraphs) {
		return 2
	}
	return 1
}

func run(ctx context.Context, cfg app.Config, serve bool) error {
	a, err := app.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("init app: %w", err)
	}
	defer a.Close()

	if serve {
		log.Info().Str("version", app.BuildVersion).Msg("starting service")
		return a.Serve(ctx)
	}
	return a.Run(ctx)
}
