package app

import "time"

// Config holds runtime configuration for the application.
type Config struct {
	// One-shot CLI run
	SeedText         string
	OutputPath       string
	OutputPDFPath    string
	OutputsDir       string
	OutputFormat     string
	NumSerpResults   int
	NumOutboundLinks int
	Mode             string
	NoRewrite        bool

	// HTTP service
	ServeAddr      string
	RequestTimeout time.Duration

	// Search. SearchProvider picks one of serpapi, searxng or file; empty
	// means the first one configured in that order.
	SearchProvider string
	SerpAPIURL     string
	SerpAPIKey     string
	SerpAPIHL      string
	SerpAPIGL      string
	SearxURL       string
	SearxKey       string
	SearxUA        string
	FileSearchPath string

	// Rewrite providers
	RewriterURL    string
	RewriterKey    string
	TextSpinnerURL string
	TextSpinnerKey string
	SentencesURL   string
	SentencesKey   string
	ExtractiveURL  string
	ExtractiveKey  string
	MaxChunkChars  int

	// LLM
	LLMBaseURL         string
	LLMAPIKey          string
	LLMModel           string
	LLMCompletionModel string

	// Lookups
	ProductURL  string
	ProductKey  string
	CommentsURL string
	CommentsKey string
	IntelURL    string
	IntelKey    string

	// Request defaults
	ParaphraseProvider string
	SummarizeProvider  string
	LanguageHint       string
	Strength           int
	SentNum            int

	// Page fetching
	UserAgent     string
	FetchTimeout  time.Duration
	FetchAttempts int
	MaxConcurrent int
	// SSLVerify false accepts self-signed certificates on provider hosts.
	SSLVerify bool
	// RespectRobots consults robots.txt before fetching a page.
	RespectRobots bool

	// Cache
	CacheDir         string
	CacheMaxAge      time.Duration
	CacheClear       bool
	CacheStrictPerms bool
	CacheMaxBytes    int64
	CacheMaxEntries  int

	Verbose bool
}

// DefaultConfig returns the values flags start from. File config may replace
// any field still holding its default.
func DefaultConfig() Config {
	return Config{
		OutputFormat:       "text",
		OutputsDir:         "articles",
		NumSerpResults:     3,
		NumOutboundLinks:   3,
		Mode:               "paraphrase",
		ServeAddr:          ":8080",
		RequestTimeout:     2 * time.Minute,
		SerpAPIURL:         "https://serpapi.com",
		SearxUA:            "articlegen/1.0 (+https://github.com/hyperifyio/articlegen)",
		MaxChunkChars:      8000,
		ParaphraseProvider: "rewriter",
		SummarizeProvider:  "sentences",
		LanguageHint:       "en",
		Strength:           3,
		SentNum:            5,
		FetchTimeout:       15 * time.Second,
		FetchAttempts:      2,
		MaxConcurrent:      8,
		SSLVerify:          true,
		RespectRobots:      true,
		CacheDir:           ".articlegen-cache",
	}
}
