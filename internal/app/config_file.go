package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	yaml "gopkg.in/yaml.v3"

	"github.com/hyperifyio/articlegen/internal/render"
)

type endpointConfig struct {
	URL string `yaml:"url" json:"url"`
	Key string `yaml:"key" json:"key"`
}

// FileConfig represents the single-file configuration schema.
// Nested sections map naturally to flags/env.
type FileConfig struct {
	Output     string `yaml:"output" json:"output"`
	OutputPDF  string `yaml:"outputPDF" json:"outputPDF"`
	OutputsDir string `yaml:"outputsDir" json:"outputsDir"`
	Format     string `yaml:"format" json:"format"`
	Verbose    bool   `yaml:"verbose" json:"verbose"`

	Server struct {
		Addr    string        `yaml:"addr" json:"addr"`
		Timeout time.Duration `yaml:"timeout" json:"timeout"`
	} `yaml:"server" json:"server"`

	Search struct {
		Provider string `yaml:"provider" json:"provider"`
		File     string `yaml:"file" json:"file"`
		SerpAPI  struct {
			URL string `yaml:"url" json:"url"`
			Key string `yaml:"key" json:"key"`
			HL  string `yaml:"hl" json:"hl"`
			GL  string `yaml:"gl" json:"gl"`
		} `yaml:"serpapi" json:"serpapi"`
		Searx struct {
			URL string `yaml:"url" json:"url"`
			Key string `yaml:"key" json:"key"`
			UA  string `yaml:"ua" json:"ua"`
		} `yaml:"searx" json:"searx"`
	} `yaml:"search" json:"search"`

	Rewrite struct {
		Paraphrase    string         `yaml:"paraphrase" json:"paraphrase"`
		Summarize     string         `yaml:"summarize" json:"summarize"`
		Language      string         `yaml:"language" json:"language"`
		Strength      int            `yaml:"strength" json:"strength"`
		SentNum       int            `yaml:"sentNum" json:"sentNum"`
		MaxChunkChars int            `yaml:"maxChunkChars" json:"maxChunkChars"`
		Rewriter      endpointConfig `yaml:"rewriter" json:"rewriter"`
		TextSpinner   endpointConfig `yaml:"textspinner" json:"textspinner"`
		Sentences     endpointConfig `yaml:"sentences" json:"sentences"`
		Extractive    endpointConfig `yaml:"extractive" json:"extractive"`
	} `yaml:"rewrite" json:"rewrite"`

	LLM struct {
		BaseURL         string `yaml:"base" json:"base"`
		Model           string `yaml:"model" json:"model"`
		CompletionModel string `yaml:"completionModel" json:"completionModel"`
		APIKey          string `yaml:"key" json:"key"`
	} `yaml:"llm" json:"llm"`

	Product  endpointConfig `yaml:"product" json:"product"`
	Comments endpointConfig `yaml:"comments" json:"comments"`
	Intel    endpointConfig `yaml:"intel" json:"intel"`

	Fetch struct {
		UserAgent     string        `yaml:"userAgent" json:"userAgent"`
		Timeout       time.Duration `yaml:"timeout" json:"timeout"`
		Attempts      int           `yaml:"attempts" json:"attempts"`
		MaxConcurrent int           `yaml:"maxConcurrent" json:"maxConcurrent"`
		RespectRobots *bool         `yaml:"respectRobots" json:"respectRobots"`
		SSLVerify     *bool         `yaml:"sslVerify" json:"sslVerify"`
	} `yaml:"fetch" json:"fetch"`

	Cache struct {
		Dir         string        `yaml:"dir" json:"dir"`
		MaxAge      time.Duration `yaml:"maxAge" json:"maxAge"`
		Clear       bool          `yaml:"clear" json:"clear"`
		StrictPerms bool          `yaml:"strictPerms" json:"strictPerms"`
		MaxBytes    int64         `yaml:"maxBytes" json:"maxBytes"`
		MaxEntries  int           `yaml:"maxEntries" json:"maxEntries"`
	} `yaml:"cache" json:"cache"`
}

// LoadConfigFile reads YAML or JSON into FileConfig.
func LoadConfigFile(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	switch ext := filepath.Ext(path); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse yaml: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse json: %w", err)
		}
	default:
		if err := yaml.Unmarshal(b, &fc); err != nil {
			if jerr := json.Unmarshal(b, &fc); jerr != nil {
				return fc, fmt.Errorf("parse config: %v (yaml) / %v (json)", err, jerr)
			}
		}
	}
	return fc, nil
}

// ApplyFileConfig overlays values from fc onto cfg for fields that are unset
// or still hold their flag default, so explicit flags win.
func ApplyFileConfig(cfg *Config, fc FileConfig) {
	if cfg == nil {
		return
	}
	def := DefaultConfig()

	str := func(dst *string, dflt, v string) {
		if (*dst == "" || *dst == dflt) && v != "" {
			*dst = v
		}
	}
	num := func(dst *int, dflt, v int) {
		if (*dst == 0 || *dst == dflt) && v > 0 {
			*dst = v
		}
	}
	dur := func(dst *time.Duration, dflt, v time.Duration) {
		if (*dst == 0 || *dst == dflt) && v > 0 {
			*dst = v
		}
	}
	flag := func(dst *bool, v bool) {
		if !*dst && v {
			*dst = true
		}
	}

	str(&cfg.OutputPath, def.OutputPath, fc.Output)
	str(&cfg.OutputPDFPath, def.OutputPDFPath, fc.OutputPDF)
	str(&cfg.OutputsDir, def.OutputsDir, fc.OutputsDir)
	str(&cfg.OutputFormat, def.OutputFormat, fc.Format)
	flag(&cfg.Verbose, fc.Verbose)

	str(&cfg.ServeAddr, def.ServeAddr, fc.Server.Addr)
	dur(&cfg.RequestTimeout, def.RequestTimeout, fc.Server.Timeout)

	str(&cfg.SearchProvider, def.SearchProvider, fc.Search.Provider)
	str(&cfg.FileSearchPath, def.FileSearchPath, fc.Search.File)
	str(&cfg.SerpAPIURL, def.SerpAPIURL, fc.Search.SerpAPI.URL)
	str(&cfg.SerpAPIKey, def.SerpAPIKey, fc.Search.SerpAPI.Key)
	str(&cfg.SerpAPIHL, def.SerpAPIHL, fc.Search.SerpAPI.HL)
	str(&cfg.SerpAPIGL, def.SerpAPIGL, fc.Search.SerpAPI.GL)
	str(&cfg.SearxURL, def.SearxURL, fc.Search.Searx.URL)
	str(&cfg.SearxKey, def.SearxKey, fc.Search.Searx.Key)
	str(&cfg.SearxUA, def.SearxUA, fc.Search.Searx.UA)

	str(&cfg.ParaphraseProvider, def.ParaphraseProvider, fc.Rewrite.Paraphrase)
	str(&cfg.SummarizeProvider, def.SummarizeProvider, fc.Rewrite.Summarize)
	str(&cfg.LanguageHint, def.LanguageHint, fc.Rewrite.Language)
	num(&cfg.Strength, def.Strength, fc.Rewrite.Strength)
	num(&cfg.SentNum, def.SentNum, fc.Rewrite.SentNum)
	num(&cfg.MaxChunkChars, def.MaxChunkChars, fc.Rewrite.MaxChunkChars)
	str(&cfg.RewriterURL, def.RewriterURL, fc.Rewrite.Rewriter.URL)
	str(&cfg.RewriterKey, def.RewriterKey, fc.Rewrite.Rewriter.Key)
	str(&cfg.TextSpinnerURL, def.TextSpinnerURL, fc.Rewrite.TextSpinner.URL)
	str(&cfg.TextSpinnerKey, def.TextSpinnerKey, fc.Rewrite.TextSpinner.Key)
	str(&cfg.SentencesURL, def.SentencesURL, fc.Rewrite.Sentences.URL)
	str(&cfg.SentencesKey, def.SentencesKey, fc.Rewrite.Sentences.Key)
	str(&cfg.ExtractiveURL, def.ExtractiveURL, fc.Rewrite.Extractive.URL)
	str(&cfg.ExtractiveKey, def.ExtractiveKey, fc.Rewrite.Extractive.Key)

	str(&cfg.LLMBaseURL, def.LLMBaseURL, fc.LLM.BaseURL)
	str(&cfg.LLMModel, def.LLMModel, fc.LLM.Model)
	str(&cfg.LLMCompletionModel, def.LLMCompletionModel, fc.LLM.CompletionModel)
	str(&cfg.LLMAPIKey, def.LLMAPIKey, fc.LLM.APIKey)

	str(&cfg.ProductURL, def.ProductURL, fc.Product.URL)
	str(&cfg.ProductKey, def.ProductKey, fc.Product.Key)
	str(&cfg.CommentsURL, def.CommentsURL, fc.Comments.URL)
	str(&cfg.CommentsKey, def.CommentsKey, fc.Comments.Key)
	str(&cfg.IntelURL, def.IntelURL, fc.Intel.URL)
	str(&cfg.IntelKey, def.IntelKey, fc.Intel.Key)

	str(&cfg.UserAgent, def.UserAgent, fc.Fetch.UserAgent)
	dur(&cfg.FetchTimeout, def.FetchTimeout, fc.Fetch.Timeout)
	num(&cfg.FetchAttempts, def.FetchAttempts, fc.Fetch.Attempts)
	num(&cfg.MaxConcurrent, def.MaxConcurrent, fc.Fetch.MaxConcurrent)
	// Default-on toggles: only an explicit false in the file turns them off.
	if fc.Fetch.RespectRobots != nil && !*fc.Fetch.RespectRobots {
		cfg.RespectRobots = false
	}
	if fc.Fetch.SSLVerify != nil && !*fc.Fetch.SSLVerify {
		cfg.SSLVerify = false
	}

	str(&cfg.CacheDir, def.CacheDir, fc.Cache.Dir)
	dur(&cfg.CacheMaxAge, def.CacheMaxAge, fc.Cache.MaxAge)
	flag(&cfg.CacheClear, fc.Cache.Clear)
	flag(&cfg.CacheStrictPerms, fc.Cache.StrictPerms)
	if cfg.CacheMaxBytes == 0 && fc.Cache.MaxBytes > 0 {
		cfg.CacheMaxBytes = fc.Cache.MaxBytes
	}
	num(&cfg.CacheMaxEntries, def.CacheMaxEntries, fc.Cache.MaxEntries)
}

// ValidateConfig performs minimal validation of settings the app cannot run
// without. serve selects the HTTP service; otherwise a seed is required.
func ValidateConfig(cfg Config, serve bool) error {
	if !serve && strings.TrimSpace(cfg.SeedText) == "" {
		return errors.New("config: seed text is required (or use -serve)")
	}
	if serve && strings.TrimSpace(cfg.ServeAddr) == "" {
		return errors.New("config: listen address is required")
	}
	if !hasSearchProvider(cfg) {
		return errors.New("config: no search provider configured (set SERPAPI_KEY, SEARX_URL or SEARCH_FILE)")
	}
	switch strings.ToLower(strings.TrimSpace(cfg.SearchProvider)) {
	case "", providerSerpAPI, providerSearx, providerFile:
	default:
		return fmt.Errorf("config: unknown search provider %q", cfg.SearchProvider)
	}
	if cfg.OutputFormat != "" && !render.Supported(cfg.OutputFormat) {
		return fmt.Errorf("config: unknown output format %q", cfg.OutputFormat)
	}
	if cfg.FetchAttempts < 0 || cfg.MaxConcurrent < 0 || cfg.CacheMaxBytes < 0 || cfg.CacheMaxEntries < 0 {
		return errors.New("config: negative limits are not allowed")
	}
	return nil
}

func hasSearchProvider(cfg Config) bool {
	return strings.TrimSpace(cfg.SerpAPIKey) != "" ||
		strings.TrimSpace(cfg.SearxURL) != "" ||
		strings.TrimSpace(cfg.FileSearchPath) != ""
}
