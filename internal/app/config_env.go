package app

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// envString binds a string field to one or more env keys; the first
// non-empty key wins.
type envString struct {
	dst  *string
	keys []string
}

func stringBindings(cfg *Config) []envString {
	return []envString{
		{&cfg.SearchProvider, []string{"SEARCH_PROVIDER"}},
		{&cfg.SerpAPIURL, []string{"SERPAPI_URL"}},
		{&cfg.SerpAPIKey, []string{"SERPAPI_KEY", "SERPAPI_API_KEY"}},
		{&cfg.SerpAPIHL, []string{"SERPAPI_HL"}},
		{&cfg.SerpAPIGL, []string{"SERPAPI_GL"}},
		{&cfg.SearxURL, []string{"SEARX_URL", "SEARXNG_URL"}},
		{&cfg.SearxKey, []string{"SEARX_KEY", "SEARXNG_KEY"}},
		{&cfg.FileSearchPath, []string{"SEARCH_FILE"}},
		{&cfg.RewriterURL, []string{"REWRITER_URL"}},
		{&cfg.RewriterKey, []string{"REWRITER_KEY"}},
		{&cfg.TextSpinnerURL, []string{"TEXTSPINNER_URL"}},
		{&cfg.TextSpinnerKey, []string{"TEXTSPINNER_KEY", "RAPIDAPI_KEY"}},
		{&cfg.SentencesURL, []string{"SENTENCES_URL"}},
		{&cfg.SentencesKey, []string{"SENTENCES_KEY"}},
		{&cfg.ExtractiveURL, []string{"EXTRACTIVE_URL"}},
		{&cfg.ExtractiveKey, []string{"EXTRACTIVE_KEY"}},
		{&cfg.LLMBaseURL, []string{"LLM_BASE_URL", "OPENAI_BASE_URL"}},
		{&cfg.LLMAPIKey, []string{"LLM_API_KEY", "OPENAI_API_KEY"}},
		{&cfg.LLMModel, []string{"LLM_MODEL"}},
		{&cfg.LLMCompletionModel, []string{"LLM_COMPLETION_MODEL"}},
		{&cfg.ProductURL, []string{"PRODUCT_API_URL"}},
		{&cfg.ProductKey, []string{"PRODUCT_API_KEY"}},
		{&cfg.CommentsURL, []string{"COMMENTS_API_URL"}},
		{&cfg.CommentsKey, []string{"COMMENTS_API_KEY"}},
		{&cfg.IntelURL, []string{"INTEL_API_URL"}},
		{&cfg.IntelKey, []string{"INTEL_API_KEY"}},
		{&cfg.ParaphraseProvider, []string{"PARAPHRASE_PROVIDER"}},
		{&cfg.SummarizeProvider, []string{"SUMMARIZE_PROVIDER"}},
		{&cfg.LanguageHint, []string{"LANGUAGE"}},
		{&cfg.UserAgent, []string{"FETCH_USER_AGENT"}},
		{&cfg.CacheDir, []string{"CACHE_DIR"}},
		{&cfg.ServeAddr, []string{"LISTEN_ADDR"}},
	}
}

func lookup(keys []string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(os.Getenv(k)); v != "" {
			return v
		}
	}
	return ""
}

func parseBool(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on":
		return true, true
	case "0", "false", "no", "off":
		return false, true
	}
	return false, false
}

// ApplyEnvToConfig populates unset fields of cfg from environment variables.
// Explicit cfg values take precedence over env.
func ApplyEnvToConfig(cfg *Config) {
	if cfg == nil {
		return
	}
	for _, b := range stringBindings(cfg) {
		if *b.dst == "" {
			*b.dst = lookup(b.keys)
		}
	}
	if cfg.CacheMaxAge == 0 {
		if d, err := time.ParseDuration(os.Getenv("CACHE_MAX_AGE")); err == nil {
			cfg.CacheMaxAge = d
		}
	}
	if cfg.MaxConcurrent == 0 {
		if n, err := strconv.Atoi(os.Getenv("FETCH_MAX_CONCURRENT")); err == nil && n > 0 {
			cfg.MaxConcurrent = n
		}
	}

	setBool := func(dst *bool, envKey string) {
		if *dst {
			return
		}
		if v, ok := parseBool(os.Getenv(envKey)); ok && v {
			*dst = true
		}
	}
	setBool(&cfg.Verbose, "VERBOSE")
	setBool(&cfg.CacheClear, "CACHE_CLEAR")
	setBool(&cfg.CacheStrictPerms, "CACHE_STRICT_PERMS")
}

// ApplyEnvOverrides forcefully overrides cfg fields with environment variables
// when the corresponding env vars are set. This lets env take precedence over
// a config file while flags remain highest precedence.
func ApplyEnvOverrides(cfg *Config) {
	if cfg == nil {
		return
	}
	for _, b := range stringBindings(cfg) {
		if v := lookup(b.keys); v != "" {
			*b.dst = v
		}
	}
	if d, err := time.ParseDuration(os.Getenv("CACHE_MAX_AGE")); err == nil {
		cfg.CacheMaxAge = d
	}
	if d, err := time.ParseDuration(os.Getenv("REQUEST_TIMEOUT")); err == nil {
		cfg.RequestTimeout = d
	}
	if n, err := strconv.Atoi(os.Getenv("FETCH_MAX_CONCURRENT")); err == nil && n > 0 {
		cfg.MaxConcurrent = n
	}

	setBool := func(dst *bool, envKey string) {
		if v, ok := parseBool(os.Getenv(envKey)); ok {
			*dst = v
		}
	}
	setBool(&cfg.Verbose, "VERBOSE")
	setBool(&cfg.CacheClear, "CACHE_CLEAR")
	setBool(&cfg.CacheStrictPerms, "CACHE_STRICT_PERMS")
	setBool(&cfg.NoRewrite, "NO_REWRITE")
	setBool(&cfg.SSLVerify, "SSL_VERIFY")
	setBool(&cfg.RespectRobots, "RESPECT_ROBOTS")
}
