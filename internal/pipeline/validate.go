package pipeline

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/hyperifyio/articlegen/internal/article"
	"github.com/hyperifyio/articlegen/internal/render"
)

// prepare validates cfg and fills defaults. ok is false when the request
// cannot run at all; errs is never nil.
func (p *Pipeline) prepare(cfg article.Config) (article.Config, []string, bool) {
	errs := []string{}
	cfg.SeedText = strings.TrimSpace(cfg.SeedText)

	cfg.NumSerpResults = clampCount(cfg.NumSerpResults, article.DefaultNumSerpResults, "num_serp_results", &errs)
	cfg.NumOutboundLinksPerSerpResult = clampCount(cfg.NumOutboundLinksPerSerpResult, article.DefaultNumOutboundLinks, "num_outbound_links_per_serp_result", &errs)

	format := strings.ToLower(strings.TrimSpace(cfg.OutputFormat))
	switch {
	case format == "":
		format = article.FormatText
	case !render.Supported(format):
		errs = append(errs, fmt.Sprintf("output_format %q is not supported, using %q", cfg.OutputFormat, article.FormatText))
		format = article.FormatText
	}
	cfg.OutputFormat = format

	mode := strings.ToLower(strings.TrimSpace(cfg.Mode))
	switch mode {
	case "":
		mode = article.ModeParaphrase
	case article.ModeParaphrase, article.ModeSummarize:
	default:
		errs = append(errs, fmt.Sprintf("mode %q is not supported, using %q", cfg.Mode, article.ModeParaphrase))
		mode = article.ModeParaphrase
	}
	cfg.Mode = mode

	if cfg.ParaphraseProvider == "" {
		cfg.ParaphraseProvider = p.Defaults.ParaphraseProvider
	}
	if cfg.SummarizeProvider == "" {
		cfg.SummarizeProvider = p.Defaults.SummarizeProvider
	}
	if cfg.Language == "" {
		cfg.Language = p.Defaults.Language
	}
	if cfg.Strength == 0 {
		cfg.Strength = p.Defaults.Strength
	}
	if cfg.SentNum == 0 {
		cfg.SentNum = p.Defaults.SentNum
	}

	if utf8.RuneCountInString(cfg.SeedText) < article.MinSeedChars {
		errs = append(errs, fmt.Sprintf("seed_text must be at least %d characters", article.MinSeedChars))
		return cfg, errs, false
	}
	return cfg, errs, true
}

// clampCount keeps n in (0, MaxCount]. Zero means unset and takes def
// silently; other out-of-range values take def with an error entry.
func clampCount(n, def int, name string, errs *[]string) int {
	if n == 0 {
		return def
	}
	if n < 0 || n > article.MaxCount {
		*errs = append(*errs, fmt.Sprintf("%s must be between 1 and %d, using %d", name, article.MaxCount, def))
		return def
	}
	return n
}
