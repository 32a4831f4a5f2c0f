package article

// Output formats understood by the renderers.
const (
	FormatText     = "text"
	FormatMarkdown = "markdown"
	FormatHTML     = "html"
)

// Rewrite modes. ModeSummarize summarizes the body first and paraphrases
// the summary.
const (
	ModeParaphrase = "paraphrase"
	ModeSummarize  = "summarize"
)

const (
	DefaultNumSerpResults   = 3
	DefaultNumOutboundLinks = 3
	MaxCount                = 10
	MinSeedChars            = 5
)

// ExplicitZeroCount stands in for a count the caller set to 0. Config treats
// 0 as omitted, so transports that can tell the two apart map an explicit
// zero here and the pipeline reports it as out of range.
const ExplicitZeroCount = -1

// Config is the per-request generator configuration. It is validated and
// defaulted by the pipeline and not modified afterwards. A count of 0 means
// omitted and takes the default.
type Config struct {
	SeedText                      string
	NumSerpResults                int
	NumOutboundLinksPerSerpResult int
	OutputFormat                  string
	// Rewrite nil means enabled.
	Rewrite            *bool
	Mode               string
	ParaphraseProvider string
	SummarizeProvider  string
	Language           string
	Strength           int
	SentNum            int
}

// RewriteEnabled reports whether rewriting was not explicitly disabled.
func (c Config) RewriteEnabled() bool {
	return c.Rewrite == nil || *c.Rewrite
}

// Params echoes the effective configuration back to the caller.
type Params struct {
	SeedText                      string `json:"seed_text"`
	OutputFormat                  string `json:"output_format"`
	NumSerpResults                int    `json:"num_serp_results"`
	NumOutboundLinksPerSerpResult int    `json:"num_outbound_links_per_serp_result"`
	Rewrite                       bool   `json:"rewrite"`
	Mode                          string `json:"mode"`
}

// Result is the response contract of one generation request.
type Result struct {
	GeneratedArticle string   `json:"generated_article"`
	Errors           []string `json:"error"`
	Params           Params   `json:"params"`
}
