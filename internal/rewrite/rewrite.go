package rewrite

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/articlegen/internal/article"
	"github.com/hyperifyio/articlegen/internal/metrics"
)

// ParaphraseOptions are passed through to paraphrase providers that
// understand them.
type ParaphraseOptions struct {
	Language string
	Strength int
}

// SummarizeOptions are passed through to summarize providers. URL lets
// providers that can fetch on their own summarize the page directly.
type SummarizeOptions struct {
	SentNum int
	URL     string
}

// Paraphraser rewrites text. ok is false on any upstream failure or when
// the expected response field is missing; implementations never panic and
// never return errors.
type Paraphraser interface {
	Name() string
	Paraphrase(ctx context.Context, text string, opts ParaphraseOptions) (string, bool)
}

// Summarizer reduces text to a summary and/or key snippets, with the same
// failure contract as Paraphraser.
type Summarizer interface {
	Name() string
	Summarize(ctx context.Context, text string, opts SummarizeOptions) (article.Summary, bool)
}

// DefaultMaxChunkChars bounds the text sent in one paraphrase call.
const DefaultMaxChunkChars = 8000

// Dispatcher routes requests to a named provider. There is no automatic
// failover; callers pick the provider.
type Dispatcher struct {
	MaxChunkChars int

	paraphrasers map[string]Paraphraser
	summarizers  map[string]Summarizer
}

// NewDispatcher returns an empty dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		MaxChunkChars: DefaultMaxChunkChars,
		paraphrasers:  map[string]Paraphraser{},
		summarizers:   map[string]Summarizer{},
	}
}

// RegisterParaphraser adds p under p.Name(), replacing any previous entry.
func (d *Dispatcher) RegisterParaphraser(p Paraphraser) {
	d.paraphrasers[strings.ToLower(p.Name())] = p
}

// RegisterSummarizer adds s under s.Name(), replacing any previous entry.
func (d *Dispatcher) RegisterSummarizer(s Summarizer) {
	d.summarizers[strings.ToLower(s.Name())] = s
}

// Paraphrase rewrites text with the named provider. Long text is split into
// chunks which are paraphrased in order; one failed chunk fails the call.
func (d *Dispatcher) Paraphrase(ctx context.Context, text string, opts ParaphraseOptions, provider string) (string, bool) {
	p, ok := d.paraphrasers[strings.ToLower(provider)]
	if !ok {
		log.Warn().Str("provider", provider).Msg("unknown paraphrase provider")
		return "", false
	}
	if strings.TrimSpace(text) == "" {
		return "", false
	}
	chunks := Chunk(text, d.MaxChunkChars)
	out := make([]string, 0, len(chunks))
	for i, c := range chunks {
		res, ok := p.Paraphrase(ctx, c, opts)
		metrics.ProviderCalls.WithLabelValues("paraphrase", p.Name(), metrics.Outcome(ok)).Inc()
		if !ok {
			log.Debug().Str("provider", p.Name()).Int("chunk", i).Int("chunks", len(chunks)).Msg("paraphrase chunk failed")
			return "", false
		}
		out = append(out, strings.TrimSpace(res))
	}
	return strings.Join(out, "\n\n"), true
}

// Summarize runs the named summarize provider.
func (d *Dispatcher) Summarize(ctx context.Context, text string, opts SummarizeOptions, provider string) (article.Summary, bool) {
	s, ok := d.summarizers[strings.ToLower(provider)]
	if !ok {
		log.Warn().Str("provider", provider).Msg("unknown summarize provider")
		return article.Summary{}, false
	}
	if strings.TrimSpace(text) == "" && opts.URL == "" {
		return article.Summary{}, false
	}
	res, ok := s.Summarize(ctx, text, opts)
	metrics.ProviderCalls.WithLabelValues("summarize", s.Name(), metrics.Outcome(ok)).Inc()
	return res, ok
}
