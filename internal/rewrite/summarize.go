package rewrite

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"

	"github.com/hyperifyio/articlegen/internal/article"
	"github.com/hyperifyio/articlegen/internal/budget"
	"github.com/hyperifyio/articlegen/internal/llm"
)

// SentenceSummarizer calls an extractive API answering {"sentences": [...]}.
type SentenceSummarizer struct {
	Endpoint
}

func (s *SentenceSummarizer) Name() string { return "sentences" }

func (s *SentenceSummarizer) Summarize(ctx context.Context, text string, opts SummarizeOptions) (article.Summary, bool) {
	sentnum := opts.SentNum
	if sentnum <= 0 {
		sentnum = 5
	}
	var resp struct {
		Sentences []string `json:"sentences"`
	}
	if err := s.postJSON(ctx, "/summarize", map[string]any{"text": text, "sentnum": sentnum}, &resp); err != nil {
		log.Warn().Err(err).Str("provider", s.Name()).Msg("summarize failed")
		return article.Summary{}, false
	}
	kept := make([]string, 0, len(resp.Sentences))
	for _, sn := range resp.Sentences {
		if sn = strings.TrimSpace(sn); sn != "" {
			kept = append(kept, sn)
		}
	}
	if len(kept) == 0 {
		log.Warn().Str("provider", s.Name()).Msg("summarize response missing sentences")
		return article.Summary{}, false
	}
	return article.Summary{Snippets: kept, Summary: strings.Join(kept, " ")}, true
}

// ExtractiveSummarizer calls an API answering {"summary": "...", "snippets": [...]}.
// It sends the page URL instead of text when text is empty.
type ExtractiveSummarizer struct {
	Endpoint
}

func (s *ExtractiveSummarizer) Name() string { return "extractive" }

func (s *ExtractiveSummarizer) Summarize(ctx context.Context, text string, opts SummarizeOptions) (article.Summary, bool) {
	req := map[string]any{}
	if strings.TrimSpace(text) != "" {
		req["text"] = text
	} else {
		req["url"] = opts.URL
	}
	if opts.SentNum > 0 {
		req["sentnum"] = opts.SentNum
	}
	var resp struct {
		Summary  string   `json:"summary"`
		Snippets []string `json:"snippets"`
	}
	if err := s.postJSON(ctx, "/extract", req, &resp); err != nil {
		log.Warn().Err(err).Str("provider", s.Name()).Msg("summarize failed")
		return article.Summary{}, false
	}
	out := article.Summary{Summary: strings.TrimSpace(resp.Summary), Snippets: resp.Snippets}
	if out.Summary == "" && len(out.Snippets) == 0 {
		log.Warn().Str("provider", s.Name()).Msg("summarize response missing summary and snippets")
		return article.Summary{}, false
	}
	return out, true
}

// TLDRSuffix is appended to the text to prompt a completion model for a summary.
const TLDRSuffix = "\n\ntl;dr:"

// TLDRSummarizer summarizes through a prompt-completion model. The output
// budget is ceil(len(text)/4) tokens, capped by the model context. Text that
// cannot fit prompt and answer in one context is split into chunks that do;
// each chunk is summarized in order and the summaries are joined. Any failed
// chunk fails the call.
type TLDRSummarizer struct {
	Client llm.Completer
	Model  string
}

func (s *TLDRSummarizer) Name() string { return "openai" }

func (s *TLDRSummarizer) Summarize(ctx context.Context, text string, _ SummarizeOptions) (article.Summary, bool) {
	if s.Client == nil || strings.TrimSpace(s.Model) == "" {
		log.Warn().Str("provider", s.Name()).Msg("tl;dr summarizer not configured")
		return article.Summary{}, false
	}
	chunks := Chunk(text, s.maxChunkChars())
	if len(chunks) <= 1 {
		out, ok := s.complete(ctx, text)
		if !ok {
			return article.Summary{}, false
		}
		return article.Summary{Summary: out}, true
	}
	log.Debug().Str("provider", s.Name()).Int("chunks", len(chunks)).Int("chars", len(text)).Msg("summarizing in chunks")
	parts := make([]string, 0, len(chunks))
	for _, c := range chunks {
		out, ok := s.complete(ctx, c)
		if !ok {
			return article.Summary{}, false
		}
		parts = append(parts, out)
	}
	return article.Summary{Summary: strings.Join(parts, " "), Snippets: parts}, true
}

// maxChunkChars is the longest text whose prompt and ceil(len/4) answer both
// fit in the model context.
func (s *TLDRSummarizer) maxChunkChars() int {
	n := budget.ModelContextTokens(s.Model)/2*4 - len(TLDRSuffix) - 16
	if n < 256 {
		n = 256
	}
	return n
}

func (s *TLDRSummarizer) complete(ctx context.Context, text string) (string, bool) {
	prompt := text + TLDRSuffix
	maxTokens := budget.CompletionTokens(s.Model, budget.EstimateTokens(prompt), budget.EstimateTokensFromChars(len(text)))
	if maxTokens <= 0 {
		log.Warn().Str("provider", s.Name()).Int("chars", len(text)).Msg("text too long for model context")
		return "", false
	}
	resp, err := s.Client.CreateCompletion(ctx, openai.CompletionRequest{
		Model:       s.Model,
		Prompt:      prompt,
		MaxTokens:   maxTokens,
		Temperature: 0.7,
		TopP:        1,
	})
	if err != nil {
		log.Warn().Err(err).Str("provider", s.Name()).Msg("summarize failed")
		return "", false
	}
	if len(resp.Choices) == 0 {
		log.Warn().Str("provider", s.Name()).Msg("summarize response has no choices")
		return "", false
	}
	out := strings.TrimSpace(resp.Choices[0].Text)
	if out == "" {
		log.Warn().Str("provider", s.Name()).Msg("summarize response is empty")
		return "", false
	}
	return out, true
}
