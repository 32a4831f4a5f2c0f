package rewrite

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"

	"github.com/hyperifyio/articlegen/internal/llm"
)

// Rewriter calls an article-rewriter API that answers with {"rewrite": "..."}.
type Rewriter struct {
	Endpoint
}

func (r *Rewriter) Name() string { return "rewriter" }

func (r *Rewriter) Paraphrase(ctx context.Context, text string, opts ParaphraseOptions) (string, bool) {
	req := map[string]any{"text": text}
	if opts.Language != "" {
		req["language"] = opts.Language
	}
	if opts.Strength > 0 {
		req["strength"] = opts.Strength
	}
	var resp struct {
		Rewrite string `json:"rewrite"`
	}
	if err := r.postJSON(ctx, "/rewrite", req, &resp); err != nil {
		log.Warn().Err(err).Str("provider", r.Name()).Msg("paraphrase failed")
		return "", false
	}
	if strings.TrimSpace(resp.Rewrite) == "" {
		log.Warn().Str("provider", r.Name()).Msg("paraphrase response missing rewrite")
		return "", false
	}
	return resp.Rewrite, true
}

// TextSpinner calls a paraphrasing API that answers with {"newText": "..."}.
// Strength maps onto the provider's numeric mode.
type TextSpinner struct {
	Endpoint
}

func (s *TextSpinner) Name() string { return "textspinner" }

func (s *TextSpinner) Paraphrase(ctx context.Context, text string, opts ParaphraseOptions) (string, bool) {
	lang := opts.Language
	if lang == "" {
		lang = "en"
	}
	mode := opts.Strength
	if mode <= 0 {
		mode = 1
	}
	req := map[string]any{"text": text, "lang": lang, "mode": mode}
	var resp struct {
		NewText string `json:"newText"`
	}
	if err := s.postJSON(ctx, "/paraphrase", req, &resp); err != nil {
		log.Warn().Err(err).Str("provider", s.Name()).Msg("paraphrase failed")
		return "", false
	}
	if strings.TrimSpace(resp.NewText) == "" {
		log.Warn().Str("provider", s.Name()).Msg("paraphrase response missing newText")
		return "", false
	}
	return resp.NewText, true
}

const chatParaphraseSystem = "You rewrite text. Keep the meaning, facts, names and numbers. Change wording and sentence structure. Reply with the rewritten text only."

// ChatParaphraser rewrites text through an OpenAI-compatible chat model.
type ChatParaphraser struct {
	Client llm.Client
	Model  string
}

func (c *ChatParaphraser) Name() string { return "openai" }

func (c *ChatParaphraser) Paraphrase(ctx context.Context, text string, opts ParaphraseOptions) (string, bool) {
	if c.Client == nil || strings.TrimSpace(c.Model) == "" {
		log.Warn().Str("provider", c.Name()).Msg("chat paraphraser not configured")
		return "", false
	}
	user := text
	if opts.Language != "" {
		user = "Write in language: " + opts.Language + "\n\n" + text
	}
	resp, err := c.Client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: chatParaphraseSystem},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Temperature: 0.7,
		N:           1,
	})
	if err != nil {
		log.Warn().Err(err).Str("provider", c.Name()).Msg("paraphrase failed")
		return "", false
	}
	if len(resp.Choices) == 0 {
		log.Warn().Str("provider", c.Name()).Msg("paraphrase response has no choices")
		return "", false
	}
	out := strings.TrimSpace(resp.Choices[0].Message.Content)
	if out == "" {
		log.Warn().Str("provider", c.Name()).Msg("paraphrase response is empty")
		return "", false
	}
	return out, true
}
