package rewrite

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	openai "github.com/sashabaranov/go-openai"
)

func jsonServer(t *testing.T, path string, payload any, seen *map[string]any) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != path || r.Method != http.MethodPost {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if seen != nil {
			_ = json.NewDecoder(r.Body).Decode(seen)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(payload)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestParaphraseAdapters_MissingFieldYieldsFalse(t *testing.T) {
	cases := []struct {
		name string
		path string
		mk   func(Endpoint) Paraphraser
	}{
		{"rewriter", "/rewrite", func(e Endpoint) Paraphraser { return &Rewriter{Endpoint: e} }},
		{"textspinner", "/paraphrase", func(e Endpoint) Paraphraser { return &TextSpinner{Endpoint: e} }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			for _, payload := range []any{
				map[string]any{"unexpected": "shape"},
				map[string]any{"rewrite": "", "newText": ""},
				[]string{"not", "an", "object"},
			} {
				srv := jsonServer(t, tc.path, payload, nil)
				p := tc.mk(Endpoint{BaseURL: srv.URL, HTTPClient: srv.Client()})
				got, ok := p.Paraphrase(context.Background(), "hello world", ParaphraseOptions{})
				if ok || got != "" {
					t.Fatalf("expected failure for payload %v, got %q", payload, got)
				}
			}
		})
	}
}

func TestRewriter_SendsOptionsAndReadsRewrite(t *testing.T) {
	var seen map[string]any
	srv := jsonServer(t, "/rewrite", map[string]any{"rewrite": "fresh words"}, &seen)
	r := &Rewriter{Endpoint: Endpoint{BaseURL: srv.URL, HTTPClient: srv.Client()}}
	got, ok := r.Paraphrase(context.Background(), "old words", ParaphraseOptions{Language: "en", Strength: 3})
	if !ok || got != "fresh words" {
		t.Fatalf("unexpected result %q ok=%v", got, ok)
	}
	if seen["text"] != "old words" || seen["language"] != "en" || seen["strength"] != float64(3) {
		t.Fatalf("unexpected request: %v", seen)
	}
}

func TestTextSpinner_ReadsNewText(t *testing.T) {
	srv := jsonServer(t, "/paraphrase", map[string]any{"newText": "spun"}, nil)
	s := &TextSpinner{Endpoint: Endpoint{BaseURL: srv.URL, HTTPClient: srv.Client()}}
	if got, ok := s.Paraphrase(context.Background(), "text", ParaphraseOptions{}); !ok || got != "spun" {
		t.Fatalf("unexpected result %q ok=%v", got, ok)
	}
}

func TestParaphrase_UpstreamErrorYieldsFalse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()
	r := &Rewriter{Endpoint: Endpoint{BaseURL: srv.URL, HTTPClient: srv.Client()}}
	if _, ok := r.Paraphrase(context.Background(), "x", ParaphraseOptions{}); ok {
		t.Fatalf("expected failure on 429")
	}
	unconfigured := &TextSpinner{}
	if _, ok := unconfigured.Paraphrase(context.Background(), "x", ParaphraseOptions{}); ok {
		t.Fatalf("expected failure without base url")
	}
}

func TestSummarizers_Shapes(t *testing.T) {
	srv := jsonServer(t, "/summarize", map[string]any{"sentences": []string{"One.", " ", "Two."}}, nil)
	s := &SentenceSummarizer{Endpoint: Endpoint{BaseURL: srv.URL, HTTPClient: srv.Client()}}
	sum, ok := s.Summarize(context.Background(), "long text", SummarizeOptions{SentNum: 2})
	if !ok || sum.Summary != "One. Two." || len(sum.Snippets) != 2 {
		t.Fatalf("unexpected summary: %+v ok=%v", sum, ok)
	}

	empty := jsonServer(t, "/summarize", map[string]any{"sentences": []string{}}, nil)
	s = &SentenceSummarizer{Endpoint: Endpoint{BaseURL: empty.URL, HTTPClient: empty.Client()}}
	if _, ok := s.Summarize(context.Background(), "long text", SummarizeOptions{}); ok {
		t.Fatalf("expected failure on empty sentences")
	}

	var seen map[string]any
	ex := jsonServer(t, "/extract", map[string]any{"summary": "", "snippets": []string{"a", "b"}}, &seen)
	e := &ExtractiveSummarizer{Endpoint: Endpoint{BaseURL: ex.URL, HTTPClient: ex.Client()}}
	sum, ok = e.Summarize(context.Background(), "", SummarizeOptions{URL: "https://example.com/a"})
	if !ok || SummaryText(sum) != "a b" {
		t.Fatalf("unexpected extractive summary: %+v ok=%v", sum, ok)
	}
	if seen["url"] != "https://example.com/a" {
		t.Fatalf("expected url to be sent when text is empty, got %v", seen)
	}
}

type fakeCompleter struct {
	req   openai.CompletionRequest
	calls int
	text  string
	err   error
}

func (f *fakeCompleter) CreateCompletion(_ context.Context, req openai.CompletionRequest) (openai.CompletionResponse, error) {
	f.req = req
	f.calls++
	if f.err != nil {
		return openai.CompletionResponse{}, f.err
	}
	return openai.CompletionResponse{Choices: []openai.CompletionChoice{{Text: f.text}}}, nil
}

func TestTLDRSummarizer_PromptAndBudget(t *testing.T) {
	fc := &fakeCompleter{text: "  short version "}
	s := &TLDRSummarizer{Client: fc, Model: "gpt-3.5-turbo-instruct"}
	text := strings.Repeat("a", 41)
	sum, ok := s.Summarize(context.Background(), text, SummarizeOptions{})
	if !ok || sum.Summary != "short version" {
		t.Fatalf("unexpected summary %+v ok=%v", sum, ok)
	}
	if fc.req.Prompt != text+"\n\ntl;dr:" {
		t.Fatalf("unexpected prompt %q", fc.req.Prompt)
	}
	if fc.req.MaxTokens != 11 {
		t.Fatalf("expected ceil(41/4)=11 max tokens, got %d", fc.req.MaxTokens)
	}

	fc = &fakeCompleter{err: errors.New("boom")}
	s = &TLDRSummarizer{Client: fc, Model: "gpt-3.5-turbo-instruct"}
	if _, ok := s.Summarize(context.Background(), text, SummarizeOptions{}); ok {
		t.Fatalf("expected failure on client error")
	}
	fc = &fakeCompleter{text: "   "}
	s = &TLDRSummarizer{Client: fc, Model: "gpt-3.5-turbo-instruct"}
	if _, ok := s.Summarize(context.Background(), text, SummarizeOptions{}); ok {
		t.Fatalf("expected failure on blank completion")
	}
}

func TestTLDRSummarizer_ChunksLongText(t *testing.T) {
	fc := &fakeCompleter{text: "gist"}
	s := &TLDRSummarizer{Client: fc, Model: "gpt-3.5-turbo-instruct"}
	para := strings.Repeat("Cushioning matters for long runs. ", 150)
	text := strings.Join([]string{para, para, para, para}, "\n\n")
	if len(text) <= 16_000 {
		t.Fatalf("fixture too short: %d chars", len(text))
	}
	sum, ok := s.Summarize(context.Background(), text, SummarizeOptions{})
	if !ok {
		t.Fatalf("long text should be summarized in chunks")
	}
	if fc.calls < 2 || len(sum.Snippets) != fc.calls {
		t.Fatalf("calls=%d snippets=%d, want one snippet per chunk", fc.calls, len(sum.Snippets))
	}
	if sum.Summary != strings.TrimSpace(strings.Repeat("gist ", fc.calls)) {
		t.Fatalf("unexpected joined summary %q", sum.Summary)
	}
	if fc.req.MaxTokens <= 0 || len(fc.req.Prompt.(string)) > 4096*4 {
		t.Fatalf("chunk does not fit the context: prompt=%d maxTokens=%d", len(fc.req.Prompt.(string)), fc.req.MaxTokens)
	}
}

type fakeChat struct{ content string }

func (f fakeChat) CreateChatCompletion(context.Context, openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	return openai.ChatCompletionResponse{Choices: []openai.ChatCompletionChoice{{Message: openai.ChatCompletionMessage{Content: f.content}}}}, nil
}

func TestChatParaphraser(t *testing.T) {
	c := &ChatParaphraser{Client: fakeChat{content: "rewritten"}, Model: "m"}
	if got, ok := c.Paraphrase(context.Background(), "text", ParaphraseOptions{}); !ok || got != "rewritten" {
		t.Fatalf("unexpected %q ok=%v", got, ok)
	}
	c = &ChatParaphraser{Client: fakeChat{content: ""}, Model: "m"}
	if _, ok := c.Paraphrase(context.Background(), "text", ParaphraseOptions{}); ok {
		t.Fatalf("expected failure on empty content")
	}
}

type recordingParaphraser struct {
	inputs []string
	failAt int
}

func (r *recordingParaphraser) Name() string { return "rec" }

func (r *recordingParaphraser) Paraphrase(_ context.Context, text string, _ ParaphraseOptions) (string, bool) {
	r.inputs = append(r.inputs, text)
	if r.failAt > 0 && len(r.inputs) == r.failAt {
		return "", false
	}
	return strings.ToUpper(text), true
}

func TestDispatcher_Paraphrase(t *testing.T) {
	d := NewDispatcher()
	d.MaxChunkChars = 12
	rec := &recordingParaphraser{}
	d.RegisterParaphraser(rec)

	got, ok := d.Paraphrase(context.Background(), "first part\n\nsecond part", ParaphraseOptions{}, "REC")
	if !ok {
		t.Fatalf("expected success")
	}
	if got != "FIRST PART\n\nSECOND PART" {
		t.Fatalf("unexpected joined output %q", got)
	}
	if len(rec.inputs) != 2 {
		t.Fatalf("expected 2 chunks, got %v", rec.inputs)
	}

	rec2 := &recordingParaphraser{failAt: 2}
	d.RegisterParaphraser(rec2)
	if _, ok := d.Paraphrase(context.Background(), "first part\n\nsecond part", ParaphraseOptions{}, "rec"); ok {
		t.Fatalf("expected failure when one chunk fails")
	}

	if _, ok := d.Paraphrase(context.Background(), "text", ParaphraseOptions{}, "missing"); ok {
		t.Fatalf("expected failure for unknown provider")
	}
	if _, ok := d.Summarize(context.Background(), "text", SummarizeOptions{}, "missing"); ok {
		t.Fatalf("expected failure for unknown summarizer")
	}
}

func TestChunk(t *testing.T) {
	if got := Chunk("short", 100); len(got) != 1 || got[0] != "short" {
		t.Fatalf("unexpected %v", got)
	}
	text := "One sentence here. Another sentence there. Third one."
	chunks := Chunk(text, 25)
	for _, c := range chunks {
		if len(c) > 25 {
			t.Fatalf("chunk exceeds max: %q", c)
		}
	}
	if strings.Join(chunks, " ") != text {
		t.Fatalf("chunks lost content: %v", chunks)
	}
	hard := Chunk(strings.Repeat("x", 30), 10)
	if len(hard) != 3 {
		t.Fatalf("expected hard split into 3, got %v", hard)
	}
}
