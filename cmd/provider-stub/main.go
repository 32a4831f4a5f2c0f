// Command provider-stub serves deterministic stand-ins for every upstream API
// articlegen talks to, so the whole pipeline can run offline:
//
//	/search.json            SerpAPI-shaped search
//	/page/{n}               HTML pages the search results point at
//	/rewrite, /paraphrase   paraphrase providers
//	/summarize, /extract    summarize providers
//	/asin, /product         product lookup
//	/comment                comment search
//	/intel                  URL intelligence
//	/v1/...                 OpenAI-compatible models, chat and completions
package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	model := envOr("MODEL_ID", "test-model")
	addr := envOr("ADDR", ":8081")
	public := envOr("PUBLIC_URL", "http://localhost"+addr)

	log.Info().Str("addr", addr).Str("model", model).Msg("provider-stub listening")
	if err := http.ListenAndServe(addr, routes(model, public)); err != nil {
		log.Fatal().Err(err).Msg("serve")
	}
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func decode(r *http.Request, v any) {
	defer r.Body.Close()
	_ = json.NewDecoder(r.Body).Decode(v)
}

// routes builds the stub router. public is the externally visible base URL
// used in search result links.
func routes(model, public string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/search.json", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("q")
		writeJSON(w, map[string]any{
			"organic_results": []map[string]any{
				{"position": 1, "title": "Guide to " + q, "link": public + "/page/1", "snippet": "A guide about " + q},
				{"position": 2, "title": "Review of " + q, "link": public + "/page/2", "snippet": "A review about " + q},
				{"position": 3, "title": "Buy " + q, "link": "https://www.amazon.com/dp/B000000001", "snippet": "Product page"},
			},
			"related_searches":  []map[string]string{{"query": q + " reviews", "link": public + "/search.json?q=" + q + "+reviews"}},
			"related_questions": []map[string]string{{"question": "What is " + q + "?", "snippet": q + " explained briefly.", "link": public + "/page/1"}},
		})
	})

	r.Get("/page/{n}", func(w http.ResponseWriter, r *http.Request) {
		n := chi.URLParam(r, "n")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprintf(w, `<html><head><title>Stub page %s</title><meta name="description" content="Stub page %s"></head>
<body><nav>Home | About</nav><article><h1>Stub page %s</h1>
<p>This page explains the topic in a few plain sentences. It is served by the provider stub.</p>
<p>See <a href="https://www.amazon.com/dp/B0000000%s2">this product</a> and <a href="https://www.amazon.com/gp/product/B0000000%s3">another one</a>.</p>
</article><footer>Copyright</footer></body></html>`, n, n, n, n, n)
	})

	r.Post("/rewrite", func(w http.ResponseWriter, r *http.Request) {
		var in struct {
			Text string `json:"text"`
		}
		decode(r, &in)
		writeJSON(w, map[string]string{"rewrite": "Rewritten: " + in.Text})
	})
	r.Post("/paraphrase", func(w http.ResponseWriter, r *http.Request) {
		var in struct {
			Text string `json:"text"`
		}
		decode(r, &in)
		writeJSON(w, map[string]string{"newText": "Spun: " + in.Text})
	})
	r.Post("/summarize", func(w http.ResponseWriter, r *http.Request) {
		var in struct {
			Text    string `json:"text"`
			SentNum int    `json:"sentnum"`
		}
		decode(r, &in)
		writeJSON(w, map[string]any{"sentences": firstSentences(in.Text, in.SentNum)})
	})
	r.Post("/extract", func(w http.ResponseWriter, r *http.Request) {
		var in struct {
			Text    string `json:"text"`
			URL     string `json:"url"`
			SentNum int    `json:"sentnum"`
		}
		decode(r, &in)
		text := in.Text
		if text == "" {
			text = "Summary of " + in.URL + "."
		}
		s := firstSentences(text, in.SentNum)
		writeJSON(w, map[string]any{"summary": strings.Join(s, " "), "snippets": s})
	})

	r.Get("/asin", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]string{"asin": "B000000001"})
	})
	r.Get("/product", func(w http.ResponseWriter, r *http.Request) {
		asin := r.URL.Query().Get("asin")
		writeJSON(w, map[string]any{
			"title":         "Stub product " + asin,
			"description":   "A sturdy product that does what it says.",
			"brand":         "Stub",
			"category":      "Stub Goods",
			"price":         19.99,
			"rating":        4.4,
			"reviews_count": 120,
		})
	})
	r.Get("/comment", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"data": []map[string]any{
			{"body": "I have used these for a year and they hold up.", "author": "alice", "score": 12},
			{"body": "[deleted]", "author": "[deleted]", "score": 1},
			{"body": "Fit runs a little small.", "author": "bob", "score": 5},
		}})
	})
	r.Get("/intel", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"links": []string{"https://www.amazon.com/dp/B000000009"}, "hostnames": []string{"www.amazon.com"}})
	})

	r.Get("/v1/models", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"data": []map[string]any{{"id": model, "object": "model"}}})
	})
	r.Post("/v1/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		decode(r, &req)
		user := ""
		if n := len(req.Messages); n > 0 {
			user = req.Messages[n-1].Content
		}
		writeJSON(w, map[string]any{
			"model": model,
			"choices": []map[string]any{
				{"index": 0, "finish_reason": "stop", "message": map[string]string{"role": "assistant", "content": "Reworded: " + user}},
			},
		})
	})
	r.Post("/v1/completions", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Prompt string `json:"prompt"`
		}
		decode(r, &req)
		text := strings.TrimSuffix(req.Prompt, "\n\ntl;dr:")
		s := firstSentences(text, 1)
		writeJSON(w, map[string]any{
			"model":   model,
			"choices": []map[string]any{{"index": 0, "text": " " + strings.Join(s, " ")}},
		})
	})
	return r
}

// firstSentences returns up to n sentences of text, split on ". ".
func firstSentences(text string, n int) []string {
	if n <= 0 {
		n = 5
	}
	parts := strings.SplitAfter(strings.TrimSpace(text), ". ")
	out := make([]string, 0, n)
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
		if len(out) == n {
			break
		}
	}
	return out
}
