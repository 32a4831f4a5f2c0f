package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hyperifyio/articlegen/internal/article"
)

type fakeGenerator struct {
	got article.Config
	res article.Result
	err error
}

func (f *fakeGenerator) Generate(_ context.Context, cfg article.Config) (article.Result, error) {
	f.got = cfg
	return f.res, f.err
}

func TestGenerate_OK(t *testing.T) {
	gen := &fakeGenerator{res: article.Result{GeneratedArticle: "hello", Errors: []string{}, Params: article.Params{SeedText: "running shoes"}}}
	srv := httptest.NewServer((&Server{Generator: gen}).Routes())
	defer srv.Close()

	body := `{"seed_text":"running shoes","output_format":"markdown","num_serp_results":2,"rewrite":false}`
	resp, err := http.Post(srv.URL+"/v1/articles", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	if resp.Header.Get(RequestIDHeader) == "" {
		t.Fatalf("missing request id header")
	}
	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out["generated_article"] != "hello" {
		t.Fatalf("unexpected body %v", out)
	}
	if errs, ok := out["error"].([]any); !ok || len(errs) != 0 {
		t.Fatalf("expected empty error array, got %v", out["error"])
	}
	if gen.got.OutputFormat != "markdown" || gen.got.NumSerpResults != 2 || gen.got.RewriteEnabled() {
		t.Fatalf("request not mapped: %+v", gen.got)
	}
}

func TestGenerate_CountsOmittedVersusZero(t *testing.T) {
	cases := []struct {
		name      string
		body      string
		wantSerp  int
		wantLinks int
	}{
		{"omitted", `{"seed_text":"running shoes"}`, 0, 0},
		{"explicit zero", `{"seed_text":"running shoes","num_serp_results":0,"num_outbound_links_per_serp_result":0}`, article.ExplicitZeroCount, article.ExplicitZeroCount},
		{"values", `{"seed_text":"running shoes","num_serp_results":4,"num_outbound_links_per_serp_result":15}`, 4, 15},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gen := &fakeGenerator{res: article.Result{Errors: []string{}}}
			srv := httptest.NewServer((&Server{Generator: gen}).Routes())
			defer srv.Close()
			resp, err := http.Post(srv.URL+"/v1/articles", "application/json", strings.NewReader(tc.body))
			if err != nil {
				t.Fatalf("post: %v", err)
			}
			resp.Body.Close()
			if gen.got.NumSerpResults != tc.wantSerp || gen.got.NumOutboundLinksPerSerpResult != tc.wantLinks {
				t.Fatalf("got serp=%d links=%d, want %d/%d", gen.got.NumSerpResults, gen.got.NumOutboundLinksPerSerpResult, tc.wantSerp, tc.wantLinks)
			}
		})
	}
}

func TestGenerate_BadJSON(t *testing.T) {
	srv := httptest.NewServer((&Server{Generator: &fakeGenerator{}}).Routes())
	defer srv.Close()
	resp, err := http.Post(srv.URL+"/v1/articles", "application/json", strings.NewReader(`{"seed_text":`))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestGenerate_UnexpectedFailure(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("search failed: quota")}
	srv := httptest.NewServer((&Server{Generator: gen}).Routes())
	defer srv.Close()
	resp, err := http.Post(srv.URL+"/v1/articles", "application/json", strings.NewReader(`{"seed_text":"running shoes"}`))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.StatusCode)
	}
	var out errorResponse
	_ = json.NewDecoder(resp.Body).Decode(&out)
	if len(out.Errors) != 1 || !strings.Contains(out.Errors[0], "quota") {
		t.Fatalf("unexpected error body %+v", out)
	}
}

func TestHealthzMetricsAndRequestID(t *testing.T) {
	h := (&Server{Generator: &fakeGenerator{}}).Routes()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("unexpected healthz %d %q", rec.Code, rec.Body.String())
	}
	if rec.Header().Get(RequestIDHeader) != "abc-123" {
		t.Fatalf("expected incoming request id to be echoed")
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "go_goroutines") {
		t.Fatalf("unexpected metrics response %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/articles", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405 for GET, got %d", rec.Code)
	}
}
