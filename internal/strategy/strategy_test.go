package strategy

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/hyperifyio/articlegen/internal/article"
	"github.com/hyperifyio/articlegen/internal/comments"
	"github.com/hyperifyio/articlegen/internal/extract"
	"github.com/hyperifyio/articlegen/internal/product"
	"github.com/hyperifyio/articlegen/internal/rewrite"
)

type fakePages struct {
	page extract.Page
	err  error
}

func (f fakePages) Extract(context.Context, string) (extract.Page, error) { return f.page, f.err }

type fakeLinks struct{ links []string }

func (f fakeLinks) Discover(context.Context, string, string) []string { return f.links }

// fakeRewriter upper-cases paraphrase input and records calls.
type fakeRewriter struct {
	failParaphrase bool
	failOn         string
	summary        article.Summary
	failSummarize  bool
	paraphrased    []string
	summarized     []string
}

func (f *fakeRewriter) Paraphrase(_ context.Context, text string, _ rewrite.ParaphraseOptions, _ string) (string, bool) {
	f.paraphrased = append(f.paraphrased, text)
	if f.failParaphrase || (f.failOn != "" && text == f.failOn) {
		return "", false
	}
	return strings.ToUpper(text), true
}

func (f *fakeRewriter) Summarize(_ context.Context, text string, _ rewrite.SummarizeOptions, _ string) (article.Summary, bool) {
	f.summarized = append(f.summarized, text)
	if f.failSummarize {
		return article.Summary{}, false
	}
	return f.summary, true
}

func TestClassify(t *testing.T) {
	cases := map[string]Kind{
		"https://www.amazon.com/dp/B08N5WRWNW":              KindCommerce,
		"https://www.amazon.co.uk/gp/product/B08N5WRWNW":    KindCommerce,
		"https://amzn.to/3abc":                              KindCommerce,
		"https://www.ebay.com/itm/123":                      KindExcluded,
		"https://www.target.com/p/shoe":                     KindExcluded,
		"https://www.bestbuy.com/site/x":                    KindExcluded,
		"https://old.reddit.com/r/running/comments/abc/x/":  KindDiscussion,
		"https://blog.example.com/best-shoes":               KindGeneric,
		"https://shop.target.example.com/page":              KindGeneric,
		"::not a url":                                       KindGeneric,
	}
	for in, want := range cases {
		if got := Classify(in); got != want {
			t.Errorf("Classify(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParseASIN(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"https://www.amazon.com/Trail-Shoe/dp/B08N5WRWNW/ref=sr_1_1", "B08N5WRWNW", true},
		{"https://www.amazon.com/gp/product/b08n5wrwnw?th=1", "B08N5WRWNW", true},
		{"https://www.amazon.com/gp/aw/d/B08N5WRWNW", "B08N5WRWNW", true},
		{"https://www.amazon.com/s?k=shoes", "", false},
		{"https://www.amazon.com/dp/SHORT", "", false},
	}
	for _, tc := range cases {
		got, ok := ParseASIN(tc.in)
		if got != tc.want || ok != tc.ok {
			t.Errorf("ParseASIN(%q) = %q,%v want %q,%v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestParseThreadAndTitle(t *testing.T) {
	th, ok := ParseThread("https://www.reddit.com/r/running/comments/abc123/best_cheap-running_shoes/")
	if !ok || th.Subreddit != "running" || th.Post != "abc123" || th.Slug != "best_cheap-running_shoes" {
		t.Fatalf("unexpected thread %+v ok=%v", th, ok)
	}
	if got := TitleFromSlug(th.Slug); got != "Best Cheap Running Shoes" {
		t.Fatalf("unexpected title %q", got)
	}
	if _, ok := ParseThread("https://www.reddit.com/r/running/"); ok {
		t.Fatalf("expected non-thread url to fail")
	}
}

func genericPage() extract.Page {
	return extract.Page{
		Title:    "Budget shoes",
		Text:     "Cheap shoes can be good.",
		HTML:     "<html></html>",
		Keywords: []string{"shoes", "Shoes", " budget "},
	}
}

func TestGeneric_Paraphrase(t *testing.T) {
	rw := &fakeRewriter{}
	g := &Generic{Pages: fakePages{page: genericPage()}, Links: fakeLinks{links: []string{"https://www.amazon.com/dp/B08N5WRWNW"}}, Rewriter: rw}
	p, err := g.Extract(context.Background(), "https://blog.example.com/a", Options{IncludeTitle: true, Rewrite: true, Mode: article.ModeParaphrase})
	if err != nil || p == nil {
		t.Fatalf("unexpected %v %v", p, err)
	}
	if p.Generated.Text != "CHEAP SHOES CAN BE GOOD." || p.Generated.Title != "Budget shoes" {
		t.Fatalf("unexpected generated %+v", p.Generated)
	}
	if len(p.Source.Tags) != 2 || p.Source.Tags[1] != "budget" {
		t.Fatalf("unexpected tags %v", p.Source.Tags)
	}
	if len(p.ExternalLinks) != 1 {
		t.Fatalf("unexpected links %v", p.ExternalLinks)
	}
}

func TestGeneric_SummarizeThenParaphrase(t *testing.T) {
	rw := &fakeRewriter{summary: article.Summary{Snippets: []string{"Cheap is fine."}}}
	g := &Generic{Pages: fakePages{page: genericPage()}, Links: fakeLinks{}, Rewriter: rw}
	p, err := g.Extract(context.Background(), "https://blog.example.com/a", Options{Rewrite: true, Mode: article.ModeSummarize})
	if err != nil || p == nil {
		t.Fatalf("unexpected %v %v", p, err)
	}
	if p.Source.Summary != "Cheap is fine." || p.Generated.Text != "CHEAP IS FINE." {
		t.Fatalf("unexpected paragraph %+v", p)
	}
	if len(rw.paraphrased) != 1 || rw.paraphrased[0] != "Cheap is fine." {
		t.Fatalf("expected summary to be paraphrased, got %v", rw.paraphrased)
	}
	if p.ExternalLinks == nil {
		t.Fatalf("external links should be an empty list, not nil")
	}
	if p.Generated.Title != "" {
		t.Fatalf("title should be omitted without IncludeTitle")
	}
}

func TestGeneric_FailuresDropParagraph(t *testing.T) {
	g := &Generic{Pages: fakePages{page: genericPage()}, Rewriter: &fakeRewriter{failParaphrase: true}}
	if p, err := g.Extract(context.Background(), "https://x.example/a", Options{Rewrite: true}); p != nil || err != nil {
		t.Fatalf("expected drop on paraphrase failure, got %v %v", p, err)
	}
	g.Rewriter = &fakeRewriter{failSummarize: true}
	if p, err := g.Extract(context.Background(), "https://x.example/a", Options{Rewrite: true, Mode: article.ModeSummarize}); p != nil || err != nil {
		t.Fatalf("expected drop on summarize failure, got %v %v", p, err)
	}

	fetchErr := errors.New("boom")
	g = &Generic{Pages: fakePages{err: fetchErr}}
	if _, err := g.Extract(context.Background(), "https://x.example/a", Options{}); !errors.Is(err, fetchErr) {
		t.Fatalf("expected fetch error to propagate, got %v", err)
	}
}

func TestGeneric_PassThrough(t *testing.T) {
	rw := &fakeRewriter{}
	g := &Generic{Pages: fakePages{page: genericPage()}, Rewriter: rw}
	p, err := g.Extract(context.Background(), "https://x.example/a", Options{Rewrite: false, Mode: article.ModeSummarize, IncludeTitle: true})
	if err != nil || p == nil {
		t.Fatalf("unexpected %v %v", p, err)
	}
	if p.Generated.Text != p.Source.Description || p.Generated.Title != p.Source.Title {
		t.Fatalf("expected pass-through, got %+v", p)
	}
	if len(rw.paraphrased)+len(rw.summarized) != 0 {
		t.Fatalf("no provider calls expected")
	}
}

type fakeProducts struct {
	asin    string
	details product.Details
	err     error
}

func (f fakeProducts) ResolveASIN(context.Context, string) (string, error) { return f.asin, f.err }

func (f fakeProducts) Details(_ context.Context, asin string) (product.Details, error) {
	if f.err != nil {
		return product.Details{}, f.err
	}
	d := f.details
	d.ASIN = asin
	return d, nil
}

func TestCommerce(t *testing.T) {
	rw := &fakeRewriter{}
	c := &Commerce{Products: fakeProducts{details: product.Details{Title: "Trail Runner", Description: "Light shoe.", Brand: "Acme", Category: "Shoes"}}, Rewriter: rw}
	p, err := c.Extract(context.Background(), "https://www.amazon.com/dp/B08N5WRWNW", Options{Rewrite: true, IncludeTitle: true})
	if err != nil || p == nil {
		t.Fatalf("unexpected %v %v", p, err)
	}
	if p.Generated.Text != "LIGHT SHOE." || p.Generated.Title != "Trail Runner" {
		t.Fatalf("unexpected generated %+v", p.Generated)
	}
	if strings.Join(p.Source.Tags, ",") != "Acme,Shoes" || len(p.ExternalLinks) != 0 {
		t.Fatalf("unexpected paragraph %+v", p)
	}

	c.Products = fakeProducts{}
	if p, err := c.Extract(context.Background(), "https://amzn.to/xyz", Options{}); p != nil || err != nil {
		t.Fatalf("expected drop for unresolved identifier, got %v %v", p, err)
	}
	c.Products = fakeProducts{asin: "B08N5WRWNW", details: product.Details{Title: "Only title"}}
	if p, err := c.Extract(context.Background(), "https://amzn.to/xyz", Options{}); p != nil || err != nil {
		t.Fatalf("expected drop for incomplete details, got %v %v", p, err)
	}
	c.Products = fakeProducts{err: errors.New("down")}
	if _, err := c.Extract(context.Background(), "https://www.amazon.com/dp/B08N5WRWNW", Options{}); err == nil {
		t.Fatalf("expected lookup error")
	}
}

type fakeComments struct {
	cs  []comments.Comment
	err error
}

func (f fakeComments) Search(context.Context, string, string) ([]comments.Comment, error) {
	return f.cs, f.err
}

func TestDiscussion(t *testing.T) {
	url := "https://www.reddit.com/r/running/comments/abc123/best_cheap_shoes/"
	rw := &fakeRewriter{}
	d := &Discussion{Comments: fakeComments{cs: []comments.Comment{{Body: "One."}, {Body: "Two."}}}, Rewriter: rw}
	p, err := d.Extract(context.Background(), url, Options{Rewrite: true, IncludeTitle: true})
	if err != nil || p == nil {
		t.Fatalf("unexpected %v %v", p, err)
	}
	if p.Generated.Title != "BEST CHEAP SHOES" || p.Generated.Text != "ONE.\n\nTWO." {
		t.Fatalf("unexpected generated %+v", p.Generated)
	}
	if p.Source.Tags[0] != "r/running" {
		t.Fatalf("unexpected tags %v", p.Source.Tags)
	}

	d.Rewriter = &fakeRewriter{failOn: "Best Cheap Shoes"}
	if p, _ := d.Extract(context.Background(), url, Options{Rewrite: true, IncludeTitle: true}); p != nil {
		t.Fatalf("expected drop when title paraphrase fails")
	}

	d.Comments = fakeComments{}
	if p, err := d.Extract(context.Background(), url, Options{}); p != nil || err != nil {
		t.Fatalf("expected drop for empty comment set, got %v %v", p, err)
	}
	d.Comments = fakeComments{err: errors.New("search down")}
	if _, err := d.Extract(context.Background(), url, Options{}); err == nil {
		t.Fatalf("expected comment search error")
	}
}

func TestRegistry(t *testing.T) {
	r := Registry{KindGeneric: &Generic{}}
	if _, ok := r.For(KindGeneric); !ok {
		t.Fatalf("expected generic strategy")
	}
	if _, ok := r.For(KindDiscussion); ok {
		t.Fatalf("unexpected discussion strategy")
	}
}
