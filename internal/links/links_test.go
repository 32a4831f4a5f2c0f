package links

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"regexp"
	"testing"
)

func TestFilter_Apply_SelfDupAndNoise(t *testing.T) {
	candidates := []string{
		"https://internal.com/x",
		"https://www.amazon.com/dp/ABC",
		"https://www.amazon.com/dp/ABC",
		"https://cdn.ajax.net/y",
	}
	got := DefaultFilter().Apply(candidates, "internal.com")
	want := []string{"https://www.amazon.com/dp/ABC"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestFilter_Apply_Rules(t *testing.T) {
	cases := []struct {
		name     string
		link     string
		internal string
		keep     bool
	}{
		{"allowlisted with path", "https://www.amazon.com/dp/B0001", "blog.example", true},
		{"subdomain of allowlisted", "https://smile.amazon.com/dp/B0001", "blog.example", true},
		{"www token", "www.amazon.com/dp/B0001", "blog.example", true},
		{"no path", "https://www.amazon.com", "blog.example", false},
		{"root path", "https://www.amazon.com/", "blog.example", false},
		{"self host ignores www", "https://amazon.com/dp/B0001", "www.amazon.com", false},
		{"not allowlisted", "https://example.org/page", "blog.example", false},
		{"lookalike host", "https://notamazon.com/dp/B0001", "blog.example", false},
		{"not allowlisted image host", "https://m.media-amazon.com/images/I/x.jpg", "blog.example", false},
		{"allowlisted ads host", "https://ads.amazon.com/x", "blog.example", false},
		{"allowlisted static host", "https://static.ebay.com/y", "blog.example", false},
		{"allowlisted cdn host", "https://cdn.walmart.com/p", "blog.example", false},
		{"allowlisted media host", "https://images.amazon.co.uk/i/1.jpg", "blog.example", false},
		{"garbage", "https://%zz", "blog.example", false},
	}
	f := DefaultFilter()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := f.Apply([]string{tc.link}, tc.internal)
			if (len(got) == 1) != tc.keep {
				t.Fatalf("keep=%v, got %v", tc.keep, got)
			}
		})
	}
}

func TestFilter_Apply_NoiseDecidesAllowlistedHosts(t *testing.T) {
	candidates := []string{
		"https://ads.amazon.com/x",
		"https://static.ebay.com/y",
		"https://www.amazon.com/dp/B1",
	}
	got := DefaultFilter().Apply(candidates, "blog.example")
	if want := []string{"https://www.amazon.com/dp/B1"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("default filter: got %v, want %v", got, want)
	}

	quiet := Filter{Allowed: DefaultAllowedDomains, Noise: regexp.MustCompile(`^$`)}
	if got := quiet.Apply(candidates, "blog.example"); len(got) != 3 {
		t.Fatalf("without noise matches all allowlisted links should pass, got %v", got)
	}
}

func TestScan_FindsAndDedupes(t *testing.T) {
	markup := `<a href="https://www.amazon.com/dp/A1">x</a> see www.ebay.com/itm/1, and
	<script>var u='https://www.amazon.com/dp/A1';</script> (https://walmart.com/ip/9)`
	got := Scan(markup)
	want := []string{"https://www.amazon.com/dp/A1", "www.ebay.com/itm/1", "https://walmart.com/ip/9"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

type stubIntel struct {
	res   IntelResult
	err   error
	calls int
}

func (s *stubIntel) Lookup(context.Context, string) (IntelResult, error) {
	s.calls++
	return s.res, s.err
}

func TestDiscover_DirectScanSkipsFallback(t *testing.T) {
	intel := &stubIntel{}
	d := &Discoverer{Filter: DefaultFilter(), Intel: intel}
	got := d.Discover(context.Background(), `<a href="https://www.amazon.com/dp/A1">`, "https://blog.example/post")
	if len(got) != 1 || intel.calls != 0 {
		t.Fatalf("expected direct hit without fallback, got %v calls=%d", got, intel.calls)
	}
}

func TestDiscover_FallbackAppliesSameFilter(t *testing.T) {
	intel := &stubIntel{res: IntelResult{Links: []string{
		"https://blog.example/self",
		"https://www.amazon.com/dp/B2",
		"https://cdn.example.net/app.js",
	}}}
	d := &Discoverer{Filter: DefaultFilter(), Intel: intel}
	got := d.Discover(context.Background(), `<p>no links here</p>`, "https://blog.example/post")
	if intel.calls != 1 {
		t.Fatalf("expected one fallback call, got %d", intel.calls)
	}
	if !reflect.DeepEqual(got, []string{"https://www.amazon.com/dp/B2"}) {
		t.Fatalf("unexpected links: %v", got)
	}
}

func TestDiscover_FallbackErrorYieldsEmpty(t *testing.T) {
	d := &Discoverer{Intel: &stubIntel{err: errors.New("down")}}
	got := d.Discover(context.Background(), "", "https://blog.example/post")
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", got)
	}
}

func TestIntelClient_Lookup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("target") != "https://blog.example/post" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"links":     []string{"https://www.amazon.com/dp/B3"},
			"hostnames": []string{"www.amazon.com"},
		})
	}))
	defer srv.Close()

	c := &IntelClient{BaseURL: srv.URL, HTTPClient: srv.Client()}
	res, err := c.Lookup(context.Background(), "https://blog.example/post")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if len(res.Links) != 1 || res.Hostnames[0] != "www.amazon.com" {
		t.Fatalf("unexpected result: %+v", res)
	}
}
