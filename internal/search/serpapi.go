package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hyperifyio/articlegen/internal/article"
)

// DefaultSerpAPIBaseURL is the public SerpAPI endpoint.
const DefaultSerpAPIBaseURL = "https://serpapi.com"

// SerpAPI implements Provider against a SerpAPI-compatible /search.json
// endpoint. HL and GL select interface language and country.
type SerpAPI struct {
	BaseURL    string
	APIKey     string
	HL         string
	GL         string
	HTTPClient *http.Client
}

func (s *SerpAPI) Name() string { return "serpapi" }

func (s *SerpAPI) Search(ctx context.Context, query string, limit int) (article.SearchResponse, error) {
	if strings.TrimSpace(s.APIKey) == "" {
		return article.SearchResponse{}, fmt.Errorf("missing serpapi api key")
	}
	if limit <= 0 {
		limit = 10
	}
	base := s.BaseURL
	if base == "" {
		base = DefaultSerpAPIBaseURL
	}
	u, err := url.Parse(strings.TrimRight(base, "/") + "/search.json")
	if err != nil {
		return article.SearchResponse{}, err
	}
	q := u.Query()
	q.Set("q", query)
	q.Set("num", strconv.Itoa(limit))
	q.Set("api_key", s.APIKey)
	if s.HL != "" {
		q.Set("hl", s.HL)
	}
	if s.GL != "" {
		q.Set("gl", s.GL)
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return article.SearchResponse{}, err
	}
	req.Header.Set("Accept", "application/json")
	hc := s.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 30 * time.Second}
	}
	resp, err := hc.Do(req)
	if err != nil {
		return article.SearchResponse{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return article.SearchResponse{}, fmt.Errorf("serpapi status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	var sr serpResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return article.SearchResponse{}, err
	}
	if sr.Error != "" {
		return article.SearchResponse{}, fmt.Errorf("serpapi: %s", sr.Error)
	}
	var out article.SearchResponse
	for _, r := range sr.Organic {
		if r.Link == "" {
			continue
		}
		out.Organic = append(out.Organic, article.SearchResult{
			Title:   strings.TrimSpace(r.Title),
			Link:    strings.TrimSpace(r.Link),
			Snippet: strings.TrimSpace(r.Snippet),
		})
	}
	for _, r := range sr.RelatedSearches {
		if strings.TrimSpace(r.Query) == "" {
			continue
		}
		out.RelatedSearches = append(out.RelatedSearches, article.RelatedSearch{Query: strings.TrimSpace(r.Query), Link: r.Link})
	}
	for _, r := range sr.RelatedQuestions {
		if strings.TrimSpace(r.Question) == "" {
			continue
		}
		out.RelatedQuestions = append(out.RelatedQuestions, article.RelatedQuestion{
			Question: strings.TrimSpace(r.Question),
			Snippet:  strings.TrimSpace(r.Snippet),
			Link:     r.Link,
		})
	}
	return clip(out, limit), nil
}

type serpResponse struct {
	Error   string `json:"error"`
	Organic []struct {
		Position int    `json:"position"`
		Title    string `json:"title"`
		Link     string `json:"link"`
		Snippet  string `json:"snippet"`
	} `json:"organic_results"`
	RelatedSearches []struct {
		Query string `json:"query"`
		Link  string `json:"link"`
	} `json:"related_searches"`
	RelatedQuestions []struct {
		Question string `json:"question"`
		Snippet  string `json:"snippet"`
		Link     string `json:"link"`
	} `json:"related_questions"`
}
