package search

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"strings"

	"github.com/hyperifyio/articlegen/internal/article"
)

// FileProvider loads search results from a local JSON file for offline/testing use.
// The file holds either an array of {"title","url","snippet"} objects or a
// SerpAPI-shaped object with organic_results, related_searches and
// related_questions.
type FileProvider struct {
	Path string
}

func (f *FileProvider) Name() string { return "file" }

type fileHit struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}

func (h fileHit) link() string {
	if h.Link != "" {
		return h.Link
	}
	return h.URL
}

func (f *FileProvider) Search(_ context.Context, query string, limit int) (article.SearchResponse, error) {
	if strings.TrimSpace(f.Path) == "" {
		return article.SearchResponse{}, errors.New("file provider path is empty")
	}
	b, err := os.ReadFile(f.Path)
	if err != nil {
		return article.SearchResponse{}, err
	}
	var hits []fileHit
	var out article.SearchResponse
	trimmed := strings.TrimSpace(string(b))
	if strings.HasPrefix(trimmed, "[") {
		if err := json.Unmarshal(b, &hits); err != nil {
			return article.SearchResponse{}, err
		}
	} else {
		var doc struct {
			Organic          []fileHit                 `json:"organic_results"`
			RelatedSearches  []article.RelatedSearch   `json:"related_searches"`
			RelatedQuestions []article.RelatedQuestion `json:"related_questions"`
		}
		if err := json.Unmarshal(b, &doc); err != nil {
			return article.SearchResponse{}, err
		}
		hits = doc.Organic
		out.RelatedSearches = doc.RelatedSearches
		out.RelatedQuestions = doc.RelatedQuestions
	}
	q := strings.ToLower(strings.TrimSpace(query))
	for _, h := range hits {
		if h.link() == "" || h.Title == "" {
			continue
		}
		if q == "" || matchesAny(q, h.Title, h.Snippet) {
			out.Organic = append(out.Organic, article.SearchResult{Title: h.Title, Link: h.link(), Snippet: h.Snippet})
		}
	}
	// Fixture files usually target one query; fall back to everything when
	// no hit mentions it verbatim.
	if len(out.Organic) == 0 && q != "" {
		for _, h := range hits {
			if h.link() != "" && h.Title != "" {
				out.Organic = append(out.Organic, article.SearchResult{Title: h.Title, Link: h.link(), Snippet: h.Snippet})
			}
		}
	}
	return clip(out, limit), nil
}

func matchesAny(q string, fields ...string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}
