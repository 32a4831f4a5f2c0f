package article

// SearchResult is one organic hit returned by the search provider.
type SearchResult struct {
	Title    string `json:"title"`
	Link     string `json:"link"`
	Snippet  string `json:"snippet"`
	Position int    `json:"position"`
}

// RelatedSearch is a follow-up query suggested by the search provider.
type RelatedSearch struct {
	Query string `json:"query"`
	Link  string `json:"link"`
}

// RelatedQuestion is a "people also ask" entry from the search provider.
type RelatedQuestion struct {
	Question string `json:"question"`
	Snippet  string `json:"snippet"`
	Link     string `json:"link"`
}

// SearchResponse bundles organic results with the provider's related metadata.
type SearchResponse struct {
	Organic          []SearchResult
	RelatedSearches  []RelatedSearch
	RelatedQuestions []RelatedQuestion
}

// Source holds the original material a paragraph was built from.
type Source struct {
	Title       string   `json:"title,omitempty"`
	Description string   `json:"description,omitempty"`
	Summary     string   `json:"summary,omitempty"`
	Tags        []string `json:"tags"`
}

// Generated holds rewritten or summarized material. It equals Source
// verbatim when rewriting is disabled.
type Generated struct {
	Title string `json:"title,omitempty"`
	Text  string `json:"text,omitempty"`
}

// Paragraph is the unit of assembled content, one per search result.
// The only mutation after construction is link truncation.
type Paragraph struct {
	SourceURL     string    `json:"source_url,omitempty"`
	Source        Source    `json:"source"`
	Generated     Generated `json:"generated"`
	ExternalLinks []string  `json:"external_links"`
}

// TrimLinks caps ExternalLinks at max entries.
func (p *Paragraph) TrimLinks(max int) {
	if max < 0 {
		max = 0
	}
	if len(p.ExternalLinks) > max {
		p.ExternalLinks = p.ExternalLinks[:max]
	}
}

// Summary is the normalized output of a summarize provider.
type Summary struct {
	Snippets []string `json:"snippets,omitempty"`
	Summary  string   `json:"summary,omitempty"`
}

// Document is everything a renderer needs.
type Document struct {
	Title            string
	Paragraphs       []Paragraph
	RelatedSearches  []RelatedSearch
	RelatedQuestions []RelatedQuestion
}
