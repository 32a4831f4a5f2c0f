package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/hyperifyio/articlegen/internal/search"
)

// debugsearch runs one query against a search provider and prints the
// organic results plus related searches and questions.
func main() {
	provider := flag.String("provider", "searxng", "serpapi, searxng or file")
	limit := flag.Int("n", 5, "Number of results")
	flag.Parse()

	q := "What is love?"
	if flag.NArg() > 0 {
		q = strings.Join(flag.Args(), " ")
	}
	client := &http.Client{Timeout: 20 * time.Second}

	var prov search.Provider
	switch *provider {
	case "serpapi":
		prov = &search.SerpAPI{BaseURL: os.Getenv("SERPAPI_URL"), APIKey: os.Getenv("SERPAPI_KEY"), HTTPClient: client}
	case "file":
		prov = &search.FileProvider{Path: os.Getenv("SEARCH_FILE")}
	default:
		base := os.Getenv("SEARX_URL")
		if base == "" {
			base = "http://localhost:8888"
		}
		prov = &search.SearxNG{BaseURL: base, HTTPClient: client, UserAgent: "debugsearch/1.0"}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 25*time.Second)
	defer cancel()
	res, err := prov.Search(ctx, q, *limit)
	fmt.Println("provider:", prov.Name(), "err:", err)
	for _, r := range res.Organic {
		fmt.Printf("%d. %s - %s\n", r.Position, r.Title, r.Link)
	}
	for _, rs := range res.RelatedSearches {
		fmt.Printf("related: %s\n", rs.Query)
	}
	for _, rq := range res.RelatedQuestions {
		fmt.Printf("question: %s\n", rq.Question)
	}
}
