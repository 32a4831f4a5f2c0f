package comments

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Comment is one entry of a discussion thread.
type Comment struct {
	Body   string `json:"body"`
	Author string `json:"author"`
	Score  int    `json:"score"`
}

// Client queries a comment-search API (Pushshift-style /comment endpoint).
type Client struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
	// Size caps comments per request; zero leaves the provider default.
	Size int
}

// Search returns the comments of post in subreddit.
func (c *Client) Search(ctx context.Context, subreddit, post string) ([]Comment, error) {
	if strings.TrimSpace(c.BaseURL) == "" {
		return nil, fmt.Errorf("missing comments base url")
	}
	u, err := url.Parse(strings.TrimRight(c.BaseURL, "/") + "/comment")
	if err != nil {
		return nil, err
	}
	q := u.Query()
	q.Set("subreddit", subreddit)
	q.Set("link_id", post)
	if c.Size > 0 {
		q.Set("size", fmt.Sprintf("%d", c.Size))
	}
	u.RawQuery = q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if c.APIKey != "" {
		req.Header.Set("x-api-key", c.APIKey)
	}
	hc := c.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 30 * time.Second}
	}
	resp, err := hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("comment search: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("comment search status: %d", resp.StatusCode)
	}
	var body struct {
		Data []Comment `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode comments: %w", err)
	}
	return body.Data, nil
}

// Text joins non-empty comment bodies with blank lines, skipping removed
// and deleted placeholders.
func Text(cs []Comment) string {
	parts := make([]string, 0, len(cs))
	for _, c := range cs {
		b := strings.TrimSpace(c.Body)
		if b == "" || b == "[removed]" || b == "[deleted]" {
			continue
		}
		parts = append(parts, b)
	}
	return strings.Join(parts, "\n\n")
}
