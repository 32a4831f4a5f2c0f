package links

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// IntelResult is the URL-intelligence provider's view of a page.
type IntelResult struct {
	Links     []string `json:"links"`
	Hostnames []string `json:"hostnames"`
}

// IntelClient queries a URL-intelligence service that renders the page
// server side and reports every outbound link it saw.
type IntelClient struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

// Lookup returns the links the provider found on target.
func (c *IntelClient) Lookup(ctx context.Context, target string) (IntelResult, error) {
	if strings.TrimSpace(c.BaseURL) == "" {
		return IntelResult{}, fmt.Errorf("missing intel base url")
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return IntelResult{}, err
	}
	q := u.Query()
	q.Set("target", target)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return IntelResult{}, err
	}
	if c.APIKey != "" {
		req.Header.Set("x-api-key", c.APIKey)
	}
	hc := c.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 20 * time.Second}
	}
	resp, err := hc.Do(req)
	if err != nil {
		return IntelResult{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return IntelResult{}, fmt.Errorf("intel status: %d", resp.StatusCode)
	}
	var out IntelResult
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return IntelResult{}, fmt.Errorf("decode intel: %w", err)
	}
	return out, nil
}
