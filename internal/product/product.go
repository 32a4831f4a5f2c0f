package product

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Details is the product-lookup view of one catalogue item.
type Details struct {
	ASIN         string
	Title        string
	Description  string
	Brand        string
	Category     string
	Price        string
	Rating       float64
	ReviewsCount int
}

// Client talks to a product-lookup API exposing /asin and /product.
type Client struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
	Headers    map[string]string
}

// ResolveASIN asks the provider for the identifier of a product URL the
// caller could not parse locally.
func (c *Client) ResolveASIN(ctx context.Context, productURL string) (string, error) {
	var resp struct {
		ASIN string `json:"asin"`
	}
	if err := c.get(ctx, "/asin", url.Values{"url": {productURL}}, &resp); err != nil {
		return "", fmt.Errorf("resolve asin: %w", err)
	}
	return strings.TrimSpace(resp.ASIN), nil
}

// Details fetches catalogue data for asin.
func (c *Client) Details(ctx context.Context, asin string) (Details, error) {
	var resp struct {
		Title        string     `json:"title"`
		Description  string     `json:"description"`
		Brand        string     `json:"brand"`
		Category     string     `json:"category"`
		Price        flexString `json:"price"`
		Rating       float64    `json:"rating"`
		ReviewsCount int        `json:"reviews_count"`
	}
	if err := c.get(ctx, "/product", url.Values{"asin": {asin}}, &resp); err != nil {
		return Details{}, fmt.Errorf("product details: %w", err)
	}
	return Details{
		ASIN:         asin,
		Title:        strings.TrimSpace(resp.Title),
		Description:  strings.TrimSpace(resp.Description),
		Brand:        strings.TrimSpace(resp.Brand),
		Category:     strings.TrimSpace(resp.Category),
		Price:        string(resp.Price),
		Rating:       resp.Rating,
		ReviewsCount: resp.ReviewsCount,
	}, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	if strings.TrimSpace(c.BaseURL) == "" {
		return fmt.Errorf("missing product base url")
	}
	u, err := url.Parse(strings.TrimRight(c.BaseURL, "/") + path)
	if err != nil {
		return err
	}
	u.RawQuery = params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if c.APIKey != "" {
		req.Header.Set("x-api-key", c.APIKey)
	}
	for k, v := range c.Headers {
		req.Header.Set(k, v)
	}
	hc := c.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 30 * time.Second}
	}
	resp, err := hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("status: %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}

// flexString accepts either a JSON string or a number.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		*f = ""
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*f = flexString(strings.TrimSpace(v))
		return nil
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("price: %w", err)
	}
	*f = flexString(strconv.FormatFloat(n, 'f', 2, 64))
	return nil
}
