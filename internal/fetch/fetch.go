package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/articlegen/internal/cache"
)

// DefaultUserAgent identifies page fetches.
const DefaultUserAgent = "articlegen/1.0 (+https://github.com/hyperifyio/articlegen)"

// DefaultMaxBodyBytes caps how much of a page is read.
const DefaultMaxBodyBytes = 8 << 20

// Client wraps http.Client with per-request timeouts, bounded retry on
// transient errors, a redirect cap, a concurrency gate and an optional
// on-disk page cache.
type Client struct {
	HTTPClient *http.Client
	UserAgent  string
	// MaxAttempts includes the initial attempt. Minimum 1.
	MaxAttempts int
	// PerRequestTimeout bounds each attempt.
	PerRequestTimeout time.Duration
	// Cache, when set, revalidates with ETag/Last-Modified and serves fresh
	// entries without a request.
	Cache *cache.PageCache
	// BypassCache fetches fresh without conditional headers but still saves
	// the response.
	BypassCache bool
	// RedirectMaxHops caps redirect following. Zero means 5.
	RedirectMaxHops int
	// MaxConcurrent limits in-flight requests for this client. Zero means
	// unlimited.
	MaxConcurrent int
	// MaxBodyBytes caps the body size. Zero means DefaultMaxBodyBytes.
	MaxBodyBytes int64
	// Robots, when set, is consulted before any network request.
	Robots RobotsChecker

	limiter     chan struct{}
	limiterOnce sync.Once
}

// ErrDisallowed is returned when robots.txt forbids fetching a URL.
var ErrDisallowed = errors.New("disallowed by robots.txt")

// RobotsChecker decides whether a URL may be fetched. *robots.Manager
// satisfies it.
type RobotsChecker interface {
	Allowed(ctx context.Context, rawURL string) bool
}

// StatusError reports a non-success HTTP status.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string { return fmt.Sprintf("unexpected status: %d", e.Code) }

func (c *Client) getHTTPClient() *http.Client {
	if c.HTTPClient != nil {
		// Copy so the redirect policy does not leak into the caller's client.
		base := *c.HTTPClient
		base.CheckRedirect = c.checkRedirectFunc()
		return &base
	}
	return &http.Client{Timeout: c.PerRequestTimeout, CheckRedirect: c.checkRedirectFunc()}
}

// Get fetches an HTML page and returns its body and content type.
func (c *Client) Get(ctx context.Context, rawURL string) ([]byte, string, error) {
	var etag, lastMod string
	if c.Cache != nil && !c.BypassCache {
		if meta, err := c.Cache.LoadMeta(ctx, rawURL); err == nil && meta != nil {
			if c.Cache.Fresh(meta) {
				if body, err := c.Cache.LoadBody(ctx, rawURL); err == nil {
					log.Debug().Str("url", rawURL).Msg("page cache hit")
					return body, meta.ContentType, nil
				}
			}
			etag = meta.ETag
			lastMod = meta.LastModified
		}
	}
	if c.Robots != nil && !c.Robots.Allowed(ctx, rawURL) {
		return nil, "", fmt.Errorf("%w: %s", ErrDisallowed, rawURL)
	}
	attempts := c.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}
	var lastErr error
	for i := 0; i < attempts; i++ {
		res, err := c.tryOnce(ctx, rawURL, etag, lastMod)
		if err == nil && res.status == http.StatusNotModified {
			if c.Cache != nil {
				if cached, lerr := c.Cache.LoadBody(ctx, rawURL); lerr == nil {
					return cached, res.contentType, nil
				}
			}
			// Nothing to revalidate against: ask again without conditions.
			log.Debug().Str("url", rawURL).Msg("not modified but no cached body; refetching")
			etag, lastMod = "", ""
			res, err = c.tryOnce(ctx, rawURL, "", "")
			if err == nil && res.status == http.StatusNotModified {
				err = &StatusError{Code: http.StatusNotModified}
			}
		}
		if err == nil {
			if c.Cache != nil && res.status == http.StatusOK {
				if err := c.Cache.Save(ctx, rawURL, res.contentType, res.etag, res.lastModified, res.body); err != nil {
					log.Debug().Err(err).Str("url", rawURL).Msg("page cache save failed")
				}
			}
			return res.body, res.contentType, nil
		}
		lastErr = err
		if !isTransient(err) || i == attempts-1 {
			break
		}
		backoff := time.Duration(i+1) * 200 * time.Millisecond
		log.Debug().Err(err).Str("url", rawURL).Int("attempt", i+1).Dur("backoff", backoff).Msg("fetch retry")
		select {
		case <-ctx.Done():
			return nil, "", ctx.Err()
		case <-time.After(backoff):
		}
	}
	if lastErr == nil {
		lastErr = errors.New("unknown error")
	}
	return nil, "", lastErr
}

type response struct {
	body         []byte
	contentType  string
	etag         string
	lastModified string
	status       int
}

func (c *Client) tryOnce(ctx context.Context, rawURL string, etag string, lastMod string) (response, error) {
	if err := c.acquire(ctx); err != nil {
		return response{}, err
	}
	defer c.release()

	if c.PerRequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.PerRequestTimeout)
		defer cancel()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return response{}, fmt.Errorf("new request: %w", err)
	}
	if !isHTTPScheme(req.URL) {
		return response{}, fmt.Errorf("unsupported URL scheme: %q", req.URL.Scheme)
	}
	ua := c.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}
	req.Header.Set("User-Agent", ua)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.1")
	if etag != "" {
		req.Header.Set("If-None-Match", etag)
	}
	if lastMod != "" {
		req.Header.Set("If-Modified-Since", lastMod)
	}

	resp, err := c.getHTTPClient().Do(req)
	if err != nil {
		return response{}, err
	}
	defer resp.Body.Close()

	out := response{
		contentType:  resp.Header.Get("Content-Type"),
		etag:         resp.Header.Get("ETag"),
		lastModified: resp.Header.Get("Last-Modified"),
		status:       resp.StatusCode,
	}
	if resp.StatusCode == http.StatusNotModified {
		return out, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return response{}, &StatusError{Code: resp.StatusCode}
	}
	if !isAllowedHTMLContentType(out.contentType) {
		return response{}, fmt.Errorf("unsupported content type: %s", out.contentType)
	}
	limit := c.MaxBodyBytes
	if limit <= 0 {
		limit = DefaultMaxBodyBytes
	}
	out.body, err = io.ReadAll(io.LimitReader(resp.Body, limit))
	if err != nil {
		return response{}, fmt.Errorf("read body: %w", err)
	}
	return out, nil
}

// isTransient treats 5xx, 429 and per-attempt timeouts as retryable.
func isTransient(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code >= 500 || se.Code == http.StatusTooManyRequests
	}
	return false
}

func (c *Client) checkRedirectFunc() func(req *http.Request, via []*http.Request) error {
	max := c.RedirectMaxHops
	if max <= 0 {
		max = 5
	}
	return func(req *http.Request, via []*http.Request) error {
		if len(via) >= max {
			return errors.New("too many redirects")
		}
		if !isHTTPScheme(req.URL) {
			return errors.New("redirect to unsupported scheme")
		}
		return nil
	}
}

func isHTTPScheme(u *url.URL) bool {
	if u == nil {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	return scheme == "http" || scheme == "https"
}

func isAllowedHTMLContentType(ct string) bool {
	ct = strings.ToLower(strings.TrimSpace(ct))
	return strings.HasPrefix(ct, "text/html") || strings.HasPrefix(ct, "application/xhtml+xml")
}

// acquire takes a concurrency slot or gives up when ctx is done.
func (c *Client) acquire(ctx context.Context) error {
	if c.MaxConcurrent <= 0 {
		return nil
	}
	c.limiterOnce.Do(func() {
		c.limiter = make(chan struct{}, c.MaxConcurrent)
	})
	select {
	case c.limiter <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Client) release() {
	if c.MaxConcurrent <= 0 || c.limiter == nil {
		return
	}
	select {
	case <-c.limiter:
	default:
	}
}
