// Package robots fetches, caches and evaluates robots.txt so page fetches
// honour site rules.
package robots

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/articlegen/internal/cache"
)

// Source tells where a ruleset came from.
type Source int

const (
	SourceNetwork Source = iota
	SourceMemory
	SourceCache304
)

// maxRobotsBytes caps robots.txt bodies.
const maxRobotsBytes = 512 << 10

// Rules is a parsed robots.txt. DisallowAll marks a host whose robots.txt
// could not be read (5xx, 401/403, timeout) and is blocked until the entry
// expires.
type Rules struct {
	Groups      []Group
	DisallowAll bool
}

// Group is one User-agent block.
type Group struct {
	Agents   []string
	Allow    []string
	Disallow []string
}

// Manager fetches robots.txt once per host and keeps it in memory until
// EntryExpiry. With Cache set, expired entries are revalidated with
// ETag/Last-Modified.
type Manager struct {
	HTTPClient *http.Client
	Cache      *cache.PageCache
	UserAgent  string
	// EntryExpiry defaults to 30 minutes.
	EntryExpiry time.Duration
	// UnavailableExpiry bounds how long an unreadable robots.txt blocks a
	// host. Defaults to EntryExpiry.
	UnavailableExpiry time.Duration
	// CheckPrivateHosts also consults robots.txt on loopback and private
	// addresses. Otherwise such hosts are always allowed and never contacted
	// for robots.txt.
	CheckPrivateHosts bool

	mu  sync.Mutex
	mem map[string]memEntry
	now func() time.Time
}

type memEntry struct {
	rules  Rules
	expiry time.Time
}

func (m *Manager) clock() time.Time {
	if m.now == nil {
		return time.Now()
	}
	return m.now()
}

// Allowed reports whether pageURL may be fetched by the manager's user
// agent. Unparseable URLs are refused.
func (m *Manager) Allowed(ctx context.Context, pageURL string) bool {
	u, err := url.Parse(pageURL)
	if err != nil || !isHTTPScheme(u) || u.Host == "" {
		return false
	}
	if !m.CheckPrivateHosts && isLocalOrPrivateHost(u.Hostname()) {
		return true
	}
	robotsURL := (&url.URL{Scheme: u.Scheme, Host: u.Host, Path: "/robots.txt"}).String()
	rules, src, err := m.Get(ctx, robotsURL)
	if err != nil {
		log.Debug().Err(err).Str("url", robotsURL).Msg("robots lookup failed")
		return false
	}
	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	if u.RawQuery != "" {
		path += "?" + u.RawQuery
	}
	ok := rules.IsAllowed(m.agent(), path)
	if !ok {
		log.Debug().Str("url", pageURL).Int("source", int(src)).Bool("unavailable", rules.DisallowAll).Msg("robots disallow")
	}
	return ok
}

func (m *Manager) agent() string {
	if m.UserAgent == "" {
		return "articlegen"
	}
	return m.UserAgent
}

// Get returns the rules at robotsURL. A missing robots.txt (404 and other
// 4xx except 401/403) yields empty rules; an unreadable one yields
// DisallowAll. Both outcomes are cached like a normal ruleset. Errors are
// reserved for unusable URLs.
func (m *Manager) Get(ctx context.Context, robotsURL string) (Rules, Source, error) {
	u, err := url.Parse(robotsURL)
	if err != nil {
		return Rules{}, SourceNetwork, fmt.Errorf("parse url: %w", err)
	}
	if !isHTTPScheme(u) {
		return Rules{}, SourceNetwork, fmt.Errorf("unsupported url scheme: %q", robotsURL)
	}
	if !m.CheckPrivateHosts && isLocalOrPrivateHost(u.Hostname()) {
		return Rules{}, SourceNetwork, fmt.Errorf("private host not allowed: %s", u.Hostname())
	}

	m.mu.Lock()
	if ent, ok := m.mem[robotsURL]; ok && m.clock().Before(ent.expiry) {
		m.mu.Unlock()
		return ent.rules, SourceMemory, nil
	}
	m.mu.Unlock()

	var etag, lastMod string
	if m.Cache != nil {
		if meta, err := m.Cache.LoadMeta(ctx, robotsURL); err == nil && meta != nil {
			etag = meta.ETag
			lastMod = meta.LastModified
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return Rules{}, SourceNetwork, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("User-Agent", m.agent())
	if etag != "" {
		req.Header.Set("If-None-Match", etag)
	}
	if lastMod != "" {
		req.Header.Set("If-Modified-Since", lastMod)
	}
	client := m.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	resp, err := client.Do(req)
	if err != nil {
		return m.unavailable(robotsURL, err.Error()), SourceNetwork, nil
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotModified && m.Cache != nil:
		body, err := m.Cache.LoadBody(ctx, robotsURL)
		if err != nil {
			return Rules{}, SourceCache304, fmt.Errorf("load cached robots: %w", err)
		}
		rules := parseRobots(string(body))
		m.store(robotsURL, rules, m.EntryExpiry)
		return rules, SourceCache304, nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden || resp.StatusCode >= 500:
		return m.unavailable(robotsURL, resp.Status), SourceNetwork, nil
	case resp.StatusCode >= 400:
		m.store(robotsURL, Rules{}, m.EntryExpiry)
		return Rules{}, SourceNetwork, nil
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return m.unavailable(robotsURL, resp.Status), SourceNetwork, nil
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxRobotsBytes))
	if err != nil {
		return m.unavailable(robotsURL, err.Error()), SourceNetwork, nil
	}
	if m.Cache != nil {
		if err := m.Cache.Save(ctx, robotsURL, "text/plain", resp.Header.Get("ETag"), resp.Header.Get("Last-Modified"), data); err != nil {
			log.Debug().Err(err).Str("url", robotsURL).Msg("robots cache save failed")
		}
	}
	rules := parseRobots(string(data))
	m.store(robotsURL, rules, m.EntryExpiry)
	return rules, SourceNetwork, nil
}

func (m *Manager) unavailable(robotsURL, reason string) Rules {
	log.Debug().Str("url", robotsURL).Str("reason", reason).Msg("robots unavailable; host blocked temporarily")
	rules := Rules{DisallowAll: true}
	exp := m.UnavailableExpiry
	if exp <= 0 {
		exp = m.EntryExpiry
	}
	m.store(robotsURL, rules, exp)
	return rules
}

func (m *Manager) store(key string, rules Rules, exp time.Duration) {
	if exp <= 0 {
		exp = 30 * time.Minute
	}
	m.mu.Lock()
	if m.mem == nil {
		m.mem = make(map[string]memEntry)
	}
	m.mem[key] = memEntry{rules: rules, expiry: m.clock().Add(exp)}
	m.mu.Unlock()
}

func parseRobots(text string) Rules {
	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	var groups []Group
	current := Group{}
	flush := func() {
		if len(current.Agents) == 0 && len(current.Allow) == 0 && len(current.Disallow) == 0 {
			return
		}
		groups = append(groups, current)
		current = Group{}
	}
	for scanner.Scan() {
		line := scanner.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		line = strings.TrimSpace(line)
		colon := strings.IndexByte(line, ':')
		if colon <= 0 {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(line[:colon]))
		val := strings.TrimSpace(line[colon+1:])
		switch key {
		case "user-agent", "useragent":
			if len(current.Agents) > 0 && (len(current.Allow) > 0 || len(current.Disallow) > 0) {
				flush()
			}
			current.Agents = append(current.Agents, strings.ToLower(val))
		case "allow":
			current.Allow = append(current.Allow, val)
		case "disallow":
			current.Disallow = append(current.Disallow, val)
		}
	}
	flush()
	return Rules{Groups: groups}
}

// IsAllowed evaluates path (which may carry a query string) for userAgent.
//
// The most specific matching User-agent group applies; a named agent beats
// "*". Within it the longest matching pattern wins ('*' not counted, trailing
// '$' ignored) and Allow wins ties. No match means allowed.
func (r Rules) IsAllowed(userAgent string, path string) bool {
	if r.DisallowAll {
		return false
	}
	idx := r.selectGroupIndex(userAgent)
	if idx < 0 {
		return true
	}
	grp := r.Groups[idx]

	bestScore := -1
	bestAllow := true
	evaluate := func(patterns []string, isAllow bool) {
		for _, p := range patterns {
			if p == "" || !patternMatches(p, path) {
				continue
			}
			score := patternSpecificity(p)
			if score > bestScore || (score == bestScore && isAllow && !bestAllow) {
				bestScore = score
				bestAllow = isAllow
			}
		}
	}
	evaluate(grp.Disallow, false)
	evaluate(grp.Allow, true)
	if bestScore == -1 {
		return true
	}
	return bestAllow
}

func (r Rules) selectGroupIndex(userAgent string) int {
	ua := strings.ToLower(strings.TrimSpace(userAgent))
	bestIdx := -1
	bestScore := -1
	for i, g := range r.Groups {
		for _, a := range g.Agents {
			token := strings.TrimSpace(a)
			var score int
			switch {
			case token == "":
				continue
			case token == "*":
				score = 0
			case strings.Contains(ua, token):
				score = len(token)
			default:
				continue
			}
			if score > bestScore {
				bestScore = score
				bestIdx = i
			}
		}
	}
	return bestIdx
}

// patternMatches anchors pattern at the start of path. '*' matches any
// sequence and a trailing '$' anchors the end.
func patternMatches(pattern, path string) bool {
	anchorEnd := strings.HasSuffix(pattern, "$")
	p := strings.TrimSuffix(pattern, "$")
	var b strings.Builder
	b.WriteString("^")
	for _, part := range strings.Split(p, "*") {
		b.WriteString(regexp.QuoteMeta(part))
		b.WriteString(".*")
	}
	expr := strings.TrimSuffix(b.String(), ".*")
	if anchorEnd {
		expr += "$"
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return false
	}
	return re.MatchString(path)
}

func patternSpecificity(pattern string) int {
	return len(strings.ReplaceAll(strings.TrimSuffix(pattern, "$"), "*", ""))
}

func isHTTPScheme(u *url.URL) bool {
	if u == nil {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	return scheme == "http" || scheme == "https"
}

func isLocalOrPrivateHost(host string) bool {
	h := strings.ToLower(strings.Trim(strings.TrimSpace(host), "[]"))
	if h == "localhost" || h == "localhost.localdomain" || strings.HasSuffix(h, ".localhost") {
		return true
	}
	if ip := net.ParseIP(h); ip != nil {
		return ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() || ip.IsUnspecified()
	}
	return false
}
