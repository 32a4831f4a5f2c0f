package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Entry holds what is needed to revalidate a cached page or serve it
// without a network round trip.
type Entry struct {
	URL          string    `json:"url"`
	ContentType  string    `json:"content_type"`
	ETag         string    `json:"etag"`
	LastModified string    `json:"last_modified"`
	SavedAt      time.Time `json:"saved_at"`
}

// PageCache stores fetched pages on disk as <key>.meta.json and <key>.body
// where key is sha256(url). Size limits are applied separately by
// EnforceLimits.
type PageCache struct {
	Dir string
	// MaxAge lets entries younger than this be served without revalidation.
	// Zero means always revalidate.
	MaxAge time.Duration
	// StrictPerms writes the directory as 0700 and files as 0600.
	StrictPerms bool
}

func (c *PageCache) dirMode() os.FileMode {
	if c.StrictPerms {
		return 0o700
	}
	return 0o755
}

func (c *PageCache) fileMode() os.FileMode {
	if c.StrictPerms {
		return 0o600
	}
	return 0o644
}

func (c *PageCache) ensureDir() error {
	if c == nil || c.Dir == "" {
		return errors.New("cache dir not configured")
	}
	if err := os.MkdirAll(c.Dir, c.dirMode()); err != nil {
		return err
	}
	if c.StrictPerms {
		// MkdirAll is subject to umask and leaves existing dirs alone.
		return os.Chmod(c.Dir, c.dirMode())
	}
	return nil
}

func (c *PageCache) key(url string) string {
	h := sha256.Sum256([]byte(url))
	return hex.EncodeToString(h[:])
}

func (c *PageCache) metaPath(key string) string { return filepath.Join(c.Dir, key+".meta.json") }
func (c *PageCache) bodyPath(key string) string { return filepath.Join(c.Dir, key+".body") }

// LoadMeta returns entry metadata if present.
func (c *PageCache) LoadMeta(_ context.Context, url string) (*Entry, error) {
	if err := c.ensureDir(); err != nil {
		return nil, err
	}
	b, err := os.ReadFile(c.metaPath(c.key(url)))
	if err != nil {
		return nil, err
	}
	var e Entry
	if err := json.Unmarshal(b, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

// LoadBody returns the cached body and marks it as recently used.
func (c *PageCache) LoadBody(_ context.Context, url string) ([]byte, error) {
	if err := c.ensureDir(); err != nil {
		return nil, err
	}
	p := c.bodyPath(c.key(url))
	b, err := os.ReadFile(p)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	_ = os.Chtimes(p, now, now)
	return b, nil
}

// Fresh reports whether e may be served without revalidation.
func (c *PageCache) Fresh(e *Entry) bool {
	if c == nil || e == nil || c.MaxAge <= 0 {
		return false
	}
	return time.Since(e.SavedAt) < c.MaxAge
}

// Save stores body and its metadata. Both files are written via rename so
// readers never see a partial entry.
func (c *PageCache) Save(_ context.Context, url string, contentType string, etag string, lastModified string, body []byte) error {
	if err := c.ensureDir(); err != nil {
		return err
	}
	key := c.key(url)
	if err := c.writeAtomic(c.bodyPath(key), body); err != nil {
		return fmt.Errorf("write body: %w", err)
	}
	meta, err := json.Marshal(Entry{
		URL:          url,
		ContentType:  contentType,
		ETag:         etag,
		LastModified: lastModified,
		SavedAt:      time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("encode meta: %w", err)
	}
	if err := c.writeAtomic(c.metaPath(key), meta); err != nil {
		return fmt.Errorf("write meta: %w", err)
	}
	return nil
}

func (c *PageCache) writeAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, c.fileMode()); err != nil {
		return err
	}
	if c.StrictPerms {
		if err := os.Chmod(tmp, c.fileMode()); err != nil {
			return err
		}
	}
	return os.Rename(tmp, path)
}
