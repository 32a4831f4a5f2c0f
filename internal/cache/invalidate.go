package cache

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// ClearDir removes the directory and all contents. It recreates the directory
// afterwards to leave a valid empty cache location.
func ClearDir(dir string) error {
	if strings.TrimSpace(dir) == "" {
		return errors.New("empty dir")
	}
	if err := os.RemoveAll(dir); err != nil {
		return err
	}
	return os.MkdirAll(dir, 0o755)
}

type diskEntry struct {
	base    string // path without extension
	savedAt time.Time
	used    time.Time
	size    int64
}

func (d diskEntry) remove() {
	_ = os.Remove(d.base + ".meta.json")
	_ = os.Remove(d.base + ".body")
}

// scan lists cache entries in dir. Unreadable or malformed entries are
// skipped.
func scan(dir string) ([]diskEntry, error) {
	var out []diskEntry
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".meta.json") {
			return nil
		}
		b, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		var e Entry
		if err := json.Unmarshal(b, &e); err != nil {
			return nil
		}
		base := strings.TrimSuffix(path, ".meta.json")
		de := diskEntry{base: base, savedAt: e.SavedAt, used: e.SavedAt, size: int64(len(b))}
		if info, err := os.Stat(base + ".body"); err == nil {
			de.size += info.Size()
			de.used = info.ModTime()
		}
		out = append(out, de)
		return nil
	})
	return out, err
}

// PurgeByAge removes entries saved more than maxAge ago.
func PurgeByAge(dir string, maxAge time.Duration) (int, error) {
	if maxAge <= 0 {
		return 0, nil
	}
	entries, err := scan(dir)
	if err != nil {
		return 0, err
	}
	now := time.Now().UTC()
	removed := 0
	for _, e := range entries {
		if now.Sub(e.savedAt) > maxAge {
			e.remove()
			removed++
		}
	}
	return removed, nil
}

// EnforceLimits evicts least recently used entries until the cache holds at
// most maxEntries entries and maxBytes bytes. Zero disables a limit.
func EnforceLimits(dir string, maxBytes int64, maxEntries int) (int, error) {
	if maxBytes <= 0 && maxEntries <= 0 {
		return 0, nil
	}
	entries, err := scan(dir)
	if err != nil {
		return 0, err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].used.Before(entries[j].used) })
	var total int64
	for _, e := range entries {
		total += e.size
	}
	removed := 0
	for _, e := range entries {
		overCount := maxEntries > 0 && len(entries)-removed > maxEntries
		overBytes := maxBytes > 0 && total > maxBytes
		if !overCount && !overBytes {
			break
		}
		e.remove()
		total -= e.size
		removed++
	}
	return removed, nil
}
