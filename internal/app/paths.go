package app

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/hyperifyio/articlegen/internal/article"
	"github.com/hyperifyio/articlegen/internal/pipeline"
)

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

var formatExt = map[string]string{
	article.FormatText:     ".txt",
	article.FormatMarkdown: ".md",
	article.FormatHTML:     ".html",
}

// deriveOutputPath returns a stable output path under OutputsDir for the
// seed text: a slug plus a short hash of the normalised seed, so the same
// query always lands in the same file.
func deriveOutputPath(cfg Config) string {
	root := strings.TrimSpace(cfg.OutputsDir)
	if root == "" {
		root = "articles"
	}
	seed := pipeline.StripSearchOperators(cfg.SeedText)
	h := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(cfg.SeedText))))
	short := hex.EncodeToString(h[:])[:12]
	ext, ok := formatExt[strings.ToLower(cfg.OutputFormat)]
	if !ok {
		ext = ".txt"
	}
	return filepath.Join(root, slugify(seed)+"-"+short+ext)
}

func slugify(s string) string {
	s = nonSlug.ReplaceAllString(strings.ToLower(strings.TrimSpace(s)), "-")
	s = strings.Trim(s, "-")
	if len(s) > 60 {
		s = strings.TrimRight(s[:60], "-")
	}
	if s == "" {
		s = "article"
	}
	return s
}
