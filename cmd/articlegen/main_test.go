package main

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	apppkg "github.com/hyperifyio/articlegen/internal/app"
)

func TestParseFlags_PositionalSeed(t *testing.T) {
	t.Setenv("SEARCH_FILE", "results.json")
	cfg, opts, err := parseFlags([]string{"-env=", "-format", "markdown", "best", "running", "shoes"})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.SeedText != "best running shoes" {
		t.Fatalf("SeedText=%q", cfg.SeedText)
	}
	if cfg.OutputFormat != "markdown" || opts.serve {
		t.Fatalf("unexpected cfg=%+v opts=%+v", cfg, opts)
	}
	if cfg.FileSearchPath != "results.json" {
		t.Fatalf("env search file not applied: %q", cfg.FileSearchPath)
	}
}

func TestParseFlags_Precedence(t *testing.T) {
	dir := t.TempDir()
	conf := filepath.Join(dir, "articlegen.yaml")
	yaml := "search:\n  file: from-file.json\nrewrite:\n  paraphrase: textspinner\n  summarize: extractive\n"
	if err := os.WriteFile(conf, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	envFile := filepath.Join(dir, ".env")
	if err := os.WriteFile(envFile, []byte("SUMMARIZE_PROVIDER=openai\n"), 0o600); err != nil {
		t.Fatalf("write env: %v", err)
	}
	t.Setenv("SEARCH_FILE", "")
	t.Setenv("SUMMARIZE_PROVIDER", "")
	t.Setenv("PARAPHRASE_PROVIDER", "rewriter")

	cfg, _, err := parseFlags([]string{
		"-env=" + envFile,
		"-config", conf,
		"-paraphrase", "openai",
		"-seed", "budget shoes",
	})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.FileSearchPath != "from-file.json" {
		t.Fatalf("file config not applied: %q", cfg.FileSearchPath)
	}
	// dotenv beats the config file
	if cfg.SummarizeProvider != "openai" {
		t.Fatalf("SummarizeProvider=%q, want openai from dotenv", cfg.SummarizeProvider)
	}
	// explicit flag beats env
	if cfg.ParaphraseProvider != "openai" {
		t.Fatalf("ParaphraseProvider=%q, want flag value", cfg.ParaphraseProvider)
	}
}

func TestParseFlags_ServeNeedsNoSeed(t *testing.T) {
	t.Setenv("SEARCH_FILE", "results.json")
	cfg, opts, err := parseFlags([]string{"-env=", "-serve", "-addr", "127.0.0.1:0"})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !opts.serve || cfg.ServeAddr != "127.0.0.1:0" {
		t.Fatalf("unexpected cfg=%+v opts=%+v", cfg, opts)
	}
}

func TestParseFlags_MissingSeed(t *testing.T) {
	t.Setenv("SEARCH_FILE", "results.json")
	if _, _, err := parseFlags([]string{"-env="}); err == nil {
		t.Fatalf("expected error without seed")
	}
}

func TestExitCode(t *testing.T) {
	if got := exitCode(fmt.Errorf("wrapped: %w", apppkg.ErrNoParagraphs)); got != 2 {
		t.Fatalf("exitCode=%d, want 2", got)
	}
	if got := exitCode(fmt.Errorf("boom")); got != 1 {
		t.Fatalf("exitCode=%d, want 1", got)
	}
}

func TestParseFlags_RobotsFlagBeatsEnv(t *testing.T) {
	t.Setenv("SEARCH_FILE", "results.json")
	t.Setenv("RESPECT_ROBOTS", "true")
	cfg, _, err := parseFlags([]string{"-env=", "-robots=false", "-seed", "budget shoes"})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.RespectRobots {
		t.Fatalf("-robots=false should win over RESPECT_ROBOTS")
	}

	cfg, _, err = parseFlags([]string{"-env=", "-seed", "budget shoes"})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !cfg.RespectRobots {
		t.Fatalf("robots checks should be on by default")
	}
}
