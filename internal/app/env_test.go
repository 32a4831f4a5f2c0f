package app

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadEnvFiles_LoadsKeyValues(t *testing.T) {
	t.Setenv("FOO", "")
	t.Setenv("BAR", "")

	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env.test")
	content := "\n# sample dotenv file\nFOO=alpha\nBAR=\"beta\"\n"
	if err := os.WriteFile(envPath, []byte(content), 0o600); err != nil {
		t.Fatalf("write dotenv: %v", err)
	}

	if err := LoadEnvFiles(envPath); err != nil {
		t.Fatalf("LoadEnvFiles error: %v", err)
	}
	if got := os.Getenv("FOO"); got != "alpha" {
		t.Fatalf("FOO=%q, want alpha", got)
	}
	if got := os.Getenv("BAR"); got != "beta" {
		t.Fatalf("BAR=%q, want beta", got)
	}
}

// Later files override earlier ones when loading multiple dotenv files.
func TestLoadEnvFiles_OverrideOrder(t *testing.T) {
	t.Setenv("K", "")
	dir := t.TempDir()
	a := filepath.Join(dir, ".env.a")
	b := filepath.Join(dir, ".env.b")
	if err := os.WriteFile(a, []byte("K=first\n"), 0o600); err != nil {
		t.Fatalf("write a: %v", err)
	}
	if err := os.WriteFile(b, []byte("K=second\n"), 0o600); err != nil {
		t.Fatalf("write b: %v", err)
	}
	if err := LoadEnvFiles(a, b); err != nil {
		t.Fatalf("LoadEnvFiles error: %v", err)
	}
	if got := os.Getenv("K"); got != "second" {
		t.Fatalf("override order failed: got %q, want second", got)
	}
}

func TestLoadEnvFiles_MissingFileSkipped(t *testing.T) {
	if err := LoadEnvFiles(filepath.Join(t.TempDir(), "nope.env"), ""); err != nil {
		t.Fatalf("missing files should be skipped, got %v", err)
	}
}

func TestApplyEnvToConfig_FromEnv(t *testing.T) {
	t.Setenv("SEARX_URL", "")
	t.Setenv("SEARXNG_URL", "http://searxng.example")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("LLM_API_KEY", "")
	t.Setenv("REWRITER_URL", "http://rewriter.example")
	t.Setenv("CACHE_DIR", "/tmp/articlegen-cache")
	t.Setenv("CACHE_MAX_AGE", "36h")
	t.Setenv("FETCH_MAX_CONCURRENT", "4")
	t.Setenv("CACHE_STRICT_PERMS", "yes")

	cfg := Config{RewriterURL: "http://explicit.example"}
	ApplyEnvToConfig(&cfg)
	if cfg.SearxURL != "http://searxng.example" {
		t.Fatalf("SearxURL=%q, want fallback from SEARXNG_URL", cfg.SearxURL)
	}
	if cfg.LLMAPIKey != "sk-test" {
		t.Fatalf("LLMAPIKey=%q, want fallback from OPENAI_API_KEY", cfg.LLMAPIKey)
	}
	if cfg.RewriterURL != "http://explicit.example" {
		t.Fatalf("explicit RewriterURL overwritten: %q", cfg.RewriterURL)
	}
	if cfg.CacheDir != "/tmp/articlegen-cache" || cfg.CacheMaxAge.Hours() != 36 {
		t.Fatalf("cache settings not applied: %+v", cfg)
	}
	if cfg.MaxConcurrent != 4 || !cfg.CacheStrictPerms {
		t.Fatalf("MaxConcurrent=%d CacheStrictPerms=%v", cfg.MaxConcurrent, cfg.CacheStrictPerms)
	}
}

func TestApplyEnvOverrides_ReplacesValues(t *testing.T) {
	t.Setenv("PARAPHRASE_PROVIDER", "textspinner")
	t.Setenv("SSL_VERIFY", "false")
	t.Setenv("NO_REWRITE", "")
	t.Setenv("RESPECT_ROBOTS", "off")

	cfg := DefaultConfig()
	ApplyEnvOverrides(&cfg)
	if cfg.RespectRobots {
		t.Fatalf("RESPECT_ROBOTS=off should disable robots checks")
	}
	if cfg.ParaphraseProvider != "textspinner" {
		t.Fatalf("ParaphraseProvider=%q, want textspinner", cfg.ParaphraseProvider)
	}
	if cfg.SSLVerify {
		t.Fatalf("SSL_VERIFY=false should disable verification")
	}
	if cfg.NoRewrite {
		t.Fatalf("unset NO_REWRITE must not change NoRewrite")
	}
}
