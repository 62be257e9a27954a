package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"PORT", "DOCUMENT_DIR", "DEFAULT_DOCUMENT", "MAX_DOCUMENT_BYTES", "GENERATE_TIMEOUT", "GENERATE_TOP_K", "ANSWER_BUDGET", "CONFIDENCE_NOTES", "CORS_ORIGINS", "ANTHROPIC_API_KEY", "MAX_CONCURRENT_GENERATE", "MAX_PROMPT_TOKENS"} {
		t.Setenv(k, "")
	}
	cfg := Load()

	if cfg.Port != "8090" {
		t.Errorf("expected port 8090, got %q", cfg.Port)
	}
	if cfg.DocumentDir != "." || cfg.DefaultDocument != "izahname.txt" {
		t.Errorf("unexpected document defaults: %q %q", cfg.DocumentDir, cfg.DefaultDocument)
	}
	if cfg.MaxDocumentBytes != 20971520 {
		t.Errorf("expected 20MB limit, got %d", cfg.MaxDocumentBytes)
	}
	if cfg.GenerateTimeout != 30*time.Second || cfg.GenerateTopK != 3 || cfg.AnswerBudget != 1000 {
		t.Errorf("unexpected generation defaults: %+v", cfg)
	}
	if cfg.MaxConcurrentGenerate != 5 || cfg.MaxPromptTokens != 6000 {
		t.Errorf("unexpected generator limits: %d %d", cfg.MaxConcurrentGenerate, cfg.MaxPromptTokens)
	}
	if cfg.ConfidenceNotes || cfg.GeneratorEnabled() {
		t.Error("expected confidence notes and generator off by default")
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "*" {
		t.Errorf("expected allow-all CORS, got %v", cfg.CORSOrigins)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("GENERATE_TIMEOUT", "5s")
	t.Setenv("GENERATE_TOP_K", "-2")
	t.Setenv("ANSWER_BUDGET", "abc")
	t.Setenv("CONFIDENCE_NOTES", "true")
	t.Setenv("CORS_ORIGINS", " https://a.example , ,https://b.example")
	t.Setenv("ANTHROPIC_API_KEY", "sk-test")

	cfg := Load()
	if cfg.Port != "9000" || cfg.GenerateTimeout != 5*time.Second {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if cfg.GenerateTopK != 3 {
		t.Errorf("expected non-positive top-k to reset to 3, got %d", cfg.GenerateTopK)
	}
	if cfg.AnswerBudget != 1000 {
		t.Errorf("expected unparsable budget to fall back, got %d", cfg.AnswerBudget)
	}
	if !cfg.ConfidenceNotes || !cfg.GeneratorEnabled() {
		t.Error("expected confidence notes and generator on")
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://b.example" {
		t.Errorf("unexpected origins %v", cfg.CORSOrigins)
	}
}

func TestValidate(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "f.txt")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	valid := Config{Port: "8090", DocumentDir: dir, AnswerBudget: 1000}
	if err := valid.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty port", func(c *Config) { c.Port = "" }},
		{"non-numeric port", func(c *Config) { c.Port = "http" }},
		{"missing dir", func(c *Config) { c.DocumentDir = filepath.Join(dir, "nope") }},
		{"dir is file", func(c *Config) { c.DocumentDir = file }},
		{"tiny budget", func(c *Config) { c.AnswerBudget = 3 }},
		{"missing pack", func(c *Config) { c.LanguagePack = filepath.Join(dir, "pack.yaml") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestLoadDotEnv_DoesNotOverride(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, "test.env")
	if err := os.WriteFile(envFile, []byte("DOCQA_TEST_A=from-file\nDOCQA_TEST_B=from-file\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("DOCQA_TEST_A", "from-env")
	t.Cleanup(func() { os.Unsetenv("DOCQA_TEST_B") })

	LoadDotEnv(envFile, filepath.Join(dir, "missing.env"))

	if got := os.Getenv("DOCQA_TEST_A"); got != "from-env" {
		t.Errorf("expected existing variable to win, got %q", got)
	}
	if got := os.Getenv("DOCQA_TEST_B"); got != "from-file" {
		t.Errorf("expected variable from file, got %q", got)
	}
}
