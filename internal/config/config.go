package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string

	// Document source
	DocumentDir      string
	DefaultDocument  string
	IndexFile        string
	MaxDocumentBytes int64

	// Language pack override (empty = embedded Turkish)
	LanguagePack string

	// Claude generation (optional)
	AnthropicAPIKey  string
	AnthropicModel   string
	AnthropicBaseURL string
	GenerateTimeout  time.Duration
	GenerateTopK     int

	// Generator concurrency and prompt size
	MaxConcurrentGenerate int
	MaxPromptTokens       int

	// Answer shaping
	AnswerBudget    int
	ConfidenceNotes bool

	// PDF
	PDFFallbackPdftotext bool

	// HTTP
	CORSOrigins []string
}

// LoadDotEnv reads .env style files into the environment. Variables already
// set win. Missing files are ignored.
func LoadDotEnv(files ...string) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		_ = godotenv.Load(f)
	}
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8090"),

		DocumentDir:      envOr("DOCUMENT_DIR", "."),
		DefaultDocument:  envOr("DEFAULT_DOCUMENT", "izahname.txt"),
		IndexFile:        envOr("INDEX_FILE", "index.html"),
		MaxDocumentBytes: envInt64("MAX_DOCUMENT_BYTES", 20971520), // 20MB

		LanguagePack: os.Getenv("LANGUAGE_PACK"),

		AnthropicAPIKey:  os.Getenv("ANTHROPIC_API_KEY"),
		AnthropicModel:   envOr("ANTHROPIC_MODEL", "claude-sonnet-4-5-20250929"),
		AnthropicBaseURL: envOr("ANTHROPIC_BASE_URL", "https://api.anthropic.com"),
		GenerateTimeout:  envDuration("GENERATE_TIMEOUT", 30*time.Second),
		GenerateTopK:     envInt("GENERATE_TOP_K", 3),

		MaxConcurrentGenerate: envInt("MAX_CONCURRENT_GENERATE", 5),
		MaxPromptTokens:       envInt("MAX_PROMPT_TOKENS", 6000),

		AnswerBudget:    envInt("ANSWER_BUDGET", 1000),
		ConfidenceNotes: envBool("CONFIDENCE_NOTES", false),

		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", true),

		CORSOrigins: envList("CORS_ORIGINS", []string{"*"}),
	}

	if cfg.MaxDocumentBytes <= 0 {
		cfg.MaxDocumentBytes = 20971520
	}
	if cfg.GenerateTimeout <= 0 {
		cfg.GenerateTimeout = 30 * time.Second
	}
	if cfg.GenerateTopK <= 0 {
		cfg.GenerateTopK = 3
	}
	if cfg.MaxConcurrentGenerate <= 0 {
		cfg.MaxConcurrentGenerate = 5
	}
	if cfg.MaxPromptTokens <= 0 {
		cfg.MaxPromptTokens = 6000
	}
	if cfg.AnswerBudget <= 0 {
		cfg.AnswerBudget = 1000
	}

	return cfg
}

// GeneratorEnabled reports whether an Anthropic key is configured.
func (c Config) GeneratorEnabled() bool {
	return c.AnthropicAPIKey != ""
}

func (c Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	if _, err := strconv.Atoi(c.Port); err != nil {
		return fmt.Errorf("PORT must be numeric: %q", c.Port)
	}
	info, err := os.Stat(c.DocumentDir)
	if err != nil {
		return fmt.Errorf("DOCUMENT_DIR: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("DOCUMENT_DIR %q is not a directory", c.DocumentDir)
	}
	if c.AnswerBudget < 10 {
		return fmt.Errorf("ANSWER_BUDGET must be at least 10, got %d", c.AnswerBudget)
	}
	if c.LanguagePack != "" {
		if _, err := os.Stat(c.LanguagePack); err != nil {
			return fmt.Errorf("LANGUAGE_PACK: %w", err)
		}
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
