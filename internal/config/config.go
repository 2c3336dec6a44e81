// Package config loads run settings from the environment (optionally seeded
// from a .env file) and section/scoring rules from YAML.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/deusflow/weeklydigest/internal/classify"
	"github.com/deusflow/weeklydigest/internal/score"
)

// Store backends.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Summary engines.
const (
	EngineTextRank = "textrank"
	EngineGemini   = "gemini"
)

type Config struct {
	// Input
	FeedsConfigPath string
	RulesConfigPath string

	// Output
	StoreBackend string // file | sqlite
	DataDir      string
	SQLitePath   string

	// Edition
	Window         time.Duration
	CoverSize      int
	SectionCap     int
	DedupThreshold float64

	// Summaries
	SummaryLanguage   string
	SummarySentences  int
	SummaryEngine     string // textrank | gemini
	GeminiAPIKey      string
	GeminiModel       string
	MaxGeminiRequests int // maximum Gemini requests per run (0 = unlimited)

	// Article fetching
	FetchArticles     bool
	ScrapeConcurrency int
	ArticleCachePath  string // defaults to DataDir/article_cache.json
	ArticleCacheTTL   time.Duration

	// App settings
	LogLevel       string
	Debug          bool
	RequestTimeout time.Duration
	RetryAttempts  int
	RetryDelay     time.Duration

	Rules Rules
}

// Rules is the YAML-configurable part of classification and scoring.
type Rules struct {
	Taxonomy classify.Taxonomy `yaml:"taxonomy"`
	Scoring  score.Tables      `yaml:"scoring"`
}

// DefaultRules returns the built-in taxonomy and score tables.
func DefaultRules() Rules {
	return Rules{
		Taxonomy: classify.DefaultTaxonomy(),
		Scoring:  score.DefaultTables(),
	}
}

// Load reads .env (if present), the environment and the rules file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{
		// Default values
		FeedsConfigPath:   "configs/feeds.yaml",
		RulesConfigPath:   "configs/rules.yaml",
		StoreBackend:      BackendFile,
		DataDir:           "data",
		SQLitePath:        "data/digest.db",
		Window:            7 * 24 * time.Hour,
		CoverSize:         5,
		SectionCap:        15,
		DedupThreshold:    0.9,
		SummaryLanguage:   "spanish",
		SummarySentences:  3,
		SummaryEngine:     EngineTextRank,
		GeminiModel:       "gemini-1.5-flash",
		MaxGeminiRequests: 20,
		FetchArticles:     true,
		ScrapeConcurrency: 8,
		ArticleCacheTTL:   24 * time.Hour,
		LogLevel:          "info",
		RequestTimeout:    15 * time.Second,
		RetryAttempts:     3,
		RetryDelay:        2 * time.Second,
	}

	cfg.FeedsConfigPath = getEnvOrDefault("FEEDS_CONFIG_PATH", cfg.FeedsConfigPath)
	cfg.RulesConfigPath = getEnvOrDefault("RULES_CONFIG_PATH", cfg.RulesConfigPath)
	cfg.StoreBackend = strings.ToLower(getEnvOrDefault("STORE_BACKEND", cfg.StoreBackend))
	cfg.DataDir = getEnvOrDefault("DATA_DIR", cfg.DataDir)
	cfg.SQLitePath = getEnvOrDefault("SQLITE_PATH", cfg.SQLitePath)

	if v := getEnvIntOrDefault("WINDOW_DAYS", 0); v > 0 {
		cfg.Window = time.Duration(v) * 24 * time.Hour
	}
	if v := getEnvIntOrDefault("COVER_SIZE", 0); v > 0 {
		cfg.CoverSize = v
	}
	if v := getEnvIntOrDefault("SECTION_CAP", 0); v > 0 {
		cfg.SectionCap = v
	}
	if v := os.Getenv("DEDUP_THRESHOLD"); v != "" {
		if val, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.DedupThreshold = val
		}
	}

	cfg.SummaryLanguage = strings.ToLower(getEnvOrDefault("SUMMARY_LANGUAGE", cfg.SummaryLanguage))
	if v := getEnvIntOrDefault("SUMMARY_SENTENCES", 0); v > 0 {
		cfg.SummarySentences = v
	}
	cfg.SummaryEngine = strings.ToLower(getEnvOrDefault("SUMMARY_ENGINE", cfg.SummaryEngine))
	cfg.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	cfg.GeminiModel = getEnvOrDefault("GEMINI_MODEL", cfg.GeminiModel)
	if gr := os.Getenv("MAX_GEMINI_REQUESTS"); gr != "" {
		if val, err := strconv.Atoi(gr); err == nil && val >= 0 {
			cfg.MaxGeminiRequests = val
		}
	}

	if v := os.Getenv("FETCH_ARTICLES"); v != "" {
		if val, err := strconv.ParseBool(v); err == nil {
			cfg.FetchArticles = val
		}
	}
	if v := getEnvIntOrDefault("SCRAPE_CONCURRENCY", 0); v > 0 {
		cfg.ScrapeConcurrency = v
	}
	if v := getEnvIntOrDefault("ARTICLE_CACHE_TTL_HOURS", 0); v > 0 {
		cfg.ArticleCacheTTL = time.Duration(v) * time.Hour
	}
	cfg.ArticleCachePath = getEnvOrDefault("ARTICLE_CACHE_PATH", filepath.Join(cfg.DataDir, "article_cache.json"))

	cfg.LogLevel = getEnvOrDefault("LOG_LEVEL", cfg.LogLevel)
	if debug := os.Getenv("DEBUG"); debug == "true" {
		cfg.Debug = true
	}
	if v := os.Getenv("REQUEST_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.RequestTimeout = d
		}
	}
	if v := getEnvIntOrDefault("RETRY_ATTEMPTS", 0); v > 0 {
		cfg.RetryAttempts = v
	}
	if v := os.Getenv("RETRY_DELAY"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.RetryDelay = d
		}
	}

	rules, err := LoadRules(cfg.RulesConfigPath)
	if err != nil {
		return nil, err
	}
	cfg.Rules = rules

	return cfg, cfg.Validate()
}

// LoadRules reads path. A missing file yields DefaultRules; sections left
// out of the file keep their defaults.
func LoadRules(path string) (Rules, error) {
	rules := DefaultRules()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return rules, nil
	}
	if err != nil {
		return Rules{}, fmt.Errorf("read rules %s: %w", path, err)
	}

	var fromFile Rules
	if err := yaml.Unmarshal(data, &fromFile); err != nil {
		return Rules{}, fmt.Errorf("parse rules %s: %w", path, err)
	}

	t := fromFile.Taxonomy
	if len(t.Categories) > 0 {
		rules.Taxonomy.Categories = t.Categories
	}
	if t.ResearchLabel != "" {
		rules.Taxonomy.ResearchLabel = t.ResearchLabel
	}
	if t.DefaultLabel != "" {
		rules.Taxonomy.DefaultLabel = t.DefaultLabel
	}
	if t.CoverLabel != "" {
		rules.Taxonomy.CoverLabel = t.CoverLabel
	}
	if t.ResearchSources != nil {
		rules.Taxonomy.ResearchSources = t.ResearchSources
	}
	if fromFile.Scoring.SourceWeights != nil {
		rules.Scoring.SourceWeights = fromFile.Scoring.SourceWeights
	}
	if fromFile.Scoring.KeywordBoosts != nil {
		rules.Scoring.KeywordBoosts = fromFile.Scoring.KeywordBoosts
	}

	return rules, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func (c *Config) Validate() error {
	if c.StoreBackend != BackendFile && c.StoreBackend != BackendSQLite {
		return fmt.Errorf("STORE_BACKEND must be '%s' or '%s'", BackendFile, BackendSQLite)
	}
	if c.SummaryEngine != EngineTextRank && c.SummaryEngine != EngineGemini {
		return fmt.Errorf("SUMMARY_ENGINE must be '%s' or '%s'", EngineTextRank, EngineGemini)
	}
	if c.SummaryEngine == EngineGemini && c.GeminiAPIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY is required when SUMMARY_ENGINE=%s", EngineGemini)
	}
	if c.DedupThreshold <= 0 || c.DedupThreshold > 1 {
		return fmt.Errorf("DEDUP_THRESHOLD must be in (0, 1], got %v", c.DedupThreshold)
	}
	if err := c.Rules.Taxonomy.Validate(); err != nil {
		return fmt.Errorf("rules: %w", err)
	}
	return nil
}
