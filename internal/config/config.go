package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dgallion1/flashgest/internal/aggregate"
	"github.com/dgallion1/flashgest/internal/chunker"
)

// Generator backends.
const (
	GeneratorOllama = "ollama"
	GeneratorClaude = "claude"
	GeneratorRemote = "remote"
	GeneratorRules  = "rules"
)

// Store backends.
const (
	StorePostgres = "postgres"
	StoreFile     = "file"
)

type Config struct {
	Port string `yaml:"port"`

	// Auth
	APIKey string `yaml:"api_key"`

	// Generation
	Generator       string        `yaml:"generator"`
	OllamaHost      string        `yaml:"ollama_host"`
	OllamaModel     string        `yaml:"ollama_model"`
	AnthropicAPIKey string        `yaml:"anthropic_api_key"`
	AnthropicModel  string        `yaml:"anthropic_model"`
	MLServiceURL    string        `yaml:"ml_service_url"`
	GenerateTimeout time.Duration `yaml:"generate_timeout"`

	// Retry around the generator
	RetryMaxAttempts int           `yaml:"retry_max_attempts"`
	RetryBaseDelay   time.Duration `yaml:"retry_base_delay"`
	RetryMultiplier  float64       `yaml:"retry_multiplier"`

	// Chunking and quotas
	MaxChunkChars     int `yaml:"max_chunk_chars"`
	OverlapChars      int `yaml:"overlap_chars"`
	MaxTotalChars     int `yaml:"max_total_chars"`
	MaxTotalQuestions int `yaml:"max_total_questions"`
	QuestionsPerChunk int `yaml:"questions_per_chunk"`

	// Persistence
	Store       string `yaml:"store"`
	DatabaseURL string `yaml:"database_url"`
	RecordsFile string `yaml:"records_file"`

	// Worker pool
	WorkerCount  int `yaml:"worker_count"`
	MaxQueueSize int `yaml:"max_queue_size"`

	// Upload limits
	MaxUploadBytes int64 `yaml:"max_upload_bytes"`

	// Job state
	JobTTL time.Duration `yaml:"job_ttl"`

	// PDF
	PDFFallbackPdftotext bool `yaml:"pdf_fallback_pdftotext"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Port: "8090",

		Generator:       GeneratorOllama,
		OllamaModel:     "llama3.1",
		AnthropicModel:  "claude-sonnet-4-5-20250929",
		GenerateTimeout: 30 * time.Second,

		RetryMaxAttempts: 3,
		RetryBaseDelay:   1 * time.Second,
		RetryMultiplier:  2,

		MaxChunkChars:     2000,
		OverlapChars:      200,
		MaxTotalChars:     80000,
		MaxTotalQuestions: 25,
		QuestionsPerChunk: 6,

		Store:       StoreFile,
		RecordsFile: "flashcards.jsonl",

		WorkerCount:  4,
		MaxQueueSize: 100,

		MaxUploadBytes: 52428800, // 50MB

		JobTTL: 1 * time.Hour,

		PDFFallbackPdftotext: true,
	}
}

// Load builds the configuration from defaults, the YAML file named by
// FLASHGEST_CONFIG if set, and then environment variables.
func Load() (Config, error) {
	cfg := Defaults()
	if path := os.Getenv("FLASHGEST_CONFIG"); path != "" {
		var err error
		if cfg, err = LoadFile(path, cfg); err != nil {
			return Config{}, err
		}
	}
	applyEnv(&cfg)
	cfg.fillDefaults()
	return cfg, nil
}

// LoadFile overlays the YAML document at path onto base.
func LoadFile(path string, base Config) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	cfg := base
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

func applyEnv(c *Config) {
	c.Port = envOr("PORT", c.Port)
	c.APIKey = envOr("FLASHGEST_API_KEY", c.APIKey)

	c.Generator = envOr("GENERATOR", c.Generator)
	c.OllamaHost = envOr("OLLAMA_HOST", c.OllamaHost)
	c.OllamaModel = envOr("OLLAMA_MODEL", c.OllamaModel)
	c.AnthropicAPIKey = envOr("ANTHROPIC_API_KEY", c.AnthropicAPIKey)
	c.AnthropicModel = envOr("ANTHROPIC_MODEL", c.AnthropicModel)
	c.MLServiceURL = envOr("ML_SERVICE_URL", c.MLServiceURL)
	c.GenerateTimeout = envDuration("GENERATE_TIMEOUT", c.GenerateTimeout)

	c.RetryMaxAttempts = envInt("RETRY_MAX_ATTEMPTS", c.RetryMaxAttempts)
	c.RetryBaseDelay = envDuration("RETRY_BASE_DELAY", c.RetryBaseDelay)
	c.RetryMultiplier = envFloat("RETRY_MULTIPLIER", c.RetryMultiplier)

	c.MaxChunkChars = envInt("MAX_CHUNK_CHARS", c.MaxChunkChars)
	c.OverlapChars = envInt("OVERLAP_CHARS", c.OverlapChars)
	c.MaxTotalChars = envInt("MAX_TOTAL_CHARS", c.MaxTotalChars)
	c.MaxTotalQuestions = envInt("MAX_TOTAL_QUESTIONS", c.MaxTotalQuestions)
	c.QuestionsPerChunk = envInt("QUESTIONS_PER_CHUNK", c.QuestionsPerChunk)

	c.Store = envOr("STORE", c.Store)
	c.DatabaseURL = envOr("DATABASE_URL", c.DatabaseURL)
	c.RecordsFile = envOr("RECORDS_FILE", c.RecordsFile)

	c.WorkerCount = envInt("WORKER_COUNT", c.WorkerCount)
	c.MaxQueueSize = envInt("MAX_QUEUE_SIZE", c.MaxQueueSize)
	c.MaxUploadBytes = envInt64("MAX_UPLOAD_BYTES", c.MaxUploadBytes)
	c.JobTTL = envDuration("JOB_TTL", c.JobTTL)
	c.PDFFallbackPdftotext = envBool("PDF_FALLBACK_PDFTOTEXT", c.PDFFallbackPdftotext)
}

func (c *Config) fillDefaults() {
	d := Defaults()
	if c.WorkerCount <= 0 {
		c.WorkerCount = d.WorkerCount
	}
	if c.MaxQueueSize <= 0 {
		c.MaxQueueSize = d.MaxQueueSize
	}
	if c.MaxUploadBytes <= 0 {
		c.MaxUploadBytes = d.MaxUploadBytes
	}
	if c.MaxChunkChars <= 0 {
		c.MaxChunkChars = d.MaxChunkChars
	}
	if c.OverlapChars < 0 {
		c.OverlapChars = 0
	}
	if c.QuestionsPerChunk <= 0 {
		c.QuestionsPerChunk = d.QuestionsPerChunk
	}
	if c.RetryMaxAttempts <= 0 {
		c.RetryMaxAttempts = 1
	}
	if c.JobTTL <= 0 {
		c.JobTTL = d.JobTTL
	}
}

// Validate checks that the selected generator and store are usable.
func (c Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("FLASHGEST_API_KEY is required")
	}
	switch c.Generator {
	case GeneratorOllama, GeneratorRules:
	case GeneratorClaude:
		if c.AnthropicAPIKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY is required for the claude generator")
		}
	case GeneratorRemote:
		if c.MLServiceURL == "" {
			return fmt.Errorf("ML_SERVICE_URL is required for the remote generator")
		}
	default:
		return fmt.Errorf("unknown GENERATOR %q", c.Generator)
	}
	switch c.Store {
	case StorePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres store")
		}
	case StoreFile:
		if c.RecordsFile == "" {
			return fmt.Errorf("RECORDS_FILE is required for the file store")
		}
	default:
		return fmt.Errorf("unknown STORE %q", c.Store)
	}
	if c.OverlapChars >= c.MaxChunkChars {
		return fmt.Errorf("OVERLAP_CHARS (%d) must be smaller than MAX_CHUNK_CHARS (%d)", c.OverlapChars, c.MaxChunkChars)
	}
	return nil
}

// Chunking returns the chunker settings.
func (c Config) Chunking() chunker.Config {
	return chunker.Config{
		MaxChunkChars: c.MaxChunkChars,
		OverlapChars:  c.OverlapChars,
	}
}

// Quotas returns the aggregation limits.
func (c Config) Quotas() aggregate.Quotas {
	return aggregate.Quotas{
		MaxTotalChars:     c.MaxTotalChars,
		MaxTotalQuestions: c.MaxTotalQuestions,
		QuestionsPerChunk: c.QuestionsPerChunk,
	}
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

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
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
