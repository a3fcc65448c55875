package common

import (
	"fmt"
	"os"
	"strconv"

	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration
type Config struct {
	Environment string           `toml:"environment"` // "development" or "production"
	Storage     StorageConfig    `toml:"storage"`
	Logging     LoggingConfig    `toml:"logging"`
	Claude      ClaudeConfig     `toml:"claude"`
	Gemini      GeminiConfig     `toml:"gemini"`
	LLM         LLMConfig        `toml:"llm"`
	Embeddings  EmbeddingsConfig `toml:"embeddings"`
	Pipeline    PipelineConfig   `toml:"pipeline"`
	Router      RouterConfig     `toml:"router"`
	Processing  ProcessingConfig `toml:"processing"`
	Questions   QuestionsConfig  `toml:"questions"`
}

type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path"`             // Database directory path
	ResetOnStartup bool   `toml:"reset_on_startup"` // Delete database on startup for clean test runs
}

type LoggingConfig struct {
	Level  string   `toml:"level"`  // "debug", "info", "warn", "error"
	Format string   `toml:"format"` // "json" or "text"
	Output []string `toml:"output"` // "stdout", "file"
}

// ClaudeConfig contains Anthropic Claude API configuration
type ClaudeConfig struct {
	APIKey      string  `toml:"api_key"`
	Model       string  `toml:"model"`
	Timeout     string  `toml:"timeout"`
	Temperature float32 `toml:"temperature"`
	MaxTokens   int     `toml:"max_tokens"`
}

// GeminiConfig contains Google Gemini API configuration
type GeminiConfig struct {
	APIKey         string  `toml:"api_key"`
	Model          string  `toml:"model"`
	EmbeddingModel string  `toml:"embedding_model"`
	Timeout        string  `toml:"timeout"`
	Temperature    float32 `toml:"temperature"`
	MaxTokens      int     `toml:"max_tokens"`
}

// LLMConfig contains provider selection settings
type LLMConfig struct {
	DefaultProvider string `toml:"default_provider"` // "claude" or "gemini"
	SmallModel      string `toml:"small_model"`      // constrained first-stage model for the router
	BaseModel       string `toml:"base_model"`       // larger fallback model for the router
}

// EmbeddingsConfig contains embedding generation settings
type EmbeddingsConfig struct {
	Dimension int `toml:"dimension"` // Expected vector dimensionality (provider-fixed)
}

// PipelineConfig contains excerpt/prompt/retrieval budgets for the batch pipeline
type PipelineConfig struct {
	ExcerptDelimiter   string `toml:"excerpt_delimiter"`   // Sentinel separating logical sections in ingested text
	MaxExcerptWords    int    `toml:"max_excerpt_words"`   // Word budget for stored excerpts
	MaxPromptChars     int    `toml:"max_prompt_chars"`    // Character budget for one extraction prompt
	TopK               int    `toml:"top_k"`               // Passages retrieved per question
	GenerationInterval string `toml:"generation_interval"` // Minimum spacing between model calls, e.g. "10s"
	GenerationTimeout  string `toml:"generation_timeout"`  // Per-call timeout for model generation
}

// RouterConfig contains two-stage answer routing settings
type RouterConfig struct {
	DirectAnswerMaxChars int `toml:"direct_answer_max_chars"` // Longest small-model answer returned without escalation
}

type ProcessingConfig struct {
	Enabled  bool   `toml:"enabled"`
	Schedule string `toml:"schedule"` // Cron schedule format (with seconds)
	Limit    int    `toml:"limit"`    // Max rows to embed per run (0 = unlimited)
}

// QuestionsConfig contains the standing analyst question bank configuration
type QuestionsConfig struct {
	File string `toml:"file"` // YAML file with question sets
}

// NewDefaultConfig returns a configuration with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path:           "./data/colligo",
				ResetOnStartup: false,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: []string{"stdout"},
		},
		Claude: ClaudeConfig{
			Model:       "claude-sonnet-4-20250514",
			Timeout:     "2m",
			Temperature: 0.0,
			MaxTokens:   8192,
		},
		Gemini: GeminiConfig{
			Model:          "gemini-2.5-flash",
			EmbeddingModel: "gemini-embedding-001",
			Timeout:        "2m",
			Temperature:    0.0,
			MaxTokens:      8192,
		},
		LLM: LLMConfig{
			DefaultProvider: "gemini",
			SmallModel:      "gemini-2.5-flash-lite",
			BaseModel:       "claude-sonnet-4-20250514",
		},
		Embeddings: EmbeddingsConfig{
			Dimension: 768,
		},
		Pipeline: PipelineConfig{
			ExcerptDelimiter:   "---||---",
			MaxExcerptWords:    400,
			MaxPromptChars:     5000,
			TopK:               5,
			GenerationInterval: "10s",
			GenerationTimeout:  "2m",
		},
		Router: RouterConfig{
			DirectAnswerMaxChars: 480,
		},
		Processing: ProcessingConfig{
			Enabled:  true,
			Schedule: "0 0 */6 * * *",
			Limit:    0,
		},
		Questions: QuestionsConfig{
			File: "./questions.yaml",
		},
	}
}

// LoadFromFiles loads configuration from multiple files with priority:
// default -> file1 -> file2 -> ... -> env. Later files override earlier files.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("COLLIGO_ENV"); env != "" {
		config.Environment = env
	} else if env := os.Getenv("GO_ENV"); env != "" {
		config.Environment = env
	}

	if badgerPath := os.Getenv("COLLIGO_BADGER_PATH"); badgerPath != "" {
		config.Storage.Badger.Path = badgerPath
	}

	if level := os.Getenv("COLLIGO_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if apiKey := os.Getenv("ANTHROPIC_API_KEY"); apiKey != "" {
		config.Claude.APIKey = apiKey
	}
	if apiKey := os.Getenv("COLLIGO_CLAUDE_API_KEY"); apiKey != "" {
		config.Claude.APIKey = apiKey
	}

	if apiKey := os.Getenv("GEMINI_API_KEY"); apiKey != "" {
		config.Gemini.APIKey = apiKey
	}
	if apiKey := os.Getenv("COLLIGO_GEMINI_API_KEY"); apiKey != "" {
		config.Gemini.APIKey = apiKey
	}

	if provider := os.Getenv("COLLIGO_LLM_PROVIDER"); provider != "" {
		config.LLM.DefaultProvider = provider
	}

	if topK := os.Getenv("COLLIGO_TOP_K"); topK != "" {
		if v, err := strconv.Atoi(topK); err == nil && v >= 0 {
			config.Pipeline.TopK = v
		}
	}

	if maxWords := os.Getenv("COLLIGO_MAX_EXCERPT_WORDS"); maxWords != "" {
		if v, err := strconv.Atoi(maxWords); err == nil && v > 0 {
			config.Pipeline.MaxExcerptWords = v
		}
	}
}

// DirectAnswerLimit returns the router threshold, falling back to the default
// when the config carries zero (unset TOML section).
func (c *Config) DirectAnswerLimit() int {
	if c.Router.DirectAnswerMaxChars <= 0 {
		return 480
	}
	return c.Router.DirectAnswerMaxChars
}
