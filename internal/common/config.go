package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration
type Config struct {
	Environment string          `toml:"environment"` // "development" or "production"
	Server      ServerConfig    `toml:"server"`
	Storage     StorageConfig   `toml:"storage"`
	Logging     LoggingConfig   `toml:"logging"`
	Auth        AuthConfig      `toml:"auth"`
	Search      SearchConfig    `toml:"search"`
	Extractor   ExtractorConfig `toml:"extractor"`
	Gemini      GeminiConfig    `toml:"gemini"`
	Claude      ClaudeConfig    `toml:"claude"`
	LLM         LLMConfig       `toml:"llm"`
	Pipeline    PipelineConfig  `toml:"pipeline"`
	WebSocket   WebSocketConfig `toml:"websocket"`
	Maintenance MaintConfig     `toml:"maintenance"`
}

type ServerConfig struct {
	Port int    `toml:"port" validate:"gt=0,lte=65535"`
	Host string `toml:"host" validate:"required"`
}

type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path" validate:"required"` // Database directory path
	ResetOnStartup bool   `toml:"reset_on_startup"`         // Delete database on startup for clean test runs
}

type LoggingConfig struct {
	Level  string   `toml:"level"`  // "debug", "info", "warn", "error"
	Output []string `toml:"output"` // "stdout", "file"
}

// AuthConfig contains JWT session configuration
type AuthConfig struct {
	JWTSecret string `toml:"jwt_secret"` // Signing secret; required outside development
	TokenTTL  string `toml:"token_ttl"`  // Token lifetime as duration string (default: "24h")
}

// SearchConfig contains web search provider configuration
// (Google Programmable Search JSON API)
type SearchConfig struct {
	APIKey         string        `toml:"api_key"`         // Google API key
	EngineID       string        `toml:"engine_id"`       // Programmable Search engine ID (cx)
	DomainScope    string        `toml:"domain_scope"`    // Optional siteSearch restriction
	MaxResults     int           `toml:"max_results"`     // Result limit per query (default: 3)
	RequestTimeout time.Duration `toml:"request_timeout"` // Per-call deadline
}

// ExtractorConfig contains two-tier content extraction configuration
type ExtractorConfig struct {
	UserAgent        string        `toml:"user_agent"`          // Outbound user agent
	RequestTimeout   time.Duration `toml:"request_timeout"`     // Tier-1 HTTP fetch deadline
	RequestRate      time.Duration `toml:"request_rate"`        // Minimum interval between outbound fetches
	MaxBodySize      int64         `toml:"max_body_size"`       // Maximum response body size in bytes
	MinContentLength int           `toml:"min_content_length"`  // Tier-1 acceptance threshold in characters
	MaxConcurrency   int           `toml:"max_concurrency"`     // Concurrent extractions per pipeline run
	RenderInstances  int           `toml:"render_instances"`    // Headless browser pool size
	RenderTimeout    time.Duration `toml:"render_timeout"`      // Hard per-page render deadline
	RenderWaitTime   time.Duration `toml:"render_wait_time"`    // Settle time after DOM ready
	DisableRendering bool          `toml:"disable_rendering"`   // Skip Tier-2 entirely (no Chrome available)
}

// GeminiConfig contains Google Gemini API configuration
type GeminiConfig struct {
	APIKey      string  `toml:"api_key"`     // Google Gemini API key
	Model       string  `toml:"model"`       // Chat model (default: "gemini-2.0-flash")
	Timeout     string  `toml:"timeout"`     // Operation timeout as duration string (default: "2m")
	Temperature float32 `toml:"temperature"` // Completion temperature (default: 0.7)
	MaxTokens   int     `toml:"max_tokens"`  // Maximum tokens in response (default: 1024)
}

// ClaudeConfig contains Anthropic Claude API configuration
type ClaudeConfig struct {
	APIKey      string  `toml:"api_key"`     // Anthropic API key
	Model       string  `toml:"model"`       // Chat model (default: "claude-haiku-3-5-20241022")
	Timeout     string  `toml:"timeout"`     // Operation timeout as duration string (default: "2m")
	Temperature float32 `toml:"temperature"` // Completion temperature (default: 0.7)
	MaxTokens   int     `toml:"max_tokens"`  // Maximum tokens in response (default: 1024)
}

// LLMProvider represents the AI provider type
type LLMProvider string

const (
	// LLMProviderGemini uses Google Gemini API
	LLMProviderGemini LLMProvider = "gemini"
	// LLMProviderClaude uses Anthropic Claude API
	LLMProviderClaude LLMProvider = "claude"
)

// LLMConfig contains unified configuration for AI providers
type LLMConfig struct {
	DefaultProvider LLMProvider `toml:"default_provider"` // "gemini" or "claude" (default: "gemini")
}

// PipelineConfig contains response pipeline tuning
type PipelineConfig struct {
	HistoryLimit   int `toml:"history_limit"`    // Max prior turns carried into the prompt (0 = all)
	ContextCharCap int `toml:"context_char_cap"` // Per-article character budget in the context turn
}

// WebSocketConfig contains configuration for pipeline event streaming
type WebSocketConfig struct {
	AllowedEvents    []string `toml:"allowed_events"`    // Whitelist of event types to broadcast (empty = all)
	ThrottleInterval string   `toml:"throttle_interval"` // Minimum interval between broadcast stage events, shared across connections
}

// MaintConfig contains background maintenance configuration
type MaintConfig struct {
	Enabled    bool   `toml:"enabled"`
	GCSchedule string `toml:"gc_schedule"` // Cron schedule for Badger value-log GC
}

// NewDefaultConfig creates a configuration with default values.
// Technical parameters are hardcoded here for production stability;
// only user-facing settings should be exposed in the TOML file.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port: 8080,
			Host: "localhost",
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path: "./data",
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: []string{"stdout", "file"},
		},
		Auth: AuthConfig{
			JWTSecret: "",
			TokenTTL:  "24h",
		},
		Search: SearchConfig{
			APIKey:         "",
			EngineID:       "",
			DomainScope:    "",
			MaxResults:     3,
			RequestTimeout: 10 * time.Second,
		},
		Extractor: ExtractorConfig{
			UserAgent:        "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			RequestTimeout:   15 * time.Second,
			RequestRate:      500 * time.Millisecond,
			MaxBodySize:      10 * 1024 * 1024, // 10MB
			MinContentLength: 200,
			MaxConcurrency:   3,
			RenderInstances:  2,
			RenderTimeout:    30 * time.Second,
			RenderWaitTime:   3 * time.Second,
		},
		Gemini: GeminiConfig{
			APIKey:      "",
			Model:       "gemini-2.0-flash",
			Timeout:     "2m",
			Temperature: 0.7,
			MaxTokens:   1024,
		},
		Claude: ClaudeConfig{
			APIKey:      "",
			Model:       "claude-haiku-3-5-20241022",
			Timeout:     "2m",
			Temperature: 0.7,
			MaxTokens:   1024,
		},
		LLM: LLMConfig{
			DefaultProvider: LLMProviderGemini,
		},
		Pipeline: PipelineConfig{
			HistoryLimit:   0,
			ContextCharCap: 2000,
		},
		WebSocket: WebSocketConfig{
			AllowedEvents:    []string{},
			ThrottleInterval: "200ms",
		},
		Maintenance: MaintConfig{
			Enabled:    true,
			GCSchedule: "0 0 3 * * *", // Daily at 03:00
		},
	}
}

// LoadFromFile loads configuration with priority: default -> file -> env -> CLI
func LoadFromFile(path string) (*Config, error) {
	if path == "" {
		return LoadFromFiles()
	}
	return LoadFromFiles(path)
}

// LoadFromFiles loads configuration from multiple files; later files override
// earlier ones. Priority: CLI flags > env > last file > ... > first file > defaults.
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

// Validate checks structural constraints on the resolved configuration
func (c *Config) Validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if c.Environment == "production" && c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required in production")
	}
	return nil
}

// ApplyFlagOverrides applies command-line flag overrides (highest priority)
func ApplyFlagOverrides(config *Config, port int, host string) {
	if port > 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("AICHAT_ENV"); env != "" {
		config.Environment = env
	} else if env := os.Getenv("GO_ENV"); env != "" {
		config.Environment = env
	}

	// Server configuration
	if port := os.Getenv("AICHAT_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("AICHAT_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}

	// Storage configuration
	if badgerPath := os.Getenv("AICHAT_BADGER_PATH"); badgerPath != "" {
		config.Storage.Badger.Path = badgerPath
	}

	// Logging configuration
	if level := os.Getenv("AICHAT_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if output := os.Getenv("AICHAT_LOG_OUTPUT"); output != "" {
		outputs := []string{}
		for _, o := range strings.Split(output, ",") {
			if trimmed := strings.TrimSpace(o); trimmed != "" {
				outputs = append(outputs, trimmed)
			}
		}
		if len(outputs) > 0 {
			config.Logging.Output = outputs
		}
	}

	// Auth configuration
	if secret := os.Getenv("AICHAT_JWT_SECRET"); secret != "" {
		config.Auth.JWTSecret = secret
	}
	if ttl := os.Getenv("AICHAT_TOKEN_TTL"); ttl != "" {
		config.Auth.TokenTTL = ttl
	}

	// Search configuration
	if apiKey := os.Getenv("AICHAT_SEARCH_API_KEY"); apiKey != "" {
		config.Search.APIKey = apiKey
	} else if apiKey := os.Getenv("GOOGLE_SEARCH_API_KEY"); apiKey != "" {
		config.Search.APIKey = apiKey
	}
	if engineID := os.Getenv("AICHAT_SEARCH_ENGINE_ID"); engineID != "" {
		config.Search.EngineID = engineID
	}
	if scope := os.Getenv("AICHAT_SEARCH_DOMAIN_SCOPE"); scope != "" {
		config.Search.DomainScope = scope
	}
	if maxResults := os.Getenv("AICHAT_SEARCH_MAX_RESULTS"); maxResults != "" {
		if mr, err := strconv.Atoi(maxResults); err == nil {
			config.Search.MaxResults = mr
		}
	}

	// Extractor configuration
	if userAgent := os.Getenv("AICHAT_EXTRACTOR_USER_AGENT"); userAgent != "" {
		config.Extractor.UserAgent = userAgent
	}
	if timeout := os.Getenv("AICHAT_EXTRACTOR_REQUEST_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil {
			config.Extractor.RequestTimeout = d
		}
	}
	if minLen := os.Getenv("AICHAT_EXTRACTOR_MIN_CONTENT_LENGTH"); minLen != "" {
		if ml, err := strconv.Atoi(minLen); err == nil {
			config.Extractor.MinContentLength = ml
		}
	}
	if maxConc := os.Getenv("AICHAT_EXTRACTOR_MAX_CONCURRENCY"); maxConc != "" {
		if mc, err := strconv.Atoi(maxConc); err == nil {
			config.Extractor.MaxConcurrency = mc
		}
	}
	if disable := os.Getenv("AICHAT_EXTRACTOR_DISABLE_RENDERING"); disable != "" {
		if b, err := strconv.ParseBool(disable); err == nil {
			config.Extractor.DisableRendering = b
		}
	}

	// LLM provider configuration
	if apiKey := os.Getenv("GEMINI_API_KEY"); apiKey != "" {
		config.Gemini.APIKey = apiKey
	}
	if model := os.Getenv("AICHAT_GEMINI_MODEL"); model != "" {
		config.Gemini.Model = model
	}
	if apiKey := os.Getenv("ANTHROPIC_API_KEY"); apiKey != "" {
		config.Claude.APIKey = apiKey
	}
	if model := os.Getenv("AICHAT_CLAUDE_MODEL"); model != "" {
		config.Claude.Model = model
	}
	if provider := os.Getenv("AICHAT_LLM_PROVIDER"); provider != "" {
		config.LLM.DefaultProvider = LLMProvider(provider)
	}
}
