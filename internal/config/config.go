// Package config provides configuration loading and validation for the CLI and server.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Defaults applied by MergeWithDefaults and the Duration helpers
const (
	DefaultProvider                 = "gemini"
	DefaultGenerationTimeoutSeconds = 60
	DefaultRenderTimeoutSeconds     = 30
	DefaultDiffSizeThreshold        = 50000
	DefaultPort                     = 8080
	DefaultRateLimitRPS             = 5.0
	DefaultRateLimitBurst           = 10
)

// Config represents the configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults or must be provided via CLI flags.
type Config struct {
	// Generation
	Provider string `json:"provider,omitempty"` // gemini or openai
	APIKey   string `json:"api_key,omitempty"`  // provider API key; env vars are preferred
	Model    string `json:"model,omitempty"`    // overrides the model used for rewrites

	// Edit behavior
	Strict                   bool `json:"strict,omitempty"`                     // strict-mode rewrites by default
	GenerationTimeoutSeconds int  `json:"generation_timeout_seconds,omitempty"` // bound on one generator call
	RenderTimeoutSeconds     int  `json:"render_timeout_seconds,omitempty"`     // bound on one render probe
	DiffSizeThreshold        int  `json:"diff_size_threshold,omitempty"`        // serialized size above which diffs are coarse
	LogContent               bool `json:"log_content,omitempty"`                // include section content in debug logs

	// Rendering
	CompileLaTeX        bool   `json:"compile_latex,omitempty"`         // run pdflatex during the render probe
	Template            string `json:"template,omitempty"`              // Path to LaTeX resume template
	CoverLetterTemplate string `json:"cover_letter_template,omitempty"` // Path to LaTeX cover letter template

	// Storage and server
	DatabaseURL    string  `json:"database_url,omitempty"`     // PostgreSQL connection URL
	Port           int     `json:"port,omitempty"`             // HTTP port for serve
	RateLimitRPS   float64 `json:"rate_limit_rps,omitempty"`   // per-client request rate
	RateLimitBurst int     `json:"rate_limit_burst,omitempty"` // per-client burst size

	Verbose bool `json:"verbose,omitempty"` // Print detailed debug information
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values.
// Note: This doesn't check for required fields since those are handled
// by CLI flag validation after merging.
func (c *Config) Validate() error {
	switch c.Provider {
	case "", "gemini", "openai":
	default:
		return fmt.Errorf("config error: unsupported provider %q (use gemini or openai)", c.Provider)
	}

	// Validate numeric ranges
	if c.GenerationTimeoutSeconds < 0 {
		return fmt.Errorf("config error: 'generation_timeout_seconds' must be non-negative")
	}
	if c.RenderTimeoutSeconds < 0 {
		return fmt.Errorf("config error: 'render_timeout_seconds' must be non-negative")
	}
	if c.DiffSizeThreshold < 0 {
		return fmt.Errorf("config error: 'diff_size_threshold' must be non-negative")
	}
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 0 and 65535")
	}
	if c.RateLimitRPS < 0 || c.RateLimitBurst < 0 {
		return fmt.Errorf("config error: rate limits must be non-negative")
	}

	// Validate file paths exist (if specified)
	for _, p := range []string{c.Template, c.CoverLetterTemplate} {
		if p == "" {
			continue
		}
		if _, err := os.Stat(p); os.IsNotExist(err) {
			return fmt.Errorf("config error: template file not found: %s", p)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.Provider == "" {
		result.Provider = defaults.Provider
	}
	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}
	if result.Model == "" {
		result.Model = defaults.Model
	}
	if result.Template == "" {
		result.Template = defaults.Template
	}
	if result.CoverLetterTemplate == "" {
		result.CoverLetterTemplate = defaults.CoverLetterTemplate
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}

	// Int fields: use default if zero
	if result.GenerationTimeoutSeconds == 0 {
		result.GenerationTimeoutSeconds = defaults.GenerationTimeoutSeconds
	}
	if result.RenderTimeoutSeconds == 0 {
		result.RenderTimeoutSeconds = defaults.RenderTimeoutSeconds
	}
	if result.DiffSizeThreshold == 0 {
		result.DiffSizeThreshold = defaults.DiffSizeThreshold
	}
	if result.Port == 0 {
		result.Port = defaults.Port
	}
	if result.RateLimitBurst == 0 {
		result.RateLimitBurst = defaults.RateLimitBurst
	}

	// Float fields
	if result.RateLimitRPS == 0 {
		result.RateLimitRPS = defaults.RateLimitRPS
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Provider:                 DefaultProvider,
		GenerationTimeoutSeconds: DefaultGenerationTimeoutSeconds,
		RenderTimeoutSeconds:     DefaultRenderTimeoutSeconds,
		DiffSizeThreshold:        DefaultDiffSizeThreshold,
		Port:                     DefaultPort,
		RateLimitRPS:             DefaultRateLimitRPS,
		RateLimitBurst:           DefaultRateLimitBurst,
	}
}

// GenerationTimeout returns the generator deadline, falling back to the default.
func (c *Config) GenerationTimeout() time.Duration {
	return seconds(c.GenerationTimeoutSeconds, DefaultGenerationTimeoutSeconds)
}

// RenderTimeout returns the render probe deadline, falling back to the default.
func (c *Config) RenderTimeout() time.Duration {
	return seconds(c.RenderTimeoutSeconds, DefaultRenderTimeoutSeconds)
}

func seconds(v, fallback int) time.Duration {
	if v <= 0 {
		v = fallback
	}
	return time.Duration(v) * time.Second
}

// ResolveAPIKey returns the API key for the configured provider, preferring
// the provider's environment variable over the config file.
func (c *Config) ResolveAPIKey() string {
	envVar := "GEMINI_API_KEY"
	if c.Provider == "openai" {
		envVar = "OPENAI_API_KEY"
	}
	if key := os.Getenv(envVar); key != "" {
		return key
	}
	return c.APIKey
}

// ResolveDatabaseURL returns DATABASE_URL from the environment, or the config value.
func (c *Config) ResolveDatabaseURL() string {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}
	return c.DatabaseURL
}
