package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_ValidJSON(t *testing.T) {
	content := `{
		"provider": "openai",
		"model": "gpt-4o",
		"strict": true,
		"generation_timeout_seconds": 45,
		"diff_size_threshold": 1000,
		"rate_limit_rps": 2.5,
		"verbose": true
	}`

	tmpFile := filepath.Join(t.TempDir(), "config.json")
	err := os.WriteFile(tmpFile, []byte(content), 0644)
	require.NoError(t, err)

	cfg, err := LoadConfig(tmpFile)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "openai", cfg.Provider)
	assert.Equal(t, "gpt-4o", cfg.Model)
	assert.True(t, cfg.Strict)
	assert.Equal(t, 45, cfg.GenerationTimeoutSeconds)
	assert.Equal(t, 1000, cfg.DiffSizeThreshold)
	assert.Equal(t, 2.5, cfg.RateLimitRPS)
	assert.True(t, cfg.Verbose)
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	content := `{ invalid json }`

	tmpFile := filepath.Join(t.TempDir(), "config.json")
	err := os.WriteFile(tmpFile, []byte(content), 0644)
	require.NoError(t, err)

	cfg, err := LoadConfig(tmpFile)
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to parse config JSON")
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/path/config.json")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	cfg, err := LoadConfig("")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "config path is empty")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{"valid", Config{Provider: "gemini", Port: 8080, GenerationTimeoutSeconds: 10}, ""},
		{"empty is valid", Config{}, ""},
		{"unknown provider", Config{Provider: "anthropic"}, "unsupported provider"},
		{"negative timeout", Config{GenerationTimeoutSeconds: -1}, "generation_timeout_seconds"},
		{"negative render timeout", Config{RenderTimeoutSeconds: -5}, "render_timeout_seconds"},
		{"negative diff threshold", Config{DiffSizeThreshold: -1}, "diff_size_threshold"},
		{"port out of range", Config{Port: 70000}, "port"},
		{"negative rate", Config{RateLimitRPS: -1}, "rate limits"},
		{"missing template", Config{Template: "/nonexistent/resume.tex.tmpl"}, "template file not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestMergeWithDefaults(t *testing.T) {
	partial := Config{
		Provider:     "openai",
		Template:     "custom.tex.tmpl",
		RateLimitRPS: 1,
	}

	merged := partial.MergeWithDefaults(Defaults())

	// Custom values should be preserved
	assert.Equal(t, "openai", merged.Provider)
	assert.Equal(t, "custom.tex.tmpl", merged.Template)
	assert.Equal(t, 1.0, merged.RateLimitRPS)

	// Default values should fill in empty fields
	assert.Equal(t, DefaultGenerationTimeoutSeconds, merged.GenerationTimeoutSeconds)
	assert.Equal(t, DefaultRenderTimeoutSeconds, merged.RenderTimeoutSeconds)
	assert.Equal(t, DefaultDiffSizeThreshold, merged.DiffSizeThreshold)
	assert.Equal(t, DefaultPort, merged.Port)
	assert.Equal(t, DefaultRateLimitBurst, merged.RateLimitBurst)
}

func TestMergeWithDefaults_EmptyDefaults(t *testing.T) {
	cfg := Config{Provider: "gemini", Port: 9000}

	merged := cfg.MergeWithDefaults(Config{})

	assert.Equal(t, "gemini", merged.Provider)
	assert.Equal(t, 9000, merged.Port)
	assert.Zero(t, merged.GenerationTimeoutSeconds)
}

func TestTimeouts(t *testing.T) {
	cfg := Config{GenerationTimeoutSeconds: 5}
	assert.Equal(t, 5*time.Second, cfg.GenerationTimeout())
	assert.Equal(t, 30*time.Second, cfg.RenderTimeout())
}

func TestResolveAPIKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "sk-env")

	cfg := Config{Provider: "openai", APIKey: "from-file"}
	assert.Equal(t, "sk-env", cfg.ResolveAPIKey())

	cfg = Config{Provider: "gemini", APIKey: "from-file"}
	assert.Equal(t, "from-file", cfg.ResolveAPIKey())
}

func TestResolveDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://env/db")
	cfg := Config{DatabaseURL: "postgres://file/db"}
	assert.Equal(t, "postgres://env/db", cfg.ResolveDatabaseURL())
}
