package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/colortune/internal/provider"
)

// noEnvFile points Load at a .env that does not exist.
func noEnvFile(t *testing.T) []string {
	return []string{filepath.Join(t.TempDir(), ".env")}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(Options{EnvFiles: noEnvFile(t)})
	require.NoError(t, err)

	assert.Equal(t, provider.NameOpenAI, cfg.Provider)
	assert.Equal(t, 4096, cfg.MaxTokens)
	assert.Equal(t, 120*time.Second, cfg.AITimeout)
	assert.Equal(t, 800, cfg.PreviewMaxWidth)
	assert.Equal(t, 95, cfg.JPEGQuality)
	assert.Equal(t, 4, cfg.StyleCount)
	assert.Equal(t, 3, cfg.SuggestionCount)
	assert.Equal(t, "./data", cfg.StorageDir)
	assert.GreaterOrEqual(t, cfg.MaxParallel, 1)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("COLORTUNE_PROVIDER", "Claude")
	t.Setenv("COLORTUNE_AI_TIMEOUT", "45s")
	t.Setenv("COLORTUNE_PREVIEW_MAX_WIDTH", "1024")
	t.Setenv("ANTHROPIC_API_KEY", "vendor-key")

	cfg, err := Load(Options{EnvFiles: noEnvFile(t)})
	require.NoError(t, err)
	assert.Equal(t, provider.NameClaude, cfg.Provider)
	assert.Equal(t, 45*time.Second, cfg.AITimeout)
	assert.Equal(t, 1024, cfg.PreviewMaxWidth)
	assert.Equal(t, "vendor-key", cfg.ClaudeAPIKey)
}

func TestPrefixedKeyWinsOverVendorKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "vendor")
	t.Setenv("COLORTUNE_OPENAI_API_KEY", "prefixed")

	cfg, err := Load(Options{EnvFiles: noEnvFile(t)})
	require.NoError(t, err)
	assert.Equal(t, "prefixed", cfg.OpenAIAPIKey)
}

func TestLoadConfigFileAndOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "colortune.yaml")
	require.NoError(t, os.WriteFile(path, []byte("provider: gemini\njpeg_quality: 80\nstorage_dir: /tmp/ct\n"), 0o600))

	cfg, err := Load(Options{
		ConfigFile: path,
		EnvFiles:   noEnvFile(t),
		Overrides:  map[string]string{"model": "gemini-2.5-pro", "provider": ""},
	})
	require.NoError(t, err)
	assert.Equal(t, provider.NameGemini, cfg.Provider)
	assert.Equal(t, 80, cfg.JPEGQuality)
	assert.Equal(t, "/tmp/ct", cfg.StorageDir)
	assert.Equal(t, "gemini-2.5-pro", cfg.Model)
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("COLORTUNE_QWEN_API_KEY=from-dotenv\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("COLORTUNE_QWEN_API_KEY") })

	cfg, err := Load(Options{EnvFiles: []string{envFile}})
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.QwenAPIKey)
	assert.Equal(t, "from-dotenv", cfg.APIKeys()[provider.NameQwen])
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"unknown provider", map[string]string{"COLORTUNE_PROVIDER": "llama"}},
		{"plugin without path", map[string]string{"COLORTUNE_PROVIDER": "plugin"}},
		{"quality too high", map[string]string{"COLORTUNE_JPEG_QUALITY": "101"}},
		{"preview too small", map[string]string{"COLORTUNE_PREVIEW_MAX_WIDTH": "10"}},
		{"bad base url", map[string]string{"COLORTUNE_OPENAI_BASE_URL": "not a url"}},
		{"zero timeout", map[string]string{"COLORTUNE_AI_TIMEOUT": "0s"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load(Options{EnvFiles: noEnvFile(t)})
			assert.ErrorContains(t, err, "failed to validate config")
		})
	}
}

func TestLoadMissingConfigFile(t *testing.T) {
	_, err := Load(Options{ConfigFile: filepath.Join(t.TempDir(), "none.yaml"), EnvFiles: noEnvFile(t)})
	assert.ErrorContains(t, err, "failed to read config file")
}

func TestRegistry(t *testing.T) {
	t.Setenv("COLORTUNE_PROVIDER", "plugin")
	t.Setenv("COLORTUNE_PLUGIN_PATH", "/usr/local/bin/replay")
	t.Setenv("COLORTUNE_OPENAI_BASE_URL", "http://localhost:8080/v1")

	cfg, err := Load(Options{EnvFiles: noEnvFile(t)})
	require.NoError(t, err)

	rc := cfg.Registry()
	assert.Equal(t, "plugin", rc.Provider)
	assert.Equal(t, "/usr/local/bin/replay", rc.PluginPath)
	assert.Equal(t, "http://localhost:8080/v1", rc.BaseURLs[provider.NameOpenAI])
	assert.Equal(t, 4096, rc.MaxTokens)
}
