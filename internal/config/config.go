// Package config loads colortune settings from defaults, an optional config
// file, a .env file and the environment, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"reflect"
	"runtime"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/jmylchreest/colortune/internal/provider"
	"github.com/jmylchreest/colortune/internal/provider/registry"
)

// EnvPrefix prefixes every environment variable, e.g. COLORTUNE_PROVIDER.
const EnvPrefix = "COLORTUNE"

// Config holds all settings.
type Config struct {
	Provider   string `mapstructure:"provider" validate:"oneof=openai claude gemini deepseek glm qwen plugin"`
	Model      string `mapstructure:"model"`
	MaxTokens  int    `mapstructure:"max_tokens" validate:"gte=256,lte=65536"`
	PluginPath string `mapstructure:"plugin_path" validate:"required_if=Provider plugin"`

	OpenAIAPIKey   string `mapstructure:"openai_api_key"`
	OpenAIBaseURL  string `mapstructure:"openai_base_url" validate:"omitempty,url"`
	ClaudeAPIKey   string `mapstructure:"claude_api_key"`
	GeminiAPIKey   string `mapstructure:"gemini_api_key"`
	DeepSeekAPIKey string `mapstructure:"deepseek_api_key"`
	GLMAPIKey      string `mapstructure:"glm_api_key"`
	QwenAPIKey     string `mapstructure:"qwen_api_key"`

	AITimeout       time.Duration `mapstructure:"ai_timeout" validate:"gt=0"`
	PreviewMaxWidth int           `mapstructure:"preview_max_width" validate:"gte=64,lte=8192"`
	JPEGQuality     int           `mapstructure:"jpeg_quality" validate:"gte=1,lte=100"`
	MaxParallel     int           `mapstructure:"max_parallel" validate:"gte=1,lte=64"`
	StyleCount      int           `mapstructure:"style_count" validate:"gte=1,lte=8"`
	SuggestionCount int           `mapstructure:"suggestion_count" validate:"gte=1,lte=8"`

	StorageDir       string `mapstructure:"storage_dir" validate:"required"`
	AllowPrivateURLs bool   `mapstructure:"allow_private_urls"`
	PromptDir        string `mapstructure:"prompt_dir"`
	PresetDir        string `mapstructure:"preset_dir"`
}

// Options controls where Load looks.
type Options struct {
	// ConfigFile is an optional yaml, toml or json file.
	ConfigFile string
	// EnvFiles are loaded with godotenv; missing files are ignored.
	// Empty means ".env".
	EnvFiles []string
	// Overrides win over every other source. Empty strings are skipped.
	Overrides map[string]string
}

// vendorEnv maps keys to the variable names their vendors document.
var vendorEnv = map[string]string{
	"openai_api_key":   "OPENAI_API_KEY",
	"openai_base_url":  "OPENAI_BASE_URL",
	"claude_api_key":   "ANTHROPIC_API_KEY",
	"gemini_api_key":   "GOOGLE_API_KEY",
	"deepseek_api_key": "DEEPSEEK_API_KEY",
	"glm_api_key":      "GLM_API_KEY",
	"qwen_api_key":     "DASHSCOPE_API_KEY",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("provider", provider.NameOpenAI)
	v.SetDefault("max_tokens", provider.DefaultMaxTokens)
	v.SetDefault("ai_timeout", 120*time.Second)
	v.SetDefault("preview_max_width", 800)
	v.SetDefault("jpeg_quality", 95)
	v.SetDefault("max_parallel", min(runtime.NumCPU(), 8))
	v.SetDefault("style_count", provider.DefaultStyleCount)
	v.SetDefault("suggestion_count", provider.DefaultSuggestionCount)
	v.SetDefault("storage_dir", "./data")
	v.SetDefault("allow_private_urls", false)
}

// bindEnv binds every mapstructure tag to COLORTUNE_<TAG> and, for API
// keys, to the vendor's own variable as a fallback.
func bindEnv(v *viper.Viper, c Config) error {
	typ := reflect.TypeOf(c)
	for i := 0; i < typ.NumField(); i++ {
		tag := typ.Field(i).Tag.Get("mapstructure")
		if tag == "" {
			continue
		}
		names := []string{EnvPrefix + "_" + strings.ToUpper(tag)}
		if vendor, ok := vendorEnv[tag]; ok {
			names = append(names, vendor)
		}
		if err := v.BindEnv(append([]string{tag}, names...)...); err != nil {
			return fmt.Errorf("failed to bind %s: %w", tag, err)
		}
	}
	return nil
}

// Load reads and validates the configuration.
func Load(opts Options) (*Config, error) {
	envFiles := opts.EnvFiles
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", f, err)
		}
	}

	v := viper.New()
	setDefaults(v)
	if err := bindEnv(v, Config{}); err != nil {
		return nil, err
	}

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	for key, value := range opts.Overrides {
		if value != "" {
			v.Set(key, value)
		}
	}

	cfg := Config{}
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.Provider = strings.ToLower(strings.TrimSpace(cfg.Provider))

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("failed to validate config: %w", err)
	}
	return &cfg, nil
}

// APIKeys returns the configured keys by provider name.
func (c *Config) APIKeys() map[string]string {
	return map[string]string{
		provider.NameOpenAI:   c.OpenAIAPIKey,
		provider.NameClaude:   c.ClaudeAPIKey,
		provider.NameGemini:   c.GeminiAPIKey,
		provider.NameDeepSeek: c.DeepSeekAPIKey,
		provider.NameGLM:      c.GLMAPIKey,
		provider.NameQwen:     c.QwenAPIKey,
	}
}

// Registry returns the provider factory settings.
func (c *Config) Registry() registry.Config {
	return registry.Config{
		Provider:   c.Provider,
		Model:      c.Model,
		APIKeys:    c.APIKeys(),
		BaseURLs:   map[string]string{provider.NameOpenAI: c.OpenAIBaseURL},
		PluginPath: c.PluginPath,
		MaxTokens:  c.MaxTokens,
	}
}
