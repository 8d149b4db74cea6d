package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config holds the user-tunable settings read from config.json
type Config struct {
	Provider           string   `mapstructure:"provider" json:"provider"`
	Model              string   `mapstructure:"model" json:"model"`
	MaxTokens          int      `mapstructure:"maxTokens" json:"maxTokens"`
	Temperature        float64  `mapstructure:"temperature" json:"temperature"`
	CacheEnabled       bool     `mapstructure:"cacheEnabled" json:"cacheEnabled"`
	Debug              bool     `mapstructure:"debug" json:"debug"`
	MaxContextFiles    int      `mapstructure:"maxContextFiles" json:"maxContextFiles"`
	IgnoreDirs         []string `mapstructure:"ignoreDirs" json:"ignoreDirs"`
	MaxFileSizeKB      int      `mapstructure:"maxFileSizeKb" json:"maxFileSizeKb"`
	PreferredFileTypes []string `mapstructure:"preferredFileTypes" json:"preferredFileTypes"`
	SessionTimeout     int      `mapstructure:"sessionTimeout" json:"sessionTimeout"`
	CompletionTimeout  int      `mapstructure:"completionTimeout" json:"completionTimeout"`
	Theme              string   `mapstructure:"theme" json:"theme"`
	Port               int      `mapstructure:"port" json:"port"`
	EnableCLI          bool     `mapstructure:"enableCLI" json:"enableCLI"`
	EnableBrowser      bool     `mapstructure:"enableBrowser" json:"enableBrowser"`
}

const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// Models used when config.json names a provider but no model
const (
	DefaultOpenAIModel    = "gpt-4-turbo-preview"
	DefaultAnthropicModel = "claude-sonnet-4-5-20250929"
)

// DefaultModel returns the model used for provider when none is configured
func DefaultModel(provider string) string {
	if provider == ProviderAnthropic {
		return DefaultAnthropicModel
	}
	return DefaultOpenAIModel
}

// DefaultConfig returns the documented defaults
func DefaultConfig() *Config {
	return &Config{
		Provider:           ProviderOpenAI,
		Model:              DefaultOpenAIModel,
		MaxTokens:          4096,
		Temperature:        0.7,
		CacheEnabled:       true,
		Debug:              false,
		MaxContextFiles:    8,
		IgnoreDirs:         []string{"node_modules", ".git", ".next", "out", "dist", "build", "public"},
		MaxFileSizeKB:      200,
		PreferredFileTypes: []string{".tsx", ".ts", ".jsx", ".js", ".css", ".json", ".md"},
		SessionTimeout:     3600,
		CompletionTimeout:  120,
		Theme:              "matrix",
		Port:               3030,
		EnableCLI:          true,
		EnableBrowser:      true,
	}
}

// Load reads path over the defaults. A missing file yields the defaults and no
// error. A malformed file yields the defaults and the parse error so the caller
// can report it. Invalid individual values are reset to their defaults and
// reported through the returned error as well.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return DefaultConfig(), fmt.Errorf("read config %s: %w", path, err)
	}

	// Decode into a zero value so configured lists replace the defaults
	// instead of being merged into them element by element.
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("decode config %s: %w", path, err)
	}

	err := cfg.validate()
	if cfg.Model == "" {
		cfg.Model = DefaultModel(cfg.Provider)
	}
	if err != nil {
		return cfg, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

// setDefaults registers every default except model, which follows the provider
func setDefaults(v *viper.Viper) {
	def := DefaultConfig()
	v.SetDefault("provider", def.Provider)
	v.SetDefault("maxTokens", def.MaxTokens)
	v.SetDefault("temperature", def.Temperature)
	v.SetDefault("cacheEnabled", def.CacheEnabled)
	v.SetDefault("debug", def.Debug)
	v.SetDefault("maxContextFiles", def.MaxContextFiles)
	v.SetDefault("ignoreDirs", def.IgnoreDirs)
	v.SetDefault("maxFileSizeKb", def.MaxFileSizeKB)
	v.SetDefault("preferredFileTypes", def.PreferredFileTypes)
	v.SetDefault("sessionTimeout", def.SessionTimeout)
	v.SetDefault("completionTimeout", def.CompletionTimeout)
	v.SetDefault("theme", def.Theme)
	v.SetDefault("port", def.Port)
	v.SetDefault("enableCLI", def.EnableCLI)
	v.SetDefault("enableBrowser", def.EnableBrowser)
}

// validate resets out-of-range values to defaults and reports every reset
func (c *Config) validate() error {
	def := DefaultConfig()
	var errs []error

	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port must be between 1 and 65535, got %d", c.Port))
		c.Port = def.Port
	}
	if c.MaxContextFiles < 1 {
		errs = append(errs, fmt.Errorf("maxContextFiles must be positive, got %d", c.MaxContextFiles))
		c.MaxContextFiles = def.MaxContextFiles
	}
	if c.MaxFileSizeKB < 1 {
		errs = append(errs, fmt.Errorf("maxFileSizeKb must be positive, got %d", c.MaxFileSizeKB))
		c.MaxFileSizeKB = def.MaxFileSizeKB
	}
	if c.MaxTokens < 1 {
		errs = append(errs, fmt.Errorf("maxTokens must be positive, got %d", c.MaxTokens))
		c.MaxTokens = def.MaxTokens
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		errs = append(errs, fmt.Errorf("temperature must be within [0, 2], got %g", c.Temperature))
		c.Temperature = def.Temperature
	}
	if c.CompletionTimeout < 1 {
		c.CompletionTimeout = def.CompletionTimeout
	}
	if c.Provider != ProviderOpenAI && c.Provider != ProviderAnthropic {
		errs = append(errs, fmt.Errorf("provider must be %q or %q, got %q", ProviderOpenAI, ProviderAnthropic, c.Provider))
		c.Provider = def.Provider
	}
	return errors.Join(errs...)
}

// Save writes the configuration as indented JSON
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}

// MaxFileBytes is the per-file size ceiling in bytes
func (c *Config) MaxFileBytes() int64 {
	return int64(c.MaxFileSizeKB) * 1024
}

// SessionTimeoutDuration is how long a session may sit unused before it is loaded as idle
func (c *Config) SessionTimeoutDuration() time.Duration {
	return time.Duration(c.SessionTimeout) * time.Second
}

// CompletionTimeoutDuration bounds a single completion request
func (c *Config) CompletionTimeoutDuration() time.Duration {
	return time.Duration(c.CompletionTimeout) * time.Second
}

// APIKeyEnv names the environment variable holding the credential for the provider
func (c *Config) APIKeyEnv() string {
	if c.Provider == ProviderAnthropic {
		return "ANTHROPIC_API_KEY"
	}
	return "OPENAI_API_KEY"
}
