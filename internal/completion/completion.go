// Package completion sends rendered prompts to a chat completion provider.
package completion

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/saeedalam/projectassistant/internal/config"
	"github.com/saeedalam/projectassistant/internal/storage"
)

// ErrNoContent is returned when the provider answers without any text
var ErrNoContent = errors.New("completion returned no content")

// Request is one system/user exchange
type Request struct {
	System      string
	User        string
	Model       string
	MaxTokens   int
	Temperature float64
}

// Service produces the assistant reply for a request
type Service interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// APIError is a non-success answer from the provider
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.StatusCode == 0 {
		return e.Message
	}
	return fmt.Sprintf("API error %d: %s", e.StatusCode, e.Message)
}

// Options configures provider construction
type Options struct {
	APIKey  string
	BaseURL string // empty uses the provider default
	Cache   *storage.CompletionCache
	Logger  zerolog.Logger
}

// New builds the provider selected in cfg, wrapped in the cache when one is
// given and caching is enabled
func New(cfg *config.Config, opts Options) (Service, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("missing API key for provider %s", cfg.Provider)
	}

	var svc Service
	switch cfg.Provider {
	case config.ProviderOpenAI:
		svc = NewOpenAI(opts.APIKey, opts.BaseURL)
	case config.ProviderAnthropic:
		svc = NewAnthropic(opts.APIKey, opts.BaseURL)
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}

	if cfg.CacheEnabled && opts.Cache != nil {
		svc = NewCached(svc, opts.Cache, cfg.Provider, opts.Logger)
	}
	return svc, nil
}
