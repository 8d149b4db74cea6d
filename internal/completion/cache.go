package completion

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/rs/zerolog"

	"github.com/saeedalam/projectassistant/internal/storage"
)

// Cached answers repeated requests from the completion cache
type Cached struct {
	next     Service
	cache    *storage.CompletionCache
	provider string
	logger   zerolog.Logger
}

// NewCached wraps next with cache lookups
func NewCached(next Service, cache *storage.CompletionCache, provider string, logger zerolog.Logger) *Cached {
	return &Cached{next: next, cache: cache, provider: provider, logger: logger}
}

func (c *Cached) Complete(ctx context.Context, req Request) (string, error) {
	key := CacheKey(c.provider, req)

	if text, ok, err := c.cache.Get(key); err != nil {
		c.logger.Warn().Err(err).Msg("completion cache read failed")
	} else if ok {
		c.logger.Debug().Str("key", key[:12]).Msg("completion cache hit")
		return text, nil
	}

	text, err := c.next.Complete(ctx, req)
	if err != nil {
		return "", err
	}

	if err := c.cache.Put(key, c.provider, req.Model, text); err != nil {
		c.logger.Warn().Err(err).Msg("completion cache write failed")
	}
	return text, nil
}

// CacheKey hashes everything that influences the reply
func CacheKey(provider string, req Request) string {
	payload, _ := json.Marshal(struct {
		Provider    string  `json:"provider"`
		Model       string  `json:"model"`
		System      string  `json:"system"`
		User        string  `json:"user"`
		MaxTokens   int     `json:"maxTokens"`
		Temperature float64 `json:"temperature"`
	}{provider, req.Model, req.System, req.User, req.MaxTokens, req.Temperature})

	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}
