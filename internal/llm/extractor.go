package llm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/phone-manager/internal/common"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

const defaultCacheTTL = 24 * time.Hour

// Extractor asks a model for the fields in one message. Responses are cached
// by content so a retried cycle does not pay for the same call twice.
type Extractor struct {
	client    Client
	limiter   *rate.Limiter
	cache     *cache.Cache
	logger    *slog.Logger
	retryOpts common.RetryOptions
}

// NewExtractor wraps client with rate limiting, caching and retries from cfg.
func NewExtractor(client Client, cfg Config, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}

	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RateLimit)), 1)
	}

	maxAttempts := cfg.MaxRetries
	if maxAttempts <= 0 {
		maxAttempts = 1
	}
	delay := cfg.RetryDelay
	if delay <= 0 {
		delay = time.Second
	}

	return &Extractor{
		client:  client,
		limiter: limiter,
		cache:   cache.New(ttl, 2*ttl),
		logger:  logger,
		retryOpts: common.RetryOptions{
			MaxAttempts:  maxAttempts,
			InitialDelay: delay,
			MaxDelay:     30 * time.Second,
			Multiplier:   2.0,
		},
	}
}

// Extract returns the raw model response for content, or "" on any failure.
// Failures are logged and never returned.
func (e *Extractor) Extract(ctx context.Context, content string) string {
	resp, err := e.ExtractWithError(ctx, content)
	if err != nil {
		e.logger.Warn("extraction failed",
			"model", e.client.Name(),
			"error", err)
		return ""
	}
	return resp
}

// ExtractWithError is Extract without failure absorption.
func (e *Extractor) ExtractWithError(ctx context.Context, content string) (string, error) {
	key := cacheKey(e.client.Name(), content)
	if cached, found := e.cache.Get(key); found {
		e.logger.Debug("extraction cache hit", "key", key[:12])
		return cached.(string), nil
	}

	var resp string
	err := common.WithRetry(ctx, func() error {
		if err := e.limiter.Wait(ctx); err != nil {
			return &common.RetryableError{Err: fmt.Errorf("rate limiter: %w", err), Retryable: false}
		}
		var callErr error
		resp, callErr = e.client.Chat(ctx, ExtractionConversation(content))
		return callErr
	}, e.retryOpts)
	if err != nil {
		return "", fmt.Errorf("%w: %w", common.ErrExtraction, err)
	}

	e.cache.Set(key, resp, cache.DefaultExpiration)
	return resp, nil
}

// CachedCount reports how many responses are currently cached.
func (e *Extractor) CachedCount() int {
	return e.cache.ItemCount()
}

func cacheKey(model, content string) string {
	sum := sha256.Sum256([]byte(model + "\x00" + content))
	return hex.EncodeToString(sum[:])
}
