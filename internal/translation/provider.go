package translation

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var errEmptyTranslation = errors.New("empty translation")

// Config holds translation settings.
type Config struct {
	Provider        string        `mapstructure:"provider" default:"openai"`
	Model           string        `mapstructure:"model" default:""`
	SourceLang      string        `mapstructure:"source_lang" default:"zh-TW"`
	TargetLang      string        `mapstructure:"target_lang" default:"en"`
	Delay           time.Duration `mapstructure:"delay" default:"500ms"`
	BreakerFailures int           `mapstructure:"breaker_failures" default:"5"`
	BreakerTimeout  time.Duration `mapstructure:"breaker_timeout" default:"30s"`
	BaseURL         string        `mapstructure:"base_url" default:""`

	// Keys are resolved from the environment by the cli package.
	OpenAIKey string `mapstructure:"openai_key" default:""`
	GeminiKey string `mapstructure:"gemini_key" default:""`
}

// NewProvider creates the bare provider named in the configuration.
func NewProvider(ctx context.Context, cfg *Config) (Translator, error) {
	switch cfg.Provider {
	case "", "openai":
		if cfg.OpenAIKey == "" {
			return nil, fmt.Errorf("OpenAI %w", ErrNoAPIKey)
		}
		return NewTranslator(cfg.OpenAIKey, WithModel(cfg.Model), WithBaseURL(cfg.BaseURL)), nil

	case "gemini":
		return NewGeminiTranslator(ctx, cfg.GeminiKey, cfg.Model)

	default:
		return nil, fmt.Errorf("unknown translation provider: %s", cfg.Provider)
	}
}

// NewFromConfig returns the configured provider wrapped in a throttle and a
// circuit breaker. The provider is created on the first translation, so a
// missing key only matters once something needs translating. An unknown
// provider name fails here.
func NewFromConfig(cfg *Config) (Translator, error) {
	switch cfg.Provider {
	case "", "openai", "gemini":
	default:
		return nil, fmt.Errorf("unknown translation provider: %s", cfg.Provider)
	}

	return NewLazy(func(ctx context.Context) (Translator, error) {
		provider, err := NewProvider(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return Wrap(provider, cfg), nil
	}), nil
}

// Wrap applies the throttle and breaker from cfg to tr.
func Wrap(tr Translator, cfg *Config) Translator {
	return NewBreaker(NewThrottle(tr, cfg.Delay), cfg.BreakerFailures, cfg.BreakerTimeout)
}
