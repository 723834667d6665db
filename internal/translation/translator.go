package translation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// ErrNoAPIKey is returned when a provider is used without credentials.
var ErrNoAPIKey = errors.New("API key not found")

// Translator translates text between two locales.
type Translator interface {
	Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error)
}

// OpenAITranslator translates with the OpenAI chat completion API.
type OpenAITranslator struct {
	apiKey string
	model  string
	client *openai.Client
}

// Option configures an OpenAITranslator.
type Option func(*openaiOptions)

type openaiOptions struct {
	model   string
	baseURL string
}

// WithModel selects the chat model.
func WithModel(model string) Option {
	return func(o *openaiOptions) {
		if model != "" {
			o.model = model
		}
	}
}

// WithBaseURL points the client at a different API endpoint.
func WithBaseURL(url string) Option {
	return func(o *openaiOptions) {
		o.baseURL = url
	}
}

// NewTranslator creates a new OpenAI translator
func NewTranslator(apiKey string, opts ...Option) *OpenAITranslator {
	o := openaiOptions{model: openai.GPT4oMini}
	for _, opt := range opts {
		opt(&o)
	}

	cfg := openai.DefaultConfig(apiKey)
	if o.baseURL != "" {
		cfg.BaseURL = o.baseURL
	}

	return &OpenAITranslator{
		apiKey: apiKey,
		model:  o.model,
		client: openai.NewClientWithConfig(cfg),
	}
}

// Model returns the chat model in use.
func (t *OpenAITranslator) Model() string {
	return t.model
}

// Translate asks the model for a bare translation of a food name.
func (t *OpenAITranslator) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	if t.apiKey == "" {
		return "", fmt.Errorf("OpenAI %w", ErrNoAPIKey)
	}

	req := openai.ChatCompletionRequest{
		Model: t.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You translate food names from a nutrition database. Respond with only the translation, nothing else.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt(text, sourceLang, targetLang),
			},
		},
		MaxTokens:   60,
		Temperature: 0.2,
	}

	resp, err := t.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no translation returned")
	}

	return cleanOutput(resp.Choices[0].Message.Content), nil
}

func prompt(text, sourceLang, targetLang string) string {
	return fmt.Sprintf("Translate the food name '%s' from %s to %s.", text, languageName(sourceLang), languageName(targetLang))
}

func languageName(code string) string {
	switch strings.ToLower(code) {
	case "zh-tw":
		return "Traditional Chinese"
	case "zh-cn", "zh":
		return "Chinese"
	case "en":
		return "English"
	default:
		return code
	}
}

// cleanOutput strips whitespace and the quotes models like to add.
func cleanOutput(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, "\"'`")
	return strings.TrimSpace(s)
}
