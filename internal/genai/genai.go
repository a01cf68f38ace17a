// Package genai provides optional OpenAI-backed narration for generated show events.
package genai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/BTreeMap/ShowDirector/internal/mode"
	"github.com/BTreeMap/ShowDirector/internal/models"
)

// Default generation parameters
const (
	DefaultModel               = string(openai.ChatModelGPT4oMini)
	DefaultTemperature         = 0.7
	DefaultMaxCompletionTokens = 80
)

var (
	ErrNoAPIKey          = errors.New("OpenAI API key not set")
	ErrNoChoicesReturned = errors.New("no choices returned")
)

const briefingSystemPrompt = "Eres la jefa de escena de un show en vivo. " +
	"Resume la incidencia en una sola frase urgente de menos de 25 palabras, en español, sin emojis."

// chatService defines minimal interface for chat completions.
type chatService interface {
	Create(ctx context.Context, params openai.ChatCompletionNewParams) (openai.ChatCompletion, error)
}

// openAIChat adapts the SDK chat completion service to chatService.
type openAIChat struct {
	client openai.Client
}

func (o openAIChat) Create(ctx context.Context, params openai.ChatCompletionNewParams) (openai.ChatCompletion, error) {
	resp, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return openai.ChatCompletion{}, err
	}
	return *resp, nil
}

// Narrator turns an event into a one-line briefing for the event log.
type Narrator interface {
	Brief(ctx context.Context, e models.GameEvent) (string, error)
}

// Opts holds client configuration.
type Opts struct {
	APIKey      string
	Model       string
	Temperature float64
}

// Option configures the Client.
type Option func(*Opts)

// WithAPIKey sets the OpenAI API key.
func WithAPIKey(key string) Option {
	return func(o *Opts) { o.APIKey = key }
}

// WithModel overrides the chat model.
func WithModel(model string) Option {
	return func(o *Opts) { o.Model = model }
}

// WithTemperature overrides the sampling temperature.
func WithTemperature(t float64) Option {
	return func(o *Opts) { o.Temperature = t }
}

// Client narrates events through the OpenAI chat completion API.
type Client struct {
	chat                chatService
	model               string
	temperature         float64
	maxCompletionTokens int64
}

// NewClient creates a Client. An API key is required.
func NewClient(opts ...Option) (*Client, error) {
	cfg := Opts{Model: DefaultModel, Temperature: DefaultTemperature}
	for _, opt := range opts {
		opt(&cfg)
	}
	if !mode.IsUsableKey(cfg.APIKey) {
		slog.Debug("genai.NewClient: no usable API key")
		return nil, ErrNoAPIKey
	}
	cli := openai.NewClient(option.WithAPIKey(cfg.APIKey))
	slog.Debug("genai.NewClient created", "model", cfg.Model, "temperature", cfg.Temperature)
	return &Client{
		chat:                openAIChat{client: cli},
		model:               cfg.Model,
		temperature:         cfg.Temperature,
		maxCompletionTokens: DefaultMaxCompletionTokens,
	}, nil
}

// Brief asks the model for a one-line briefing of e.
func (c *Client) Brief(ctx context.Context, e models.GameEvent) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(briefingSystemPrompt),
			openai.UserMessage(describe(e)),
		},
		Temperature:         openai.Float(c.temperature),
		MaxCompletionTokens: openai.Int(c.maxCompletionTokens),
	}
	resp, err := c.chat.Create(ctx, params)
	if err != nil {
		slog.Error("genai.Client.Brief failed", "error", err, "event_id", e.ID)
		return "", fmt.Errorf("brief event %s: %w", e.ID, err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrNoChoicesReturned
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	slog.Debug("genai.Client.Brief succeeded", "event_id", e.ID, "length", len(text))
	return text, nil
}

// LocalNarrator builds briefings from template text without any network call.
type LocalNarrator struct{}

// Brief implements Narrator.
func (LocalNarrator) Brief(_ context.Context, e models.GameEvent) (string, error) {
	return LocalBriefing(e), nil
}

// LocalBriefing composes "[SYSTEM] Title: Description".
func LocalBriefing(e models.GameEvent) string {
	return fmt.Sprintf("[%s] %s: %s", e.System, e.Title, e.Description)
}

// SelectNarrator returns an OpenAI narrator when narration is enabled and the runtime
// resolved to the OpenAI provider; any other combination falls back to LocalNarrator.
func SelectNarrator(cfg mode.Config, enabled bool, opts ...Option) Narrator {
	if !enabled || cfg.Mode != mode.ExternalOptional || cfg.Provider != mode.ProviderOpenAI {
		slog.Debug("genai.SelectNarrator: using local narrator", "enabled", enabled, "mode", cfg.Mode, "provider", cfg.Provider)
		return LocalNarrator{}
	}
	client, err := NewClient(opts...)
	if err != nil {
		slog.Warn("genai.SelectNarrator: falling back to local narrator", "error", err)
		return LocalNarrator{}
	}
	return client
}

func describe(e models.GameEvent) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Sistema: %s\nIncidencia: %s\n%s\nOpciones:", e.System, e.Title, e.Description)
	for _, o := range e.Options {
		fmt.Fprintf(&b, "\n- %s", o.Label)
	}
	return b.String()
}
