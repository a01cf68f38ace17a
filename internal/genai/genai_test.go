package genai

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/openai/openai-go"

	"github.com/BTreeMap/ShowDirector/internal/mode"
	"github.com/BTreeMap/ShowDirector/internal/models"
)

// mockChatService implements chatService for testing.
type mockChatService struct {
	resp   openai.ChatCompletion
	err    error
	params openai.ChatCompletionNewParams
}

func (m *mockChatService) Create(ctx context.Context, params openai.ChatCompletionNewParams) (openai.ChatCompletion, error) {
	m.params = params
	return m.resp, m.err
}

var testEvent = models.GameEvent{
	ID:          "evt-1",
	System:      models.SystemPower,
	Title:       "Breaker disparado",
	Description: "Se cae la toma del backline.",
	Options:     []models.EventOption{{Label: "Rearmar el breaker"}},
}

func TestBrief_Success(t *testing.T) {
	mock := &mockChatService{resp: openai.ChatCompletion{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: "  ¡Backline sin corriente, rearmad ya!  "}},
		},
	}}
	client := &Client{chat: mock, model: "test-model", temperature: 0.1, maxCompletionTokens: 50}

	out, err := client.Brief(context.Background(), testEvent)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if out != "¡Backline sin corriente, rearmad ya!" {
		t.Errorf("unexpected briefing %q", out)
	}
	if mock.params.Model != "test-model" {
		t.Errorf("model = %q, want test-model", mock.params.Model)
	}
	if len(mock.params.Messages) != 2 {
		t.Errorf("expected system and user messages, got %d", len(mock.params.Messages))
	}
}

func TestBrief_ServiceError(t *testing.T) {
	client := &Client{chat: &mockChatService{err: errors.New("service failure")}}
	_, err := client.Brief(context.Background(), testEvent)
	if err == nil || !strings.Contains(err.Error(), "service failure") {
		t.Errorf("expected service failure error, got %v", err)
	}
}

func TestBrief_NoChoices(t *testing.T) {
	client := &Client{chat: &mockChatService{resp: openai.ChatCompletion{}}}
	_, err := client.Brief(context.Background(), testEvent)
	if !errors.Is(err, ErrNoChoicesReturned) {
		t.Errorf("expected ErrNoChoicesReturned, got %v", err)
	}
}

func TestNewClient_NoKey(t *testing.T) {
	if _, err := NewClient(); !errors.Is(err, ErrNoAPIKey) {
		t.Errorf("expected ErrNoAPIKey, got %v", err)
	}
	if _, err := NewClient(WithAPIKey("YOUR_API_KEY")); !errors.Is(err, ErrNoAPIKey) {
		t.Errorf("expected placeholder key to be rejected, got %v", err)
	}
}

func TestNewClient_WithKey(t *testing.T) {
	cli, err := NewClient(WithAPIKey("test-key"), WithModel("gpt-test"), WithTemperature(0.2))
	if err != nil {
		t.Fatalf("expected no error with API key, got %v", err)
	}
	if cli.model != "gpt-test" || cli.temperature != 0.2 {
		t.Errorf("options not applied: model=%q temperature=%v", cli.model, cli.temperature)
	}
}

func TestLocalBriefing(t *testing.T) {
	got := LocalBriefing(testEvent)
	want := "[POWER] Breaker disparado: Se cae la toma del backline."
	if got != want {
		t.Errorf("LocalBriefing() = %q, want %q", got, want)
	}
}

func TestSelectNarrator(t *testing.T) {
	openAI := mode.Config{Mode: mode.ExternalOptional, Provider: mode.ProviderOpenAI, HasAPIKey: true}
	gemini := mode.Config{Mode: mode.ExternalOptional, Provider: mode.ProviderGemini, HasAPIKey: true}
	local := mode.Config{Mode: mode.LocalOnly}

	tests := []struct {
		name      string
		cfg       mode.Config
		enabled   bool
		opts      []Option
		wantLocal bool
	}{
		{"disabled", openAI, false, []Option{WithAPIKey("k")}, true},
		{"local mode", local, true, []Option{WithAPIKey("k")}, true},
		{"other provider", gemini, true, []Option{WithAPIKey("k")}, true},
		{"missing key falls back", openAI, true, nil, true},
		{"openai", openAI, true, []Option{WithAPIKey("k")}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := SelectNarrator(tt.cfg, tt.enabled, tt.opts...)
			_, isLocal := n.(LocalNarrator)
			if isLocal != tt.wantLocal {
				t.Errorf("SelectNarrator() = %T, wantLocal %v", n, tt.wantLocal)
			}
		})
	}
}
