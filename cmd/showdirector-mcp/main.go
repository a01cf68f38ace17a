// showdirector-mcp exposes the ShowDirector core as an MCP stdio server.
//
// Environment variables:
//
//	GEMINI_API_KEY, OPENAI_API_KEY, ANTHROPIC_API_KEY   credentials, used only to resolve the runtime mode
//
// Usage:
//
//	go install github.com/BTreeMap/ShowDirector/cmd/showdirector-mcp
//	showdirector-mcp
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/BTreeMap/ShowDirector/internal/catalog"
	"github.com/BTreeMap/ShowDirector/internal/cinematic"
	"github.com/BTreeMap/ShowDirector/internal/events"
	"github.com/BTreeMap/ShowDirector/internal/mode"
	"github.com/BTreeMap/ShowDirector/internal/models"
	"github.com/BTreeMap/ShowDirector/internal/threat"
	"github.com/joho/godotenv"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func main() {
	// stdout carries the protocol, so logs go to stderr.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})))

	if err := godotenv.Load(); err != nil {
		slog.Debug("failed to load .env file", "error", err)
	}

	cat := catalog.Default()
	if err := cat.Validate(); err != nil {
		slog.Error("showdirector-mcp: invalid catalog", "error", err)
		os.Exit(1)
	}

	server := newServer(cat, mode.ResolveFromEnv(nil))
	if err := server.Run(context.Background(), &mcp.StdioTransport{}); err != nil {
		slog.Error("showdirector-mcp failed", "error", err)
		os.Exit(1)
	}
}

func newServer(cat catalog.Catalog, runtimeCfg mode.Config) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "showdirector-mcp",
		Version: "1.0.0",
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "threat_score",
		Description: "Compute the normalized threat level (0-1) from stress (0-100) and active critical/warning event counts.",
	}, threatScoreHandler)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "threat_profile",
		Description: "Map a threat level to the HUD threat rail profile (tone, opacity, pulse, glow). Pausing dims opacity only.",
	}, threatProfileHandler)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "transition",
		Description: "Return the cinematic overlay (label, tint, duration) for a scene change, or none.",
	}, transitionHandler)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "runtime_config",
		Description: "Resolve the runtime mode from optional credential overrides merged over the server environment.",
	}, runtimeConfigHandler)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "generate_events",
		Description: "Generate a batch of two procedural events for a scenario after the runtime mode delay.",
	}, generateEventsHandler(events.NewGenerator(cat, events.WithRuntime(runtimeCfg))))

	return server
}

// --- Input types ---

type threatScoreInput struct {
	Stress         float64 `json:"stress"                    jsonschema:"Current stress 0-100; out-of-range values are clamped"`
	CriticalEvents int     `json:"critical_events,omitempty" jsonschema:"Number of active critical events"`
	WarningEvents  int     `json:"warning_events,omitempty"  jsonschema:"Number of active warning events"`
}

type threatProfileInput struct {
	Level  float64 `json:"level"            jsonschema:"Threat level 0-1; out-of-range values are clamped"`
	Paused bool    `json:"paused,omitempty" jsonschema:"Whether the show is paused"`
}

type transitionInput struct {
	From string `json:"from,omitempty" jsonschema:"Previous game state, empty when there is none"`
	To   string `json:"to"             jsonschema:"Target game state: MENU, PLAYING, PAUSED, SHOP, VICTORY, GAME_OVER, ..."`
}

type runtimeConfigInput struct {
	Credentials map[string]string `json:"credentials,omitempty" jsonschema:"Credential overrides keyed by env var name, e.g. OPENAI_API_KEY"`
}

type generateEventsInput struct {
	ScenarioID string `json:"scenario_id" jsonschema:"Scenario identifier, e.g. stadium_tour"`
}

// --- Handlers ---

func threatScoreHandler(ctx context.Context, req *mcp.CallToolRequest, input threatScoreInput) (*mcp.CallToolResult, any, error) {
	level := threat.Score(input.Stress, input.CriticalEvents, input.WarningEvents)
	return textResult(jsonString(map[string]any{"level": level})), nil, nil
}

func threatProfileHandler(ctx context.Context, req *mcp.CallToolRequest, input threatProfileInput) (*mcp.CallToolResult, any, error) {
	return textResult(jsonString(threat.Profile(input.Level, input.Paused))), nil, nil
}

func transitionHandler(ctx context.Context, req *mcp.CallToolRequest, input transitionInput) (*mcp.CallToolResult, any, error) {
	style := cinematic.For(models.GameState(input.From), models.GameState(input.To))
	if style == nil {
		return textResult(`{"cinematic": null}`), nil, nil
	}
	return textResult(jsonString(map[string]any{"cinematic": style})), nil, nil
}

func runtimeConfigHandler(ctx context.Context, req *mcp.CallToolRequest, input runtimeConfigInput) (*mcp.CallToolResult, any, error) {
	cfg := mode.ResolveFromEnv(input.Credentials)
	return textResult(jsonString(map[string]any{
		"mode":        cfg.Mode,
		"provider":    cfg.Provider,
		"has_api_key": cfg.HasAPIKey,
		"delay_ms":    mode.DelayMs(cfg.Mode),
	})), nil, nil
}

func generateEventsHandler(gen *events.Generator) func(context.Context, *mcp.CallToolRequest, generateEventsInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input generateEventsInput) (*mcp.CallToolResult, any, error) {
		if input.ScenarioID == "" {
			return textResult(`{"error": "scenario_id is required"}`), nil, nil
		}
		evts, err := gen.Generate(ctx, input.ScenarioID)
		if err != nil {
			return textResult(fmt.Sprintf("error: %v", err)), nil, nil
		}
		return textResult(jsonString(evts)), nil, nil
	}
}

// --- Helpers ---

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}
}

func jsonString(v any) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf(`{"error": "marshal: %v"}`, err)
	}
	return string(data)
}
