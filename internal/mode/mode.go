// Package mode resolves whether ShowDirector runs purely locally or with an optional
// external text provider, based on which credentials are configured.
package mode

import (
	"log/slog"
	"os"
	"strings"
)

// Mode is the runtime operating mode.
type Mode string

const (
	LocalOnly        Mode = "LOCAL_ONLY"
	ExternalOptional Mode = "EXTERNAL_OPTIONAL"
)

// Provider names a known external provider. The zero value means none.
type Provider string

const (
	ProviderNone      Provider = ""
	ProviderGemini    Provider = "gemini"
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
)

// Credential field names, checked in this order.
const (
	GeminiKeyField    = "GEMINI_API_KEY"
	OpenAIKeyField    = "OPENAI_API_KEY"
	AnthropicKeyField = "ANTHROPIC_API_KEY"
)

// Procedural generation delays per mode.
const (
	LocalDelayMs    = 120
	ExternalDelayMs = 260
)

var providerOrder = []struct {
	field    string
	provider Provider
}{
	{GeminiKeyField, ProviderGemini},
	{OpenAIKeyField, ProviderOpenAI},
	{AnthropicKeyField, ProviderAnthropic},
}

// placeholders are values shipped in sample env files that must not count as keys.
var placeholders = map[string]bool{
	"":                    true,
	"placeholder_api_key": true,
	"your_api_key":        true,
	"change_me":           true,
}

// Config is the resolved runtime configuration.
// Provider is set if and only if Mode is ExternalOptional.
type Config struct {
	Mode      Mode     `json:"mode"`
	Provider  Provider `json:"provider,omitempty"`
	HasAPIKey bool     `json:"has_api_key"`
}

// IsUsableKey reports whether a credential value is a real key rather than blank or a placeholder.
func IsUsableKey(v string) bool {
	v = strings.TrimSpace(v)
	if v == "" {
		return false
	}
	return !placeholders[strings.ToLower(v)]
}

// Resolve derives the runtime configuration from a credential mapping.
// It never reads ambient state.
func Resolve(creds map[string]string) Config {
	for _, p := range providerOrder {
		if IsUsableKey(creds[p.field]) {
			return Config{Mode: ExternalOptional, Provider: p.provider, HasAPIKey: true}
		}
	}
	return Config{Mode: LocalOnly, Provider: ProviderNone, HasAPIKey: false}
}

// ResolveFromEnv merges the process environment with overrides (overrides win) and resolves.
func ResolveFromEnv(overrides map[string]string) Config {
	creds := make(map[string]string, len(providerOrder))
	for _, p := range providerOrder {
		if v, ok := os.LookupEnv(p.field); ok {
			creds[p.field] = v
		}
	}
	for k, v := range overrides {
		creds[k] = v
	}
	cfg := Resolve(creds)
	slog.Debug("mode.ResolveFromEnv resolved", "mode", cfg.Mode, "provider", cfg.Provider, "override_count", len(overrides))
	return cfg
}

// DelayMs returns the simulated generation latency for a mode.
func DelayMs(m Mode) int {
	if m == ExternalOptional {
		return ExternalDelayMs
	}
	return LocalDelayMs
}

// KeyFor returns the credential field name for a provider, or "" for none.
func KeyFor(p Provider) string {
	for _, entry := range providerOrder {
		if entry.provider == p {
			return entry.field
		}
	}
	return ""
}
