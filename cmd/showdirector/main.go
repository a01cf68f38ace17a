// showdirector runs a headless show simulation: it generates procedural events for a
// scenario, resolves or expires them, and logs the threat rail and scene cinematics
// the HUD would present.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/BTreeMap/ShowDirector/internal/catalog"
	"github.com/BTreeMap/ShowDirector/internal/events"
	"github.com/BTreeMap/ShowDirector/internal/genai"
	"github.com/BTreeMap/ShowDirector/internal/mode"
	"github.com/BTreeMap/ShowDirector/internal/models"
	"github.com/BTreeMap/ShowDirector/internal/scenario"
	"github.com/BTreeMap/ShowDirector/internal/session"
	"github.com/BTreeMap/ShowDirector/internal/store"
	"github.com/BTreeMap/ShowDirector/internal/util"
	"github.com/joho/godotenv"
)

// Default configuration constants
const (
	// DefaultStateDir is the default directory for ShowDirector state data
	DefaultStateDir = "/var/lib/showdirector"
	// DefaultDBFileName is the default SQLite database filename
	DefaultDBFileName = "showdirector.db"
	// DefaultRounds is the number of generation rounds simulated
	DefaultRounds = 6
	// DefaultStep is the simulated time between rounds
	DefaultStep = 12 * time.Second
)

// Config holds environment configuration
type Config struct {
	StateDir     string
	DatabaseURL  string
	ScenarioID   string
	Narration    bool
	OpenAIModel  string
	GeminiKey    string
	OpenAIKey    string
	AnthropicKey string
	Rounds       int
}

// Flags holds command line flag values
type Flags struct {
	stateDir     *string
	dbDSN        *string
	scenarioID   *string
	rounds       *int
	step         *time.Duration
	narrate      *bool
	openaiModel  *string
	geminiKey    *string
	openaiKey    *string
	anthropicKey *string
	inMemory     *bool
}

func main() {
	initializeLogger()
	config := loadEnvironmentConfig()
	flags := parseCommandLineFlags(config)

	if err := run(flags); err != nil {
		slog.Error("ShowDirector failed to run", "error", err)
		os.Exit(1)
	}
	slog.Info("ShowDirector exited successfully")
}

// initializeLogger sets up structured logging with debug level
func initializeLogger() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	slog.SetDefault(logger)
}

// loadEnvironmentConfig loads configuration from environment variables and .env file
func loadEnvironmentConfig() Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug("failed to load .env file", "error", err)
	} else {
		slog.Debug("successfully loaded .env file")
	}

	config := Config{
		StateDir:     util.GetenvDefault("SHOWDIRECTOR_STATE_DIR", DefaultStateDir),
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		ScenarioID:   util.GetenvDefault("SHOWDIRECTOR_SCENARIO", scenario.CoffeeShopGig),
		Narration:    util.ParseBoolEnv("SHOWDIRECTOR_NARRATION", false),
		OpenAIModel:  util.GetenvDefault("OPENAI_MODEL", genai.DefaultModel),
		GeminiKey:    os.Getenv(mode.GeminiKeyField),
		OpenAIKey:    os.Getenv(mode.OpenAIKeyField),
		AnthropicKey: os.Getenv(mode.AnthropicKeyField),
		Rounds:       util.ParseIntEnv("SHOWDIRECTOR_ROUNDS", DefaultRounds),
	}

	slog.Debug("environment variables loaded",
		"SHOWDIRECTOR_STATE_DIR", config.StateDir,
		"DATABASE_URL_SET", config.DatabaseURL != "",
		"SHOWDIRECTOR_SCENARIO", config.ScenarioID,
		"SHOWDIRECTOR_NARRATION", config.Narration,
		"GEMINI_API_KEY_SET", config.GeminiKey != "",
		"OPENAI_API_KEY_SET", config.OpenAIKey != "",
		"ANTHROPIC_API_KEY_SET", config.AnthropicKey != "")

	return config
}

// parseCommandLineFlags parses command line arguments with environment defaults
func parseCommandLineFlags(config Config) Flags {
	defaultDSN := config.DatabaseURL
	if defaultDSN == "" {
		defaultDSN = filepath.Join(config.StateDir, DefaultDBFileName)
	}

	flags := Flags{
		stateDir:     flag.String("state-dir", config.StateDir, "state directory (overrides $SHOWDIRECTOR_STATE_DIR)"),
		dbDSN:        flag.String("db-dsn", defaultDSN, "event log DSN: SQLite path or Postgres URL (overrides $DATABASE_URL)"),
		scenarioID:   flag.String("scenario", config.ScenarioID, "scenario identifier (overrides $SHOWDIRECTOR_SCENARIO)"),
		rounds:       flag.Int("rounds", config.Rounds, "number of event generation rounds"),
		step:         flag.Duration("step", DefaultStep, "simulated time between rounds"),
		narrate:      flag.Bool("narrate", config.Narration, "narrate events through the external provider when available"),
		openaiModel:  flag.String("openai-model", config.OpenAIModel, "OpenAI chat model for narration (overrides $OPENAI_MODEL)"),
		geminiKey:    flag.String("gemini-api-key", config.GeminiKey, "Gemini API key (overrides $GEMINI_API_KEY)"),
		openaiKey:    flag.String("openai-api-key", config.OpenAIKey, "OpenAI API key (overrides $OPENAI_API_KEY)"),
		anthropicKey: flag.String("anthropic-api-key", config.AnthropicKey, "Anthropic API key (overrides $ANTHROPIC_API_KEY)"),
		inMemory:     flag.Bool("in-memory", false, "keep the event log in memory only"),
	}
	flag.Parse()

	// Follow a changed state directory when the DSN was left at its default.
	if *flags.dbDSN == defaultDSN && config.DatabaseURL == "" && *flags.stateDir != config.StateDir {
		*flags.dbDSN = filepath.Join(*flags.stateDir, DefaultDBFileName)
	}

	slog.Debug("flags parsed",
		"stateDir", *flags.stateDir,
		"dbDSN_set", *flags.dbDSN != "",
		"scenario", *flags.scenarioID,
		"rounds", *flags.rounds,
		"step", *flags.step,
		"narrate", *flags.narrate,
		"inMemory", *flags.inMemory)

	return flags
}

// buildStoreOptions constructs store configuration options
func buildStoreOptions(flags Flags) []store.Option {
	if *flags.inMemory || *flags.dbDSN == "" {
		slog.Debug("No database DSN provided, will use in-memory store")
		return nil
	}
	if store.DetectDSNType(*flags.dbDSN) == "postgres" {
		slog.Debug("Detected PostgreSQL DSN, configuring PostgreSQL store", "dsn_set", true)
		return []store.Option{store.WithPostgresDSN(*flags.dbDSN)}
	}
	slog.Debug("Detected SQLite DSN, configuring SQLite store", "db_path", *flags.dbDSN)
	return []store.Option{store.WithSQLiteDSN(*flags.dbDSN)}
}

// credentialOverrides maps flag-provided keys onto credential fields.
func credentialOverrides(flags Flags) map[string]string {
	return map[string]string{
		mode.GeminiKeyField:    *flags.geminiKey,
		mode.OpenAIKeyField:    *flags.openaiKey,
		mode.AnthropicKeyField: *flags.anthropicKey,
	}
}

func run(flags Flags) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cat := catalog.Default()
	if err := cat.Validate(); err != nil {
		return err
	}

	runtimeCfg := mode.ResolveFromEnv(credentialOverrides(flags))
	slog.Info("Runtime mode resolved", "mode", runtimeCfg.Mode, "provider", runtimeCfg.Provider, "delay_ms", mode.DelayMs(runtimeCfg.Mode))

	log, err := store.Open(buildStoreOptions(flags)...)
	if err != nil {
		return err
	}
	defer log.Close()

	narrator := genai.SelectNarrator(runtimeCfg, *flags.narrate,
		genai.WithAPIKey(*flags.openaiKey),
		genai.WithModel(*flags.openaiModel))

	clock := newShowClock(time.Now())
	gen := events.NewGenerator(cat, events.WithRuntime(runtimeCfg), events.WithClock(clock.Now))
	sim := &simulation{
		session:  session.New(*flags.scenarioID, session.WithStore(log), session.WithClock(clock.Now)),
		source:   gen,
		narrator: narrator,
		rounds:   *flags.rounds,
		step:     *flags.step,
		clock:    clock,
	}
	outcome, err := sim.Run(ctx)
	if err != nil {
		return err
	}

	snap := sim.session.Snapshot()
	slog.Info("Show finished", "session_id", snap.ID, "outcome", outcome, "score", snap.Score, "stress", snap.Stress)
	return nil
}

// logTransition moves the session and logs the cinematic that would play.
func logTransition(s *session.Session, to models.GameState) {
	style, err := s.Transition(to)
	if err != nil {
		slog.Warn("Transition rejected", "to", to, "error", err)
		return
	}
	if style == nil {
		return
	}
	slog.Info("Cinematic", "to", to, "label", style.Label, "tint", style.Tint, "duration_ms", style.DurationMs)
}
