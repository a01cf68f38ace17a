package events

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/BTreeMap/ShowDirector/internal/catalog"
	"github.com/BTreeMap/ShowDirector/internal/mode"
	"github.com/BTreeMap/ShowDirector/internal/models"
)

// Procedural generation constants
const (
	// BatchSize is the number of events produced per Generate call.
	BatchSize = 2
	// ProceduralSeverity is the fixed severity of procedural events.
	ProceduralSeverity = models.SeverityWarning
	// EventWindow is how long a procedural event stays open.
	EventWindow = 30000 * time.Millisecond
)

// Sleeper blocks for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// ContextSleep is the default Sleeper backed by a timer.
func ContextSleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Generator produces batches of procedural events.
type Generator struct {
	catalog catalog.Catalog
	runtime mode.Config
	now     func() time.Time
	sleep   Sleeper

	rngMu sync.Mutex
	rng   *rand.Rand

	batches  atomic.Uint64
	inFlight atomic.Int32
}

// Option configures a Generator.
type Option func(*Generator)

// WithRuntime sets the runtime configuration that decides the generation delay.
func WithRuntime(cfg mode.Config) Option {
	return func(g *Generator) { g.runtime = cfg }
}

// WithRand injects the random source used for category and template draws.
func WithRand(rng *rand.Rand) Option {
	return func(g *Generator) { g.rng = rng }
}

// WithClock injects the time source.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

// WithSleeper replaces the delay implementation.
func WithSleeper(s Sleeper) Option {
	return func(g *Generator) { g.sleep = s }
}

// NewGenerator creates a Generator over cat. Defaults: local-only runtime, wall clock,
// timer-based sleep and a randomly seeded PCG source.
func NewGenerator(cat catalog.Catalog, opts ...Option) *Generator {
	g := &Generator{
		catalog: cat,
		runtime: mode.Config{Mode: mode.LocalOnly},
		now:     time.Now,
		sleep:   ContextSleep,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.rng == nil {
		g.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if err := cat.Validate(); err != nil {
		slog.Warn("events.NewGenerator: incomplete catalog, drawing only from populated categories", "error", err)
	}
	slog.Debug("events.NewGenerator created", "mode", g.runtime.Mode, "categories", len(cat))
	return g
}

// Delay returns the simulated latency for the configured runtime mode.
func (g *Generator) Delay() time.Duration {
	return time.Duration(mode.DelayMs(g.runtime.Mode)) * time.Millisecond
}

// Generating reports whether any Generate call is in flight.
func (g *Generator) Generating() bool {
	return g.inFlight.Load() > 0
}

// Generate waits for the mode delay and returns BatchSize events for scenarioID.
// The in-flight flag is cleared on every exit path, including panics.
func (g *Generator) Generate(ctx context.Context, scenarioID string) ([]models.GameEvent, error) {
	g.inFlight.Add(1)
	defer g.inFlight.Add(-1)

	now := g.now()
	batch := g.batches.Add(1)
	delay := g.Delay()
	slog.Debug("Generator.Generate started", "scenario", scenarioID, "batch", batch, "delay", delay)

	if err := g.sleep(ctx, delay); err != nil {
		slog.Warn("Generator.Generate interrupted", "scenario", scenarioID, "batch", batch, "error", err)
		return nil, fmt.Errorf("generate events: %w", err)
	}

	categories := g.catalog.Systems()
	if len(categories) == 0 {
		return nil, fmt.Errorf("generate events: %w", models.ErrEmptyTemplatePool)
	}
	out := make([]models.GameEvent, 0, BatchSize)
	for i := 0; i < BatchSize; i++ {
		category := categories[g.intN(len(categories))]
		pool := g.catalog.Pool(category)
		candidates := Eligible(pool, scenarioID)
		if len(candidates) == 0 {
			candidates = pool
		}
		tpl, ok := g.pick(candidates, scenarioID)
		if !ok {
			tpl = pool[0]
		}
		out = append(out, models.GameEvent{
			ID:          fmt.Sprintf("evt-%d-%d-%d", now.UnixMilli(), batch, i),
			System:      category,
			Title:       tpl.Title,
			Description: tpl.Description,
			Severity:    ProceduralSeverity,
			ExpiresAt:   now.Add(EventWindow),
			Options:     append([]models.EventOption(nil), tpl.Options...),
		})
	}

	slog.Debug("Generator.Generate succeeded", "scenario", scenarioID, "batch", batch, "count", len(out))
	return out, nil
}

func (g *Generator) intN(n int) int {
	g.rngMu.Lock()
	defer g.rngMu.Unlock()
	return g.rng.IntN(n)
}

func (g *Generator) pick(templates []models.EventTemplate, scenarioID string) (models.EventTemplate, bool) {
	g.rngMu.Lock()
	defer g.rngMu.Unlock()
	return Pick(g.rng, templates, scenarioID)
}
