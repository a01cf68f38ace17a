package events

import (
	"context"
	"errors"
	"math/rand/v2"
	"slices"
	"testing"
	"time"

	"github.com/BTreeMap/ShowDirector/internal/catalog"
	"github.com/BTreeMap/ShowDirector/internal/mode"
	"github.com/BTreeMap/ShowDirector/internal/models"
	"github.com/BTreeMap/ShowDirector/internal/scenario"
)

// recordingSleeper returns immediately and remembers the requested delays.
type recordingSleeper struct {
	delays []time.Duration
}

func (r *recordingSleeper) sleep(ctx context.Context, d time.Duration) error {
	r.delays = append(r.delays, d)
	return nil
}

func newTestGenerator(t *testing.T, cat catalog.Catalog, opts ...Option) (*Generator, *recordingSleeper, time.Time) {
	t.Helper()
	now := time.Date(2026, 3, 14, 21, 0, 0, 0, time.UTC)
	rec := &recordingSleeper{}
	base := []Option{
		WithClock(func() time.Time { return now }),
		WithSleeper(rec.sleep),
		WithRand(rand.New(rand.NewPCG(11, 13))),
	}
	return NewGenerator(cat, append(base, opts...)...), rec, now
}

func TestGenerate_BatchShape(t *testing.T) {
	g, _, now := newTestGenerator(t, catalog.Default())

	evts, err := g.Generate(context.Background(), scenario.CorporateGala)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(evts) != 2 {
		t.Fatalf("expected 2 events, got %d", len(evts))
	}

	seen := map[string]bool{}
	for _, e := range evts {
		if e.ID == "" {
			t.Error("event ID is empty")
		}
		if seen[e.ID] {
			t.Errorf("duplicate event ID %q", e.ID)
		}
		seen[e.ID] = true
		if e.Severity != 2 {
			t.Errorf("severity = %d, want 2", e.Severity)
		}
		if !e.ExpiresAt.Equal(now.Add(30 * time.Second)) {
			t.Errorf("ExpiresAt = %v, want %v", e.ExpiresAt, now.Add(30*time.Second))
		}
		if e.CorrectAction != "" {
			t.Errorf("CorrectAction = %q, want empty", e.CorrectAction)
		}
		if len(e.Options) == 0 || e.Title == "" {
			t.Errorf("event %q missing template content", e.ID)
		}
	}
}

func TestGenerate_IDsUniqueAcrossBatches(t *testing.T) {
	g, _, _ := newTestGenerator(t, catalog.Default())
	seen := map[string]bool{}
	for i := 0; i < 25; i++ {
		evts, err := g.Generate(context.Background(), scenario.CoffeeShopGig)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, e := range evts {
			if seen[e.ID] {
				t.Fatalf("duplicate event ID %q in batch %d", e.ID, i)
			}
			seen[e.ID] = true
		}
	}
}

func TestGenerate_DelayFollowsRuntimeMode(t *testing.T) {
	tests := []struct {
		name string
		cfg  mode.Config
		want time.Duration
	}{
		{"local only", mode.Config{Mode: mode.LocalOnly}, 120 * time.Millisecond},
		{"external optional", mode.Config{Mode: mode.ExternalOptional, Provider: mode.ProviderOpenAI, HasAPIKey: true}, 260 * time.Millisecond},
		{"unset mode", mode.Config{}, 120 * time.Millisecond},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, rec, _ := newTestGenerator(t, catalog.Default(), WithRuntime(tt.cfg))
			if _, err := g.Generate(context.Background(), scenario.CoffeeShopGig); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(rec.delays) != 1 || rec.delays[0] != tt.want {
				t.Errorf("delays = %v, want [%v]", rec.delays, tt.want)
			}
		})
	}
}

func TestGenerate_OnlyEligibleTemplates(t *testing.T) {
	cat := catalog.Default()
	g, _, _ := newTestGenerator(t, cat)

	for i := 0; i < 200; i++ {
		evts, err := g.Generate(context.Background(), scenario.CoffeeShopGig)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, e := range evts {
			eligible := Eligible(cat.Pool(e.System), scenario.CoffeeShopGig)
			if !slices.ContainsFunc(eligible, func(tpl models.EventTemplate) bool { return tpl.Title == e.Title }) {
				t.Fatalf("event %q from %s is not eligible for %s", e.Title, e.System, scenario.CoffeeShopGig)
			}
		}
	}
}

func TestGenerate_FallsBackToUnfilteredPool(t *testing.T) {
	cat := catalog.Catalog{}
	for _, c := range catalog.Categories() {
		cat[c] = []models.EventTemplate{{
			Title:            "boda " + string(c),
			Options:          []models.EventOption{{Label: "ok"}},
			AllowedScenarios: []string{scenario.WeddingReception},
		}}
	}
	g, _, _ := newTestGenerator(t, cat)

	evts, err := g.Generate(context.Background(), scenario.StadiumTour)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(evts) != 2 {
		t.Fatalf("expected 2 events, got %d", len(evts))
	}
	for _, e := range evts {
		if e.Title != "boda "+string(e.System) {
			t.Errorf("unexpected title %q for %s", e.Title, e.System)
		}
	}
}

func TestGenerate_DrawsOnlyFromPopulatedCategories(t *testing.T) {
	cat := catalog.Catalog{
		models.SystemSound: []models.EventTemplate{{Title: "Acople", Options: []models.EventOption{{Label: "ok"}}}},
	}
	g, _, _ := newTestGenerator(t, cat)

	for i := 0; i < 20; i++ {
		evts, err := g.Generate(context.Background(), scenario.CoffeeShopGig)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, e := range evts {
			if e.System != models.SystemSound {
				t.Fatalf("event drawn from empty category %s", e.System)
			}
		}
	}
}

func TestGenerate_EmptyCatalog(t *testing.T) {
	g, _, _ := newTestGenerator(t, catalog.Catalog{})

	evts, err := g.Generate(context.Background(), scenario.CoffeeShopGig)
	if !errors.Is(err, models.ErrEmptyTemplatePool) {
		t.Fatalf("expected ErrEmptyTemplatePool, got %v", err)
	}
	if evts != nil {
		t.Errorf("expected no events, got %d", len(evts))
	}
	if g.Generating() {
		t.Error("expected Generating() to be false after error")
	}
}

func TestGenerate_FlagVisibleWhileWaiting(t *testing.T) {
	var g *Generator
	sawBusy := false
	g = NewGenerator(catalog.Default(), WithSleeper(func(ctx context.Context, d time.Duration) error {
		sawBusy = g.Generating()
		return nil
	}))

	if g.Generating() {
		t.Fatal("generator busy before first call")
	}
	if _, err := g.Generate(context.Background(), scenario.CoffeeShopGig); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !sawBusy {
		t.Error("expected Generating() to be true during the delay")
	}
	if g.Generating() {
		t.Error("expected Generating() to be false after success")
	}
}

func TestGenerate_ClearsFlagOnError(t *testing.T) {
	g := NewGenerator(catalog.Default(), WithSleeper(ContextSleep))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := g.Generate(ctx, scenario.CoffeeShopGig)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if g.Generating() {
		t.Error("expected Generating() to be false after error")
	}
}

func TestGenerate_ClearsFlagOnPanic(t *testing.T) {
	g := NewGenerator(catalog.Default(), WithSleeper(func(ctx context.Context, d time.Duration) error {
		panic("boom")
	}))

	func() {
		defer func() {
			if r := recover(); r == nil {
				t.Error("expected panic to propagate")
			}
		}()
		_, _ = g.Generate(context.Background(), scenario.CoffeeShopGig)
	}()

	if g.Generating() {
		t.Error("expected Generating() to be false after panic")
	}
}

func TestContextSleep_Elapses(t *testing.T) {
	start := time.Now()
	if err := ContextSleep(context.Background(), 5*time.Millisecond); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if time.Since(start) < 5*time.Millisecond {
		t.Error("ContextSleep returned early")
	}
}
