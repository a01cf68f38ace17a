package main

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/BTreeMap/ShowDirector/internal/genai"
	"github.com/BTreeMap/ShowDirector/internal/models"
	"github.com/BTreeMap/ShowDirector/internal/session"
)

// showClock is the virtual time shared by the simulation, its session and its
// event source.
type showClock struct {
	mu  sync.Mutex
	now time.Time
}

func newShowClock(start time.Time) *showClock {
	return &showClock{now: start}
}

// Now returns the current virtual time.
func (c *showClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d and returns the new time.
func (c *showClock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	return c.now
}

// simulation drives one session through a fixed number of generation rounds on a
// virtual clock. Each round it expires overdue events, ends the show if stress
// maxed out, generates a new batch and resolves the oldest open event with its
// first option on even rounds. The event source and session must read time from clock.
type simulation struct {
	session  *session.Session
	source   session.EventSource
	narrator genai.Narrator
	rounds   int
	step     time.Duration
	clock    *showClock
}

// Run plays the show and returns the final game state.
func (sim *simulation) Run(ctx context.Context) (models.GameState, error) {
	s := sim.session
	logTransition(s, models.StatePlaying)

	for round := 0; round < sim.rounds; round++ {
		now := sim.clock.Advance(sim.step)

		for _, e := range s.Expire(now) {
			slog.Info("Event expired", "event_id", e.ID, "title", e.Title)
		}
		if s.Overloaded() {
			logTransition(s, models.StateGameOver)
			return models.StateGameOver, nil
		}

		evts, err := s.GenerateEvents(ctx, sim.source)
		if err != nil {
			return s.State(), err
		}
		for _, e := range evts {
			brief, err := sim.narrator.Brief(ctx, e)
			if err != nil {
				slog.Warn("Narration failed, using local briefing", "event_id", e.ID, "error", err)
				brief = genai.LocalBriefing(e)
			}
			slog.Info("Event", "round", round, "event_id", e.ID, "briefing", brief)
		}

		if snap := s.Snapshot(); len(snap.ActiveEvents) > 0 && round%2 == 0 {
			oldest := snap.ActiveEvents[0]
			if _, err := s.Resolve(oldest.ID, 0); err != nil {
				slog.Warn("Resolve failed", "event_id", oldest.ID, "error", err)
			}
		}

		rail := s.Rail()
		slog.Info("Threat rail", "round", round, "level", s.Threat(), "tone", rail.Tone,
			"opacity", rail.Opacity, "pulse_ms", rail.PulseMs, "glow", rail.GlowStrength)

		if round == sim.rounds/2 {
			logTransition(s, models.StatePaused)
			slog.Info("Paused rail", "opacity", s.Rail().Opacity)
			logTransition(s, models.StatePlaying)
		}
	}

	logTransition(s, models.StateVictory)
	return models.StateVictory, nil
}
