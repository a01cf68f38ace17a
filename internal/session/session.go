// Package session owns the mutable state of one running show: current game state,
// stress, score, active events and the event generation flag. Presentation values
// are derived from it through the pure threat and cinematic packages.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/BTreeMap/ShowDirector/internal/cinematic"
	"github.com/BTreeMap/ShowDirector/internal/models"
	"github.com/BTreeMap/ShowDirector/internal/store"
	"github.com/BTreeMap/ShowDirector/internal/threat"
	"github.com/BTreeMap/ShowDirector/internal/util"
)

// Stress bounds and penalties.
const (
	MaxStress           = 100.0
	ExpiryStressPenalty = 8.0
)

// EventSource produces event batches for a scenario.
type EventSource interface {
	Generate(ctx context.Context, scenarioID string) ([]models.GameEvent, error)
}

// Snapshot is a point-in-time copy of a session.
type Snapshot struct {
	ID           string             `json:"id"`
	ScenarioID   string             `json:"scenario_id"`
	State        models.GameState   `json:"state"`
	Stress       float64            `json:"stress"`
	Score        int                `json:"score"`
	Generating   bool               `json:"generating"`
	ActiveEvents []models.GameEvent `json:"active_events"`
}

// Session is safe for concurrent use.
type Session struct {
	mu         sync.Mutex
	id         string
	scenarioID string
	state      models.GameState
	stress     float64
	score      int
	active     []models.GameEvent
	generating bool

	log store.Store
	now func() time.Time
}

// Option configures a Session.
type Option func(*Session)

// WithStore records generated events and resolutions in s.
func WithStore(s store.Store) Option {
	return func(sess *Session) { sess.log = s }
}

// WithClock injects the time source used for resolutions.
func WithClock(now func() time.Time) Option {
	return func(sess *Session) { sess.now = now }
}

// WithID fixes the session ID instead of generating one.
func WithID(id string) Option {
	return func(sess *Session) { sess.id = id }
}

// New starts a session for scenarioID in the MENU state.
func New(scenarioID string, opts ...Option) *Session {
	s := &Session{
		scenarioID: scenarioID,
		state:      models.StateMenu,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.id == "" {
		s.id = util.GenerateSessionID()
	}
	slog.Debug("session.New created", "session_id", s.id, "scenario", scenarioID, "store_set", s.log != nil)
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// State returns the current game state.
func (s *Session) State() models.GameState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Generating reports whether an event batch is being generated.
func (s *Session) Generating() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generating
}

// Transition moves to state to and returns the cinematic overlay for the change, if any.
func (s *Session) Transition(to models.GameState) (*cinematic.Style, error) {
	if !models.IsValidGameState(to) {
		return nil, fmt.Errorf("%w: %q", models.ErrInvalidGameState, to)
	}
	s.mu.Lock()
	from := s.state
	s.state = to
	s.mu.Unlock()

	style := cinematic.For(from, to)
	slog.Debug("Session.Transition", "session_id", s.id, "from", from, "to", to, "cinematic", style != nil)
	return style, nil
}

// GenerateEvents requests one batch from src and appends it to the active events.
// Only one generation may run per session; the flag is cleared on every exit path
// and a panic inside src is returned as an error.
func (s *Session) GenerateEvents(ctx context.Context, src EventSource) (evts []models.GameEvent, err error) {
	s.mu.Lock()
	if s.generating {
		s.mu.Unlock()
		return nil, models.ErrAlreadyGenerating
	}
	s.generating = true
	s.mu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			slog.Error("Session.GenerateEvents recovered from panic", "session_id", s.id, "panic", r)
			evts, err = nil, fmt.Errorf("generate events panicked: %v", r)
		}
		s.mu.Lock()
		s.generating = false
		s.mu.Unlock()
	}()

	evts, err = src.Generate(ctx, s.scenarioID)
	if err != nil {
		slog.Error("Session.GenerateEvents failed", "session_id", s.id, "error", err)
		return nil, fmt.Errorf("session %s: %w", s.id, err)
	}

	s.mu.Lock()
	s.active = append(s.active, evts...)
	s.mu.Unlock()

	if s.log != nil {
		if err := s.log.SaveEvents(s.id, evts); err != nil {
			slog.Error("Session.GenerateEvents: failed to record events", "session_id", s.id, "error", err)
		}
	}
	slog.Debug("Session.GenerateEvents succeeded", "session_id", s.id, "count", len(evts))
	return evts, nil
}

// AddEvents appends externally created events, e.g. scripted ones.
func (s *Session) AddEvents(evts ...models.GameEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = append(s.active, evts...)
}

// Expire removes every event whose window closed at or before now and applies the
// expiry stress penalty for each. It returns the removed events.
func (s *Session) Expire(now time.Time) []models.GameEvent {
	s.mu.Lock()
	var expired []models.GameEvent
	kept := s.active[:0]
	for _, e := range s.active {
		if e.Expired(now) {
			expired = append(expired, e)
			continue
		}
		kept = append(kept, e)
	}
	s.active = kept
	s.stress = clampStress(s.stress + ExpiryStressPenalty*float64(len(expired)))
	s.mu.Unlock()

	for _, e := range expired {
		s.record(models.Resolution{
			SessionID:   s.id,
			EventID:     e.ID,
			Kind:        models.ResolutionExpired,
			StressDelta: ExpiryStressPenalty,
			Time:        now,
		})
	}
	if len(expired) > 0 {
		slog.Debug("Session.Expire removed events", "session_id", s.id, "count", len(expired))
	}
	return expired
}

// Resolve applies option optionIndex of the active event eventID and removes it.
func (s *Session) Resolve(eventID string, optionIndex int) (models.Resolution, error) {
	s.mu.Lock()
	idx := slices.IndexFunc(s.active, func(e models.GameEvent) bool { return e.ID == eventID })
	if idx < 0 {
		s.mu.Unlock()
		return models.Resolution{}, fmt.Errorf("%w: %s", models.ErrEventNotFound, eventID)
	}
	e := s.active[idx]
	if optionIndex < 0 || optionIndex >= len(e.Options) {
		s.mu.Unlock()
		return models.Resolution{}, fmt.Errorf("%w: %d for event %s", models.ErrInvalidOption, optionIndex, eventID)
	}
	opt := e.Options[optionIndex]
	s.active = slices.Delete(s.active, idx, idx+1)
	s.stress = clampStress(s.stress + opt.StressDelta)
	s.score += opt.ScoreDelta
	s.mu.Unlock()

	r := models.Resolution{
		SessionID:   s.id,
		EventID:     eventID,
		Kind:        models.ResolutionChosen,
		OptionLabel: opt.Label,
		StressDelta: opt.StressDelta,
		ScoreDelta:  opt.ScoreDelta,
		Time:        s.now(),
	}
	s.record(r)
	slog.Debug("Session.Resolve", "session_id", s.id, "event_id", eventID, "option", opt.Label)
	return r, nil
}

// AddStress shifts stress by delta within [0, MaxStress].
func (s *Session) AddStress(delta float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stress = clampStress(s.stress + delta)
}

// Overloaded reports whether stress has reached its maximum.
func (s *Session) Overloaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stress >= MaxStress
}

// Threat returns the current threat level.
func (s *Session) Threat() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.threatLocked()
}

// Rail returns the threat rail profile, dimmed while paused.
func (s *Session) Rail() threat.RailProfile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return threat.Profile(s.threatLocked(), s.state == models.StatePaused)
}

// Snapshot returns a copy of the session state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		ID:           s.id,
		ScenarioID:   s.scenarioID,
		State:        s.state,
		Stress:       s.stress,
		Score:        s.score,
		Generating:   s.generating,
		ActiveEvents: slices.Clone(s.active),
	}
}

func (s *Session) threatLocked() float64 {
	critical, warning := 0, 0
	for _, e := range s.active {
		switch {
		case e.IsCritical():
			critical++
		case e.IsWarning():
			warning++
		}
	}
	return threat.Score(s.stress, critical, warning)
}

func (s *Session) record(r models.Resolution) {
	if s.log == nil {
		return
	}
	if err := s.log.SaveResolution(r); err != nil {
		slog.Error("Session: failed to record resolution", "session_id", s.id, "event_id", r.EventID, "error", err)
	}
}

func clampStress(v float64) float64 {
	return min(max(v, 0), MaxStress)
}
