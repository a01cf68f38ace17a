// Package models defines the core data structures for ShowDirector.
//
// It includes game states, system categories, event templates and the concrete
// events instantiated from them, which are shared across modules.
package models

import (
	"errors"
	"time"
)

// GameState identifies a top-level screen/phase of a show.
type GameState string

const (
	StateMenu           GameState = "MENU"
	StateScenarioSelect GameState = "SCENARIO_SELECT"
	StateTutorial       GameState = "TUTORIAL"
	StatePlaying        GameState = "PLAYING"
	StatePaused         GameState = "PAUSED"
	StateShop           GameState = "SHOP"
	StateVictory        GameState = "VICTORY"
	StateGameOver       GameState = "GAME_OVER"
)

// IsValidGameState checks if the given state is known.
func IsValidGameState(s GameState) bool {
	switch s {
	case StateMenu, StateScenarioSelect, StateTutorial, StatePlaying,
		StatePaused, StateShop, StateVictory, StateGameOver:
		return true
	default:
		return false
	}
}

// SystemCategory classifies the venue subsystem an event belongs to.
type SystemCategory string

const (
	SystemSound    SystemCategory = "SOUND"
	SystemLighting SystemCategory = "LIGHTING"
	SystemPower    SystemCategory = "POWER"
	SystemSecurity SystemCategory = "SECURITY"
	SystemCrowd    SystemCategory = "CROWD"
)

// Severity thresholds used when counting event pressure.
const (
	SeverityWarning  = 2
	SeverityCritical = 3
)

// Error variables for better error handling and testability
var (
	ErrEmptyTemplatePool = errors.New("template pool is empty")
	ErrEventNotFound     = errors.New("event not found")
	ErrInvalidOption     = errors.New("invalid event option")
	ErrAlreadyGenerating = errors.New("event generation already in progress")
	ErrInvalidGameState  = errors.New("invalid game state")
)

// EventOption is a player-selectable response to an event.
type EventOption struct {
	Label       string  `json:"label"`
	StressDelta float64 `json:"stress_delta"`
	ScoreDelta  int     `json:"score_delta"`
}

// EventTemplate is static authored content that GameEvents are instantiated from.
// AllowedScenarios empty means the template fits every scenario.
type EventTemplate struct {
	Title            string        `json:"title"`
	Description      string        `json:"description"`
	Options          []EventOption `json:"options"`
	AllowedScenarios []string      `json:"allowed_scenarios,omitempty"`
}

// GameEvent is a live occurrence the player has to react to before ExpiresAt.
type GameEvent struct {
	ID            string         `json:"id"`
	System        SystemCategory `json:"system"`
	Title         string         `json:"title"`
	Description   string         `json:"description"`
	Severity      int            `json:"severity"`
	ExpiresAt     time.Time      `json:"expires_at"`
	Options       []EventOption  `json:"options"`
	CorrectAction string         `json:"correct_action"` // reserved, never populated procedurally
}

// Expired reports whether the event's window has closed at now.
func (e GameEvent) Expired(now time.Time) bool {
	return !now.Before(e.ExpiresAt)
}

// IsCritical reports whether the event counts as critical pressure.
func (e GameEvent) IsCritical() bool {
	return e.Severity >= SeverityCritical
}

// IsWarning reports whether the event counts as warning pressure.
func (e GameEvent) IsWarning() bool {
	return e.Severity == SeverityWarning
}

// ResolutionKind records how an event left the active list.
type ResolutionKind string

const (
	ResolutionChosen  ResolutionKind = "chosen"
	ResolutionExpired ResolutionKind = "expired"
)

// Resolution is the outcome of an event, kept in the event log.
type Resolution struct {
	SessionID   string         `json:"session_id"`
	EventID     string         `json:"event_id"`
	Kind        ResolutionKind `json:"kind"`
	OptionLabel string         `json:"option_label,omitempty"`
	StressDelta float64        `json:"stress_delta"`
	ScoreDelta  int            `json:"score_delta"`
	Time        time.Time      `json:"time"`
}
