// Package cinematic maps scene transitions to the overlay shown while switching states.
package cinematic

import "github.com/BTreeMap/ShowDirector/internal/models"

// Tint is the overlay color family.
type Tint string

const (
	TintCyan    Tint = "CYAN"
	TintSlate   Tint = "SLATE"
	TintAmber   Tint = "AMBER"
	TintEmerald Tint = "EMERALD"
	TintRed     Tint = "RED"
	TintIndigo  Tint = "INDIGO"
)

// Style is the overlay for one transition.
type Style struct {
	Label      string `json:"label"`
	Tint       Tint   `json:"tint"`
	DurationMs int    `json:"duration_ms"`
}

var (
	resumeStyle = Style{Label: "REANUDANDO SHOW", Tint: TintCyan, DurationMs: 650}

	byTarget = map[models.GameState]Style{
		models.StatePlaying:  {Label: "SHOW EN VIVO", Tint: TintCyan, DurationMs: 900},
		models.StatePaused:   {Label: "SHOW EN PAUSA", Tint: TintSlate, DurationMs: 480},
		models.StateShop:     {Label: "TIENDA DE EQUIPO", Tint: TintAmber, DurationMs: 700},
		models.StateVictory:  {Label: "SHOW COMPLETADO", Tint: TintEmerald, DurationMs: 1600},
		models.StateGameOver: {Label: "SHOW CANCELADO", Tint: TintRed, DurationMs: 1600},
		models.StateMenu:     {Label: "VOLVIENDO AL MENÚ", Tint: TintIndigo, DurationMs: 750},
	}
)

// For returns the overlay for moving from one state to another, or nil when no
// cinematic applies. An empty from means there was no previous state.
func For(from, to models.GameState) *Style {
	if from == to {
		return nil
	}
	if to == models.StatePlaying && from == models.StatePaused {
		s := resumeStyle
		return &s
	}
	s, ok := byTarget[to]
	if !ok {
		return nil
	}
	return &s
}
