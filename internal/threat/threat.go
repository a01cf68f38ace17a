// Package threat scores how much danger a show is in and maps that score onto the
// presentation profile of the HUD threat rail.
package threat

import "math"

// Tone is the discrete presentation bucket derived from a threat level.
type Tone string

const (
	ToneCalm     Tone = "CALM"
	ToneElevated Tone = "ELEVATED"
	ToneCritical Tone = "CRITICAL"
)

// Scoring weights.
const (
	stressWeight   = 0.68
	eventWeight    = 0.52
	criticalWeight = 0.42
	warningWeight  = 0.14
)

// Tone thresholds, evaluated high to low.
const (
	CriticalThreshold = 0.72
	ElevatedThreshold = 0.38
)

// pausedDamping scales rail opacity while the show is paused.
const pausedDamping = 0.7

// RailProfile describes how the threat rail should be drawn.
type RailProfile struct {
	Tone         Tone    `json:"tone"`
	Opacity      float64 `json:"opacity"`
	PulseMs      int     `json:"pulse_ms"`
	GlowStrength float64 `json:"glow_strength"`
}

// Score folds stress (0-100) and active event pressure into a level in [0,1].
// The weighted terms may exceed 1 together; the result saturates.
func Score(stress float64, criticalEvents, warningEvents int) float64 {
	normalized := clamp(stress, 0, 100) / 100
	load := clamp(float64(criticalEvents)*criticalWeight+float64(warningEvents)*warningWeight, 0, 1)
	return clamp(normalized*stressWeight+load*eventWeight, 0, 1)
}

// Profile maps a threat level to a rail profile. Pausing only dims the opacity.
func Profile(level float64, paused bool) RailProfile {
	level = clamp(level, 0, 1)
	damp := 1.0
	if paused {
		damp = pausedDamping
	}

	switch {
	case level >= CriticalThreshold:
		return RailProfile{
			Tone:         ToneCritical,
			Opacity:      clamp((0.42+level*0.38)*damp, 0.20, 0.88),
			PulseMs:      900,
			GlowStrength: 0.9,
		}
	case level >= ElevatedThreshold:
		return RailProfile{
			Tone:         ToneElevated,
			Opacity:      clamp((0.26+level*0.30)*damp, 0.16, 0.68),
			PulseMs:      1300,
			GlowStrength: 0.62,
		}
	default:
		return RailProfile{
			Tone:         ToneCalm,
			Opacity:      clamp((0.12+level*0.20)*damp, 0.08, 0.42),
			PulseMs:      1800,
			GlowStrength: 0.36,
		}
	}
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
