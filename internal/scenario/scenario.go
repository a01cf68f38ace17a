// Package scenario holds the scenario difficulty tiers and decides which event
// templates are eligible for a given scenario.
package scenario

import "slices"

// Known scenario identifiers.
const (
	CoffeeShopGig    = "coffee_shop_gig"
	WeddingReception = "wedding_reception"
	CorporateGala    = "corporate_gala"
	StadiumTour      = "stadium_tour"
	MusicFestival    = "music_festival"
	StormFestival    = "storm_festival"
	BlackoutFinale   = "blackout_finale"
)

var (
	hardScenarios    = []string{StadiumTour, MusicFestival}
	extremeScenarios = []string{StormFestival, BlackoutFinale}
)

// Hard returns the HARD tier scenario ids.
func Hard() []string { return slices.Clone(hardScenarios) }

// Extreme returns the EXTREME tier scenario ids.
func Extreme() []string { return slices.Clone(extremeScenarios) }

// IsHard reports whether id belongs to the HARD tier.
func IsHard(id string) bool { return slices.Contains(hardScenarios, id) }

// IsExtreme reports whether id belongs to the EXTREME tier.
func IsExtreme(id string) bool { return slices.Contains(extremeScenarios, id) }

// IsAllowed decides whether content tagged with allowed may appear in scenarioID.
// An empty allow-list means no restriction. EXTREME scenarios also accept HARD-tagged content.
func IsAllowed(allowed []string, scenarioID string) bool {
	if len(allowed) == 0 {
		return true
	}
	if slices.Contains(allowed, scenarioID) {
		return true
	}
	if IsHard(scenarioID) {
		return slices.ContainsFunc(allowed, IsHard)
	}
	if IsExtreme(scenarioID) {
		return slices.ContainsFunc(allowed, func(id string) bool {
			return IsExtreme(id) || IsHard(id)
		})
	}
	return false
}
