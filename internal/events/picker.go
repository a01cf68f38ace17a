// Package events instantiates procedural GameEvents from the static template catalog.
package events

import (
	"math/rand/v2"
	"slices"

	"github.com/BTreeMap/ShowDirector/internal/models"
	"github.com/BTreeMap/ShowDirector/internal/scenario"
)

// Template weights for the weighted draw.
const (
	DirectMatchWeight = 3
	DefaultWeight     = 1
)

// Eligible returns the templates allowed in scenarioID, preserving order.
func Eligible(pool []models.EventTemplate, scenarioID string) []models.EventTemplate {
	out := make([]models.EventTemplate, 0, len(pool))
	for _, tpl := range pool {
		if scenario.IsAllowed(tpl.AllowedScenarios, scenarioID) {
			out = append(out, tpl)
		}
	}
	return out
}

// Weight returns the draw weight of a template for scenarioID.
func Weight(tpl models.EventTemplate, scenarioID string) int {
	if slices.Contains(tpl.AllowedScenarios, scenarioID) {
		return DirectMatchWeight
	}
	return DefaultWeight
}

// Pick draws one template using cumulative weights, favoring templates tagged
// directly for scenarioID 3:1. It returns false for an empty list.
func Pick(rng *rand.Rand, templates []models.EventTemplate, scenarioID string) (models.EventTemplate, bool) {
	if len(templates) == 0 {
		return models.EventTemplate{}, false
	}
	total := 0
	for _, tpl := range templates {
		total += Weight(tpl, scenarioID)
	}
	r := rng.IntN(total)
	for _, tpl := range templates {
		r -= Weight(tpl, scenarioID)
		if r < 0 {
			return tpl, true
		}
	}
	return templates[len(templates)-1], true
}
