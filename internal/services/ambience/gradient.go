package ambience

import (
	"sort"

	"github.com/lorelight/lorelight-go/pkg/hueapi"
)

// Default gradient shown when no lighting is authoritative.
const (
	DefaultFrom = "rgba(139, 92, 246, 0.50)"
	DefaultTo   = "rgba(236, 72, 153, 0.50)"
)

// Dim gradient shown when every extracted light is off.
const (
	DimFrom = "rgba(17, 24, 39, 0.80)"
	DimTo   = "rgba(31, 41, 55, 0.70)"
)

// variationBriScale derives a second color from a single light by scaling
// its brightness.
const variationBriScale = 0.55

// Opacity bands keyed on average brightness: dim lights stay perceptible,
// bright lights don't overwhelm the gradient.
const (
	opacityLow  = 0.75 // avg bri < 85
	opacityMid  = 0.60 // avg bri < 170
	opacityHigh = 0.45
)

// GradientPair is the two CSS colors the client paints behind the active view.
type GradientPair struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// DeriveGradient computes the display gradient from whichever light state is
// authoritative. Priority: the active scene's embedded config, then the
// standalone active preset, then the default pair. Pure function, no side
// effects.
func DeriveGradient(sceneConfig, standaloneConfig *hueapi.LightConfig) GradientPair {
	config := sceneConfig
	if config.IsEmpty() {
		config = standaloneConfig
	}
	if config.IsEmpty() {
		return GradientPair{From: DefaultFrom, To: DefaultTo}
	}

	states := extractStates(config, 2)
	if len(states) == 0 {
		return GradientPair{From: DefaultFrom, To: DefaultTo}
	}

	var on []hueapi.LightState
	for _, s := range states {
		if s.IsOn() {
			on = append(on, s)
		}
	}
	if len(on) == 0 {
		return GradientPair{From: DimFrom, To: DimTo}
	}

	alpha := opacityFor(on)

	first := StateColor(on[0])
	if len(on) == 1 {
		variant := on[0]
		scaled := int(float64(briOf(variant)) * variationBriScale)
		variant.Bri = &scaled
		return GradientPair{
			From: first.RGBA(alpha),
			To:   StateColor(variant).RGBA(alpha),
		}
	}

	return GradientPair{
		From: first.RGBA(alpha),
		To:   StateColor(on[1]).RGBA(alpha),
	}
}

// extractStates pulls up to max light states from the config, groups before
// individual lights. IDs are visited in sorted order within each tier so the
// derivation is deterministic.
func extractStates(config *hueapi.LightConfig, max int) []hueapi.LightState {
	var states []hueapi.LightState

	for _, id := range sortedKeys(config.Groups) {
		if len(states) >= max {
			return states
		}
		states = append(states, config.Groups[id])
	}
	for _, id := range sortedKeys(config.Lights) {
		if len(states) >= max {
			return states
		}
		states = append(states, config.Lights[id])
	}
	return states
}

func opacityFor(states []hueapi.LightState) float64 {
	total := 0
	for _, s := range states {
		total += briOf(s)
	}
	avg := total / len(states)
	switch {
	case avg < 85:
		return opacityLow
	case avg < 170:
		return opacityMid
	default:
		return opacityHigh
	}
}

func briOf(s hueapi.LightState) int {
	if s.Bri == nil {
		return 0
	}
	return *s.Bri
}

func sortedKeys(m map[string]hueapi.LightState) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
