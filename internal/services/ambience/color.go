// Package ambience derives display gradient colors from live lighting state.
package ambience

import (
	"fmt"
	"math"

	"github.com/lorelight/lorelight-go/pkg/hueapi"
)

// RGB is an 8-bit color triple.
type RGB struct {
	R uint8
	G uint8
	B uint8
}

// HueSatBriToRGB converts bridge color space (hue 0-65535, sat 0-254,
// bri 0-254) to RGB. A zero saturation yields a neutral gray scaled by
// brightness.
func HueSatBriToRGB(hue, sat, bri int) RGB {
	h := float64(clamp(hue, 0, hueapi.HueMax)) / float64(hueapi.HueMax) * 360.0
	s := float64(clamp(sat, 0, hueapi.SatMax)) / float64(hueapi.SatMax)
	v := float64(clamp(bri, 0, hueapi.BriMax)) / float64(hueapi.BriMax)

	c := v * s
	x := c * (1 - math.Abs(math.Mod(h/60.0, 2)-1))
	m := v - c

	var r, g, b float64
	switch {
	case h < 60:
		r, g, b = c, x, 0
	case h < 120:
		r, g, b = x, c, 0
	case h < 180:
		r, g, b = 0, c, x
	case h < 240:
		r, g, b = 0, x, c
	case h < 300:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}

	return RGB{
		R: uint8(math.Round((r + m) * 255)),
		G: uint8(math.Round((g + m) * 255)),
		B: uint8(math.Round((b + m) * 255)),
	}
}

// RGBA formats the color as a CSS rgba() value.
func (c RGB) RGBA(alpha float64) string {
	return fmt.Sprintf("rgba(%d, %d, %d, %.2f)", c.R, c.G, c.B, alpha)
}

// StateColor converts a light state's color fields to RGB. Missing hue or
// saturation fall back to zero, so a brightness-only state renders as a
// neutral gray rather than an arbitrary hue.
func StateColor(state hueapi.LightState) RGB {
	hue, sat, bri := 0, 0, 0
	if state.Hue != nil {
		hue = *state.Hue
	}
	if state.Sat != nil {
		sat = *state.Sat
	}
	if state.Bri != nil {
		bri = *state.Bri
	}
	return HueSatBriToRGB(hue, sat, bri)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
