package domain

import (
	"fmt"
	"math"
	"strconv"
)

// Palette colours shared by both scales.
const (
	ColorNoData = "#FFFFFF"
	ColorLow    = "#ACCCDE"
	ColorHigh   = "#037CC2"
)

// Observation is an aggregate value that may be absent. Absent, zero and
// negative observations all render as no data.
type Observation struct {
	Value   float64
	Present bool
}

// Observed wraps a known value.
func Observed(v float64) Observation { return Observation{Value: v, Present: true} }

// Missing is the observation for a region with no row.
var Missing = Observation{}

func (o Observation) hasData() bool {
	return o.Present && !math.IsNaN(o.Value) && o.Value > 0
}

// Step is one bin of a stepped scale. Values below UpperBound (and at or above
// the previous bin's bound) take Color.
type Step struct {
	UpperBound float64
	Color      string
	Label      string
}

// SpendingSteps is the fixed 6-class ColorBrewer YlGnBu scheme used by every
// stepped map.
var SpendingSteps = []Step{
	{UpperBound: 500_000, Color: "#fdfde6", Label: "< $500K"},
	{UpperBound: 5_000_000, Color: "#d6ebca", Label: "$500K to $5M"},
	{UpperBound: 50_000_000, Color: "#7fcdbb", Label: "$5M to $50M"},
	{UpperBound: 250_000_000, Color: "#41b6c4", Label: "$50M to $250M"},
	{UpperBound: 1_000_000_000, Color: "#2c7fb8", Label: "$250M to $1B"},
	{UpperBound: 5_000_000_000, Color: "#253494", Label: "$1B+"},
}

// LegendKind distinguishes the two legend layouts.
type LegendKind string

const (
	LegendStepped    LegendKind = "stepped"
	LegendContinuous LegendKind = "continuous"
)

// Legend describes the one legend attached to a map.
type Legend struct {
	Kind    LegendKind
	Title   string
	Caption string
	Steps   []Step // stepped only

	// Continuous only.
	Low, High string
	Min, Max  float64
}

// ColorScale maps an observation to a fill colour.
type ColorScale interface {
	Color(o Observation) string
	Legend(title string) Legend
}

// SteppedScale bins values into fixed dollar ranges.
type SteppedScale struct {
	Steps []Step
}

// NewSteppedScale returns the standard spending bins.
func NewSteppedScale() SteppedScale {
	return SteppedScale{Steps: SpendingSteps}
}

// Color returns the colour of the first bin whose bound exceeds the value,
// or the last bin when the value exceeds every bound.
func (s SteppedScale) Color(o Observation) string {
	if !o.hasData() || len(s.Steps) == 0 {
		return ColorNoData
	}
	for _, step := range s.Steps {
		if o.Value < step.UpperBound {
			return step.Color
		}
	}
	return s.Steps[len(s.Steps)-1].Color
}

func (s SteppedScale) Legend(title string) Legend {
	return Legend{Kind: LegendStepped, Title: title, Caption: title, Steps: s.Steps}
}

// ContinuousScale blends ColorLow→ColorHigh across [Min, Max].
type ContinuousScale struct {
	Min, Max float64
	Linear   bool // default is log1p scaling
}

func (s ContinuousScale) Color(o Observation) string {
	if !o.hasData() {
		return ColorNoData
	}
	if s.Max <= s.Min {
		return ColorLow
	}

	var t float64
	if s.Linear {
		t = (o.Value - s.Min) / (s.Max - s.Min)
	} else {
		base := math.Log1p(math.Max(s.Min, 0))
		t = (math.Log1p(o.Value) - base) / (math.Log1p(s.Max) - base)
	}
	t = math.Max(0, math.Min(1, t))

	return blend(ColorLow, ColorHigh, t)
}

func (s ContinuousScale) Legend(title string) Legend {
	caption := title + " (Log Scale)"
	if s.Linear {
		caption = title + " (Linear Scale)"
	}
	return Legend{
		Kind:    LegendContinuous,
		Title:   title,
		Caption: caption,
		Low:     ColorLow,
		High:    ColorHigh,
		Min:     s.Min,
		Max:     s.Max,
	}
}

// blend interpolates each RGB channel and truncates toward zero.
func blend(lo, hi string, t float64) string {
	lr, lg, lb := parseHex(lo)
	hr, hg, hb := parseHex(hi)
	mix := func(a, b uint8) int {
		return int(float64(a) + (float64(b)-float64(a))*t)
	}
	return fmt.Sprintf("#%02x%02x%02x", mix(lr, hr), mix(lg, hg), mix(lb, hb))
}

// parseHex decodes "#RRGGBB". Palette colours are constants, so malformed
// input decodes as black rather than erroring.
func parseHex(c string) (r, g, b uint8) {
	if len(c) != 7 || c[0] != '#' {
		return 0, 0, 0
	}
	v, err := strconv.ParseUint(c[1:], 16, 32)
	if err != nil {
		return 0, 0, 0
	}
	return uint8(v >> 16), uint8(v >> 8), uint8(v)
}
