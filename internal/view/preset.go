package view

import (
	"strings"

	"github.com/rxtech-lab/stockview/internal/types"
	"github.com/rxtech-lab/stockview/pkg/errors"
)

// Preset is a named look-back window ending at the last bar of the series.
type Preset string

const (
	Preset5D  Preset = "5D"
	Preset1M  Preset = "1M"
	Preset3M  Preset = "3M"
	Preset6M  Preset = "6M"
	Preset1Y  Preset = "1Y"
	Preset5Y  Preset = "5Y"
	PresetAll Preset = "ALL"
)

// presetDays are calendar days, not trading days.
var presetDays = map[Preset]int{
	Preset5D: 5,
	Preset1M: 30,
	Preset3M: 93,
	Preset6M: 182,
	Preset1Y: 365,
	Preset5Y: 1825,
}

// Presets lists every preset in button order.
func Presets() []Preset {
	return []Preset{Preset5D, Preset1M, Preset3M, Preset6M, Preset1Y, Preset5Y, PresetAll}
}

// ParsePreset accepts preset ids case-insensitively ("all", "All", "1y").
func ParsePreset(s string) (Preset, error) {
	p := Preset(strings.ToUpper(strings.TrimSpace(s)))
	if p == PresetAll {
		return p, nil
	}

	if _, ok := presetDays[p]; ok {
		return p, nil
	}

	return "", errors.Newf(errors.ErrCodeInvalidPreset, "unknown range preset %q", s)
}

// Days returns the look-back length, or 0 for ALL.
func (p Preset) Days() int {
	return presetDays[p]
}

// Label is the button text.
func (p Preset) Label() string {
	if p == PresetAll {
		return "All"
	}

	return string(p)
}

// Window computes the preset's range against series. The result is not
// clamped; the start of a long preset may predate the series.
func (p Preset) Window(series types.PriceSeries) types.DateRange {
	if p == PresetAll {
		return series.FullRange()
	}

	end := series.MaxDate()

	return types.DateRange{Start: end.AddDate(0, 0, -p.Days()), End: end}
}
