package view

import (
	"strings"

	"github.com/rxtech-lab/stockview/pkg/errors"
)

// ActionKind names an action on the wire.
type ActionKind string

const (
	KindSearch        ActionKind = "search"
	KindRangePreset   ActionKind = "preset"
	KindToggleMarkers ActionKind = "toggle_markers"
	KindInitialLoad   ActionKind = "initial_load"
)

// Action is one user interaction. The set is closed: Search, RangePreset,
// ToggleMarkers and InitialLoad.
type Action interface {
	Kind() ActionKind
	action()
}

// Search submits symbol text. Blank text keeps the current symbol.
type Search struct {
	Raw string
}

// RangePreset selects one of the look-back presets.
type RangePreset struct {
	Preset Preset
}

// ToggleMarkers flips point markers on the close-price trace.
type ToggleMarkers struct{}

// InitialLoad is delivered once when a session is opened, before any user input.
type InitialLoad struct{}

func (Search) Kind() ActionKind        { return KindSearch }
func (RangePreset) Kind() ActionKind   { return KindRangePreset }
func (ToggleMarkers) Kind() ActionKind { return KindToggleMarkers }
func (InitialLoad) Kind() ActionKind   { return KindInitialLoad }

func (Search) action()        {}
func (RangePreset) action()   {}
func (ToggleMarkers) action() {}
func (InitialLoad) action()   {}

// ParseAction builds an action from its wire form. symbol is used by search,
// preset by preset; both are ignored otherwise.
func ParseAction(kind, symbol, preset string) (Action, error) {
	switch ActionKind(strings.ToLower(strings.TrimSpace(kind))) {
	case KindSearch:
		return Search{Raw: symbol}, nil
	case KindRangePreset:
		p, err := ParsePreset(preset)
		if err != nil {
			return nil, err
		}

		return RangePreset{Preset: p}, nil
	case KindToggleMarkers:
		return ToggleMarkers{}, nil
	case KindInitialLoad:
		return InitialLoad{}, nil
	default:
		return nil, errors.Newf(errors.ErrCodeInvalidAction, "unknown action type %q", kind)
	}
}
