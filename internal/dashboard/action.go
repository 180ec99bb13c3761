package dashboard

import (
	"github.com/lehigh-university-libraries/crossview/internal/crossfilter"
)

// ActionKind names a user interaction.
type ActionKind string

const (
	ActionToggle ActionKind = "toggle"
	ActionHover  ActionKind = "hover"
	ActionLeave  ActionKind = "leave"
	ActionReset  ActionKind = "reset"
	ActionBrush  ActionKind = "brush"
	ActionClear  ActionKind = "clear"
	ActionNext   ActionKind = "next"
	ActionPrev   ActionKind = "prev"
)

// Action is one interaction with one panel. Key is the category for
// toggle, hover and leave; Lo and Hi bound a brush.
type Action struct {
	Kind ActionKind         `json:"kind"`
	View crossfilter.ViewID `json:"view"`
	Key  string             `json:"key,omitempty"`
	Lo   float64            `json:"lo,omitempty"`
	Hi   float64            `json:"hi,omitempty"`
}
