// Package gestures turns raw mouse and touch events into page flip input.
package gestures

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-drift/pageflip/pkg/geometry"
)

// PointerPhase is the stage of a pointer interaction.
type PointerPhase int

const (
	PointerPhaseDown PointerPhase = iota
	PointerPhaseMove
	PointerPhaseUp
	PointerPhaseCancel
)

func (p PointerPhase) String() string {
	switch p {
	case PointerPhaseDown:
		return "down"
	case PointerPhaseMove:
		return "move"
	case PointerPhaseUp:
		return "up"
	case PointerPhaseCancel:
		return "cancel"
	default:
		return fmt.Sprintf("PointerPhase(%d)", int(p))
	}
}

// ParsePointerPhase converts a phase name as printed by String.
func ParsePointerPhase(s string) (PointerPhase, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "down":
		return PointerPhaseDown, nil
	case "move":
		return PointerPhaseMove, nil
	case "up":
		return PointerPhaseUp, nil
	case "cancel":
		return PointerPhaseCancel, nil
	default:
		return 0, fmt.Errorf("unknown pointer phase %q", s)
	}
}

// PointerKind distinguishes mouse input from touch input. Hovering is only
// possible with a mouse.
type PointerKind int

const (
	PointerKindMouse PointerKind = iota
	PointerKindTouch
)

func (k PointerKind) String() string {
	if k == PointerKindTouch {
		return "touch"
	}
	return "mouse"
}

// PointerEvent is one pointer sample in window coordinates.
type PointerEvent struct {
	PointerID int64
	Kind      PointerKind
	Phase     PointerPhase
	Position  geometry.Point
	Time      time.Time
}
