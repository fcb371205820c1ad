package input

import (
	"github.com/lixenwraith/mpc-car/core"
)

// EventType classifies canvas input
type EventType uint8

const (
	EventNone EventType = iota
	// EventQuit is the window/terminal close request (Esc, Ctrl-C)
	EventQuit
	EventKey
	EventPointerDown
	EventPointerUp
	EventPointerMove
	EventResize
)

var eventNames = [...]string{
	EventNone:        "none",
	EventQuit:        "quit",
	EventKey:         "key",
	EventPointerDown: "pointer_down",
	EventPointerUp:   "pointer_up",
	EventPointerMove: "pointer_move",
	EventResize:      "resize",
}

func (t EventType) String() string {
	if int(t) < len(eventNames) {
		return eventNames[t]
	}
	return "unknown"
}

// Event is one item of the canvas input stream, pointer positions are in scene units
type Event struct {
	Type   EventType
	Key    rune
	Pos    core.Vec2
	Button int
}

// PrimaryButton is the pointer button that drags the target
const PrimaryButton = 1
