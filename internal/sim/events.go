package sim

import (
	"fmt"

	"github.com/san-kum/orbitsim/internal/detect"
)

type EventKind int

const (
	EventCollision EventKind = iota
	EventEscape
	EventInvalidState
)

var eventKindNames = map[EventKind]string{
	EventCollision:    "collision",
	EventEscape:       "escape",
	EventInvalidState: "invalid_state",
}

func (k EventKind) String() string {
	if s, ok := eventKindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("EventKind(%d)", int(k))
}

func (k EventKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *EventKind) UnmarshalText(b []byte) error {
	for kind, name := range eventKindNames {
		if name == string(b) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown event kind %q", b)
}

// Event is a halting anomaly observed by the driver.
type Event struct {
	Kind      EventKind              `json:"kind"`
	Frame     int                    `json:"frame"`
	SimTime   float64                `json:"sim_time"`
	Collision *detect.CollisionEvent `json:"collision,omitempty"`
	Escape    *detect.EscapeEvent    `json:"escape,omitempty"`
	Message   string                 `json:"message"`
	Err       error                  `json:"-"`
}

type Observer interface {
	OnEvent(Event)
}

// ObserverFunc adapts a plain function to Observer.
type ObserverFunc func(Event)

func (f ObserverFunc) OnEvent(e Event) { f(e) }
