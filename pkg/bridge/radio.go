package bridge

import (
	"fmt"

	fx "github.com/robotalks/linebot/pkg/framework"
)

// Radio is a wireless transport wireless clients connect through.
//
// A Radio runs as a Runnable of the relay's loop and reports activity by
// posting RadioEvents to the loop; it never touches relay state itself.
// Advertise and Publish are called from the loop goroutine and may be
// called before Run.
type Radio interface {
	fx.Named
	fx.Runnable
	// Advertise makes the radio discoverable again after a disconnect.
	Advertise() error
	// Publish replaces the readable value with data and notifies conns,
	// the connections of this radio.
	Publish(data []byte, conns []string) error
}

// EventKind is the kind of RadioEvent.
type EventKind int

// Event kinds.
const (
	Connected EventKind = iota
	Disconnected
	Written
)

func (k EventKind) String() string {
	switch k {
	case Connected:
		return "connected"
	case Disconnected:
		return "disconnected"
	case Written:
		return "written"
	}
	return fmt.Sprintf("EventKind(%d)", int(k))
}

// RadioEvent is posted by a Radio to the loop.
type RadioEvent struct {
	Kind  EventKind
	Radio Radio
	// Conn identifies the connection within the radio.
	Conn string
	// Data is the value written by the client.
	Data []byte
}

// PostEvent posts ev to the loop and wakes it up.
func PostEvent(lc fx.LoopControl, ev *RadioEvent) {
	lc.PostMessage(ev)
	lc.TriggerNext()
}
