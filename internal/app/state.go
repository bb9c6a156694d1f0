package app

import "fmt"

// State is the position of the application state machine.
type State int

const (
	WaitingToConnect State = iota
	Connected
	Disconnected
	Reconnecting
	Restarting
	Exiting
)

func (s State) String() string {
	switch s {
	case WaitingToConnect:
		return "WaitingToConnect"
	case Connected:
		return "Connected"
	case Disconnected:
		return "Disconnected"
	case Reconnecting:
		return "Reconnecting"
	case Restarting:
		return "Restarting"
	case Exiting:
		return "Exiting"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}
