package core

// EventKind is a notification the core emits to clients.
type EventKind int

const (
	// EventConnected tells a new connection its assigned nickname.
	EventConnected EventKind = iota
	// EventDisconnected tells users sharing a channel that a user left the server.
	EventDisconnected
	// EventOkay echoes a successful command to everyone who must see it.
	EventOkay
	// EventNames echoes a Join or Invite together with the full membership.
	EventNames
	// EventError reports a failed command to its originator only.
	EventError
)

var eventNames = [...]string{
	EventConnected:    "connected",
	EventDisconnected: "disconnected",
	EventOkay:         "okay",
	EventNames:        "names",
	EventError:        "error",
}

func (k EventKind) String() string {
	if k < 0 || int(k) >= len(eventNames) {
		return "unknown"
	}
	return eventNames[k]
}

// Event is the outcome of one command: who must be told, and what.
// Slices are sorted and never shared with registry state.
type Event struct {
	Kind    EventKind
	Command Command
	Error   *CoreError

	// Recipients are the nicknames to deliver to. Errors go to Command.User
	// regardless of this list.
	Recipients []string

	// Nickname is the assigned nickname for EventConnected and the departed
	// nickname for EventDisconnected.
	Nickname string
	// Channels lists the channels a disconnected user was in.
	Channels []string
	// Closed lists channels removed because their owner left, was kicked or
	// disconnected. Set for Leave, Kick and Disconnect.
	Closed []string

	// Members and Owner are set for EventNames.
	Members []string
	Owner   string
}

// Failed reports whether the event carries an error.
func (e *Event) Failed() bool {
	return e.Kind == EventError
}
