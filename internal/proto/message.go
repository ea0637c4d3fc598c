package proto

import "encoding/json"

// Inbound is the envelope for messages coming from the client.
type Inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

const (
	ProtocolVersion = 2

	InboundTypeNick   = "nick"
	InboundTypeCreate = "create"
	InboundTypeJoin   = "join"
	InboundTypeInvite = "invite"
	InboundTypeMsg    = "msg"
	InboundTypeLeave  = "leave"
	InboundTypeKick   = "kick"

	OutboundTypeEvent = "event"
	OutboundTypeError = "error"
)

// Event names carried in Outbound.Event.
const (
	EventConnected    = "connected"
	EventDisconnected = "disconnected"
	EventNick         = "nick"
	EventCreate       = "create"
	EventNames        = "names"
	EventMessage      = "message"
	EventLeave        = "leave"
	EventKick         = "kick"
)

// NickData asks for a new nickname.
type NickData struct {
	Nick string `json:"nick"`
}

// CreateData creates a channel owned by the sender.
type CreateData struct {
	Channel    string `json:"channel"`
	InviteOnly bool   `json:"invite_only,omitempty"`
}

// ChannelData names a channel to join or leave.
type ChannelData struct {
	Channel string `json:"channel"`
}

// TargetData names a channel and a user to invite or kick.
type TargetData struct {
	Channel string `json:"channel"`
	User    string `json:"user"`
}

// MsgData is a chat message from the client.
type MsgData struct {
	Channel string `json:"channel"`
	Text    string `json:"text"`
}

// Outbound is the envelope for messages sent to the client.
type Outbound struct {
	Type  string `json:"type"`
	Event string `json:"event,omitempty"`
	Data  any    `json:"data,omitempty"`
	Error *Error `json:"error,omitempty"`
}

// EventConnectedData tells a new connection its nickname.
type EventConnectedData struct {
	User     string `json:"user"`
	Protocol int    `json:"protocol"`
}

// EventDisconnectedData notifies that a user left the server.
type EventDisconnectedData struct {
	User     string   `json:"user"`
	Channels []string `json:"channels"`
	// Closed lists the channels the user owned, which no longer exist.
	Closed []string `json:"closed,omitempty"`
}

// EventNickData notifies a nickname change.
type EventNickData struct {
	User string `json:"user"`
	Nick string `json:"nick"`
}

// EventCreateData confirms a channel creation to its owner.
type EventCreateData struct {
	Channel    string `json:"channel"`
	User       string `json:"user"`
	InviteOnly bool   `json:"invite_only"`
}

// EventNamesData reports a join or invite with the full membership.
type EventNamesData struct {
	Channel string   `json:"channel"`
	User    string   `json:"user"`
	Target  string   `json:"target,omitempty"`
	Owner   string   `json:"owner"`
	Members []string `json:"members"`
}

// EventMessageData carries a chat message.
type EventMessageData struct {
	Channel string `json:"channel"`
	User    string `json:"user"`
	Text    string `json:"text"`
}

// EventLeaveData notifies that a user left a channel.
type EventLeaveData struct {
	Channel string `json:"channel"`
	User    string `json:"user"`
	// Closed is set when the owner left and the channel was removed.
	Closed bool `json:"closed,omitempty"`
}

// EventKickData notifies that a user was removed from a channel.
type EventKickData struct {
	Channel string `json:"channel"`
	User    string `json:"user"`
	Target  string `json:"target"`
	Closed  bool   `json:"closed,omitempty"`
}

// Error describes a protocol-level error response.
type Error struct {
	Code    string `json:"code"`
	Msg     string `json:"msg"`
	Command string `json:"command,omitempty"`
}
