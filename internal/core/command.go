package core

// CommandKind describes what the client wants to do.
type CommandKind int

const (
	// CommandConnect registers a new connection under a default nickname.
	CommandConnect CommandKind = iota
	// CommandDisconnect removes a connection from every channel and the registry.
	CommandDisconnect
	// CommandNick changes the sender's nickname.
	CommandNick
	// CommandCreate creates a channel owned by the sender.
	CommandCreate
	// CommandJoin adds the sender to a public channel.
	CommandJoin
	// CommandInvite adds another user to a private channel owned by the sender.
	CommandInvite
	// CommandMessage delivers a chat message to channel members.
	CommandMessage
	// CommandLeave removes the sender from a channel.
	CommandLeave
	// CommandKick removes another user from a channel owned by the sender.
	CommandKick
)

var commandNames = [...]string{
	CommandConnect:    "connect",
	CommandDisconnect: "disconnect",
	CommandNick:       "nick",
	CommandCreate:     "create",
	CommandJoin:       "join",
	CommandInvite:     "invite",
	CommandMessage:    "message",
	CommandLeave:      "leave",
	CommandKick:       "kick",
}

func (k CommandKind) String() string {
	if k < 0 || int(k) >= len(commandNames) {
		return "unknown"
	}
	return commandNames[k]
}

// Command represents an action requested by a client.
//
// Nickname is the new nickname for CommandNick and the target user for
// CommandInvite and CommandKick. Sender is filled in by the Processor with the
// originator's nickname at the time the command ran.
type Command struct {
	Kind     CommandKind
	User     UserID
	Sender   string
	Channel  string
	Nickname string
	Private  bool
	Body     string
}

// Connect builds a CommandConnect for id.
func Connect(id UserID) Command {
	return Command{Kind: CommandConnect, User: id}
}

// Disconnect builds a CommandDisconnect for id.
func Disconnect(id UserID) Command {
	return Command{Kind: CommandDisconnect, User: id}
}
