package irc

import (
	"strings"
	"unicode/utf8"

	"github.com/muesli/reflow/wordwrap"
	"github.com/sorcix/irc"

	"github.com/vovakirdan/chanserv/internal/core"
)

const (
	serverName     = "chanserv"
	verbCreate     = "CREATE"
	verbFail       = "FAIL"
	inviteOnlyFlag = "-invite-only"

	// lineLimit is the longest line, without CRLF, a client must accept.
	lineLimit = 510
	// minRoom keeps payload splitting usable for very long nicknames.
	minRoom = 64
)

var serverPrefix = &irc.Prefix{Name: serverName}

// args returns the middle params followed by the trailing param, if any.
func args(msg *irc.Message) []string {
	out := append([]string(nil), msg.Params...)
	if msg.Trailing != "" || msg.EmptyTrailing {
		out = append(out, msg.Trailing)
	}
	return out
}

func channelName(param string) string {
	return strings.TrimPrefix(param, "#")
}

// parse turns one inbound line into commands. JOIN and PART accept a
// comma-separated channel list. A non-empty code reports a protocol error.
func parse(msg *irc.Message) ([]core.Command, string) {
	a := args(msg)
	need := func(n int) bool { return len(a) >= n }

	switch strings.ToUpper(msg.Command) {
	case irc.NICK:
		if !need(1) {
			return nil, core.ErrCodeBadRequest
		}
		return []core.Command{{Kind: core.CommandNick, Nickname: a[0]}}, ""
	case verbCreate:
		if !need(1) {
			return nil, core.ErrCodeBadRequest
		}
		private := len(a) > 1 && strings.EqualFold(a[1], inviteOnlyFlag)
		return []core.Command{{Kind: core.CommandCreate, Channel: channelName(a[0]), Private: private}}, ""
	case irc.JOIN:
		if !need(1) {
			return nil, core.ErrCodeBadRequest
		}
		return perChannel(core.CommandJoin, a[0]), ""
	case irc.PART:
		if !need(1) {
			return nil, core.ErrCodeBadRequest
		}
		return perChannel(core.CommandLeave, a[0]), ""
	case irc.INVITE:
		if !need(2) {
			return nil, core.ErrCodeBadRequest
		}
		return []core.Command{{Kind: core.CommandInvite, Nickname: a[0], Channel: channelName(a[1])}}, ""
	case irc.KICK:
		if !need(2) {
			return nil, core.ErrCodeBadRequest
		}
		return []core.Command{{Kind: core.CommandKick, Channel: channelName(a[0]), Nickname: a[1]}}, ""
	case irc.PRIVMSG:
		if !need(2) {
			return nil, core.ErrCodeBadRequest
		}
		return []core.Command{{Kind: core.CommandMessage, Channel: channelName(a[0]), Body: a[1]}}, ""
	default:
		return nil, core.ErrCodeUnknown
	}
}

func perChannel(kind core.CommandKind, list string) []core.Command {
	names := strings.Split(list, ",")
	cmds := make([]core.Command, 0, len(names))
	for _, name := range names {
		cmds = append(cmds, core.Command{Kind: kind, Channel: channelName(name)})
	}
	return cmds
}

func verb(kind core.CommandKind) string {
	switch kind {
	case core.CommandNick:
		return irc.NICK
	case core.CommandCreate:
		return verbCreate
	case core.CommandJoin:
		return irc.JOIN
	case core.CommandInvite:
		return irc.INVITE
	case core.CommandMessage:
		return irc.PRIVMSG
	case core.CommandLeave:
		return irc.PART
	case core.CommandKick:
		return irc.KICK
	case core.CommandDisconnect:
		return irc.QUIT
	default:
		return strings.ToUpper(kind.String())
	}
}

func target(self string) string {
	if self == "" {
		return "*"
	}
	return self
}

func userPrefix(nick string) *irc.Prefix {
	return &irc.Prefix{Name: nick}
}

// render produces the lines a connection currently known as self must see for ev.
func render(ev *core.Event, self string) []*irc.Message {
	cmd := ev.Command
	channel := "#" + cmd.Channel

	switch ev.Kind {
	case core.EventError:
		return []*irc.Message{errorReply(cmd, ev.Error, self)}
	case core.EventConnected:
		return []*irc.Message{{
			Prefix:   serverPrefix,
			Command:  irc.RPL_WELCOME,
			Params:   []string{target(self)},
			Trailing: "Welcome to " + serverName + ", " + ev.Nickname,
		}}
	case core.EventDisconnected:
		out := []*irc.Message{{Prefix: userPrefix(ev.Nickname), Command: irc.QUIT, Trailing: "Quit"}}
		return append(out, closedNotices(ev.Closed, self)...)
	case core.EventNames:
		var out []*irc.Message
		var receiver string
		if cmd.Kind == core.CommandInvite {
			out = append(out, &irc.Message{Prefix: userPrefix(cmd.Sender), Command: irc.INVITE, Params: []string{cmd.Nickname, channel}})
			receiver = cmd.Nickname
		} else {
			out = append(out, &irc.Message{Prefix: userPrefix(cmd.Sender), Command: irc.JOIN, Params: []string{channel}})
			receiver = cmd.Sender
		}
		if receiver == self {
			out = append(out, namesReply(self, cmd.Channel, ev.Owner, ev.Members)...)
		}
		return out
	}

	switch cmd.Kind {
	case core.CommandNick:
		return []*irc.Message{{Prefix: userPrefix(cmd.Sender), Command: irc.NICK, Params: []string{cmd.Nickname}}}
	case core.CommandCreate:
		params := []string{channel}
		if cmd.Private {
			params = append(params, inviteOnlyFlag)
		}
		return []*irc.Message{{Prefix: userPrefix(cmd.Sender), Command: verbCreate, Params: params}}
	case core.CommandMessage:
		return privmsg(cmd.Sender, channel, cmd.Body)
	case core.CommandLeave:
		out := []*irc.Message{{Prefix: userPrefix(cmd.Sender), Command: irc.PART, Params: []string{channel}}}
		if self == cmd.Sender {
			return out
		}
		return append(out, closedNotices(ev.Closed, self)...)
	case core.CommandKick:
		out := []*irc.Message{{Prefix: userPrefix(cmd.Sender), Command: irc.KICK, Params: []string{channel, cmd.Nickname}}}
		if self == cmd.Nickname {
			return out
		}
		return append(out, closedNotices(ev.Closed, self)...)
	default:
		return nil
	}
}

// closedNotices removes self from channels that ceased to exist.
func closedNotices(closed []string, self string) []*irc.Message {
	out := make([]*irc.Message, 0, len(closed))
	for _, name := range closed {
		out = append(out, &irc.Message{
			Prefix:   serverPrefix,
			Command:  irc.KICK,
			Params:   []string{"#" + name, target(self)},
			Trailing: "Channel closed",
		})
	}
	return out
}

// privmsg renders a message body as one or more PRIVMSG lines. Line breaks
// in the body start a new line and long text is wrapped to fit lineLimit.
func privmsg(sender, channel, body string) []*irc.Message {
	head := ":" + sender + " " + irc.PRIVMSG + " " + channel + " :"
	room := max(lineLimit-len(head), minRoom)

	var out []*irc.Message
	for _, text := range wrap(body, room) {
		out = append(out, &irc.Message{
			Prefix:        userPrefix(sender),
			Command:       irc.PRIVMSG,
			Params:        []string{channel},
			Trailing:      text,
			EmptyTrailing: true,
		})
	}
	return out
}

var lineBreaks = strings.NewReplacer("\r\n", "\n", "\r", "\n", "\x00", "")

// wrap splits body into non-empty lines of at most room bytes. An empty
// body yields a single empty line.
func wrap(body string, room int) []string {
	body = lineBreaks.Replace(body)
	var out []string
	for _, line := range strings.Split(wordwrap.String(body, room), "\n") {
		if line == "" {
			continue
		}
		out = append(out, cut(line, room)...)
	}
	if len(out) == 0 {
		return []string{""}
	}
	return out
}

// cut splits s into chunks of at most room bytes on rune boundaries.
func cut(s string, room int) []string {
	var out []string
	for len(s) > room {
		i := room
		for i > 0 && !utf8.RuneStart(s[i]) {
			i--
		}
		if i == 0 {
			i = room
		}
		out = append(out, s[:i])
		s = s[i:]
	}
	return append(out, s)
}

// pack joins words with single spaces into lines of at most room bytes.
// A word longer than room gets a line of its own.
func pack(words []string, room int) []string {
	var out []string
	var b strings.Builder
	for _, w := range words {
		if b.Len() > 0 && b.Len()+1+len(w) > room {
			out = append(out, b.String())
			b.Reset()
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(w)
	}
	if b.Len() > 0 || len(out) == 0 {
		out = append(out, b.String())
	}
	return out
}

// namesReply lists members with the owner marked as operator, spread over
// as many 353 lines as needed.
func namesReply(self, channel, owner string, members []string) []*irc.Message {
	list := make([]string, len(members))
	for i, m := range members {
		if m == owner {
			list[i] = "@" + m
		} else {
			list[i] = m
		}
	}

	params := []string{target(self), "=", "#" + channel}
	head := ":" + serverName + " " + irc.RPL_NAMREPLY + " " + strings.Join(params, " ") + " :"
	room := max(lineLimit-len(head), minRoom)

	var out []*irc.Message
	for _, line := range pack(list, room) {
		out = append(out, &irc.Message{Prefix: serverPrefix, Command: irc.RPL_NAMREPLY, Params: params, Trailing: line})
	}
	return append(out, &irc.Message{
		Prefix:   serverPrefix,
		Command:  irc.RPL_ENDOFNAMES,
		Params:   []string{target(self), "#" + channel},
		Trailing: "End of NAMES list",
	})
}

// errorReply maps a processor error to its numeric. Codes with no RFC 2812
// numeric use a FAIL standard reply.
func errorReply(cmd core.Command, err *core.CoreError, self string) *irc.Message {
	channel := "#" + cmd.Channel
	numeric := func(code string, params ...string) *irc.Message {
		return &irc.Message{
			Prefix:   serverPrefix,
			Command:  code,
			Params:   append([]string{target(self)}, params...),
			Trailing: err.Message,
		}
	}

	switch err.Code {
	case core.ErrCodeInvalidName:
		if cmd.Kind == core.CommandNick {
			return numeric(irc.ERR_ERRONEUSNICKNAME, cmd.Nickname)
		}
	case core.ErrCodeNameInUse:
		return numeric(irc.ERR_NICKNAMEINUSE, cmd.Nickname)
	case core.ErrCodeNoSuchChannel:
		return numeric(irc.ERR_NOSUCHCHANNEL, channel)
	case core.ErrCodeNoSuchUser:
		if cmd.Nickname != "" {
			return numeric(irc.ERR_NOSUCHNICK, cmd.Nickname)
		}
	case core.ErrCodeNotOwner:
		return numeric(irc.ERR_CHANOPRIVSNEEDED, channel)
	case core.ErrCodeNotInChannel:
		if cmd.Kind == core.CommandKick {
			return numeric(irc.ERR_USERNOTINCHANNEL, cmd.Nickname, channel)
		}
		return numeric(irc.ERR_NOTONCHANNEL, channel)
	case core.ErrCodeJoinPrivateChannel:
		return numeric(irc.ERR_INVITEONLYCHAN, channel)
	}

	params := []string{verb(cmd.Kind), strings.ToUpper(err.Code)}
	if cmd.Channel != "" {
		params = append(params, channel)
	}
	return &irc.Message{Prefix: serverPrefix, Command: verbFail, Params: params, Trailing: err.Message}
}

// protocolError answers a line that never reached the processor.
func protocolError(self, command, code string) *irc.Message {
	if code == core.ErrCodeUnknown {
		return &irc.Message{Prefix: serverPrefix, Command: irc.ERR_UNKNOWNCOMMAND, Params: []string{target(self), command}, Trailing: "Unknown command"}
	}
	return &irc.Message{Prefix: serverPrefix, Command: irc.ERR_NEEDMOREPARAMS, Params: []string{target(self), command}, Trailing: "Not enough parameters"}
}

func pong(a []string) *irc.Message {
	msg := &irc.Message{Prefix: serverPrefix, Command: irc.PONG, Params: []string{serverName}}
	if len(a) > 0 {
		msg.Trailing = a[0]
	}
	return msg
}
