package http

import (
	"encoding/json"

	"github.com/vovakirdan/chanserv/internal/core"
	"github.com/vovakirdan/chanserv/internal/proto"
)

// inboundToCommand decodes a client envelope. The returned command carries no
// sender: the hub stamps it with the connection's identifier.
func inboundToCommand(inbound proto.Inbound) (core.Command, *proto.Error) {
	switch inbound.Type {
	case proto.InboundTypeNick:
		var data proto.NickData
		if err := decode(inbound, &data); err != nil {
			return core.Command{}, err
		}
		return core.Command{Kind: core.CommandNick, Nickname: data.Nick}, nil
	case proto.InboundTypeCreate:
		var data proto.CreateData
		if err := decode(inbound, &data); err != nil {
			return core.Command{}, err
		}
		return core.Command{Kind: core.CommandCreate, Channel: data.Channel, Private: data.InviteOnly}, nil
	case proto.InboundTypeJoin:
		var data proto.ChannelData
		if err := decode(inbound, &data); err != nil {
			return core.Command{}, err
		}
		return core.Command{Kind: core.CommandJoin, Channel: data.Channel}, nil
	case proto.InboundTypeInvite:
		var data proto.TargetData
		if err := decode(inbound, &data); err != nil {
			return core.Command{}, err
		}
		return core.Command{Kind: core.CommandInvite, Channel: data.Channel, Nickname: data.User}, nil
	case proto.InboundTypeMsg:
		var data proto.MsgData
		if err := decode(inbound, &data); err != nil {
			return core.Command{}, err
		}
		return core.Command{Kind: core.CommandMessage, Channel: data.Channel, Body: data.Text}, nil
	case proto.InboundTypeLeave:
		var data proto.ChannelData
		if err := decode(inbound, &data); err != nil {
			return core.Command{}, err
		}
		return core.Command{Kind: core.CommandLeave, Channel: data.Channel}, nil
	case proto.InboundTypeKick:
		var data proto.TargetData
		if err := decode(inbound, &data); err != nil {
			return core.Command{}, err
		}
		return core.Command{Kind: core.CommandKick, Channel: data.Channel, Nickname: data.User}, nil
	default:
		return core.Command{}, &proto.Error{Code: core.ErrCodeUnknown, Msg: "unknown message type", Command: inbound.Type}
	}
}

func decode(inbound proto.Inbound, v any) *proto.Error {
	if len(inbound.Data) == 0 {
		return &proto.Error{Code: core.ErrCodeBadRequest, Msg: "data is required", Command: inbound.Type}
	}
	if err := json.Unmarshal(inbound.Data, v); err != nil {
		return &proto.Error{Code: core.ErrCodeBadRequest, Msg: "malformed data: " + err.Error(), Command: inbound.Type}
	}
	return nil
}

func outboundFromEvent(ev *core.Event) proto.Outbound {
	cmd := ev.Command
	switch ev.Kind {
	case core.EventError:
		return proto.Outbound{
			Type: proto.OutboundTypeError,
			Error: &proto.Error{
				Code:    ev.Error.Code,
				Msg:     ev.Error.Message,
				Command: cmd.Kind.String(),
			},
		}
	case core.EventConnected:
		return event(proto.EventConnected, proto.EventConnectedData{
			User:     ev.Nickname,
			Protocol: proto.ProtocolVersion,
		})
	case core.EventDisconnected:
		return event(proto.EventDisconnected, proto.EventDisconnectedData{
			User:     ev.Nickname,
			Channels: ev.Channels,
			Closed:   ev.Closed,
		})
	case core.EventNames:
		data := proto.EventNamesData{
			Channel: cmd.Channel,
			User:    cmd.Sender,
			Owner:   ev.Owner,
			Members: ev.Members,
		}
		if cmd.Kind == core.CommandInvite {
			data.Target = cmd.Nickname
		}
		return event(proto.EventNames, data)
	}

	switch cmd.Kind {
	case core.CommandNick:
		return event(proto.EventNick, proto.EventNickData{User: cmd.Sender, Nick: cmd.Nickname})
	case core.CommandCreate:
		return event(proto.EventCreate, proto.EventCreateData{
			Channel:    cmd.Channel,
			User:       cmd.Sender,
			InviteOnly: cmd.Private,
		})
	case core.CommandMessage:
		return event(proto.EventMessage, proto.EventMessageData{
			Channel: cmd.Channel,
			User:    cmd.Sender,
			Text:    cmd.Body,
		})
	case core.CommandLeave:
		return event(proto.EventLeave, proto.EventLeaveData{
			Channel: cmd.Channel,
			User:    cmd.Sender,
			Closed:  len(ev.Closed) > 0,
		})
	case core.CommandKick:
		return event(proto.EventKick, proto.EventKickData{
			Channel: cmd.Channel,
			User:    cmd.Sender,
			Target:  cmd.Nickname,
			Closed:  len(ev.Closed) > 0,
		})
	default:
		return event(cmd.Kind.String(), nil)
	}
}

func event(name string, data any) proto.Outbound {
	return proto.Outbound{Type: proto.OutboundTypeEvent, Event: name, Data: data}
}
