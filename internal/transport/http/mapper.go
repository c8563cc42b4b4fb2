package http

import (
	"encoding/json"
	"time"

	"github.com/vovakirdan/palchat-server/internal/core"
	"github.com/vovakirdan/palchat-server/internal/proto"
)

// inboundToCommand maps a wire frame to a core command. The sender id is
// left zero; the hub stamps it from the session.
func inboundToCommand(inbound proto.Inbound) (core.Command, *proto.Error) {
	switch inbound.Type {
	case proto.InboundTypeNick:
		var data proto.NickData
		if err := decode(inbound.Data, &data); err != nil {
			return core.Command{}, err
		}
		return core.NewNicknameCommand(0, data.Nickname), nil
	case proto.InboundTypeCreate:
		var data proto.CreateData
		if err := decode(inbound.Data, &data); err != nil {
			return core.Command{}, err
		}
		return core.NewCreateCommand(0, data.Channel, data.Private), nil
	case proto.InboundTypeJoin:
		var data proto.ChannelData
		if err := decode(inbound.Data, &data); err != nil {
			return core.Command{}, err
		}
		return core.NewJoinCommand(0, data.Channel), nil
	case proto.InboundTypeLeave:
		var data proto.ChannelData
		if err := decode(inbound.Data, &data); err != nil {
			return core.Command{}, err
		}
		return core.NewLeaveCommand(0, data.Channel), nil
	case proto.InboundTypeInvite:
		var data proto.TargetData
		if err := decode(inbound.Data, &data); err != nil {
			return core.Command{}, err
		}
		return core.NewInviteCommand(0, data.Channel, data.User), nil
	case proto.InboundTypeKick:
		var data proto.TargetData
		if err := decode(inbound.Data, &data); err != nil {
			return core.Command{}, err
		}
		return core.NewKickCommand(0, data.Channel, data.User), nil
	case proto.InboundTypeMsg:
		var data proto.MsgData
		if err := decode(inbound.Data, &data); err != nil {
			return core.Command{}, err
		}
		return core.NewMessageCommand(0, data.Channel, data.Text), nil
	default:
		return core.Command{}, protoError(core.ErrCodeInvalidMessage, inbound.Type)
	}
}

func decode(raw json.RawMessage, v any) *proto.Error {
	if len(raw) == 0 {
		return &proto.Error{Code: string(core.ErrCodeBadRequest), Msg: "data is required"}
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return &proto.Error{Code: string(core.ErrCodeBadRequest), Msg: "malformed data: " + err.Error()}
	}
	return nil
}

func protoError(code core.ErrorCode, command string) *proto.Error {
	return &proto.Error{Code: string(code), Msg: code.Message(), Command: command}
}

func outboundFromBroadcast(b *core.Broadcast, now time.Time) proto.Outbound {
	switch b.Kind {
	case core.BroadcastConnected:
		return event(proto.EventConnected, proto.EventConnectedData{User: b.Nickname})
	case core.BroadcastDisconnected:
		return event(proto.EventDisconnected, proto.EventDisconnectedData{User: b.Nickname})
	case core.BroadcastNames:
		joined := b.Sender
		if b.Command.Kind == core.CommandInvite {
			joined = b.Command.Target
		}
		return event(proto.EventNames, proto.EventNamesData{
			Channel: b.Channel,
			Owner:   b.Owner,
			User:    joined,
			Via:     b.Command.Kind.String(),
			Users:   b.Names,
		})
	case core.BroadcastOkay:
		return outboundFromOkay(b, now)
	case core.BroadcastError:
		if b.Error == nil {
			return proto.Outbound{Type: proto.OutboundTypeError, Error: &proto.Error{Code: "unknown", Msg: "unknown error"}}
		}
		return proto.Outbound{
			Type: proto.OutboundTypeError,
			Error: &proto.Error{
				Code:    string(b.Error.Code),
				Msg:     b.Error.Message,
				Command: b.Command.Kind.String(),
				Channel: b.Command.Channel,
				Target:  commandTarget(b.Command),
			},
		}
	default:
		return proto.Outbound{Type: proto.OutboundTypeEvent}
	}
}

func commandTarget(cmd core.Command) string {
	if cmd.Kind == core.CommandNickname {
		return cmd.Nickname
	}
	return cmd.Target
}

func outboundFromOkay(b *core.Broadcast, now time.Time) proto.Outbound {
	cmd := b.Command
	switch cmd.Kind {
	case core.CommandNickname:
		return event(proto.EventNick, proto.EventNickData{User: b.Sender, Nickname: cmd.Nickname})
	case core.CommandCreate:
		return event(proto.EventCreate, proto.EventCreateData{Channel: cmd.Channel, User: b.Sender, Private: cmd.Private})
	case core.CommandLeave:
		return event(proto.EventLeave, proto.EventLeaveData{Channel: cmd.Channel, User: b.Sender})
	case core.CommandKick:
		return event(proto.EventKick, proto.EventKickData{Channel: cmd.Channel, User: b.Sender, Target: cmd.Target})
	case core.CommandMessage:
		return event(proto.EventMessage, proto.EventMessageData{
			Channel: cmd.Channel,
			User:    b.Sender,
			Text:    cmd.Body,
			TS:      now.Unix(),
		})
	default:
		return proto.Outbound{Type: proto.OutboundTypeEvent}
	}
}

func event(name string, data any) proto.Outbound {
	return proto.Outbound{Type: proto.OutboundTypeEvent, Event: name, Data: data}
}
