package proto

import "encoding/json"

// Inbound is the envelope for messages coming from the client.
type Inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

const (
	InboundTypeNick   = "nick"
	InboundTypeCreate = "create"
	InboundTypeJoin   = "join"
	InboundTypeInvite = "invite"
	InboundTypeKick   = "kick"
	InboundTypeLeave  = "leave"
	InboundTypeMsg    = "msg"

	OutboundTypeEvent = "event"
	OutboundTypeError = "error"

	EventConnected    = "connected"
	EventDisconnected = "disconnected"
	EventNick         = "nick"
	EventCreate       = "create"
	EventNames        = "names"
	EventLeave        = "leave"
	EventKick         = "kick"
	EventMessage      = "message"
)

// NickData asks to change the sender's nickname.
type NickData struct {
	Nickname string `json:"nickname"`
}

// CreateData asks to create a channel.
type CreateData struct {
	Channel string `json:"channel"`
	Private bool   `json:"private,omitempty"`
}

// ChannelData names a channel for join and leave.
type ChannelData struct {
	Channel string `json:"channel"`
}

// TargetData names a channel and a user for invite and kick.
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
	User string `json:"user"`
}

// EventDisconnectedData tells channel mates that a user left the server.
type EventDisconnectedData struct {
	User string `json:"user"`
}

// EventNickData announces a nickname change.
type EventNickData struct {
	User     string `json:"user"`
	Nickname string `json:"nickname"`
}

// EventCreateData confirms channel creation to its owner.
type EventCreateData struct {
	Channel string `json:"channel"`
	User    string `json:"user"`
	Private bool   `json:"private"`
}

// EventNamesData lists channel members after a join or invite.
type EventNamesData struct {
	Channel string   `json:"channel"`
	Owner   string   `json:"owner"`
	User    string   `json:"user"`
	Via     string   `json:"via"`
	Users   []string `json:"users"`
}

// EventLeaveData announces that a user left a channel.
type EventLeaveData struct {
	Channel string `json:"channel"`
	User    string `json:"user"`
}

// EventKickData announces that the owner removed a user from a channel.
type EventKickData struct {
	Channel string `json:"channel"`
	User    string `json:"user"`
	Target  string `json:"target"`
}

// EventMessageData is a chat message delivered to channel members.
type EventMessageData struct {
	Channel string `json:"channel"`
	User    string `json:"user"`
	Text    string `json:"text"`
	TS      int64  `json:"ts"`
}

// Error describes a refused command or malformed frame. Channel and Target
// echo the refused command; Target is the invite/kick user or the requested
// nickname.
type Error struct {
	Code    string `json:"code"`
	Msg     string `json:"msg"`
	Command string `json:"command,omitempty"`
	Channel string `json:"channel,omitempty"`
	Target  string `json:"target,omitempty"`
}
