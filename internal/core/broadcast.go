package core

import "slices"

// BroadcastKind is a notification the model emits for delivery.
type BroadcastKind int

const (
	// BroadcastConnected tells a new connection its generated nickname.
	BroadcastConnected BroadcastKind = iota + 1
	// BroadcastDisconnected tells former channel mates that a user left the server.
	BroadcastDisconnected
	// BroadcastOkay echoes a successful command to everyone affected.
	BroadcastOkay
	// BroadcastNames lists channel members after a join or invite.
	BroadcastNames
	// BroadcastError reports a refused command to its sender only.
	BroadcastError
)

var broadcastNames = map[BroadcastKind]string{
	BroadcastConnected:    "connected",
	BroadcastDisconnected: "disconnected",
	BroadcastOkay:         "okay",
	BroadcastNames:        "names",
	BroadcastError:        "error",
}

func (k BroadcastKind) String() string {
	if name, ok := broadcastNames[k]; ok {
		return name
	}
	return "unknown"
}

// Broadcast describes what happened and who should hear about it.
// Slices are owned by the broadcast and must not be modified by receivers.
type Broadcast struct {
	Kind    BroadcastKind
	Command Command // zero for connected/disconnected

	// Sender is the issuer's nickname when the command was received, so a
	// rename carries the old nickname here and the new one in Command.
	Sender string
	// Nickname is the subject of connected/disconnected.
	Nickname string

	Channel string   // names
	Owner   string   // names
	Names   []string // names: every member, ordered by client id

	// Recipients are nicknames in ascending client id order.
	Recipients []string
	Error      *CoreError

	recipientIDs []int64
}

// RecipientIDs returns the client ids matching Recipients, resolved at the
// same instant the broadcast was produced.
func (b *Broadcast) RecipientIDs() []int64 {
	return slices.Clone(b.recipientIDs)
}

// Code returns the error code, or "" when the broadcast is not an error.
func (b *Broadcast) Code() ErrorCode {
	if b.Error == nil {
		return ""
	}
	return b.Error.Code
}

func connectedBroadcast(c *Client) Broadcast {
	return Broadcast{
		Kind:         BroadcastConnected,
		Sender:       c.Nickname,
		Nickname:     c.Nickname,
		Recipients:   []string{c.Nickname},
		recipientIDs: []int64{c.ID},
	}
}

func disconnectedBroadcast(nickname string, mates recipientSet) Broadcast {
	return Broadcast{
		Kind:         BroadcastDisconnected,
		Sender:       nickname,
		Nickname:     nickname,
		Recipients:   mates.nicknames,
		recipientIDs: mates.ids,
	}
}

func okayBroadcast(cmd Command, sender string, to recipientSet) Broadcast {
	return Broadcast{
		Kind:         BroadcastOkay,
		Command:      cmd,
		Sender:       sender,
		Channel:      cmd.Channel,
		Recipients:   to.nicknames,
		recipientIDs: to.ids,
	}
}

func namesBroadcast(cmd Command, sender string, to recipientSet, channel, owner string) Broadcast {
	return Broadcast{
		Kind:         BroadcastNames,
		Command:      cmd,
		Sender:       sender,
		Channel:      channel,
		Owner:        owner,
		Names:        slices.Clone(to.nicknames),
		Recipients:   to.nicknames,
		recipientIDs: to.ids,
	}
}

// errorBroadcast has no recipients: errors only ever go back to the sender.
func errorBroadcast(cmd Command, sender string, code ErrorCode) Broadcast {
	return Broadcast{
		Kind:    BroadcastError,
		Command: cmd,
		Sender:  sender,
		Channel: cmd.Channel,
		Error:   coreError(code),
	}
}

// recipientSet pairs ids with their nicknames, ordered by id.
type recipientSet struct {
	ids       []int64
	nicknames []string
}
