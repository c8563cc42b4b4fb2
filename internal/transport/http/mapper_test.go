package http

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/palchat-server/internal/core"
	"github.com/vovakirdan/palchat-server/internal/proto"
)

func inbound(t *testing.T, typ string, data any) proto.Inbound {
	t.Helper()

	raw, err := json.Marshal(data)
	require.NoError(t, err)
	return proto.Inbound{Type: typ, Data: raw}
}

func TestInboundToCommand(t *testing.T) {
	tests := []struct {
		name string
		in   proto.Inbound
		want core.Command
	}{
		{"nick", inbound(t, proto.InboundTypeNick, proto.NickData{Nickname: "alice"}), core.NewNicknameCommand(0, "alice")},
		{"create", inbound(t, proto.InboundTypeCreate, proto.CreateData{Channel: "c", Private: true}), core.NewCreateCommand(0, "c", true)},
		{"join", inbound(t, proto.InboundTypeJoin, proto.ChannelData{Channel: "c"}), core.NewJoinCommand(0, "c")},
		{"leave", inbound(t, proto.InboundTypeLeave, proto.ChannelData{Channel: "c"}), core.NewLeaveCommand(0, "c")},
		{"invite", inbound(t, proto.InboundTypeInvite, proto.TargetData{Channel: "c", User: "bob"}), core.NewInviteCommand(0, "c", "bob")},
		{"kick", inbound(t, proto.InboundTypeKick, proto.TargetData{Channel: "c", User: "bob"}), core.NewKickCommand(0, "c", "bob")},
		{"msg", inbound(t, proto.InboundTypeMsg, proto.MsgData{Channel: "c", Text: "hey"}), core.NewMessageCommand(0, "c", "hey")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, protoErr := inboundToCommand(tt.in)
			require.Nil(t, protoErr)
			assert.Equal(t, tt.want, cmd)
		})
	}
}

func TestInboundToCommandRejectsBadFrames(t *testing.T) {
	_, protoErr := inboundToCommand(proto.Inbound{Type: "dance"})
	require.NotNil(t, protoErr)
	assert.Equal(t, string(core.ErrCodeInvalidMessage), protoErr.Code)
	assert.Equal(t, "dance", protoErr.Command)

	_, protoErr = inboundToCommand(proto.Inbound{Type: proto.InboundTypeJoin})
	require.NotNil(t, protoErr)
	assert.Equal(t, string(core.ErrCodeBadRequest), protoErr.Code)

	_, protoErr = inboundToCommand(proto.Inbound{Type: proto.InboundTypeKick, Data: json.RawMessage(`[1,2]`)})
	require.NotNil(t, protoErr)
	assert.Equal(t, string(core.ErrCodeBadRequest), protoErr.Code)
}

func TestOutboundFromBroadcast(t *testing.T) {
	model := core.NewModel()
	_, err := model.Connect(1)
	require.NoError(t, err)
	_, err = model.Connect(2)
	require.NoError(t, err)

	now := time.Unix(1700000000, 0)

	b, err := model.Handle(core.NewCreateCommand(1, "general", false))
	require.NoError(t, err)
	out := outboundFromBroadcast(&b, now)
	assert.Equal(t, proto.OutboundTypeEvent, out.Type)
	assert.Equal(t, proto.EventCreate, out.Event)
	assert.Equal(t, proto.EventCreateData{Channel: "general", User: "User0"}, out.Data)

	b, err = model.Handle(core.NewJoinCommand(2, "general"))
	require.NoError(t, err)
	out = outboundFromBroadcast(&b, now)
	assert.Equal(t, proto.EventNames, out.Event)
	assert.Equal(t, proto.EventNamesData{
		Channel: "general",
		Owner:   "User0",
		User:    "User1",
		Via:     "join",
		Users:   []string{"User0", "User1"},
	}, out.Data)

	b, err = model.Handle(core.NewMessageCommand(2, "general", "hello"))
	require.NoError(t, err)
	out = outboundFromBroadcast(&b, now)
	assert.Equal(t, proto.EventMessage, out.Event)
	assert.Equal(t, proto.EventMessageData{Channel: "general", User: "User1", Text: "hello", TS: now.Unix()}, out.Data)

	b, err = model.Handle(core.NewKickCommand(2, "general", "User0"))
	require.NoError(t, err)
	out = outboundFromBroadcast(&b, now)
	assert.Equal(t, proto.OutboundTypeError, out.Type)
	require.NotNil(t, out.Error)
	assert.Equal(t, proto.Error{
		Code:    string(core.ErrCodeUserNotOwner),
		Msg:     core.ErrCodeUserNotOwner.Message(),
		Command: "kick",
		Channel: "general",
		Target:  "User0",
	}, *out.Error)

	b, err = model.Handle(core.NewNicknameCommand(1, "bad name"))
	require.NoError(t, err)
	out = outboundFromBroadcast(&b, now)
	require.NotNil(t, out.Error)
	assert.Equal(t, string(core.ErrCodeInvalidName), out.Error.Code)
	assert.Equal(t, "nick", out.Error.Command)
	assert.Equal(t, "bad name", out.Error.Target)
	assert.Empty(t, out.Error.Channel)

	b, err = model.Handle(core.NewNicknameCommand(2, "bob"))
	require.NoError(t, err)
	out = outboundFromBroadcast(&b, now)
	assert.Equal(t, proto.EventNickData{User: "User1", Nickname: "bob"}, out.Data)

	b, err = model.Handle(core.NewLeaveCommand(2, "general"))
	require.NoError(t, err)
	out = outboundFromBroadcast(&b, now)
	assert.Equal(t, proto.EventLeaveData{Channel: "general", User: "bob"}, out.Data)

	b, err = model.Disconnect(1)
	require.NoError(t, err)
	out = outboundFromBroadcast(&b, now)
	assert.Equal(t, proto.EventDisconnected, out.Event)
	assert.Equal(t, proto.EventDisconnectedData{User: "User0"}, out.Data)
}
