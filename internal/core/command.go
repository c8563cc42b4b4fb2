package core

// CommandKind describes what the client wants to do.
type CommandKind int

const (
	// CommandNickname changes the sender's nickname.
	CommandNickname CommandKind = iota + 1
	// CommandCreate creates a channel owned by the sender.
	CommandCreate
	// CommandJoin adds the sender to a channel.
	CommandJoin
	// CommandInvite adds another user to a private channel owned by the sender.
	CommandInvite
	// CommandKick removes another user from a channel owned by the sender.
	CommandKick
	// CommandLeave removes the sender from a channel.
	CommandLeave
	// CommandMessage delivers a chat message to channel members.
	CommandMessage
)

var commandNames = map[CommandKind]string{
	CommandNickname: "nick",
	CommandCreate:   "create",
	CommandJoin:     "join",
	CommandInvite:   "invite",
	CommandKick:     "kick",
	CommandLeave:    "leave",
	CommandMessage:  "msg",
}

func (k CommandKind) String() string {
	if name, ok := commandNames[k]; ok {
		return name
	}
	return "unknown"
}

// Command represents an action requested by a client. It is passed by value
// and never modified once built.
type Command struct {
	Kind     CommandKind
	SenderID int64
	Nickname string // CommandNickname
	Channel  string
	Target   string // CommandInvite, CommandKick
	Private  bool   // CommandCreate
	Body     string // CommandMessage
}

// NewNicknameCommand builds a request to rename the sender.
func NewNicknameCommand(senderID int64, nickname string) Command {
	return Command{Kind: CommandNickname, SenderID: senderID, Nickname: nickname}
}

// NewCreateCommand builds a request to create a channel.
func NewCreateCommand(senderID int64, channel string, private bool) Command {
	return Command{Kind: CommandCreate, SenderID: senderID, Channel: channel, Private: private}
}

// NewJoinCommand builds a request to join a channel.
func NewJoinCommand(senderID int64, channel string) Command {
	return Command{Kind: CommandJoin, SenderID: senderID, Channel: channel}
}

// NewInviteCommand builds a request to invite target into a private channel.
func NewInviteCommand(senderID int64, channel, target string) Command {
	return Command{Kind: CommandInvite, SenderID: senderID, Channel: channel, Target: target}
}

// NewKickCommand builds a request to remove target from a channel.
func NewKickCommand(senderID int64, channel, target string) Command {
	return Command{Kind: CommandKick, SenderID: senderID, Channel: channel, Target: target}
}

// NewLeaveCommand builds a request to leave a channel.
func NewLeaveCommand(senderID int64, channel string) Command {
	return Command{Kind: CommandLeave, SenderID: senderID, Channel: channel}
}

// NewMessageCommand builds a chat message for a channel.
func NewMessageCommand(senderID int64, channel, body string) Command {
	return Command{Kind: CommandMessage, SenderID: senderID, Channel: channel, Body: body}
}
