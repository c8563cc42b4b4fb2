package core

import (
	"errors"
	"unicode"
)

// ErrorCode identifies why the model refused a command.
type ErrorCode string

// Error codes returned inside error broadcasts.
const (
	ErrCodeInvalidName           ErrorCode = "invalid_name"
	ErrCodeNameAlreadyInUse      ErrorCode = "name_already_in_use"
	ErrCodeNoSuchChannel         ErrorCode = "no_such_channel"
	ErrCodeChannelAlreadyExists  ErrorCode = "channel_already_exists"
	ErrCodeUserNotInChannel      ErrorCode = "user_not_in_channel"
	ErrCodeNoSuchUser            ErrorCode = "no_such_user"
	ErrCodeUserNotOwner          ErrorCode = "user_not_owner"
	ErrCodeJoinPrivateChannel    ErrorCode = "join_private_channel"
	ErrCodeInviteToPublicChannel ErrorCode = "invite_to_public_channel"

	// Transport-level codes, never produced by the model.
	ErrCodeBadRequest     ErrorCode = "bad_request"
	ErrCodeInvalidMessage ErrorCode = "invalid_message"
)

var errorMessages = map[ErrorCode]string{
	ErrCodeInvalidName:           "name must be non-empty and alphanumeric",
	ErrCodeNameAlreadyInUse:      "nickname is already in use",
	ErrCodeNoSuchChannel:         "channel does not exist",
	ErrCodeChannelAlreadyExists:  "channel already exists",
	ErrCodeUserNotInChannel:      "user is not in the channel",
	ErrCodeNoSuchUser:            "user does not exist",
	ErrCodeUserNotOwner:          "only the channel owner can do that",
	ErrCodeJoinPrivateChannel:    "channel is private, an invite is required",
	ErrCodeInviteToPublicChannel: "cannot invite to a public channel",
	ErrCodeBadRequest:            "bad request",
	ErrCodeInvalidMessage:        "unknown message type",
}

// Message returns a human-readable description of the code.
func (c ErrorCode) Message() string {
	if msg, ok := errorMessages[c]; ok {
		return msg
	}
	return string(c)
}

// Contract violations. These mean the caller sequenced operations wrongly and
// are never reported to clients.
var (
	ErrUnknownClient  = errors.New("unknown client")
	ErrClientExists   = errors.New("client already registered")
	ErrUnknownCommand = errors.New("unknown command kind")
	ErrHubClosed      = errors.New("hub closed")
)

// CoreError wraps a code and human-readable message.
type CoreError struct {
	Code    ErrorCode
	Message string
}

func (e *CoreError) Error() string {
	return e.Message
}

func coreError(code ErrorCode) *CoreError {
	return &CoreError{Code: code, Message: code.Message()}
}

// IsValidName reports whether name can be used as a nickname or channel
// name: non-empty and made only of letters and digits.
func IsValidName(name string) bool {
	if name == "" {
		return false
	}
	for _, r := range name {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
