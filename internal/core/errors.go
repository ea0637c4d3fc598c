package core

import "errors"

// Error codes for domain errors.
const (
	ErrCodeInvalidName           = "invalid_name"
	ErrCodeNameInUse             = "name_in_use"
	ErrCodeChannelExists         = "channel_exists"
	ErrCodeNoSuchChannel         = "no_such_channel"
	ErrCodeNoSuchUser            = "no_such_user"
	ErrCodeNotOwner              = "not_owner"
	ErrCodeNotInChannel          = "not_in_channel"
	ErrCodeJoinPrivateChannel    = "join_private_channel"
	ErrCodeInviteToPublicChannel = "invite_to_public_channel"

	// Transport-level codes, never produced by the processor.
	ErrCodeBadRequest = "bad_request"
	ErrCodeUnknown    = "unknown_command"
)

var (
	ErrNameInUse     = errors.New("name in use")
	ErrChannelExists = errors.New("channel exists")
	ErrUnknownUser   = errors.New("user not registered")
)

// CoreError wraps a code and human-readable message.
type CoreError struct {
	Code    string
	Message string
}

func (e *CoreError) Error() string {
	return e.Message
}

func coreError(code, msg string) *CoreError {
	return &CoreError{Code: code, Message: msg}
}

var errorMessages = map[string]string{
	ErrCodeInvalidName:           "name must be non-empty and alphanumeric",
	ErrCodeNameInUse:             "nickname already in use",
	ErrCodeChannelExists:         "channel already exists",
	ErrCodeNoSuchChannel:         "no such channel",
	ErrCodeNoSuchUser:            "no such user",
	ErrCodeNotOwner:              "only the channel owner may do that",
	ErrCodeNotInChannel:          "user is not in channel",
	ErrCodeJoinPrivateChannel:    "channel is invite-only",
	ErrCodeInviteToPublicChannel: "cannot invite to a public channel",
}

// errorFor builds the CoreError for a processor error code.
func errorFor(code string) *CoreError {
	msg, ok := errorMessages[code]
	if !ok {
		msg = code
	}
	return coreError(code, msg)
}
