// Package protocol implements the IPK24-CHAT message model and its two wire
// codecs (TCP textual framing, UDP binary framing).
package protocol

import "fmt"

// Kind identifies which of the seven protocol message variants a Message
// holds. Mirrors the teacher's flat-struct-plus-type-tag convention
// (client/transport.go's ControlMsg): rather than a Go sum type via
// interfaces, every case is a field on one struct, gated by Kind.
type Kind uint8

const (
	KindAuth Kind = iota
	KindJoin
	KindMsg
	KindReply
	KindErr
	KindBye
	KindConfirm // UDP only
)

func (k Kind) String() string {
	switch k {
	case KindAuth:
		return "AUTH"
	case KindJoin:
		return "JOIN"
	case KindMsg:
		return "MSG"
	case KindReply:
		return "REPLY"
	case KindErr:
		return "ERR"
	case KindBye:
		return "BYE"
	case KindConfirm:
		return "CONFIRM"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Message is the single tagged-variant representation of all seven wire
// messages. Only the fields relevant to Kind are populated; the rest are
// left zero. MessageID and RefMID carry the UDP-only identifier fields out
// of band of the round-trip equality the codec package guarantees (see
// protocol_test.go).
type Message struct {
	Kind Kind

	// Auth
	Username    string
	Secret      string
	DisplayName string // also used by Join, Msg, Err

	// Join
	ChannelID string

	// Msg, Err
	Content string

	// Reply
	OK      bool
	RefMID  uint16 // UDP only: id of the Auth/Join this Reply answers. Logged, not gated on (SPEC_FULL.md).

	// Confirm (UDP only): id of the frame being confirmed.
	MessageID uint16
}

// Auth constructs an outbound Auth message.
func Auth(username, secret, displayName string) Message {
	return Message{Kind: KindAuth, Username: username, Secret: secret, DisplayName: displayName}
}

// Join constructs an outbound Join message.
func Join(channelID, displayName string) Message {
	return Message{Kind: KindJoin, ChannelID: channelID, DisplayName: displayName}
}

// Msg constructs a chat payload message (either direction).
func Msg(displayName, content string) Message {
	return Message{Kind: KindMsg, DisplayName: displayName, Content: content}
}

// Reply constructs a server->client outcome message.
func Reply(ok bool, content string) Message {
	return Message{Kind: KindReply, OK: ok, Content: content}
}

// Err constructs a fatal either-direction message.
func Err(displayName, content string) Message {
	return Message{Kind: KindErr, DisplayName: displayName, Content: content}
}

// Bye constructs a graceful-termination message.
func Bye() Message {
	return Message{Kind: KindBye}
}

// Confirm constructs a UDP acknowledgement of messageID.
func Confirm(messageID uint16) Message {
	return Message{Kind: KindConfirm, MessageID: messageID}
}
