package protocol

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// UDP type bytes, per spec.md's UDP table.
const (
	typeConfirm uint8 = 0x00
	typeReply   uint8 = 0x01
	typeAuth    uint8 = 0x02
	typeJoin    uint8 = 0x03
	typeMsg     uint8 = 0x04
	typeErr     uint8 = 0xFE
	typeBye     uint8 = 0xFF
)

// MaxUDPFrame bounds the size of a single UDP datagram payload, matching a
// typical MTU (spec.md §5: "Message buffers are stack- or arena-sized
// (<=1500 bytes per frame)").
const MaxUDPFrame = 1500

// EncodeUDP serializes m plus its out-of-band message id into the binary
// framing from spec.md's UDP table. For Confirm, id is the id of the frame
// being confirmed (not a fresh one); for every other kind, id is the
// message's own identifier.
//
// The header layout is [type:1][message_id:2 big-endian] followed by kind-
// specific payload, grounded directly on client/transport.go's datagram
// header convention ([userID:2][seq:2] via binary.BigEndian.PutUint16).
func EncodeUDP(m Message, id uint16) ([]byte, error) {
	var buf bytes.Buffer

	switch m.Kind {
	case KindConfirm:
		buf.WriteByte(typeConfirm)
		writeU16(&buf, id)
		return buf.Bytes(), nil

	case KindReply:
		buf.WriteByte(typeReply)
		writeU16(&buf, id)
		if m.OK {
			buf.WriteByte(1)
		} else {
			buf.WriteByte(0)
		}
		writeU16(&buf, m.RefMID)
		writeNulString(&buf, m.Content)

	case KindAuth:
		buf.WriteByte(typeAuth)
		writeU16(&buf, id)
		writeNulString(&buf, m.Username)
		writeNulString(&buf, m.Secret)
		writeNulString(&buf, m.DisplayName)

	case KindJoin:
		buf.WriteByte(typeJoin)
		writeU16(&buf, id)
		writeNulString(&buf, m.ChannelID)
		writeNulString(&buf, m.DisplayName)

	case KindMsg:
		buf.WriteByte(typeMsg)
		writeU16(&buf, id)
		writeNulString(&buf, m.DisplayName)
		writeNulString(&buf, m.Content)

	case KindErr:
		buf.WriteByte(typeErr)
		writeU16(&buf, id)
		writeNulString(&buf, m.DisplayName)
		writeNulString(&buf, m.Content)

	case KindBye:
		buf.WriteByte(typeBye)
		writeU16(&buf, id)

	default:
		return nil, fmt.Errorf("protocol: %s has no UDP encoding", m.Kind)
	}

	if buf.Len() > MaxUDPFrame {
		return nil, fmt.Errorf("protocol: encoded %s frame exceeds %d bytes", m.Kind, MaxUDPFrame)
	}
	return buf.Bytes(), nil
}

func writeU16(buf *bytes.Buffer, v uint16) {
	var tmp [2]byte
	binary.BigEndian.PutUint16(tmp[:], v)
	buf.Write(tmp[:])
}

func writeNulString(buf *bytes.Buffer, s string) {
	buf.WriteString(s)
	buf.WriteByte(0)
}

// ParseUDP parses one complete datagram payload. It never reads past data
// and never allocates unbounded memory: every string field is bounded by
// the remaining slice length. Malformed or truncated frames (missing NUL
// terminator, short header) return ErrMalformed; an unrecognized type byte
// returns ErrUnknown. The returned uint16 is the frame's own message id
// (or, for Confirm, the id being confirmed) — callers must not rely on
// Message.MessageID/RefMID alone without also consulting this return value
// for dispatch.
func ParseUDP(data []byte) (Message, uint16, error) {
	if len(data) < 3 {
		return Message{}, 0, ErrMalformed
	}
	typ := data[0]
	id := binary.BigEndian.Uint16(data[1:3])
	rest := data[3:]

	switch typ {
	case typeConfirm:
		return Confirm(id), id, nil

	case typeReply:
		if len(rest) < 3 {
			return Message{}, id, ErrMalformed
		}
		ok := rest[0] != 0
		refMID := binary.BigEndian.Uint16(rest[1:3])
		content, _, err := readNulString(rest[3:])
		if err != nil {
			return Message{}, id, err
		}
		m := Reply(ok, content)
		m.RefMID = refMID
		return m, id, nil

	case typeAuth:
		username, r1, err := readNulString(rest)
		if err != nil {
			return Message{}, id, err
		}
		secret, r2, err := readNulString(r1)
		if err != nil {
			return Message{}, id, err
		}
		displayName, _, err := readNulString(r2)
		if err != nil {
			return Message{}, id, err
		}
		return Auth(username, secret, displayName), id, nil

	case typeJoin:
		channelID, r1, err := readNulString(rest)
		if err != nil {
			return Message{}, id, err
		}
		displayName, _, err := readNulString(r1)
		if err != nil {
			return Message{}, id, err
		}
		return Join(channelID, displayName), id, nil

	case typeMsg:
		displayName, r1, err := readNulString(rest)
		if err != nil {
			return Message{}, id, err
		}
		content, _, err := readNulString(r1)
		if err != nil {
			return Message{}, id, err
		}
		return Msg(displayName, content), id, nil

	case typeErr:
		displayName, r1, err := readNulString(rest)
		if err != nil {
			return Message{}, id, err
		}
		content, _, err := readNulString(r1)
		if err != nil {
			return Message{}, id, err
		}
		return Err(displayName, content), id, nil

	case typeBye:
		return Bye(), id, nil

	default:
		return Message{}, id, ErrUnknown
	}
}

// readNulString reads a NUL-terminated string from the head of data and
// returns the string (without the NUL) and the remainder of data after it.
func readNulString(data []byte) (string, []byte, error) {
	i := bytes.IndexByte(data, 0)
	if i < 0 {
		return "", nil, ErrMalformed
	}
	return string(data[:i]), data[i+1:], nil
}
