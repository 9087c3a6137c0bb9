package protocol

import (
	"fmt"
	"strings"
)

// EncodeTCP serializes m into the line-oriented textual framing from
// spec.md's TCP table. The caller is responsible for having validated m's
// fields with internal/grammar first; EncodeTCP does not re-validate.
func EncodeTCP(m Message) ([]byte, error) {
	var s string
	switch m.Kind {
	case KindAuth:
		s = fmt.Sprintf("AUTH %s AS %s USING %s", m.Username, m.Secret, m.DisplayName)
	case KindJoin:
		s = fmt.Sprintf("JOIN %s AS %s", m.ChannelID, m.DisplayName)
	case KindMsg:
		s = fmt.Sprintf("MSG FROM %s IS %s", m.DisplayName, m.Content)
	case KindErr:
		s = fmt.Sprintf("ERR FROM %s IS %s", m.DisplayName, m.Content)
	case KindReply:
		status := "NOK"
		if m.OK {
			status = "OK"
		}
		s = fmt.Sprintf("REPLY %s IS %s", status, m.Content)
	case KindBye:
		s = "BYE"
	default:
		return nil, fmt.Errorf("protocol: %s has no TCP encoding", m.Kind)
	}
	return []byte(s + "\r\n"), nil
}

// ParseTCP parses one complete line (without its trailing \r\n, or \n) into
// a Message. A line with an unrecognized keyword returns ErrUnknown; a
// recognized keyword with a malformed body returns ErrMalformed. Neither
// terminates the session: the reactor logs and drops such frames.
func ParseTCP(line string) (Message, error) {
	line = strings.TrimRight(line, "\r\n")
	fields := strings.SplitN(line, " ", 2)
	keyword := fields[0]

	switch strings.ToUpper(keyword) {
	case "AUTH":
		// AUTH <username> AS <secret> USING <display_name>
		rest := tail(fields)
		parts := strings.SplitN(rest, " AS ", 2)
		if len(parts) != 2 {
			return Message{}, ErrMalformed
		}
		username := parts[0]
		parts2 := strings.SplitN(parts[1], " USING ", 2)
		if len(parts2) != 2 {
			return Message{}, ErrMalformed
		}
		if username == "" || parts2[0] == "" || parts2[1] == "" {
			return Message{}, ErrMalformed
		}
		return Auth(username, parts2[0], parts2[1]), nil

	case "JOIN":
		// JOIN <channel_id> AS <display_name>
		rest := tail(fields)
		parts := strings.SplitN(rest, " AS ", 2)
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			return Message{}, ErrMalformed
		}
		return Join(parts[0], parts[1]), nil

	case "MSG":
		// MSG FROM <display_name> IS <content>
		return parseFromIs(fields, false)

	case "ERR":
		// ERR FROM <display_name> IS <content>
		return parseFromIs(fields, true)

	case "REPLY":
		// REPLY <OK|NOK> IS <content>
		rest := tail(fields)
		parts := strings.SplitN(rest, " IS ", 2)
		if len(parts) != 2 {
			return Message{}, ErrMalformed
		}
		var ok bool
		switch parts[0] {
		case "OK":
			ok = true
		case "NOK":
			ok = false
		default:
			return Message{}, ErrMalformed
		}
		return Reply(ok, parts[1]), nil

	case "BYE":
		return Bye(), nil

	default:
		return Message{}, ErrUnknown
	}
}

func tail(fields []string) string {
	if len(fields) < 2 {
		return ""
	}
	return fields[1]
}

// parseFromIs handles the shared "FROM <display_name> IS <content>" body of
// MSG and ERR.
func parseFromIs(fields []string, isErr bool) (Message, error) {
	rest := tail(fields)
	if !strings.HasPrefix(rest, "FROM ") {
		return Message{}, ErrMalformed
	}
	rest = rest[len("FROM "):]
	parts := strings.SplitN(rest, " IS ", 2)
	if len(parts) != 2 || parts[0] == "" {
		return Message{}, ErrMalformed
	}
	if isErr {
		return Err(parts[0], parts[1]), nil
	}
	return Msg(parts[0], parts[1]), nil
}
