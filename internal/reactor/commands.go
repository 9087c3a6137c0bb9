package reactor

import "strings"

// CmdKind identifies a parsed line of user input, per spec.md §6 "Standard
// input commands".
type CmdKind uint8

const (
	CmdUnknown CmdKind = iota
	CmdAuth
	CmdJoin
	CmdRename
	CmdHelp
	CmdChat
	CmdQuit
)

// UserCommand is one parsed stdin line.
type UserCommand struct {
	Kind        CmdKind
	Username    string
	Secret      string
	DisplayName string
	ChannelID   string
	Content     string
	SyntaxErr   string // non-empty if Kind == CmdUnknown because of a malformed slash-command
}

// parseUserInput parses one stdin line into a UserCommand. display_name,
// username, channel_id never contain spaces (grammar forbids 0x20 in all
// of them), so whitespace-splitting is exact, matching the teacher's
// preference for simple strings.Fields-based parsing over a hand-rolled
// tokenizer (client/server_addr.go takes the same plain-stdlib-strings
// approach to parsing).
func parseUserInput(line string) UserCommand {
	if !strings.HasPrefix(line, "/") {
		return UserCommand{Kind: CmdChat, Content: line}
	}

	fields := strings.Fields(line)
	if len(fields) == 0 {
		return UserCommand{Kind: CmdUnknown, SyntaxErr: "empty command"}
	}

	switch fields[0] {
	case "/auth":
		if len(fields) != 4 {
			return UserCommand{Kind: CmdUnknown, SyntaxErr: "usage: /auth <username> <secret> <display_name>"}
		}
		return UserCommand{Kind: CmdAuth, Username: fields[1], Secret: fields[2], DisplayName: fields[3]}

	case "/join":
		if len(fields) != 2 {
			return UserCommand{Kind: CmdUnknown, SyntaxErr: "usage: /join <channel_id>"}
		}
		return UserCommand{Kind: CmdJoin, ChannelID: fields[1]}

	case "/rename":
		if len(fields) != 2 {
			return UserCommand{Kind: CmdUnknown, SyntaxErr: "usage: /rename <display_name>"}
		}
		return UserCommand{Kind: CmdRename, DisplayName: fields[1]}

	case "/help":
		if len(fields) != 1 {
			return UserCommand{Kind: CmdUnknown, SyntaxErr: "usage: /help"}
		}
		return UserCommand{Kind: CmdHelp}

	case "/bye":
		// Not enumerated in spec.md §6's stdin command list, but spec.md
		// §4.E's transition table names "local /bye" alongside EOF and
		// interrupt as a terminal trigger; resolved as an Open Question in
		// DESIGN.md by accepting it as a synonym for stdin EOF.
		if len(fields) != 1 {
			return UserCommand{Kind: CmdUnknown, SyntaxErr: "usage: /bye"}
		}
		return UserCommand{Kind: CmdQuit}

	default:
		return UserCommand{Kind: CmdUnknown, SyntaxErr: "unknown command " + fields[0]}
	}
}

// helpText is printed by /help — the supported command grammar, grounded on
// the original ChatClient::printHelp (SPEC_FULL.md "Supplemented Features"
// item 6), not a general usage banner.
const helpText = `Available commands:
  /auth <username> <secret> <display_name>   authenticate
  /join <channel_id>                         join a channel
  /rename <display_name>                     change your local display name
  /help                                      show this message
  /bye                                       disconnect gracefully
Anything else is sent as a chat message.
`
