// Package session implements the client lifecycle state machine from
// spec.md §4.E: which phase the client is in, and which commands are legal
// in each phase.
package session

import "fmt"

// Phase is the client's lifecycle state (spec.md §3 "phase").
type Phase uint8

const (
	Start Phase = iota
	AwaitingAuthReply
	Open
	AwaitingJoinReply
	Terminating
	Failed
)

func (p Phase) String() string {
	switch p {
	case Start:
		return "Start"
	case AwaitingAuthReply:
		return "AwaitingAuthReply"
	case Open:
		return "Open"
	case AwaitingJoinReply:
		return "AwaitingJoinReply"
	case Terminating:
		return "Terminating"
	case Failed:
		return "Failed"
	default:
		return fmt.Sprintf("Phase(%d)", uint8(p))
	}
}

// Terminal reports whether p is a phase the reactor should exit from
// (spec.md §4.F step 7).
func (p Phase) Terminal() bool {
	return p == Terminating || p == Failed
}

// Command identifies the kind of user/local action being gated, per
// spec.md §4.E "Command legality by phase".
type Command uint8

const (
	CmdAuth Command = iota
	CmdJoin
	CmdMsg
	CmdRename
	CmdHelp
	CmdBye
)

// Machine tracks the single client's Phase and exposes the legal
// transitions and command-gating rules. It holds no I/O state; the reactor
// owns the socket and queue.
type Machine struct {
	phase Phase
}

// New returns a Machine in the initial Start phase.
func New() *Machine {
	return &Machine{phase: Start}
}

// Phase returns the current phase.
func (m *Machine) Phase() Phase { return m.phase }

// CanDispatch reports whether cmd may be sent to the network (or, for
// Rename/Help/Bye, acted on locally) given the current phase. It implements
// spec.md §4.E's "Command legality by phase" table and invariant 4
// ("Before phase == Open, the only legal outbound command types are Auth,
// local Rename, local Help, and internal Bye").
func (m *Machine) CanDispatch(cmd Command) bool {
	switch cmd {
	case CmdRename, CmdHelp:
		return !m.phase.Terminal()
	case CmdBye:
		return true
	case CmdAuth:
		return m.phase == Start
	case CmdJoin, CmdMsg:
		return m.Authenticated()
	default:
		return false
	}
}

// OnAuthSent records that an Auth command was dispatched successfully.
func (m *Machine) OnAuthSent() {
	if m.phase == Start {
		m.phase = AwaitingAuthReply
	}
}

// OnJoinSent records that a Join command was dispatched successfully.
func (m *Machine) OnJoinSent() {
	if m.phase == Open {
		m.phase = AwaitingJoinReply
	}
}

// OnAuthReply applies an inbound Reply while AwaitingAuthReply.
func (m *Machine) OnAuthReply(ok bool) {
	if m.phase != AwaitingAuthReply {
		return
	}
	if ok {
		m.phase = Open
	} else {
		m.phase = Start
	}
}

// OnJoinReply applies an inbound Reply while AwaitingJoinReply. Per spec.md
// §4.E, any Reply (ok or not) returns the client to Open — a failed Join
// does not kick the client out of the channel it was already in.
func (m *Machine) OnJoinReply() {
	if m.phase == AwaitingJoinReply {
		m.phase = Open
	}
}

// OnPeerBye applies an inbound Bye from any non-terminal phase.
func (m *Machine) OnPeerBye() {
	if !m.phase.Terminal() {
		m.phase = Terminating
	}
}

// OnLocalBye applies a user-issued /bye or stdin EOF.
func (m *Machine) OnLocalBye() {
	if !m.phase.Terminal() {
		m.phase = Terminating
	}
}

// OnFatal applies an inbound Err, UDP retry exhaustion, or an unrecoverable
// malformed-frame sequence.
func (m *Machine) OnFatal() {
	m.phase = Failed
}

// Authenticated reports whether the client has successfully authenticated
// and is not yet terminal, covering both the steady Open phase and the
// transient AwaitingJoinReply phase. Join/Msg legality is gated on this
// rather than on phase == Open literally: a chat message typed immediately
// after /join (before its Reply arrives) must still be accepted and queued,
// not rejected as a phase violation (spec.md §8 scenario S6).
func (m *Machine) Authenticated() bool {
	return m.phase == Open || m.phase == AwaitingJoinReply
}

// AwaitingReply reports whether a Reply is currently outstanding — used by
// the reactor to decide whether to dispatch immediately or enqueue
// (spec.md §4.F step 5).
func (m *Machine) AwaitingReply() bool {
	return m.phase == AwaitingAuthReply || m.phase == AwaitingJoinReply
}
