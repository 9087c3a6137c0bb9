// Package reactor implements the single-threaded, event-driven command loop
// from spec.md §4.F: it multiplexes transport readiness, standard-input
// readiness, and the UDP retransmission timer, and drives the protocol,
// reliability, and session packages.
//
// Grounded on client/transport.go's StartReceiving, which pumps a socket
// read loop into a channel consumed elsewhere — the same shape used here
// for both the transport-frame feeder and the stdin-line feeder, since Go
// has no portable primitive for a single poll(2) call spanning a socket and
// stdin. The consuming goroutine (this package's Run loop) is the only one
// that ever touches session/reliability state, which is what keeps the
// reactor "single-threaded" in the sense spec.md §5 requires.
package reactor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"ipk24chat/internal/grammar"
	"ipk24chat/internal/logging"
	"ipk24chat/internal/protocol"
	"ipk24chat/internal/reliability"
	"ipk24chat/internal/session"
	"ipk24chat/internal/transport"
)

// DefaultQueueCap bounds the command backlog (spec.md §5: "an
// implementation should cap it (e.g., 1024 entries)").
const DefaultQueueCap = 1024

// ErrFatal is returned by Run when the session ended in session.Failed
// (inbound Err, UDP retry exhaustion, or a transport send/receive error).
// Malformed inbound frames are logged and dropped and do not end the
// session. Callers should exit with status 1.
var ErrFatal = errors.New("reactor: session terminated in Failed phase")

type credentials struct {
	username string
	secret   string
}

type queuedCmd struct {
	uc      UserCommand
	sessCmd session.Command
}

// Reactor owns the single client instance for the lifetime of the process.
type Reactor struct {
	tr     transport.Transport
	isUDP  bool
	stdin  LineReader
	stdout io.Writer
	stderr io.Writer
	log    logging.Logger

	timeout    time.Duration
	maxRetries int
	queueCap   int

	sess    *session.Machine
	pending *reliability.Pending
	nextMID uint16

	displayName string
	creds       credentials
	byeSent     bool

	queue []queuedCmd

	now func() time.Time
}

// Options configures a new Reactor.
type Options struct {
	Timeout    time.Duration
	MaxRetries int
	QueueCap   int
}

// New constructs a Reactor. isUDP selects whether the reliability layer and
// UDP framing apply; tr must already be connected (spec.md §4.C connection
// establishment happens before the reactor starts).
func New(tr transport.Transport, isUDP bool, stdin LineReader, stdout, stderr io.Writer, log logging.Logger, opts Options) *Reactor {
	if opts.QueueCap <= 0 {
		opts.QueueCap = DefaultQueueCap
	}
	if opts.Timeout <= 0 {
		opts.Timeout = reliability.DefaultTimeout
	}
	return &Reactor{
		tr:         tr,
		isUDP:      isUDP,
		stdin:      stdin,
		stdout:     stdout,
		stderr:     stderr,
		log:        log,
		timeout:    opts.Timeout,
		maxRetries: opts.MaxRetries,
		queueCap:   opts.QueueCap,
		sess:       session.New(),
		now:        time.Now,
	}
}

type frameResult struct {
	data []byte
	err  error
}

type lineResultMsg struct {
	line string
	err  error
}

// Run executes the reactor loop until the session reaches a terminal phase
// (Terminating or Failed) and, for UDP, any outstanding Bye confirmation
// attempt has resolved. ctx cancellation (e.g. from an interrupt signal)
// triggers the same best-effort-Bye shutdown path as a local /bye or stdin
// EOF (spec.md §5 "Cancellation").
func (r *Reactor) Run(ctx context.Context) error {
	// The frame feeder outlives ctx so that, after an interrupt, the Bye's
	// Confirm can still be received; it stops when Run returns.
	recvCtx, stopRecv := context.WithCancel(context.Background())
	defer stopRecv()
	frameCh := make(chan frameResult)
	go func() {
		for {
			data, err := r.tr.RecvFrame(recvCtx)
			select {
			case frameCh <- frameResult{data, err}:
			case <-recvCtx.Done():
				return
			}
			if err != nil {
				return
			}
		}
	}()

	lineCh := make(chan lineResultMsg)
	go func() {
		for {
			line, err := r.stdin.ReadLine()
			select {
			case lineCh <- lineResultMsg{line, err}:
			case <-ctx.Done():
				return
			}
			if err != nil {
				return
			}
		}
	}()

	doneCh := ctx.Done()

	for {
		var timerC <-chan time.Time
		var timer *time.Timer
		if r.isUDP && r.pending != nil {
			d := r.pending.NextDeadline(r.now(), r.timeout)
			timer = time.NewTimer(d)
			timerC = timer.C
		}

		select {
		case <-doneCh:
			doneCh = nil
			r.terminate()

		case <-timerC:
			r.handleRetryTick()

		case fr := <-frameCh:
			r.handleFrame(fr)

		case lr := <-lineCh:
			r.handleLineResult(lr)
		}

		if timer != nil {
			timer.Stop()
		}

		r.drainQueue()

		if r.sess.Phase().Terminal() && (!r.isUDP || r.pending == nil) {
			break
		}
	}

	_ = r.tr.Close()

	if r.sess.Phase() == session.Failed {
		return ErrFatal
	}
	return nil
}

func (r *Reactor) handleRetryTick() {
	if r.pending == nil {
		return
	}
	now := r.now()
	switch reliability.Check(r.pending, now, r.timeout, r.maxRetries) {
	case reliability.OutcomeWait:
		// Spurious wakeup; nothing to do.
	case reliability.OutcomeRetransmit:
		if err := r.tr.SendFrame(r.pending.Frame); err != nil {
			r.onTransportError(err)
			return
		}
		r.pending.Retransmit(now)
	case reliability.OutcomeExhausted:
		r.log.Printf("retry budget exhausted for message id %d", r.pending.MessageID)
		fmt.Fprintln(r.stderr, "ERR: no confirmation received after maximum retries")
		r.sess.OnFatal()
		r.pending = nil
	}
}

func (r *Reactor) handleLineResult(lr lineResultMsg) {
	if lr.err != nil {
		if !errors.Is(lr.err, io.EOF) {
			r.log.Printf("stdin read error: %v", lr.err)
		}
		r.terminate()
		return
	}
	r.handleLine(lr.line)
}

func (r *Reactor) handleFrame(fr frameResult) {
	if fr.err != nil {
		r.onTransportError(fr.err)
		return
	}
	if r.isUDP {
		r.handleUDPFrame(fr.data)
	} else {
		r.handleTCPFrame(fr.data)
	}
}

func (r *Reactor) handleTCPFrame(data []byte) {
	m, err := protocol.ParseTCP(string(data))
	if err != nil {
		r.log.Printf("dropping malformed TCP frame: %v (%q)", err, data)
		return
	}
	r.dispatchInbound(m)
}

func (r *Reactor) handleUDPFrame(data []byte) {
	m, id, err := protocol.ParseUDP(data)
	if err != nil {
		r.log.Printf("dropping malformed UDP frame: %v", err)
		if len(data) >= 3 {
			// Header was extractable even though the payload was not;
			// spec.md §7 ProtocolParseError: still confirm when possible.
			r.sendConfirm(id)
		}
		return
	}

	if m.Kind == protocol.KindConfirm {
		if r.pending.Confirmed(m.MessageID) {
			r.pending = nil
			r.nextMID++
		} else {
			r.log.Printf("ignoring confirm for unexpected id %d", m.MessageID)
		}
		return
	}

	// Every non-Confirm frame is confirmed, including duplicates of
	// already-processed frames (spec.md invariant 5).
	r.sendConfirm(id)
	r.dispatchInbound(m)
}

func (r *Reactor) sendConfirm(id uint16) {
	frame, err := protocol.EncodeUDP(protocol.Confirm(id), id)
	if err != nil {
		r.log.Printf("failed to encode confirm for id %d: %v", id, err)
		return
	}
	if err := r.tr.SendFrame(frame); err != nil {
		r.log.Printf("failed to send confirm for id %d: %v", id, err)
	}
}

func (r *Reactor) dispatchInbound(m protocol.Message) {
	switch m.Kind {
	case protocol.KindReply:
		if r.isUDP {
			r.log.Printf("received Reply (ref_mid %d)", m.RefMID)
		}
		switch r.sess.Phase() {
		case session.AwaitingAuthReply:
			r.sess.OnAuthReply(m.OK)
			r.printReplyOutcome(m)
		case session.AwaitingJoinReply:
			r.sess.OnJoinReply()
			r.printReplyOutcome(m)
		default:
			r.log.Printf("unexpected Reply in phase %s, ignoring", r.sess.Phase())
		}

	case protocol.KindMsg:
		fmt.Fprintf(r.stdout, "%s: %s\n", m.DisplayName, m.Content)

	case protocol.KindErr:
		fmt.Fprintf(r.stderr, "ERR FROM %s: %s\n", m.DisplayName, m.Content)
		r.sess.OnFatal()
		r.sendByeOnce()

	case protocol.KindBye:
		r.sess.OnPeerBye()

	default:
		r.log.Printf("unexpected inbound kind %s, ignoring", m.Kind)
	}
}

func (r *Reactor) printReplyOutcome(m protocol.Message) {
	if m.OK {
		fmt.Fprintf(r.stderr, "Success: %s\n", m.Content)
	} else {
		fmt.Fprintf(r.stderr, "Failure: %s\n", m.Content)
	}
}

func (r *Reactor) onTransportError(err error) {
	r.log.Printf("transport error: %v", err)
	fmt.Fprintf(r.stderr, "ERR: connection error: %v\n", err)
	r.sess.OnFatal()
}

// terminate drives the local-EOF / local-/bye / interrupt shutdown path:
// transition to Terminating (a no-op if already terminal) and send at most
// one Bye, per spec.md §5 "Cancellation" and §4.E's terminal-exit row.
func (r *Reactor) terminate() {
	r.sess.OnLocalBye()
	r.sendByeOnce()
}

func (r *Reactor) sendByeOnce() {
	if r.byeSent {
		return
	}
	r.byeSent = true
	if err := r.sendApplicationMessage(protocol.Bye()); err != nil {
		r.log.Printf("failed to send BYE: %v", err)
	}
}

// sendApplicationMessage encodes and sends a non-Confirm message. On UDP it
// also installs Pending, enforcing invariant 2 (at most one unconfirmed
// frame). Callers must have already checked that nothing is pending.
func (r *Reactor) sendApplicationMessage(m protocol.Message) error {
	if r.isUDP {
		frame, err := protocol.EncodeUDP(m, r.nextMID)
		if err != nil {
			return err
		}
		if err := r.tr.SendFrame(frame); err != nil {
			return err
		}
		r.pending = reliability.NewPending(frame, r.nextMID, r.now())
		return nil
	}

	frame, err := protocol.EncodeTCP(m)
	if err != nil {
		return err
	}
	return r.tr.SendFrame(frame)
}

func (r *Reactor) printLocalError(msg string) {
	fmt.Fprintf(r.stderr, "ERR: %s\n", msg)
}

func (r *Reactor) printPhaseViolation(cmd session.Command) {
	switch cmd {
	case session.CmdAuth:
		r.printLocalError("already authenticated (or authentication already in progress)")
	default:
		r.printLocalError("must authenticate first")
	}
}

// handleLine implements spec.md §4.F step 5.
func (r *Reactor) handleLine(line string) {
	uc := parseUserInput(line)

	switch uc.Kind {
	case CmdUnknown:
		r.printLocalError(uc.SyntaxErr)
		return

	case CmdRename:
		if !grammar.IsValidDisplayName(uc.DisplayName) {
			r.printLocalError("invalid display name")
			return
		}
		r.displayName = uc.DisplayName
		return

	case CmdHelp:
		fmt.Fprint(r.stdout, helpText)
		return

	case CmdQuit:
		if r.sess.Phase().Terminal() {
			return
		}
		r.terminate()
		return
	}

	var sessCmd session.Command
	switch uc.Kind {
	case CmdAuth:
		sessCmd = session.CmdAuth
	case CmdJoin:
		sessCmd = session.CmdJoin
	case CmdChat:
		sessCmd = session.CmdMsg
	}

	if !r.sess.CanDispatch(sessCmd) {
		// A Join or Msg typed while the Auth reply is outstanding is queued;
		// its legality is checked again when the queue drains.
		if sessCmd == session.CmdAuth || r.sess.Phase() != session.AwaitingAuthReply {
			r.printPhaseViolation(sessCmd)
			return
		}
	}

	if r.mustQueue() {
		if !r.enqueue(uc, sessCmd) {
			r.printLocalError("command queue full, discarding input")
			return
		}
		fmt.Fprintln(r.stderr, "queued: waiting for a pending reply or confirmation")
		return
	}

	r.dispatchCommand(uc, sessCmd)
}

func (r *Reactor) mustQueue() bool {
	return (r.isUDP && r.pending != nil) || r.sess.AwaitingReply()
}

func (r *Reactor) enqueue(uc UserCommand, sessCmd session.Command) bool {
	if len(r.queue) >= r.queueCap {
		return false
	}
	r.queue = append(r.queue, queuedCmd{uc: uc, sessCmd: sessCmd})
	return true
}

func (r *Reactor) drainQueue() {
	for len(r.queue) > 0 {
		if r.sess.Phase().Terminal() || r.mustQueue() {
			return
		}
		item := r.queue[0]
		r.queue = r.queue[1:]
		if !r.sess.CanDispatch(item.sessCmd) {
			r.printPhaseViolation(item.sessCmd)
			continue
		}
		r.dispatchCommand(item.uc, item.sessCmd)
	}
}

func (r *Reactor) dispatchCommand(uc UserCommand, sessCmd session.Command) {
	msg, ok := r.buildOutbound(uc, sessCmd)
	if !ok {
		return
	}
	if err := r.sendApplicationMessage(msg); err != nil {
		r.onTransportError(err)
		return
	}
	switch sessCmd {
	case session.CmdAuth:
		r.sess.OnAuthSent()
	case session.CmdJoin:
		r.sess.OnJoinSent()
	}
}

func (r *Reactor) buildOutbound(uc UserCommand, sessCmd session.Command) (protocol.Message, bool) {
	switch sessCmd {
	case session.CmdAuth:
		if !grammar.IsValidID(uc.Username) || !grammar.IsValidSecret(uc.Secret) || !grammar.IsValidDisplayName(uc.DisplayName) {
			r.printLocalError("invalid /auth arguments")
			return protocol.Message{}, false
		}
		r.creds = credentials{username: uc.Username, secret: uc.Secret}
		r.displayName = uc.DisplayName
		return protocol.Auth(uc.Username, uc.Secret, uc.DisplayName), true

	case session.CmdJoin:
		if !grammar.IsValidID(uc.ChannelID) {
			r.printLocalError("invalid /join channel id")
			return protocol.Message{}, false
		}
		return protocol.Join(uc.ChannelID, r.displayName), true

	case session.CmdMsg:
		if !grammar.IsValidContent(uc.Content) {
			r.printLocalError("invalid message content")
			return protocol.Message{}, false
		}
		return protocol.Msg(r.displayName, uc.Content), true
	}
	return protocol.Message{}, false
}
