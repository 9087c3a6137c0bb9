package session

import "testing"

func TestInitialPhaseIsStart(t *testing.T) {
	m := New()
	if m.Phase() != Start {
		t.Errorf("got %v, want Start", m.Phase())
	}
}

func TestAuthOnlyLegalInStart(t *testing.T) {
	m := New()
	if !m.CanDispatch(CmdAuth) {
		t.Errorf("CmdAuth should be legal in Start")
	}
	m.OnAuthSent()
	if m.CanDispatch(CmdAuth) {
		t.Errorf("a second /auth should be rejected while AwaitingAuthReply")
	}
}

func TestPreAuthGating(t *testing.T) {
	m := New()
	for _, cmd := range []Command{CmdJoin, CmdMsg} {
		if m.CanDispatch(cmd) {
			t.Errorf("command %v should not be legal before Open", cmd)
		}
	}
	if !m.CanDispatch(CmdRename) || !m.CanDispatch(CmdHelp) {
		t.Errorf("Rename/Help should always be legal pre-terminal")
	}
}

func TestAuthReplyTransitions(t *testing.T) {
	m := New()
	m.OnAuthSent()
	if m.Phase() != AwaitingAuthReply {
		t.Fatalf("got %v", m.Phase())
	}
	m.OnAuthReply(true)
	if m.Phase() != Open {
		t.Errorf("got %v, want Open", m.Phase())
	}

	m2 := New()
	m2.OnAuthSent()
	m2.OnAuthReply(false)
	if m2.Phase() != Start {
		t.Errorf("got %v, want Start on auth failure", m2.Phase())
	}
}

func TestJoinFlow(t *testing.T) {
	m := New()
	m.OnAuthSent()
	m.OnAuthReply(true)
	if !m.CanDispatch(CmdJoin) {
		t.Fatalf("Join should be legal in Open")
	}
	m.OnJoinSent()
	if m.Phase() != AwaitingJoinReply {
		t.Fatalf("got %v", m.Phase())
	}
	// Msg stays legal while AwaitingJoinReply (S6): it is queued by the
	// reactor because AwaitingReply() is true, not rejected as illegal.
	if !m.CanDispatch(CmdMsg) {
		t.Errorf("Msg should remain legal while AwaitingJoinReply")
	}
	if !m.AwaitingReply() {
		t.Errorf("AwaitingJoinReply should report AwaitingReply")
	}
	m.OnJoinReply()
	if m.Phase() != Open {
		t.Errorf("got %v, want Open after any join reply", m.Phase())
	}
}

func TestJoinReplyNOKStillReturnsToOpen(t *testing.T) {
	m := New()
	m.OnAuthSent()
	m.OnAuthReply(true)
	m.OnJoinSent()
	m.OnJoinReply() // NOK and OK are handled identically by the state machine
	if m.Phase() != Open {
		t.Errorf("got %v, want Open", m.Phase())
	}
}

func TestPeerByeTerminates(t *testing.T) {
	m := New()
	m.OnAuthSent()
	m.OnAuthReply(true)
	m.OnPeerBye()
	if m.Phase() != Terminating {
		t.Errorf("got %v, want Terminating", m.Phase())
	}
	if !m.Phase().Terminal() {
		t.Errorf("Terminating should be Terminal")
	}
}

func TestFatalFromAnyPhase(t *testing.T) {
	m := New()
	m.OnFatal()
	if m.Phase() != Failed {
		t.Errorf("got %v, want Failed", m.Phase())
	}
}

func TestAwaitingReply(t *testing.T) {
	m := New()
	if m.AwaitingReply() {
		t.Errorf("Start should not be awaiting a reply")
	}
	m.OnAuthSent()
	if !m.AwaitingReply() {
		t.Errorf("AwaitingAuthReply should report AwaitingReply")
	}
}

func TestByeAlwaysLegal(t *testing.T) {
	m := New()
	if !m.CanDispatch(CmdBye) {
		t.Errorf("Bye should always be legal")
	}
	m.OnFatal()
	if !m.CanDispatch(CmdBye) {
		t.Errorf("Bye should still be legal from Failed (best-effort bye on teardown)")
	}
}
