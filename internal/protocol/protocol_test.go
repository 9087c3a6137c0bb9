package protocol

import (
	"strings"
	"testing"
)

func TestTCPRoundTrip(t *testing.T) {
	cases := []Message{
		Auth("u1", "s1", "Alice"),
		Join("ch1", "Alice"),
		Msg("Alice", "hello world"),
		Err("srv", "boom"),
		Reply(true, "welcome"),
		Reply(false, "bad secret"),
		Bye(),
	}
	for _, m := range cases {
		enc, err := EncodeTCP(m)
		if err != nil {
			t.Fatalf("EncodeTCP(%v): %v", m, err)
		}
		if !strings.HasSuffix(string(enc), "\r\n") {
			t.Errorf("EncodeTCP(%v) = %q, missing \\r\\n terminator", m, enc)
		}
		line := strings.TrimSuffix(string(enc), "\r\n")
		got, err := ParseTCP(line)
		if err != nil {
			t.Fatalf("ParseTCP(%q): %v", line, err)
		}
		if got != m {
			t.Errorf("round-trip mismatch: got %+v, want %+v", got, m)
		}
	}
}

func TestTCPWireExact(t *testing.T) {
	enc, _ := EncodeTCP(Auth("u1", "s1", "Alice"))
	if string(enc) != "AUTH u1 AS s1 USING Alice\r\n" {
		t.Errorf("got %q", enc)
	}
	enc, _ = EncodeTCP(Msg("Alice", "hello world"))
	if string(enc) != "MSG FROM Alice IS hello world\r\n" {
		t.Errorf("got %q", enc)
	}
	enc, _ = EncodeTCP(Reply(true, "welcome"))
	if string(enc) != "REPLY OK IS welcome\r\n" {
		t.Errorf("got %q", enc)
	}
	enc, _ = EncodeTCP(Bye())
	if string(enc) != "BYE\r\n" {
		t.Errorf("got %q", enc)
	}
}

func TestTCPParseUnknown(t *testing.T) {
	if _, err := ParseTCP("GARBAGE\r\n"); err != ErrUnknown {
		t.Errorf("expected ErrUnknown, got %v", err)
	}
}

func TestTCPParseMalformed(t *testing.T) {
	cases := []string{
		"AUTH u1 USING Alice",   // missing AS
		"JOIN ch1",              // missing AS display_name
		"MSG FROM Alice",        // missing IS content
		"REPLY MAYBE IS welcome",
	}
	for _, c := range cases {
		if _, err := ParseTCP(c); err != ErrMalformed {
			t.Errorf("ParseTCP(%q) = %v, want ErrMalformed", c, err)
		}
	}
}

func TestUDPRoundTrip(t *testing.T) {
	cases := []Message{
		Auth("u1", "s1", "Alice"),
		Join("ch1", "Alice"),
		Msg("Alice", "hello world"),
		Err("srv", "boom"),
		Bye(),
	}
	for _, m := range cases {
		for _, id := range []uint16{0, 1, 65535} {
			enc, err := EncodeUDP(m, id)
			if err != nil {
				t.Fatalf("EncodeUDP(%v, %d): %v", m, id, err)
			}
			got, gotID, err := ParseUDP(enc)
			if err != nil {
				t.Fatalf("ParseUDP: %v", err)
			}
			if gotID != id {
				t.Errorf("id mismatch: got %d, want %d", gotID, id)
			}
			if got != m {
				t.Errorf("round-trip mismatch: got %+v, want %+v", got, m)
			}
		}
	}
}

func TestUDPReplyRoundTrip(t *testing.T) {
	m := Reply(true, "ok")
	m.RefMID = 7
	enc, err := EncodeUDP(m, 0)
	if err != nil {
		t.Fatal(err)
	}
	got, gotID, err := ParseUDP(enc)
	if err != nil {
		t.Fatal(err)
	}
	if gotID != 0 {
		t.Errorf("got id %d, want 0", gotID)
	}
	if got != m {
		t.Errorf("got %+v, want %+v", got, m)
	}
}

func TestUDPAuthWireExact(t *testing.T) {
	enc, err := EncodeUDP(Auth("u1", "s1", "Alice"), 0)
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{0x02, 0x00, 0x00, 'u', '1', 0, 's', '1', 0, 'A', 'l', 'i', 'c', 'e', 0}
	if string(enc) != string(want) {
		t.Errorf("got % x, want % x", enc, want)
	}
}

func TestUDPConfirmWireExact(t *testing.T) {
	enc, err := EncodeUDP(Confirm(0), 0)
	if err != nil {
		t.Fatal(err)
	}
	if string(enc) != string([]byte{0x00, 0x00, 0x00}) {
		t.Errorf("got % x", enc)
	}
}

func TestUDPParseTruncated(t *testing.T) {
	if _, _, err := ParseUDP([]byte{0x02, 0x00}); err != ErrMalformed {
		t.Errorf("short header: got %v, want ErrMalformed", err)
	}
	if _, _, err := ParseUDP([]byte{0x02, 0x00, 0x00, 'u'}); err != ErrMalformed {
		t.Errorf("missing NUL terminator: got %v, want ErrMalformed", err)
	}
}

func TestUDPParseUnknownType(t *testing.T) {
	if _, _, err := ParseUDP([]byte{0x7A, 0x00, 0x01}); err != ErrUnknown {
		t.Errorf("got %v, want ErrUnknown", err)
	}
}

func TestUDPNeverReadsPastSlice(t *testing.T) {
	// A Msg frame truncated mid-second-string must not panic or read OOB.
	data := []byte{typeMsg, 0x00, 0x01, 'A', 'l', 0}
	_, _, err := ParseUDP(data)
	if err != ErrMalformed {
		t.Errorf("got %v, want ErrMalformed", err)
	}
}
