package grammar

import "testing"

func TestIsValidID(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"", false},
		{"a", true},
		{"user-1", true},
		{"has space", false},
		{"has_underscore", false},
		{string(make([]byte, 21)), false}, // all NUL bytes, also too long
	}
	for _, c := range cases {
		if got := IsValidID(c.in); got != c.want {
			t.Errorf("IsValidID(%q) = %v, want %v", c.in, got, c.want)
		}
	}
	long := ""
	for i := 0; i < 20; i++ {
		long += "a"
	}
	if !IsValidID(long) {
		t.Errorf("20-char id should be valid")
	}
	if IsValidID(long + "a") {
		t.Errorf("21-char id should be invalid")
	}
}

func TestIsValidSecret(t *testing.T) {
	if !IsValidSecret("s") {
		t.Errorf("1-char secret should be valid")
	}
	long := make([]byte, 128)
	for i := range long {
		long[i] = 'a'
	}
	if !IsValidSecret(string(long)) {
		t.Errorf("128-char secret should be valid")
	}
	if IsValidSecret(string(long) + "a") {
		t.Errorf("129-char secret should be invalid")
	}
	if IsValidSecret("") {
		t.Errorf("empty secret should be invalid")
	}
	if IsValidSecret("bad!char") {
		t.Errorf("secret with '!' should be invalid")
	}
}

func TestIsValidDisplayName(t *testing.T) {
	if !IsValidDisplayName("Alice") {
		t.Errorf("Alice should be valid")
	}
	if IsValidDisplayName("has space") {
		t.Errorf("display name excludes space (only 0x21-0x7E)")
	}
	if IsValidDisplayName("") {
		t.Errorf("empty display name should be invalid")
	}
	if IsValidDisplayName("tab\there") {
		t.Errorf("tab is not printable ASCII")
	}
}

func TestIsValidContent(t *testing.T) {
	if !IsValidContent("hello world") {
		t.Errorf("hello world should be valid")
	}
	if IsValidContent("") {
		t.Errorf("empty content should be invalid")
	}
	if IsValidContent("bad\r\n") {
		t.Errorf("CR/LF bytes are not in 0x20-0x7E")
	}
	long := make([]byte, 1400)
	for i := range long {
		long[i] = 'x'
	}
	if !IsValidContent(string(long)) {
		t.Errorf("1400-byte content should be valid")
	}
	if IsValidContent(string(long) + "x") {
		t.Errorf("1401-byte content should be invalid")
	}
}
