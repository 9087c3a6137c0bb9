package config

import (
	"bytes"
	"errors"
	"testing"

	"ipk24chat/internal/transport"
)

func TestParseDefaults(t *testing.T) {
	var out bytes.Buffer
	cfg, err := Parse([]string{"-t", "tcp", "-s", "localhost"}, &out)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Transport != transport.KindTCP {
		t.Errorf("got transport %v, want tcp", cfg.Transport)
	}
	if cfg.Port != DefaultPort {
		t.Errorf("got port %d, want %d", cfg.Port, DefaultPort)
	}
	if cfg.TimeoutMs != DefaultTimeoutMs {
		t.Errorf("got timeout %d, want %d", cfg.TimeoutMs, DefaultTimeoutMs)
	}
	if cfg.MaxRetries != DefaultMaxRetries {
		t.Errorf("got retries %d, want %d", cfg.MaxRetries, DefaultMaxRetries)
	}
}

func TestParseOverrides(t *testing.T) {
	var out bytes.Buffer
	cfg, err := Parse([]string{"-t", "udp", "-s", "10.0.0.1", "-p", "9999", "-d", "100", "-r", "5"}, &out)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Transport != transport.KindUDP || cfg.Port != 9999 || cfg.TimeoutMs != 100 || cfg.MaxRetries != 5 {
		t.Errorf("got %+v", cfg)
	}
}

func TestParseMissingRequired(t *testing.T) {
	var out bytes.Buffer
	if _, err := Parse([]string{"-t", "tcp"}, &out); err == nil {
		t.Errorf("expected error for missing -s")
	}
	var out2 bytes.Buffer
	if _, err := Parse([]string{"-s", "host"}, &out2); err == nil {
		t.Errorf("expected error for missing -t")
	}
}

func TestParseRejectsUnknownTransport(t *testing.T) {
	var out bytes.Buffer
	if _, err := Parse([]string{"-t", "quic", "-s", "host"}, &out); err == nil {
		t.Errorf("expected error for unknown transport")
	}
}

func TestParseHelp(t *testing.T) {
	var out bytes.Buffer
	_, err := Parse([]string{"-h"}, &out)
	if !errors.Is(err, ErrHelp) {
		t.Errorf("got %v, want ErrHelp", err)
	}
	if out.Len() == 0 {
		t.Errorf("expected usage to be printed")
	}
}

func TestParseRejectsBadPort(t *testing.T) {
	var out bytes.Buffer
	if _, err := Parse([]string{"-t", "tcp", "-s", "host", "-p", "70000"}, &out); err == nil {
		t.Errorf("expected error for out-of-range port")
	}
}

func TestConfigErrorUnwraps(t *testing.T) {
	var out bytes.Buffer
	_, err := Parse([]string{"-t", "bogus", "-s", "host"}, &out)
	var ce *ConfigError
	if !errors.As(err, &ce) {
		t.Errorf("expected *ConfigError, got %T", err)
	}
}
