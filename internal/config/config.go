// Package config parses and validates the ipk24chat CLI flags (spec.md §6).
// Grounded on server/main.go's flag.String/flag.Int/flag.Parse convention;
// unlike server/main.go it builds a private flag.FlagSet so main.go controls
// exit codes and usage output itself (spec.md: -h -> usage + exit 0, a bad
// flag -> usage + exit 1 — the stdlib flag package's default ExitOnError
// behavior exits(2) on error, which spec.md does not call for).
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"ipk24chat/internal/transport"
)

// ConfigError wraps any CLI-flag validation failure (spec.md §7).
type ConfigError struct {
	Err error
}

func (e *ConfigError) Error() string { return e.Err.Error() }
func (e *ConfigError) Unwrap() error { return e.Err }

func configErrorf(format string, args ...any) error {
	return &ConfigError{Err: fmt.Errorf(format, args...)}
}

// Defaults, per spec.md §6.
const (
	DefaultPort       = 4567
	DefaultTimeoutMs  = 250
	DefaultMaxRetries = 3
)

// Config is the fully parsed and validated set of CLI flags.
type Config struct {
	Transport  transport.Kind
	Host       string
	Port       int
	TimeoutMs  int
	MaxRetries int
}

// ErrHelp is returned by Parse when -h was given; Parse has already written
// usage, and callers should exit 0, not treat it as a failure.
var ErrHelp = errors.New("config: help requested")

// Parse parses args (excluding argv[0]) into a Config. On any failure, and
// on -h/-help, Parse itself writes usage (a synopsis line followed by
// flag.FlagSet's default flag listing) to out before returning. Any parse
// failure or failed validation is returned as a *ConfigError (callers
// should exit 1); -h/-help returns ErrHelp (callers should exit 0).
func Parse(args []string, out io.Writer) (Config, error) {
	fs := flag.NewFlagSet("ipk24chat", flag.ContinueOnError)
	fs.SetOutput(out)

	transportFlag := fs.String("t", "", "transport protocol: tcp or udp (required)")
	host := fs.String("s", "", "server hostname or IP address (required)")
	port := fs.Int("p", DefaultPort, "server port")
	timeoutMs := fs.Int("d", DefaultTimeoutMs, "UDP confirmation timeout in milliseconds")
	maxRetries := fs.Int("r", DefaultMaxRetries, "maximum number of UDP retransmissions")
	fs.Usage = func() {
		fmt.Fprintf(out, "Usage: ipk24chat -t tcp|udp -s <host> [-p <port>] [-d <ms>] [-r <n>] [-h]\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			fs.Usage()
			return Config{}, ErrHelp
		}
		return Config{}, configErrorf("%w", err)
	}

	if *host == "" {
		fs.Usage()
		return Config{}, configErrorf("missing required flag -s")
	}
	if strings.TrimSpace(*transportFlag) == "" {
		fs.Usage()
		return Config{}, configErrorf("missing required flag -t")
	}
	kind, err := transport.ParseKind(*transportFlag)
	if err != nil {
		fs.Usage()
		return Config{}, configErrorf("%w", err)
	}
	if *port < 1 || *port > 65535 {
		fs.Usage()
		return Config{}, configErrorf("invalid port %d", *port)
	}
	if *timeoutMs <= 0 {
		fs.Usage()
		return Config{}, configErrorf("invalid timeout %dms", *timeoutMs)
	}
	if *maxRetries < 0 {
		fs.Usage()
		return Config{}, configErrorf("invalid retry count %d", *maxRetries)
	}

	return Config{
		Transport:  kind,
		Host:       *host,
		Port:       *port,
		TimeoutMs:  *timeoutMs,
		MaxRetries: *maxRetries,
	}, nil
}
