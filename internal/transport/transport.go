// Package transport abstracts "send a frame" / "receive a frame" over a
// reliable stream socket (TCP) and an unreliable datagram socket (UDP), per
// spec.md §4.C. It is grounded on client/transport.go's Transport type
// (connection lifecycle, mutex-guarded socket handle) but replaces the
// WebTransport/QUIC session with a raw net.Conn / net.UDPConn, since
// spec.md mandates the bespoke IPK24-CHAT wire format rather than an
// off-the-shelf reliable-transport protocol.
package transport

import (
	"context"
	"fmt"
	"net"
)

// Transport is the capability set both variants implement.
type Transport interface {
	// SendFrame writes one complete frame. It never writes a partial frame:
	// on a stream socket it loops over short writes; on a datagram socket
	// it issues a single send of the whole payload.
	SendFrame(frame []byte) error

	// RecvFrame blocks until one complete frame is available, or ctx is
	// done, or the socket errors/closes.
	RecvFrame(ctx context.Context) ([]byte, error)

	// Close releases the underlying socket. Safe to call more than once;
	// only the first call has effect (spec.md §5: "double-close is
	// prevented by a sentinel value on the handle").
	Close() error
}

// Kind distinguishes which variant to dial.
type Kind uint8

const (
	KindTCP Kind = iota
	KindUDP
)

func (k Kind) String() string {
	if k == KindTCP {
		return "tcp"
	}
	return "udp"
}

// ParseKind validates the literal CLI transport string. Per spec.md DESIGN
// NOTES item (b), only the literal strings "tcp" or "udp" are accepted —
// the original's inverted strcmp check (which accepted anything) is a bug,
// not intended behavior.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "tcp":
		return KindTCP, nil
	case "udp":
		return KindUDP, nil
	default:
		return 0, fmt.Errorf("transport: unknown protocol %q (want \"tcp\" or \"udp\")", s)
	}
}

// Dial resolves host and connects using kind. For TCP this iterates every
// resolved address and dials each in turn, stopping at the first success —
// fixing the source's bug (DESIGN NOTES item a) of retrying the same head-
// of-list address on every attempt. For UDP no connect() is performed; an
// unconnected socket is created with a cached destination, since the
// server may reply from a different port (spec.md §4.C).
func Dial(ctx context.Context, kind Kind, host string, port int) (Transport, error) {
	addrs, err := net.DefaultResolver.LookupIPAddr(ctx, host)
	if err != nil {
		return nil, fmt.Errorf("transport: resolve %s: %w", host, err)
	}
	if len(addrs) == 0 {
		return nil, fmt.Errorf("transport: resolve %s: no addresses", host)
	}

	switch kind {
	case KindTCP:
		return dialTCP(ctx, addrs, port)
	case KindUDP:
		return dialUDP(addrs, port)
	default:
		return nil, fmt.Errorf("transport: unknown kind %v", kind)
	}
}

func dialTCP(ctx context.Context, addrs []net.IPAddr, port int) (Transport, error) {
	var lastErr error
	var d net.Dialer
	for _, a := range addrs {
		addr := net.JoinHostPort(a.IP.String(), fmt.Sprintf("%d", port))
		conn, err := d.DialContext(ctx, "tcp", addr)
		if err == nil {
			return newStream(conn), nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("transport: connect: all addresses failed, last error: %w", lastErr)
}

func dialUDP(addrs []net.IPAddr, port int) (Transport, error) {
	dest := &net.UDPAddr{IP: addrs[0].IP, Port: port}

	conn, err := net.ListenUDP("udp", nil)
	if err != nil {
		return nil, fmt.Errorf("transport: create datagram socket: %w", err)
	}
	return newDatagram(conn, dest), nil
}
