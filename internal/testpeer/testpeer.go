// Package testpeer provides a scripted virtual server peer used to drive
// the end-to-end scenarios in spec.md §8 (S1-S6) without a real network or
// a real IPK24-CHAT server. Grounded on client/testuser.go's TestUser — "a
// virtual peer that connects to the server... and continuously streams" a
// scripted behavior — adapted here from a synthetic audio source to a
// synthetic protocol responder.
package testpeer

import (
	"bufio"
	"fmt"
	"net"
	"time"

	"ipk24chat/internal/protocol"
)

// TCPPeer is a scripted counterpart to a reactor under test, communicating
// over a net.Conn (typically one half of a net.Pipe or a real TCP loopback
// connection).
type TCPPeer struct {
	conn   net.Conn
	reader *bufio.Scanner
}

// NewTCPPeer wraps conn for line-oriented reads.
func NewTCPPeer(conn net.Conn) *TCPPeer {
	s := bufio.NewScanner(conn)
	return &TCPPeer{conn: conn, reader: s}
}

// ReadLine blocks for the next CRLF-terminated line sent by the client under
// test, with the terminator stripped.
func (p *TCPPeer) ReadLine() (string, error) {
	if !p.reader.Scan() {
		if err := p.reader.Err(); err != nil {
			return "", err
		}
		return "", fmt.Errorf("testpeer: connection closed")
	}
	text := p.reader.Text()
	for len(text) > 0 && (text[len(text)-1] == '\r' || text[len(text)-1] == '\n') {
		text = text[:len(text)-1]
	}
	return text, nil
}

// Send writes m as a TCP frame.
func (p *TCPPeer) Send(m protocol.Message) error {
	frame, err := protocol.EncodeTCP(m)
	if err != nil {
		return err
	}
	_, err = p.conn.Write(frame)
	return err
}

// Close closes the underlying connection.
func (p *TCPPeer) Close() error { return p.conn.Close() }

// UDPPeer is a scripted counterpart for UDP scenarios, bound to its own
// ephemeral loopback socket.
type UDPPeer struct {
	conn *net.UDPConn
	last *net.UDPAddr // most recent sender, used as the reply destination
}

// NewUDPPeer creates a loopback UDP socket for the peer side.
func NewUDPPeer() (*UDPPeer, error) {
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	if err != nil {
		return nil, err
	}
	return &UDPPeer{conn: conn}, nil
}

// Addr returns the loopback address the client under test should dial.
func (p *UDPPeer) Addr() *net.UDPAddr { return p.conn.LocalAddr().(*net.UDPAddr) }

// Recv blocks until one datagram arrives, recording its source for Send.
func (p *UDPPeer) Recv(timeout time.Duration) ([]byte, protocol.Message, uint16, error) {
	p.conn.SetReadDeadline(time.Now().Add(timeout))
	buf := make([]byte, protocol.MaxUDPFrame)
	n, from, err := p.conn.ReadFromUDP(buf)
	if err != nil {
		return nil, protocol.Message{}, 0, err
	}
	p.last = from
	m, id, perr := protocol.ParseUDP(buf[:n])
	return buf[:n], m, id, perr
}

// Send writes m (with the given message id) to the last-seen sender.
func (p *UDPPeer) Send(m protocol.Message, id uint16) error {
	frame, err := protocol.EncodeUDP(m, id)
	if err != nil {
		return err
	}
	_, err = p.conn.WriteToUDP(frame, p.last)
	return err
}

// SendTo writes m to an explicit destination, for tests that want to reply
// from a different source port than they received on (simulating server
// rebinding) without first Recv-ing from that socket.
func (p *UDPPeer) SendTo(m protocol.Message, id uint16, dest *net.UDPAddr) error {
	frame, err := protocol.EncodeUDP(m, id)
	if err != nil {
		return err
	}
	_, err = p.conn.WriteToUDP(frame, dest)
	return err
}

// Close closes the underlying socket.
func (p *UDPPeer) Close() error { return p.conn.Close() }
