package transport

import (
	"context"
	"net"
	"sync"
)

// datagram is the UDP Transport variant. No connect() is issued on the
// underlying socket; instead a destination address is cached and updated
// from every received datagram's source address, so the client follows the
// server if it replies from a different ephemeral port than the one the
// first Auth datagram targeted (spec.md §4.C, DESIGN NOTES "UDP peer
// rebinding").
type datagram struct {
	conn *net.UDPConn

	mu   sync.Mutex
	dest *net.UDPAddr

	closeOnce sync.Once
	closeErr  error
}

// NewDatagram wraps an already-bound *net.UDPConn with an initial
// destination as a datagram Transport. Exported for tests that need to
// construct one against a loopback socket pair without going through Dial.
func NewDatagram(conn *net.UDPConn, dest *net.UDPAddr) Transport {
	return newDatagram(conn, dest)
}

func newDatagram(conn *net.UDPConn, dest *net.UDPAddr) *datagram {
	return &datagram{conn: conn, dest: dest}
}

// PeerAddr returns the current destination address datagrams are sent to.
func (d *datagram) PeerAddr() *net.UDPAddr {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dest
}

func (d *datagram) SendFrame(frame []byte) error {
	d.mu.Lock()
	dest := d.dest
	d.mu.Unlock()
	_, err := d.conn.WriteToUDP(frame, dest)
	return err
}

// RecvFrame blocks in a helper goroutine until a datagram arrives or the
// socket errors. If ctx is canceled first, RecvFrame returns immediately but
// the helper goroutine keeps blocking on ReadFromUDP until Close unblocks it
// (the channel is buffered so the goroutine never leaks past that point) —
// acceptable because every call site closes the transport on shutdown.
func (d *datagram) RecvFrame(ctx context.Context) ([]byte, error) {
	type result struct {
		buf  []byte
		from *net.UDPAddr
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		buf := make([]byte, MaxUDPFrameSize)
		n, from, err := d.conn.ReadFromUDP(buf)
		if err != nil {
			ch <- result{err: err}
			return
		}
		ch <- result{buf: buf[:n], from: from}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		if r.err != nil {
			return nil, r.err
		}
		d.mu.Lock()
		d.dest = r.from
		d.mu.Unlock()
		return r.buf, nil
	}
}

func (d *datagram) Close() error {
	d.closeOnce.Do(func() {
		d.closeErr = d.conn.Close()
	})
	return d.closeErr
}

// MaxUDPFrameSize matches protocol.MaxUDPFrame; duplicated as an untyped
// constant here to avoid transport depending on protocol for a single
// buffer-sizing number.
const MaxUDPFrameSize = 1500
