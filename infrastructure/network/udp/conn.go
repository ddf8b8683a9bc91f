package udp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/netip"
	"sync"
	"sync/atomic"

	"sealtun/infrastructure/network/deadline"
)

// maxDatagram is the largest UDP payload over IPv4.
const maxDatagram = 65507

// Conn carries one packet per datagram over an unconnected socket, so
// datagrams are accepted from any source and ICMP errors from a peer that is
// not up yet never reach the reader. A dialed Conn sends to a fixed peer. A
// listening Conn without a configured peer replies to the source of the first
// datagram it receives.
type Conn struct {
	conn *net.UDPConn

	peer      atomic.Pointer[netip.AddrPort]
	peerKnown chan struct{}
	latchOnce sync.Once

	rmu sync.Mutex
	buf [maxDatagram]byte
}

// Dial binds an ephemeral port and fixes remote as the peer.
func Dial(ctx context.Context, remote string) (*Conn, error) {
	addr, err := net.ResolveUDPAddr("udp", remote)
	if err != nil {
		return nil, fmt.Errorf("udp dial %s: %w", remote, err)
	}
	peer := addr.AddrPort()
	peer = netip.AddrPortFrom(peer.Addr().Unmap(), peer.Port())
	network := "udp6"
	if peer.Addr().Is4() {
		network = "udp4"
	}
	c, err := bind(ctx, network, ":0")
	if err != nil {
		return nil, fmt.Errorf("udp dial %s: %w", remote, err)
	}
	c.latch(peer)
	return c, nil
}

// Listen binds local. remote, when set, fixes the peer up front.
func Listen(ctx context.Context, local, remote string) (*Conn, error) {
	c, err := bind(ctx, "udp", local)
	if err != nil {
		return nil, fmt.Errorf("udp listen %s: %w", local, err)
	}
	if remote != "" {
		peer, err := netip.ParseAddrPort(remote)
		if err != nil {
			_ = c.Close()
			return nil, fmt.Errorf("udp peer %q: %w", remote, err)
		}
		c.latch(peer)
	}
	return c, nil
}

func bind(ctx context.Context, network, local string) (*Conn, error) {
	var lc net.ListenConfig
	pc, err := lc.ListenPacket(ctx, network, local)
	if err != nil {
		return nil, err
	}
	return &Conn{
		conn:      pc.(*net.UDPConn),
		peerKnown: make(chan struct{}),
	}, nil
}

func (c *Conn) ReadPacket(ctx context.Context, buf []byte) (int, error) {
	c.rmu.Lock()
	defer c.rmu.Unlock()

	var (
		n    int
		from netip.AddrPort
	)
	// Fast path: a max-sized caller buffer cannot truncate a datagram.
	dst := buf
	if len(buf) < len(c.buf) {
		dst = c.buf[:]
	}
	err := deadline.Interruptible(ctx, c.conn.SetReadDeadline, func() error {
		var rerr error
		n, _, _, from, rerr = c.conn.ReadMsgUDPAddrPort(dst, nil)
		return rerr
	})
	if err != nil {
		return 0, mapErr(err)
	}
	c.latch(from)
	if len(buf) < len(c.buf) {
		if n > len(buf) {
			return 0, io.ErrShortBuffer
		}
		copy(buf, c.buf[:n])
	}
	return n, nil
}

// WritePacket sends packet as one datagram. On a listening Conn it waits
// until the peer is known.
func (c *Conn) WritePacket(ctx context.Context, packet []byte) error {
	select {
	case <-c.peerKnown:
	case <-ctx.Done():
		return ctx.Err()
	}
	return deadline.Interruptible(ctx, c.conn.SetWriteDeadline, func() error {
		_, err := c.conn.WriteToUDPAddrPort(packet, *c.peer.Load())
		return mapErr(err)
	})
}

func (c *Conn) LocalAddr() net.Addr { return c.conn.LocalAddr() }

// Peer is the current peer, if known.
func (c *Conn) Peer() (netip.AddrPort, bool) {
	p := c.peer.Load()
	if p == nil {
		return netip.AddrPort{}, false
	}
	return *p, true
}

func (c *Conn) Close() error { return c.conn.Close() }

func (c *Conn) latch(peer netip.AddrPort) {
	c.latchOnce.Do(func() {
		c.peer.Store(&peer)
		close(c.peerKnown)
	})
}

func mapErr(err error) error {
	if errors.Is(err, net.ErrClosed) {
		return io.EOF
	}
	return err
}
