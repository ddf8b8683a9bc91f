package tcp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"

	"sealtun/infrastructure/network/deadline"
)

// Conn carries packets over a stream as u16 length-prefixed frames.
type Conn struct {
	conn net.Conn

	rmu sync.Mutex

	wmu  sync.Mutex
	wbuf []byte
}

func NewConn(conn net.Conn) *Conn {
	if tc, ok := conn.(*net.TCPConn); ok {
		_ = tc.SetNoDelay(true)
	}
	return &Conn{conn: conn}
}

func Dial(ctx context.Context, remote string) (*Conn, error) {
	var d net.Dialer
	c, err := d.DialContext(ctx, "tcp", remote)
	if err != nil {
		return nil, fmt.Errorf("tcp dial %s: %w", remote, err)
	}
	return NewConn(c), nil
}

func (c *Conn) ReadPacket(ctx context.Context, buf []byte) (int, error) {
	c.rmu.Lock()
	defer c.rmu.Unlock()

	var n int
	err := deadline.Interruptible(ctx, c.conn.SetReadDeadline, func() error {
		var rerr error
		n, rerr = readFrame(c.conn, buf)
		return rerr
	})
	if err != nil {
		return 0, mapErr(err)
	}
	return n, nil
}

// WritePacket sends the frame with a single Write so frames never interleave.
func (c *Conn) WritePacket(ctx context.Context, packet []byte) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()

	frame, err := appendFrame(c.wbuf[:0], packet)
	if err != nil {
		return err
	}
	c.wbuf = frame
	return deadline.Interruptible(ctx, c.conn.SetWriteDeadline, func() error {
		_, werr := c.conn.Write(frame)
		return mapErr(werr)
	})
}

func (c *Conn) LocalAddr() net.Addr  { return c.conn.LocalAddr() }
func (c *Conn) RemoteAddr() net.Addr { return c.conn.RemoteAddr() }

func (c *Conn) Close() error { return c.conn.Close() }

func mapErr(err error) error {
	if errors.Is(err, net.ErrClosed) {
		return io.EOF
	}
	return err
}
