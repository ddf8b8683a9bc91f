package quic

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"sealtun/domain/network"

	q "github.com/quic-go/quic-go"
)

// ErrDatagramTooLarge rejects a packet that does not fit into one QUIC
// datagram on the current path.
var ErrDatagramTooLarge = network.NewRejection("packet exceeds the QUIC datagram size")

const (
	closeCodeNormal q.ApplicationErrorCode = 0
	// CloseCodeBusy is sent to peers arriving while a session is already active.
	CloseCodeBusy q.ApplicationErrorCode = 0x100
)

const (
	keepAlivePeriod = 10 * time.Second
	maxIdleTimeout  = 30 * time.Second
)

func config() *q.Config {
	return &q.Config{
		EnableDatagrams: true,
		KeepAlivePeriod: keepAlivePeriod,
		MaxIdleTimeout:  maxIdleTimeout,
	}
}

// Conn carries one packet per unreliable QUIC datagram (RFC 9221).
type Conn struct {
	conn q.Connection
	// closer is the listener of an accepted Conn; closing it ends the session.
	closer    io.Closer
	closeOnce sync.Once
	closeErr  error
}

func newConn(conn q.Connection, closer io.Closer) (*Conn, error) {
	if !conn.ConnectionState().SupportsDatagrams {
		_ = conn.CloseWithError(closeCodeNormal, "datagrams required")
		return nil, fmt.Errorf("quic: peer %s does not support datagrams", conn.RemoteAddr())
	}
	return &Conn{conn: conn, closer: closer}, nil
}

func Dial(ctx context.Context, remote string) (*Conn, error) {
	tlsConf, err := newTLSConfig()
	if err != nil {
		return nil, err
	}
	conn, err := q.DialAddr(ctx, remote, tlsConf, config())
	if err != nil {
		return nil, fmt.Errorf("quic dial %s: %w", remote, err)
	}
	return newConn(conn, nil)
}

func (c *Conn) ReadPacket(ctx context.Context, buf []byte) (int, error) {
	d, err := c.conn.ReceiveDatagram(ctx)
	if err != nil {
		return 0, c.mapErr(ctx, err)
	}
	if len(d) > len(buf) {
		return 0, io.ErrShortBuffer
	}
	return copy(buf, d), nil
}

func (c *Conn) WritePacket(ctx context.Context, packet []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := c.conn.SendDatagram(packet)
	if err == nil {
		return nil
	}
	var tooLarge *q.DatagramTooLargeError
	if errors.As(err, &tooLarge) {
		return fmt.Errorf("%w: %d bytes, max %d", ErrDatagramTooLarge, len(packet), tooLarge.MaxDatagramPayloadSize)
	}
	return c.mapErr(ctx, err)
}

func (c *Conn) LocalAddr() net.Addr  { return c.conn.LocalAddr() }
func (c *Conn) RemoteAddr() net.Addr { return c.conn.RemoteAddr() }

func (c *Conn) Close() error {
	c.closeOnce.Do(func() {
		c.closeErr = c.conn.CloseWithError(closeCodeNormal, "")
		if c.closer != nil {
			if err := c.closer.Close(); c.closeErr == nil {
				c.closeErr = err
			}
		}
	})
	return c.closeErr
}

// mapErr turns an orderly close from either side into io.EOF.
func (c *Conn) mapErr(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	var appErr *q.ApplicationError
	if errors.As(err, &appErr) && appErr.ErrorCode == closeCodeNormal {
		return io.EOF
	}
	if errors.Is(err, net.ErrClosed) {
		return io.EOF
	}
	return err
}
