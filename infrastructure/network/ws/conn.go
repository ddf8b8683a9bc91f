package ws

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/url"

	"sealtun/infrastructure/settings"

	"github.com/coder/websocket"
)

// Conn carries one packet per binary WebSocket message. Text messages are
// drained and ignored.
//
// coder/websocket closes the connection when the context of a pending read or
// write is cancelled, so a cancelled Conn is not reusable.
type Conn struct {
	conn   *websocket.Conn
	closer io.Closer // server side only
}

func newConn(c *websocket.Conn, closer io.Closer) *Conn {
	c.SetReadLimit(int64(settings.MaxFrameLength))
	return &Conn{conn: c, closer: closer}
}

// Dial connects to ws://remote/path.
func Dial(ctx context.Context, remote, path string) (*Conn, error) {
	u := url.URL{Scheme: "ws", Host: remote, Path: normalizePath(path)}
	c, _, err := websocket.Dial(ctx, u.String(), &websocket.DialOptions{
		CompressionMode: websocket.CompressionDisabled,
	})
	if err != nil {
		return nil, fmt.Errorf("ws dial %s: %w", u.String(), err)
	}
	return newConn(c, nil), nil
}

func (c *Conn) ReadPacket(ctx context.Context, buf []byte) (int, error) {
	for {
		mt, r, err := c.conn.Reader(ctx)
		if err != nil {
			return 0, mapErr(ctx, err)
		}
		if mt != websocket.MessageBinary {
			if _, err := io.Copy(io.Discard, r); err != nil {
				return 0, mapErr(ctx, err)
			}
			continue
		}
		return readMessage(ctx, r, buf)
	}
}

func (c *Conn) WritePacket(ctx context.Context, packet []byte) error {
	if err := c.conn.Write(ctx, websocket.MessageBinary, packet); err != nil {
		return mapErr(ctx, err)
	}
	return nil
}

func (c *Conn) Close() error {
	err := c.conn.Close(websocket.StatusNormalClosure, "")
	if c.closer != nil {
		if cerr := c.closer.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

// readMessage copies one message into buf. A message longer than buf is
// drained and reported as io.ErrShortBuffer.
func readMessage(ctx context.Context, r io.Reader, buf []byte) (int, error) {
	n, err := io.ReadFull(r, buf)
	switch {
	case err == nil:
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return n, nil
	default:
		return 0, mapErr(ctx, err)
	}

	var probe [1]byte
	k, err := io.ReadFull(r, probe[:])
	if k == 0 && errors.Is(err, io.EOF) {
		return n, nil
	}
	if err != nil {
		return 0, mapErr(ctx, err)
	}
	if _, err := io.Copy(io.Discard, r); err != nil {
		return 0, mapErr(ctx, err)
	}
	return 0, io.ErrShortBuffer
}

// mapErr turns a normal close into io.EOF and reports cancellation as ctx.Err().
func mapErr(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	switch websocket.CloseStatus(err) {
	case websocket.StatusNormalClosure, websocket.StatusGoingAway:
		return io.EOF
	}
	if errors.Is(err, net.ErrClosed) {
		return io.EOF
	}
	return err
}

func normalizePath(p string) string {
	if p == "" {
		return "/"
	}
	if p[0] != '/' {
		return "/" + p
	}
	return p
}
