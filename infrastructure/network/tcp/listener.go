package tcp

import (
	"context"
	"fmt"
	"net"
)

type Listener struct {
	ln net.Listener
}

func Listen(ctx context.Context, local string) (*Listener, error) {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", local)
	if err != nil {
		return nil, fmt.Errorf("tcp listen %s: %w", local, err)
	}
	return &Listener{ln: ln}, nil
}

func (l *Listener) Addr() net.Addr { return l.ln.Addr() }

// Accept waits for one peer. Cancelling ctx closes the listener.
func (l *Listener) Accept(ctx context.Context) (*Conn, error) {
	stop := context.AfterFunc(ctx, func() { _ = l.ln.Close() })
	defer stop()

	c, err := l.ln.Accept()
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("tcp accept: %w", err)
	}
	return NewConn(c), nil
}

func (l *Listener) Close() error { return l.ln.Close() }
