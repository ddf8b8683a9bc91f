package quic

import (
	"context"
	"fmt"
	"net"
	"sync"

	"sealtun/application/logging"

	q "github.com/quic-go/quic-go"
)

// Listener hands out the first peer that connects. Later peers are closed
// with CloseCodeBusy.
type Listener struct {
	inner  *q.Listener
	logger logging.Logger

	closeOnce sync.Once
	closeErr  error
}

func Listen(local string, logger logging.Logger) (*Listener, error) {
	tlsConf, err := newTLSConfig()
	if err != nil {
		return nil, err
	}
	ln, err := q.ListenAddr(local, tlsConf, config())
	if err != nil {
		return nil, fmt.Errorf("quic listen %s: %w", local, err)
	}
	return &Listener{inner: ln, logger: logger}, nil
}

func (l *Listener) Addr() net.Addr { return l.inner.Addr() }

// Accept waits for the first peer. The returned Conn owns the listener and
// closes it when closed.
func (l *Listener) Accept(ctx context.Context) (*Conn, error) {
	conn, err := l.inner.Accept(ctx)
	if err != nil {
		return nil, err
	}
	c, err := newConn(conn, l)
	if err != nil {
		return nil, err
	}
	go l.rejectRest()
	return c, nil
}

func (l *Listener) rejectRest() {
	for {
		conn, err := l.inner.Accept(context.Background())
		if err != nil {
			return
		}
		if l.logger != nil {
			l.logger.Printf("quic: rejecting %s, session already active", conn.RemoteAddr())
		}
		_ = conn.CloseWithError(CloseCodeBusy, "busy")
	}
}

// Close stops accepting peers.
func (l *Listener) Close() error {
	l.closeOnce.Do(func() {
		l.closeErr = l.inner.Close()
	})
	return l.closeErr
}
