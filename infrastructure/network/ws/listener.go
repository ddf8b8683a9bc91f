package ws

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"sealtun/application/logging"

	"github.com/coder/websocket"
)

// CloseCodeBusy is sent to peers arriving while a session is already active.
const CloseCodeBusy websocket.StatusCode = 4000

const (
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 2 * time.Second
)

// Listener serves a single WebSocket path and hands out the first peer that
// upgrades on it. Later peers are closed with CloseCodeBusy.
type Listener struct {
	ln     net.Listener
	server *http.Server
	path   string
	logger logging.Logger

	queue     chan *websocket.Conn
	taken     atomic.Bool
	served    chan struct{}
	closeOnce sync.Once
	closeErr  error
}

func Listen(ctx context.Context, local, path string, logger logging.Logger) (*Listener, error) {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", local)
	if err != nil {
		return nil, fmt.Errorf("ws listen %s: %w", local, err)
	}
	l := &Listener{
		ln:     ln,
		path:   normalizePath(path),
		logger: logger,
		queue:  make(chan *websocket.Conn, 1),
		served: make(chan struct{}),
	}
	mux := http.NewServeMux()
	mux.HandleFunc(l.path, l.handle)
	l.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: readHeaderTimeout,
	}
	go func() {
		defer close(l.served)
		if err := l.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.logf("ws server stopped: %v", err)
		}
	}()
	return l, nil
}

func (l *Listener) Addr() net.Addr { return l.ln.Addr() }

// Accept waits for the first peer. The returned Conn shuts the server down
// when closed.
func (l *Listener) Accept(ctx context.Context) (*Conn, error) {
	select {
	case c := <-l.queue:
		return newConn(c, l), nil
	case <-l.served:
		return nil, net.ErrClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (l *Listener) Close() error {
	l.closeOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		l.closeErr = l.server.Shutdown(ctx)
	})
	return l.closeErr
}

func (l *Listener) handle(w http.ResponseWriter, r *http.Request) {
	c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		CompressionMode: websocket.CompressionDisabled,
	})
	if err != nil {
		l.logf("ws upgrade from %s failed: %v", r.RemoteAddr, err)
		return
	}
	if !l.taken.CompareAndSwap(false, true) {
		_ = c.Close(CloseCodeBusy, "session already active")
		return
	}
	l.queue <- c
}

func (l *Listener) logf(format string, v ...any) {
	if l.logger != nil {
		l.logger.Printf(format, v...)
	}
}
