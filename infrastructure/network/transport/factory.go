package transport

import (
	"context"
	"errors"
	"fmt"
	"io"

	"sealtun/application/logging"
	"sealtun/application/network/channel"
	"sealtun/infrastructure/network/quic"
	"sealtun/infrastructure/network/tcp"
	"sealtun/infrastructure/network/udp"
	"sealtun/infrastructure/network/ws"
	"sealtun/infrastructure/settings"
)

var ErrUnsupportedProtocol = errors.New("unsupported protocol")

// Transport is the ciphertext side of a tunnel.
type Transport interface {
	channel.Channel
	io.Closer
}

type Factory struct {
	logger logging.Logger
}

func NewFactory(logger logging.Logger) *Factory {
	return &Factory{logger: logger}
}

// Connect dials the peer or waits for it, depending on the role. For a
// listening stream transport the call returns once the first peer connected.
func (f *Factory) Connect(ctx context.Context, s settings.Settings) (Transport, error) {
	switch s.Role {
	case settings.Dial:
		return f.dial(ctx, s)
	case settings.Listen:
		return f.listen(ctx, s)
	default:
		return nil, fmt.Errorf("%w: %v", settings.ErrInvalidRole, s.Role)
	}
}

func (f *Factory) dial(ctx context.Context, s settings.Settings) (Transport, error) {
	ctx, cancel := context.WithTimeout(ctx, s.DialTimeoutMs.Duration())
	defer cancel()

	switch s.Protocol {
	case settings.UDP:
		return wrap(udp.Dial(ctx, s.RemoteAddress))
	case settings.TCP:
		return wrap(tcp.Dial(ctx, s.RemoteAddress))
	case settings.WS:
		return wrap(ws.Dial(ctx, s.RemoteAddress, s.WSPath))
	case settings.QUIC:
		return wrap(quic.Dial(ctx, s.RemoteAddress))
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedProtocol, s.Protocol)
	}
}

func (f *Factory) listen(ctx context.Context, s settings.Settings) (Transport, error) {
	switch s.Protocol {
	case settings.UDP:
		return wrap(udp.Listen(ctx, s.LocalAddress, s.RemoteAddress))
	case settings.TCP:
		ln, err := tcp.Listen(ctx, s.LocalAddress)
		if err != nil {
			return nil, err
		}
		defer func() { _ = ln.Close() }()
		f.logf("waiting for tcp peer on %s", ln.Addr())
		return wrap(ln.Accept(ctx))
	case settings.WS:
		ln, err := ws.Listen(ctx, s.LocalAddress, s.WSPath, f.logger)
		if err != nil {
			return nil, err
		}
		f.logf("waiting for websocket peer on %s", ln.Addr())
		conn, err := ln.Accept(ctx)
		if err != nil {
			_ = ln.Close()
			return nil, err
		}
		return conn, nil
	case settings.QUIC:
		ln, err := quic.Listen(s.LocalAddress, f.logger)
		if err != nil {
			return nil, err
		}
		f.logf("waiting for quic peer on %s", ln.Addr())
		conn, err := ln.Accept(ctx)
		if err != nil {
			_ = ln.Close()
			return nil, err
		}
		return conn, nil
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedProtocol, s.Protocol)
	}
}

// wrap keeps a failed constructor's typed nil out of the interface.
func wrap[T Transport](t T, err error) (Transport, error) {
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (f *Factory) logf(format string, v ...any) {
	if f.logger != nil {
		f.logger.Printf(format, v...)
	}
}
