package tun

import (
	"context"
	"errors"
	"io"
	"os"
	"sync"

	application "sealtun/application/network/tun"
	"sealtun/infrastructure/settings"

	wgtun "golang.zx2c4.com/wireguard/tun"
)

// wgOffset leaves room in front of every packet for the headers some
// platforms prepend (the 4-byte utun family on darwin).
const wgOffset = 16

// WgDevice adapts a wireguard/tun device to the packet channel contract.
// wireguard reads cannot be interrupted, so a pump goroutine owns the read
// side and hands packets over one at a time; ReadPacket only waits on it.
type WgDevice struct {
	dev  wgtun.Device
	name string

	reads    chan []byte
	consumed chan struct{}
	pumpDone chan struct{}
	readErr  error

	wmu  sync.Mutex
	wbuf []byte

	closed    chan struct{}
	closeOnce sync.Once
	closeErr  error
}

func NewWgDevice(dev wgtun.Device) (*WgDevice, error) {
	name, err := dev.Name()
	if err != nil {
		return nil, err
	}
	d := &WgDevice{
		dev:      dev,
		name:     name,
		reads:    make(chan []byte),
		consumed: make(chan struct{}, 1),
		pumpDone: make(chan struct{}),
		wbuf:     make([]byte, wgOffset+settings.MaxFrameLength),
		closed:   make(chan struct{}),
	}
	go d.pump()
	return d, nil
}

func (d *WgDevice) Name() string { return d.name }

func (d *WgDevice) pump() {
	defer close(d.pumpDone)

	batch := max(d.dev.BatchSize(), 1)
	bufs := make([][]byte, batch)
	for i := range bufs {
		bufs[i] = make([]byte, wgOffset+settings.MaxFrameLength)
	}
	sizes := make([]int, batch)

	for {
		n, err := d.dev.Read(bufs, sizes, wgOffset)
		for i := 0; i < n; i++ {
			select {
			case d.reads <- bufs[i][wgOffset : wgOffset+sizes[i]]:
			case <-d.closed:
				return
			}
			select {
			case <-d.consumed:
			case <-d.closed:
				return
			}
		}
		if err != nil {
			if errors.Is(err, wgtun.ErrTooManySegments) {
				continue
			}
			d.readErr = mapClosed(err)
			return
		}
	}
}

// ReadPacket copies the next packet into buf. A packet longer than buf is
// discarded and reported as io.ErrShortBuffer.
func (d *WgDevice) ReadPacket(ctx context.Context, buf []byte) (int, error) {
	select {
	case p := <-d.reads:
		n, err := 0, error(nil)
		if len(p) > len(buf) {
			err = io.ErrShortBuffer
		} else {
			n = copy(buf, p)
		}
		d.consumed <- struct{}{}
		return n, err
	case <-d.closed:
		return 0, application.ErrClosed
	case <-d.pumpDone:
		return 0, d.readErr
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

// WritePacket hands one packet to the driver. Driver writes do not block on
// the network, so ctx is only checked up front.
func (d *WgDevice) WritePacket(ctx context.Context, packet []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case <-d.closed:
		return application.ErrClosed
	default:
	}
	if len(packet) > len(d.wbuf)-wgOffset {
		return io.ErrShortBuffer
	}

	d.wmu.Lock()
	defer d.wmu.Unlock()
	n := copy(d.wbuf[wgOffset:], packet)
	if _, err := d.dev.Write([][]byte{d.wbuf[:wgOffset+n]}, wgOffset); err != nil {
		return mapClosed(err)
	}
	return nil
}

func (d *WgDevice) Close() error {
	d.closeOnce.Do(func() {
		close(d.closed)
		d.closeErr = d.dev.Close()
	})
	return d.closeErr
}

func mapClosed(err error) error {
	if errors.Is(err, os.ErrClosed) {
		return application.ErrClosed
	}
	return err
}
