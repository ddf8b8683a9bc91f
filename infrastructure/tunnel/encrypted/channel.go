package encrypted

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"sealtun/application/network/tun"
	"sealtun/infrastructure/cryptography/mem"
	"sealtun/infrastructure/cryptography/stream"
	"sealtun/infrastructure/network/ip"
	"sealtun/infrastructure/settings"
)

var (
	// ErrDeviceAlreadyBound is returned when a device is wrapped a second time.
	ErrDeviceAlreadyBound = errors.New("device is already bound to an encrypted channel")
	ErrClosed             = errors.New("encrypted channel closed")
)

type Options struct {
	Encryption settings.Encryption
	// NoncePrefix is shared by both directions; nil means all zeros.
	NoncePrefix []byte
	Opener      stream.OpenerOptions
	// ValidateIP rejects decrypted packets that are not well-formed IPv4/IPv6.
	ValidateIP bool
}

// Channel is a TUN device whose outer side speaks ciphertext. ReadPacket
// yields sealed packets read from the device; WritePacket opens a sealed
// packet and injects the plaintext into the device.
//
// One reader and one writer may run concurrently. The device is owned by the
// channel from FromDevice on and must not be used directly.
type Channel struct {
	dev    tun.Device
	sealer *stream.StreamSealer
	opener *stream.StreamOpener
	opts   Options

	wmu     sync.Mutex
	scratch []byte

	closed    atomic.Bool
	closeOnce sync.Once
	closeErr  error
}

// FromDevice derives the channel's ciphers from sendKey and recvKey and binds
// them to dev. The keys are zeroized before FromDevice returns. sendKey and
// recvKey may be the same key.
func FromDevice(dev tun.Device, sendKey, recvKey *stream.Key, opts Options) (*Channel, error) {
	sealer, opener, err := stream.NewPair(opts.Encryption, sendKey, recvKey, opts.NoncePrefix, opts.Opener)
	if err != nil {
		return nil, fmt.Errorf("derive ciphers: %w", err)
	}
	c, err := Wrap(dev, sealer, opener, opts)
	if err != nil {
		_ = sealer.Close()
		_ = opener.Close()
		return nil, err
	}
	return c, nil
}

// Wrap binds an existing cipher pair to dev.
func Wrap(dev tun.Device, sealer *stream.StreamSealer, opener *stream.StreamOpener, opts Options) (*Channel, error) {
	if dev == nil || sealer == nil || opener == nil {
		return nil, errors.New("encrypted: nil device or cipher")
	}
	if err := bind(dev); err != nil {
		return nil, err
	}
	return &Channel{
		dev:    dev,
		sealer: sealer,
		opener: opener,
		opts:   opts,
	}, nil
}

// ReadPacket reads one plaintext packet from the device and seals it into buf.
// The device read is sized so that the sealed packet always fits.
func (c *Channel) ReadPacket(ctx context.Context, buf []byte) (int, error) {
	if c.closed.Load() {
		return 0, ErrClosed
	}
	if len(buf) <= stream.Overhead {
		return 0, io.ErrShortBuffer
	}
	n, err := c.dev.ReadPacket(ctx, buf[:len(buf)-stream.Overhead])
	if err != nil {
		return 0, err
	}
	sealed, err := c.sealer.SealNext(buf[:0], buf[:n])
	if err != nil {
		return 0, fmt.Errorf("seal: %w", err)
	}
	return len(sealed), nil
}

// WritePacket opens one sealed packet and writes the plaintext to the device.
// Rejected packets leave the channel usable; the error matches
// network.ErrPacketRejected.
func (c *Channel) WritePacket(ctx context.Context, packet []byte) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()

	if c.closed.Load() {
		return ErrClosed
	}
	if cap(c.scratch) < len(packet) {
		mem.ZeroBytes(c.scratch[:cap(c.scratch)])
		c.scratch = make([]byte, 0, len(packet))
	}
	plaintext, err := c.opener.OpenNext(c.scratch[:0], packet)
	if err != nil {
		return fmt.Errorf("open: %w", err)
	}
	if c.opts.ValidateIP {
		if err := ip.Validate(plaintext); err != nil {
			return err
		}
	}
	return c.dev.WritePacket(ctx, plaintext)
}

// Name is the underlying device name.
func (c *Channel) Name() string { return c.dev.Name() }

// Counters returns the next seal and open counters.
func (c *Channel) Counters() (seal, open uint64) {
	return c.sealer.Counter(), c.opener.Counter()
}

// Close closes the device and wipes the cipher state. Pending reads and
// writes return the device's close error.
func (c *Channel) Close() error {
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		c.closeErr = c.dev.Close()
		unbind(c.dev)
		_ = c.sealer.Close()
		_ = c.opener.Close()

		c.wmu.Lock()
		mem.ZeroBytes(c.scratch[:cap(c.scratch)])
		c.scratch = nil
		c.wmu.Unlock()
	})
	return c.closeErr
}
