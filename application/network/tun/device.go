package tun

import (
	"errors"
	"sealtun/application/network/channel"
)

var (
	// ErrPermissionDenied means the process may not create or open a TUN device.
	ErrPermissionDenied = errors.New("tun: permission denied")
	// ErrDeviceUnavailable means the device could not be created or configured.
	ErrDeviceUnavailable = errors.New("tun: device unavailable")
	// ErrClosed is returned by every call made after Close.
	ErrClosed = errors.New("tun: device closed")
)

// Device is a packet-oriented virtual network interface. Reads yield raw IP
// packets in arrival order; writes inject one packet each. Writes may block
// while the kernel applies backpressure.
type Device interface {
	channel.Channel
	// Name is the interface name assigned by the OS.
	Name() string
	Close() error
}
