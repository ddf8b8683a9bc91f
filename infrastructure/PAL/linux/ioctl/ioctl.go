//go:build linux

package ioctl

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"sealtun/application/network/tun"

	"golang.org/x/sys/unix"
)

const (
	ifNamSiz = unix.IFNAMSIZ
	// DefaultTunPath is the clone device new TUN interfaces are created from.
	DefaultTunPath = "/dev/net/tun"
)

// IfReq mirrors struct ifreq as TUNSETIFF expects it.
type IfReq struct {
	Name  [ifNamSiz]byte
	Flags uint16
	_     [22]byte
}

type Contract interface {
	CreateTunInterface(nameHint string) (*os.File, string, error)
}

type Wrapper struct {
	commander Commander
	tunPath   string
}

func NewWrapper(commander Commander, tunPath string) Contract {
	return &Wrapper{commander: commander, tunPath: tunPath}
}

// CreateTunInterface creates a TUN interface without packet information
// headers. nameHint may contain "%d" for a kernel-picked index. The returned
// name is the one the kernel assigned.
func (w *Wrapper) CreateTunInterface(nameHint string) (*os.File, string, error) {
	if len(nameHint) >= ifNamSiz {
		return nil, "", fmt.Errorf("%w: interface name %q is longer than %d bytes", tun.ErrDeviceUnavailable, nameHint, ifNamSiz-1)
	}
	f, err := os.OpenFile(w.tunPath, os.O_RDWR, 0)
	if err != nil {
		return nil, "", fmt.Errorf("open %s: %w", w.tunPath, mapErrno(err))
	}

	var req IfReq
	copy(req.Name[:], nameHint)
	req.Flags = unix.IFF_TUN | unix.IFF_NO_PI

	if errno := w.commander.Ioctl(f.Fd(), unix.TUNSETIFF, &req); errno != 0 {
		_ = f.Close()
		return nil, "", fmt.Errorf("TUNSETIFF %q: %w", nameHint, mapErrno(errno))
	}
	return f, ifName(req), nil
}

func ifName(req IfReq) string {
	return strings.TrimRight(string(req.Name[:]), "\x00")
}

func mapErrno(err error) error {
	switch {
	case errors.Is(err, unix.EPERM), errors.Is(err, unix.EACCES):
		return fmt.Errorf("%w: %v", tun.ErrPermissionDenied, err)
	default:
		return fmt.Errorf("%w: %v", tun.ErrDeviceUnavailable, err)
	}
}
