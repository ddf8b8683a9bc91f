//go:build linux

package epoll

import (
	"context"
	"errors"
	"io"
	"os"
	"runtime"
	"sync"
	"sync/atomic"

	"sealtun/application/network/tun"

	"golang.org/x/sys/unix"
)

// Device performs TUN reads and writes on a non-blocking fd, parking in
// epoll_wait instead of read(2)/write(2). Each direction has its own epoll
// instance and an eventfd that wakes it on cancellation or Close, so one
// reader and one writer may run concurrently.
type Device struct {
	name string
	fd   int // duplicated and owned by this device

	rd, wr waiter

	// life is held shared by every operation and exclusively by Close, so
	// fds are never closed under a pending epoll_wait.
	life   sync.RWMutex
	closed atomic.Bool
}

type waiter struct {
	mu     sync.Mutex // one operation per direction
	ep     int
	wake   int // eventfd
	events [2]unix.EpollEvent
}

// NewDevice takes ownership of f on success: it closes f before returning.
// On error, ownership remains with the caller.
func NewDevice(f *os.File, name string) (*Device, error) {
	if f == nil {
		return nil, errors.New("nil file")
	}
	dup, err := unix.Dup(int(f.Fd()))
	if err != nil {
		return nil, err
	}
	if err := unix.SetNonblock(dup, true); err != nil {
		_ = unix.Close(dup)
		return nil, err
	}
	if _, err := unix.FcntlInt(uintptr(dup), unix.F_SETFD, unix.FD_CLOEXEC); err != nil {
		_ = unix.Close(dup)
		return nil, err
	}

	d := &Device{name: name, fd: dup}
	if d.rd, err = newWaiter(dup, unix.EPOLLIN); err != nil {
		_ = unix.Close(dup)
		return nil, err
	}
	if d.wr, err = newWaiter(dup, unix.EPOLLOUT); err != nil {
		d.rd.close()
		_ = unix.Close(dup)
		return nil, err
	}

	_ = f.Close()
	runtime.KeepAlive(f)
	return d, nil
}

func newWaiter(fd int, mask uint32) (waiter, error) {
	ep, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return waiter{}, err
	}
	wake, err := unix.Eventfd(0, unix.EFD_NONBLOCK|unix.EFD_CLOEXEC)
	if err != nil {
		_ = unix.Close(ep)
		return waiter{}, err
	}
	w := waiter{ep: ep, wake: wake}
	for _, ev := range []unix.EpollEvent{
		{Events: mask | unix.EPOLLERR | unix.EPOLLHUP, Fd: int32(fd)},
		{Events: unix.EPOLLIN, Fd: int32(wake)},
	} {
		if err := unix.EpollCtl(ep, unix.EPOLL_CTL_ADD, int(ev.Fd), &ev); err != nil {
			w.close()
			return waiter{}, err
		}
	}
	return w, nil
}

func (d *Device) Name() string { return d.name }

// ReadPacket reads one packet. A packet longer than buf is discarded and
// reported as io.ErrShortBuffer.
func (d *Device) ReadPacket(ctx context.Context, buf []byte) (int, error) {
	d.life.RLock()
	defer d.life.RUnlock()
	if d.closed.Load() {
		return 0, tun.ErrClosed
	}
	d.rd.mu.Lock()
	defer d.rd.mu.Unlock()

	// The overflow byte catches packets the caller's buffer would truncate.
	var overflow [1]byte
	iov := [][]byte{buf, overflow[:]}
	for {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		n, err := unix.Readv(d.fd, iov)
		if err == nil {
			if n > len(buf) {
				return 0, io.ErrShortBuffer
			}
			return n, nil
		}
		switch {
		case errors.Is(err, unix.EINTR):
			continue
		case errors.Is(err, unix.EAGAIN):
			if err := d.wait(ctx, &d.rd, unix.EPOLLIN); err != nil {
				return 0, err
			}
		case errors.Is(err, unix.EBADF):
			return 0, tun.ErrClosed
		default:
			return 0, err
		}
	}
}

// WritePacket writes one packet; TUN writes are all-or-nothing.
func (d *Device) WritePacket(ctx context.Context, packet []byte) error {
	d.life.RLock()
	defer d.life.RUnlock()
	if d.closed.Load() {
		return tun.ErrClosed
	}
	d.wr.mu.Lock()
	defer d.wr.mu.Unlock()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		_, err := unix.Write(d.fd, packet)
		if err == nil {
			return nil
		}
		switch {
		case errors.Is(err, unix.EINTR):
			continue
		case errors.Is(err, unix.EAGAIN):
			if err := d.wait(ctx, &d.wr, unix.EPOLLOUT); err != nil {
				return err
			}
		case errors.Is(err, unix.EBADF):
			return tun.ErrClosed
		default:
			return err
		}
	}
}

// Close wakes pending operations, waits for them to return and then releases
// every fd. Later calls return tun.ErrClosed.
func (d *Device) Close() error {
	if !d.closed.CompareAndSwap(false, true) {
		return nil
	}
	d.rd.signal()
	d.wr.signal()

	d.life.Lock()
	defer d.life.Unlock()
	d.rd.close()
	d.wr.close()
	return unix.Close(d.fd)
}

// wait blocks until mask is ready on the device fd, ctx is done or the
// device is closed.
func (d *Device) wait(ctx context.Context, w *waiter, mask uint32) error {
	stop := context.AfterFunc(ctx, func() {
		d.life.RLock()
		defer d.life.RUnlock()
		if !d.closed.Load() {
			w.signal()
		}
	})
	defer stop()

	for {
		n, err := unix.EpollWait(w.ep, w.events[:], -1)
		if errors.Is(err, unix.EINTR) {
			continue
		}
		if err != nil {
			return err
		}
		ready := false
		for _, ev := range w.events[:n] {
			if int(ev.Fd) == w.wake {
				if d.closed.Load() {
					return tun.ErrClosed
				}
				w.drain()
				if err := ctx.Err(); err != nil {
					return err
				}
				continue
			}
			if ev.Events&(unix.EPOLLERR|unix.EPOLLHUP) != 0 {
				return io.EOF
			}
			if ev.Events&mask != 0 {
				ready = true
			}
		}
		if ready {
			return nil
		}
	}
}

func (w *waiter) signal() {
	var one [8]byte
	one[0] = 1 // any non-zero counter wakes the waiter
	_, _ = unix.Write(w.wake, one[:])
}

func (w *waiter) drain() {
	var buf [8]byte
	_, _ = unix.Read(w.wake, buf[:])
}

func (w *waiter) close() {
	_ = unix.Close(w.ep)
	_ = unix.Close(w.wake)
}
