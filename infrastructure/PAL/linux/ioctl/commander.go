//go:build linux

package ioctl

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

type Commander interface {
	Ioctl(fd uintptr, request uintptr, ifr *IfReq) unix.Errno
}

type LinuxIoctlCommander struct {
}

func NewLinuxIoctlCommander() Commander {
	return &LinuxIoctlCommander{}
}

func (d LinuxIoctlCommander) Ioctl(fd uintptr, request uintptr, ifr *IfReq) unix.Errno {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, fd, request, uintptr(unsafe.Pointer(ifr)))
	return errno
}
