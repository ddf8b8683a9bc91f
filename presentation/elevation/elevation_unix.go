//go:build !windows

package elevation

import "os"

// IsElevated reports whether the process runs as root. On Linux CAP_NET_ADMIN
// alone is enough to create a device, so callers treat false as a hint only.
func IsElevated() bool {
	return os.Geteuid() == 0
}

func Hint() string {
	return "run as root (sudo), or on Linux grant CAP_NET_ADMIN to the binary"
}
