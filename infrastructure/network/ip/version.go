package ip

import "fmt"

// Version is the value of the high nibble of the first header byte.
type Version byte

const (
	Unknown Version = 0
	V4      Version = 4
	V6      Version = 6
)

func FromByte(b byte) (Version, error) {
	switch Version(b) {
	case V4, V6:
		return Version(b), nil
	default:
		return Unknown, fmt.Errorf("invalid IP version: %d", b)
	}
}
