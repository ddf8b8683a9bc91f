package network

import "errors"

// ErrPacketRejected is matched by every per-packet failure: a single packet
// could not be accepted, but the channel it arrived on is still usable.
var ErrPacketRejected = errors.New("packet rejected")

// Rejection is a per-packet error. errors.Is(r, ErrPacketRejected) is always true.
type Rejection struct {
	reason string
}

func NewRejection(reason string) *Rejection {
	return &Rejection{reason: reason}
}

func (r *Rejection) Error() string { return r.reason }

func (r *Rejection) Is(target error) bool { return target == ErrPacketRejected }

// IsRejected reports whether err is a per-packet failure.
func IsRejected(err error) bool {
	return errors.Is(err, ErrPacketRejected)
}
