package stream

import (
	"encoding/binary"
	"fmt"
	"math"
	"sealtun/infrastructure/cryptography/mem"
)

const counterSize = 8

// Nonce derives per-packet nonces as prefix || big-endian counter.
// It is owned by exactly one Sealer or Opener, which serializes access.
type Nonce struct {
	counter uint64
	buf     []byte // prefix in buf[:len-8], counter written into the tail
}

// NewNonce builds a nonce of size bytes. A nil prefix means all zeros;
// otherwise the prefix must fill everything before the counter.
func NewNonce(size int, prefix []byte) (*Nonce, error) {
	if size <= counterSize {
		return nil, fmt.Errorf("%w: nonce size %d leaves no room for a counter", ErrInvalidPrefix, size)
	}
	if prefix != nil && len(prefix) != size-counterSize {
		return nil, fmt.Errorf("%w: length %d, want %d", ErrInvalidPrefix, len(prefix), size-counterSize)
	}
	n := &Nonce{buf: make([]byte, size)}
	copy(n.buf, prefix)
	return n, nil
}

func (n *Nonce) Counter() uint64 { return n.counter }

// exhausted reports whether the counter reached the last value. That value is
// never used, so advancing past it can not wrap.
func (n *Nonce) exhausted() bool {
	return n.counter == math.MaxUint64
}

// at encodes the nonce for counter c into the shared buffer.
func (n *Nonce) at(c uint64) []byte {
	binary.BigEndian.PutUint64(n.buf[len(n.buf)-counterSize:], c)
	return n.buf
}

func (n *Nonce) Zeroize() {
	mem.ZeroBytes(n.buf)
	n.counter = 0
}
