package stream

import (
	"fmt"
	"sealtun/infrastructure/cryptography/mem"
)

const KeySize = 32

// Key is a fixed-length session secret. Whoever holds the *Key owns it and
// must call Zeroize once the ciphers have been derived.
type Key struct {
	b [KeySize]byte
}

// NewKey copies raw into a new Key. raw itself is left untouched.
func NewKey(raw []byte) (*Key, error) {
	if len(raw) != KeySize {
		return nil, fmt.Errorf("%w: length %d, want %d", ErrInvalidKey, len(raw), KeySize)
	}
	k := &Key{}
	copy(k.b[:], raw)
	return k, nil
}

func (k *Key) Bytes() []byte { return k.b[:] }

func (k *Key) Zeroize() {
	mem.ZeroBytes(k.b[:])
}
