package stream

import (
	"fmt"
	"sealtun/infrastructure/settings"
)

// NewPair derives the sealer and opener of one session. sendKey and recvKey
// may be the same key; nonce separation between the two directions is then
// the caller's responsibility. Both keys are zeroized before returning.
func NewPair(
	enc settings.Encryption,
	sendKey, recvKey *Key,
	prefix []byte,
	opts OpenerOptions,
) (*StreamSealer, *StreamOpener, error) {
	defer sendKey.Zeroize()
	defer recvKey.Zeroize()

	sendAEAD, err := NewAEAD(enc, sendKey)
	if err != nil {
		return nil, nil, fmt.Errorf("new send AEAD: %w", err)
	}
	recvAEAD, err := NewAEAD(enc, recvKey)
	if err != nil {
		return nil, nil, fmt.Errorf("new recv AEAD: %w", err)
	}

	sealer, err := NewSealer(sendAEAD, prefix)
	if err != nil {
		return nil, nil, err
	}
	opener, err := NewOpener(recvAEAD, prefix, opts)
	if err != nil {
		return nil, nil, err
	}
	return sealer, opener, nil
}
