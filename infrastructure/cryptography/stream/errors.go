package stream

import (
	"errors"
	"sealtun/domain/network"
)

var (
	// ErrAuthenticationFailed means the packet was tampered with or sealed under
	// another key. It is never retried.
	ErrAuthenticationFailed = network.NewRejection("stream: authentication failed")
	// ErrSequenceMismatch means the packet authenticates, but at a counter other
	// than the expected one.
	ErrSequenceMismatch = network.NewRejection("stream: sequence mismatch")
	// ErrCounterExhausted is fatal: the key must be replaced before any more
	// packets can be sealed or opened.
	ErrCounterExhausted   = errors.New("stream: nonce counter exhausted")
	ErrCipherClosed       = errors.New("stream: cipher closed")
	ErrInvalidKey         = errors.New("stream: invalid key")
	ErrInvalidPrefix      = errors.New("stream: invalid nonce prefix")
	ErrInvalidProbeWindow = errors.New("stream: invalid probe window")
)
