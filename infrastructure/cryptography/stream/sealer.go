package stream

import (
	"crypto/cipher"
	"sync"
)

// Sealer encrypts the next packet of an outgoing stream.
type Sealer interface {
	// SealNext appends the ciphertext of plaintext to dst and advances the
	// counter. dst may be plaintext[:0] for in-place sealing.
	SealNext(dst, plaintext []byte) ([]byte, error)
}

// StreamSealer is the egress half of a session. Calls are serialized, so one
// instance may be shared by several producers.
type StreamSealer struct {
	mu     sync.Mutex
	aead   cipher.AEAD
	nonce  *Nonce
	closed bool
}

func NewSealer(aead cipher.AEAD, prefix []byte) (*StreamSealer, error) {
	nonce, err := NewNonce(aead.NonceSize(), prefix)
	if err != nil {
		return nil, err
	}
	return &StreamSealer{aead: aead, nonce: nonce}, nil
}

func (s *StreamSealer) SealNext(dst, plaintext []byte) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrCipherClosed
	}
	if s.nonce.exhausted() {
		return nil, ErrCounterExhausted
	}

	out := s.aead.Seal(dst, s.nonce.at(s.nonce.counter), plaintext, nil)
	s.nonce.counter++
	return out, nil
}

// Counter is the counter the next SealNext will use.
func (s *StreamSealer) Counter() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nonce.Counter()
}

// Close wipes the nonce state. Later calls fail with ErrCipherClosed.
func (s *StreamSealer) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.nonce.Zeroize()
		s.closed = true
	}
	return nil
}
