package stream

import (
	"crypto/cipher"
	"fmt"
	"math"
	"sync"
)

// DefaultProbeWindow is how many counters on each side of the expected one are
// tried before a failed packet is classified.
const DefaultProbeWindow = 4

// MaxProbeWindow caps the AEAD opens a single forged packet can cost.
const MaxProbeWindow = 64

// Opener decrypts the next packet of an incoming stream.
type Opener interface {
	// OpenNext appends the plaintext of ciphertext to dst. dst must not overlap
	// ciphertext: a failed attempt may scribble over dst's spare capacity.
	OpenNext(dst, ciphertext []byte) ([]byte, error)
}

type OpenerOptions struct {
	// ProbeWindow bounds the neighbour counters tried after a failure to tell
	// ErrSequenceMismatch from ErrAuthenticationFailed. Zero disables probing
	// and every failure is reported as ErrAuthenticationFailed.
	ProbeWindow int
	// SkipAhead accepts a packet that authenticates at a later counter inside
	// the probe window and moves the counter past it. Packets from earlier
	// counters are still rejected, so nothing is ever accepted twice.
	SkipAhead bool
}

// StreamOpener is the ingress half of a session. By default it is strictly
// in-order: only the packet at the expected counter is accepted.
type StreamOpener struct {
	mu     sync.Mutex
	aead   cipher.AEAD
	nonce  *Nonce
	opts   OpenerOptions
	closed bool
}

func NewOpener(aead cipher.AEAD, prefix []byte, opts OpenerOptions) (*StreamOpener, error) {
	nonce, err := NewNonce(aead.NonceSize(), prefix)
	if err != nil {
		return nil, err
	}
	if opts.ProbeWindow > MaxProbeWindow {
		return nil, fmt.Errorf("%w: %d exceeds %d", ErrInvalidProbeWindow, opts.ProbeWindow, MaxProbeWindow)
	}
	if opts.ProbeWindow < 0 {
		opts.ProbeWindow = 0
	}
	return &StreamOpener{aead: aead, nonce: nonce, opts: opts}, nil
}

func (o *StreamOpener) OpenNext(dst, ciphertext []byte) ([]byte, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return nil, ErrCipherClosed
	}
	if o.nonce.exhausted() {
		return nil, ErrCounterExhausted
	}
	if len(ciphertext) < o.aead.Overhead() {
		return nil, fmt.Errorf("%w: packet of %d bytes is shorter than the tag", ErrAuthenticationFailed, len(ciphertext))
	}

	expected := o.nonce.counter
	if plaintext, err := o.aead.Open(dst, o.nonce.at(expected), ciphertext, nil); err == nil {
		o.nonce.counter++
		return plaintext, nil
	}

	actual, plaintext, found := o.probe(dst, ciphertext, expected)
	if !found {
		return nil, ErrAuthenticationFailed
	}
	if o.opts.SkipAhead && actual > expected {
		o.nonce.counter = actual + 1
		return plaintext, nil
	}
	return nil, fmt.Errorf("%w: expected counter %d, packet sealed at %d", ErrSequenceMismatch, expected, actual)
}

// probe looks for the counter ciphertext was sealed at, nearest first and
// later counters before earlier ones.
func (o *StreamOpener) probe(dst, ciphertext []byte, expected uint64) (uint64, []byte, bool) {
	for k := uint64(1); k <= uint64(o.opts.ProbeWindow); k++ {
		if expected < math.MaxUint64-k {
			c := expected + k
			if plaintext, err := o.aead.Open(dst, o.nonce.at(c), ciphertext, nil); err == nil {
				return c, plaintext, true
			}
		}
		if expected >= k {
			c := expected - k
			if plaintext, err := o.aead.Open(dst, o.nonce.at(c), ciphertext, nil); err == nil {
				return c, plaintext, true
			}
		}
	}
	return 0, nil, false
}

// Counter is the counter the next accepted packet must carry.
func (o *StreamOpener) Counter() uint64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.nonce.Counter()
}

// Close wipes the nonce state. Later calls fail with ErrCipherClosed.
func (o *StreamOpener) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.closed {
		o.nonce.Zeroize()
		o.closed = true
	}
	return nil
}
