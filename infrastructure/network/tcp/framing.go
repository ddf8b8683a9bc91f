package tcp

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"sealtun/domain/network"
)

var (
	ErrZeroLengthFrame = errors.New("zero length frame")
	// ErrFrameTooLarge drops a frame that does not fit the reader's buffer.
	// The frame is drained first, so the stream stays aligned.
	ErrFrameTooLarge = network.NewRejection("frame too large")
)

const prefixLen = 2

// appendFrame appends one u16-BE length-prefixed frame carrying data to dst.
func appendFrame(dst, data []byte) ([]byte, error) {
	if len(data) == 0 {
		return dst, ErrZeroLengthFrame
	}
	if len(data) > math.MaxUint16 {
		return dst, fmt.Errorf("frame too large for u16 prefix: %d > %d", len(data), math.MaxUint16)
	}
	dst = binary.BigEndian.AppendUint16(dst, uint16(len(data)))
	return append(dst, data...), nil
}

// readFrame reads exactly one frame into buf and returns the payload size.
func readFrame(r io.Reader, buf []byte) (int, error) {
	var hdr [prefixLen]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return 0, err
	}
	length := int(binary.BigEndian.Uint16(hdr[:]))
	if length == 0 {
		return 0, ErrZeroLengthFrame
	}
	if length > len(buf) {
		if err := drainN(r, length); err != nil {
			return 0, fmt.Errorf("drain oversized frame: %w", err)
		}
		return 0, fmt.Errorf("%w: %d > %d", ErrFrameTooLarge, length, len(buf))
	}
	if _, err := io.ReadFull(r, buf[:length]); err != nil {
		return 0, fmt.Errorf("read payload: %w", unexpected(err))
	}
	return length, nil
}

// drainN discards exactly n bytes from r.
func drainN(r io.Reader, n int) error {
	_, err := io.CopyN(io.Discard, r, int64(n))
	return unexpected(err)
}

// A stream ending inside a frame is never a clean EOF.
func unexpected(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}
