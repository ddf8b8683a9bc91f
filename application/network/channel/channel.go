package channel

import "context"

// Channel moves whole packets. One ReadPacket yields exactly one packet and one
// WritePacket emits exactly one packet; implementations never merge or split.
//
// Both calls must return promptly with ctx.Err() once ctx is cancelled, so a
// pending operation can always be abandoned by its caller.
type Channel interface {
	// ReadPacket copies the next packet into buf and returns its length.
	// io.ErrShortBuffer is returned when the packet does not fit into buf.
	ReadPacket(ctx context.Context, buf []byte) (int, error)
	// WritePacket emits packet as a single unit.
	WritePacket(ctx context.Context, packet []byte) error
}
