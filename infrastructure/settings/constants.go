package settings

import "golang.org/x/crypto/chacha20poly1305"

const (
	DefaultEthernetMTU = 1500
	MinimumIPv4MTU     = 576
	// AEADOverhead is the tag appended to every sealed packet. No nonce or
	// sequence number travels on the wire.
	AEADOverhead = chacha20poly1305.Overhead
	// MaxFrameLength bounds one framed packet on stream transports.
	MaxFrameLength = 65535
	// MaxQUICMTU keeps a sealed packet inside one QUIC datagram at the
	// minimum QUIC packet size.
	MaxQUICMTU = 1180
)
