package ip

import (
	"encoding/binary"
	"fmt"
	"sealtun/domain/network"

	"golang.org/x/net/ipv4"
	"golang.org/x/net/ipv6"
)

// ErrMalformedPacket rejects plaintext that is not a well-formed IP packet.
var ErrMalformedPacket = network.NewRejection("malformed IP packet")

// Validate checks that packet is a structurally sound IPv4 or IPv6 packet,
// as a TUN device expects to receive it.
func Validate(packet []byte) error {
	if len(packet) == 0 {
		return fmt.Errorf("%w: empty packet", ErrMalformedPacket)
	}
	ver, err := FromByte(packet[0] >> 4)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedPacket, err)
	}

	switch ver {
	case V4:
		h, err := ipv4.ParseHeader(packet)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrMalformedPacket, err)
		}
		// ParseHeader reads TotalLen in host order on some platforms; TUN
		// packets always carry it in network order.
		total := int(binary.BigEndian.Uint16(packet[2:4]))
		if total < h.Len || total > len(packet) {
			return fmt.Errorf("%w: IPv4 total length %d, header %d, packet %d", ErrMalformedPacket, total, h.Len, len(packet))
		}
	case V6:
		h, err := ipv6.ParseHeader(packet)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrMalformedPacket, err)
		}
		if ipv6.HeaderLen+h.PayloadLen > len(packet) {
			return fmt.Errorf("%w: IPv6 payload length %d, packet %d", ErrMalformedPacket, h.PayloadLen, len(packet))
		}
	}
	return nil
}
