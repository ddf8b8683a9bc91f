package ip

import (
	"encoding/binary"
	"errors"
	"sealtun/domain/network"
	"testing"
)

func ipv4Packet(payload int) []byte {
	p := make([]byte, 20+payload)
	p[0] = 0x45
	binary.BigEndian.PutUint16(p[2:4], uint16(len(p)))
	p[8] = 64
	p[9] = 17
	copy(p[12:16], []byte{10, 107, 1, 3})
	copy(p[16:20], []byte{10, 107, 1, 1})
	return p
}

func ipv6Packet(payload int) []byte {
	p := make([]byte, 40+payload)
	p[0] = 0x60
	binary.BigEndian.PutUint16(p[4:6], uint16(payload))
	p[6] = 17
	p[7] = 64
	return p
}

func TestValidate(t *testing.T) {
	truncated4 := ipv4Packet(8)
	binary.BigEndian.PutUint16(truncated4[2:4], 200)
	badIHL := ipv4Packet(8)
	badIHL[0] = 0x4f
	truncated6 := ipv6Packet(8)
	binary.BigEndian.PutUint16(truncated6[4:6], 100)

	tests := []struct {
		name    string
		packet  []byte
		wantErr bool
	}{
		{"ipv4", ipv4Packet(8), false},
		{"ipv4 with trailing bytes", append(ipv4Packet(8), 0, 0), false},
		{"ipv6", ipv6Packet(8), false},
		{"empty", nil, true},
		{"unknown version", []byte{0x55, 0, 0, 0}, true},
		{"ipv4 header too short", []byte{0x45, 0, 0, 10}, true},
		{"ipv4 total length beyond packet", truncated4, true},
		{"ipv4 IHL beyond packet", badIHL, true},
		{"ipv6 header too short", []byte{0x60, 0, 0, 0}, true},
		{"ipv6 payload beyond packet", truncated6, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.packet)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				if !errors.Is(err, ErrMalformedPacket) {
					t.Fatalf("err = %v, want ErrMalformedPacket", err)
				}
				if !errors.Is(err, network.ErrPacketRejected) {
					t.Fatal("malformed packets must be per-packet rejections")
				}
			}
		})
	}
}
