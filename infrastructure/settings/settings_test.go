package settings

import (
	"bytes"
	"encoding/json"
	"net/netip"
	"testing"
)

func TestSettings_JSONDecode(t *testing.T) {
	raw := `{
		"TunName": "sealtun%d",
		"InterfaceAddress": "10.107.1.3/24",
		"MTU": 1400,
		"Protocol": "udp",
		"Role": "dial",
		"RemoteAddress": "203.0.113.7:5555",
		"Encryption": "ChaCha20Poly1305",
		"KeyFile": "/etc/sealtun/key",
		"NoncePrefix": "0a0b0c0d",
		"RejectPolicy": "abort",
		"ProbeWindow": -1
	}`
	var s Settings
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if s.InterfaceAddress != netip.MustParsePrefix("10.107.1.3/24") {
		t.Fatalf("InterfaceAddress = %v", s.InterfaceAddress)
	}
	if s.Protocol != UDP || s.Role != Dial || s.RejectPolicy != AbortOnRejected {
		t.Fatalf("enums decoded wrong: %+v", s)
	}
	prefix, err := s.NoncePrefixBytes()
	if err != nil {
		t.Fatalf("NoncePrefixBytes: %v", err)
	}
	if !bytes.Equal(prefix, []byte{0x0a, 0x0b, 0x0c, 0x0d}) {
		t.Fatalf("prefix = %x", prefix)
	}
	if got := s.ResolvedProbeWindow(4); got != 0 {
		t.Fatalf("ResolvedProbeWindow = %d, want 0", got)
	}
}

func TestSettings_NoncePrefixBytes(t *testing.T) {
	if b, err := (Settings{}).NoncePrefixBytes(); err != nil || b != nil {
		t.Fatalf("empty prefix: got %x, %v", b, err)
	}
	if _, err := (Settings{NoncePrefix: "zz"}).NoncePrefixBytes(); err == nil {
		t.Fatal("expected error for non-hex prefix")
	}
}

func TestSettings_ResolvedProbeWindow(t *testing.T) {
	tests := []struct {
		window int
		want   int
	}{
		{0, 4},
		{-3, 0},
		{9, 9},
	}
	for _, tt := range tests {
		if got := (Settings{ProbeWindow: tt.window}).ResolvedProbeWindow(4); got != tt.want {
			t.Errorf("ResolvedProbeWindow(%d) = %d, want %d", tt.window, got, tt.want)
		}
	}
}

func TestBufferSize(t *testing.T) {
	if got := BufferSize(0); got != DefaultEthernetMTU+AEADOverhead {
		t.Fatalf("BufferSize(0) = %d", got)
	}
	if got := BufferSize(1280); got != 1280+AEADOverhead {
		t.Fatalf("BufferSize(1280) = %d", got)
	}
}
