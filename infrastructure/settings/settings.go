package settings

import (
	"encoding/hex"
	"fmt"
	"net/netip"
	"strings"
)

// Settings describes one tunnel endpoint: its TUN device, the transport that
// carries ciphertext to the peer and the cipher discipline on top of it.
type Settings struct {
	// TunName is a name hint for the device; "%d" lets the kernel pick the index.
	TunName          string        `json:"TunName"`
	InterfaceAddress netip.Prefix  `json:"InterfaceAddress"`
	MTU              int           `json:"MTU"`
	Protocol         Protocol      `json:"Protocol"`
	Role             Role          `json:"Role"`
	LocalAddress     string        `json:"LocalAddress,omitempty"`
	RemoteAddress    string        `json:"RemoteAddress,omitempty"`
	WSPath           string        `json:"WSPath,omitempty"`
	DialTimeoutMs    DialTimeoutMs `json:"DialTimeoutMs"`
	Encryption       Encryption    `json:"Encryption"`
	KeyFile          string        `json:"KeyFile"`
	// NoncePrefix is hex; empty means all zeros. Both peers must agree on it.
	NoncePrefix string `json:"NoncePrefix,omitempty"`
	// DirectionalKeys derives distinct send/recv keys from the shared key so
	// the two directions never share a nonce space.
	DirectionalKeys bool         `json:"DirectionalKeys"`
	RejectPolicy    RejectPolicy `json:"RejectPolicy"`
	// ProbeWindow: zero selects the default, negative disables probing.
	ProbeWindow int  `json:"ProbeWindow,omitempty"`
	SkipAhead   bool `json:"SkipAhead,omitempty"`
	ValidateIP  bool `json:"ValidateIP,omitempty"`
}

// NoncePrefixBytes decodes NoncePrefix. A nil result means the all-zero prefix.
func (s Settings) NoncePrefixBytes() ([]byte, error) {
	p := strings.TrimSpace(s.NoncePrefix)
	if p == "" {
		return nil, nil
	}
	b, err := hex.DecodeString(p)
	if err != nil {
		return nil, fmt.Errorf("invalid NoncePrefix: %w", err)
	}
	return b, nil
}

// ResolvedProbeWindow maps ProbeWindow to the value handed to the opener.
func (s Settings) ResolvedProbeWindow(def int) int {
	switch {
	case s.ProbeWindow < 0:
		return 0
	case s.ProbeWindow == 0:
		return def
	default:
		return s.ProbeWindow
	}
}
