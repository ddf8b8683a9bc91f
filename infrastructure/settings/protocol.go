package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidProtocol = errors.New("invalid protocol")

// Protocol is the transport that carries sealed packets between the peers.
type Protocol int

const (
	UNKNOWN Protocol = iota
	TCP
	UDP
	WS
	QUIC
)

// Connected reports whether the protocol keeps a connection per peer. A
// listening endpoint of such a protocol serves the first peer that connects.
func (p Protocol) Connected() bool {
	switch p {
	case TCP, WS, QUIC:
		return true
	default:
		return false
	}
}

func (p Protocol) MarshalJSON() ([]byte, error) {
	switch p {
	case UNKNOWN, TCP, UDP, WS, QUIC:
		return json.Marshal(p.String())
	default:
		return nil, fmt.Errorf("%w: %d", ErrInvalidProtocol, int(p))
	}
}

func (p *Protocol) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseProtocol(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// ParseProtocol accepts any letter case; an empty string is UNKNOWN.
func ParseProtocol(s string) (Protocol, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "UNKNOWN":
		return UNKNOWN, nil
	case "TCP":
		return TCP, nil
	case "UDP":
		return UDP, nil
	case "WS", "WEBSOCKET":
		return WS, nil
	case "QUIC":
		return QUIC, nil
	default:
		return UNKNOWN, fmt.Errorf("%w: %q", ErrInvalidProtocol, s)
	}
}

func (p Protocol) String() string {
	switch p {
	case UNKNOWN:
		return "UNKNOWN"
	case TCP:
		return "TCP"
	case UDP:
		return "UDP"
	case WS:
		return "WS"
	case QUIC:
		return "QUIC"
	default:
		return ErrInvalidProtocol.Error()
	}
}
