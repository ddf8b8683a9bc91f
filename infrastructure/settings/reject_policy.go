package settings

import (
	"encoding/json"
	"errors"
	"strings"
)

var ErrInvalidRejectPolicy = errors.New("invalid reject policy")

// RejectPolicy decides what a forwarding loop does with a packet that fails
// authentication or arrives out of sequence.
type RejectPolicy int

const (
	// DropRejected logs and counts the packet, then keeps forwarding.
	DropRejected RejectPolicy = iota
	// AbortOnRejected ends the session on the first rejected packet.
	AbortOnRejected
)

func (p RejectPolicy) MarshalJSON() ([]byte, error) {
	switch p {
	case DropRejected, AbortOnRejected:
		return json.Marshal(p.String())
	default:
		return nil, ErrInvalidRejectPolicy
	}
}

func (p *RejectPolicy) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch strings.ToLower(s) {
	case "drop":
		*p = DropRejected
	case "abort":
		*p = AbortOnRejected
	default:
		return ErrInvalidRejectPolicy
	}
	return nil
}

func (p RejectPolicy) String() string {
	switch p {
	case DropRejected:
		return "drop"
	case AbortOnRejected:
		return "abort"
	default:
		return ErrInvalidRejectPolicy.Error()
	}
}
