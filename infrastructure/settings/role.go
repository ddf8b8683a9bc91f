package settings

import (
	"encoding/json"
	"errors"
	"strings"
)

var ErrInvalidRole = errors.New("invalid role")

// Role says which side opens the transport. The listening side learns its
// peer from the first packet when no remote address is configured.
type Role int

const (
	UnknownRole Role = iota
	Dial
	Listen
)

func (r Role) MarshalJSON() ([]byte, error) {
	switch r {
	case Dial, Listen:
		return json.Marshal(r.String())
	default:
		return nil, ErrInvalidRole
	}
}

func (r *Role) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch strings.ToLower(s) {
	case "dial":
		*r = Dial
	case "listen":
		*r = Listen
	default:
		return ErrInvalidRole
	}
	return nil
}

func (r Role) String() string {
	switch r {
	case Dial:
		return "dial"
	case Listen:
		return "listen"
	default:
		return "unknown"
	}
}
