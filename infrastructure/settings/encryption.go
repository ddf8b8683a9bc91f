package settings

import (
	"encoding/json"
	"errors"
	"strings"
)

var ErrInvalidEncryption = errors.New("invalid encryption")

// Encryption specifies the AEAD used for the packet stream
type Encryption int

const (
	ChaCha20Poly1305 Encryption = iota
	XChaCha20Poly1305
	AES256GCM
)

func (e Encryption) MarshalJSON() ([]byte, error) {
	switch e {
	case ChaCha20Poly1305, XChaCha20Poly1305, AES256GCM:
		return json.Marshal(e.String())
	default:
		return nil, ErrInvalidEncryption
	}
}

func (e *Encryption) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch strings.ToUpper(s) {
	case "CHACHA20POLY1305":
		*e = ChaCha20Poly1305
	case "XCHACHA20POLY1305":
		*e = XChaCha20Poly1305
	case "AES256GCM":
		*e = AES256GCM
	default:
		return ErrInvalidEncryption
	}
	return nil
}

func (e Encryption) String() string {
	switch e {
	case ChaCha20Poly1305:
		return "ChaCha20Poly1305"
	case XChaCha20Poly1305:
		return "XChaCha20Poly1305"
	case AES256GCM:
		return "AES256GCM"
	default:
		return ErrInvalidEncryption.Error()
	}
}
