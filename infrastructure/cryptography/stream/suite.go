package stream

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"
	"sealtun/infrastructure/settings"

	"golang.org/x/crypto/chacha20poly1305"
)

// NewAEAD builds the AEAD selected by enc. The key bytes are copied by the
// underlying implementation, so the caller may zeroize key afterwards.
func NewAEAD(enc settings.Encryption, key *Key) (cipher.AEAD, error) {
	switch enc {
	case settings.ChaCha20Poly1305:
		return chacha20poly1305.New(key.Bytes())
	case settings.XChaCha20Poly1305:
		return chacha20poly1305.NewX(key.Bytes())
	case settings.AES256GCM:
		block, err := aes.NewCipher(key.Bytes())
		if err != nil {
			return nil, err
		}
		return cipher.NewGCM(block)
	default:
		return nil, fmt.Errorf("unsupported encryption %d", enc)
	}
}

// PrefixSize is the nonce prefix length used with enc.
func PrefixSize(enc settings.Encryption) int {
	switch enc {
	case settings.XChaCha20Poly1305:
		return chacha20poly1305.NonceSizeX - counterSize
	default:
		return chacha20poly1305.NonceSize - counterSize
	}
}

// Overhead is the number of bytes sealing adds to a packet. It is the same
// 16-byte tag for every supported encryption.
const Overhead = chacha20poly1305.Overhead
