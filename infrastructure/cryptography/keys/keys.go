package keys

import (
	"bytes"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"sealtun/infrastructure/cryptography/mem"
	"sealtun/infrastructure/cryptography/stream"
	"sealtun/infrastructure/settings"

	"golang.org/x/crypto/hkdf"
)

var ErrMalformedKey = errors.New("malformed key")

var (
	infoDialToListen = []byte("sealtun v1 dial->listen")
	infoListenToDial = []byte("sealtun v1 listen->dial")
)

// Generate returns a fresh random key.
func Generate() (*stream.Key, error) {
	raw := make([]byte, stream.KeySize)
	defer mem.ZeroBytes(raw)
	if _, err := io.ReadFull(rand.Reader, raw); err != nil {
		return nil, err
	}
	return stream.NewKey(raw)
}

// Parse decodes a key written as hex or base64. Surrounding whitespace is ignored.
func Parse(text []byte) (*stream.Key, error) {
	text = bytes.TrimSpace(text)

	raw := make([]byte, len(text)) // no encoding decodes to more bytes than its input
	defer mem.ZeroBytes(raw)

	if n, err := hex.Decode(raw, text); err == nil && n == stream.KeySize {
		return stream.NewKey(raw[:n])
	}
	for _, enc := range []*base64.Encoding{base64.StdEncoding, base64.RawStdEncoding, base64.URLEncoding, base64.RawURLEncoding} {
		if n, err := enc.Decode(raw, text); err == nil && n == stream.KeySize {
			return stream.NewKey(raw[:n])
		}
	}
	return nil, fmt.Errorf("%w: want %d bytes as hex or base64", ErrMalformedKey, stream.KeySize)
}

// LoadFile reads and parses a key file. The file contents are wiped from memory
// once parsed.
func LoadFile(path string) (*stream.Key, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read key file: %w", err)
	}
	defer mem.ZeroBytes(data)

	key, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("key file %s: %w", path, err)
	}
	return key, nil
}

// WriteFile stores key as hex, readable by the owner only.
func WriteFile(path string, key *stream.Key) error {
	encoded := make([]byte, hex.EncodedLen(stream.KeySize)+1)
	defer mem.ZeroBytes(encoded)
	hex.Encode(encoded, key.Bytes())
	encoded[len(encoded)-1] = '\n'

	return os.WriteFile(path, encoded, 0o600)
}

// Directional derives one key per direction from a shared key, so that both
// peers seal under different keys even though their counters start at zero.
// The dialing side sends with the dial->listen key; the listening side with
// the listen->dial key. master is not modified.
func Directional(master *stream.Key, role settings.Role) (send, recv *stream.Key, err error) {
	dialToListen, err := derive(master, infoDialToListen)
	if err != nil {
		return nil, nil, err
	}
	listenToDial, err := derive(master, infoListenToDial)
	if err != nil {
		dialToListen.Zeroize()
		return nil, nil, err
	}

	switch role {
	case settings.Dial:
		return dialToListen, listenToDial, nil
	case settings.Listen:
		return listenToDial, dialToListen, nil
	default:
		dialToListen.Zeroize()
		listenToDial.Zeroize()
		return nil, nil, settings.ErrInvalidRole
	}
}

func derive(master *stream.Key, info []byte) (*stream.Key, error) {
	out := make([]byte, stream.KeySize)
	defer mem.ZeroBytes(out)
	if _, err := io.ReadFull(hkdf.New(sha256.New, master.Bytes(), nil, info), out); err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}
	return stream.NewKey(out)
}
