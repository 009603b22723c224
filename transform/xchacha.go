package transform

import (
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/chacha20poly1305"
)

// KeySize is the XChaCha20-Poly1305 key size in bytes.
const KeySize = chacha20poly1305.KeySize

// XChaCha20 returns an encryption pair sealing payloads with
// XChaCha20-Poly1305. Output is base64(nonce || ciphertext).
func XChaCha20(key []byte) (Pair, error) {
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return Pair{}, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	return Pair{
		Forward: func(s string) (string, error) { return seal(aead, s) },
		Inverse: func(s string) (string, error) { return open(aead, s) },
	}, nil
}

func seal(aead cipher.AEAD, s string) (string, error) {
	buf := make([]byte, aead.NonceSize(), aead.NonceSize()+len(s)+aead.Overhead())
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	buf = aead.Seal(buf, buf, []byte(s), nil)
	return base64.StdEncoding.EncodeToString(buf), nil
}

func open(aead cipher.AEAD, s string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if len(raw) < aead.NonceSize()+aead.Overhead() {
		return "", fmt.Errorf("%w: payload too short", ErrCorrupt)
	}
	nonce, sealed := raw[:aead.NonceSize()], raw[aead.NonceSize():]
	plain, err := aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return string(plain), nil
}

// ParseKey decodes a key given as standard or URL-safe base64, or as hex.
func ParseKey(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	for _, enc := range []*base64.Encoding{base64.StdEncoding, base64.URLEncoding, base64.RawStdEncoding, base64.RawURLEncoding} {
		if b, err := enc.DecodeString(s); err == nil && len(b) == KeySize {
			return b, nil
		}
	}
	if b, err := hex.DecodeString(s); err == nil && len(b) == KeySize {
		return b, nil
	}
	return nil, fmt.Errorf("%w: want %d bytes as base64 or hex", ErrInvalidKey, KeySize)
}
