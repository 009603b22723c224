package transform

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidKey indicates an encryption key of the wrong size or encoding.
	ErrInvalidKey = errors.New("transform: invalid key")

	// ErrCorrupt indicates a payload that cannot be inverted.
	ErrCorrupt = errors.New("transform: corrupt payload")
)

// Func transforms a payload.
type Func func(string) (string, error)

// Pair is a transform and its inverse.
type Pair struct {
	Forward Func
	Inverse Func
}

// Enabled reports whether both directions are set.
func (p Pair) Enabled() bool {
	return p.Forward != nil && p.Inverse != nil
}

// Pipeline is the write path compression then encryption, and the read path
// decryption then decompression.
type Pipeline struct {
	Compression Pair
	Encryption  Pair
}

// Encode applies the enabled stages in write order.
func (p Pipeline) Encode(s string) (string, error) {
	var err error
	if p.Compression.Enabled() {
		if s, err = p.Compression.Forward(s); err != nil {
			return "", fmt.Errorf("transform: compress: %w", err)
		}
	}
	if p.Encryption.Enabled() {
		if s, err = p.Encryption.Forward(s); err != nil {
			return "", fmt.Errorf("transform: encrypt: %w", err)
		}
	}
	return s, nil
}

// Decode applies the enabled stages in read order.
func (p Pipeline) Decode(s string) (string, error) {
	var err error
	if p.Encryption.Enabled() {
		if s, err = p.Encryption.Inverse(s); err != nil {
			return "", fmt.Errorf("transform: decrypt: %w", err)
		}
	}
	if p.Compression.Enabled() {
		if s, err = p.Compression.Inverse(s); err != nil {
			return "", fmt.Errorf("transform: decompress: %w", err)
		}
	}
	return s, nil
}

// Stages names the enabled stages in write order, for logs.
func (p Pipeline) Stages() []string {
	var out []string
	if p.Compression.Enabled() {
		out = append(out, "compress")
	}
	if p.Encryption.Enabled() {
		out = append(out, "encrypt")
	}
	return out
}
