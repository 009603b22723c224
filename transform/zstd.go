package transform

import (
	"encoding/base64"
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
)

var (
	zstdOnce sync.Once
	zstdEnc  *zstd.Encoder
	zstdDec  *zstd.Decoder
	zstdErr  error
)

// zstd encoders and decoders are safe for concurrent EncodeAll/DecodeAll and
// expensive to create, so one pair is shared.
func zstdCodec() (*zstd.Encoder, *zstd.Decoder, error) {
	zstdOnce.Do(func() {
		zstdEnc, zstdErr = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if zstdErr != nil {
			return
		}
		zstdDec, zstdErr = zstd.NewReader(nil, zstd.WithDecoderConcurrency(0))
	})
	return zstdEnc, zstdDec, zstdErr
}

// Zstd returns a compression pair: zstd frames carried as standard base64.
func Zstd() Pair {
	return Pair{
		Forward: func(s string) (string, error) {
			enc, _, err := zstdCodec()
			if err != nil {
				return "", err
			}
			return base64.StdEncoding.EncodeToString(enc.EncodeAll([]byte(s), nil)), nil
		},
		Inverse: func(s string) (string, error) {
			_, dec, err := zstdCodec()
			if err != nil {
				return "", err
			}
			raw, err := base64.StdEncoding.DecodeString(s)
			if err != nil {
				return "", fmt.Errorf("%w: %v", ErrCorrupt, err)
			}
			out, err := dec.DecodeAll(raw, nil)
			if err != nil {
				return "", fmt.Errorf("%w: %v", ErrCorrupt, err)
			}
			return string(out), nil
		},
	}
}
