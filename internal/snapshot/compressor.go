package snapshot

import (
	"fmt"
	"scoutd/internal/snapshot/interfaces"

	"github.com/klauspost/compress/zstd"
)

// snapshotCodec compresses whole snapshot files in one shot. Encoder and
// decoder are safe for concurrent EncodeAll/DecodeAll calls.
type snapshotCodec struct {
	enc *zstd.Encoder
	dec *zstd.Decoder
}

func NewZstdCompressor() (interfaces.CompressorInterface, error) {
	enc, err := zstd.NewWriter(nil,
		zstd.WithEncoderLevel(zstd.SpeedBetterCompression),
		zstd.WithEncoderCRC(true),
	)
	if err != nil {
		return nil, fmt.Errorf("zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(0))
	if err != nil {
		enc.Close()
		return nil, fmt.Errorf("zstd decoder: %w", err)
	}
	return &snapshotCodec{enc: enc, dec: dec}, nil
}

func (c *snapshotCodec) Compress(raw []byte) ([]byte, error) {
	return c.enc.EncodeAll(raw, nil), nil
}

func (c *snapshotCodec) Decompress(packed []byte) ([]byte, error) {
	raw, err := c.dec.DecodeAll(packed, nil)
	if err != nil {
		return nil, fmt.Errorf("corrupt snapshot data: %w", err)
	}
	return raw, nil
}
