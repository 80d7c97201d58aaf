package storage

import (
	"encoding/json"
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// Shared codecs. EncodeAll and DecodeAll are safe for concurrent use.
var (
	encoder *zstd.Encoder
	decoder *zstd.Decoder
)

func init() {
	var err error
	encoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	if err != nil {
		panic(fmt.Sprintf("zstd encoder: %v", err))
	}
	decoder, err = zstd.NewReader(nil)
	if err != nil {
		panic(fmt.Sprintf("zstd decoder: %v", err))
	}
}

// packJSON marshals v and compresses the result.
func packJSON(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	return pack(b), nil
}

// unpackJSON reverses packJSON into v.
func unpackJSON(blob []byte, v any) error {
	b, err := unpack(blob)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}
	return nil
}

func pack(b []byte) []byte {
	return encoder.EncodeAll(b, make([]byte, 0, len(b)/4))
}

func unpack(blob []byte) ([]byte, error) {
	b, err := decoder.DecodeAll(blob, nil)
	if err != nil {
		return nil, fmt.Errorf("decompress payload: %w", err)
	}
	return b, nil
}
