package compress

import (
	"fmt"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// zstdEncoder and zstdDecoder are reused across calls; both are safe for
// concurrent use.
var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic("compress: zstd encoder initialization failed: " + err.Error())
	}
	zstdDecoder, err = zstd.NewReader(nil)
	if err != nil {
		panic("compress: zstd decoder initialization failed: " + err.Error())
	}
}

func zstdCompress(data []byte) []byte {
	return zstdEncoder.EncodeAll(data, nil)
}

func zstdDecompress(compressed []byte, originalSize int) ([]byte, error) {
	out, err := zstdDecoder.DecodeAll(compressed, make([]byte, 0, originalSize))
	if err != nil {
		return nil, fmt.Errorf("zstd decompress: %w", err)
	}
	if len(out) != originalSize {
		return nil, fmt.Errorf("zstd decompress: got %d bytes, expected %d", len(out), originalSize)
	}
	return out, nil
}

func lz4Compress(data []byte) ([]byte, error) {
	bound := lz4.CompressBlockBound(len(data))
	dst := make([]byte, bound)
	written, err := lz4.CompressBlock(data, dst, nil)
	if err != nil {
		return nil, fmt.Errorf("lz4 compress: %w", err)
	}
	if written == 0 {
		// CompressBlock reports incompressible data as zero bytes
		// written; the caller's size comparison will fall back.
		return data, nil
	}
	return dst[:written], nil
}

func lz4Decompress(compressed []byte, originalSize int) ([]byte, error) {
	dst := make([]byte, originalSize)
	read, err := lz4.UncompressBlock(compressed, dst)
	if err != nil {
		return nil, fmt.Errorf("lz4 decompress: %w", err)
	}
	if read != originalSize {
		return nil, fmt.Errorf("lz4 decompress: got %d bytes, expected %d", read, originalSize)
	}
	return dst, nil
}
