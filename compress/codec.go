// Package compress is a thin facade over the three compression algorithms
// the archive format supports: LZ4 frame, Brotli, and Snappy frame. Builder
// streams a leaf's bytes through Compress; Archive streams stored bytes
// back through Decompress when reconstructing a Resource.
package compress

import (
	"fmt"
	"io"

	"github.com/sokorototo/vach/errs"
	"github.com/sokorototo/vach/flags"
	"github.com/sokorototo/vach/format"
)

// Codec compresses and decompresses a stream under one algorithm.
type Codec interface {
	// Compress reads all of src, compresses it, and writes the result to
	// dst.
	Compress(dst io.Writer, src io.Reader) error
	// Decompress reads all of src, decompresses it, and writes the result
	// to dst.
	Decompress(dst io.Writer, src io.Reader) error
}

// DefaultBrotliQuality is used when a Leaf requests Brotli compression
// without specifying a quality.
const DefaultBrotliQuality = 9

// GetCodec returns the Codec for algo, or ErrParse if algo is not one of
// the three algorithms the format's flag bits can represent.
func GetCodec(algo format.CompressionAlgorithm) (Codec, error) {
	switch algo {
	case format.CompressionLZ4:
		return LZ4Codec{}, nil
	case format.CompressionBrotli:
		return BrotliCodec{Quality: DefaultBrotliQuality}, nil
	case format.CompressionSnappy:
		return SnappyCodec{}, nil
	default:
		return nil, fmt.Errorf("%w: unsupported compression algorithm %v", errs.ErrParse, algo)
	}
}

// Compress compresses src into dst using algo.
func Compress(algo format.CompressionAlgorithm, dst io.Writer, src io.Reader) error {
	codec, err := GetCodec(algo)
	if err != nil {
		return err
	}

	if err := codec.Compress(dst, src); err != nil {
		return fmt.Errorf("%w: %v", errs.ErrCompression, err)
	}

	return nil
}

// Decompress decompresses src into dst using algo.
func Decompress(algo format.CompressionAlgorithm, dst io.Writer, src io.Reader) error {
	codec, err := GetCodec(algo)
	if err != nil {
		return err
	}

	if err := codec.Decompress(dst, src); err != nil {
		return fmt.Errorf("%w: %v", errs.ErrDecompression, err)
	}

	return nil
}

// FlagMask returns the single flag mask bit that corresponds to algo.
func FlagMask(algo format.CompressionAlgorithm) (flags.Mask, error) {
	switch algo {
	case format.CompressionLZ4:
		return flags.LZ4, nil
	case format.CompressionBrotli:
		return flags.Brotli, nil
	case format.CompressionSnappy:
		return flags.Snappy, nil
	default:
		return 0, fmt.Errorf("%w: unsupported compression algorithm %v", errs.ErrParse, algo)
	}
}

// AlgorithmFromFlags inspects which of the three algorithm bits is set and
// returns the corresponding CompressionAlgorithm. Returns ErrParse if zero
// or more than one algorithm bit is set.
func AlgorithmFromFlags(f flags.Flags) (format.CompressionAlgorithm, error) {
	set := 0
	for _, m := range []flags.Mask{flags.LZ4, flags.Brotli, flags.Snappy} {
		if f.Contains(m) {
			set++
		}
	}
	if set > 1 {
		return format.CompressionNone, fmt.Errorf("%w: entry has more than one compression algorithm bit set", errs.ErrParse)
	}

	switch {
	case f.Contains(flags.LZ4):
		return format.CompressionLZ4, nil
	case f.Contains(flags.Brotli):
		return format.CompressionBrotli, nil
	case f.Contains(flags.Snappy):
		return format.CompressionSnappy, nil
	default:
		return format.CompressionNone, fmt.Errorf("%w: entry has no recognizable compression algorithm bit set", errs.ErrParse)
	}
}
