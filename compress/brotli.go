package compress

import (
	"io"

	"github.com/andybalholm/brotli"
)

// BrotliCodec compresses using Brotli at the configured quality level.
// A Quality of zero or below selects DefaultBrotliQuality, so level 0 itself
// cannot be selected; values above 11 are clamped to 11. Quality only
// affects compression; decompression ignores it, so a BrotliCodec with its
// zero Quality still decodes correctly.
type BrotliCodec struct {
	Quality int
}

var _ Codec = BrotliCodec{}

func (c BrotliCodec) Compress(dst io.Writer, src io.Reader) error {
	quality := c.Quality
	if quality <= 0 {
		quality = DefaultBrotliQuality
	}
	if quality > 11 {
		quality = 11
	}

	w := brotli.NewWriterLevel(dst, quality)
	if _, err := io.Copy(w, src); err != nil {
		return err
	}

	return w.Close()
}

func (BrotliCodec) Decompress(dst io.Writer, src io.Reader) error {
	r := brotli.NewReader(src)
	_, err := io.Copy(dst, r)

	return err
}
