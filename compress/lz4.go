package compress

import (
	"io"

	"github.com/pierrec/lz4/v4"
)

// LZ4Codec compresses using the LZ4 frame format, which is self-describing
// (unlike the block mode the teacher used for fixed-size time-series
// payloads) and therefore safe to decode without separately tracking the
// original size — entries in this format are fetched independently, long
// after they were written, by readers that only have the stored bytes.
type LZ4Codec struct{}

var _ Codec = LZ4Codec{}

func (LZ4Codec) Compress(dst io.Writer, src io.Reader) error {
	w := lz4.NewWriter(dst)
	if _, err := io.Copy(w, src); err != nil {
		return err
	}

	return w.Close()
}

func (LZ4Codec) Decompress(dst io.Writer, src io.Reader) error {
	r := lz4.NewReader(src)
	_, err := io.Copy(dst, r)

	return err
}
