package compress

import (
	"io"

	"github.com/golang/snappy"
)

// SnappyCodec compresses using the Snappy frame format, which chunks and
// checksums the stream so it can be decoded independently of any
// out-of-band size metadata.
type SnappyCodec struct{}

var _ Codec = SnappyCodec{}

func (SnappyCodec) Compress(dst io.Writer, src io.Reader) error {
	w := snappy.NewBufferedWriter(dst)
	if _, err := io.Copy(w, src); err != nil {
		return err
	}

	return w.Close()
}

func (SnappyCodec) Decompress(dst io.Writer, src io.Reader) error {
	r := snappy.NewReader(src)
	_, err := io.Copy(dst, r)

	return err
}
