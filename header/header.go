// Package header implements the archive's fixed-size 13-byte prelude: the
// magic tag, archive-wide flags, the format version, and the registry
// capacity.
package header

import (
	"fmt"
	"io"

	"github.com/sokorototo/vach/errs"
	"github.com/sokorototo/vach/flags"
	"github.com/sokorototo/vach/format"
	"github.com/sokorototo/vach/internal/endian"
)

// Header is the archive's fixed-size prelude.
//
//	Offset 0..5:  magic
//	Offset 5..9:  flags (u32 LE)
//	Offset 9..11: format version (u16 LE)
//	Offset 11..13: capacity (u16 LE), the number of registry entries
type Header struct {
	Magic    [format.MagicSize]byte
	Flags    flags.Flags
	Version  uint16
	Capacity uint16
}

// Config carries the reader-side settings a Header is validated against.
type Config struct {
	// Magic is the 5-byte tag a valid archive must carry. Defaults to
	// format.DefaultMagic.
	Magic [format.MagicSize]byte
}

// DefaultConfig returns a Config using the format's default magic.
func DefaultConfig() Config {
	var c Config
	copy(c.Magic[:], format.DefaultMagic)
	return c
}

// New builds a Header for a fresh archive carrying capacity entries.
func New(magic [format.MagicSize]byte, f flags.Flags, capacity uint16) Header {
	return Header{
		Magic:    magic,
		Flags:    f,
		Version:  format.Version,
		Capacity: capacity,
	}
}

// FromHandle reads format.HeaderSize bytes from r and parses them into a
// Header. It does not seek; callers position r at the start of the archive
// first.
func FromHandle(r io.Reader) (Header, error) {
	buf := make([]byte, format.HeaderSize)
	if _, err := io.ReadFull(r, buf); err != nil {
		return Header{}, fmt.Errorf("%w: reading header: %v", errs.ErrMalformedArchiveSource, err)
	}

	var h Header
	copy(h.Magic[:], buf[0:5])
	h.Flags = flags.FromBits(endian.LE.Uint32(buf[5:9]))
	h.Version = endian.LE.Uint16(buf[9:11])
	h.Capacity = endian.LE.Uint16(buf[11:13])

	return h, nil
}

// Bytes serializes the Header into its on-disk form.
func (h Header) Bytes() []byte {
	buf := make([]byte, format.HeaderSize)
	copy(buf[0:5], h.Magic[:])
	endian.LE.PutUint32(buf[5:9], h.Flags.Bits())
	endian.LE.PutUint16(buf[9:11], h.Version)
	endian.LE.PutUint16(buf[11:13], h.Capacity)

	return buf
}

// Validate checks a parsed Header against a reader Config: the magic must
// match exactly, and the format version must equal this library's version.
func Validate(cfg Config, h Header) error {
	if h.Magic != cfg.Magic {
		return fmt.Errorf("%w: magic %q does not match configured magic %q",
			errs.ErrMalformedArchiveSource, h.Magic[:], cfg.Magic[:])
	}

	if h.Version != format.Version {
		return fmt.Errorf("%w: found %d", errs.ErrIncompatibleArchiveVersion, h.Version)
	}

	return nil
}
