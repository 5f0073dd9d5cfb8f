// Package flags implements the archive format's 32-bit flag bitset.
//
// The six lowest bits of the bitset (0x01 through 0x20) are reserved for the
// format itself (compression, encryption, signing markers); every other bit
// is free for callers to stash their own per-entry or archive-wide metadata. Writes to
// reserved bits through Set are rejected; Builder internals use ForceSet to
// commit the bits it computes while writing.
package flags

import "github.com/sokorototo/vach/errs"

// Mask identifies one or more bits in a Flags value.
type Mask uint32

// Reserved format bits, per the archive format's wire specification.
const (
	Compressed Mask = 0x0001
	LZ4        Mask = 0x0002
	Brotli     Mask = 0x0004
	Snappy     Mask = 0x0008
	Signed     Mask = 0x0010
	Encrypted  Mask = 0x0020

	// Reserved is the union of every bit the format claims for itself.
	// Everything outside of this mask is free for callers.
	Reserved = Compressed | LZ4 | Brotli | Snappy | Signed | Encrypted

	// Algorithm is the union of the three compression-algorithm bits. At
	// most one of these is ever set at a time.
	Algorithm = LZ4 | Brotli | Snappy
)

// Flags is a 32-bit, little-endian-on-disk bitset carrying both
// format-reserved bits and caller-defined bits.
type Flags struct {
	bits uint32
}

// Empty returns a Flags value with no bits set.
func Empty() Flags {
	return Flags{}
}

// FromBits constructs a Flags value directly from a raw bit pattern. Used
// when parsing bytes off the wire and when turning a leaf's caller flags
// into an entry's flags. No bit is checked: reserved bits are accepted
// as-is.
func FromBits(bits uint32) Flags {
	return Flags{bits: bits}
}

// Bits returns the raw 32-bit representation.
func (f Flags) Bits() uint32 {
	return f.bits
}

// Contains reports whether every bit in mask is set.
func (f Flags) Contains(mask Mask) bool {
	return f.bits&uint32(mask) == uint32(mask)
}

// Intersects reports whether any bit in mask is set.
func (f Flags) Intersects(mask Mask) bool {
	return f.bits&uint32(mask) != 0
}

// Set sets or clears the bits in mask, failing with ErrRestrictedFlagAccess
// if mask touches any format-reserved bit. Use ForceSet to write reserved
// bits from within the format's own writer code.
func (f *Flags) Set(mask Mask, on bool) error {
	if mask&Reserved != 0 {
		return errs.ErrRestrictedFlagAccess
	}

	f.ForceSet(mask, on)

	return nil
}

// ForceSet sets or clears the bits in mask unconditionally. Internal to the
// writer, which must be able to set reserved bits (COMPRESSED, SIGNED, ...)
// as it commits each leaf.
func (f *Flags) ForceSet(mask Mask, on bool) {
	if on {
		f.bits |= uint32(mask)
	} else {
		f.bits &^= uint32(mask)
	}
}
