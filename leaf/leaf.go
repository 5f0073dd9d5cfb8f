// Package leaf implements Leaf, the writer-side description of one archive
// entry before it is serialized: a readable byte source plus the
// processing options the Builder applies to it.
package leaf

import (
	"io"

	"github.com/sokorototo/vach/format"
)

// CompressMode selects how a Builder treats a leaf's bytes during the
// compression stage of the write pipeline.
type CompressMode uint8

const (
	// Never skips compression entirely; stored bytes equal the source bytes.
	Never CompressMode = iota
	// Always compresses unconditionally with the leaf's configured algorithm.
	Always
	// Detect compresses and keeps the result only if it is strictly smaller
	// than the original; ties and expansions fall back to the original
	// bytes, to avoid adding per-entry overhead for no gain.
	Detect
)

// Leaf describes one entry to be written: its source, id, and the
// transformations the Builder should apply. Leaf is consumed by the
// Builder during dump and should not be reused afterward.
type Leaf struct {
	Handle io.Reader

	ID             string
	ContentVersion uint8
	CallerFlags    uint32

	Mode      CompressMode
	Algorithm format.CompressionAlgorithm

	DoEncrypt bool
	DoSign    bool
}

// FromHandle wraps any readable source as a Leaf with default options:
// CompressMode Never, algorithm LZ4, no encryption, no signing, content
// version 0.
func FromHandle(r io.Reader) Leaf {
	return Leaf{
		Handle:    r,
		Algorithm: format.CompressionLZ4,
		Mode:      Never,
	}
}

// WithID sets the leaf's id.
func (l Leaf) WithID(id string) Leaf {
	l.ID = id
	return l
}

// WithVersion sets the leaf's content version.
func (l Leaf) WithVersion(v uint8) Leaf {
	l.ContentVersion = v
	return l
}

// WithFlags sets the leaf's caller-defined flag bits. These are merged with
// the format-owned bits the Builder sets as it commits the entry. bits must
// not touch any format-reserved bit (flags.Reserved); Builder.AddLeaf
// rejects a leaf that does with errs.ErrRestrictedFlagAccess, since the
// Builder alone owns those bits based on the other Leaf options.
func (l Leaf) WithFlags(bits uint32) Leaf {
	l.CallerFlags = bits
	return l
}

// Compress sets the compression mode.
func (l Leaf) Compress(mode CompressMode) Leaf {
	l.Mode = mode
	return l
}

// CompressionAlgo sets the compression algorithm used when Mode is not
// Never.
func (l Leaf) CompressionAlgo(algo format.CompressionAlgorithm) Leaf {
	l.Algorithm = algo
	return l
}

// Encrypt toggles whether the Builder encrypts this leaf's stored bytes.
func (l Leaf) Encrypt(on bool) Leaf {
	l.DoEncrypt = on
	return l
}

// Sign toggles whether the Builder signs this leaf's entry.
func (l Leaf) Sign(on bool) Leaf {
	l.DoSign = on
	return l
}

// Template copies all configuration from other except ID and Handle,
// leaving this leaf's source and id untouched while adopting the other's
// processing options.
func (l Leaf) Template(other Leaf) Leaf {
	l.ContentVersion = other.ContentVersion
	l.CallerFlags = other.CallerFlags
	l.Mode = other.Mode
	l.Algorithm = other.Algorithm
	l.DoEncrypt = other.DoEncrypt
	l.DoSign = other.DoSign

	return l
}
