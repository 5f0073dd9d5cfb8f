// Package format holds the wire-level constants shared by the header,
// registry, and compress packages: sizes, the default magic, the current
// format version, and the CompressionAlgorithm enum.
package format

// CompressionAlgorithm identifies which codec was used to compress an
// entry's stored bytes. The zero value is not a valid algorithm; a
// compressed entry always carries exactly one of the named values.
type CompressionAlgorithm uint8

const (
	// CompressionNone is used internally to mean "entry is not compressed".
	// It never appears on disk; COMPRESSED-unset entries don't encode an
	// algorithm at all.
	CompressionNone CompressionAlgorithm = 0x0
	// CompressionLZ4 is the LZ4 frame format (github.com/pierrec/lz4/v4).
	CompressionLZ4 CompressionAlgorithm = 0x1
	// CompressionBrotli is Brotli (github.com/andybalholm/brotli).
	CompressionBrotli CompressionAlgorithm = 0x2
	// CompressionSnappy is the Snappy frame format (github.com/golang/snappy).
	CompressionSnappy CompressionAlgorithm = 0x3
)

func (c CompressionAlgorithm) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionLZ4:
		return "LZ4"
	case CompressionBrotli:
		return "Brotli"
	case CompressionSnappy:
		return "Snappy"
	default:
		return "Unknown"
	}
}

const (
	// DefaultMagic is the 5-byte tag written into fresh archives unless the
	// caller configures a different one.
	DefaultMagic = "VfACH"

	// MagicSize is the length in bytes of the magic field.
	MagicSize = 5

	// Version is the format version this library reads and writes. Readers
	// reject any archive whose header version does not equal this value.
	Version uint16 = 0

	// HeaderSize is the fixed size in bytes of the archive header: magic (5)
	// + flags (4) + version (2) + capacity (2).
	HeaderSize = MagicSize + 4 + 2 + 2

	// MinEntrySize is the size in bytes of a RegistryEntry's fixed prefix,
	// excluding the optional signature and the variable-length id:
	// flags (4) + content version (1) + location (8) + offset (8) + id
	// length (2).
	MinEntrySize = 4 + 1 + 8 + 8 + 2

	// SignatureSize is the size in bytes of a detached Ed25519 signature.
	SignatureSize = 64

	// MaxIDLength is the largest id length representable in a registry
	// entry's 16-bit id-length field.
	MaxIDLength = 1<<16 - 1
)
