// Package errs defines the sentinel errors returned by the vach archive
// format's reader and writer. Callers should compare against these with
// errors.Is, since most are wrapped with contextual detail via fmt.Errorf.
package errs

import "errors"

var (
	// ErrMalformedArchiveSource indicates a bad magic, a truncated header or
	// registry, or an impossible data offset while parsing an archive.
	ErrMalformedArchiveSource = errors.New("malformed archive source")

	// ErrIncompatibleArchiveVersion indicates the header's format version does
	// not match this library's version.
	ErrIncompatibleArchiveVersion = errors.New("incompatible archive version")

	// ErrMissingResource indicates a fetch for an id that is not in the
	// registry.
	ErrMissingResource = errors.New("missing resource")

	// ErrNoKeypair indicates an operation that requires a configured key (for
	// signing, encryption, or decryption) was attempted without one.
	ErrNoKeypair = errors.New("no keypair configured")

	// ErrRestrictedFlagAccess indicates a caller tried to set a reserved flag
	// bit through the public Flags.Set method.
	ErrRestrictedFlagAccess = errors.New("restricted flag access")

	// ErrIdTooLong indicates a leaf id is longer than math.MaxUint16 bytes,
	// the maximum representable in a registry entry.
	ErrIdTooLong = errors.New("id too long")

	// ErrMissingFeature indicates a required capability (crypto or
	// compression) was not available to satisfy an entry's flags.
	ErrMissingFeature = errors.New("missing feature")

	// ErrCipher indicates an AEAD seal/open failure.
	ErrCipher = errors.New("cipher error")

	// ErrCompression indicates a compressor-side failure.
	ErrCompression = errors.New("compression error")

	// ErrDecompression indicates a decompressor-side failure.
	ErrDecompression = errors.New("decompression error")

	// ErrParse indicates a decoder-level failure, such as invalid signature
	// bytes or an unrecognized compression algorithm bit.
	ErrParse = errors.New("parse error")

	// ErrDuplicateId indicates a Builder was asked to write two leaves
	// sharing the same id.
	ErrDuplicateId = errors.New("duplicate id")

	// ErrTooManyLeaves indicates a Builder holds more leaves than the
	// header's capacity field can represent.
	ErrTooManyLeaves = errors.New("too many leaves")
)
