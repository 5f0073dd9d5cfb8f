// Package endian provides the byte-order engine used to encode and decode
// the archive's on-disk integers.
//
// The archive wire format is little-endian only (unlike the teacher format
// this was adapted from, which supports per-blob endianness), so this
// package is trimmed to the single engine the header and registry packages
// need. It's kept as a thin named interface over encoding/binary rather
// than calling binary.LittleEndian directly everywhere, so the header and
// registry packages can swap the engine under test without touching every
// call site.
package endian

import "encoding/binary"

// Engine combines ByteOrder and AppendByteOrder from encoding/binary into a
// single interface, satisfied by binary.LittleEndian.
type Engine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// LE is the archive format's byte-order engine.
var LE Engine = binary.LittleEndian
