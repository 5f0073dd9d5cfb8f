// Package registry implements RegistryEntry, the per-entry directory record
// that follows the archive header: flags, content version, data location,
// stored length, an optional detached signature, and the entry's id.
package registry

import (
	"fmt"
	"io"

	"github.com/sokorototo/vach/errs"
	"github.com/sokorototo/vach/flags"
	"github.com/sokorototo/vach/format"
	"github.com/sokorototo/vach/internal/endian"
)

// Entry is one archive registry entry.
//
//	4 bytes  flags
//	1 byte   content version
//	8 bytes  location (absolute byte offset of the data in the file)
//	8 bytes  offset (length in bytes of the stored, possibly transformed, data)
//	2 bytes  id length
//	64 bytes detached signature, present iff Flags.Signed
//	N bytes  UTF-8 id, not null-terminated
type Entry struct {
	Flags          flags.Flags
	ContentVersion uint8
	Location       uint64
	Offset         uint64
	Signature      [64]byte
	HasSignature   bool
}

// Empty returns a zero-value Entry.
func Empty() Entry {
	return Entry{}
}

// FromHandle reads one registry entry (and its id) from r. If the entry is
// marked SIGNED, the signature bytes are always consumed — even when the
// caller has no use for them yet — so that parsing the entries that follow
// stays aligned on the stream.
func FromHandle(r io.Reader) (Entry, string, error) {
	prefix := make([]byte, format.MinEntrySize)
	if _, err := io.ReadFull(r, prefix); err != nil {
		return Entry{}, "", fmt.Errorf("%w: reading registry entry: %v", errs.ErrMalformedArchiveSource, err)
	}

	e := Entry{
		Flags:          flags.FromBits(endian.LE.Uint32(prefix[0:4])),
		ContentVersion: prefix[4],
		Location:       endian.LE.Uint64(prefix[5:13]),
		Offset:         endian.LE.Uint64(prefix[13:21]),
	}
	idLength := endian.LE.Uint16(prefix[21:23])

	if e.Flags.Contains(flags.Signed) {
		sig := make([]byte, format.SignatureSize)
		if _, err := io.ReadFull(r, sig); err != nil {
			return Entry{}, "", fmt.Errorf("%w: reading signature: %v", errs.ErrMalformedArchiveSource, err)
		}
		copy(e.Signature[:], sig)
		e.HasSignature = true
	}

	idBytes := make([]byte, idLength)
	if _, err := io.ReadFull(r, idBytes); err != nil {
		return Entry{}, "", fmt.Errorf("%w: reading entry id: %v", errs.ErrMalformedArchiveSource, err)
	}

	return e, string(idBytes), nil
}

// Bytes serializes the entry's canonical record for the given id length.
// When includeSignature is false, the SIGNED bit is cleared and the
// signature field is omitted regardless of e.HasSignature — this is the
// canonical form signed over (spec: "entry_record_bytes(signed=false)").
func (e Entry) Bytes(idLen uint16, includeSignature bool) []byte {
	size := format.MinEntrySize
	f := e.Flags
	if includeSignature && e.HasSignature {
		size += format.SignatureSize
	} else {
		f.ForceSet(flags.Signed, false)
	}

	buf := make([]byte, size)
	endian.LE.PutUint32(buf[0:4], f.Bits())
	buf[4] = e.ContentVersion
	endian.LE.PutUint64(buf[5:13], e.Location)
	endian.LE.PutUint64(buf[13:21], e.Offset)
	endian.LE.PutUint16(buf[21:23], idLen)

	if includeSignature && e.HasSignature {
		copy(buf[format.MinEntrySize:], e.Signature[:])
	}

	return buf
}

// SignedPayload returns the canonical bytes a signature is computed over:
// stored ‖ entry_record_bytes(signed=false) ‖ id, binding the signature to
// the payload, the entry's directory position, and its id.
func (e Entry) SignedPayload(stored []byte, idLen uint16, id string) []byte {
	record := e.Bytes(idLen, false)
	record = append(record, id...)

	out := make([]byte, 0, len(stored)+len(record))
	out = append(out, stored...)
	out = append(out, record...)

	return out
}

func (e Entry) String() string {
	return fmt.Sprintf("[RegistryEntry] location: %d, length: %d, content_version: %d, flags: 0x%x",
		e.Location, e.Offset, e.ContentVersion, e.Flags.Bits())
}
