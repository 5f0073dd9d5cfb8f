// Package archive implements Archive, the archive reader: it parses the
// header and registry into an id-indexed directory, then on demand loads
// an entry's raw bytes and runs them through the verify→decrypt→decompress
// pipeline to produce a Resource.
package archive

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"github.com/sokorototo/vach/compress"
	vcrypto "github.com/sokorototo/vach/crypto"
	"github.com/sokorototo/vach/errs"
	"github.com/sokorototo/vach/flags"
	"github.com/sokorototo/vach/format"
	"github.com/sokorototo/vach/header"
	"github.com/sokorototo/vach/registry"
)

// Source is the seekable handle an Archive reads from.
type Source interface {
	io.Reader
	io.Seeker
}

// Archive wraps a seekable source and exposes its entries by id. The
// source is shared under a mutex: Fetch's critical section is strictly the
// seek+read of one entry's raw bytes, so many goroutines can run the
// decrypt/verify/decompress pipeline concurrently while only ever
// serializing on that short read.
type Archive struct {
	mu     sync.Mutex
	source Source

	header  header.Header
	config  Config
	entries map[string]registry.Entry

	encryptor *vcrypto.Encryptor
}

// New opens an Archive over source using DefaultConfig.
func New(source Source) (*Archive, error) {
	return WithConfig(source, DefaultConfig())
}

// WithConfig opens an Archive over source, validating its header against
// cfg and ingesting its full registry into an id→entry map.
func WithConfig(source Source, cfg Config) (*Archive, error) {
	if _, err := source.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	hdr, err := header.FromHandle(source)
	if err != nil {
		return nil, err
	}

	if err := header.Validate(header.Config{Magic: cfg.Magic}, hdr); err != nil {
		return nil, err
	}

	entries := make(map[string]registry.Entry, hdr.Capacity)
	for i := uint16(0); i < hdr.Capacity; i++ {
		entry, id, err := registry.FromHandle(source)
		if err != nil {
			return nil, err
		}

		if _, exists := entries[id]; exists {
			return nil, fmt.Errorf("%w: %q", errs.ErrDuplicateId, id)
		}
		entries[id] = entry
	}

	a := &Archive{
		source:  source,
		header:  hdr,
		config:  cfg,
		entries: entries,
	}

	if len(cfg.PublicKey) > 0 {
		var magic [format.MagicSize]byte
		copy(magic[:], cfg.Magic[:])

		enc, err := vcrypto.NewEncryptor(cfg.PublicKey, magic)
		if err != nil {
			return nil, err
		}
		a.encryptor = enc
	}

	return a, nil
}

// Entries returns a snapshot of the id→entry directory. Mutating the
// returned map does not affect the Archive.
func (a *Archive) Entries() map[string]registry.Entry {
	out := make(map[string]registry.Entry, len(a.entries))
	for id, e := range a.entries {
		out[id] = e
	}

	return out
}

// Flags returns the archive-wide header flags.
func (a *Archive) Flags() flags.Flags {
	return a.header.Flags
}

// FetchEntry returns the registry metadata for id without reading its
// data.
func (a *Archive) FetchEntry(id string) (registry.Entry, bool) {
	e, ok := a.entries[id]
	return e, ok
}

// IntoInner returns the underlying source, relinquishing the Archive's use
// of it. The Archive should not be used again afterward.
func (a *Archive) IntoInner() Source {
	return a.source
}

func (a *Archive) String() string {
	return fmt.Sprintf("[Archive] entries: %d, flags: 0x%x", len(a.entries), a.header.Flags.Bits())
}

// Fetch loads and decodes the entry identified by id. The source is locked
// only for the seek+read of the raw bytes; decryption, verification, and
// decompression all run after the lock is released.
func (a *Archive) Fetch(id string) (Resource, error) {
	entry, ok := a.entries[id]
	if !ok {
		return Resource{}, fmt.Errorf("%w: %q", errs.ErrMissingResource, id)
	}

	raw, err := a.readLocked(entry)
	if err != nil {
		return Resource{}, err
	}

	return process(a.config, a.encryptor, entry, id, raw)
}

// FetchMut is identical to Fetch but skips the source mutex, relying on
// the caller holding exclusive access to the Archive (e.g. via a Go
// pointer receiver with no concurrent callers).
func (a *Archive) FetchMut(id string) (Resource, error) {
	entry, ok := a.entries[id]
	if !ok {
		return Resource{}, fmt.Errorf("%w: %q", errs.ErrMissingResource, id)
	}

	raw, err := a.readUnlocked(entry)
	if err != nil {
		return Resource{}, err
	}

	return process(a.config, a.encryptor, entry, id, raw)
}

func (a *Archive) readLocked(entry registry.Entry) ([]byte, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.readUnlocked(entry)
}

func (a *Archive) readUnlocked(entry registry.Entry) ([]byte, error) {
	size, err := a.source.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, fmt.Errorf("%w: seeking to end: %v", errs.ErrMalformedArchiveSource, err)
	}
	if entry.Location > uint64(size) || entry.Offset > uint64(size)-entry.Location {
		return nil, fmt.Errorf("%w: entry claims %d bytes at offset %d, beyond the %d-byte source",
			errs.ErrMalformedArchiveSource, entry.Offset, entry.Location, size)
	}

	if _, err := a.source.Seek(int64(entry.Location), io.SeekStart); err != nil {
		return nil, fmt.Errorf("%w: seeking to entry: %v", errs.ErrMalformedArchiveSource, err)
	}

	raw := make([]byte, entry.Offset)
	if _, err := io.ReadFull(a.source, raw); err != nil {
		return nil, fmt.Errorf("%w: reading entry data: %v", errs.ErrMalformedArchiveSource, err)
	}

	return raw, nil
}

// process runs the verify→decrypt→decompress pipeline described for
// Archive.fetch: signature verification happens first (and is advisory —
// a failure degrades to authenticated=false rather than erroring),
// decryption second, decompression last.
func process(cfg Config, encryptor *vcrypto.Encryptor, entry registry.Entry, id string, raw []byte) (Resource, error) {
	authenticated := false

	if len(cfg.PublicKey) > 0 && entry.Flags.Contains(flags.Signed) && entry.HasSignature {
		payload := entry.SignedPayload(raw, uint16(len(id)), id)
		authenticated = vcrypto.Verify(cfg.PublicKey, payload, entry.Signature)
	}

	data := raw

	if entry.Flags.Contains(flags.Encrypted) {
		if encryptor == nil {
			return Resource{}, fmt.Errorf("%w: entry %q is encrypted", errs.ErrNoKeypair, id)
		}

		plain, err := encryptor.Decrypt(id, entry.Location, data)
		if err != nil {
			return Resource{}, err
		}
		data = plain
	}

	if entry.Flags.Contains(flags.Compressed) {
		algo, err := compress.AlgorithmFromFlags(entry.Flags)
		if err != nil {
			return Resource{}, err
		}

		var out bytes.Buffer
		if err := compress.Decompress(algo, &out, bytes.NewReader(data)); err != nil {
			return Resource{}, err
		}
		data = out.Bytes()
	}

	return Resource{
		Data:           data,
		Flags:          entry.Flags,
		ContentVersion: entry.ContentVersion,
		Authenticated:  authenticated,
	}, nil
}
