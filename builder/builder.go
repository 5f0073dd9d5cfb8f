// Package builder implements Builder, the archive writer: it collects
// leaves, performs the two-pass layout computation, writes the header, and
// streams each leaf through compression, encryption, and signing as it
// emits the data glob and registry to a seekable sink.
package builder

import (
	"bytes"
	"crypto/ed25519"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sync"

	"github.com/sokorototo/vach/compress"
	vcrypto "github.com/sokorototo/vach/crypto"
	"github.com/sokorototo/vach/errs"
	"github.com/sokorototo/vach/flags"
	"github.com/sokorototo/vach/format"
	"github.com/sokorototo/vach/header"
	"github.com/sokorototo/vach/internal/pool"
	"github.com/sokorototo/vach/leaf"
	"github.com/sokorototo/vach/registry"
)

// Builder accumulates leaves and writes them to an archive in a single
// Dump call. A Builder is not safe for concurrent use by multiple
// goroutines calling Add/AddLeaf/Dump at once.
type Builder struct {
	leaves   []leaf.Leaf
	ids      map[string]struct{}
	template leaf.Leaf
}

// New returns an empty Builder with no template configured; leaves added
// via Add start from leaf.FromHandle's defaults.
func New() *Builder {
	return &Builder{
		ids:      make(map[string]struct{}),
		template: leaf.FromHandle(nil),
	}
}

// Template sets the leaf configuration future Add calls start from. It
// does not affect leaves already added.
func (b *Builder) Template(l leaf.Leaf) {
	b.template = l
}

// Add wraps r as a leaf using the builder's template, assigns it id, and
// queues it for writing.
func (b *Builder) Add(r io.Reader, id string) error {
	l := b.template
	l.Handle = r
	l.ID = id

	return b.AddLeaf(l)
}

// AddLeaf queues a fully configured leaf for writing.
func (b *Builder) AddLeaf(l leaf.Leaf) error {
	if len(l.ID) > format.MaxIDLength {
		return fmt.Errorf("%w: id %q has length %d", errs.ErrIdTooLong, preview(l.ID), len(l.ID))
	}

	if l.CallerFlags&uint32(flags.Reserved) != 0 {
		return fmt.Errorf("%w: caller flags 0x%x touch format-reserved bits 0x%x", errs.ErrRestrictedFlagAccess, l.CallerFlags, flags.Reserved)
	}

	if _, exists := b.ids[l.ID]; exists {
		return fmt.Errorf("%w: %q", errs.ErrDuplicateId, l.ID)
	}

	b.ids[l.ID] = struct{}{}
	b.leaves = append(b.leaves, l)

	return nil
}

// AddDir walks path and adds every regular file it finds as a leaf, using
// template for every processing option except id and handle. Leaf ids are
// the file's path relative to path, with forward slashes.
func (b *Builder) AddDir(path string, template leaf.Leaf) error {
	return filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(path, p)
		if err != nil {
			return err
		}

		f, err := os.Open(p)
		if err != nil {
			return err
		}

		l := template
		l.Handle = f
		l.ID = filepath.ToSlash(rel)

		if err := b.AddLeaf(l); err != nil {
			f.Close()
			return err
		}

		return nil
	})
}

func preview(id string) string {
	const max = 32
	if len(id) <= max {
		return id
	}

	return id[:max] + "…"
}

// compressed is the result of running one leaf through the compression
// stage, independent of its final location in the archive.
type compressed struct {
	plain []byte
	f     flags.Flags
	err   error
}

// compressAll runs the compression stage for every leaf concurrently,
// bounded by cfg.workers(). Compression depends only on a leaf's own bytes,
// never on where it lands in the file, so it parallelizes cleanly ahead of
// the strictly-ordered placement and write stage.
func compressAll(leaves []leaf.Leaf, workers int) ([]compressed, error) {
	out := make([]compressed, len(leaves))
	sem := make(chan struct{}, workers)

	var wg sync.WaitGroup
	for i, l := range leaves {
		wg.Add(1)
		sem <- struct{}{}

		go func(i int, l leaf.Leaf) {
			defer wg.Done()
			defer func() { <-sem }()

			out[i] = compressOne(l)
		}(i, l)
	}
	wg.Wait()

	for _, c := range out {
		if c.err != nil {
			return nil, c.err
		}
	}

	return out, nil
}

func compressOne(l leaf.Leaf) compressed {
	original := pool.GetBlobBuffer()
	defer pool.PutBlobBuffer(original)

	if _, err := io.Copy(original, l.Handle); err != nil {
		return compressed{err: fmt.Errorf("%w: reading leaf %q: %v", errs.ErrMalformedArchiveSource, l.ID, err)}
	}
	if closer, ok := l.Handle.(io.Closer); ok {
		closer.Close()
	}

	f := flags.FromBits(l.CallerFlags)

	if l.Mode == leaf.Never {
		plain := make([]byte, original.Len())
		copy(plain, original.Bytes())

		return compressed{plain: plain, f: f}
	}

	mask, err := compress.FlagMask(l.Algorithm)
	if err != nil {
		return compressed{err: err}
	}

	candidate := pool.GetBlobBuffer()
	defer pool.PutBlobBuffer(candidate)

	if err := compress.Compress(l.Algorithm, candidate, bytes.NewReader(original.Bytes())); err != nil {
		return compressed{err: err}
	}

	switch l.Mode {
	case leaf.Always:
		plain := make([]byte, candidate.Len())
		copy(plain, candidate.Bytes())
		f.ForceSet(flags.Compressed, true)
		f.ForceSet(mask, true)

		return compressed{plain: plain, f: f}
	case leaf.Detect:
		if candidate.Len() < original.Len() {
			plain := make([]byte, candidate.Len())
			copy(plain, candidate.Bytes())
			f.ForceSet(flags.Compressed, true)
			f.ForceSet(mask, true)

			return compressed{plain: plain, f: f}
		}

		plain := make([]byte, original.Len())
		copy(plain, original.Bytes())

		return compressed{plain: plain, f: f}
	default:
		plain := make([]byte, original.Len())
		copy(plain, original.Bytes())

		return compressed{plain: plain, f: f}
	}
}

// Dump writes every queued leaf to sink as a complete archive: header,
// registry, then data glob. It returns the total number of bytes written.
func (b *Builder) Dump(sink io.WriteSeeker, cfg Config) (int, error) {
	if len(b.leaves) > math.MaxUint16 {
		return 0, fmt.Errorf("%w: %d leaves exceeds the registry's uint16 capacity field", errs.ErrTooManyLeaves, len(b.leaves))
	}

	keypairConfigured := len(cfg.Keypair) == ed25519.PrivateKeySize

	anySigned := false
	for _, l := range b.leaves {
		if l.DoSign {
			anySigned = true
			break
		}
	}
	if anySigned && !keypairConfigured {
		return 0, fmt.Errorf("%w: signing a leaf requires a configured keypair", errs.ErrNoKeypair)
	}

	hdrFlags := cfg.Flags
	hdrFlags.ForceSet(flags.Signed, anySigned)

	hdr := header.New(cfg.Magic, hdrFlags, uint16(len(b.leaves)))
	if _, err := sink.Seek(0, io.SeekStart); err != nil {
		return 0, err
	}
	if _, err := sink.Write(hdr.Bytes()); err != nil {
		return 0, err
	}
	written := len(hdr.Bytes())

	registrySize := 0
	for _, l := range b.leaves {
		registrySize += format.MinEntrySize + len(l.ID)
		if l.DoSign {
			registrySize += format.SignatureSize
		}
	}
	registryStart := uint64(format.HeaderSize)
	dataOffset := uint64(format.HeaderSize + registrySize)

	var encryptor *vcrypto.Encryptor
	if leavesNeedEncryption(b.leaves) {
		if !keypairConfigured {
			return 0, fmt.Errorf("%w: encryption requires a configured keypair", errs.ErrNoKeypair)
		}

		var magic [format.MagicSize]byte
		copy(magic[:], cfg.Magic[:])

		enc, err := vcrypto.NewEncryptor(cfg.Keypair.Public().(ed25519.PublicKey), magic)
		if err != nil {
			return 0, err
		}
		encryptor = enc
	}

	results, err := compressAll(b.leaves, cfg.workers())
	if err != nil {
		return 0, err
	}

	registryCursor := registryStart

	for i, l := range b.leaves {
		stored := results[i].plain
		f := results[i].f

		location := dataOffset

		if l.DoEncrypt {
			cipher, err := encryptor.Encrypt(l.ID, location, stored)
			if err != nil {
				return 0, err
			}
			stored = cipher
			f.ForceSet(flags.Encrypted, true)
		}

		entry := registry.Entry{
			Flags:          f,
			ContentVersion: l.ContentVersion,
			Location:       location,
			Offset:         uint64(len(stored)),
		}
		dataOffset += uint64(len(stored))

		if _, err := sink.Seek(int64(location), io.SeekStart); err != nil {
			return 0, err
		}
		if _, err := sink.Write(stored); err != nil {
			return 0, err
		}
		written += len(stored)

		if l.DoSign {
			payload := entry.SignedPayload(stored, uint16(len(l.ID)), l.ID)
			sig := vcrypto.Sign(cfg.Keypair, payload)
			entry.Signature = sig
			entry.HasSignature = true
			entry.Flags.ForceSet(flags.Signed, true)
		}

		record := entry.Bytes(uint16(len(l.ID)), entry.HasSignature)
		record = append(record, l.ID...)

		if _, err := sink.Seek(int64(registryCursor), io.SeekStart); err != nil {
			return 0, err
		}
		if _, err := sink.Write(record); err != nil {
			return 0, err
		}
		written += len(record)
		registryCursor += uint64(len(record))
	}

	return written, nil
}

func leavesNeedEncryption(leaves []leaf.Leaf) bool {
	for _, l := range leaves {
		if l.DoEncrypt {
			return true
		}
	}

	return false
}
