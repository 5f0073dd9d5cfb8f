package archive

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/sokorototo/vach/builder"
	"github.com/sokorototo/vach/crypto"
	"github.com/sokorototo/vach/errs"
	"github.com/sokorototo/vach/flags"
	"github.com/sokorototo/vach/format"
	"github.com/sokorototo/vach/leaf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memSink is a minimal in-memory io.WriteSeeker, mirroring the one used in
// the builder package's own tests.
type memSink struct {
	buf []byte
	pos int64
}

func (m *memSink) Write(p []byte) (int, error) {
	end := m.pos + int64(len(p))
	if end > int64(len(m.buf)) {
		grown := make([]byte, end)
		copy(grown, m.buf)
		m.buf = grown
	}

	copy(m.buf[m.pos:end], p)
	m.pos = end

	return len(p), nil
}

func (m *memSink) Seek(offset int64, whence int) (int64, error) {
	var base int64
	switch whence {
	case 0:
		base = 0
	case 1:
		base = m.pos
	case 2:
		base = int64(len(m.buf))
	}

	m.pos = base + offset

	return m.pos, nil
}

func buildArchive(t *testing.T, fn func(b *builder.Builder), cfg builder.Config) []byte {
	t.Helper()

	b := builder.New()
	fn(b)

	sink := &memSink{}
	_, err := b.Dump(sink, cfg)
	require.NoError(t, err)

	return sink.buf
}

// S1 — unsigned round trip.
func TestArchive_S1_UnsignedRoundTrip(t *testing.T) {
	data := buildArchive(t, func(b *builder.Builder) {
		require.NoError(t, b.Add(strings.NewReader("Hello, Cassandra!"), "greeting"))
		require.NoError(t, b.AddLeaf(leaf.FromHandle(bytes.NewReader(bytes.Repeat([]byte{0xAA}, 4096))).
			WithID("poem").
			Compress(leaf.Always).
			CompressionAlgo(format.CompressionLZ4)))
	}, builder.DefaultConfig())

	a, err := New(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Len(t, a.Entries(), 2)

	greeting, err := a.Fetch("greeting")
	require.NoError(t, err)
	assert.Equal(t, "Hello, Cassandra!", string(greeting.Data))
	assert.False(t, greeting.Authenticated)

	poem, err := a.Fetch("poem")
	require.NoError(t, err)
	assert.Equal(t, bytes.Repeat([]byte{0xAA}, 4096), poem.Data)
	assert.False(t, poem.Authenticated)
}

// S2 — three algorithms.
func TestArchive_S2_ThreeAlgorithms(t *testing.T) {
	payload := bytes.Repeat([]byte{0x12}, 4096)

	data := buildArchive(t, func(b *builder.Builder) {
		for _, algo := range []format.CompressionAlgorithm{
			format.CompressionLZ4, format.CompressionBrotli, format.CompressionSnappy,
		} {
			l := leaf.FromHandle(bytes.NewReader(payload)).
				WithID(algo.String()).
				Compress(leaf.Always).
				CompressionAlgo(algo)
			require.NoError(t, b.AddLeaf(l))
		}
	}, builder.DefaultConfig())

	a, err := New(bytes.NewReader(data))
	require.NoError(t, err)

	offsets := map[uint64]bool{}
	for _, algo := range []format.CompressionAlgorithm{
		format.CompressionLZ4, format.CompressionBrotli, format.CompressionSnappy,
	} {
		entry, ok := a.FetchEntry(algo.String())
		require.True(t, ok)
		assert.Less(t, entry.Offset, uint64(len(payload)))
		assert.False(t, offsets[entry.Offset], "stored offsets should be pairwise distinct")
		offsets[entry.Offset] = true

		res, err := a.Fetch(algo.String())
		require.NoError(t, err)
		assert.Equal(t, payload, res.Data)
	}
}

// S3 — signed archive.
func TestArchive_S3_SignedArchive(t *testing.T) {
	pub, priv, err := crypto.GenerateKeypair()
	require.NoError(t, err)

	cfg := builder.DefaultConfig()
	cfg.Keypair = priv

	data := buildArchive(t, func(b *builder.Builder) {
		require.NoError(t, b.AddLeaf(leaf.FromHandle(strings.NewReader("Don't forget…")).WithID("signed").Sign(true)))
		require.NoError(t, b.Add(strings.NewReader("plain"), "not_signed"))
	}, cfg)

	rcfg := DefaultConfig()
	rcfg.PublicKey = pub

	ar, err := WithConfig(bytes.NewReader(data), rcfg)
	require.NoError(t, err)

	signed, err := ar.Fetch("signed")
	require.NoError(t, err)
	assert.True(t, signed.Authenticated)
	assert.True(t, signed.Flags.Contains(flags.Signed))

	notSigned, err := ar.Fetch("not_signed")
	require.NoError(t, err)
	assert.False(t, notSigned.Authenticated)
	assert.False(t, notSigned.Flags.Contains(flags.Signed))
}

// S4 — encrypted archive.
func TestArchive_S4_EncryptedArchive(t *testing.T) {
	pub, priv, err := crypto.GenerateKeypair()
	require.NoError(t, err)

	cfg := builder.DefaultConfig()
	cfg.Keypair = priv

	data := buildArchive(t, func(b *builder.Builder) {
		l := leaf.FromHandle(strings.NewReader("Snitches get stitches, iOS sucks")).
			WithID("stitches.snitches").
			Encrypt(true).
			Sign(true).
			Compress(leaf.Always).
			CompressionAlgo(format.CompressionBrotli)
		require.NoError(t, b.AddLeaf(l))
	}, cfg)

	rcfg := DefaultConfig()
	rcfg.PublicKey = pub
	a, err := WithConfig(bytes.NewReader(data), rcfg)
	require.NoError(t, err)

	res, err := a.Fetch("stitches.snitches")
	require.NoError(t, err)
	assert.Equal(t, "Snitches get stitches, iOS sucks", string(res.Data))
	assert.True(t, res.Flags.Contains(flags.Encrypted))
	assert.True(t, res.Authenticated)
}

// S5 — custom bitflags.
func TestArchive_S5_CustomBitflags(t *testing.T) {
	const custom = 0x0800 | 0x0400 | 0x0080 | 0x0040

	data := buildArchive(t, func(b *builder.Builder) {
		l := leaf.FromHandle(strings.NewReader("x")).WithID("custom").WithFlags(custom)
		require.NoError(t, b.AddLeaf(l))
	}, builder.DefaultConfig())

	a, err := New(bytes.NewReader(data))
	require.NoError(t, err)

	res, err := a.Fetch("custom")
	require.NoError(t, err)
	assert.Equal(t, uint32(custom), res.Flags.Bits()&custom)
}

// S6 — parallel fetch.
func TestArchive_S6_ParallelFetch(t *testing.T) {
	const n = 120

	data := buildArchive(t, func(b *builder.Builder) {
		for i := 0; i < n; i++ {
			id := "ID " + strconv.Itoa(i)
			require.NoError(t, b.Add(bytes.NewReader(bytes.Repeat([]byte{69}, 8)), id))
		}
	}, builder.DefaultConfig())

	a, err := New(bytes.NewReader(data))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			id := "ID " + strconv.Itoa(i)
			res, err := a.Fetch(id)
			assert.NoError(t, err)
			assert.Equal(t, bytes.Repeat([]byte{69}, 8), res.Data)
		}(i)
	}

	wg.Add(1)
	go func() {
		defer wg.Done()

		_, err := a.Fetch("ERRORS")
		assert.ErrorIs(t, err, errs.ErrMissingResource)
	}()

	wg.Wait()
}

func TestArchive_Flags_ReflectsHeader(t *testing.T) {
	pub, priv, err := crypto.GenerateKeypair()
	require.NoError(t, err)

	cfg := builder.DefaultConfig()
	cfg.Keypair = priv

	data := buildArchive(t, func(b *builder.Builder) {
		require.NoError(t, b.AddLeaf(leaf.FromHandle(strings.NewReader("x")).WithID("a").Sign(true)))
	}, cfg)

	rcfg := DefaultConfig()
	rcfg.PublicKey = pub
	a, err := WithConfig(bytes.NewReader(data), rcfg)
	require.NoError(t, err)

	assert.True(t, a.Flags().Contains(flags.Signed))
	assert.Equal(t, fmt.Sprintf("[Archive] entries: 1, flags: 0x%x", a.Flags().Bits()), a.String())
}

// A corrupted registry entry claiming more stored bytes than the source
// actually holds must fail cleanly, not drive an oversized allocation.
func TestArchive_RejectsEntryOffsetBeyondSource(t *testing.T) {
	data := buildArchive(t, func(b *builder.Builder) {
		require.NoError(t, b.Add(strings.NewReader("x"), "a"))
	}, builder.DefaultConfig())

	binary.LittleEndian.PutUint64(data[format.HeaderSize+13:format.HeaderSize+21], math.MaxUint64/2)

	a, err := New(bytes.NewReader(data))
	require.NoError(t, err)

	_, err = a.Fetch("a")
	assert.ErrorIs(t, err, errs.ErrMalformedArchiveSource)
}
