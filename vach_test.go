package vach

import (
	"bytes"
	"strings"
	"testing"

	"github.com/sokorototo/vach/builder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

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

func TestFacade_BuildOpenFetch(t *testing.T) {
	b := NewBuilder()
	require.NoError(t, b.Add(strings.NewReader("hello facade"), "a"))

	sink := &memSink{}
	_, err := b.Dump(sink, builder.DefaultConfig())
	require.NoError(t, err)

	a, err := Open(bytes.NewReader(sink.buf))
	require.NoError(t, err)

	res, err := a.Fetch("a")
	require.NoError(t, err)
	assert.Equal(t, "hello facade", string(res.Data))
}

func TestFacade_GenerateKeypair(t *testing.T) {
	pub, priv, err := GenerateKeypair()
	require.NoError(t, err)
	assert.NotEmpty(t, pub)
	assert.NotEmpty(t, priv)
}
