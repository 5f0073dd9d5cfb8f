package builder

import "io"

// memSink is a minimal in-memory io.WriteSeeker used by tests to avoid
// touching the filesystem.
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
	case io.SeekStart:
		base = 0
	case io.SeekCurrent:
		base = m.pos
	case io.SeekEnd:
		base = int64(len(m.buf))
	}

	m.pos = base + offset

	return m.pos, nil
}

func (m *memSink) Bytes() []byte {
	return m.buf
}
