package endian

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLE_RoundTrip(t *testing.T) {
	b := make([]byte, 8)
	LE.PutUint64(b, 0x0102030405060708)
	require.Equal(t, byte(0x08), b[0], "little endian puts LSB first")
	require.Equal(t, uint64(0x0102030405060708), LE.Uint64(b))
}
