// Package hash provides xxHash64 helpers that derive deterministic values
// from variable-length byte strings, without pulling a KDF into the
// dependency graph for what is just a fast non-cryptographic mixing step.
// The crypto package uses Nonce; ID has no caller elsewhere in the module.
package hash

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// ID computes the xxHash64 of the given string.
func ID(data string) uint64 {
	return xxhash.Sum64String(data)
}

// Nonce derives a deterministic nonce of the requested length from an
// entry's id and location: it hashes id ‖ location into a base value, then
// hashes base+0, base+1, ... and concatenates the 8-byte results, stretching
// xxHash64's output to cover AEAD nonce sizes larger than 8 bytes
// (ChaCha20-Poly1305 uses 12).
//
// Determinism here is what makes Archive.fetch self-contained: the nonce
// used to encrypt an entry can always be recomputed from its id and
// location alone, without storing it alongside the ciphertext.
func Nonce(size int, id string, location uint64) []byte {
	var locBuf [8]byte
	binary.LittleEndian.PutUint64(locBuf[:], location)

	out := make([]byte, 0, size)
	seed := xxhash.New()
	seed.WriteString(id)
	seed.Write(locBuf[:])
	base := seed.Sum64()

	for counter := uint64(0); len(out) < size; counter++ {
		var buf [8]byte
		binary.LittleEndian.PutUint64(buf[:], base+counter)

		h := xxhash.Sum64(buf[:])
		var chunk [8]byte
		binary.LittleEndian.PutUint64(chunk[:], h)
		out = append(out, chunk[:]...)
	}

	return out[:size]
}
