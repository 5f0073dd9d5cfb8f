// Package crypto implements the archive format's authentication and
// encryption primitives: Ed25519 detached signatures and a
// ChaCha20-Poly1305 Encryptor keyed from the archive's verifying key and
// magic.
package crypto

import (
	"crypto/cipher"
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"

	"github.com/sokorototo/vach/errs"
	"github.com/sokorototo/vach/format"
	"github.com/sokorototo/vach/internal/hash"
	"golang.org/x/crypto/chacha20poly1305"
)

// SignatureSize is the size in bytes of a detached Ed25519 signature.
const SignatureSize = ed25519.SignatureSize

// Sign produces a detached Ed25519 signature over payload.
func Sign(priv ed25519.PrivateKey, payload []byte) [SignatureSize]byte {
	var out [SignatureSize]byte
	copy(out[:], ed25519.Sign(priv, payload))

	return out
}

// Verify reports whether sig is a valid Ed25519 signature over payload
// under pub. It never returns an error: an invalid signature is reported as
// a false result, per the archive format's "authentication is advisory"
// policy (spec: a failed verification degrades to authenticated=false, it
// is not a hard error).
func Verify(pub ed25519.PublicKey, payload []byte, sig [SignatureSize]byte) bool {
	return ed25519.Verify(pub, payload, sig[:])
}

// Encryptor provides authenticated symmetric encryption for entry payloads.
// The cipher key is derived deterministically from the archive's verifying
// key and magic, so the same (key, magic) pair always yields the same
// session key — callers never need to transport a separate symmetric key.
type Encryptor struct {
	aead cipher.AEAD
}

// NewEncryptor derives a ChaCha20-Poly1305 key from verifyingKey and magic
// and returns an Encryptor ready to seal or open entry payloads.
func NewEncryptor(verifyingKey ed25519.PublicKey, magic [format.MagicSize]byte) (*Encryptor, error) {
	h := sha256.New()
	h.Write(verifyingKey)
	h.Write(magic[:])
	key := h.Sum(nil)

	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, fmt.Errorf("%w: deriving cipher: %v", errs.ErrCipher, err)
	}

	return &Encryptor{aead: aead}, nil
}

// Encrypt seals plaintext for the entry identified by (id, location). The
// nonce is derived deterministically from id and location (see
// internal/hash.Nonce) rather than generated at random and stored
// alongside the ciphertext, keeping the stored-byte length equal to
// len(plaintext)+Overhead with no extra nonce prefix.
func (e *Encryptor) Encrypt(id string, location uint64, plaintext []byte) ([]byte, error) {
	nonce := hash.Nonce(e.aead.NonceSize(), id, location)
	return e.aead.Seal(nil, nonce, plaintext, nil), nil
}

// Decrypt opens ciphertext previously produced by Encrypt for the same
// (id, location) pair.
func (e *Encryptor) Decrypt(id string, location uint64, ciphertext []byte) ([]byte, error) {
	nonce := hash.Nonce(e.aead.NonceSize(), id, location)

	plaintext, err := e.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrCipher, err)
	}

	return plaintext, nil
}

// GenerateKeypair creates a fresh Ed25519 keypair.
func GenerateKeypair() (ed25519.PublicKey, ed25519.PrivateKey, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: generating keypair: %v", errs.ErrCipher, err)
	}

	return pub, priv, nil
}

// WriteKeypairFile writes a keypair in the archive's 64-byte keypair file
// format: secret key (32 bytes, the Ed25519 seed) followed by the public
// key (32 bytes). This is exactly the byte layout of a stdlib
// ed25519.PrivateKey, so no reformatting is needed.
func WriteKeypairFile(w io.Writer, priv ed25519.PrivateKey) error {
	if len(priv) != ed25519.PrivateKeySize {
		return fmt.Errorf("%w: private key has unexpected length %d", errs.ErrParse, len(priv))
	}

	_, err := w.Write(priv)
	return err
}

// ReadKeypairFile reads a 64-byte keypair file and returns the private key
// (from which the public key can be recovered via priv.Public()).
func ReadKeypairFile(r io.Reader) (ed25519.PrivateKey, error) {
	buf := make([]byte, ed25519.PrivateKeySize)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("%w: reading keypair file: %v", errs.ErrParse, err)
	}

	return ed25519.PrivateKey(buf), nil
}

// WritePublicKeyFile writes a bare 32-byte public key file.
func WritePublicKeyFile(w io.Writer, pub ed25519.PublicKey) error {
	if len(pub) != ed25519.PublicKeySize {
		return fmt.Errorf("%w: public key has unexpected length %d", errs.ErrParse, len(pub))
	}

	_, err := w.Write(pub)
	return err
}

// ReadPublicKeyFile reads a bare 32-byte public key file.
func ReadPublicKeyFile(r io.Reader) (ed25519.PublicKey, error) {
	buf := make([]byte, ed25519.PublicKeySize)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("%w: reading public key file: %v", errs.ErrParse, err)
	}

	return ed25519.PublicKey(buf), nil
}
