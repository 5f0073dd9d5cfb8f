// Package vach implements a content-addressed archive format: a single
// file packing many named byte blobs behind a small header and per-entry
// directory, with optional per-entry compression, authentication, and
// encryption.
//
// This file is the package's convenience facade; the real work lives in
// the builder, archive, leaf, registry, header, flags, compress, and
// crypto subpackages, which remain usable directly for callers who want
// more control than the shortcuts below provide.
package vach

import (
	"crypto/ed25519"

	"github.com/sokorototo/vach/archive"
	"github.com/sokorototo/vach/builder"
	"github.com/sokorototo/vach/crypto"
)

// Open opens an archive from source using default settings: the default
// magic and no public key, so SIGNED entries decode with
// Resource.Authenticated always false.
func Open(source archive.Source) (*archive.Archive, error) {
	return archive.New(source)
}

// OpenWithConfig opens an archive from source, validating against a
// caller-supplied magic and, optionally, verifying/decrypting entries
// against a public key.
func OpenWithConfig(source archive.Source, cfg archive.Config) (*archive.Archive, error) {
	return archive.WithConfig(source, cfg)
}

// NewBuilder returns an empty Builder ready to accept leaves.
func NewBuilder() *builder.Builder {
	return builder.New()
}

// GenerateKeypair creates a fresh Ed25519 keypair suitable for signing and
// encrypting an archive.
func GenerateKeypair() (ed25519.PublicKey, ed25519.PrivateKey, error) {
	return crypto.GenerateKeypair()
}
