package archive

import (
	"crypto/ed25519"

	"github.com/sokorototo/vach/format"
	"github.com/sokorototo/vach/internal/options"
)

// Config controls how an Archive validates and decodes a source.
type Config struct {
	// Magic must match the magic embedded in the archive's header.
	// Defaults to format.DefaultMagic.
	Magic [format.MagicSize]byte

	// PublicKey, if set, is used both to verify SIGNED entries and to
	// derive the Encryptor for ENCRYPTED entries.
	PublicKey ed25519.PublicKey
}

// DefaultConfig returns a Config using the format's default magic and no
// public key — archives opened with it can hold unsigned, unencrypted
// entries, plus signed entries (verification is then simply skipped and
// authenticated is reported false).
func DefaultConfig() Config {
	var magic [format.MagicSize]byte
	copy(magic[:], format.DefaultMagic)

	return Config{Magic: magic}
}

// Option configures a Config built with NewConfig.
type Option = options.Option[*Config]

// NewConfig builds a Config from DefaultConfig plus any options, applied
// in order.
func NewConfig(opts ...Option) (Config, error) {
	cfg := DefaultConfig()
	if err := options.Apply(&cfg, opts...); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// WithMagic overrides the magic validated against the archive's header.
func WithMagic(magic [format.MagicSize]byte) Option {
	return options.NoError(func(c *Config) { c.Magic = magic })
}

// WithPublicKey configures signature verification and decryption.
func WithPublicKey(pub ed25519.PublicKey) Option {
	return options.NoError(func(c *Config) { c.PublicKey = pub })
}
