package builder

import (
	"crypto/ed25519"
	"runtime"

	"github.com/sokorototo/vach/flags"
	"github.com/sokorototo/vach/format"
	"github.com/sokorototo/vach/internal/options"
)

// Config controls how Dump lays out an archive.
type Config struct {
	// Magic is the 5-byte tag written into the header. Defaults to
	// format.DefaultMagic.
	Magic [format.MagicSize]byte

	// Flags are the archive-wide caller flags written into the header, in
	// addition to the format-owned bits the Builder itself manages (SIGNED
	// is forced on automatically whenever at least one leaf signs).
	Flags flags.Flags

	// Keypair signs leaves whose Sign option is enabled and derives the
	// Encryptor for leaves whose Encrypt option is enabled. Required if
	// any queued leaf uses either option.
	Keypair ed25519.PrivateKey

	// NumThreads bounds how many leaves are compressed concurrently during
	// the per-leaf compression stage. Encryption, signing, and writing then
	// run sequentially in leaf-insertion order, so this only parallelizes
	// compression, never I/O ordering. Zero or
	// negative defaults to runtime.GOMAXPROCS(0).
	NumThreads int
}

// DefaultConfig returns a Config with the default magic, no archive flags,
// no keypair, and one worker per available CPU.
func DefaultConfig() Config {
	var magic [format.MagicSize]byte
	copy(magic[:], format.DefaultMagic)

	return Config{
		Magic:      magic,
		Flags:      flags.Empty(),
		NumThreads: runtime.GOMAXPROCS(0),
	}
}

func (c Config) workers() int {
	if c.NumThreads > 0 {
		return c.NumThreads
	}

	return runtime.GOMAXPROCS(0)
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

// WithMagic overrides the header magic.
func WithMagic(magic [format.MagicSize]byte) Option {
	return options.NoError(func(c *Config) { c.Magic = magic })
}

// WithArchiveFlags sets the archive-wide caller flags.
func WithArchiveFlags(f flags.Flags) Option {
	return options.NoError(func(c *Config) { c.Flags = f })
}

// WithKeypair configures the signing/encryption keypair.
func WithKeypair(priv ed25519.PrivateKey) Option {
	return options.NoError(func(c *Config) { c.Keypair = priv })
}

// WithNumThreads bounds per-leaf compression concurrency.
func WithNumThreads(n int) Option {
	return options.NoError(func(c *Config) { c.NumThreads = n })
}
