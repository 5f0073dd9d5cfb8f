package archive

import "github.com/sokorototo/vach/flags"

// Resource is the fully decoded output of fetching one archive entry.
type Resource struct {
	Data           []byte
	Flags          flags.Flags
	ContentVersion uint8

	// Authenticated reports whether the entry's signature verified
	// against the archive's configured public key. It is always false
	// for unsigned entries or when no public key is configured; a failed
	// verification is never a hard error, only a false here.
	Authenticated bool
}
