// Package store persists registered OAuth2 client applications and their
// cached token pairs as delimited text files under a single root directory.
//
// The config file lists every client, one record per line. Each client's
// tokens live in their own file named after the client. Every operation is a
// fresh scan of the files; nothing is cached in memory.
//
// The store assumes a single process run by a single user. There is no
// locking: the duplicate check in Register and the rewrite in Delete are
// separate read and write passes, so concurrent invocations can lose updates.
// Secrets are stored in plain text and tokens are only base64 encoded.
package store

import (
	"io/fs"
	"path/filepath"
)

const (
	// DefaultDirName is the storage root created under the user's home.
	DefaultDirName = ".coursera"

	// DefaultConfigFile holds all client registrations.
	DefaultConfigFile = "coaclient.csv"

	// DefaultTokenFileSuffix is appended to a client name to form its token file.
	DefaultTokenFileSuffix = "_aout2.csv"

	// dirPerm is the permission mode for the storage root.
	dirPerm = fs.FileMode(0o700)

	// filePerm is the permission mode for config and token files.
	filePerm = fs.FileMode(0o600)
)

// Options locates the files a store operates on.
type Options struct {
	// Root is the storage directory. It is created on first write.
	Root string

	// ConfigFile is the name of the shared client file inside Root.
	ConfigFile string

	// TokenFileSuffix is appended to the client name for token files.
	TokenFileSuffix string

	// LegacySubstringDelete makes Delete drop every config line that
	// contains the client name anywhere, matching files managed by older
	// tooling. The default removes only records whose name field matches.
	LegacySubstringDelete bool
}

// DefaultOptions returns the standard layout rooted at <home>/.coursera.
func DefaultOptions(home string) Options {
	return Options{
		Root:            filepath.Join(home, DefaultDirName),
		ConfigFile:      DefaultConfigFile,
		TokenFileSuffix: DefaultTokenFileSuffix,
	}
}

func (o Options) withDefaults() Options {
	if o.ConfigFile == "" {
		o.ConfigFile = DefaultConfigFile
	}

	if o.TokenFileSuffix == "" {
		o.TokenFileSuffix = DefaultTokenFileSuffix
	}

	return o
}

// ConfigPath returns the full path of the shared config file.
func (o Options) ConfigPath() string {
	return filepath.Join(o.Root, o.ConfigFile)
}

// TokenPath returns the full path of the token file for a client. The name
// must already be normalized and validated.
func (o Options) TokenPath(name string) string {
	return filepath.Join(o.Root, name+o.TokenFileSuffix)
}
