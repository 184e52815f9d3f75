// Package config holds the runtime options of imagefetch and the per-user
// directories it keeps its own files in.
package config

import (
	"time"

	"github.com/pkg/errors"
)

const (
	// DefaultDestination is the directory images are saved into, relative to
	// the working directory.
	DefaultDestination = "Fetched_Images"
	DefaultTimeout     = 30 * time.Second
	DefaultMaxRedirect = 10
	DefaultChunkSize   = 8192
	// DefaultLogRetention is how many debug log files survive CleanupLogs.
	DefaultLogRetention = 5

	DefaultUserAgent = "Mozilla/5.0 (X11; Ubuntu; Linux x86_64; rv:109.0) " +
		"Gecko/20100101 Firefox/109.0"
)

// Options is the complete configuration of one imagefetch process. It is built
// once from flags and handed to every component that needs it.
type Options struct {
	Destination  string
	Timeout      time.Duration
	MaxRedirects int
	ChunkSize    int
	UserAgent    string

	// LockPath is the advisory lock file guarding resolve-and-create.
	// Empty disables locking.
	LockPath string
	LogsDir  string

	LogRetention int
	Verbose      bool
	HTTP3        bool
	Progress     bool
	Clipboard    bool
}

// DefaultOptions returns the options used when no flag overrides them.
func DefaultOptions() *Options {
	return &Options{
		Destination:  DefaultDestination,
		Timeout:      DefaultTimeout,
		MaxRedirects: DefaultMaxRedirect,
		ChunkSize:    DefaultChunkSize,
		UserAgent:    DefaultUserAgent,
		LockPath:     GetLockPath(),
		LogsDir:      GetLogsDir(),
		LogRetention: DefaultLogRetention,
	}
}

// Validate rejects option combinations the fetcher cannot work with.
func (o *Options) Validate() error {
	switch {
	case o.Destination == "":
		return errors.New("destination directory must not be empty")
	case o.Timeout <= 0:
		return errors.Errorf("timeout must be positive, got %s", o.Timeout)
	case o.MaxRedirects < 0:
		return errors.Errorf("max redirects must not be negative, got %d", o.MaxRedirects)
	case o.ChunkSize <= 0:
		return errors.Errorf("chunk size must be positive, got %d", o.ChunkSize)
	}
	return nil
}
