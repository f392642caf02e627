package scan

import (
	"io"
	"os"
	"regexp"

	"github.com/michaelscutari/lsp/internal/entry"
)

const (
	// DefaultWorkers sizes the pool for overlapping blocking syscalls, not CPU.
	DefaultWorkers = 4

	// DefaultThreshold is the candidate count below which entries are
	// resolved inline without a pool.
	DefaultThreshold = 10
)

// Options configures collection behavior.
type Options struct {
	// Workers is the number of pool goroutines per listing.
	Workers int

	// Threshold is the minimum candidate count that triggers the pool.
	Threshold int

	// ShowHidden keeps names starting with a dot.
	ShowHidden bool

	// ShowInode populates inode and link count.
	ShowInode bool

	// ExcludePatterns are regular expressions matched against entry names.
	ExcludePatterns []*regexp.Regexp

	// Verbose enables diagnostic lines on LogWriter.
	Verbose   bool
	LogWriter io.Writer

	// StateFunc, if set, is called on every coordinator state transition.
	StateFunc StateFunc
}

// DefaultOptions returns sensible defaults for collection.
func DefaultOptions() *Options {
	return &Options{
		Workers:   DefaultWorkers,
		Threshold: DefaultThreshold,
		LogWriter: os.Stderr,
	}
}

// WithWorkers sets the number of workers.
func (o *Options) WithWorkers(n int) *Options {
	o.Workers = n
	return o
}

// WithThreshold sets the pool threshold.
func (o *Options) WithThreshold(n int) *Options {
	o.Threshold = n
	return o
}

// WithHidden sets hidden-entry display.
func (o *Options) WithHidden(show bool) *Options {
	o.ShowHidden = show
	return o
}

// WithInode sets inode display.
func (o *Options) WithInode(show bool) *Options {
	o.ShowInode = show
	return o
}

// WithVerbose enables diagnostic logging.
func (o *Options) WithVerbose(v bool) *Options {
	o.Verbose = v
	return o
}

// AddExcludePattern adds a pattern to exclude.
func (o *Options) AddExcludePattern(pattern string) error {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return err
	}
	o.ExcludePatterns = append(o.ExcludePatterns, re)
	return nil
}

// ShouldExclude checks if a name matches any exclude pattern.
func (o *Options) ShouldExclude(name string) bool {
	for _, re := range o.ExcludePatterns {
		if re.MatchString(name) {
			return true
		}
	}
	return false
}

// Keep reports whether a raw directory entry name becomes a candidate.
func (o *Options) Keep(name string) bool {
	if !o.ShowHidden && entry.IsHidden(name) {
		return false
	}
	return !o.ShouldExclude(name)
}
