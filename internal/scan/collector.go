package scan

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/michaelscutari/lsp/internal/entry"
)

// State is a step of per-listing orchestration.
type State int

const (
	StateIdle State = iota
	StateListing
	StateSequential
	StateParallel
	StateSorting
	StateDone
)

func (s State) String() string {
	switch s {
	case StateListing:
		return "listing"
	case StateSequential:
		return "sequential"
	case StateParallel:
		return "parallel"
	case StateSorting:
		return "sorting"
	case StateDone:
		return "done"
	default:
		return "idle"
	}
}

// StateFunc is called when a listing changes state.
type StateFunc func(path string, state State)

// Listing is the collected result for one directory (or for the file
// operands of one invocation, in which case Path is empty).
type Listing struct {
	Path string

	// Now is the snapshot used for relative ages of every entry.
	Now time.Time

	// Entries are in submission order with failed slots removed.
	Entries []*entry.Entry

	// Candidates is the number of names that survived filtering.
	Candidates int

	// Strategy is StateSequential or StateParallel.
	Strategy State
}

// Sort orders the listing's entries.
func (l *Listing) Sort(opts entry.SortOptions) {
	entry.Sort(l.Entries, opts)
}

// Collector coordinates metadata collection for directory listings.
type Collector struct {
	opts    *Options
	logf    Logf
	resolve func(d *Dir, name string, showInode bool) (*entry.Entry, error)
}

// NewCollector creates a new collector.
func NewCollector(opts *Options) *Collector {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &Collector{
		opts:    opts,
		logf:    newLogf(opts.Verbose, opts.LogWriter),
		resolve: Resolve,
	}
}

// Options returns the collector's options.
func (c *Collector) Options() *Options {
	return c.opts
}

// Collect lists path and resolves metadata for every candidate entry. The
// only error returned is a directory that cannot be opened or read; per-entry
// failures drop the entry.
func (c *Collector) Collect(path string) (*Listing, error) {
	c.setState(path, StateListing)

	d, err := OpenDir(path)
	if err != nil {
		c.setState(path, StateIdle)
		return nil, fmt.Errorf("failed to open directory: %w", err)
	}
	defer d.Close()

	names, err := d.Names()
	if err != nil {
		c.setState(path, StateIdle)
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	candidates := make([]string, 0, len(names))
	for _, name := range names {
		if c.opts.Keep(name) {
			candidates = append(candidates, name)
		}
	}

	listing := &Listing{
		Path:       path,
		Now:        time.Now(),
		Candidates: len(candidates),
		Strategy:   StateSequential,
	}
	results := make([]*entry.Entry, len(candidates))

	if len(candidates) >= c.threshold() {
		listing.Strategy = StateParallel
	}
	c.setState(path, listing.Strategy)
	c.logf("[COLLECT] path=%s names=%d candidates=%d strategy=%s", path, len(names), len(candidates), listing.Strategy)

	if listing.Strategy == StateParallel {
		c.collectParallel(d, candidates, results)
	} else {
		for i, name := range candidates {
			results[i] = c.resolveOne(d, name)
		}
	}

	listing.Entries = compact(results)
	c.setState(path, StateSorting)
	return listing, nil
}

// Finish releases a listing after presentation.
func (c *Collector) Finish(l *Listing) {
	if l == nil {
		return
	}
	l.Entries = nil
	c.setState(l.Path, StateDone)
}

func (c *Collector) collectParallel(d *Dir, candidates []string, results []*entry.Entry) {
	pool, err := NewPool(c.opts.Workers, results, c.jobResolver(), c.logf)
	if err != nil {
		c.logf("[COLLECT] POOL-UNAVAILABLE err=%v, resolving inline", err)
		for i, name := range candidates {
			results[i] = c.resolveOne(d, name)
		}
		return
	}
	defer pool.Destroy()

	for i, name := range candidates {
		job := Job{Dir: d, DirPath: d.Path, Name: name, Slot: i}
		if err := pool.AddTask(job); err != nil {
			c.logf("[COLLECT] ENQUEUE-ERR slot=%d err=%v, resolving inline", i, err)
			results[i] = c.resolveOne(d, name)
		}
	}
	pool.Wait()
}

func (c *Collector) jobResolver() ResolveFunc {
	return func(job Job) (*entry.Entry, error) {
		return c.resolve(job.Dir, job.Name, c.opts.ShowInode)
	}
}

func (c *Collector) resolveOne(d *Dir, name string) *entry.Entry {
	e, err := c.resolve(d, name, c.opts.ShowInode)
	if err != nil {
		c.logf("[COLLECT] RESOLVE-ERR name=%s err=%v", name, err)
		return nil
	}
	return e
}

func (c *Collector) threshold() int {
	if c.opts.Threshold < 1 {
		return 1
	}
	return c.opts.Threshold
}

func (c *Collector) setState(path string, s State) {
	if c.opts.StateFunc != nil {
		c.opts.StateFunc(path, s)
	}
}

// CollectFile resolves a single non-directory operand. The record keeps the
// operand as its name.
func (c *Collector) CollectFile(path string) (*entry.Entry, error) {
	d, err := OpenDir(filepath.Dir(path))
	if err != nil {
		return nil, err
	}
	defer d.Close()

	e, err := c.resolve(d, filepath.Base(path), c.opts.ShowInode)
	if err != nil {
		return nil, err
	}
	e.Name = path
	e.FullPath = path
	return e, nil
}

// CollectPaths lists every directory operand in order and gathers the
// remaining operands into one trailing listing with an empty Path. Operands
// are classified without following symlinks. Errors are returned per path
// and never stop the remaining operands.
func (c *Collector) CollectPaths(paths []string) ([]*Listing, []error) {
	var (
		listings []*Listing
		errs     []error
		files    = &Listing{Now: time.Now(), Strategy: StateSequential}
	)

	for _, p := range paths {
		info, err := os.Lstat(p)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if info.IsDir() {
			l, err := c.Collect(p)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			listings = append(listings, l)
			continue
		}
		e, err := c.CollectFile(p)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		files.Entries = append(files.Entries, e)
		files.Candidates++
	}

	if len(files.Entries) > 0 {
		listings = append(listings, files)
	}
	return listings, errs
}

func compact(results []*entry.Entry) []*entry.Entry {
	out := make([]*entry.Entry, 0, len(results))
	for _, e := range results {
		if e != nil {
			out = append(out, e)
		}
	}
	return out
}
