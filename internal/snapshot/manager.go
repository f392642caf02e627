package snapshot

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"github.com/michaelscutari/lsp/internal/db"
	"github.com/michaelscutari/lsp/internal/pathutil"
	"github.com/michaelscutari/lsp/internal/scan"

	_ "modernc.org/sqlite"
)

const (
	filePrefix = "lsp-"
	fileSuffix = ".db"
	latestName = "latest.db"
	lockName   = ".lsp.lock"
)

// ProgressFunc is called periodically with current export progress.
type ProgressFunc func(p db.Progress)

// StageFunc is called when the export stage changes.
type StageFunc func(stage string)

// Manager handles the export lifecycle including locking and retention.
type Manager struct {
	outputDir    string
	retention    int
	maxErrors    int
	lockFile     *os.File
	progressFunc ProgressFunc
	stageFunc    StageFunc
	debug        bool
}

// NewManager creates a new snapshot manager. A retention of zero keeps
// every snapshot.
func NewManager(outputDir string, retention int) *Manager {
	return &Manager{
		outputDir: outputDir,
		retention: retention,
	}
}

// SetProgressFunc sets a callback for progress updates during export.
func (m *Manager) SetProgressFunc(f ProgressFunc) {
	m.progressFunc = f
}

// SetStageFunc sets a callback for export stage updates.
func (m *Manager) SetStageFunc(f StageFunc) {
	m.stageFunc = f
}

// SetMaxErrors stops the export after n failed operands (0 = unlimited).
func (m *Manager) SetMaxErrors(n int) {
	m.maxErrors = n
}

// SetDebug enables ingester diagnostics on stderr.
func (m *Manager) SetDebug(debug bool) {
	m.debug = debug
}

func (m *Manager) stage(s string) {
	if m.stageFunc != nil {
		m.stageFunc(s)
	}
}

// RunExport collects every path and stores the listings in a new snapshot.
// It returns the snapshot path and the run metadata.
func (m *Manager) RunExport(ctx context.Context, paths []string, opts *scan.Options) (string, *db.ExportMeta, error) {
	if err := os.MkdirAll(m.outputDir, 0755); err != nil {
		return "", nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := m.acquireLock(); err != nil {
		return "", nil, fmt.Errorf("failed to acquire lock: %w", err)
	}
	defer m.releaseLock()

	tempPath := filepath.Join(m.outputDir, fmt.Sprintf(".lsp-temp-%d.db", time.Now().UnixNano()))
	database, err := sql.Open("sqlite", tempPath)
	if err != nil {
		os.Remove(tempPath)
		return "", nil, fmt.Errorf("failed to create database: %w", err)
	}
	fail := func(format string, err error) (string, *db.ExportMeta, error) {
		database.Close()
		os.Remove(tempPath)
		return "", nil, fmt.Errorf(format, err)
	}

	if err := db.InitSchema(database); err != nil {
		return fail("failed to initialize schema: %w", err)
	}
	if err := db.ApplyWritePragmas(database); err != nil {
		return fail("failed to apply pragmas: %w", err)
	}

	meta, err := db.StartExport(database, paths, opts.Workers, opts.Threshold)
	if err != nil {
		return fail("%w", err)
	}

	m.stage("collect")
	ing, err := m.ingest(ctx, database, paths, opts)
	if err != nil {
		return fail("export failed: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return fail("export failed: %w", err)
	}
	p := ing.Progress()
	meta.ListingCount, meta.EntryCount, meta.ErrorCount = p.Listings, p.Entries, p.Errors

	m.stage("indexes")
	if err := db.BuildIndexes(database); err != nil {
		return fail("failed to build indexes: %w", err)
	}

	m.stage("finalize")
	if err := db.FinishExport(database, meta); err != nil {
		return fail("%w", err)
	}
	if err := db.Finalize(database); err != nil {
		return fail("failed to finalize database: %w", err)
	}

	database.Close()

	finalName := filePrefix + time.Now().Format("20060102-150405") + fileSuffix
	finalPath := filepath.Join(m.outputDir, finalName)

	if err := os.Rename(tempPath, finalPath); err != nil {
		os.Remove(tempPath)
		return "", nil, fmt.Errorf("failed to rename database: %w", err)
	}

	// Update latest.db symlink atomically via temp symlink + rename
	latestPath := filepath.Join(m.outputDir, latestName)
	tempLink := filepath.Join(m.outputDir, ".latest.db.tmp")
	os.Remove(tempLink)
	if err := os.Symlink(finalName, tempLink); err == nil {
		if err := os.Rename(tempLink, latestPath); err != nil {
			os.Remove(tempLink)
			fmt.Fprintf(os.Stderr, "warning: failed to update latest.db symlink: %v\n", err)
		}
	} else {
		fmt.Fprintf(os.Stderr, "warning: failed to create latest.db symlink: %v\n", err)
	}

	if err := m.pruneOldSnapshots(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to prune old snapshots: %v\n", err)
	}

	return finalPath, meta, nil
}

// ingest runs the collector and the ingester concurrently. The collector
// stops between operands once ctx is cancelled.
func (m *Manager) ingest(ctx context.Context, database *sql.DB, paths []string, opts *scan.Options) (*db.Ingester, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	listingCh := make(chan *scan.Listing, 4)
	errorCh := make(chan db.ExportError, 16)
	ing := db.NewIngester(database, listingCh, errorCh, 5000, m.maxErrors, m.debug, cancel)

	go func() {
		defer close(listingCh)
		defer close(errorCh)
		produce(ctx, scan.NewCollector(opts), paths, listingCh, errorCh)
	}()

	progressDone := make(chan struct{})
	progressExited := make(chan struct{})
	go func() {
		defer close(progressExited)
		if m.progressFunc == nil {
			return
		}
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-progressDone:
				return
			case <-ticker.C:
				m.progressFunc(ing.Progress())
			}
		}
	}()

	err := ing.Run(ctx)
	close(progressDone)
	<-progressExited
	if err != nil {
		return nil, err
	}
	return ing, nil
}

func produce(ctx context.Context, c *scan.Collector, paths []string, listingCh chan<- *scan.Listing, errorCh chan<- db.ExportError) {
	files := &scan.Listing{Now: time.Now(), Strategy: scan.StateSequential}

	send := func(l *scan.Listing) bool {
		select {
		case listingCh <- l:
			return true
		case <-ctx.Done():
			return false
		}
	}
	fail := func(path string, err error) bool {
		select {
		case errorCh <- db.ExportError{Path: path, Message: err.Error()}:
			return true
		case <-ctx.Done():
			return false
		}
	}

	for _, p := range paths {
		if ctx.Err() != nil {
			return
		}
		p = pathutil.Normalize(p)

		info, err := os.Lstat(p)
		if err != nil {
			if !fail(p, err) {
				return
			}
			continue
		}
		if info.IsDir() {
			l, err := c.Collect(p)
			if err != nil {
				if !fail(p, err) {
					return
				}
				continue
			}
			if !send(l) {
				return
			}
			continue
		}

		e, err := c.CollectFile(p)
		if err != nil {
			if !fail(p, err) {
				return
			}
			continue
		}
		files.Entries = append(files.Entries, e)
		files.Candidates++
	}

	if len(files.Entries) > 0 {
		send(files)
	}
}

func (m *Manager) acquireLock() error {
	lockPath := filepath.Join(m.outputDir, lockName)
	f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return err
	}

	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		f.Close()
		return fmt.Errorf("another export is in progress")
	}

	m.lockFile = f
	return nil
}

func (m *Manager) releaseLock() {
	if m.lockFile != nil {
		unix.Flock(int(m.lockFile.Fd()), unix.LOCK_UN)
		m.lockFile.Close()
		m.lockFile = nil
	}
}

func isSnapshotName(name string) bool {
	return strings.HasPrefix(name, filePrefix) && strings.HasSuffix(name, fileSuffix)
}

func (m *Manager) pruneOldSnapshots() error {
	if m.retention <= 0 {
		return nil
	}

	snapshots, err := m.ListSnapshots()
	if err != nil {
		return err
	}

	// Names embed the timestamp, so sorted order is chronological
	for len(snapshots) > m.retention {
		if err := os.Remove(snapshots[0]); err != nil {
			return fmt.Errorf("failed to remove %s: %w", snapshots[0], err)
		}
		snapshots = snapshots[1:]
	}

	return nil
}

// GetLatest returns the path to the latest snapshot.
func (m *Manager) GetLatest() (string, error) {
	resolved, err := filepath.EvalSymlinks(filepath.Join(m.outputDir, latestName))
	if err != nil {
		return "", fmt.Errorf("no latest snapshot found: %w", err)
	}
	return resolved, nil
}

// ListSnapshots returns all available snapshots sorted by date.
func (m *Manager) ListSnapshots() ([]string, error) {
	entries, err := os.ReadDir(m.outputDir)
	if err != nil {
		return nil, err
	}

	var snapshots []string
	for _, e := range entries {
		if !e.IsDir() && isSnapshotName(e.Name()) {
			snapshots = append(snapshots, filepath.Join(m.outputDir, e.Name()))
		}
	}

	sort.Strings(snapshots)
	return snapshots, nil
}
