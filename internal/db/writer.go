package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/michaelscutari/lsp/internal/scan"
)

const insertListingSQL = `INSERT INTO listings (path, collected_at, candidates, strategy) VALUES (?, ?, ?, ?)`
const insertEntrySQL = `INSERT INTO entries (listing_id, slot, name, full_path, kind, mode, uid, gid, size, mtime, link_target, target_mode, inode, nlink) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
const insertErrorSQL = `INSERT INTO export_errors (path, message) VALUES (?, ?)`

const maxErrorsSampled = 1000

// ExportError records an operand that could not be collected.
type ExportError struct {
	Path    string
	Message string
}

// ExportMeta describes one export run.
type ExportMeta struct {
	RunID        string
	Roots        []string
	StartTime    time.Time
	EndTime      time.Time
	Workers      int
	Threshold    int
	ListingCount int64
	EntryCount   int64
	ErrorCount   int64
}

// StartExport records the beginning of an export run under a fresh run id.
func StartExport(db *sql.DB, roots []string, workers, threshold int) (*ExportMeta, error) {
	m := &ExportMeta{
		RunID:     uuid.NewString(),
		Roots:     roots,
		StartTime: time.Now(),
		Workers:   workers,
		Threshold: threshold,
	}
	_, err := db.Exec(`
		INSERT OR REPLACE INTO export_meta (id, run_id, roots, start_time, workers, threshold)
		VALUES (1, ?, ?, ?, ?, ?)
	`, m.RunID, strings.Join(roots, "\n"), m.StartTime.Unix(), workers, threshold)
	if err != nil {
		return nil, fmt.Errorf("failed to write export meta: %w", err)
	}
	return m, nil
}

// FinishExport stores the end time and final counts of m.
func FinishExport(db *sql.DB, m *ExportMeta) error {
	m.EndTime = time.Now()
	_, err := db.Exec(`
		UPDATE export_meta
		SET end_time = ?, listing_count = ?, entry_count = ?, error_count = ?
		WHERE id = 1
	`, m.EndTime.Unix(), m.ListingCount, m.EntryCount, m.ErrorCount)
	if err != nil {
		return fmt.Errorf("failed to update export meta: %w", err)
	}
	return nil
}

// Ingester batches listings and writes them to the database.
type Ingester struct {
	db         *sql.DB
	listingCh  <-chan *scan.Listing
	errorCh    <-chan ExportError
	batchSize  int
	maxErrors  int
	cancelFunc context.CancelFunc

	listingBatch []*scan.Listing
	batchEntries int
	errorBatch   []ExportError
	errorCapped  bool

	// Progress tracking (atomic)
	listingCount int64
	entryCount   int64
	errorCount   int64

	listingStmt *sql.Stmt
	entryStmt   *sql.Stmt
	errorStmt   *sql.Stmt

	debug bool
}

// Progress holds current export progress.
type Progress struct {
	Listings int64
	Entries  int64
	Errors   int64
}

// NewIngester creates a new ingester. Once maxErrors operands have failed,
// cancelFunc is called so the producer can stop early.
func NewIngester(db *sql.DB, listingCh <-chan *scan.Listing, errorCh <-chan ExportError, batchSize, maxErrors int, debug bool, cancelFunc context.CancelFunc) *Ingester {
	if batchSize < 1 {
		batchSize = 1
	}
	return &Ingester{
		db:         db,
		listingCh:  listingCh,
		errorCh:    errorCh,
		batchSize:  batchSize,
		maxErrors:  maxErrors,
		cancelFunc: cancelFunc,
		errorBatch: make([]ExportError, 0, 16),
		debug:      debug,
	}
}

// Run consumes listings and errors until both channels are closed.
func (ing *Ingester) Run(ctx context.Context) error {
	var err error
	ing.listingStmt, err = ing.db.Prepare(insertListingSQL)
	if err != nil {
		return fmt.Errorf("failed to prepare listing statement: %w", err)
	}
	defer ing.listingStmt.Close()

	ing.entryStmt, err = ing.db.Prepare(insertEntrySQL)
	if err != nil {
		return fmt.Errorf("failed to prepare entry statement: %w", err)
	}
	defer ing.entryStmt.Close()

	ing.errorStmt, err = ing.db.Prepare(insertErrorSQL)
	if err != nil {
		return fmt.Errorf("failed to prepare error statement: %w", err)
	}
	defer ing.errorStmt.Close()

	if ing.debug {
		fmt.Fprintf(os.Stderr, "[INGESTER] STARTED batchSize=%d\n", ing.batchSize)
	}

	listingCh := ing.listingCh
	errorCh := ing.errorCh

	for listingCh != nil || errorCh != nil {
		select {
		case <-ctx.Done():
			if ing.debug {
				fmt.Fprintf(os.Stderr, "[INGESTER] CTX-CANCELLED listings=%d\n", len(ing.listingBatch))
			}
			return ing.flush()

		case l, ok := <-listingCh:
			if !ok {
				listingCh = nil
				continue
			}
			ing.listingBatch = append(ing.listingBatch, l)
			ing.batchEntries += len(l.Entries)
			if ing.batchEntries >= ing.batchSize {
				if err := ing.flushListings(); err != nil {
					return err
				}
			}

		case e, ok := <-errorCh:
			if !ok {
				errorCh = nil
				continue
			}
			n := atomic.AddInt64(&ing.errorCount, 1)
			if ing.maxErrors > 0 && n >= int64(ing.maxErrors) && ing.cancelFunc != nil {
				ing.cancelFunc()
			}
			if !ing.errorCapped {
				ing.errorBatch = append(ing.errorBatch, e)
				if len(ing.errorBatch) >= maxErrorsSampled {
					ing.errorCapped = true
					if err := ing.flushErrors(); err != nil {
						return err
					}
				}
			}
		}
	}

	if ing.debug {
		fmt.Fprintf(os.Stderr, "[INGESTER] INPUTS-CLOSED - flushing remaining batches\n")
	}
	return ing.flush()
}

func (ing *Ingester) flush() error {
	if err := ing.flushListings(); err != nil {
		return err
	}
	return ing.flushErrors()
}

func (ing *Ingester) flushListings() error {
	if len(ing.listingBatch) == 0 {
		return nil
	}

	flushStart := time.Now()
	tx, err := ing.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	listingStmt := tx.Stmt(ing.listingStmt)
	entryStmt := tx.Stmt(ing.entryStmt)
	for _, l := range ing.listingBatch {
		res, err := listingStmt.Exec(l.Path, l.Now.UnixNano(), l.Candidates, int(l.Strategy))
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to insert listing %q: %w", l.Path, err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to read listing id: %w", err)
		}
		for slot, e := range l.Entries {
			_, err := entryStmt.Exec(id, slot, e.Name, e.FullPath, e.Kind, uint32(e.Mode), e.UID, e.GID,
				e.Size, e.ModTime.UnixNano(), e.LinkTarget, uint32(e.TargetMode), int64(e.Inode), int64(e.Nlink))
			if err != nil {
				tx.Rollback()
				return fmt.Errorf("failed to insert entry %q: %w", e.Name, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	atomic.AddInt64(&ing.listingCount, int64(len(ing.listingBatch)))
	atomic.AddInt64(&ing.entryCount, int64(ing.batchEntries))
	if ing.debug {
		fmt.Fprintf(os.Stderr, "[INGESTER] FLUSH-DONE listings=%d entries=%d took=%v\n",
			len(ing.listingBatch), ing.batchEntries, time.Since(flushStart))
	}

	ing.listingBatch = ing.listingBatch[:0]
	ing.batchEntries = 0
	return nil
}

func (ing *Ingester) flushErrors() error {
	if len(ing.errorBatch) == 0 {
		return nil
	}

	tx, err := ing.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin error transaction: %w", err)
	}

	stmt := tx.Stmt(ing.errorStmt)
	for _, e := range ing.errorBatch {
		if _, err := stmt.Exec(e.Path, e.Message); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to insert error for %q: %w", e.Path, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit error transaction: %w", err)
	}

	ing.errorBatch = ing.errorBatch[:0]
	return nil
}

// ErrorCount returns the total number of errors received.
func (ing *Ingester) ErrorCount() int64 {
	return atomic.LoadInt64(&ing.errorCount)
}

// Progress returns current export progress (safe for concurrent access).
func (ing *Ingester) Progress() Progress {
	return Progress{
		Listings: atomic.LoadInt64(&ing.listingCount),
		Entries:  atomic.LoadInt64(&ing.entryCount),
		Errors:   atomic.LoadInt64(&ing.errorCount),
	}
}
