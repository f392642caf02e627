package db

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/michaelscutari/lsp/internal/entry"
	"github.com/michaelscutari/lsp/internal/pathutil"
	"github.com/michaelscutari/lsp/internal/scan"
)

// ErrListingNotFound is returned when a snapshot holds no listing for a path.
var ErrListingNotFound = errors.New("listing not found")

// ListingInfo summarizes one stored listing.
type ListingInfo struct {
	ID          int64
	Path        string
	CollectedAt time.Time
	Candidates  int
	Strategy    scan.State
	Entries     int64
	TotalSize   int64
}

// ListListings returns every stored listing in export order.
func ListListings(db *sql.DB) ([]ListingInfo, error) {
	rows, err := db.Query(`
		SELECT l.id, l.path, l.collected_at, l.candidates, l.strategy,
		       COUNT(e.id), COALESCE(SUM(e.size), 0)
		FROM listings l
		LEFT JOIN entries e ON e.listing_id = l.id
		GROUP BY l.id
		ORDER BY l.id
	`)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var out []ListingInfo
	for rows.Next() {
		var li ListingInfo
		var collected int64
		var strategy int
		if err := rows.Scan(&li.ID, &li.Path, &collected, &li.Candidates, &strategy, &li.Entries, &li.TotalSize); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		li.CollectedAt = time.Unix(0, collected)
		li.Strategy = scan.State(strategy)
		out = append(out, li)
	}
	return out, rows.Err()
}

// LoadListing returns the most recent listing stored for path, with entries
// in collection order. An empty path selects the file-operand listing.
func LoadListing(db *sql.DB, path string) (*scan.Listing, error) {
	path = pathutil.Normalize(path)

	var (
		id        int64
		collected int64
		strategy  int
		l         = &scan.Listing{Path: path}
	)
	err := db.QueryRow(`
		SELECT id, collected_at, candidates, strategy
		FROM listings WHERE path = ?
		ORDER BY id DESC LIMIT 1
	`, path).Scan(&id, &collected, &l.Candidates, &strategy)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrListingNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	l.Now = time.Unix(0, collected)
	l.Strategy = scan.State(strategy)

	l.Entries, err = loadEntries(db, id)
	if err != nil {
		return nil, err
	}
	return l, nil
}

func loadEntries(db *sql.DB, listingID int64) ([]*entry.Entry, error) {
	rows, err := db.Query(`
		SELECT name, full_path, kind, mode, uid, gid, size, mtime, link_target, target_mode, inode, nlink
		FROM entries WHERE listing_id = ?
		ORDER BY slot
	`, listingID)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var entries []*entry.Entry
	for rows.Next() {
		var (
			e                  entry.Entry
			mode, targetMode   uint32
			mtime, inode, nlnk int64
		)
		if err := rows.Scan(&e.Name, &e.FullPath, &e.Kind, &mode, &e.UID, &e.GID, &e.Size, &mtime,
			&e.LinkTarget, &targetMode, &inode, &nlnk); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		e.Mode = fs.FileMode(mode)
		e.TargetMode = fs.FileMode(targetMode)
		e.ModTime = time.Unix(0, mtime)
		e.Inode = uint64(inode)
		e.Nlink = uint64(nlnk)
		e.IsDir = e.Mode.IsDir()
		e.IsSymlink = e.Mode&fs.ModeSymlink != 0
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}

// GetExportMeta retrieves export metadata.
func GetExportMeta(db *sql.DB) (*ExportMeta, error) {
	var m ExportMeta
	var roots string
	var startTime, endTime int64

	err := db.QueryRow(`
		SELECT run_id, roots, start_time, COALESCE(end_time, 0), workers, threshold,
		       listing_count, entry_count, error_count
		FROM export_meta WHERE id = 1
	`).Scan(&m.RunID, &roots, &startTime, &endTime, &m.Workers, &m.Threshold,
		&m.ListingCount, &m.EntryCount, &m.ErrorCount)
	if err != nil {
		return nil, err
	}

	if roots != "" {
		m.Roots = strings.Split(roots, "\n")
	}
	m.StartTime = time.Unix(startTime, 0)
	if endTime > 0 {
		m.EndTime = time.Unix(endTime, 0)
	}
	return &m, nil
}

// GetExportErrors returns the sampled export errors.
func GetExportErrors(db *sql.DB) ([]ExportError, error) {
	rows, err := db.Query(`SELECT path, message FROM export_errors ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var out []ExportError
	for rows.Next() {
		var e ExportError
		if err := rows.Scan(&e.Path, &e.Message); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
