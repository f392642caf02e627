package db

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/michaelscutari/lsp/internal/entry"
	"github.com/michaelscutari/lsp/internal/scan"

	_ "modernc.org/sqlite"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	// :memory: databases are per connection
	database.SetMaxOpenConns(1)
	t.Cleanup(func() { database.Close() })

	if err := InitSchema(database); err != nil {
		t.Fatalf("init schema: %v", err)
	}
	return database
}

func testListing(path string, names ...string) *scan.Listing {
	now := time.Unix(1700000000, 0)
	l := &scan.Listing{Path: path, Now: now, Candidates: len(names), Strategy: scan.StateSequential}
	for i, n := range names {
		l.Entries = append(l.Entries, &entry.Entry{
			Name:     n,
			FullPath: path + "/" + n,
			Kind:     entry.KindFile,
			Mode:     0644,
			Size:     int64(100 * (i + 1)),
			ModTime:  now.Add(-time.Duration(i) * time.Hour),
		})
	}
	return l
}

func TestIngesterWritesListingsInBatches(t *testing.T) {
	database := openTestDB(t)

	listingCh := make(chan *scan.Listing, 3)
	errorCh := make(chan ExportError)
	ing := NewIngester(database, listingCh, errorCh, 2, 0, false, nil)

	listingCh <- testListing("/a", "x", "y", "z")
	listingCh <- testListing("/b", "w")
	listingCh <- testListing("/c")
	close(listingCh)
	close(errorCh)

	if err := ing.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}

	p := ing.Progress()
	if p.Listings != 3 || p.Entries != 4 || p.Errors != 0 {
		t.Fatalf("unexpected progress %+v", p)
	}

	infos, err := ListListings(database)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(infos) != 3 || infos[0].Path != "/a" || infos[0].Entries != 3 || infos[0].TotalSize != 600 {
		t.Fatalf("unexpected listings %+v", infos)
	}
	if infos[2].Entries != 0 {
		t.Fatalf("expected empty listing to be stored, got %+v", infos[2])
	}
}

func TestIngesterCancelsOnMaxErrors(t *testing.T) {
	database := openTestDB(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	listingCh := make(chan *scan.Listing, 1)
	errorCh := make(chan ExportError, 1)

	ing := NewIngester(database, listingCh, errorCh, 10, 1, false, cancel)
	done := make(chan error, 1)
	go func() {
		done <- ing.Run(ctx)
	}()

	errorCh <- ExportError{Path: "/bad", Message: "boom"}
	close(listingCh)
	close(errorCh)

	select {
	case <-ctx.Done():
	case <-time.After(2 * time.Second):
		t.Fatalf("expected context cancellation")
	}

	if err := <-done; err != nil {
		t.Fatalf("ingester error: %v", err)
	}
	if ing.ErrorCount() != 1 {
		t.Fatalf("expected error count 1, got %d", ing.ErrorCount())
	}

	errs, err := GetExportErrors(database)
	if err != nil {
		t.Fatalf("get errors: %v", err)
	}
	if len(errs) != 1 || errs[0].Path != "/bad" {
		t.Fatalf("unexpected stored errors %+v", errs)
	}
}

func TestExportMetaRoundTrip(t *testing.T) {
	database := openTestDB(t)

	m, err := StartExport(database, []string{"/a", "/b"}, 4, 10)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if m.RunID == "" {
		t.Fatalf("expected run id")
	}
	m.ListingCount, m.EntryCount, m.ErrorCount = 2, 7, 1
	if err := FinishExport(database, m); err != nil {
		t.Fatalf("finish: %v", err)
	}

	got, err := GetExportMeta(database)
	if err != nil {
		t.Fatalf("get meta: %v", err)
	}
	if got.RunID != m.RunID || len(got.Roots) != 2 || got.Roots[1] != "/b" {
		t.Fatalf("unexpected meta %+v", got)
	}
	if got.EntryCount != 7 || got.Workers != 4 || got.Threshold != 10 || got.EndTime.IsZero() {
		t.Fatalf("unexpected meta %+v", got)
	}
}
