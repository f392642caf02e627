package snapshot

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/michaelscutari/lsp/internal/db"
	"github.com/michaelscutari/lsp/internal/scan"
)

func TestManagerRunExportCreatesLatestAndRetention(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "file.txt"), []byte("hello"), 0644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	outDir := t.TempDir()
	mgr := NewManager(outDir, 1)
	opts := scan.DefaultOptions().WithWorkers(1)

	ctx := context.Background()
	firstDB, meta, err := mgr.RunExport(ctx, []string{root}, opts)
	if err != nil {
		t.Fatalf("first export: %v", err)
	}
	if _, err := os.Stat(firstDB); err != nil {
		t.Fatalf("first db missing: %v", err)
	}
	if meta.ListingCount != 1 || meta.EntryCount != 1 {
		t.Fatalf("unexpected meta %+v", meta)
	}

	latest, err := mgr.GetLatest()
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	firstResolved, err := filepath.EvalSymlinks(firstDB)
	if err != nil {
		t.Fatalf("resolve first db: %v", err)
	}
	if latest != firstResolved {
		t.Fatalf("latest does not point to first db: %s", latest)
	}

	time.Sleep(1100 * time.Millisecond)

	secondDB, _, err := mgr.RunExport(ctx, []string{root}, opts)
	if err != nil {
		t.Fatalf("second export: %v", err)
	}
	if _, err := os.Stat(secondDB); err != nil {
		t.Fatalf("second db missing: %v", err)
	}
	if _, err := os.Stat(firstDB); err == nil {
		t.Fatalf("expected first db to be pruned")
	}

	snapshots, err := mgr.ListSnapshots()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(snapshots) != 1 {
		t.Fatalf("expected one snapshot after pruning, got %v", snapshots)
	}
}

func TestManagerRunExportStoresFilesAndErrors(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "a.txt")
	if err := os.WriteFile(file, []byte("abc"), 0644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	missing := filepath.Join(root, "missing")

	var stages []string
	mgr := NewManager(t.TempDir(), 0)
	mgr.SetStageFunc(func(s string) { stages = append(stages, s) })

	path, meta, err := mgr.RunExport(context.Background(), []string{root, file, missing}, scan.DefaultOptions())
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if meta.ListingCount != 2 || meta.ErrorCount != 1 {
		t.Fatalf("unexpected meta %+v", meta)
	}
	if len(stages) != 3 || stages[0] != "collect" || stages[2] != "finalize" {
		t.Fatalf("unexpected stages %v", stages)
	}

	database, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer database.Close()

	files, err := db.LoadListing(database, "")
	if err != nil {
		t.Fatalf("load file listing: %v", err)
	}
	if len(files.Entries) != 1 || files.Entries[0].Name != file || files.Entries[0].Size != 3 {
		t.Fatalf("unexpected file listing %+v", files.Entries)
	}

	stored, err := db.GetExportMeta(database)
	if err != nil {
		t.Fatalf("meta: %v", err)
	}
	if stored.RunID != meta.RunID || len(stored.Roots) != 3 {
		t.Fatalf("unexpected stored meta %+v", stored)
	}
}

func TestManagerRejectsConcurrentExport(t *testing.T) {
	outDir := t.TempDir()
	holder := NewManager(outDir, 0)
	if err := holder.acquireLock(); err != nil {
		t.Fatalf("lock: %v", err)
	}
	defer holder.releaseLock()

	_, _, err := NewManager(outDir, 0).RunExport(context.Background(), []string{t.TempDir()}, scan.DefaultOptions())
	if err == nil {
		t.Fatalf("expected lock contention error")
	}
}
