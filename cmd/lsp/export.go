package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/michaelscutari/lsp/internal/db"
	"github.com/michaelscutari/lsp/internal/pathutil"
	"github.com/michaelscutari/lsp/internal/snapshot"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

var exportCmd = &cobra.Command{
	Use:   "export [PATH...]",
	Short: "Collect listings into a SQLite snapshot",
	Long: `Collect each path and store the listings in a timestamped SQLite
database. The newest snapshot is linked as latest.db.`,
	RunE: runExport,
}

var (
	exportOut       string
	exportRetention int
	exportMaxErrors int
)

func init() {
	addListFlags(exportCmd)
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "./data", "Output directory for snapshots")
	exportCmd.Flags().IntVar(&exportRetention, "retention", 5, "Number of snapshots to retain (0 = unlimited)")
	exportCmd.Flags().IntVar(&exportMaxErrors, "max-errors", 0, "Stop after N failed operands (0 = unlimited)")
}

func runExport(cmd *cobra.Command, args []string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	outDir, err := filepath.Abs(exportOut)
	if err != nil {
		return fmt.Errorf("failed to resolve output path: %w", err)
	}

	var paths []string
	for _, p := range pathutil.Expand(args) {
		abs, err := filepath.Abs(p)
		if err != nil {
			return fmt.Errorf("failed to resolve %s: %w", p, err)
		}
		paths = append(paths, abs)
	}

	mgr := snapshot.NewManager(outDir, exportRetention)
	mgr.SetMaxErrors(exportMaxErrors)
	mgr.SetDebug(verbose)

	startTime := time.Now()
	isTTY := isTerminal()
	spinnerIdx := 0
	if isTTY {
		mgr.SetProgressFunc(func(p db.Progress) {
			spinner := spinnerFrames[spinnerIdx%len(spinnerFrames)]
			spinnerIdx++
			fmt.Fprintf(os.Stderr, "\r\033[K%s Exporting... %d listings | %d entries | %s",
				spinner, p.Listings, p.Entries, time.Since(startTime).Round(time.Millisecond))
		})
	}

	dbPath, meta, err := mgr.RunExport(cmd.Context(), paths, s.scan)
	if isTTY {
		fmt.Fprintf(os.Stderr, "\r\033[K")
	}
	if err != nil {
		if errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, "Export canceled.")
			return nil
		}
		return fmt.Errorf("export failed: %w", err)
	}

	fmt.Printf("Database: %s\n", dbPath)
	fmt.Printf("Export completed in %s\n", time.Since(startTime).Round(time.Millisecond))
	fmt.Printf("\nSummary:\n")
	fmt.Printf("  Listings: %s\n", humanize.Comma(meta.ListingCount))
	fmt.Printf("  Entries:  %s\n", humanize.Comma(meta.EntryCount))
	if meta.ErrorCount > 0 {
		fmt.Printf("  Errors:   %s\n", humanize.Comma(meta.ErrorCount))
	}

	return nil
}

func isTerminal() bool {
	fi, err := os.Stderr.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
