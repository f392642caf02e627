package main

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/michaelscutari/lsp/internal/db"

	_ "modernc.org/sqlite"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Display snapshot metadata",
	Long:  `Print metadata about an export snapshot including its listings and errors.`,
	RunE:  runInfo,
}

var infoDB string

func init() {
	infoCmd.Flags().StringVarP(&infoDB, "db", "d", "./data/latest.db", "Path to database file")
}

func runInfo(cmd *cobra.Command, args []string) error {
	database, err := openSnapshot(infoDB)
	if err != nil {
		return err
	}
	defer database.Close()

	meta, err := db.GetExportMeta(database)
	if err != nil {
		return fmt.Errorf("failed to read export metadata: %w", err)
	}

	fmt.Printf("Export Information\n")
	fmt.Printf("==================\n\n")
	fmt.Printf("Run ID:       %s\n", meta.RunID)
	fmt.Printf("Start Time:   %s\n", meta.StartTime.Format(time.RFC3339))
	if !meta.EndTime.IsZero() {
		fmt.Printf("End Time:     %s\n", meta.EndTime.Format(time.RFC3339))
		fmt.Printf("Duration:     %s\n", meta.EndTime.Sub(meta.StartTime).Round(time.Second))
	}
	fmt.Printf("Workers:      %d (threshold %d)\n", meta.Workers, meta.Threshold)

	fmt.Printf("\nStatistics\n")
	fmt.Printf("----------\n")
	fmt.Printf("Listings:     %s\n", humanize.Comma(meta.ListingCount))
	fmt.Printf("Entries:      %s\n", humanize.Comma(meta.EntryCount))
	if meta.ErrorCount > 0 {
		fmt.Printf("Errors:       %s\n", humanize.Comma(meta.ErrorCount))
	}

	listings, err := db.ListListings(database)
	if err != nil {
		return fmt.Errorf("failed to read listings: %w", err)
	}
	if len(listings) > 0 {
		fmt.Printf("\nListings\n")
		fmt.Printf("--------\n")
		for _, l := range listings {
			path := l.Path
			if path == "" {
				path = "(files)"
			}
			fmt.Printf("%s  %s entries  %s  %s\n", path, humanize.Comma(l.Entries),
				humanize.IBytes(uint64(l.TotalSize)), l.Strategy)
		}
	}

	errs, err := db.GetExportErrors(database)
	if err != nil {
		return fmt.Errorf("failed to read errors: %w", err)
	}
	if len(errs) > 0 {
		fmt.Printf("\nErrors\n")
		fmt.Printf("------\n")
		for _, e := range errs {
			fmt.Printf("%s: %s\n", e.Path, e.Message)
		}
	}

	return nil
}

func openSnapshot(path string) (*sql.DB, error) {
	database, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.ApplyReadPragmas(database); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}
	return database, nil
}
