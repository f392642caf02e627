package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/michaelscutari/lsp/internal/db"
	"github.com/michaelscutari/lsp/internal/entry"
	"github.com/michaelscutari/lsp/internal/owner"
	"github.com/michaelscutari/lsp/internal/render"
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Print a stored listing non-interactively",
	Long:  `Print a listing from an export snapshot in the same format as a live listing.`,
	RunE:  runQuery,
}

var (
	queryDB      string
	queryPath    string
	querySort    string
	queryReverse bool
	queryInode   bool
)

func init() {
	queryCmd.Flags().StringVarP(&queryDB, "db", "d", "./data/latest.db", "Path to database file")
	queryCmd.Flags().StringVarP(&queryPath, "path", "p", "", "Listing path (default: first exported root)")
	queryCmd.Flags().StringVarP(&querySort, "sort", "s", "time", "Sort by: time, size, name")
	queryCmd.Flags().BoolVarP(&queryReverse, "reverse", "r", false, "Reverse the sort order")
	queryCmd.Flags().BoolVarP(&queryInode, "inode", "i", false, "Show inode number and link count")
}

func runQuery(cmd *cobra.Command, args []string) error {
	key, err := entry.ParseSortKey(querySort)
	if err != nil {
		return err
	}

	database, err := openSnapshot(queryDB)
	if err != nil {
		return err
	}
	defer database.Close()

	if queryPath == "" {
		listings, err := db.ListListings(database)
		if err != nil {
			return fmt.Errorf("failed to read listings: %w", err)
		}
		if len(listings) == 0 {
			return fmt.Errorf("snapshot %s holds no listings", queryDB)
		}
		queryPath = listings[0].Path
	}

	l, err := db.LoadListing(database, queryPath)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}
	l.Sort(entry.SortOptions{Key: key, Reverse: queryReverse})

	table := render.NewTable(os.Stdout, render.Options{
		ShowInode: queryInode,
		NoColor:   noColor,
	}, owner.NewCache(owner.DefaultCacheSize))
	return table.Write(l.Entries, l.Now)
}
