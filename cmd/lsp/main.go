package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var version = "0.1.0"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := fang.Execute(ctx, rootCmd); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "lsp [PATH...]",
	Short: "List directory contents with parallel metadata collection",
	Long: `lsp lists files with permissions, owner, size, age and link targets.
Directories with many entries are resolved by a small worker pool; small
ones are resolved inline. Directory sizes are recursive totals.`,
	SilenceUsage: true,
	RunE:         runList,
}

var (
	configPath string
	verbose    bool
	noColor    bool
)

func init() {
	rootCmd.Version = version

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default $XDG_CONFIG_HOME/lsp/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log collection diagnostics to stderr")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	addListFlags(rootCmd)
	rootCmd.Flags().BoolP("size", "s", false, "Sort by size (largest first)")
	rootCmd.Flags().BoolP("name", "n", false, "Sort by name")
	rootCmd.Flags().BoolP("reverse", "r", false, "Reverse the sort order")
	rootCmd.MarkFlagsMutuallyExclusive("size", "name")

	rootCmd.AddCommand(browseCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(queryCmd)
}

// addListFlags registers the collection flags shared by commands that list
// live directories.
func addListFlags(cmd *cobra.Command) {
	cmd.Flags().BoolP("all", "a", false, "Show hidden entries")
	cmd.Flags().BoolP("inode", "i", false, "Show inode number and link count")
	cmd.Flags().IntP("workers", "w", 0, "Worker pool size (default 4)")
	cmd.Flags().Int("threshold", 0, "Entry count at which the worker pool is used (default 10)")
	cmd.Flags().StringSliceP("exclude", "e", nil, "Regex patterns to exclude (can be repeated)")
}
