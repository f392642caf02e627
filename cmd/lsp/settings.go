package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/michaelscutari/lsp/internal/config"
	"github.com/michaelscutari/lsp/internal/entry"
	"github.com/michaelscutari/lsp/internal/scan"
)

// settings is the merged view of config file and flags.
type settings struct {
	cfg  *config.Config
	scan *scan.Options
	sort entry.SortOptions
}

func loadSettings(cmd *cobra.Command) (*settings, error) {
	path := configPath
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil && verbose {
			fmt.Fprintf(os.Stderr, "warning: %v\n", err)
		}
		path = p
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	applyFlags(cmd, cfg)
	if noColor {
		cfg.Color = false
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	opts, err := cfg.ScanOptions()
	if err != nil {
		return nil, fmt.Errorf("invalid exclude pattern: %w", err)
	}
	opts.WithVerbose(verbose)
	opts.LogWriter = os.Stderr

	sortOpts, err := cfg.SortOptions()
	if err != nil {
		return nil, err
	}
	return &settings{cfg: cfg, scan: opts, sort: sortOpts}, nil
}

// applyFlags copies explicitly set flags over the config file values. Flags
// a command does not define are skipped.
func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	changed := func(name string) bool {
		f := flags.Lookup(name)
		return f != nil && f.Changed
	}

	if changed("all") {
		cfg.ShowHidden, _ = flags.GetBool("all")
	}
	if changed("inode") {
		cfg.ShowInode, _ = flags.GetBool("inode")
	}
	if changed("workers") {
		cfg.Workers, _ = flags.GetInt("workers")
	}
	if changed("threshold") {
		cfg.Threshold, _ = flags.GetInt("threshold")
	}
	if changed("exclude") {
		extra, _ := flags.GetStringSlice("exclude")
		cfg.Exclude = append(cfg.Exclude, extra...)
	}
	if changed("size") {
		if on, _ := flags.GetBool("size"); on {
			cfg.Sort = entry.SortBySize.String()
		}
	}
	if changed("name") {
		if on, _ := flags.GetBool("name"); on {
			cfg.Sort = entry.SortByName.String()
		}
	}
	if changed("reverse") {
		cfg.Reverse, _ = flags.GetBool("reverse")
	}
}
