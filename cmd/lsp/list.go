package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/michaelscutari/lsp/internal/owner"
	"github.com/michaelscutari/lsp/internal/pathutil"
	"github.com/michaelscutari/lsp/internal/render"
	"github.com/michaelscutari/lsp/internal/scan"
)

func runList(cmd *cobra.Command, args []string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	paths := pathutil.Expand(args)
	collector := scan.NewCollector(s.scan)
	listings, errs := collector.CollectPaths(paths)
	for _, err := range errs {
		fmt.Fprintf(os.Stderr, "lsp: %v\n", err)
	}

	table := render.NewTable(os.Stdout, render.Options{
		ShowInode: s.cfg.ShowInode,
		NoColor:   !s.cfg.Color,
	}, owner.NewCache(owner.DefaultCacheSize))

	headers := len(paths) > 1
	for i, l := range listings {
		if i > 0 {
			fmt.Fprintln(os.Stdout)
		}
		if headers && l.Path != "" {
			if err := table.Header(l.Path); err != nil {
				return err
			}
		}
		l.Sort(s.sort)
		if err := table.Write(l.Entries, l.Now); err != nil {
			return err
		}
		collector.Finish(l)
	}

	if len(errs) > 0 {
		return fmt.Errorf("%d of %d operands could not be listed", len(errs), len(paths))
	}
	return nil
}
