package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/michaelscutari/lsp/internal/tui"
)

var browseCmd = &cobra.Command{
	Use:   "browse [PATH]",
	Short: "Browse directories interactively",
	Long:  `Open an interactive browser over live directory listings.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runBrowse,
}

func init() {
	browseCmd.Flags().BoolP("all", "a", false, "Show hidden entries")
	browseCmd.Flags().StringSliceP("exclude", "e", nil, "Regex patterns to exclude (can be repeated)")
	browseCmd.Flags().IntP("workers", "w", 0, "Worker pool size (default 4)")
}

func runBrowse(cmd *cobra.Command, args []string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	// Diagnostics would corrupt the alternate screen
	s.scan.WithVerbose(false)

	path := "."
	if len(args) == 1 {
		path = args[0]
	}

	model := tui.NewModel(path, s.scan, s.sort)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(cmd.Context()))

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	return nil
}
