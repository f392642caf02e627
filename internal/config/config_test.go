package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/michaelscutari/lsp/internal/entry"
	"github.com/michaelscutari/lsp/internal/scan"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Workers != scan.DefaultWorkers || cfg.Threshold != scan.DefaultThreshold {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if !cfg.Color || cfg.Sort != "time" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
workers: 8
sort: size
reverse: true
show_hidden: true
exclude:
  - '\.o$'
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Workers != 8 || cfg.Threshold != scan.DefaultThreshold {
		t.Fatalf("unexpected config %+v", cfg)
	}

	opts, err := cfg.ScanOptions()
	if err != nil {
		t.Fatalf("scan options: %v", err)
	}
	if opts.Workers != 8 || !opts.ShowHidden || !opts.ShouldExclude("main.o") || opts.ShouldExclude("main.c") {
		t.Fatalf("unexpected scan options %+v", opts)
	}

	sortOpts, err := cfg.SortOptions()
	if err != nil {
		t.Fatalf("sort options: %v", err)
	}
	if sortOpts.Key != entry.SortBySize || !sortOpts.Reverse {
		t.Fatalf("unexpected sort options %+v", sortOpts)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := map[string]string{
		"bad yaml":      "workers: [",
		"bad sort":      "sort: color",
		"bad threshold": "threshold: 0",
		"bad workers":   "workers: -1",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, body)); err == nil {
				t.Fatalf("expected error for %q", body)
			}
		})
	}
}

func TestScanOptionsRejectsBadPattern(t *testing.T) {
	cfg := Default()
	cfg.Exclude = []string{"("}
	if _, err := cfg.ScanOptions(); err == nil {
		t.Fatalf("expected invalid regex error")
	}
}

func TestDefaultPathUsesXDG(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	path, err := DefaultPath()
	if err != nil {
		t.Fatalf("default path: %v", err)
	}
	if !strings.HasPrefix(path, dir) || filepath.Base(path) != "config.yaml" {
		t.Fatalf("unexpected path %s", path)
	}
}
