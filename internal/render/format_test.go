package render

import (
	"io/fs"
	"testing"
	"time"
)

func TestAge(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		ago  time.Duration
		want string
	}{
		{5 * time.Second, "5s ago"},
		{3 * time.Minute, "3m ago"},
		{2 * time.Hour, "2h ago"},
		{4 * 24 * time.Hour, "4d ago"},
		{65 * 24 * time.Hour, "2mo ago"},
		{400 * 24 * time.Hour, "1y ago"},
	}
	for _, tt := range tests {
		if got := Age(now.Add(-tt.ago), now); got != tt.want {
			t.Errorf("Age(-%v) = %q, want %q", tt.ago, got, tt.want)
		}
	}
}

func TestSize(t *testing.T) {
	tests := map[int64]string{
		0:       "0 B",
		512:     "512 B",
		1536:    "1.5 KiB",
		1 << 20: "1.0 MiB",
		-4:      "0 B",
	}
	for n, want := range tests {
		if got := Size(n); got != want {
			t.Errorf("Size(%d) = %q, want %q", n, got, want)
		}
	}
}

func TestPermissions(t *testing.T) {
	tests := []struct {
		mode fs.FileMode
		want string
	}{
		{0644, "-rw-r--r--"},
		{fs.ModeDir | 0755, "drwxr-xr-x"},
		{fs.ModeSymlink | 0777, "lrwxrwxrwx"},
		{fs.ModeDevice | fs.ModeCharDevice | 0620, "crw--w----"},
		{fs.ModeDevice | 0660, "brw-rw----"},
		{fs.ModeNamedPipe | 0600, "prw-------"},
		{fs.ModeSocket | 0700, "srwx------"},
	}
	for _, tt := range tests {
		if got := Permissions(tt.mode); got != tt.want {
			t.Errorf("Permissions(%v) = %q, want %q", tt.mode, got, tt.want)
		}
	}
}
