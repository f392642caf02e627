package entry

import (
	"testing"
	"time"
)

func names(entries []*Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Name
	}
	return out
}

func sameOrder(t *testing.T, got []*Entry, want ...string) {
	t.Helper()
	g := names(got)
	if len(g) != len(want) {
		t.Fatalf("expected %v, got %v", want, g)
	}
	for i := range want {
		if g[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, g)
		}
	}
}

func TestSortDirectoriesFirstThenMtime(t *testing.T) {
	base := time.Unix(1_700_000_000, 0)
	entries := []*Entry{
		{Name: "old.txt", ModTime: base, Size: 5},
		{Name: "dirA", IsDir: true, ModTime: base},
		{Name: "new.txt", ModTime: base.Add(time.Hour), Size: 1},
		{Name: "dirB", IsDir: true, ModTime: base.Add(time.Minute)},
	}

	Sort(entries, SortOptions{})
	sameOrder(t, entries, "dirB", "dirA", "new.txt", "old.txt")

	Sort(entries, SortOptions{Reverse: true})
	sameOrder(t, entries, "dirA", "dirB", "old.txt", "new.txt")
}

func TestSortBySizeLeavesDirectoriesByTime(t *testing.T) {
	base := time.Unix(1_700_000_000, 0)
	entries := []*Entry{
		{Name: "small", Size: 1, ModTime: base.Add(time.Hour)},
		{Name: "big", Size: 100, ModTime: base},
		{Name: "d1", IsDir: true, Size: 1000, ModTime: base},
		{Name: "d2", IsDir: true, Size: 1, ModTime: base.Add(time.Hour)},
	}

	Sort(entries, SortOptions{Key: SortBySize})
	sameOrder(t, entries, "d2", "d1", "big", "small")
}

func TestSortByName(t *testing.T) {
	entries := []*Entry{
		{Name: "b"},
		{Name: "a"},
		{Name: "z", IsDir: true},
		{Name: "c"},
	}

	Sort(entries, SortOptions{Key: SortByName})
	sameOrder(t, entries, "z", "a", "b", "c")

	Sort(entries, SortOptions{Key: SortByName, Reverse: true})
	sameOrder(t, entries, "z", "c", "b", "a")
}

func TestParseSortKey(t *testing.T) {
	tests := []struct {
		in      string
		want    SortKey
		wantErr bool
	}{
		{"", SortByTime, false},
		{"time", SortByTime, false},
		{"size", SortBySize, false},
		{"name", SortByName, false},
		{"inode", SortByTime, true},
	}
	for _, tt := range tests {
		got, err := ParseSortKey(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("ParseSortKey(%q) err = %v", tt.in, err)
		}
		if got != tt.want {
			t.Fatalf("ParseSortKey(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestKindFromModeAndHidden(t *testing.T) {
	if KindFromMode(0644) != KindFile {
		t.Fatalf("expected file kind")
	}
	if !IsHidden(".git") || IsHidden("git") {
		t.Fatalf("unexpected hidden classification")
	}
}
