package tui

import (
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/michaelscutari/lsp/internal/entry"
	"github.com/michaelscutari/lsp/internal/scan"
)

// Model holds the browser state.
type Model struct {
	opts         *scan.Options
	currentPath  string
	allEntries   []*entry.Entry
	entries      []*entry.Entry
	now          time.Time
	strategy     scan.State
	total        int64
	cursor       int
	sort         entry.SortOptions
	showHidden   bool
	width        int
	height       int
	filter       string
	filterActive bool
	loading      bool
	selectName   string
	err          error
}

// NewModel creates a browser rooted at path. opts is copied per load so
// toggling hidden entries never changes the caller's options.
func NewModel(path string, opts *scan.Options, sort entry.SortOptions) *Model {
	if opts == nil {
		opts = scan.DefaultOptions()
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return &Model{
		opts:        opts,
		currentPath: abs,
		sort:        sort,
		showHidden:  opts.ShowHidden,
		width:       100,
		height:      30,
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return m.loadListing(m.currentPath)
}

type listingLoadedMsg struct {
	path    string
	listing *scan.Listing
	err     error
}

func (m *Model) collector() *scan.Collector {
	o := *m.opts
	o.ShowHidden = m.showHidden
	o.Verbose = false
	o.StateFunc = nil
	return scan.NewCollector(&o)
}

func (m *Model) loadListing(path string) tea.Cmd {
	m.loading = true
	c := m.collector()
	return func() tea.Msg {
		l, err := c.Collect(path)
		return listingLoadedMsg{path: path, listing: l, err: err}
	}
}

func (m *Model) helpLine() string {
	if m.filterActive {
		return "Type to filter | Enter: apply | Esc: clear | q: quit"
	}
	return "↑/↓ move | Enter: open | Backspace: up | s/n/t: sort | r: reverse | .: hidden | /: filter | q: quit"
}

func (m *Model) setListing(l *scan.Listing) {
	m.now = l.Now
	m.strategy = l.Strategy
	m.total = 0
	for _, e := range l.Entries {
		m.total += e.Size
	}
	m.allEntries = l.Entries
	m.resort()
}

func (m *Model) resort() {
	entry.Sort(m.allEntries, m.sort)
	m.applyFilter()
}

func (m *Model) applyFilter() {
	if m.filter == "" {
		m.entries = m.allEntries
	} else {
		filtered := make([]*entry.Entry, 0, len(m.allEntries))
		needle := strings.ToLower(m.filter)
		for _, e := range m.allEntries {
			if strings.Contains(strings.ToLower(e.Name), needle) {
				filtered = append(filtered, e)
			}
		}
		m.entries = filtered
	}
	m.cursor = 0
	if m.selectName != "" {
		for i, e := range m.entries {
			if e.Name == m.selectName {
				m.cursor = i
				break
			}
		}
		m.selectName = ""
	}
}

// CurrentPath returns the directory being shown.
func (m *Model) CurrentPath() string {
	return m.currentPath
}

// Selected returns the entry under the cursor, or nil.
func (m *Model) Selected() *entry.Entry {
	if m.cursor < 0 || m.cursor >= len(m.entries) {
		return nil
	}
	return m.entries[m.cursor]
}
