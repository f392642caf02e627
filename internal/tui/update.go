package tui

import (
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/michaelscutari/lsp/internal/entry"
)

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case listingLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.currentPath = msg.path
		m.filter = ""
		m.filterActive = false
		m.setListing(msg.listing)
		return m, nil
	}

	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.filterActive {
		switch msg.String() {
		case "enter":
			m.filterActive = false
			return m, nil

		case "esc":
			m.filterActive = false
			m.filter = ""
			m.applyFilter()
			return m, nil

		case "backspace":
			if len(m.filter) > 0 {
				runes := []rune(m.filter)
				m.filter = string(runes[:len(runes)-1])
				m.applyFilter()
			}
			return m, nil

		case "ctrl+c":
			return m, tea.Quit
		}

		if msg.Type == tea.KeyRunes {
			m.filter += msg.String()
			m.applyFilter()
			return m, nil
		}

		return m, nil
	}

	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case "down", "j":
		if m.cursor < len(m.entries)-1 {
			m.cursor++
		}
		return m, nil

	case "enter", "l", "right":
		if sel := m.Selected(); sel != nil && sel.IsDir {
			return m, m.loadListing(sel.FullPath)
		}
		return m, nil

	case "backspace", "h", "left":
		parent := filepath.Dir(m.currentPath)
		if parent != m.currentPath {
			m.selectName = filepath.Base(m.currentPath)
			return m, m.loadListing(parent)
		}
		return m, nil

	case "s":
		m.sort.Key = entry.SortBySize
		m.resort()
		return m, nil

	case "n":
		m.sort.Key = entry.SortByName
		m.resort()
		return m, nil

	case "t":
		m.sort.Key = entry.SortByTime
		m.resort()
		return m, nil

	case "r":
		m.sort.Reverse = !m.sort.Reverse
		m.resort()
		return m, nil

	case ".":
		m.showHidden = !m.showHidden
		if sel := m.Selected(); sel != nil {
			m.selectName = sel.Name
		}
		return m, m.loadListing(m.currentPath)

	case "/":
		m.filterActive = true
		return m, nil

	case "home", "g":
		m.cursor = 0
		return m, nil

	case "end", "G":
		if len(m.entries) > 0 {
			m.cursor = len(m.entries) - 1
		}
		return m, nil

	case "pgup":
		m.cursor -= 10
		if m.cursor < 0 {
			m.cursor = 0
		}
		return m, nil

	case "pgdown":
		m.cursor += 10
		if m.cursor >= len(m.entries) {
			m.cursor = len(m.entries) - 1
		}
		if m.cursor < 0 {
			m.cursor = 0
		}
		return m, nil
	}

	return m, nil
}
