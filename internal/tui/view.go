package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/michaelscutari/lsp/internal/entry"
	"github.com/michaelscutari/lsp/internal/render"
)

// View implements tea.Model.
func (m *Model) View() string {
	if m.err != nil {
		return fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err)
	}

	if m.allEntries == nil && m.loading {
		return "Loading..."
	}

	var b strings.Builder
	headerLines := 0

	writeLine := func(line string) {
		b.WriteString(line)
		b.WriteString("\n")
		headerLines++
	}

	writeLine(titleStyle.Render("lsp - directory browser"))

	pathLabel := fmt.Sprintf("Path: %s", truncateMiddle(m.currentPath, max(10, m.width-6)))
	writeLine(breadcrumbStyle.Render(pathLabel))

	status := fmt.Sprintf("Items: %s | Total: %s | Sort: %s",
		FormatCount(int64(len(m.entries))), render.Size(m.total), m.sortLabel())
	if m.showHidden {
		status += " | hidden shown"
	}
	if m.filter != "" {
		status += fmt.Sprintf(" | Filter: %q", m.filter)
	}
	if m.loading {
		status += " | loading..."
	}
	writeLine(statusStyle.Render(status))

	if m.filterActive {
		writeLine(filterStyle.Render(fmt.Sprintf("Filter: %s_", m.filter)))
	} else if m.filter != "" {
		writeLine(filterStyle.Render(fmt.Sprintf("Filter: %s", m.filter)))
	}

	footerLines := 2
	visibleRows := m.height - headerLines - footerLines - 2
	if visibleRows < 5 {
		visibleRows = 5
	}

	startIdx := 0
	if m.cursor >= visibleRows {
		startIdx = m.cursor - visibleRows + 1
	}
	endIdx := min(len(m.entries), startIdx+visibleRows)

	sizeLabel := headerLabel("SIZE", m.sort.Key == entry.SortBySize)
	ageLabel := headerLabel("AGE", m.sort.Key == entry.SortByTime)
	nameLabel := headerLabel("NAME", m.sort.Key == entry.SortByName)

	widths := calcColumnWidths(m, startIdx, endIdx, sizeLabel, ageLabel)
	nameWidth := calcNameWidth(m.width, widths)
	gap := strings.Repeat(" ", colGap)

	nameLabel = truncateRight(nameLabel, nameWidth)
	header := fmt.Sprintf("%-*s%s%*s%s%*s%s%-*s%s%*s",
		permsWidth, "PERMS",
		gap,
		widths.size, sizeLabel,
		gap,
		widths.age, ageLabel,
		gap,
		nameWidth, nameLabel,
		gap,
		barColWidth, "SIZE%",
	)
	writeLine(headerStyle.Render(header))

	for i := startIdx; i < endIdx; i++ {
		b.WriteString(m.formatEntry(m.entries[i], i == m.cursor, widths, nameWidth))
		b.WriteString("\n")
	}

	displayedRows := max(0, min(len(m.entries)-startIdx, visibleRows))
	for i := displayedRows; i < visibleRows; i++ {
		b.WriteString("\n")
	}

	help := m.helpLine()
	if len(m.entries) > 0 {
		help = fmt.Sprintf("%s [%d/%d]", help, m.cursor+1, len(m.entries))
	}
	b.WriteString(helpStyle.Render(help))

	return b.String()
}

type columnWidths struct {
	size int
	age  int
}

const (
	colGap        = 2
	permsWidth    = 10
	minNameWidth  = 10
	barBlockWidth = 10
	barPctWidth   = 4
	barGapWidth   = 2
	barColWidth   = barBlockWidth + barGapWidth + barPctWidth
)

func (m *Model) sortLabel() string {
	if m.sort.Reverse {
		return m.sort.Key.String() + " (reversed)"
	}
	return m.sort.Key.String()
}

func calcColumnWidths(m *Model, startIdx, endIdx int, sizeLabel, ageLabel string) columnWidths {
	w := columnWidths{
		size: len(sizeLabel),
		age:  len(ageLabel),
	}
	for i := startIdx; i < endIdx; i++ {
		e := m.entries[i]
		w.size = max(w.size, len(render.Size(e.Size)))
		w.age = max(w.age, len(render.Age(e.ModTime, m.now)))
	}
	return w
}

func calcNameWidth(totalWidth int, w columnWidths) int {
	used := permsWidth + w.size + w.age + colGap*4 + barColWidth
	return max(minNameWidth, totalWidth-used)
}

func truncateRight(s string, maxLen int) string {
	if maxLen <= 0 || len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}

func (m *Model) formatEntry(e *entry.Entry, selected bool, widths columnWidths, nameWidth int) string {
	var rawName string
	switch {
	case e.IsSymlink:
		rawName = e.Name + " -> " + e.LinkTarget
	case e.IsDir:
		rawName = e.Name + "/"
	default:
		rawName = e.Name
	}

	rawName = truncateRight(rawName, nameWidth)
	var styledName string
	switch {
	case e.IsSymlink:
		styledName = symlinkStyle.Render(rawName)
	case e.IsDir:
		styledName = dirStyle.Render(rawName)
	case e.IsExecutable():
		styledName = execStyle.Render(rawName)
	default:
		styledName = fileStyle.Render(rawName)
	}
	paddedName := styledName + strings.Repeat(" ", max(0, nameWidth-lipgloss.Width(rawName)))

	gap := strings.Repeat(" ", colGap)
	line := fmt.Sprintf("%-*s%s%*s%s%s%s%s%s%s",
		permsWidth, render.Permissions(e.Mode),
		gap,
		widths.size, render.Size(e.Size),
		gap,
		ageStyle.Render(fmt.Sprintf("%*s", widths.age, render.Age(e.ModTime, m.now))),
		gap,
		paddedName,
		gap,
		formatBar(e.Size, m.total),
	)

	if selected {
		return selectedStyle.Render(line)
	}
	return line
}

func formatBar(entryVal, parentTotal int64) string {
	if parentTotal <= 0 || entryVal <= 0 {
		empty := strings.Repeat("░", barBlockWidth)
		return barEmptyStyle.Render(empty) + fmt.Sprintf("  %3d%%", 0)
	}

	pct := float64(entryVal) / float64(parentTotal) * 100
	if pct > 100 {
		pct = 100
	}

	filled := int(math.Round(pct / 100 * float64(barBlockWidth)))
	if filled < 1 {
		filled = 1
	}
	if filled > barBlockWidth {
		filled = barBlockWidth
	}

	filledStr := barFilledStyle.Render(strings.Repeat("█", filled))
	emptyStr := barEmptyStyle.Render(strings.Repeat("░", barBlockWidth-filled))
	return filledStr + emptyStr + fmt.Sprintf("  %3d%%", int(math.Round(pct)))
}

func headerLabel(label string, active bool) string {
	if active {
		return label + "*"
	}
	return label
}

func truncateMiddle(s string, maxLen int) string {
	if maxLen <= 0 || len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	head := (maxLen - 3) / 2
	tail := maxLen - 3 - head
	return s[:head] + "..." + s[len(s)-tail:]
}
