package render

import (
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/taigrr/colorhash"
)

var (
	// Colors
	colorGreen    = lipgloss.Color("2")
	colorOrange   = lipgloss.Color("208")
	colorRed      = lipgloss.Color("1")
	colorBlue     = lipgloss.Color("4")
	colorCyan     = lipgloss.Color("6")
	colorYellow   = lipgloss.Color("3")
	colorGrey     = lipgloss.Color("7")
	colorDarkGrey = lipgloss.Color("8")
)

// ownerPalette holds colors readable on both dark and light backgrounds.
var ownerPalette = []int{33, 39, 43, 72, 76, 99, 135, 141, 166, 172, 178, 203, 209, 214}

// Styles holds every style used by the listing table.
type Styles struct {
	renderer *lipgloss.Renderer

	Dir        lipgloss.Style
	Symlink    lipgloss.Style
	Exec       lipgloss.Style
	File       lipgloss.Style
	LinkTarget lipgloss.Style
	Header     lipgloss.Style

	SizeKiB lipgloss.Style
	SizeMiB lipgloss.Style
	SizeGiB lipgloss.Style

	DateMonth lipgloss.Style
	DateYear  lipgloss.Style

	CharMark  lipgloss.Style
	BlockMark lipgloss.Style
}

// NewStyles builds the styles on r.
func NewStyles(r *lipgloss.Renderer) Styles {
	return Styles{
		renderer: r,

		Dir: r.NewStyle().
			Foreground(colorBlue).
			Bold(true),
		Symlink: r.NewStyle().
			Foreground(colorCyan).
			Bold(true),
		Exec: r.NewStyle().
			Foreground(colorGreen),
		File:       r.NewStyle(),
		LinkTarget: r.NewStyle().Foreground(colorGrey),
		Header: r.NewStyle().
			Bold(true),

		SizeKiB: r.NewStyle().Foreground(colorGreen),
		SizeMiB: r.NewStyle().Foreground(colorOrange),
		SizeGiB: r.NewStyle().Foreground(colorRed).Bold(true),

		DateMonth: r.NewStyle().Foreground(colorGrey),
		DateYear:  r.NewStyle().Foreground(colorDarkGrey),

		CharMark: r.NewStyle().
			Foreground(colorRed).
			Bold(true),
		BlockMark: r.NewStyle().
			Foreground(colorYellow).
			Bold(true),
	}
}

// Owner returns a style whose color is derived from the owner name, so the
// same owner is drawn in the same color on every run.
func (s Styles) Owner(name string) lipgloss.Style {
	h := colorhash.HashString(name)
	if h < 0 {
		h = -h
	}
	c := ownerPalette[h%len(ownerPalette)]
	return s.renderer.NewStyle().Foreground(lipgloss.Color(strconv.Itoa(c)))
}
