package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/nconklindev/sheetsync/internal/types"
)

const (
	accent = lipgloss.Color("#7D56F4")
	soft   = lipgloss.Color("#A78BFA")
	muted  = lipgloss.Color("#6B7280")
)

var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accent).
			MarginTop(1)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(muted).
			MarginBottom(1)

	SelectedStyle = lipgloss.NewStyle().
			Foreground(accent).
			Bold(true)

	UnselectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF"))

	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF4757")).
			Bold(true)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(soft).
			Bold(true)

	HelpStyle = lipgloss.NewStyle().
			Foreground(muted).
			MarginTop(1)

	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(1, 2)
)

var kindColors = map[types.Kind]lipgloss.Color{
	types.KindUntyped: muted,
	types.KindText:    lipgloss.Color("#FFFFFF"),
	types.KindInteger: lipgloss.Color("#34D399"),
	types.KindFloat:   lipgloss.Color("#60A5FA"),
	types.KindDate:    lipgloss.Color("#FBBF24"),
}

// KindStyle colors a column kind label.
func KindStyle(k types.Kind) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(kindColors[k]).Bold(k != types.KindUntyped)
}
