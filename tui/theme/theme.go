package theme

import (
	"github.com/charmbracelet/lipgloss"
)

// Colors encapsulates the palette used by a theme. lipgloss.TerminalColor
// allows a mix of adaptive and static colors.
type Colors struct {
	Green                lipgloss.TerminalColor
	Yellow               lipgloss.TerminalColor
	Red                  lipgloss.TerminalColor
	Orange               lipgloss.TerminalColor
	Blue                 lipgloss.TerminalColor
	Cyan                 lipgloss.TerminalColor
	Violet               lipgloss.TerminalColor
	LightText            lipgloss.TerminalColor
	MutedText            lipgloss.TerminalColor
	Border               lipgloss.TerminalColor
	SelectedBackground   lipgloss.TerminalColor
	VerySubtleBackground lipgloss.TerminalColor
}

// Exported color shortcuts. These are populated from DefaultColors.
var (
	Green                lipgloss.TerminalColor
	Yellow               lipgloss.TerminalColor
	Red                  lipgloss.TerminalColor
	Orange               lipgloss.TerminalColor
	Blue                 lipgloss.TerminalColor
	Cyan                 lipgloss.TerminalColor
	Violet               lipgloss.TerminalColor
	LightText            lipgloss.TerminalColor
	MutedText            lipgloss.TerminalColor
	Border               lipgloss.TerminalColor
	SelectedBackground   lipgloss.TerminalColor
	VerySubtleBackground lipgloss.TerminalColor
)

// DefaultColors exposes the active color palette.
var DefaultColors = Colors{
	Green:                lipgloss.AdaptiveColor{Light: "#4E7C5A", Dark: "#98BB6C"},
	Yellow:               lipgloss.AdaptiveColor{Light: "#A68A64", Dark: "#FF9E3B"},
	Red:                  lipgloss.AdaptiveColor{Light: "#C34043", Dark: "#FF5D62"},
	Orange:               lipgloss.AdaptiveColor{Light: "#CC6B4E", Dark: "#FFA066"},
	Blue:                 lipgloss.AdaptiveColor{Light: "#4F7CAC", Dark: "#7FB4CA"},
	Cyan:                 lipgloss.AdaptiveColor{Light: "#497F7D", Dark: "#7AA89F"},
	Violet:               lipgloss.AdaptiveColor{Light: "#674D7A", Dark: "#957FB8"},
	LightText:            lipgloss.AdaptiveColor{Light: "#2B2F42", Dark: "#DCD7BA"},
	MutedText:            lipgloss.AdaptiveColor{Light: "#6C7086", Dark: "#727169"},
	Border:               lipgloss.AdaptiveColor{Light: "#B5BDC5", Dark: "#363646"},
	SelectedBackground:   lipgloss.AdaptiveColor{Light: "#E2E6F3", Dark: "#223249"},
	VerySubtleBackground: lipgloss.AdaptiveColor{Light: "#EFF1F8", Dark: "#181820"},
}

// Theme holds all the pre-configured styles for the Tabletools TUIs.
type Theme struct {
	Colors Colors

	// Headers and titles
	Header lipgloss.Style
	Title  lipgloss.Style

	// Status indicators
	Success lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	Info    lipgloss.Style

	// Text styles
	Bold     lipgloss.Style
	Italic   lipgloss.Style
	Normal   lipgloss.Style
	Muted    lipgloss.Style
	Selected lipgloss.Style

	// Notification styles
	UnreadBadge  lipgloss.Style
	Unread       lipgloss.Style
	ReadEntry    lipgloss.Style
	PriorityHigh lipgloss.Style
	PriorityMed  lipgloss.Style
	PriorityLow  lipgloss.Style

	// Container styles
	Box lipgloss.Style

	// Special styles
	Accent lipgloss.Style
}

func newTheme(c Colors) *Theme {
	return &Theme{
		Colors: c,

		Header: lipgloss.NewStyle().Bold(true).Foreground(c.Blue),
		Title:  lipgloss.NewStyle().Bold(true).Foreground(c.LightText),

		Success: lipgloss.NewStyle().Foreground(c.Green),
		Error:   lipgloss.NewStyle().Foreground(c.Red),
		Warning: lipgloss.NewStyle().Foreground(c.Yellow),
		Info:    lipgloss.NewStyle().Foreground(c.Blue),

		Bold:     lipgloss.NewStyle().Bold(true),
	Italic:   lipgloss.NewStyle().Italic(true).Foreground(c.MutedText),
		Normal:   lipgloss.NewStyle().Foreground(c.LightText),
		Muted:    lipgloss.NewStyle().Foreground(c.MutedText),
		Selected: lipgloss.NewStyle().Background(c.SelectedBackground),

		UnreadBadge:  lipgloss.NewStyle().Bold(true).Foreground(c.Red),
		Unread:       lipgloss.NewStyle().Bold(true).Foreground(c.LightText),
		ReadEntry:    lipgloss.NewStyle().Foreground(c.MutedText),
		PriorityHigh: lipgloss.NewStyle().Bold(true).Foreground(c.Red),
		PriorityMed:  lipgloss.NewStyle().Foreground(c.Orange),
		PriorityLow:  lipgloss.NewStyle().Foreground(c.MutedText),

		Box: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(c.Border).
			Padding(0, 1),

		Accent: lipgloss.NewStyle().Foreground(c.Violet),
	}
}

// DefaultTheme is the active theme for all Tabletools TUIs.
var DefaultTheme = newTheme(DefaultColors)

func init() {
	Green = DefaultColors.Green
	Yellow = DefaultColors.Yellow
	Red = DefaultColors.Red
	Orange = DefaultColors.Orange
	Blue = DefaultColors.Blue
	Cyan = DefaultColors.Cyan
	Violet = DefaultColors.Violet
	LightText = DefaultColors.LightText
	MutedText = DefaultColors.MutedText
	Border = DefaultColors.Border
	SelectedBackground = DefaultColors.SelectedBackground
	VerySubtleBackground = DefaultColors.VerySubtleBackground
}
