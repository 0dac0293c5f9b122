package ui

import "github.com/charmbracelet/lipgloss"

// Colors used throughout the TUI.
var (
	ColorRed     = lipgloss.Color("#FF5F5F")
	ColorGreen   = lipgloss.Color("#5FD787")
	ColorYellow  = lipgloss.Color("#FFD75F")
	ColorCyan    = lipgloss.Color("#5FD7FF")
	ColorBlue    = lipgloss.Color("#5F87FF")
	ColorGray    = lipgloss.Color("#808080")
	ColorDimGray = lipgloss.Color("#444444")
	ColorWhite   = lipgloss.Color("#FFFFFF")
	ColorMagenta = lipgloss.Color("#D787FF")
)

// Base styles reused by UI components.
var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorCyan)

	HeaderStyle = lipgloss.NewStyle().
			Foreground(ColorCyan)

	StatusStyle = lipgloss.NewStyle().
			Foreground(ColorGray)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorRed).
			Bold(true)

	ErrorTextStyle = lipgloss.NewStyle().
			Foreground(ColorRed)

	NoticeStyle = lipgloss.NewStyle().
			Foreground(ColorGreen)

	TimestampStyle = lipgloss.NewStyle().
			Foreground(ColorGray)

	PanelTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorWhite)

	PanelTitleActiveStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(ColorCyan)

	SelectedStyle = lipgloss.NewStyle().
			Foreground(ColorCyan).
			Bold(true)

	DimStyle = lipgloss.NewStyle().
			Foreground(ColorGray)

	FooterKeyStyle = lipgloss.NewStyle().
			Foreground(ColorYellow).
			Bold(true)

	FooterDescStyle = lipgloss.NewStyle().
			Foreground(ColorGray)

	DividerStyle = lipgloss.NewStyle().
			Foreground(ColorDimGray)

	SpinnerStyle = lipgloss.NewStyle().
			Foreground(ColorMagenta)
)

// Library tree styles.
var (
	FolderStyle = lipgloss.NewStyle().
			Foreground(ColorYellow)

	SessionStyle = lipgloss.NewStyle().
			Foreground(ColorWhite)

	DocumentStyle = lipgloss.NewStyle().
			Foreground(ColorBlue)

	CheckedStyle = lipgloss.NewStyle().
			Foreground(ColorGreen).
			Bold(true)

	// GrabbedStyle marks the item picked up for a move.
	GrabbedStyle = lipgloss.NewStyle().
			Foreground(ColorMagenta).
			Bold(true).
			Underline(true)
)

// Tab bar styles.
var (
	TabStyle = lipgloss.NewStyle().
			Foreground(ColorGray).
			Padding(0, 1)

	TabActiveStyle = lipgloss.NewStyle().
			Foreground(ColorWhite).
			Background(ColorDimGray).
			Bold(true).
			Padding(0, 1)
)

// Session pane styles.
var (
	// HighlightStyle marks the segment under the playback position.
	HighlightStyle = lipgloss.NewStyle().
			Foreground(ColorYellow).
			Bold(true)

	PlayingStyle = lipgloss.NewStyle().
			Foreground(ColorGreen).
			Bold(true)

	PausedStyle = lipgloss.NewStyle().
			Foreground(ColorGray)

	SpeakingStyle = lipgloss.NewStyle().
			Foreground(ColorGreen)
)

// Chat and prompt styles.
var (
	PromptStyle = lipgloss.NewStyle().
			Foreground(ColorCyan).
			Bold(true)

	ChatUserStyle = lipgloss.NewStyle().
			Foreground(ColorCyan).
			Bold(true)

	ChatAssistantStyle = lipgloss.NewStyle().
				Foreground(ColorMagenta).
				Bold(true)
)
