package tui

import "github.com/charmbracelet/lipgloss"

type palette struct {
	Text    lipgloss.Color
	Muted   lipgloss.Color
	Accent  lipgloss.Color
	Border  lipgloss.Color
	Error   lipgloss.Color
	Success lipgloss.Color
	Button  lipgloss.Color
}

var (
	lightPalette = palette{
		Text:    lipgloss.Color("#111827"),
		Muted:   lipgloss.Color("#6B7280"),
		Accent:  lipgloss.Color("#2563EB"),
		Border:  lipgloss.Color("#D1D5DB"),
		Error:   lipgloss.Color("#DC2626"),
		Success: lipgloss.Color("#16A34A"),
		Button:  lipgloss.Color("#FFFFFF"),
	}
	darkPalette = palette{
		Text:    lipgloss.Color("#F3F4F6"),
		Muted:   lipgloss.Color("#9CA3AF"),
		Accent:  lipgloss.Color("#60A5FA"),
		Border:  lipgloss.Color("#374151"),
		Error:   lipgloss.Color("#F87171"),
		Success: lipgloss.Color("#4ADE80"),
		Button:  lipgloss.Color("#111827"),
	}
)

type styles struct {
	Title       lipgloss.Style
	Label       lipgloss.Style
	FocusLabel  lipgloss.Style
	Muted       lipgloss.Style
	Tone        lipgloss.Style
	ToneActive  lipgloss.Style
	Button      lipgloss.Style
	ButtonFocus lipgloss.Style
	ButtonOff   lipgloss.Style
	Pane        lipgloss.Style
	Draft       lipgloss.Style
	Error       lipgloss.Style
	Copied      lipgloss.Style
	Status      lipgloss.Style
	HistoryItem lipgloss.Style
	HistoryCur  lipgloss.Style
}

func newStyles(dark bool) styles {
	p := lightPalette
	if dark {
		p = darkPalette
	}

	button := lipgloss.NewStyle().Padding(0, 2).Bold(true)

	return styles{
		Title:       lipgloss.NewStyle().Foreground(p.Accent).Bold(true).MarginBottom(1),
		Label:       lipgloss.NewStyle().Foreground(p.Text).Bold(true),
		FocusLabel:  lipgloss.NewStyle().Foreground(p.Accent).Bold(true),
		Muted:       lipgloss.NewStyle().Foreground(p.Muted),
		Tone:        lipgloss.NewStyle().Foreground(p.Muted).Padding(0, 1),
		ToneActive:  lipgloss.NewStyle().Foreground(p.Button).Background(p.Accent).Padding(0, 1),
		Button:      button.Foreground(p.Text).Background(p.Border),
		ButtonFocus: button.Foreground(p.Button).Background(p.Accent),
		ButtonOff:   button.Foreground(p.Muted).Background(p.Border),
		Pane:        lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(p.Border).Padding(0, 1),
		Draft:       lipgloss.NewStyle().Foreground(p.Text),
		Error:       lipgloss.NewStyle().Foreground(p.Error),
		Copied:      lipgloss.NewStyle().Foreground(p.Success).Bold(true),
		Status:      lipgloss.NewStyle().Foreground(p.Muted).Italic(true),
		HistoryItem: lipgloss.NewStyle().Foreground(p.Text).PaddingLeft(2),
		HistoryCur:  lipgloss.NewStyle().Foreground(p.Accent).Bold(true).PaddingLeft(2),
	}
}
