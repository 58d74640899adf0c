package tui

import (
	"chatbox/internal/format"

	"github.com/charmbracelet/lipgloss"
)

const backgroundColor = lipgloss.Color("#120924")

type uiTheme struct {
	root        lipgloss.Style
	header      lipgloss.Style
	title       lipgloss.Style
	panel       lipgloss.Style
	panelTitle  lipgloss.Style
	footer      lipgloss.Style
	status      lipgloss.Style
	errorStatus lipgloss.Style
	inputPanel  lipgloss.Style
	helpText    lipgloss.Style
	notice      lipgloss.Style
	pending     lipgloss.Style
	modalFrame  lipgloss.Style
	modalAccent lipgloss.Style
	modalPick   lipgloss.Style
	role        map[string]lipgloss.Style
	body        format.Styles
}

func newTheme() uiTheme {
	pink := lipgloss.Color("#ff71ce")
	blue := lipgloss.Color("#01cdfe")
	mint := lipgloss.Color("#05ffa1")
	amber := lipgloss.Color("#ffd166")
	panelBg := lipgloss.Color("#1b0f35")
	text := lipgloss.Color("#f3f3ff")
	muted := lipgloss.Color("#9ca3d8")

	return uiTheme{
		root: lipgloss.NewStyle().
			Background(backgroundColor).
			Foreground(text).
			Padding(0, 1),
		header: lipgloss.NewStyle().
			Background(panelBg).
			Foreground(text).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(blue).
			Padding(0, 1),
		title: lipgloss.NewStyle().
			Background(pink).
			Foreground(lipgloss.Color("#22062f")).
			Bold(true).
			Padding(0, 1),
		panel: lipgloss.NewStyle().
			Background(panelBg).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(blue).
			Padding(0, 1),
		panelTitle: lipgloss.NewStyle().
			Foreground(mint).
			Bold(true),
		footer: lipgloss.NewStyle().
			Background(panelBg).
			Foreground(muted).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(pink).
			Padding(0, 1),
		status:      lipgloss.NewStyle().Foreground(blue).Bold(true),
		errorStatus: lipgloss.NewStyle().Foreground(pink).Bold(true),
		inputPanel: lipgloss.NewStyle().
			Background(panelBg).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(mint).
			Padding(0, 1),
		helpText: lipgloss.NewStyle().Foreground(muted),
		notice:   lipgloss.NewStyle().Foreground(pink),
		pending:  lipgloss.NewStyle().Foreground(muted).Italic(true),
		modalFrame: lipgloss.NewStyle().
			Background(panelBg).
			BorderStyle(lipgloss.ThickBorder()).
			BorderForeground(blue).
			Padding(1, 2),
		modalAccent: lipgloss.NewStyle().Foreground(mint).Bold(true),
		modalPick:   lipgloss.NewStyle().Foreground(pink).Bold(true),
		role: map[string]lipgloss.Style{
			"user":      lipgloss.NewStyle().Foreground(mint).Bold(true),
			"assistant": lipgloss.NewStyle().Foreground(pink).Bold(true),
			"system":    lipgloss.NewStyle().Foreground(muted).Bold(true),
		},
		body: format.Styles{
			Text: lipgloss.NewStyle().Foreground(text),
			Code: lipgloss.NewStyle().Foreground(amber).Background(lipgloss.Color("#2a184a")),
		},
	}
}
