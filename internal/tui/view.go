package tui

import (
	"fmt"
	"strings"

	"chatbox/internal/export"
	"chatbox/internal/format"
	"chatbox/internal/transcript"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

const welcomeText = "Welcome! Start a conversation by typing a message below."

const helpMarkdown = `# chatbox

## Keys

| Key | Action |
|---|---|
| Enter | send the message |
| PgUp / PgDn, Up / Down (empty input) | scroll the conversation |
| Home / End | jump to the top or bottom |
| Ctrl+L | clear the conversation |
| Esc | close help, or ask to quit |
| Ctrl+C | quit immediately |

## Commands

- ` + "`/clear`" + ` clear the conversation (asks first)
- ` + "`/export [dir]`" + ` write the transcript to ` + "`chat-export-YYYY-MM-DD.txt`" + `
- ` + "`/attach <path>`" + ` note a file in the conversation (it is not uploaded)
- ` + "`/voice`" + ` start or stop a voice note (no audio is captured yet)
- ` + "`/help`" + ` toggle this panel
- ` + "`/quit`" + ` leave chatbox

Replies support **bold**, *italic* and ` + "`inline code`" + `.
`

func (m Model) View() string {
	var out string
	switch {
	case m.quitConfirm:
		out = m.renderModal("EXIT CHATBOX?", "Are you sure you want to quit?", "The conversation is not saved unless you /export it.")
	case m.clearConfirm:
		out = m.renderModal("CLEAR CONVERSATION?", "Every message in this session will be removed.", "Use /export first to keep a copy.")
	default:
		out = lipgloss.JoinVertical(lipgloss.Left,
			m.renderHeader(),
			m.renderContent(),
			m.renderInput(),
			m.renderFooter(),
		)
	}
	return m.theme.root.Render(out)
}

func (m *Model) renderHeader() string {
	meta := fmt.Sprintf("Endpoint: %s · Messages: %d", nullCoalesce(m.endpoint, "n/a"), m.session.Len())
	if m.recorder.Recording() {
		meta += " · ● REC"
	}
	joined := lipgloss.JoinHorizontal(lipgloss.Left, m.theme.title.Render("chatbox"), " ", m.theme.helpText.Render(meta))
	return m.theme.header.Width(maxInt(20, m.width-4)).Render(joined)
}

func (m *Model) renderContent() string {
	contentWidth := maxInt(40, m.width-4)
	if m.showHelp {
		return m.theme.panel.Width(contentWidth).Render(
			m.theme.panelTitle.Render("Help") + "\n" + m.renderHelp(contentWidth-4),
		)
	}
	return m.theme.panel.Width(contentWidth).Render(
		m.theme.panelTitle.Render("Conversation") + "\n" + m.timeline.View(),
	)
}

func (m *Model) renderTimeline() string {
	if !m.sink.showsTranscript() {
		return m.theme.helpText.Render(welcomeText)
	}
	width := maxInt(24, m.timeline.Width-2)
	body := lipgloss.NewStyle().Width(width)
	noticeStyles := format.Styles{Text: m.theme.notice, Code: m.theme.body.Code}

	var b strings.Builder
	for _, entry := range m.sink.entries {
		switch entry.kind {
		case entryNotice:
			b.WriteString(body.Render(format.Terminal(format.Markup(entry.text), noticeStyles)))
		default:
			b.WriteString(m.messageHeader(entry.msg))
			b.WriteString("\n")
			b.WriteString(body.Render(format.Terminal(format.Markup(entry.msg.Content), m.theme.body)))
		}
		b.WriteString("\n\n")
	}
	if m.sink.pending != "" {
		b.WriteString(m.spinner.View() + m.theme.pending.Render(" processing..."))
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m *Model) messageHeader(msg transcript.Message) string {
	style, ok := m.theme.role[string(msg.Role)]
	if !ok {
		style = m.theme.role["system"]
	}
	return style.Render(fmt.Sprintf("%s [%s]", msg.Timestamp.Format("15:04"), export.RoleLabel(msg.Role)))
}

// renderHelp renders the help markdown with glamour, falling back to the raw text.
func (m *Model) renderHelp(width int) string {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithStylePath("dark"),
		glamour.WithWordWrap(maxInt(40, width)),
	)
	if err != nil {
		return m.theme.helpText.Render(helpMarkdown)
	}
	out, err := renderer.Render(helpMarkdown)
	if err != nil {
		return m.theme.helpText.Render(helpMarkdown)
	}
	return strings.TrimSpace(out)
}

func (m *Model) renderInput() string {
	contentWidth := maxInt(40, m.width-4)
	inputView := m.input.View()
	if m.sink.busy {
		inputView = m.spinner.View() + " processing... " + inputView
	}
	return m.theme.inputPanel.Width(contentWidth).Render(inputView)
}

func (m *Model) renderFooter() string {
	contentWidth := maxInt(40, m.width-4)
	status := m.sink.status
	statusStyle := m.theme.status
	if lower := strings.ToLower(status); strings.Contains(lower, "failed") || strings.Contains(lower, "error") || strings.Contains(lower, "cannot") {
		statusStyle = m.theme.errorStatus
	}
	line := statusStyle.Render(compactSingleLine(status, 180))
	hints := m.theme.helpText.Render("Keys: Enter send · PgUp/PgDn or Up/Down (input empty) scroll · Ctrl+L clear · /help commands · Esc quit prompt · Ctrl+C quit")
	return m.theme.footer.Width(contentWidth).Render(line + "\n" + hints)
}

func (m *Model) renderModal(title, subtitle, note string) string {
	canvasWidth := maxInt(40, m.width-4)
	canvasHeight := maxInt(12, m.height-4)
	modalWidth := clampInt(int(float64(canvasWidth)*0.56), 42, 78)
	if modalWidth > canvasWidth-2 {
		modalWidth = canvasWidth - 2
	}

	accent := m.theme.modalAccent.Render(strings.Repeat("=", 40))
	prompt := m.theme.modalPick.Render("[Y / Enter] Confirm") + "    " + m.theme.helpText.Render("[N / Esc] Return")
	body := strings.Join([]string{
		m.theme.errorStatus.Render(title),
		m.theme.helpText.Render(subtitle),
		"",
		accent,
		m.theme.helpText.Render(note),
		accent,
		"",
		prompt,
	}, "\n")
	panel := m.theme.modalFrame.Width(modalWidth).Render(body)
	return lipgloss.Place(
		canvasWidth,
		canvasHeight,
		lipgloss.Center,
		lipgloss.Center,
		panel,
		lipgloss.WithWhitespaceBackground(backgroundColor),
	)
}
