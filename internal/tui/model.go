// Package tui is the terminal chat client. Model drives an exchange.Session from key presses
// and draws whatever the session emits.
package tui

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"time"

	"chatbox/internal/attach"
	"chatbox/internal/chatapi"
	"chatbox/internal/exchange"
	"chatbox/internal/export"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
)

const defaultInputLimit = 4000

type Options struct {
	Endpoint   string
	ExportDir  string
	InputLimit int
	Logger     *zap.Logger
	Now        func() time.Time
}

type Model struct {
	session  *exchange.Session
	sink     *viewSink
	recorder *attach.Recorder
	logger   *zap.Logger
	now      func() time.Time

	endpoint  string
	exportDir string

	showHelp     bool
	quitConfirm  bool
	clearConfirm bool

	width  int
	height int

	input    textinput.Model
	timeline viewport.Model
	spinner  spinner.Model

	theme uiTheme
}

// exchangeDoneMsg carries the outbound call's result back onto the Update goroutine.
type exchangeDoneMsg struct {
	pending exchange.Pending
	reply   chatapi.Reply
	err     error
}

func New(transport exchange.Transport, opts Options) Model {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.InputLimit <= 0 {
		opts.InputLimit = defaultInputLimit
	}

	sink := &viewSink{status: exchange.StatusReady}
	session := exchange.NewSession(transport,
		exchange.WithEmitter(sink),
		exchange.WithLogger(opts.Logger),
		exchange.WithClock(opts.Now),
	)

	input := textinput.New()
	input.Prompt = "❯ "
	input.CharLimit = opts.InputLimit
	input.Placeholder = "Type a message and press Enter. /help lists commands."
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Points
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#05ffa1"))

	timeline := viewport.New(0, 0)
	timeline.MouseWheelEnabled = true
	timeline.MouseWheelDelta = 4

	m := Model{
		session:   session,
		sink:      sink,
		recorder:  attach.NewRecorder(opts.Now),
		logger:    opts.Logger,
		now:       opts.Now,
		endpoint:  opts.Endpoint,
		exportDir: opts.ExportDir,
		input:     input,
		timeline:  timeline,
		spinner:   sp,
		theme:     newTheme(),
	}
	m.renderPanes()
	return m
}

// Session exposes the underlying exchange session.
func (m Model) Session() *exchange.Session {
	return m.session
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, textinput.Blink)
}

func (m Model) sendCmd(p exchange.Pending) tea.Cmd {
	session := m.session
	return func() tea.Msg {
		reply, err := session.Send(context.Background(), p)
		return exchangeDoneMsg{pending: p, reply: reply, err: err}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	switch msg := msg.(type) {
	case exchangeDoneMsg:
		m.session.Complete(msg.pending, msg.reply, msg.err)
		m.input.Focus()
		m.renderPanes()
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		m.renderPanes()
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		if m.sink.pending != "" {
			m.renderPanes()
		}
		cmds = append(cmds, cmd)
	case tea.MouseMsg:
		if m.quitConfirm || m.clearConfirm {
			break
		}
		var cmd tea.Cmd
		m.timeline, cmd = m.timeline.Update(msg)
		cmds = append(cmds, cmd)
	case tea.KeyMsg:
		return m.handleKey(msg)
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" {
		return m, tea.Quit
	}
	if m.quitConfirm {
		switch key {
		case "y", "Y", "enter":
			return m, tea.Quit
		case "n", "N", "esc":
			m.quitConfirm = false
			m.session.Report("quit canceled")
		}
		return m, nil
	}
	if m.clearConfirm {
		switch key {
		case "y", "Y", "enter":
			m.clearConfirm = false
			m.clear()
		case "n", "N", "esc":
			m.clearConfirm = false
			m.session.Report("clear canceled")
		}
		return m, nil
	}

	switch key {
	case "esc":
		if m.showHelp {
			m.showHelp = false
			m.session.Report(exchange.StatusReady)
			return m, nil
		}
		m.beginQuitConfirm()
		return m, nil
	case "ctrl+l":
		m.beginClearConfirm()
		return m, nil
	case "enter":
		return m.submit()
	case "pgup", "ctrl+b":
		m.timeline.LineUp(8)
		return m, nil
	case "pgdown", "ctrl+f":
		m.timeline.LineDown(8)
		return m, nil
	case "up":
		if strings.TrimSpace(m.input.Value()) == "" {
			m.timeline.LineUp(4)
			return m, nil
		}
	case "down":
		if strings.TrimSpace(m.input.Value()) == "" {
			m.timeline.LineDown(4)
			return m, nil
		}
	case "home":
		m.timeline.GotoTop()
		return m, nil
	case "end":
		m.timeline.GotoBottom()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit handles Enter. The input is blurred while an exchange is in flight, so nothing typed
// during that time reaches here.
func (m Model) submit() (tea.Model, tea.Cmd) {
	if m.sink.busy {
		return m, nil
	}
	raw := m.input.Value()
	if trimmed := strings.TrimSpace(raw); strings.HasPrefix(trimmed, "/") {
		m.input.SetValue("")
		m.handleSlash(trimmed)
		m.renderPanes()
		return m, nil
	}
	p, ok := m.session.Begin(raw)
	if !ok {
		return m, nil
	}
	m.input.SetValue("")
	m.input.Blur()
	m.renderPanes()
	return m, m.sendCmd(p)
}

func (m *Model) handleSlash(raw string) {
	parts := strings.Fields(raw)
	if len(parts) == 0 {
		return
	}
	cmd := strings.ToLower(parts[0])
	rest := strings.TrimSpace(strings.TrimPrefix(raw, parts[0]))
	switch cmd {
	case "/help":
		m.showHelp = !m.showHelp
		if m.showHelp {
			m.session.Report("help · Esc to close")
		} else {
			m.session.Report(exchange.StatusReady)
		}
	case "/clear":
		m.beginClearConfirm()
	case "/export":
		m.exportTranscript(rest)
	case "/attach":
		m.attachFile(rest)
	case "/voice":
		m.toggleVoice()
	case "/quit", "/exit":
		m.beginQuitConfirm()
	default:
		m.session.Report("unknown command: " + cmd)
	}
}

func (m *Model) beginQuitConfirm() {
	m.quitConfirm = true
	m.session.Report("ARE YOU SURE YOU WANT TO QUIT?")
}

// beginClearConfirm asks before wiping the conversation. While a reply is pending the
// session refuses the clear outright.
func (m *Model) beginClearConfirm() {
	if m.sink.busy {
		m.clear()
		return
	}
	m.clearConfirm = true
	m.session.Report("clear the whole conversation?")
}

func (m *Model) clear() {
	if err := m.session.Reset(); err != nil {
		m.logger.Debug("clear refused", zap.Error(err))
	}
	m.renderPanes()
}

func (m *Model) exportTranscript(dir string) {
	if dir == "" {
		dir = m.exportDir
	}
	path, err := export.WriteFile(dir, m.session.Transcript(), m.now())
	switch {
	case errors.Is(err, export.ErrEmptyTranscript):
		m.session.Report(export.ErrEmptyTranscript.Error())
	case err != nil:
		m.logError("export failed", err)
	default:
		m.logger.Info("transcript exported", zap.String("path", path), zap.Int("messages", m.session.Len()))
		m.session.Report("exported to " + path)
	}
}

func (m *Model) attachFile(path string) {
	if m.sink.busy {
		m.session.Report("wait for the reply before attaching")
		return
	}
	content, err := attach.FileMessage(path)
	if err != nil {
		m.logError("attach failed", err)
		return
	}
	if _, err := m.session.AppendLocal(content); err != nil {
		m.logError("attach failed", err)
		return
	}
	m.session.Report("attached " + filepath.Base(path))
}

func (m *Model) toggleVoice() {
	if !m.recorder.Recording() {
		if m.sink.busy {
			m.session.Report("wait for the reply before recording")
			return
		}
		if err := m.recorder.Start(); err != nil {
			m.logError("voice failed", err)
			return
		}
		m.session.Report("recording... /voice again to stop")
		return
	}
	content, length, err := m.recorder.Stop()
	if err != nil {
		m.logError("voice failed", err)
		return
	}
	if _, err := m.session.AppendLocal(content); err != nil {
		m.logError("voice failed", err)
		return
	}
	m.logger.Debug("voice note captured", zap.Duration("length", length))
	m.session.Report(exchange.StatusReady)
}

func (m *Model) logError(prefix string, err error) {
	m.logger.Warn(prefix, zap.Error(err))
	m.session.Report(prefix + ": " + compactSingleLine(err.Error(), 160))
}

func (m *Model) resize() {
	contentWidth := maxInt(40, m.width-4)
	m.input.Width = maxInt(20, contentWidth-6)
}

func (m *Model) renderPanes() {
	prevYOffset := m.timeline.YOffset
	prevAtBottom := m.timeline.AtBottom()

	m.timeline.Width = maxInt(20, maxInt(40, m.width-4)-4)
	m.timeline.Height = maxInt(5, maxInt(8, m.height-12)-2)

	m.timeline.SetContent(m.renderTimeline())
	if prevAtBottom {
		m.timeline.GotoBottom()
	} else {
		m.timeline.SetYOffset(prevYOffset)
	}
}
