package tui

import (
	"os"
	"strings"
	"time"

	"github.com/G4NGGAA/Elaina-Ai/internal/app"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type focusArea int

const (
	focusInput focusArea = iota
	focusChat
	focusSidebar
)

// responseMsg carries a settled exchange back onto the UI loop.
type responseMsg struct {
	ex   *app.Exchange
	resp *app.ChatResponse
	err  error
}

type spinMsg struct{}

type attachmentsChangedMsg struct{}

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

var suggestions = []string{
	"Siapa kamu?",
	"Tolong jelaskan black hole secara sederhana",
	"Buatkan contoh kode Python untuk membaca file",
}

type MainModel struct {
	controller *app.Controller

	theme    Theme
	help     helpModel
	renderer *MessageRenderer

	width  int
	height int
	ready  bool

	focus       focusArea
	showSidebar bool
	showHelp    bool

	input  textarea.Model
	chatVP viewport.Model

	sessions   []app.Session
	sessionSel int

	// Grounding metadata only exists for turns settled in this process;
	// reloaded sessions render without citation markers.
	metaByID map[int64]*app.GroundingMetadata

	lastBlocks []CodeBlock

	running    bool
	statusText string
	spinnerPos int

	attachCh chan struct{}
	doneCh   chan responseMsg
}

func NewMainModel(controller *app.Controller) *MainModel {
	ta := textarea.New()
	ta.Placeholder = "Tulis pesan, Enter untuk kirim. /attach <path> untuk lampiran."
	ta.Focus()
	ta.CharLimit = 8000
	ta.SetHeight(1)
	ta.Prompt = " "
	ta.ShowLineNumbers = false

	// Keep textarea styling minimal; the input container carries the look.
	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.BlurredStyle.CursorLine = lipgloss.NewStyle()
	ta.FocusedStyle.Base = lipgloss.NewStyle()
	ta.BlurredStyle.Base = lipgloss.NewStyle()

	theme := NewTheme(controller.Settings().DarkTheme)
	m := &MainModel{
		controller: controller,
		theme:      theme,
		help:       newHelpModel(),
		renderer:   NewMessageRenderer(theme),
		width:      100,
		height:     30,
		focus:      focusInput,
		input:      ta,
		metaByID:   make(map[int64]*app.GroundingMetadata),
		statusText: "Siap",
		attachCh:   make(chan struct{}, 8),
		doneCh:     make(chan responseMsg, 1),
	}

	controller.Attachments().OnChange = func() {
		select {
		case m.attachCh <- struct{}{}:
		default:
		}
	}

	m.sessions = controller.Sessions()
	return m
}

func (m *MainModel) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.waitAttach())
}

func (m *MainModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.SetWidth(m.width)

		layout := m.computeLayout()
		if !m.ready {
			m.chatVP = viewport.New(layout.ChatW, layout.ChatH)
			m.chatVP.Style = lipgloss.NewStyle()
			m.ready = true
		} else {
			m.chatVP.Width = layout.ChatW
			m.chatVP.Height = layout.ChatH
		}
		m.input.SetWidth(max(10, layout.InputW))
		m.rebuildChat()
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.help.keys.Quit):
			m.controller.SaveActivePointer()
			return m, tea.Quit

		case key.Matches(msg, m.help.keys.Cancel):
			if m.running {
				m.statusText = "Membatalkan..."
				m.controller.CancelPending()
			} else if m.showHelp {
				m.showHelp = false
			}
			return m, nil

		case key.Matches(msg, m.help.keys.NewChat):
			m.startNewChat()
			return m, nil

		case key.Matches(msg, m.help.keys.ToggleSidebar):
			m.showSidebar = !m.showSidebar
			if m.showSidebar {
				m.sessions = m.controller.Sessions()
				m.sessionSel = 0
				m.focus = focusSidebar
			} else if m.focus == focusSidebar {
				m.focus = focusInput
				m.input.Focus()
			}
			m.rebuildChat()
			return m, nil

		case key.Matches(msg, m.help.keys.FocusNext):
			m.cycleFocus()
			return m, nil

		case key.Matches(msg, m.help.keys.Grounding):
			s := m.controller.Settings()
			s.Grounding = !s.Grounding
			m.controller.SaveSettings(s)
			if s.Grounding {
				m.statusText = "Web grounding aktif"
			} else {
				m.statusText = "Web grounding nonaktif"
			}
			return m, nil

		case key.Matches(msg, m.help.keys.DarkTheme):
			s := m.controller.Settings()
			s.DarkTheme = !s.DarkTheme
			m.controller.SaveSettings(s)
			m.theme = NewTheme(s.DarkTheme)
			m.renderer.SetTheme(m.theme)
			m.rebuildChat()
			return m, nil

		case key.Matches(msg, m.help.keys.CopyCode):
			m.copyLastBlock()
			return m, nil

		case key.Matches(msg, m.help.keys.SaveCode):
			m.saveLastBlock()
			return m, nil

		case key.Matches(msg, m.help.keys.Help):
			m.showHelp = !m.showHelp
			return m, nil

		case key.Matches(msg, m.help.keys.Enter):
			if m.focus == focusSidebar {
				m.openSelectedSession()
				return m, nil
			}
			return m, m.onEnter()

		case msg.Type == tea.KeyUp:
			switch m.focus {
			case focusChat:
				m.chatVP.LineUp(1)
				return m, nil
			case focusSidebar:
				m.moveSessionSel(-1)
				return m, nil
			}
		case msg.Type == tea.KeyDown:
			switch m.focus {
			case focusChat:
				m.chatVP.LineDown(1)
				return m, nil
			case focusSidebar:
				m.moveSessionSel(1)
				return m, nil
			}
		case msg.Type == tea.KeyPgUp:
			m.chatVP.ViewUp()
			return m, nil
		case msg.Type == tea.KeyPgDown:
			m.chatVP.ViewDown()
			return m, nil
		}

		// Suggestion chips on the empty state.
		if m.controller.State() == app.StateEmpty && m.input.Value() == "" {
			if s, ok := suggestionForKey(msg.String()); ok {
				m.input.SetValue(s)
				return m, nil
			}
		}

	case responseMsg:
		turn, meta := m.controller.Resolve(msg.ex, msg.resp, msg.err)
		// A superseded exchange settles without ending the live one; only
		// reopen the send path once no request is in flight.
		if m.controller.State() != app.StateAwaiting {
			m.running = false
			m.statusText = "Siap"
		}
		if turn != nil {
			if meta != nil {
				m.metaByID[turn.ID] = meta
			}
			m.sessions = m.controller.Sessions()
		}
		m.rebuildChat()
		m.chatVP.GotoBottom()
		return m, nil

	case attachmentsChangedMsg:
		return m, m.waitAttach()

	case spinMsg:
		m.spinnerPos = (m.spinnerPos + 1) % len(spinnerFrames)
		if m.running {
			return m, m.spinTick()
		}
	}

	var cmd tea.Cmd
	if m.focus == focusInput {
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}

	m.chatVP, cmd = m.chatVP.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m *MainModel) onEnter() tea.Cmd {
	val := strings.TrimSpace(m.input.Value())

	if strings.HasPrefix(val, "/") {
		m.input.Reset()
		m.runCommand(val)
		return nil
	}

	if m.running {
		m.statusText = "Masih menunggu balasan (esc untuk batal)"
		return nil
	}

	ex, _ := m.controller.Submit(val)
	if ex == nil {
		return nil
	}
	m.input.Reset()
	m.running = true
	m.statusText = "Elaina sedang mengetik..."
	m.spinnerPos = 0
	m.sessions = m.controller.Sessions()
	m.rebuildChat()
	m.chatVP.GotoBottom()

	done := m.doneCh
	go func(ex *app.Exchange) {
		resp, err := ex.Do()
		done <- responseMsg{ex: ex, resp: resp, err: err}
	}(ex)

	return tea.Batch(m.waitResponse(), m.spinTick())
}

func (m *MainModel) runCommand(val string) {
	cmd, rest, _ := strings.Cut(val, " ")
	rest = strings.TrimSpace(rest)

	switch cmd {
	case "/attach":
		if rest == "" {
			m.statusText = "Pakai: /attach <path>"
			return
		}
		if err := m.controller.Attachments().Add(strings.Fields(rest)...); err != nil {
			m.statusText = err.Error()
			return
		}
		m.statusText = "Melampirkan file..."
	case "/model":
		if rest == "" {
			m.statusText = "Model: " + m.controller.Settings().Model
			return
		}
		s := m.controller.Settings()
		s.Model = rest
		m.controller.SaveSettings(s)
		m.statusText = "Model: " + rest
	case "/system":
		s := m.controller.Settings()
		s.SystemInstruction = rest
		m.controller.SaveSettings(s)
		m.statusText = "System instruction diperbarui"
	case "/help":
		m.showHelp = !m.showHelp
	default:
		m.statusText = "Perintah tidak dikenal: " + cmd
	}
}

func (m *MainModel) startNewChat() {
	if m.running {
		m.controller.CancelPending()
		m.running = false
	}
	m.controller.StartNewSession()
	m.metaByID = make(map[int64]*app.GroundingMetadata)
	m.lastBlocks = nil
	m.statusText = "Siap"
	m.sessions = m.controller.Sessions()
	m.rebuildChat()
}

func (m *MainModel) openSelectedSession() {
	if m.sessionSel < 0 || m.sessionSel >= len(m.sessions) {
		return
	}
	id := m.sessions[m.sessionSel].ID
	if !m.controller.LoadSession(id) {
		return
	}
	m.running = false
	m.metaByID = make(map[int64]*app.GroundingMetadata)
	m.lastBlocks = nil
	m.focus = focusInput
	m.input.Focus()
	m.rebuildChat()
	m.chatVP.GotoBottom()
}

func (m *MainModel) moveSessionSel(delta int) {
	if len(m.sessions) == 0 {
		return
	}
	m.sessionSel += delta
	if m.sessionSel < 0 {
		m.sessionSel = 0
	}
	if m.sessionSel >= len(m.sessions) {
		m.sessionSel = len(m.sessions) - 1
	}
}

func (m *MainModel) cycleFocus() {
	switch m.focus {
	case focusInput:
		m.focus = focusChat
		m.input.Blur()
	case focusChat:
		if m.showSidebar {
			m.focus = focusSidebar
		} else {
			m.focus = focusInput
			m.input.Focus()
		}
	default:
		m.focus = focusInput
		m.input.Focus()
	}
}

func (m *MainModel) copyLastBlock() {
	if len(m.lastBlocks) == 0 {
		m.statusText = "Tidak ada blok kode"
		return
	}
	if err := CopyCodeBlock(m.lastBlocks[len(m.lastBlocks)-1]); err != nil {
		m.statusText = "Gagal menyalin: " + err.Error()
		return
	}
	m.statusText = "Kode disalin ke clipboard"
}

func (m *MainModel) saveLastBlock() {
	if len(m.lastBlocks) == 0 {
		m.statusText = "Tidak ada blok kode"
		return
	}
	cwd, _ := os.Getwd()
	path, err := SaveCodeBlock(m.lastBlocks[len(m.lastBlocks)-1], cwd)
	if err != nil {
		m.statusText = "Gagal menyimpan: " + err.Error()
		return
	}
	m.statusText = "Kode disimpan ke " + path
}

func (m *MainModel) waitResponse() tea.Cmd {
	done := m.doneCh
	return func() tea.Msg {
		return <-done
	}
}

func (m *MainModel) waitAttach() tea.Cmd {
	ch := m.attachCh
	return func() tea.Msg {
		<-ch
		return attachmentsChangedMsg{}
	}
}

func (m *MainModel) spinTick() tea.Cmd {
	d := 90 * time.Millisecond
	if os.Getenv("ELAINA_REDUCE_MOTION") == "1" {
		d = 250 * time.Millisecond
	}
	return tea.Tick(d, func(time.Time) tea.Msg { return spinMsg{} })
}

func suggestionForKey(k string) (string, bool) {
	switch k {
	case "1", "2", "3":
		i := int(k[0] - '1')
		if i < len(suggestions) {
			return suggestions[i], true
		}
	}
	return "", false
}
